package tarball

import (
	"io"
	"os"
	"path"

	"github.com/maddsua/minitar"
)

// Extract writes the content of every entry into destDir, in archive order.
//
// Each entry is opened with truncation, so a later entry with the same name
// overwrites an earlier one: the most recently appended version wins without
// any explicit deduplication. Parent directories inside destDir are expected
// to already exist.
func (arc *Archive) Extract(destDir string) error {

	scanner, err := OpenScanner(arc.Path)
	if err != nil {
		return err
	}
	defer scanner.Close()

	content, err := OpenBlockReader(arc.Path)
	if err != nil {
		return err
	}
	defer content.Close()

	for {

		entry, err := scanner.Next()
		if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}

		if err := extractEntry(content, entry, destDir); err != nil {
			return err
		}
	}
}

func extractEntry(content *BlockReader, entry *Entry, destDir string) error {

	if err := content.SeekBlocks(entry.ContentOffset, io.SeekStart); err != nil {
		return err
	}

	file, err := os.Create(path.Join(destDir, entry.Path()))
	if err != nil {
		return &minitar.ArchiveError{Stage: "create extracted file", Err: err}
	}

	// Content is read in whole blocks; only the meaningful prefix of the
	// final block gets written out.
	for remaining := entry.Size; remaining > 0; {

		block, err := content.ReadBlock()
		if err == io.EOF {
			_ = file.Close()
			return &minitar.TruncatedArchiveError{Offset: content.Offset() * BlockSize}
		} else if err != nil {
			_ = file.Close()
			return err
		}

		chunk := int64(BlockSize)
		if remaining < chunk {
			chunk = remaining
		}

		if _, err := file.Write(block[:chunk]); err != nil {
			_ = file.Close()
			return &minitar.ArchiveError{Stage: "write extracted file", Err: err}
		}

		remaining -= chunk
	}

	if err := file.Close(); err != nil {
		return &minitar.ArchiveError{Stage: "close extracted file", Err: err}
	}

	return nil
}
