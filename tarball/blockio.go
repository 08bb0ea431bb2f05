package tarball

import (
	"io"
	"os"

	"github.com/maddsua/minitar"
)

// BlockReader reads an archive file in whole 512-byte blocks.
type BlockReader struct {
	file   *os.File
	offset int64
}

func OpenBlockReader(name string) (*BlockReader, error) {

	file, err := os.Open(name)
	if err != nil {
		return nil, &minitar.ArchiveError{Stage: "open archive", Err: err}
	}

	return &BlockReader{file: file}, nil
}

// Offset returns the current position in blocks from the start of the archive.
func (reader *BlockReader) Offset() int64 {
	return reader.offset
}

// ReadBlock returns the next block. A clean end of file yields io.EOF;
// anything shorter than a full block is a truncated archive.
func (reader *BlockReader) ReadBlock() (*Block, error) {

	var block Block

	if _, err := io.ReadFull(reader.file, block[:]); err == io.EOF {
		return nil, io.EOF
	} else if err == io.ErrUnexpectedEOF {
		return nil, &minitar.TruncatedArchiveError{Offset: reader.offset * BlockSize}
	} else if err != nil {
		return nil, &minitar.ArchiveError{Stage: "read archive block", Err: err}
	}

	reader.offset++

	return &block, nil
}

// SeekBlocks moves the read position by n blocks relative to whence.
func (reader *BlockReader) SeekBlocks(n int64, whence int) error {

	pos, err := reader.file.Seek(n*BlockSize, whence)
	if err != nil {
		return &minitar.ArchiveError{Stage: "seek archive", Err: err}
	}

	reader.offset = pos / BlockSize

	return nil
}

func (reader *BlockReader) Close() error {
	return reader.file.Close()
}

// BlockWriter writes an archive file in whole 512-byte blocks.
type BlockWriter struct {
	file *os.File
}

func (writer *BlockWriter) WriteBlock(block *Block) error {

	if _, err := writer.file.Write(block[:]); err != nil {
		return &minitar.ArchiveError{Stage: "write archive block", Err: err}
	}

	return nil
}

// WriteStream copies exactly size bytes from reader into the archive,
// zero-padding the final chunk up to the block boundary.
func (writer *BlockWriter) WriteStream(reader io.Reader, size int64) error {

	var block Block

	for size > 0 {

		chunk := int64(BlockSize)
		if size < chunk {
			chunk = size
		}

		if _, err := io.ReadFull(reader, block[:chunk]); err != nil {
			return &minitar.ArchiveError{Stage: "read member content", Err: err}
		}

		if chunk < BlockSize {
			clear(block[chunk:])
		}

		if err := writer.WriteBlock(&block); err != nil {
			return err
		}

		size -= chunk
	}

	return nil
}

// WriteFooter terminates the archive with the two-block end marker.
func (writer *BlockWriter) WriteFooter() error {

	for i := 0; i < 2; i++ {
		if err := writer.WriteBlock(&zeroBlock); err != nil {
			return &minitar.ArchiveError{Stage: "write end marker", Err: err}
		}
	}

	return nil
}

// TruncateTrailing removes n bytes from the end of the file, truncating to
// zero length if the file is shorter than that.
func TruncateTrailing(name string, n int64) error {

	stat, err := os.Stat(name)
	if err != nil {
		return &minitar.MetadataError{Path: name, Err: err}
	}

	size := stat.Size() - n
	if size < 0 {
		size = 0
	}

	if err := os.Truncate(name, size); err != nil {
		return &minitar.ArchiveError{Stage: "truncate archive", Err: err}
	}

	return nil
}
