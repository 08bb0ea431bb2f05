package tarball

import (
	"os"

	"github.com/maddsua/minitar"
)

// Create writes a brand new archive with the given members in order,
// overwriting whatever was at the archive path before.
//
// A failure mid-way aborts immediately and leaves the partial archive on
// disk; callers must treat it as untrustworthy.
func (arc *Archive) Create(members []string) error {

	file, err := os.Create(arc.Path)
	if err != nil {
		return &minitar.ArchiveError{Stage: "create archive", Err: err}
	}

	return arc.writeMembers(file, members)
}

// Append adds members to the end of an existing archive.
//
// The archive must already end with the two-block end marker; the marker is
// cut off, the new entries are written in its place and a fresh marker is
// added. Appending to an archive that violates that precondition corrupts it.
func (arc *Archive) Append(members []string) error {

	if err := TruncateTrailing(arc.Path, 2*BlockSize); err != nil {
		return err
	}

	file, err := os.OpenFile(arc.Path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return &minitar.ArchiveError{Stage: "open archive for append", Err: err}
	}

	return arc.writeMembers(file, members)
}

func (arc *Archive) writeMembers(file *os.File, members []string) error {

	writer := BlockWriter{file: file}

	for _, name := range members {
		if err := writeMember(&writer, name); err != nil {
			_ = file.Close()
			return err
		}
	}

	if err := writer.WriteFooter(); err != nil {
		_ = file.Close()
		return err
	}

	if err := file.Close(); err != nil {
		return &minitar.ArchiveError{Stage: "close archive", Err: err}
	}

	return nil
}

func writeMember(writer *BlockWriter, name string) error {

	header, err := FileHeader(name)
	if err != nil {
		return err
	}

	file, err := os.Open(name)
	if err != nil {
		return &minitar.ArchiveError{Stage: "open member", Err: err}
	}
	defer file.Close()

	if err := writer.WriteBlock(header.Encode()); err != nil {
		return err
	}

	return writer.WriteStream(file, header.Size)
}
