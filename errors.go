package minitar

import "fmt"

type MetadataError struct {
	Path string
	Err  error
}

func (err *MetadataError) Error() string {
	return fmt.Sprintf("unable to inspect '%s': %v", err.Path, err.Err)
}

func (err *MetadataError) Unwrap() error {
	return err.Err
}

type IdentityLookupError struct {
	Path string
	Kind string
	ID   int
}

func (err *IdentityLookupError) Error() string {
	return fmt.Sprintf("unable to resolve %s name for id %d (owner of '%s')", err.Kind, err.ID, err.Path)
}

type NameError struct {
	Name string
}

func (err *NameError) Error() string {
	return fmt.Sprintf("file name '%s' doesn't fit the header name fields", err.Name)
}

type TruncatedArchiveError struct {
	Offset int64
}

func (err *TruncatedArchiveError) Error() string {
	return fmt.Sprintf("archive cut short inside a block at offset %d", err.Offset)
}

type EntryNotFoundError struct {
	Name string
}

func (err *EntryNotFoundError) Error() string {
	return fmt.Sprintf("entry '%s' not found in the archive", err.Name)
}

type ChecksumError struct {
	Name string
	Want int64
	Have int64
}

func (err *ChecksumError) Error() string {
	return fmt.Sprintf("header checksum mismatch on entry '%s': expected %o, have %o", err.Name, err.Want, err.Have)
}

// ArchiveError tags an underlying I/O failure with the operation stage it happened at.
type ArchiveError struct {
	Stage string
	Err   error
}

func (err *ArchiveError) Error() string {
	return fmt.Sprintf("%s: %v", err.Stage, err.Err)
}

func (err *ArchiveError) Unwrap() error {
	return err.Err
}
