// Package tarball implements a minimal POSIX ustar archive engine: fixed
// 512-byte header records, block-aligned content and the two-zero-block end
// marker. Only regular file entries are supported.
package tarball

import (
	"io"

	"github.com/maddsua/minitar"
)

// Archive is a tar archive at a filesystem path. The file is treated as
// exclusively owned for the duration of each operation; concurrent external
// writers produce undefined results.
type Archive struct {
	Path string
}

var _ minitar.Archiver = (*Archive)(nil)

// List returns the member paths in archive order. Duplicate names are kept:
// they represent successive versions of the same member.
func (arc *Archive) List() ([]string, error) {

	names := []string{}

	err := arc.scan(func(entry *Entry) bool {
		names = append(names, entry.Path())
		return true
	})

	return names, err
}

// Contains reports whether a member with exactly that path is present,
// stopping the scan at the first match.
func (arc *Archive) Contains(name string) (bool, error) {

	var found bool

	err := arc.scan(func(entry *Entry) bool {
		found = entry.Path() == name
		return !found
	})

	return found, err
}

// Update appends new versions of the given members, but only if every one of
// them is already present in the archive. A single unknown member rejects
// the whole update and leaves the archive untouched.
//
// Membership is checked against a name set memoized from a single scan
// rather than rescanning the archive per member.
func (arc *Archive) Update(members []string) error {

	present := map[string]struct{}{}

	err := arc.scan(func(entry *Entry) bool {
		present[entry.Path()] = struct{}{}
		return true
	})
	if err != nil {
		return err
	}

	for _, name := range members {
		if _, has := present[name]; !has {
			return &minitar.EntryNotFoundError{Name: name}
		}
	}

	return arc.Append(members)
}

func (arc *Archive) scan(onEntry func(entry *Entry) (wantMore bool)) error {

	scanner, err := OpenScanner(arc.Path)
	if err != nil {
		return err
	}
	defer scanner.Close()

	for {

		entry, err := scanner.Next()
		if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}

		if !onEntry(entry) {
			return nil
		}
	}
}
