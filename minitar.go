package minitar

// Archiver is the set of operations that can be performed on a tar archive.
// Implemented by tarball.Archive.
type Archiver interface {
	Create(members []string) error
	Append(members []string) error
	List() ([]string, error)
	Contains(name string) (bool, error)
	Update(members []string) error
	Extract(destDir string) error
}
