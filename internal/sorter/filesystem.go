package sorter

import "iter"

// CommitFunc is invoked by the mover once the final destination has been
// claimed and before the move completes. Returning an error abandons the
// move and leaves the source in place.
type CommitFunc func(final string) error

// FilesystemManager provides the filesystem operations the pipeline needs.
// It abstracts file access so the real implementation can be swapped in tests.
type FilesystemManager interface {
	// Walk enumerates regular files under root lazily. excluded lists
	// root-relative directories that are pruned, never descended into.
	// A missing root is reported as ErrRootNotFound before anything is yielded.
	Walk(root string, excluded []string) (iter.Seq2[*FileRecord, error], error)

	// Move moves source into destDir without overwriting anything,
	// suffixing the name (name__1, name__2, ...) on collision. commit runs
	// after the destination is claimed and before the source disappears.
	Move(source, destDir string, commit CommitFunc) (string, error)

	// Plan returns the path Move would choose, without touching the disk.
	// reserved marks names already promised to earlier planned moves.
	Plan(source, destDir string, reserved func(string) bool) (string, error)

	// Restore moves current back to original. It never overwrites: an
	// occupied original is an error.
	Restore(current, original string) error

	// Exists reports whether anything occupies path.
	Exists(path string) (bool, error)
}
