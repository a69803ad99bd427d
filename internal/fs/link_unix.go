//go:build unix

package fs

import (
	"errors"
	"syscall"
)

// linkUnsupported reports whether a failed hard link should fall back to
// the placeholder-and-rename path.
func linkUnsupported(err error) bool {
	return errors.Is(err, syscall.EXDEV) ||
		errors.Is(err, syscall.EPERM) ||
		errors.Is(err, syscall.ENOTSUP) ||
		errors.Is(err, syscall.EOPNOTSUPP) ||
		errors.Is(err, syscall.EMLINK) ||
		errors.Is(err, errors.ErrUnsupported)
}

func crossDevice(err error) bool {
	return errors.Is(err, syscall.EXDEV)
}
