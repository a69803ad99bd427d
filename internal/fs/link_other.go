//go:build !unix

package fs

import (
	"errors"
	"io/fs"
	"os"
)

func linkUnsupported(err error) bool {
	return errors.Is(err, errors.ErrUnsupported) || errors.Is(err, fs.ErrPermission)
}

// crossDevice treats any failed rename as a candidate for copying; the copy
// itself still fails cleanly when the source is unreadable.
func crossDevice(err error) bool {
	var le *os.LinkError
	return errors.As(err, &le)
}
