package sorter

import "context"

// MetadataProvider extracts tags from a file's metadata and content.
//
// The returned TagSet is always usable, even when err is non-nil: a non-nil
// error reports degraded extraction (some fields absent) and the caller keeps
// going with whatever was returned. Implementations must not panic on
// unreadable or malformed files.
type MetadataProvider interface {
	Extract(ctx context.Context, rec *FileRecord) (TagSet, error)
}
