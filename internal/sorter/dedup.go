package sorter

// DuplicateDetector remembers the first path seen for each content hash.
// It is scoped to one run and is not safe for concurrent use; the sort
// pipeline only touches it from its decision loop.
type DuplicateDetector struct {
	seen map[string]string
}

// NewDuplicateDetector creates an empty detector.
func NewDuplicateDetector() *DuplicateDetector {
	return &DuplicateDetector{seen: make(map[string]string)}
}

// Check reports whether hash was already observed and, if so, the path it
// was first observed at. An empty hash is never a duplicate. On first
// observation the path is recorded; later observations record nothing.
func (d *DuplicateDetector) Check(path, hash string) (string, bool) {
	if hash == "" {
		return "", false
	}
	if original, ok := d.seen[hash]; ok {
		return original, true
	}
	d.seen[hash] = path
	return "", false
}

// Len returns the number of distinct hashes recorded.
func (d *DuplicateDetector) Len() int {
	return len(d.seen)
}
