package sorter

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// UnknownDevice is the device tag given to images whose camera could not be determined.
const UnknownDevice = "UnknownDevice"

// maxDeviceLen bounds device names used as path segments.
const maxDeviceLen = 40

// SanitizeDevice turns a camera name into a single path segment: spaces and
// separators become underscores and the result is capped at 40 characters.
// Applying it twice gives the same result as applying it once.
func SanitizeDevice(name string) string {
	name = strings.TrimSpace(strings.Trim(name, "\x00"))
	name = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '/', '\\', ':':
			return '_'
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, name)
	if r := []rune(name); len(r) > maxDeviceLen {
		name = string(r[:maxDeviceLen])
	}
	return name
}

// FileRecord describes one candidate file produced by the walker.
// It is read-only once created.
type FileRecord struct {
	Path    string // absolute path
	RelPath string // path relative to the sort root, slash separated
	Name    string
	Ext     string // lowercased, with leading dot
	Size    int64
	ModTime time.Time
}

// NewFileRecord builds a FileRecord for path found under root.
func NewFileRecord(root, path string, info fs.FileInfo) *FileRecord {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	return &FileRecord{
		Path:    path,
		RelPath: filepath.ToSlash(rel),
		Name:    filepath.Base(path),
		Ext:     strings.ToLower(filepath.Ext(path)),
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}
}

// TagSet is the attribute bundle used as classification input.
// Zero values mean "absent": Year 0, empty Device, empty Hash.
type TagSet struct {
	Type     FileType
	Ext      string // lowercased, no leading dot
	Year     int
	Month    int
	Day      int
	Device   string
	Hash     string
	Faces    []string
	Keywords []string
	Extra    map[string]string

	// Classification context, not rendered by templates.
	Name string
	Path string
}

// BaseTags derives the tags every file has from its record alone:
// type and extension, plus a date taken from the modification time.
func BaseTags(rec *FileRecord) TagSet {
	t := TagSet{
		Type: TypeForExt(rec.Ext),
		Ext:  NormalizeExt(rec.Ext),
		Name: rec.Name,
		Path: rec.RelPath,
	}
	if !rec.ModTime.IsZero() {
		mt := rec.ModTime.Local()
		t.Year, t.Month, t.Day = mt.Year(), int(mt.Month()), mt.Day()
	}
	return t
}

// Merge returns t overlaid with every field present in o.
// A provider date replaces the whole base date.
func (t TagSet) Merge(o TagSet) TagSet {
	if o.Type != "" {
		t.Type = o.Type
	}
	if o.Ext != "" {
		t.Ext = o.Ext
	}
	if o.Year != 0 {
		t.Year, t.Month, t.Day = o.Year, o.Month, o.Day
	}
	if o.Device != "" {
		t.Device = o.Device
	}
	if o.Hash != "" {
		t.Hash = o.Hash
	}
	if len(o.Faces) > 0 {
		t.Faces = append([]string(nil), o.Faces...)
	}
	if len(o.Keywords) > 0 {
		t.Keywords = append([]string(nil), o.Keywords...)
	}
	if len(o.Extra) > 0 {
		extra := make(map[string]string, len(t.Extra)+len(o.Extra))
		for k, v := range t.Extra {
			extra[k] = v
		}
		for k, v := range o.Extra {
			extra[k] = v
		}
		t.Extra = extra
	}
	if o.Name != "" {
		t.Name = o.Name
	}
	if o.Path != "" {
		t.Path = o.Path
	}
	return t
}

// HasFace reports whether id is among the detected face identifiers.
func (t TagSet) HasFace(id string) bool {
	for _, f := range t.Faces {
		if f == id {
			return true
		}
	}
	return false
}

// Lookup renders the named tag as text. The second result is false when
// the tag is unknown or absent.
func (t TagSet) Lookup(name string) (string, bool) {
	switch name {
	case "type":
		return string(t.Type), t.Type != ""
	case "ext":
		return t.Ext, t.Ext != ""
	case "year":
		return strconv.Itoa(t.Year), t.Year != 0
	case "month":
		return fmt.Sprintf("%02d", t.Month), t.Month != 0
	case "day":
		return fmt.Sprintf("%02d", t.Day), t.Day != 0
	case "device", "camera":
		return t.Device, t.Device != ""
	case "hash":
		return t.Hash, t.Hash != ""
	case "face":
		if len(t.Faces) == 0 {
			return "", false
		}
		return t.Faces[0], true
	case "faces":
		return strings.Join(t.Faces, "+"), len(t.Faces) > 0
	case "stem":
		stem := strings.TrimSuffix(t.Name, filepath.Ext(t.Name))
		return stem, stem != ""
	}
	v, ok := t.Extra[name]
	return v, ok && v != ""
}
