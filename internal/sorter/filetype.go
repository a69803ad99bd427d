package sorter

import "strings"

// FileType is the coarse kind of a file, derived from its extension.
type FileType string

const (
	TypeImage    FileType = "image"
	TypeVideo    FileType = "video"
	TypeDocument FileType = "document"
	TypeOther    FileType = "other"
)

var imageExts = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true, "heic": true,
	"webp": true, "tif": true, "tiff": true, "bmp": true,
}

var videoExts = map[string]bool{
	"mp4": true, "mov": true, "mkv": true, "avi": true, "wmv": true,
	"flv": true, "m4v": true, "3gp": true,
}

var documentExts = map[string]bool{
	"pdf": true, "doc": true, "docx": true, "xls": true, "xlsx": true, "ppt": true,
	"pptx": true, "odt": true, "ods": true, "rtf": true, "txt": true,
}

// NormalizeExt lowercases an extension and strips its leading dot.
func NormalizeExt(ext string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
}

// TypeForExt maps an extension (with or without dot) to a FileType.
func TypeForExt(ext string) FileType {
	ext = NormalizeExt(ext)
	switch {
	case imageExts[ext]:
		return TypeImage
	case videoExts[ext]:
		return TypeVideo
	case documentExts[ext]:
		return TypeDocument
	default:
		return TypeOther
	}
}
