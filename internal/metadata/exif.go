package metadata

import (
	"os"
	"time"

	"omnisort/internal/sorter"

	"github.com/rwcarlsen/goexif/exif"
)

type exifInfo struct {
	taken  time.Time
	device string
}

// readEXIF extracts the capture time and camera from an image's EXIF block.
// Either field may be empty when the tag is absent.
func readEXIF(path string) (exifInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return exifInfo{}, err
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return exifInfo{}, err
	}

	var info exifInfo
	if t, err := x.DateTime(); err == nil && t.Year() > 1900 {
		info.taken = t
	}
	for _, field := range []exif.FieldName{exif.Model, exif.Make} {
		tag, err := x.Get(field)
		if err != nil {
			continue
		}
		if v, err := tag.StringVal(); err == nil {
			if d := sorter.SanitizeDevice(v); d != "" {
				info.device = d
				break
			}
		}
	}
	return info, nil
}
