package metadata

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/nfnt/resize"
)

// AverageHash computes the 64-bit average hash of an image: the image is
// scaled to 8x8, converted to grey, and each bit records whether a pixel is
// brighter than the mean.
func AverageHash(r io.Reader) (uint64, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return 0, fmt.Errorf("decode image: %w", err)
	}
	small := resize.Resize(8, 8, img, resize.Bilinear)

	var grey [64]uint32
	var total uint64
	b := small.Bounds()
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			r, g, bl, _ := small.At(b.Min.X+x, b.Min.Y+y).RGBA()
			v := (299*r + 587*g + 114*bl) / 1000
			grey[y*8+x] = v
			total += uint64(v)
		}
	}
	mean := total / 64

	var hash uint64
	for i, v := range grey {
		if uint64(v) > mean {
			hash |= 1 << uint(63-i)
		}
	}
	return hash, nil
}

func averageHashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h, err := AverageHash(f)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x", h), nil
}
