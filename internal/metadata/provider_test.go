package metadata

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"omnisort/internal/sorter"
)

func halfImage(invert bool) image.Image {
	img := image.NewGray(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			dark := x < 16
			if invert {
				dark = !dark
			}
			v := uint8(240)
			if dark {
				v = 10
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 100}); err != nil {
		t.Fatalf("jpeg encode: %v", err)
	}
	return buf.Bytes()
}

func writeFile(t *testing.T, dir, name string, data []byte) *sorter.FileRecord {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	return sorter.NewFileRecord(dir, path, info)
}

func TestAverageHash(t *testing.T) {
	t.Run("uniform image hashes to zero", func(t *testing.T) {
		img := image.NewGray(image.Rect(0, 0, 16, 16))
		got, err := AverageHash(bytes.NewReader(encodePNG(t, img)))
		if err != nil {
			t.Fatalf("AverageHash() error = %v", err)
		}
		if got != 0 {
			t.Errorf("AverageHash() = %016x, want 0", got)
		}
	})

	t.Run("survives re-encoding", func(t *testing.T) {
		fromPNG, err := AverageHash(bytes.NewReader(encodePNG(t, halfImage(false))))
		if err != nil {
			t.Fatal(err)
		}
		fromJPEG, err := AverageHash(bytes.NewReader(encodeJPEG(t, halfImage(false))))
		if err != nil {
			t.Fatal(err)
		}
		if fromPNG != fromJPEG {
			t.Errorf("png %016x != jpeg %016x", fromPNG, fromJPEG)
		}
	})

	t.Run("distinguishes different images", func(t *testing.T) {
		a, _ := AverageHash(bytes.NewReader(encodePNG(t, halfImage(false))))
		b, _ := AverageHash(bytes.NewReader(encodePNG(t, halfImage(true))))
		if a == b {
			t.Errorf("expected different hashes, both %016x", a)
		}
	})

	t.Run("rejects non-images", func(t *testing.T) {
		if _, err := AverageHash(strings.NewReader("not an image")); err == nil {
			t.Error("expected error")
		}
	})
}

func TestProvider_Extract(t *testing.T) {
	ctx := context.Background()

	t.Run("identical image content hashes equal", func(t *testing.T) {
		dir := t.TempDir()
		a := writeFile(t, dir, "a.jpg", []byte("same bytes"))
		b := writeFile(t, dir, "b.jpg", []byte("same bytes"))
		c := writeFile(t, dir, "c.jpg", []byte("other bytes"))
		p := NewProvider(Options{})

		ta, err := p.Extract(ctx, a)
		if err != nil {
			t.Fatalf("Extract() error = %v", err)
		}
		tb, _ := p.Extract(ctx, b)
		tc, _ := p.Extract(ctx, c)
		if !strings.HasPrefix(ta.Hash, "sha256:") {
			t.Errorf("Hash = %q, want sha256 prefix", ta.Hash)
		}
		if ta.Hash != tb.Hash {
			t.Error("identical files hashed differently")
		}
		if ta.Hash == tc.Hash {
			t.Error("different files hashed equal")
		}
	})

	t.Run("non-image files carry no hash", func(t *testing.T) {
		dir := t.TempDir()
		p := NewProvider(Options{})
		for _, name := range []string{"__init__.py", "notes.txt", "report.pdf", ".gitkeep"} {
			rec := writeFile(t, dir, name, []byte("same"))
			tags, err := p.Extract(ctx, rec)
			if err != nil {
				t.Fatalf("Extract(%s) error = %v", name, err)
			}
			if tags.Hash != "" {
				t.Errorf("Extract(%s).Hash = %q, want absent", name, tags.Hash)
			}
		}
	})

	t.Run("image without exif keeps device absent", func(t *testing.T) {
		dir := t.TempDir()
		rec := writeFile(t, dir, "pic.png", encodePNG(t, halfImage(false)))

		tags, err := NewProvider(Options{}).Extract(ctx, rec)
		if err != nil {
			t.Fatalf("Extract() error = %v", err)
		}
		if tags.Device != "" || tags.Year != 0 {
			t.Errorf("expected no exif fields, got device=%q year=%d", tags.Device, tags.Year)
		}
		if tags.Extra["ahash"] == "" {
			t.Error("expected ahash in Extra")
		}
		if !strings.HasPrefix(tags.Hash, "sha256:") {
			t.Errorf("Hash = %q, want content hash", tags.Hash)
		}
	})

	t.Run("perceptual dedup matches re-encoded images", func(t *testing.T) {
		dir := t.TempDir()
		a := writeFile(t, dir, "a.png", encodePNG(t, halfImage(false)))
		b := writeFile(t, dir, "b.jpg", encodeJPEG(t, halfImage(false)))
		p := NewProvider(Options{PerceptualDedup: true})

		ta, _ := p.Extract(ctx, a)
		tb, _ := p.Extract(ctx, b)
		if !strings.HasPrefix(ta.Hash, "ahash:") || ta.Hash != tb.Hash {
			t.Errorf("hashes %q and %q should be equal ahash values", ta.Hash, tb.Hash)
		}
	})

	t.Run("undecodable image falls back to content hash", func(t *testing.T) {
		dir := t.TempDir()
		rec := writeFile(t, dir, "broken.jpg", []byte("not really a jpeg"))

		tags, err := NewProvider(Options{PerceptualDedup: true}).Extract(ctx, rec)
		if err != nil {
			t.Fatalf("Extract() error = %v", err)
		}
		if !strings.HasPrefix(tags.Hash, "sha256:") {
			t.Errorf("Hash = %q, want content hash", tags.Hash)
		}
	})

	t.Run("finds content keywords in text files", func(t *testing.T) {
		dir := t.TempDir()
		rec := writeFile(t, dir, "notes.txt", []byte("UNISA Assignment, due Friday.\nPortfolio draft"))

		tags, err := NewProvider(Options{Keywords: []string{"assignment", "Portfolio", "exam", "assignment"}}).Extract(ctx, rec)
		if err != nil {
			t.Fatalf("Extract() error = %v", err)
		}
		if len(tags.Keywords) != 2 || tags.Keywords[0] != "assignment" || tags.Keywords[1] != "portfolio" {
			t.Errorf("Keywords = %v", tags.Keywords)
		}
	})

	t.Run("missing file reports degraded extraction", func(t *testing.T) {
		dir := t.TempDir()
		rec := &sorter.FileRecord{Path: filepath.Join(dir, "gone.txt"), Name: "gone.txt", Ext: ".txt", ModTime: time.Now()}

		tags, err := NewProvider(Options{Keywords: []string{"exam"}}).Extract(ctx, rec)
		if err == nil {
			t.Fatal("expected error")
		}
		if tags.Hash != "" {
			t.Errorf("Hash = %q, want absent", tags.Hash)
		}
	})

	t.Run("cancelled context stops extraction", func(t *testing.T) {
		dir := t.TempDir()
		rec := writeFile(t, dir, "a.bin", []byte("data"))
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		if _, err := NewProvider(Options{}).Extract(cctx, rec); err == nil {
			t.Error("expected context error")
		}
	})
}
