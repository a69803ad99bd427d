package sorter

import (
	"strings"
	"testing"
	"time"
)

func TestBaseTags(t *testing.T) {
	rec := &FileRecord{
		Path:    "/r/in/Photo.JPG",
		RelPath: "in/Photo.JPG",
		Name:    "Photo.JPG",
		Ext:     ".jpg",
		ModTime: time.Date(2021, 3, 4, 12, 0, 0, 0, time.Local),
	}

	got := BaseTags(rec)

	if got.Type != TypeImage {
		t.Errorf("Type = %q, want %q", got.Type, TypeImage)
	}
	if got.Ext != "jpg" {
		t.Errorf("Ext = %q, want %q", got.Ext, "jpg")
	}
	if got.Year != 2021 || got.Month != 3 || got.Day != 4 {
		t.Errorf("date = %d-%d-%d, want 2021-3-4", got.Year, got.Month, got.Day)
	}
	if got.Path != "in/Photo.JPG" || got.Name != "Photo.JPG" {
		t.Errorf("Path, Name = %q, %q", got.Path, got.Name)
	}
	if got.Device != "" || got.Hash != "" {
		t.Errorf("Device, Hash = %q, %q, want empty", got.Device, got.Hash)
	}
}

func TestTagSet_Merge(t *testing.T) {
	base := TagSet{Type: TypeImage, Ext: "jpg", Year: 2020, Month: 1, Day: 2, Extra: map[string]string{"a": "1"}}

	t.Run("provider values win", func(t *testing.T) {
		got := base.Merge(TagSet{Year: 2019, Month: 12, Device: "Pixel", Hash: "sha256:ff", Extra: map[string]string{"b": "2"}})
		if got.Year != 2019 || got.Month != 12 || got.Day != 0 {
			t.Errorf("date = %d-%d-%d, want 2019-12-0", got.Year, got.Month, got.Day)
		}
		if got.Device != "Pixel" || got.Hash != "sha256:ff" {
			t.Errorf("Device, Hash = %q, %q", got.Device, got.Hash)
		}
		if got.Extra["a"] != "1" || got.Extra["b"] != "2" {
			t.Errorf("Extra = %v", got.Extra)
		}
		if len(base.Extra) != 1 {
			t.Errorf("Merge modified receiver Extra: %v", base.Extra)
		}
	})

	t.Run("empty overlay changes nothing", func(t *testing.T) {
		got := base.Merge(TagSet{})
		if got.Type != TypeImage || got.Year != 2020 || got.Day != 2 {
			t.Errorf("got %+v", got)
		}
	})
}

func TestTagSet_Lookup(t *testing.T) {
	tags := TagSet{Year: 2024, Month: 2, Hash: "sha256:ab"}

	if v, ok := tags.Lookup("month"); !ok || v != "02" {
		t.Errorf("Lookup(month) = %q, %v", v, ok)
	}
	if v, ok := tags.Lookup("hash"); !ok || v != "sha256:ab" {
		t.Errorf("Lookup(hash) = %q, %v", v, ok)
	}
	for _, name := range []string{"day", "device", "face", "faces", "stem", "unknown"} {
		if _, ok := tags.Lookup(name); ok {
			t.Errorf("Lookup(%s) ok = true, want false", name)
		}
	}
}

func TestTypeForExt(t *testing.T) {
	tests := map[string]FileType{
		".JPG": TypeImage,
		"heic": TypeImage,
		".mp4": TypeVideo,
		"pdf":  TypeDocument,
		".txt": TypeDocument,
		".zip": TypeOther,
		"":     TypeOther,
	}
	for ext, want := range tests {
		if got := TypeForExt(ext); got != want {
			t.Errorf("TypeForExt(%q) = %q, want %q", ext, got, want)
		}
	}
}

func TestSanitizeDevice(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Canon EOS 5D", "Canon_EOS_5D"},
		{"  Pixel 7 Pro\x00", "Pixel_7_Pro"},
		{"a/b\\c:d", "a_b_c_d"},
		{strings.Repeat("x", 50), strings.Repeat("x", 40)},
		{"", ""},
	}
	for _, tt := range tests {
		got := SanitizeDevice(tt.in)
		if got != tt.want {
			t.Errorf("SanitizeDevice(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if again := SanitizeDevice(got); again != got {
			t.Errorf("SanitizeDevice(%q) = %q, not stable", got, again)
		}
	}
}
