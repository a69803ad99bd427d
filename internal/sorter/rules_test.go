package sorter

import "testing"

func TestRule_Matches(t *testing.T) {
	photo := TagSet{Type: TypeImage, Ext: "jpg", Device: "Pixel 7", Faces: []string{"alice"}}

	tests := []struct {
		name string
		rule Rule
		want bool
	}{
		{name: "no conditions matches everything", rule: Rule{Target: "X"}, want: true},
		{name: "type matches", rule: Rule{Type: TypeImage, Target: "X"}, want: true},
		{name: "type mismatch", rule: Rule{Type: TypeVideo, Target: "X"}, want: false},
		{name: "ext with dot and case", rule: Rule{Ext: []string{".JPG"}, Target: "X"}.Normalize(), want: true},
		{name: "ext mismatch", rule: Rule{Ext: []string{"png"}, Target: "X"}, want: false},
		{name: "any listed face", rule: Rule{Faces: []string{"bob", "alice"}, Target: "X"}, want: true},
		{name: "face missing", rule: Rule{Faces: []string{"bob"}, Target: "X"}, want: false},
		{name: "camera exact", rule: Rule{Camera: "Pixel 7", Target: "X"}, want: true},
		{name: "camera mismatch", rule: Rule{Camera: "Pixel", Target: "X"}, want: false},
		{name: "camera as exif reports it", rule: Rule{Camera: "Pixel 7", Target: "X"}.Normalize(), want: true},
		{name: "all conditions must hold", rule: Rule{Type: TypeImage, Camera: "Canon", Target: "X"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rule.Matches(photo); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRule_Validate(t *testing.T) {
	if err := (Rule{Target: "X"}).Validate(0); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	err := (Rule{Type: TypeImage}).Validate(2)
	if err == nil {
		t.Fatal("expected error for rule without target")
	}
	if got := err.Error(); got != "rule #3 has no target" {
		t.Errorf("error = %q, want %q", got, "rule #3 has no target")
	}

	err = (Rule{Name: "photos"}).Validate(0)
	if err == nil || err.Error() != "photos has no target" {
		t.Errorf("error = %v, want %q", err, "photos has no target")
	}
}

func TestRule_MatchesSanitizedDevice(t *testing.T) {
	// Providers store the camera as a path segment.
	tags := TagSet{Type: TypeImage, Device: SanitizeDevice("Canon EOS 5D")}

	for _, camera := range []string{"Canon EOS 5D", "Canon_EOS_5D", " Canon EOS 5D\x00"} {
		if !(Rule{Camera: camera, Target: "X"}).Normalize().Matches(tags) {
			t.Errorf("camera %q did not match device %q", camera, tags.Device)
		}
	}
	if (Rule{Camera: "Canon EOS 6D", Target: "X"}).Normalize().Matches(tags) {
		t.Error("different camera matched")
	}
}
