package color

import "testing"

func TestToPacked(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Packed
	}{
		{"six digits default alpha", "#000000", "&H7F000000"},
		{"six digits without marker", "FF8000", "&H7F0080FF"},
		{"lowercase input", "#aabbcc", "&H7FCCBBAA"},
		{"eight digits transparent", "#11223300", "&HFF332211"},
		{"eight digits opaque", "#112233FF", "&H00332211"},
		{"eight digits half", "#00000080", "&H7F000000"},
		{"surrounding whitespace", "  #102030  ", "&H7F302010"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToPacked(tt.in); got != tt.want {
				t.Errorf("ToPacked(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestToPackedFallback(t *testing.T) {
	inputs := []string{
		"",
		"#",
		"#12345",
		"1234567",
		"#123456789",
		"#GGHHII",
		"#12345Z00",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			if got := ToPacked(in); got != "&H80000000" {
				t.Errorf("ToPacked(%q) = %q, want fallback &H80000000", in, got)
			}
			if Valid(in) {
				t.Errorf("Valid(%q) = true, want false", in)
			}
		})
	}
}

func TestCodecOverrides(t *testing.T) {
	c := Codec{DefaultAlpha: 0xFF, Fallback: "&H00FFFFFF"}

	if got := c.ToPacked("#010203"); got != "&H00030201" {
		t.Errorf("ToPacked with opaque default = %q, want &H00030201", got)
	}
	if got := c.ToPacked("nope"); got != "&H00FFFFFF" {
		t.Errorf("ToPacked fallback = %q, want &H00FFFFFF", got)
	}
}

func TestPackedAlphaInversion(t *testing.T) {
	for a := 0; a <= 255; a++ {
		spec := "#AABBCC" + hexByte(uint8(a))
		packed := ToPacked(spec)
		want := hexByte(uint8(255 - a))
		if got := string(packed[2:4]); got != want {
			t.Fatalf("alpha %02X: packed alpha = %s, want %s", a, got, want)
		}
	}
}

func TestUnpackRoundTrip(t *testing.T) {
	specs := []string{"#000000FF", "#FF000000", "#12AB34CD", "#FFFFFF80"}

	for _, spec := range specs {
		got, err := Unpack(ToPacked(spec))
		if err != nil {
			t.Fatalf("Unpack(ToPacked(%q)) error: %v", spec, err)
		}
		if got != spec {
			t.Errorf("round trip %q = %q", spec, got)
		}
	}

	got, err := Unpack(ToPacked("#102030"))
	if err != nil {
		t.Fatalf("Unpack error: %v", err)
	}
	if got != "#10203080" {
		t.Errorf("six-digit round trip = %q, want #10203080", got)
	}
}

func TestUnpackRejectsMalformed(t *testing.T) {
	for _, p := range []Packed{"", "7F000000", "&H7F0000", "&HZZ000000"} {
		if _, err := Unpack(p); err == nil {
			t.Errorf("Unpack(%q) expected error", p)
		}
	}
}

func TestWithOpacity(t *testing.T) {
	tests := []struct {
		spec    string
		percent int
		want    string
	}{
		{"#000000", 50, "#0000007F"},
		{"#000000", 100, "#000000FF"},
		{"#ffffff", 0, "#FFFFFF00"},
		{"#12345678", 100, "#123456FF"},
		{"#000000", 150, "#000000FF"},
		{"#000000", -5, "#00000000"},
	}

	for _, tt := range tests {
		if got := WithOpacity(tt.spec, tt.percent); got != tt.want {
			t.Errorf("WithOpacity(%q, %d) = %q, want %q", tt.spec, tt.percent, got, tt.want)
		}
	}
}

func hexByte(b uint8) string {
	const digits = "0123456789ABCDEF"
	return string([]byte{digits[b>>4], digits[b&0x0F]})
}
