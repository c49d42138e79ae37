package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/mgpai22/tarjama/internal/config"
	"github.com/mgpai22/tarjama/internal/logging"
	"github.com/mgpai22/tarjama/internal/overlay"
)

func styleCommand(t *testing.T, flags map[string]string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addStyleFlags(cmd)
	for name, value := range flags {
		if err := cmd.Flags().Set(name, value); err != nil {
			t.Fatalf("set --%s: %v", name, err)
		}
	}
	return cmd
}

func TestDerivedPath(t *testing.T) {
	tests := []struct {
		input  string
		suffix string
		want   string
	}{
		{"talk.mp4", ".ar.mp4", "talk.ar.mp4"},
		{"/videos/talk.final.mov", ".ar.srt", "/videos/talk.final.ar.srt"},
		{"noext", ".wav", "noext.wav"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := derivedPath(tt.input, tt.suffix); got != tt.want {
				t.Errorf("derivedPath(%q, %q) = %q, want %q", tt.input, tt.suffix, got, tt.want)
			}
		})
	}
}

func TestRenderSettings(t *testing.T) {
	logger = logging.Nop()
	def := config.Default()

	tests := []struct {
		name       string
		flags      map[string]string
		wantStyle  overlay.Style
		wantLogo   bool
		wantCorner overlay.Corner
	}{
		{
			name:      "config defaults",
			wantStyle: overlay.Style{FontSize: 24, Background: "#0000007F"},
		},
		{
			name:      "six digit colour with opacity",
			flags:     map[string]string{"background": "#1E1E1E", "background-opacity": "100", "font-size": "30"},
			wantStyle: overlay.Style{FontSize: 30, Background: "#1E1E1EFF"},
		},
		{
			name:      "eight digit colour keeps its alpha",
			flags:     map[string]string{"background": "#FF000040"},
			wantStyle: overlay.Style{FontSize: 24, Background: "#FF000040"},
		},
		{
			name:      "eight digit colour with surrounding spaces",
			flags:     map[string]string{"background": " #11223344 "},
			wantStyle: overlay.Style{FontSize: 24, Background: "#11223344"},
		},
		{
			name:       "logo",
			flags:      map[string]string{"logo": "/tmp/logo.png", "logo-corner": "bottom-right", "logo-scale": "20"},
			wantStyle:  overlay.Style{FontSize: 24, Background: "#0000007F"},
			wantLogo:   true,
			wantCorner: overlay.BottomRight,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := styleCommand(t, tt.flags)
			style, ov, err := renderSettings(cmd, &def)
			if err != nil {
				t.Fatalf("renderSettings: %v", err)
			}
			if style != tt.wantStyle {
				t.Errorf("style = %+v, want %+v", style, tt.wantStyle)
			}
			logo, ok := ov.(overlay.LogoOverlay)
			if ok != tt.wantLogo {
				t.Fatalf("overlay = %#v, want logo %v", ov, tt.wantLogo)
			}
			if ok {
				if logo.Logo.Corner != tt.wantCorner {
					t.Errorf("corner = %v, want %v", logo.Logo.Corner, tt.wantCorner)
				}
				if logo.Logo.ScalePercent != 20 {
					t.Errorf("scale = %d, want 20", logo.Logo.ScalePercent)
				}
			}
		})
	}

	if def.Style.FontSize != 24 {
		t.Errorf("renderSettings modified the config: font size %d", def.Style.FontSize)
	}
}

func TestRenderSettingsRejectsBadInput(t *testing.T) {
	logger = logging.Nop()
	def := config.Default()

	for name, flags := range map[string]map[string]string{
		"bad colour": {"background": "#GG0000"},
		"zero font":  {"font-size": "0"},
		"big scale":  {"logo": "/tmp/logo.png", "logo-scale": "150"},
	} {
		t.Run(name, func(t *testing.T) {
			if _, _, err := renderSettings(styleCommand(t, flags), &def); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestColorCommand(t *testing.T) {
	logger = logging.Nop()

	tests := []struct {
		args    []string
		opacity string
		want    string
	}{
		{args: []string{"#1E1E1E"}, want: "&H7F1E1E1E"},
		{args: []string{"FF0000"}, opacity: "100", want: "&H000000FF"},
		{args: []string{"#00FF0000"}, want: "&HFF00FF00"},
		{args: []string{"nonsense"}, want: "&H80000000"},
	}

	for _, tt := range tests {
		t.Run(tt.args[0], func(t *testing.T) {
			cmd := &cobra.Command{Use: "color"}
			cmd.Flags().Int("opacity", -1, "")
			if tt.opacity != "" {
				if err := cmd.Flags().Set("opacity", tt.opacity); err != nil {
					t.Fatal(err)
				}
			}
			var out bytes.Buffer
			cmd.SetOut(&out)

			if err := runColor(cmd, tt.args); err != nil {
				t.Fatalf("runColor: %v", err)
			}
			if got := strings.TrimSpace(out.String()); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestColorCommandRejectsOpacityOutOfRange(t *testing.T) {
	logger = logging.Nop()
	cmd := &cobra.Command{Use: "color"}
	cmd.Flags().Int("opacity", -1, "")
	if err := cmd.Flags().Set("opacity", "101"); err != nil {
		t.Fatal(err)
	}
	if err := runColor(cmd, []string{"#000000"}); err == nil {
		t.Fatal("expected an error for opacity 101")
	}
}

func TestDescribePlan(t *testing.T) {
	plan, err := overlay.Build("in.mp4", "subs.srt", overlay.DefaultStyle(), overlay.LogoOverlay{Logo: overlay.Logo{
		Path:         "logo.png",
		ScalePercent: 15,
		Opacity:      1,
		Corner:       overlay.TopRight,
	}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	got := describePlan(plan, "out.mp4")
	for _, want := range []string{
		"video", "logo.png", "[logo]", "[base]", "[out]",
		"overlay=W-w-10:10",
		"ffmpeg -y -i in.mp4 -i logo.png -filter_complex",
		"out.mp4\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("plan description missing %q:\n%s", want, got)
		}
	}
}

func TestShellQuote(t *testing.T) {
	tests := map[string]string{
		"-y":          "-y",
		"in.mp4":      "in.mp4",
		"my file.mp4": "'my file.mp4'",
		"it's":        `'it'\''s'`,
		"[out]":       "'[out]'",
		"":            "''",
	}
	for in, want := range tests {
		if got := shellQuote(in); got != want {
			t.Errorf("shellQuote(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMaskKey(t *testing.T) {
	tests := map[string]string{
		"":             "",
		"abc":          "****",
		"sk-123456789": "****6789",
	}
	for in, want := range tests {
		if got := maskKey(in); got != want {
			t.Errorf("maskKey(%q) = %q, want %q", in, got, want)
		}
	}
}
