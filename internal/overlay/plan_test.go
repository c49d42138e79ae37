package overlay

import (
	"math"
	"reflect"
	"strings"
	"testing"
)

const wantStyle = "FontSize=24,BackColour=&H7F000000,BorderStyle=4,Outline=0,Shadow=0,MarginV=30"

func TestBuildWithoutLogo(t *testing.T) {
	plan, err := Build("/in/video.mp4", "/tmp/job/track.srt", DefaultStyle(), NoOverlay{})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	if len(plan.Graph.Stages) != 1 {
		t.Fatalf("expected 1 stage, got %d", len(plan.Graph.Stages))
	}
	stage := plan.Graph.Stages[0]
	if !reflect.DeepEqual(stage.Inputs, []string{"0:v"}) {
		t.Errorf("stage inputs = %v, want [0:v]", stage.Inputs)
	}
	if len(plan.Inputs) != 1 || plan.Inputs[0].Path != "/in/video.mp4" {
		t.Errorf("inputs = %+v", plan.Inputs)
	}
	if plan.HasLogo() {
		t.Error("HasLogo() = true without logo")
	}
	if !plan.CopyAudio {
		t.Error("CopyAudio should always be set")
	}

	want := []string{
		"-y",
		"-i", "/in/video.mp4",
		"-vf", "subtitles='/tmp/job/track.srt':force_style='" + wantStyle + "'",
		"-c:a", "copy",
		"/out/result.mp4",
	}
	if got := plan.Args("/out/result.mp4"); !reflect.DeepEqual(got, want) {
		t.Errorf("Args() =\n %q\nwant\n %q", got, want)
	}
}

func TestBuildNilOverlayMeansNoLogo(t *testing.T) {
	plan, err := Build("v.mp4", "t.srt", DefaultStyle(), nil)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if len(plan.Graph.Stages) != 1 || plan.HasLogo() {
		t.Errorf("nil overlay produced %d stages", len(plan.Graph.Stages))
	}
	if FromLogo(nil) != (NoOverlay{}) {
		t.Error("FromLogo(nil) should be NoOverlay")
	}
}

func TestBuildWithLogo(t *testing.T) {
	logo := Logo{
		Path:         "/assets/logo.png",
		ScalePercent: 15,
		Opacity:      0.5,
		Corner:       BottomRight,
	}

	plan, err := Build("/in/video.mp4", "/tmp/track.srt", DefaultStyle(), LogoOverlay{Logo: logo})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	if len(plan.Graph.Stages) != 3 {
		t.Fatalf("expected 3 stages, got %d", len(plan.Graph.Stages))
	}

	scale, place, burn := plan.Graph.Stages[0], plan.Graph.Stages[1], plan.Graph.Stages[2]
	if !reflect.DeepEqual(scale.Inputs, []string{"1:v"}) || scale.Output != "logo" {
		t.Errorf("scale stage wiring = %v -> %q", scale.Inputs, scale.Output)
	}
	if !reflect.DeepEqual(place.Inputs, []string{"0:v", scale.Output}) || place.Output != "base" {
		t.Errorf("overlay stage wiring = %v -> %q", place.Inputs, place.Output)
	}
	if !reflect.DeepEqual(burn.Inputs, []string{place.Output}) || burn.Output != "out" {
		t.Errorf("subtitle stage wiring = %v -> %q", burn.Inputs, burn.Output)
	}

	wantGraph := "[1:v]scale=iw*0.15:-1,format=rgba,colorchannelmixer=aa=0.5[logo];" +
		"[0:v][logo]overlay=W-w-10:H-h-10[base];" +
		"[base]subtitles='/tmp/track.srt':force_style='" + wantStyle + "'[out]"
	if got := plan.Graph.String(); got != wantGraph {
		t.Errorf("graph =\n %s\nwant\n %s", got, wantGraph)
	}

	want := []string{
		"-y",
		"-i", "/in/video.mp4",
		"-i", "/assets/logo.png",
		"-filter_complex", wantGraph,
		"-map", "[out]",
		"-map", "0:a?",
		"-c:a", "copy",
		"out.mp4",
	}
	if got := plan.Args("out.mp4"); !reflect.DeepEqual(got, want) {
		t.Errorf("Args() =\n %q\nwant\n %q", got, want)
	}
}

func TestLogoFullyOpaqueSkipsAlphaMix(t *testing.T) {
	logo := Logo{Path: "logo.png", ScalePercent: 100, Opacity: 1.0}
	plan, err := Build("v.mp4", "t.srt", DefaultStyle(), LogoOverlay{Logo: logo})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if got := plan.Graph.Stages[0].Chain(); got != "scale=iw*1:-1" {
		t.Errorf("scale chain = %q", got)
	}
}

func TestCornerOffsets(t *testing.T) {
	tests := []struct {
		corner Corner
		want   string
	}{
		{TopLeft, "overlay=10:10"},
		{TopRight, "overlay=W-w-10:10"},
		{BottomLeft, "overlay=10:H-h-10"},
		{BottomRight, "overlay=W-w-10:H-h-10"},
		{Corner(42), "overlay=10:10"},
	}

	for _, tt := range tests {
		t.Run(tt.corner.String(), func(t *testing.T) {
			logo := Logo{Path: "logo.png", ScalePercent: 20, Opacity: 1, Corner: tt.corner}
			plan, err := Build("v.mp4", "t.srt", DefaultStyle(), LogoOverlay{Logo: logo})
			if err != nil {
				t.Fatalf("Build error: %v", err)
			}
			if got := plan.Graph.Stages[1].Chain(); got != tt.want {
				t.Errorf("overlay chain = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseCorner(t *testing.T) {
	tests := []struct {
		in     string
		want   Corner
		wantOK bool
	}{
		{"Top-Left", TopLeft, true},
		{"Top-Right", TopRight, true},
		{"bottom_left", BottomLeft, true},
		{"Bottom Right", BottomRight, true},
		{"br", BottomRight, true},
		{"center", TopLeft, false},
		{"", TopLeft, false},
	}

	for _, tt := range tests {
		got, ok := ParseCorner(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseCorner(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestBuildEscapesTrackPath(t *testing.T) {
	plan, err := Build("v.mp4", `C:\Temp\job\track.srt`, DefaultStyle(), NoOverlay{})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	chain := plan.Graph.Stages[0].Chain()
	if !strings.HasPrefix(chain, `subtitles='C\:/Temp/job/track.srt':`) {
		t.Errorf("chain = %q", chain)
	}
}

func TestStyleUsesPackedBackground(t *testing.T) {
	s := Style{FontSize: 32, Background: "#FF000040"}
	want := "FontSize=32,BackColour=&HBF0000FF,BorderStyle=4,Outline=0,Shadow=0,MarginV=30"
	if got := s.ForceStyle(); got != want {
		t.Errorf("ForceStyle() = %q, want %q", got, want)
	}

	s.Background = "#12345"
	if got := s.ForceStyle(); !strings.Contains(got, "BackColour=&H80000000") {
		t.Errorf("malformed background should fall back: %q", got)
	}
}

func TestBuildRejectsInvalidInput(t *testing.T) {
	valid := Logo{Path: "logo.png", ScalePercent: 10, Opacity: 0.5}

	tests := []struct {
		name  string
		video string
		track string
		style Style
		ov    Overlay
	}{
		{"missing video", "", "t.srt", DefaultStyle(), NoOverlay{}},
		{"missing track", "v.mp4", "", DefaultStyle(), NoOverlay{}},
		{"zero font", "v.mp4", "t.srt", Style{FontSize: 0}, NoOverlay{}},
		{"scale too big", "v.mp4", "t.srt", DefaultStyle(), LogoOverlay{Logo: Logo{Path: "l.png", ScalePercent: 101, Opacity: 1}}},
		{"scale zero", "v.mp4", "t.srt", DefaultStyle(), LogoOverlay{Logo: Logo{Path: "l.png", ScalePercent: 0, Opacity: 1}}},
		{"opacity above one", "v.mp4", "t.srt", DefaultStyle(), LogoOverlay{Logo: Logo{Path: "l.png", ScalePercent: 10, Opacity: 1.5}}},
		{"opacity NaN", "v.mp4", "t.srt", DefaultStyle(), LogoOverlay{Logo: Logo{Path: "l.png", ScalePercent: 10, Opacity: math.NaN()}}},
		{"missing logo path", "v.mp4", "t.srt", DefaultStyle(), LogoOverlay{Logo: Logo{ScalePercent: 10, Opacity: 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Build(tt.video, tt.track, tt.style, tt.ov); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := Build("v.mp4", "t.srt", DefaultStyle(), LogoOverlay{Logo: valid}); err != nil {
		t.Errorf("valid logo rejected: %v", err)
	}
}
