package subtitle

import (
	"strings"
	"testing"
)

func TestBuildEmpty(t *testing.T) {
	track := NewBuilder().Build(nil)
	if track == nil {
		t.Fatal("Build(nil) returned nil track")
	}
	if track.Len() != 0 {
		t.Errorf("expected 0 cues, got %d", track.Len())
	}

	var sb strings.Builder
	if _, err := track.WriteTo(&sb); err != nil {
		t.Fatalf("WriteTo error: %v", err)
	}
	if sb.Len() != 0 {
		t.Errorf("empty track wrote %q", sb.String())
	}
}

func TestBuildSingleSegment(t *testing.T) {
	track := NewBuilder().Build([]Segment{{Start: 1.0, End: 2.5, Text: "hi"}})

	if track.Len() != 1 {
		t.Fatalf("expected 1 cue, got %d", track.Len())
	}
	cue := track.Cues[0]
	if cue.Index != 1 {
		t.Errorf("index = %d, want 1", cue.Index)
	}
	if cue.Start != "00:00:01,000" || cue.End != "00:00:02,500" {
		t.Errorf("stamps = %s --> %s", cue.Start, cue.End)
	}
	if cue.Text != RightToLeftEmbedding+"hi"+PopDirectionalFormatting {
		t.Errorf("text = %+q", cue.Text)
	}
}

func TestBuildPreservesOrderAndZeroDuration(t *testing.T) {
	segments := []Segment{
		{Start: 0, End: 1, Text: "first"},
		{Start: 1, End: 1, Text: "zero"},
		{Start: 0.5, End: 0.2, Text: "backwards"},
	}

	track := NewBuilder().Build(segments)
	if track.Len() != 3 {
		t.Fatalf("expected 3 cues, got %d", track.Len())
	}
	for i, cue := range track.Cues {
		if cue.Index != i+1 {
			t.Errorf("cue %d index = %d", i, cue.Index)
		}
		if !strings.Contains(cue.Text, segments[i].Text) {
			t.Errorf("cue %d text %q does not carry %q", i, cue.Text, segments[i].Text)
		}
	}
	if track.Cues[1].Start != track.Cues[1].End {
		t.Errorf("zero-duration cue changed: %s --> %s", track.Cues[1].Start, track.Cues[1].End)
	}
	if track.Cues[2].Start != "00:00:00,500" || track.Cues[2].End != "00:00:00,200" {
		t.Errorf("backwards cue altered: %s --> %s", track.Cues[2].Start, track.Cues[2].End)
	}
}

func TestDisplayTextReshapesArabic(t *testing.T) {
	b := NewBuilder()
	got := b.DisplayText("بيت")
	want := RightToLeftEmbedding + "\uFE91\uFEF4\uFE96" + PopDirectionalFormatting
	if got != want {
		t.Errorf("DisplayText = %+q, want %+q", got, want)
	}

	b.Reshape = false
	got = b.DisplayText("بيت")
	if got != RightToLeftEmbedding+"بيت"+PopDirectionalFormatting {
		t.Errorf("DisplayText without reshape = %+q", got)
	}
}

func TestDisplayTextFlattensAndIsIdempotent(t *testing.T) {
	b := &Builder{}
	once := b.DisplayText("  line one\nline two ")
	if once != RightToLeftEmbedding+"line one line two"+PopDirectionalFormatting {
		t.Fatalf("DisplayText = %+q", once)
	}
	if twice := b.DisplayText(once); twice != once {
		t.Errorf("re-wrapping changed text: %+q", twice)
	}
}

func TestNewSegment(t *testing.T) {
	if _, err := NewSegment(1, 2, "ok"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := NewSegment(2, 1, "end before start is allowed"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := NewSegment(-1, 2, "negative"); err == nil {
		t.Error("expected error for negative start")
	}
}

func TestValidateSegments(t *testing.T) {
	tests := []struct {
		name     string
		segments []Segment
		wantErr  bool
	}{
		{"empty", nil, false},
		{"ordered", []Segment{{0, 1, "a"}, {1, 2, "b"}}, false},
		{"zero duration", []Segment{{1, 1, "a"}}, true},
		{"end before start", []Segment{{2, 1, "a"}}, true},
		{"out of order", []Segment{{3, 4, "a"}, {1, 2, "b"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSegments(tt.segments)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSegments() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
