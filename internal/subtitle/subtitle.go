package subtitle

import (
	"fmt"
	"math"
)

// represents one timed text segment (seconds) from transcription/translation
type Segment struct {
	Start float64
	End   float64
	Text  string
}

// NewSegment rejects negative or non-finite timestamps. End before start is
// accepted here; ValidateSegments reports it.
func NewSegment(start, end float64, text string) (Segment, error) {
	for _, v := range []float64{start, end} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Segment{}, fmt.Errorf("segment timestamp must be finite, got %v", v)
		}
		if v < 0 {
			return Segment{}, fmt.Errorf("segment timestamp must not be negative, got %v", v)
		}
	}
	return Segment{Start: start, End: end, Text: text}, nil
}

func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// ValidateSegments checks timing invariants Build does not enforce: end after
// start and non-decreasing start times.
func ValidateSegments(segments []Segment) error {
	for i, seg := range segments {
		if seg.Start < 0 || seg.End < 0 {
			return fmt.Errorf("segment %d: negative timestamp (%v --> %v)", i, seg.Start, seg.End)
		}
		if seg.End <= seg.Start {
			return fmt.Errorf("segment %d: end %v is not after start %v", i, seg.End, seg.Start)
		}
		if i > 0 && seg.Start < segments[i-1].Start {
			return fmt.Errorf("segment %d: start %v precedes previous start %v", i, seg.Start, segments[i-1].Start)
		}
	}
	return nil
}

// single subtitle cue, ready to persist
type Cue struct {
	Index int
	Start string
	End   string
	Text  string
}

// ordered cues; insertion order is display order
type Track struct {
	Cues     []Cue
	Language string
}

func (t *Track) Len() int {
	return len(t.Cues)
}
