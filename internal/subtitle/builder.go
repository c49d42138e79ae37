package subtitle

import (
	"strings"
)

const (
	// RightToLeftEmbedding opens an RTL embedding so Latin runs inside
	// Arabic text keep their visual order.
	RightToLeftEmbedding = "\u202B"
	// PopDirectionalFormatting closes the embedding.
	PopDirectionalFormatting = "\u202C"
)

// Builder turns translated segments into a right-to-left subtitle track.
type Builder struct {
	// Reshape pre-composes Arabic letters into joined presentation forms.
	// Disable it when the renderer shapes text itself.
	Reshape bool
}

func NewBuilder() *Builder {
	return &Builder{Reshape: true}
}

// Build assigns 1-based indexes in input order and wraps every text in an RTL
// embedding. Timing is passed through untouched, including zero-length cues.
func (b *Builder) Build(segments []Segment) *Track {
	track := &Track{Cues: make([]Cue, 0, len(segments))}

	for i, seg := range segments {
		track.Cues = append(track.Cues, Cue{
			Index: i + 1,
			Start: FormatTimestamp(seg.Start),
			End:   FormatTimestamp(seg.End),
			Text:  b.DisplayText(seg.Text),
		})
	}

	return track
}

// DisplayText flattens text to one line, optionally reshapes it, and wraps it
// in RLE ... PDF. Markers already present at the edges are dropped first so
// re-building a parsed track does not nest embeddings.
func (b *Builder) DisplayText(text string) string {
	text = unwrapEmbedding(flattenLines(text))
	if b.Reshape {
		text = Reshape(text)
	}
	return RightToLeftEmbedding + text + PopDirectionalFormatting
}

func flattenLines(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func unwrapEmbedding(text string) string {
	for strings.HasPrefix(text, RightToLeftEmbedding) &&
		strings.HasSuffix(text, PopDirectionalFormatting) &&
		len(text) >= len(RightToLeftEmbedding)+len(PopDirectionalFormatting) {
		text = strings.TrimPrefix(text, RightToLeftEmbedding)
		text = strings.TrimSuffix(text, PopDirectionalFormatting)
		text = strings.TrimSpace(text)
	}
	return text
}
