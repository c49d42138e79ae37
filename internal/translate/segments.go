package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/mgpai22/tarjama/internal/subtitle"
)

// TranslateSegments translates segment text and keeps every timing. Blank
// segments are passed through without a request.
func TranslateSegments(
	ctx context.Context,
	t Translator,
	segments []subtitle.Segment,
	concurrency int,
) ([]subtitle.Segment, error) {
	items := make([]TranslationItem, 0, len(segments))
	for i, seg := range segments {
		if strings.TrimSpace(seg.Text) == "" {
			continue
		}
		items = append(items, TranslationItem{Index: i, Text: seg.Text})
	}

	out := make([]subtitle.Segment, len(segments))
	copy(out, segments)
	if len(items) == 0 {
		return out, nil
	}

	var (
		results []TranslationResult
		err     error
	)
	if ct, ok := t.(ConcurrentTranslator); ok && concurrency > 1 {
		results, err = ct.TranslateWithConcurrency(ctx, items, concurrency)
	} else {
		results, err = t.Translate(ctx, items)
	}
	if err != nil {
		return nil, err
	}

	translated := make(map[int]string, len(results))
	for _, r := range results {
		translated[r.Index] = strings.TrimSpace(r.Text)
	}
	for _, item := range items {
		text, ok := translated[item.Index]
		if !ok {
			return nil, fmt.Errorf("missing translation for segment %d", item.Index)
		}
		out[item.Index].Text = text
	}
	return out, nil
}
