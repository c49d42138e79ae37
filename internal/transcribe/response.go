package transcribe

import (
	"encoding/json"
	"errors"
	"regexp"
	"sort"
	"strings"

	"github.com/mgpai22/tarjama/internal/subtitle"
)

// segment as LLM providers are asked to return it
type transcriptSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

var jsonFenceRegex = regexp.MustCompile("```(?:json)?\\s*")

// removes markdown code fences from a model reply
func cleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)
	s = jsonFenceRegex.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// preferred wrapper keys when a model returns an object instead of an array
var wrapperKeys = []string{"segments", "transcript", "data"}

const maxWrapperDepth = 4

// extractTranscriptSegments finds the first JSON value in s that decodes to
// a non-empty transcript, skipping prose before and after it.
func extractTranscriptSegments(s string) ([]transcriptSegment, error) {
	for i := 0; i < len(s); i++ {
		if s[i] != '[' && s[i] != '{' {
			continue
		}

		var raw json.RawMessage
		if err := json.NewDecoder(strings.NewReader(s[i:])).Decode(&raw); err != nil {
			continue
		}
		if segments, ok := segmentsFromJSON(raw, 0); ok {
			return segments, nil
		}
	}
	return nil, errors.New("no transcript JSON found in response")
}

func segmentsFromJSON(raw json.RawMessage, depth int) ([]transcriptSegment, bool) {
	if depth > maxWrapperDepth {
		return nil, false
	}

	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		var segments []transcriptSegment
		if err := json.Unmarshal(raw, &segments); err != nil {
			return nil, false
		}
		return segments, validateSegments(segments)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		return keyRank(keys[i]) < keyRank(keys[j]) ||
			(keyRank(keys[i]) == keyRank(keys[j]) && keys[i] < keys[j])
	})

	for _, k := range keys {
		if segments, ok := segmentsFromJSON(obj[k], depth+1); ok {
			return segments, true
		}
	}
	return nil, false
}

func keyRank(key string) int {
	for i, k := range wrapperKeys {
		if strings.EqualFold(k, key) {
			return i
		}
	}
	return len(wrapperKeys)
}

// true when at least one segment carries text or a timestamp
func validateSegments(segments []transcriptSegment) bool {
	for _, s := range segments {
		if s.Text != "" || s.Start != 0 || s.End != 0 {
			return true
		}
	}
	return false
}

// converts provider segments, dropping empty text and clamping bad times
func toSegments(in []transcriptSegment) []subtitle.Segment {
	out := make([]subtitle.Segment, 0, len(in))
	for _, ts := range in {
		text := strings.TrimSpace(ts.Text)
		if text == "" {
			continue
		}
		start := max(ts.Start, 0)
		end := max(ts.End, start)
		out = append(out, subtitle.Segment{Start: start, End: end, Text: text})
	}
	return out
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
