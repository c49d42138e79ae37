package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

var srtTimingRegex = regexp.MustCompile(
	`(\d{2,}):(\d{2}):(\d{2})[,.](\d{3})\s*-->\s*(\d{2,}):(\d{2}):(\d{2})[,.](\d{3})`,
)

// ReadSRT parses a SubRip file into segments, keeping file order.
func ReadSRT(path string) ([]Segment, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SRT file: %w", err)
	}
	defer file.Close()

	return ParseSRT(file)
}

// ParseSRT reads SubRip cues. Multi-line cue text is joined with "\n"; the
// numeric index line is optional.
func ParseSRT(r io.Reader) ([]Segment, error) {
	var (
		segments  []Segment
		current   *Segment
		textLines []string
		lineNum   int
	)

	flush := func() {
		if current != nil && len(textLines) > 0 {
			current.Text = strings.Join(textLines, "\n")
			segments = append(segments, *current)
		}
		current = nil
		textLines = nil
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		lineNum++

		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}

		if current == nil {
			if matches := srtTimingRegex.FindStringSubmatch(line); len(matches) == 9 {
				start, err := parseSRTTimestamp(matches[1:5])
				if err != nil {
					return nil, fmt.Errorf("invalid start timestamp at line %d: %w", lineNum, err)
				}
				end, err := parseSRTTimestamp(matches[5:9])
				if err != nil {
					return nil, fmt.Errorf("invalid end timestamp at line %d: %w", lineNum, err)
				}
				current = &Segment{Start: start, End: end}
				continue
			}
			if _, err := strconv.Atoi(strings.TrimSpace(line)); err == nil {
				// cue index
				continue
			}
			return nil, fmt.Errorf("unexpected content at line %d: %q", lineNum, line)
		}

		textLines = append(textLines, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading SRT file: %w", err)
	}
	flush()

	return segments, nil
}

// converts [hours, minutes, seconds, millis] into seconds
func parseSRTTimestamp(parts []string) (float64, error) {
	var values [4]int
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return 0, err
		}
		values[i] = v
	}
	if values[1] > 59 || values[2] > 59 {
		return 0, fmt.Errorf("minutes and seconds must be below 60")
	}

	totalMillis := ((values[0]*60+values[1])*60+values[2])*1000 + values[3]
	return float64(totalMillis) / 1000, nil
}
