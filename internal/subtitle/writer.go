package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteTo writes the track as UTF-8 SubRip: index, timing line, text, blank.
func (t *Track) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64

	for _, cue := range t.Cues {
		written, err := fmt.Fprintf(bw, "%d\n%s --> %s\n%s\n\n",
			cue.Index, cue.Start, cue.End, cue.Text)
		n += int64(written)
		if err != nil {
			return n, err
		}
	}

	return n, bw.Flush()
}

// WriteFile persists the track to path, creating parent directories.
func (t *Track) WriteFile(path string) error {
	if err := ensureDir(path); err != nil {
		return fmt.Errorf("failed to create subtitle directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create subtitle file: %w", err)
	}

	if _, err := t.WriteTo(file); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to write subtitle file: %w", err)
	}

	return file.Close()
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0755)
}
