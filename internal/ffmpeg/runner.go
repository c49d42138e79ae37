package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// RenderError reports a failed ffmpeg invocation together with the exact
// arguments and the diagnostics it printed.
type RenderError struct {
	Args        []string
	ExitCode    int
	Diagnostics string
	Err         error
}

func (e *RenderError) Error() string {
	diag := strings.TrimSpace(e.Diagnostics)
	if diag == "" {
		return fmt.Sprintf("ffmpeg exited with code %d: %v", e.ExitCode, e.Err)
	}
	return fmt.Sprintf("ffmpeg exited with code %d: %s", e.ExitCode, lastLines(diag, 5))
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// Runner executes ffmpeg with a prepared argument list. Stderr, when set,
// receives ffmpeg's live output in addition to the captured diagnostics.
type Runner struct {
	Path   string
	Stderr io.Writer
}

// NewRunner returns a runner bound to the resolved ffmpeg binary.
func NewRunner() (*Runner, error) {
	path, err := FFmpegPath()
	if err != nil {
		return nil, err
	}
	return &Runner{Path: path}, nil
}

// Run blocks until ffmpeg exits. Cancelling ctx kills the process.
func (r *Runner) Run(ctx context.Context, args []string) error {
	path := r.Path
	if path == "" {
		path = "ffmpeg"
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, args...)
	if r.Stderr != nil {
		cmd.Stderr = io.MultiWriter(&stderr, r.Stderr)
	} else {
		cmd.Stderr = &stderr
	}

	err := cmd.Run()
	if err == nil {
		return nil
	}

	renderErr := &RenderError{
		Args:        append([]string(nil), args...),
		ExitCode:    -1,
		Diagnostics: stderr.String(),
		Err:         err,
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		renderErr.Err = ctxErr
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		renderErr.ExitCode = exitErr.ExitCode()
	}
	return renderErr
}

func lastLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
