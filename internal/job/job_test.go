package job

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mgpai22/tarjama/internal/overlay"
	"github.com/mgpai22/tarjama/internal/subtitle"
	"github.com/mgpai22/tarjama/internal/video"
)

type fakeExtractor struct{ called bool }

func (f *fakeExtractor) ExtractAudio(_ context.Context, _, out string, _ video.ExtractAudioOptions) error {
	f.called = true
	return os.WriteFile(out, []byte("RIFF"), 0o644)
}

type fakeTranscriber struct{ workDir string }

func (f *fakeTranscriber) Transcribe(_ context.Context, audioPath, workDir string) ([]subtitle.Segment, error) {
	f.workDir = workDir
	if _, err := os.Stat(audioPath); err != nil {
		return nil, err
	}
	return []subtitle.Segment{
		{Start: 0, End: 1.5, Text: "Hello"},
		{Start: 1.5, End: 3, Text: "Thank you"},
	}, nil
}

type fakeTranslator struct{ err error }

func (f *fakeTranslator) TranslateSegments(_ context.Context, in []subtitle.Segment) ([]subtitle.Segment, error) {
	if f.err != nil {
		return nil, f.err
	}
	dict := map[string]string{"Hello": "مرحبا", "Thank you": "شكرا لك"}
	out := make([]subtitle.Segment, len(in))
	for i, s := range in {
		out[i] = subtitle.Segment{Start: s.Start, End: s.End, Text: dict[s.Text]}
	}
	return out, nil
}

type fakeRenderer struct {
	plan      *overlay.Plan
	trackBody string
	err       error
}

func (f *fakeRenderer) Burn(_ context.Context, plan *overlay.Plan, out string) error {
	f.plan = plan
	// the track must still exist while rendering
	var trackPath string
	for _, stage := range plan.Graph.Stages {
		for _, flt := range stage.Filters {
			if flt.Name == "subtitles" {
				trackPath = strings.Trim(flt.Args[0].Value, "'")
			}
		}
	}
	body, err := os.ReadFile(trackPath)
	if err != nil {
		return err
	}
	f.trackBody = string(body)
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(out, make([]byte, 2048), 0o644)
}

type fakeProber struct {
	info *video.Info
	err  error
}

func (f *fakeProber) GetInfo(_ context.Context, path string) (*video.Info, error) {
	if f.err != nil {
		return nil, f.err
	}
	info := *f.info
	info.Path = path
	return &info, nil
}

func newRunner(t *testing.T) (*Runner, *fakeRenderer) {
	t.Helper()
	r := &fakeRenderer{}
	return &Runner{
		Extractor:   &fakeExtractor{},
		Transcriber: &fakeTranscriber{},
		Translator:  &fakeTranslator{},
		Renderer:    r,
		WorkRoot:    t.TempDir(),
	}, r
}

func writeVideo(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "talk.mp4")
	if err := os.WriteFile(path, []byte("video"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunFullPipeline(t *testing.T) {
	dir := t.TempDir()
	runner, renderer := newRunner(t)
	out := filepath.Join(dir, "out", "talk.ar.mp4")

	result, err := runner.Run(context.Background(), Request{
		VideoPath:  writeVideo(t, dir),
		OutputPath: out,
		Style:      overlay.DefaultStyle(),
		Overlay:    overlay.NoOverlay{},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Cues != 2 {
		t.Errorf("Cues = %d, want 2", result.Cues)
	}
	if result.OutputPath != out || result.OutputSize != "2.0 kB" {
		t.Errorf("result = %+v", result)
	}
	if len(result.ID) != 36 {
		t.Errorf("job id %q is not a UUID", result.ID)
	}
	if !strings.Contains(renderer.trackBody, "1\n00:00:00,000 --> 00:00:01,500\n"+subtitle.RightToLeftEmbedding) {
		t.Errorf("unexpected track:\n%s", renderer.trackBody)
	}
	if !renderer.plan.Graph.Simple() {
		t.Error("no-logo render should be a single stage")
	}

	entries, err := os.ReadDir(runner.WorkRoot)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("work directory not cleaned up: %v", entries)
	}
}

func TestRunKeepsWorkDir(t *testing.T) {
	dir := t.TempDir()
	runner, _ := newRunner(t)
	runner.KeepWorkDir = true

	result, err := runner.Run(context.Background(), Request{
		VideoPath:  writeVideo(t, dir),
		OutputPath: filepath.Join(dir, "o.mp4"),
		Style:      overlay.DefaultStyle(),
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if _, err := os.Stat(result.SubtitlePath); err != nil {
		t.Errorf("kept track missing: %v", err)
	}
}

func TestRunSubtitlesOnly(t *testing.T) {
	dir := t.TempDir()
	runner, renderer := newRunner(t)
	runner.Renderer = nil
	srt := filepath.Join(dir, "talk.ar.srt")

	result, err := runner.Run(context.Background(), Request{
		VideoPath:  writeVideo(t, dir),
		SRTOutput:  srt,
		SkipRender: true,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.SubtitlePath != srt || result.OutputPath != "" {
		t.Errorf("result = %+v", result)
	}
	if renderer.plan != nil {
		t.Error("renderer should not run")
	}

	segments, err := subtitle.ReadSRT(srt)
	if err != nil {
		t.Fatal(err)
	}
	if len(segments) != 2 || segments[1].End != 3 {
		t.Errorf("saved segments = %+v", segments)
	}
}

func TestRunExistingSubtitles(t *testing.T) {
	dir := t.TempDir()
	srt := filepath.Join(dir, "in.srt")
	if err := os.WriteFile(srt, []byte("1\n00:00:01,000 --> 00:00:02,000\nمرحبا\n\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	extractor := &fakeExtractor{}
	renderer := &fakeRenderer{}
	runner := &Runner{Extractor: extractor, Renderer: renderer, WorkRoot: t.TempDir()}

	logo := filepath.Join(dir, "logo.png")
	result, err := runner.Run(context.Background(), Request{
		VideoPath:    writeVideo(t, dir),
		OutputPath:   filepath.Join(dir, "o.mp4"),
		SubtitlePath: srt,
		Style:        overlay.DefaultStyle(),
		Overlay:      overlay.LogoOverlay{Logo: overlay.Logo{Path: logo, ScalePercent: 15, Opacity: 1}},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if extractor.called {
		t.Error("audio should not be extracted when subtitles are supplied")
	}
	if result.Cues != 1 || !renderer.plan.HasLogo() {
		t.Errorf("result = %+v, logo = %v", result, renderer.plan.HasLogo())
	}
}

func TestRunPropagatesStageErrors(t *testing.T) {
	dir := t.TempDir()
	runner, _ := newRunner(t)
	runner.Translator = &fakeTranslator{err: errors.New("quota exceeded")}

	_, err := runner.Run(context.Background(), Request{
		VideoPath:  writeVideo(t, dir),
		OutputPath: filepath.Join(dir, "o.mp4"),
		Style:      overlay.DefaultStyle(),
	})
	if err == nil || !strings.Contains(err.Error(), "translate: quota exceeded") {
		t.Fatalf("expected translate error, got %v", err)
	}
}

func TestRunRejectsLockedOutput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "o.mp4")

	unlock, err := lockDestination(out)
	if err != nil {
		t.Fatal(err)
	}
	defer unlock()

	runner, _ := newRunner(t)
	_, err = runner.Run(context.Background(), Request{
		VideoPath:  writeVideo(t, dir),
		OutputPath: out,
		Style:      overlay.DefaultStyle(),
	})
	if !errors.Is(err, ErrOutputLocked) {
		t.Fatalf("expected ErrOutputLocked, got %v", err)
	}
}

func TestRunValidatesRequest(t *testing.T) {
	dir := t.TempDir()
	videoPath := writeVideo(t, dir)
	notes := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(notes, []byte("text"), 0o644); err != nil {
		t.Fatal(err)
	}
	runner, _ := newRunner(t)

	tests := []struct {
		name string
		req  Request
	}{
		{"missing video", Request{VideoPath: filepath.Join(dir, "nope.mp4"), OutputPath: "o.mp4"}},
		{"missing output", Request{VideoPath: videoPath}},
		{"output equals input", Request{VideoPath: videoPath, OutputPath: videoPath}},
		{"skip render without srt", Request{VideoPath: videoPath, SkipRender: true}},
		{"not a media file", Request{VideoPath: notes, OutputPath: "o.mp4"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runner.Run(context.Background(), tt.req); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRunProbesInput(t *testing.T) {
	dir := t.TempDir()
	videoPath := writeVideo(t, dir)
	srt := filepath.Join(dir, "in.srt")
	if err := os.WriteFile(srt, []byte("1\n00:00:01,000 --> 00:00:02,000\nمرحبا\n\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	silent := &video.Info{Duration: time.Minute, Width: 1280, Height: 720}

	tests := []struct {
		name     string
		prober   *fakeProber
		subtitle string
		wantErr  string
	}{
		{"video with audio", &fakeProber{info: &video.Info{Width: 1280, Height: 720, HasAudio: true}}, "", ""},
		{"no video stream", &fakeProber{err: errors.New("no video stream found")}, "", "no video stream found"},
		{"silent video needs transcription", &fakeProber{info: silent}, "", "no audio track"},
		{"silent video with subtitles", &fakeProber{info: silent}, srt, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner, renderer := newRunner(t)
			extractor := &fakeExtractor{}
			runner.Extractor = extractor
			runner.Prober = tt.prober

			_, err := runner.Run(context.Background(), Request{
				VideoPath:    videoPath,
				OutputPath:   filepath.Join(t.TempDir(), "o.mp4"),
				SubtitlePath: tt.subtitle,
				Style:        overlay.DefaultStyle(),
			})
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Run() error = %v", err)
				}
				if renderer.plan == nil {
					t.Error("expected a render")
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Run() error = %v, want %q", err, tt.wantErr)
			}
			if extractor.called {
				t.Error("audio extracted for a rejected input")
			}
		})
	}
}
