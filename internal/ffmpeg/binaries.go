package ffmpeg

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

const (
	bundleVersion = "6.1"
	bundleBaseURL = "https://github.com/ffbinaries/ffbinaries-prebuilt/releases/download"

	EnvFFmpegPath  = "TARJAMA_FFMPEG_PATH"
	EnvFFprobePath = "TARJAMA_FFPROBE_PATH"
)

type BinaryPaths struct {
	FFmpeg  string
	FFprobe string
}

var (
	resolveOnce  sync.Once
	resolveErr   error
	resolvedPath BinaryPaths
)

// Ensure locates ffmpeg and ffprobe once per process: explicit env paths,
// then $PATH, then a cached download of a static build.
func Ensure() (BinaryPaths, error) {
	resolveOnce.Do(func() {
		resolvedPath, resolveErr = locate(os.Getenv, exec.LookPath)
	})
	return resolvedPath, resolveErr
}

func FFmpegPath() (string, error) {
	paths, err := Ensure()
	if err != nil {
		return "", err
	}
	return paths.FFmpeg, nil
}

func FFprobePath() (string, error) {
	paths, err := Ensure()
	if err != nil {
		return "", err
	}
	return paths.FFprobe, nil
}

func locate(
	getenv func(string) string,
	lookPath func(string) (string, error),
) (BinaryPaths, error) {
	paths := BinaryPaths{
		FFmpeg:  getenv(EnvFFmpegPath),
		FFprobe: getenv(EnvFFprobePath),
	}
	if paths.FFmpeg == "" {
		paths.FFmpeg, _ = lookPath("ffmpeg")
	}
	if paths.FFprobe == "" {
		paths.FFprobe, _ = lookPath("ffprobe")
	}
	if paths.FFmpeg != "" && paths.FFprobe != "" {
		return paths, nil
	}

	asset, err := bundleAsset(runtime.GOOS, runtime.GOARCH)
	if err != nil {
		return BinaryPaths{}, fmt.Errorf("ffmpeg not found on PATH and %w", err)
	}

	installDir := cacheDir()
	cached := BinaryPaths{
		FFmpeg:  filepath.Join(installDir, "ffmpeg"+exeSuffix()),
		FFprobe: filepath.Join(installDir, "ffprobe"+exeSuffix()),
	}
	if !fileExists(cached.FFmpeg) || !fileExists(cached.FFprobe) {
		if err := download(asset, installDir); err != nil {
			return BinaryPaths{}, err
		}
		if !fileExists(cached.FFmpeg) || !fileExists(cached.FFprobe) {
			return BinaryPaths{}, errors.New("ffmpeg binaries not found after extraction")
		}
	}

	// keep whichever binary was already found on the system
	if paths.FFmpeg == "" {
		paths.FFmpeg = cached.FFmpeg
	}
	if paths.FFprobe == "" {
		paths.FFprobe = cached.FFprobe
	}
	return paths, nil
}

func cacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil || base == "" {
		base = os.TempDir()
	}
	return filepath.Join(base, "tarjama", "ffmpeg", bundleVersion, runtime.GOOS, runtime.GOARCH)
}

func bundleAsset(goos, goarch string) (string, error) {
	var platform string
	switch goos + "/" + goarch {
	case "linux/amd64":
		platform = "linux-64"
	case "linux/arm64":
		platform = "linux-arm-64"
	case "darwin/amd64":
		platform = "macos-64"
	case "windows/amd64":
		platform = "win-64"
	default:
		return "", fmt.Errorf("no bundled ffmpeg for %s/%s", goos, goarch)
	}
	return "ffmpeg-" + bundleVersion + "-" + platform + ".zip", nil
}

func download(asset, installDir string) error {
	if err := os.MkdirAll(installDir, 0o755); err != nil {
		return fmt.Errorf("create ffmpeg cache dir: %w", err)
	}

	url := fmt.Sprintf("%s/v%s/%s", bundleBaseURL, bundleVersion, asset)
	client := &http.Client{Timeout: 5 * time.Minute}
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("download ffmpeg bundle: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download ffmpeg bundle: unexpected status %s", resp.Status)
	}

	tmp, err := os.CreateTemp("", "tarjama-ffmpeg-*.zip")
	if err != nil {
		return fmt.Errorf("create temp archive: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}

	if err := unpack(tmp.Name(), installDir); err != nil {
		return fmt.Errorf("extract %s: %w", asset, err)
	}
	return nil
}

// copies the ffmpeg and ffprobe executables out of a bundle archive
func unpack(archivePath, installDir string) error {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("open ffmpeg archive: %w", err)
	}
	defer func() { _ = zr.Close() }()

	found := 0
	for _, file := range zr.File {
		name := strings.ToLower(strings.TrimSuffix(filepath.Base(file.Name), ".exe"))
		if name != "ffmpeg" && name != "ffprobe" {
			continue
		}
		dest := filepath.Join(installDir, name+exeSuffix())
		if err := extractFile(file, dest); err != nil {
			return err
		}
		found++
	}
	if found < 2 {
		return errors.New("ffmpeg archive missing required binaries")
	}
	return nil
}

func extractFile(file *zip.File, dest string) error {
	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("open archive entry %s: %w", file.Name, err)
	}
	defer func() { _ = src.Close() }()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o755)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	if _, err := io.Copy(out, src); err != nil {
		_ = out.Close()
		return fmt.Errorf("write %s: %w", dest, err)
	}
	return out.Close()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir() && info.Size() > 0
}

func exeSuffix() string {
	if runtime.GOOS == "windows" {
		return ".exe"
	}
	return ""
}
