package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/mgpai22/tarjama/internal/color"
	"github.com/mgpai22/tarjama/internal/overlay"
)

//go:embed sample_config.toml
var sampleConfig string

// Style controls how subtitles look once burned in.
type Style struct {
	FontSize          int    `toml:"font_size"`
	Background        string `toml:"background"`
	BackgroundOpacity int    `toml:"background_opacity"`
}

// Logo configures the optional corner logo.
type Logo struct {
	Path         string `toml:"path"`
	Corner       string `toml:"corner"`
	ScalePercent int    `toml:"scale_percent"`
	Opacity      int    `toml:"opacity"`
}

// Transcription selects the speech-to-text provider.
type Transcription struct {
	Provider     string `toml:"provider"`
	Model        string `toml:"model"`
	Language     string `toml:"language"`
	ChunkMinutes int    `toml:"chunk_minutes"`
	Concurrency  int    `toml:"concurrency"`
}

// Translation selects the English to Arabic translation provider.
type Translation struct {
	Provider       string `toml:"provider"`
	Model          string `toml:"model"`
	SourceLanguage string `toml:"source_language"`
	TargetLanguage string `toml:"target_language"`
	BatchSize      int    `toml:"batch_size"`
	Concurrency    int    `toml:"concurrency"`
	Prompt         string `toml:"prompt"`
}

// Keys holds provider API keys. Environment variables fill empty values.
type Keys struct {
	Gemini    string `toml:"gemini_api_key"`
	OpenAI    string `toml:"openai_api_key"`
	Anthropic string `toml:"anthropic_api_key"`
}

// Paths holds working locations and binaries.
type Paths struct {
	WorkDir     string `toml:"work_dir"`
	KeepWorkDir bool   `toml:"keep_work_dir"`
	FFmpeg      string `toml:"ffmpeg"`
	FFprobe     string `toml:"ffprobe"`
}

// Config is the tarjama configuration file.
type Config struct {
	Style         Style         `toml:"style"`
	Logo          Logo          `toml:"logo"`
	Transcription Transcription `toml:"transcription"`
	Translation   Translation   `toml:"translation"`
	Keys          Keys          `toml:"keys"`
	Paths         Paths         `toml:"paths"`
}

// env variables consulted when the matching key is empty
const (
	EnvGeminiKey    = "GEMINI_API_KEY"
	EnvOpenAIKey    = "OPENAI_API_KEY"
	EnvAnthropicKey = "ANTHROPIC_API_KEY"
)

const defaultConfigPath = "~/.config/tarjama/config.toml"

func Default() Config {
	return Config{
		Style: Style{
			FontSize:          24,
			Background:        "#000000",
			BackgroundOpacity: 50,
		},
		Logo: Logo{
			Corner:       "top-left",
			ScalePercent: 15,
			Opacity:      100,
		},
		Transcription: Transcription{
			Provider:     "gemini",
			Language:     "en",
			ChunkMinutes: 10,
			Concurrency:  3,
		},
		Translation: Translation{
			Provider:       "gemini",
			SourceLanguage: "English",
			TargetLanguage: "Arabic",
			BatchSize:      50,
			Concurrency:    3,
		},
	}
}

// Sample returns the commented config written by `tarjama config init`.
func Sample() string {
	return sampleConfig
}

// CreateSample writes the sample configuration to path.
func CreateSample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}

// DefaultConfigPath returns the absolute path of the user config file.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load reads path (or the default location when empty), applies environment
// fallbacks and validates the result. A missing file yields the defaults.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolved, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolved)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolved, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		path = defaultConfigPath
	}
	expanded, err := expandPath(path)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config path %s is a directory", expanded)
	}
	return expanded, true, nil
}

func (c *Config) normalize() error {
	fill := func(dst *string, env string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = strings.TrimSpace(os.Getenv(env))
		}
	}
	fill(&c.Keys.Gemini, EnvGeminiKey)
	fill(&c.Keys.OpenAI, EnvOpenAIKey)
	fill(&c.Keys.Anthropic, EnvAnthropicKey)

	c.Transcription.Provider = strings.ToLower(strings.TrimSpace(c.Transcription.Provider))
	c.Translation.Provider = strings.ToLower(strings.TrimSpace(c.Translation.Provider))

	var err error
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if c.Logo.Path, err = expandPath(c.Logo.Path); err != nil {
		return fmt.Errorf("logo.path: %w", err)
	}
	return nil
}

// APIKey returns the key configured for provider, or "".
func (c *Config) APIKey(provider string) string {
	switch strings.ToLower(provider) {
	case "gemini":
		return c.Keys.Gemini
	case "openai":
		return c.Keys.OpenAI
	case "anthropic":
		return c.Keys.Anthropic
	default:
		return ""
	}
}

// SubtitleStyle converts the style section into render settings.
func (c *Config) SubtitleStyle() overlay.Style {
	return overlay.Style{
		FontSize:   c.Style.FontSize,
		Background: color.WithOpacity(c.Style.Background, c.Style.BackgroundOpacity),
	}
}

// Overlay returns NoOverlay unless a logo path is configured.
func (c *Config) Overlay() overlay.Overlay {
	if c.Logo.Path == "" {
		return overlay.NoOverlay{}
	}
	corner, _ := overlay.ParseCorner(c.Logo.Corner)
	return overlay.LogoOverlay{Logo: overlay.Logo{
		Path:         c.Logo.Path,
		Corner:       corner,
		ScalePercent: c.Logo.ScalePercent,
		Opacity:      float64(c.Logo.Opacity) / 100,
	}}
}

// Encode renders c as TOML.
func (c *Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath applies the config path rules (~ expansion, absolute paths).
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
