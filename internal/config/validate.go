package config

import (
	"errors"
	"fmt"

	"github.com/mgpai22/tarjama/internal/color"
)

var (
	transcriptionProviders = map[string]bool{"gemini": true, "openai": true}
	translationProviders   = map[string]bool{"gemini": true, "openai": true, "anthropic": true}
)

// Validate ensures the configuration is usable. API keys are checked when a
// provider is actually used, so subtitle-only commands work without them.
func (c *Config) Validate() error {
	if err := c.validateStyle(); err != nil {
		return err
	}
	if err := c.validateLogo(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	return c.validateTranslation()
}

func (c *Config) validateStyle() error {
	if c.Style.FontSize <= 0 {
		return fmt.Errorf("style.font_size must be positive, got %d", c.Style.FontSize)
	}
	if !color.Valid(c.Style.Background) {
		return fmt.Errorf("style.background %q is not a #RRGGBB colour", c.Style.Background)
	}
	if c.Style.BackgroundOpacity < 0 || c.Style.BackgroundOpacity > 100 {
		return errors.New("style.background_opacity must be between 0 and 100")
	}
	return nil
}

func (c *Config) validateLogo() error {
	if c.Logo.ScalePercent < 1 || c.Logo.ScalePercent > 100 {
		return errors.New("logo.scale_percent must be between 1 and 100")
	}
	if c.Logo.Opacity < 0 || c.Logo.Opacity > 100 {
		return errors.New("logo.opacity must be between 0 and 100")
	}
	return nil
}

func (c *Config) validateTranscription() error {
	if !transcriptionProviders[c.Transcription.Provider] {
		return fmt.Errorf("transcription.provider %q is not supported (gemini, openai)", c.Transcription.Provider)
	}
	if c.Transcription.ChunkMinutes < 0 {
		return errors.New("transcription.chunk_minutes cannot be negative")
	}
	return nil
}

func (c *Config) validateTranslation() error {
	if !translationProviders[c.Translation.Provider] {
		return fmt.Errorf("translation.provider %q is not supported (gemini, openai, anthropic)", c.Translation.Provider)
	}
	if c.Translation.TargetLanguage == "" {
		return errors.New("translation.target_language must be set")
	}
	if c.Translation.BatchSize < 0 {
		return errors.New("translation.batch_size cannot be negative")
	}
	return nil
}

// RequireKey reports a helpful error when provider has no API key.
func (c *Config) RequireKey(provider string) (string, error) {
	if key := c.APIKey(provider); key != "" {
		return key, nil
	}
	env := map[string]string{
		"gemini":    EnvGeminiKey,
		"openai":    EnvOpenAIKey,
		"anthropic": EnvAnthropicKey,
	}[provider]
	path, err := DefaultConfigPath()
	if err != nil {
		path = defaultConfigPath
	}
	return "", fmt.Errorf("no API key for %s. Set %s or edit %s (create with 'tarjama config init')", provider, env, path)
}
