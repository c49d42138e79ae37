package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/tarjama/internal/color"
	"github.com/mgpai22/tarjama/internal/config"
	"github.com/mgpai22/tarjama/internal/overlay"
)

// addStyleFlags registers the look-and-feel flags shared by every command
// that renders. Unset flags keep the config file values.
func addStyleFlags(cmd *cobra.Command) {
	cmd.Flags().Int("font-size", 0, "Subtitle font size (default from config, 24)")
	cmd.Flags().String("background", "", "Subtitle box colour as #RRGGBB or #RRGGBBAA")
	cmd.Flags().Int("background-opacity", 0, "Subtitle box opacity 0-100, used with a #RRGGBB background")
	cmd.Flags().String("logo", "", "Logo image to overlay")
	cmd.Flags().String("logo-corner", "", "Logo corner: top-left, top-right, bottom-left, bottom-right")
	cmd.Flags().Int("logo-scale", 0, "Logo width as a percentage of its own size (1-100)")
	cmd.Flags().Int("logo-opacity", 0, "Logo opacity 0-100")
}

// renderSettings merges style flags over c.
func renderSettings(cmd *cobra.Command, c *config.Config) (overlay.Style, overlay.Overlay, error) {
	merged := *c
	flags := cmd.Flags()

	if flags.Changed("font-size") {
		merged.Style.FontSize, _ = flags.GetInt("font-size")
	}
	if flags.Changed("background-opacity") {
		merged.Style.BackgroundOpacity, _ = flags.GetInt("background-opacity")
	}
	if flags.Changed("logo") {
		path, _ := flags.GetString("logo")
		abs, err := config.ExpandPath(path)
		if err != nil {
			return overlay.Style{}, nil, err
		}
		merged.Logo.Path = abs
	}
	if flags.Changed("logo-corner") {
		corner, _ := flags.GetString("logo-corner")
		if _, ok := overlay.ParseCorner(corner); !ok {
			logger.Warnw("unknown logo corner, using top-left", "corner", corner)
		}
		merged.Logo.Corner = corner
	}
	if flags.Changed("logo-scale") {
		merged.Logo.ScalePercent, _ = flags.GetInt("logo-scale")
	}
	if flags.Changed("logo-opacity") {
		merged.Logo.Opacity, _ = flags.GetInt("logo-opacity")
	}

	// a full #RRGGBBAA value carries its own alpha
	var eightDigit string
	if flags.Changed("background") {
		bg, _ := flags.GetString("background")
		if !color.Valid(bg) {
			return overlay.Style{}, nil, fmt.Errorf("invalid background colour %q", bg)
		}
		bg = strings.TrimSpace(bg)
		if len(strings.TrimLeft(bg, "#")) == 8 {
			eightDigit = bg
			merged.Style.Background = bg[:len(bg)-2]
		} else {
			merged.Style.Background = bg
		}
	}

	if err := merged.Validate(); err != nil {
		return overlay.Style{}, nil, err
	}

	style := merged.SubtitleStyle()
	if eightDigit != "" {
		style.Background = eightDigit
	}
	return style, merged.Overlay(), nil
}

// derivedPath swaps the extension of input for suffix, e.g. talk.mp4 ->
// talk.ar.mp4.
func derivedPath(input, suffix string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + suffix
}

func outputFlag(cmd *cobra.Command, fallback string) string {
	out, _ := cmd.Flags().GetString("output")
	if out == "" {
		return fallback
	}
	return out
}
