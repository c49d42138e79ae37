package overlay

import (
	"fmt"
	"math"
	"strings"
)

// Corner selects where the logo is anchored.
type Corner int

const (
	TopLeft Corner = iota
	TopRight
	BottomLeft
	BottomRight
)

// logo inset from the anchored edges, in pixels
const edgeInset = 10

func (c Corner) String() string {
	switch c {
	case TopRight:
		return "top-right"
	case BottomLeft:
		return "bottom-left"
	case BottomRight:
		return "bottom-right"
	default:
		return "top-left"
	}
}

// ParseCorner accepts forms like "Bottom-Right", "bottom_right", "br".
// Unknown values fall back to TopLeft with ok=false.
func ParseCorner(s string) (c Corner, ok bool) {
	key := strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(strings.TrimSpace(s)))
	switch key {
	case "topleft", "tl":
		return TopLeft, true
	case "topright", "tr":
		return TopRight, true
	case "bottomleft", "bl":
		return BottomLeft, true
	case "bottomright", "br":
		return BottomRight, true
	default:
		return TopLeft, false
	}
}

// position returns overlay x/y expressions (W/H main size, w/h logo size).
// Unsupported corners use the top-left rule.
func (c Corner) position() (x, y string) {
	near := fmt.Sprint(edgeInset)
	switch c {
	case TopRight:
		return fmt.Sprintf("W-w-%d", edgeInset), near
	case BottomLeft:
		return near, fmt.Sprintf("H-h-%d", edgeInset)
	case BottomRight:
		return fmt.Sprintf("W-w-%d", edgeInset), fmt.Sprintf("H-h-%d", edgeInset)
	default:
		return near, near
	}
}

// Logo describes the image composited over the video.
type Logo struct {
	Path         string
	ScalePercent int     // 1-100, relative to the logo's own width
	Opacity      float64 // 0.0-1.0
	Corner       Corner
}

func (l Logo) validate() error {
	if strings.TrimSpace(l.Path) == "" {
		return fmt.Errorf("logo path is required")
	}
	if l.ScalePercent < 1 || l.ScalePercent > 100 {
		return fmt.Errorf("logo scale must be between 1 and 100, got %d", l.ScalePercent)
	}
	if math.IsNaN(l.Opacity) || l.Opacity < 0 || l.Opacity > 1 {
		return fmt.Errorf("logo opacity must be between 0 and 1, got %v", l.Opacity)
	}
	return nil
}

// Overlay is either NoOverlay or LogoOverlay.
type Overlay interface {
	isOverlay()
}

// NoOverlay burns subtitles only.
type NoOverlay struct{}

// LogoOverlay composites a logo before burning subtitles.
type LogoOverlay struct {
	Logo Logo
}

func (NoOverlay) isOverlay()   {}
func (LogoOverlay) isOverlay() {}

// FromLogo returns NoOverlay for nil.
func FromLogo(l *Logo) Overlay {
	if l == nil {
		return NoOverlay{}
	}
	return LogoOverlay{Logo: *l}
}
