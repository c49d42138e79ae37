package overlay

import (
	"fmt"
	"strings"

	"github.com/mgpai22/tarjama/internal/color"
)

const (
	// box background drawn behind each cue; outline and shadow disabled so
	// BackColour alone controls the look
	boxBorderStyle = 4
	marginV        = 30
)

// Style controls subtitle appearance.
type Style struct {
	FontSize   int
	Background string // #RRGGBB or #RRGGBBAA
}

func DefaultStyle() Style {
	return Style{
		FontSize:   24,
		Background: "#00000080",
	}
}

func (s Style) validate() error {
	if s.FontSize <= 0 {
		return fmt.Errorf("font size must be positive, got %d", s.FontSize)
	}
	return nil
}

// ForceStyle renders the libass force_style override for s.
func (s Style) ForceStyle() string {
	fields := []string{
		fmt.Sprintf("FontSize=%d", s.FontSize),
		fmt.Sprintf("BackColour=%s", color.ToPacked(s.Background)),
		fmt.Sprintf("BorderStyle=%d", boxBorderStyle),
		"Outline=0",
		"Shadow=0",
		fmt.Sprintf("MarginV=%d", marginV),
	}
	return strings.Join(fields, ",")
}
