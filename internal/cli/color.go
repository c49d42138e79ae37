package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mgpai22/tarjama/internal/color"
)

var colorCmd = &cobra.Command{
	Use:   "color [hex]",
	Short: "Convert a hex colour to the subtitle renderer's packed form",
	Long: `Print the &HAABBGGRR value used for the subtitle background.

Six-digit colours get 50% opacity unless --opacity is given. Colours that
cannot be parsed print the fallback (50% opaque black) with a warning.

Examples:
  tarjama color "#1E1E1E"
  tarjama color 1E1E1E --opacity 70
  tarjama color "#FF000080"`,
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{skipConfigLoad: "true"},
	RunE:        runColor,
}

func init() {
	rootCmd.AddCommand(colorCmd)
	colorCmd.Flags().Int("opacity", -1, "Opacity 0-100 for a six-digit colour")
}

func runColor(cmd *cobra.Command, args []string) error {
	spec := args[0]

	if cmd.Flags().Changed("opacity") {
		opacity, _ := cmd.Flags().GetInt("opacity")
		if opacity < 0 || opacity > 100 {
			return fmt.Errorf("opacity must be between 0 and 100, got %d", opacity)
		}
		spec = color.WithOpacity(spec, opacity)
	}

	if !color.Valid(spec) {
		logger.Warnw("unparseable colour, using fallback", "colour", args[0], "fallback", color.Fallback)
	}

	fmt.Fprintln(cmd.OutOrStdout(), color.ToPacked(spec))
	return nil
}
