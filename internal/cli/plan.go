package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/tarjama/internal/filtergraph"
	"github.com/mgpai22/tarjama/internal/overlay"
)

var planCmd = &cobra.Command{
	Use:   "plan [video_file]",
	Short: "Show the render plan without running ffmpeg",
	Long: `Print the inputs, filter stages and ffmpeg arguments that 'tarjama render'
would use. Nothing is rendered and no file is written.

Examples:
  tarjama plan talk.mp4 --srt talk.ar.srt
  tarjama plan talk.mp4 --srt talk.ar.srt --logo brand.png --logo-corner top-right`,
	Args: cobra.ExactArgs(1),
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)

	addStyleFlags(planCmd)
	planCmd.Flags().String("srt", "", "Translated SRT file to burn in (required)")
}

func runPlan(cmd *cobra.Command, args []string) error {
	videoPath := args[0]
	srtPath, _ := cmd.Flags().GetString("srt")
	if srtPath == "" {
		return errors.New("--srt is required")
	}

	style, ov, err := renderSettings(cmd, cfg)
	if err != nil {
		return err
	}

	plan, err := overlay.Build(videoPath, srtPath, style, ov)
	if err != nil {
		return err
	}

	output := outputFlag(cmd, derivedPath(videoPath, ".ar.mp4"))
	fmt.Fprint(cmd.OutOrStdout(), describePlan(plan, output))
	return nil
}

// describePlan renders the plan's inputs and stages as tables followed by
// the full argument list.
func describePlan(plan *overlay.Plan, output string) string {
	var b strings.Builder

	inputs := make([][]string, 0, len(plan.Inputs))
	for i, in := range plan.Inputs {
		inputs = append(inputs, []string{strconv.Itoa(i), string(in.Role), in.Path})
	}
	b.WriteString(renderTable([]string{"#", "Role", "Path"}, inputs, []columnAlignment{alignRight}))
	b.WriteString("\n")

	stages := make([][]string, 0, len(plan.Graph.Stages))
	for i, stage := range plan.Graph.Stages {
		stages = append(stages, []string{
			strconv.Itoa(i + 1),
			labels(stage.Inputs),
			stage.Chain(),
			labels([]string{stage.Output}),
		})
	}
	b.WriteString(renderTable([]string{"Stage", "In", "Filters", "Out"}, stages, []columnAlignment{alignRight}))
	b.WriteString("\n\n")

	b.WriteString("ffmpeg")
	for _, arg := range plan.Args(output) {
		b.WriteString(" ")
		b.WriteString(shellQuote(arg))
	}
	b.WriteString("\n")
	return b.String()
}

func labels(names []string) string {
	parts := make([]string, 0, len(names))
	for _, n := range names {
		if n != "" {
			parts = append(parts, filtergraph.Label(n))
		}
	}
	return strings.Join(parts, "")
}

// shellQuote makes the printed command copy-pasteable in a POSIX shell.
func shellQuote(arg string) string {
	if arg != "" && !strings.ContainsAny(arg, " \t'\"\\$`;&|<>()[]*?!#~=,:") {
		return arg
	}
	return "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
}
