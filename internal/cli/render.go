package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/mgpai22/tarjama/internal/job"
)

var renderCmd = &cobra.Command{
	Use:   "render [video_file]",
	Short: "Burn an existing Arabic SRT into a video",
	Long: `Render a video with an already translated SRT file burned in. No
transcription or translation provider is contacted.

Examples:
  tarjama render talk.mp4 --srt talk.ar.srt
  tarjama render talk.mp4 --srt talk.ar.srt --background "#1E1E1E" --background-opacity 70`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	addStyleFlags(renderCmd)
	renderCmd.Flags().String("srt", "", "Translated SRT file to burn in (required)")
	renderCmd.Flags().Bool("no-reshape", false, "Leave Arabic letters unshaped (for renderers that shape text)")
	renderCmd.Flags().Bool("keep-work-dir", false, "Keep intermediate files")
}

func runRender(cmd *cobra.Command, args []string) error {
	videoPath := args[0]
	srtPath, _ := cmd.Flags().GetString("srt")
	if srtPath == "" {
		return errors.New("--srt is required")
	}

	settings := *cfg
	if keep, _ := cmd.Flags().GetBool("keep-work-dir"); keep {
		settings.Paths.KeepWorkDir = true
	}
	style, ov, err := renderSettings(cmd, &settings)
	if err != nil {
		return err
	}

	runner, err := newRunner(cmd.Context(), cmd, &settings, false)
	if err != nil {
		return err
	}

	result, err := runner.Run(cmd.Context(), job.Request{
		VideoPath:    videoPath,
		OutputPath:   outputFlag(cmd, derivedPath(videoPath, ".ar.mp4")),
		SubtitlePath: srtPath,
		Style:        style,
		Overlay:      ov,
	})
	if err != nil {
		return err
	}

	printResult(cmd, result)
	return nil
}
