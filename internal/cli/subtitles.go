package cli

import (
	"github.com/spf13/cobra"

	"github.com/mgpai22/tarjama/internal/job"
)

var subtitlesCmd = &cobra.Command{
	Use:   "subtitles [video_file]",
	Short: "Produce the Arabic SRT without rendering",
	Long: `Transcribe and translate a video and save the right-to-left Arabic
subtitle track. Review or edit it, then burn it with 'tarjama render'.

Examples:
  tarjama subtitles talk.mp4
  tarjama subtitles talk.mp4 -o reviewed/talk.ar.srt --transcriber openai`,
	Args: cobra.ExactArgs(1),
	RunE: runSubtitles,
}

func init() {
	rootCmd.AddCommand(subtitlesCmd)
	addProviderFlags(subtitlesCmd)
}

func runSubtitles(cmd *cobra.Command, args []string) error {
	videoPath := args[0]
	ctx := cmd.Context()

	settings := *cfg
	if err := applyProviderFlags(cmd, &settings); err != nil {
		return err
	}

	runner, err := newRunner(ctx, cmd, &settings, true)
	if err != nil {
		return err
	}
	runner.Renderer = nil

	result, err := runner.Run(ctx, job.Request{
		VideoPath:  videoPath,
		SRTOutput:  outputFlag(cmd, derivedPath(videoPath, ".ar.srt")),
		SkipRender: true,
	})
	if err != nil {
		return err
	}

	printResult(cmd, result)
	return nil
}
