package cli

import (
	"github.com/spf13/cobra"

	"github.com/mgpai22/tarjama/internal/job"
)

var burnCmd = &cobra.Command{
	Use:   "burn [video_file]",
	Short: "Transcribe, translate and burn Arabic subtitles into a video",
	Long: `Run the full pipeline: extract the audio, transcribe the English speech,
translate it to Arabic and render a new video with the subtitles burned in.

Examples:
  tarjama burn talk.mp4
  tarjama burn talk.mp4 -o talk-ar.mp4 --logo brand.png --logo-corner bottom-right
  tarjama burn talk.mp4 --translator anthropic --font-size 28 --srt-out talk.ar.srt`,
	Args: cobra.ExactArgs(1),
	RunE: runBurn,
}

func init() {
	rootCmd.AddCommand(burnCmd)

	addStyleFlags(burnCmd)
	addProviderFlags(burnCmd)
	burnCmd.Flags().String("srt-out", "", "Also save the Arabic SRT here")
}

func runBurn(cmd *cobra.Command, args []string) error {
	videoPath := args[0]
	ctx := cmd.Context()

	settings := *cfg
	if err := applyProviderFlags(cmd, &settings); err != nil {
		return err
	}
	style, ov, err := renderSettings(cmd, &settings)
	if err != nil {
		return err
	}

	runner, err := newRunner(ctx, cmd, &settings, true)
	if err != nil {
		return err
	}

	srtOut, _ := cmd.Flags().GetString("srt-out")
	result, err := runner.Run(ctx, job.Request{
		VideoPath:  videoPath,
		OutputPath: outputFlag(cmd, derivedPath(videoPath, ".ar.mp4")),
		SRTOutput:  srtOut,
		Style:      style,
		Overlay:    ov,
	})
	if err != nil {
		return err
	}

	printResult(cmd, result)
	return nil
}
