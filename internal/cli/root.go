package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mgpai22/tarjama/internal/config"
	"github.com/mgpai22/tarjama/internal/ffmpeg"
	"github.com/mgpai22/tarjama/internal/logging"
)

// commands that work without a valid config file
const skipConfigLoad = "skipConfigLoad"

var (
	verbose    bool
	configPath string
	logger     *logging.Logger
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "tarjama",
	Short: "Burn Arabic subtitles into English videos",
	Long: `Tarjama transcribes the English speech in a video, translates it to
Arabic and burns right-to-left subtitles into a new video, optionally
with a logo in one corner.

Configuration is read from ~/.config/tarjama/config.toml (create it with
'tarjama config init'); flags override file values.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load() // best-effort: load .env if present
		logger = logging.NewLogger(verbose)

		if cmd.Annotations[skipConfigLoad] == "true" {
			def := config.Default()
			cfg = &def
			return nil
		}

		loaded, path, exists, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
		logger.Debugw("configuration loaded", "path", path, "exists", exists)

		exportBinaryPaths(cfg)
		return nil
	},
}

// Execute runs the CLI; SIGINT/SIGTERM cancel the running job and any
// ffmpeg process it started.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output (includes live ffmpeg output)")
	rootCmd.PersistentFlags().
		StringVar(&configPath, "config", "", "Config file path (default ~/.config/tarjama/config.toml)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file path")
}

// config paths apply only when the environment does not already name a binary
func exportBinaryPaths(c *config.Config) {
	if c.Paths.FFmpeg != "" && os.Getenv(ffmpeg.EnvFFmpegPath) == "" {
		_ = os.Setenv(ffmpeg.EnvFFmpegPath, c.Paths.FFmpeg)
	}
	if c.Paths.FFprobe != "" && os.Getenv(ffmpeg.EnvFFprobePath) == "" {
		_ = os.Setenv(ffmpeg.EnvFFprobePath, c.Paths.FFprobe)
	}
}
