package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/jgivc/gallerysync/internal/app"
	"github.com/jgivc/gallerysync/internal/config"
)

var (
	cfgFileName  string
	mapJSON      string
	folderPrefix string
	maxItems     int
	maxDepth     int
	overwrite    bool
)

var rootCmd = &cobra.Command{
	Use:   "gallerysync",
	Short: "Mirror shared photo albums into a CDN-backed gallery",
	Long: `gallerysync crawls Microsoft Graph shared folders for images, publishes
them to Cloudinary under stable identifiers, and writes one ordered JSON
manifest per trip for the gallery front end.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Missing .env is fine; real environments set variables directly.
		_ = godotenv.Load()

		cfg, err := config.Load(cfgFileName)
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("map-json") {
			cfg.TripMap = mapJSON
		}
		if cmd.Flags().Changed("folder-prefix") {
			cfg.FolderPrefix = folderPrefix
		}
		if cmd.Flags().Changed("max") {
			cfg.MaxItems = maxItems
		}
		if cmd.Flags().Changed("max-depth") {
			cfg.MaxDepth = maxDepth
		}
		if cmd.Flags().Changed("overwrite") {
			cfg.Overwrite = overwrite
		}
		if cfg.MaxDepth < 0 {
			cfg.MaxDepth = 0
		}

		log, err := buildLogger(cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return app.New(cfg, log).Run(ctx)
	},
}

func buildLogger(cfg *config.Config) (*slog.Logger, error) {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info", "":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, fmt.Errorf("unknown log level: %s", cfg.LogLevel)
	}

	var out io.Writer = os.Stderr
	if cfg.LogFile != "" {
		out = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		})
	}

	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})), nil
}

func init() {
	rootCmd.Flags().StringVarP(&cfgFileName, "config", "c", "gallerysync.yml", "Path to config file")
	rootCmd.Flags().StringVar(&mapJSON, "map-json", "", `Trip map JSON, e.g. {"iceland":"https://1drv.ms/..."}`)
	rootCmd.Flags().StringVar(&folderPrefix, "folder-prefix", "", "Publish folder prefix; final folder is <prefix>/<trip>")
	rootCmd.Flags().IntVar(&maxItems, "max", 0, "Max images to publish per trip")
	rootCmd.Flags().IntVar(&maxDepth, "max-depth", 0, "Max subfolder depth to crawl")
	rootCmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing assets with the same public ids")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
