/*
Copyright © 2024 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lewtec/visor/browse"
	"github.com/lewtec/visor/internal/ratings"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "visor [folder]",
	Short: "Step through a folder of photos with prefetching and ratings",
	Long: strings.TrimSpace(`
Walks a folder of JPEG photos the way the viewer does: a background pool
decodes a sliding window of images around the current one while ratings
are read from and written to the ratings.yaml sidecar file.
    `),
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		dir := args[0]

		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}

		log := setupLogger(cmd)
		browser, err := browse.New(*cfg, nil, nil, log)
		if err != nil {
			return err
		}
		defer browser.Close()

		session, err := browser.OpenDirectory(dir)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", dir, err)
		}
		defer session.Close()

		if filter, _ := cmd.Flags().GetString("filter"); filter != "" {
			rating, err := ratings.Parse(filter)
			if err != nil {
				return err
			}
			if err := session.SetRatingFilter(&rating); err != nil {
				return err
			}
		}

		log.Info("session opened", "dir", dir, "images", session.Count(), "workers", cfg.Workers)
		return walk(cmd, session)
	},
}

// walk steps through the whole view front to back, waiting for each
// image's load to complete before printing it.
func walk(cmd *cobra.Command, session *browse.Session) error {
	for {
		img, ok := session.CurrentImage()
		if !ok {
			ev := session.ReceiveOne()
			switch ev.Kind {
			case browse.EventClosed:
				return fmt.Errorf("decode pool shut down mid-walk")
			case browse.EventFailed:
				if ev.Index == session.CurrentIndex() {
					fmt.Fprintf(cmd.OutOrStdout(), "%4d/%d  %s  LOAD FAILED: %v\n",
						session.Position()+1, session.Count(), session.CurrentName(), ev.Err)
					if session.Position() == session.Count()-1 {
						return nil
					}
					session.OffsetCurrent(1)
				}
			}
			continue
		}

		w, h := img.DisplaySize()
		fmt.Fprintf(cmd.OutOrStdout(), "%4d/%d  %s  %dx%d  rotation=%s  rating=%s\n",
			session.Position()+1, session.Count(), session.CurrentName(),
			w, h, img.Rotation, session.CurrentRating())

		if session.Position() == session.Count()-1 {
			return nil
		}
		session.OffsetCurrent(1)
	}
}

// resolveConfig merges the optional config file with command line flag
// overrides.
func resolveConfig(cmd *cobra.Command) (*browse.Config, error) {
	var cfg *browse.Config
	if file, _ := cmd.Flags().GetString("config"); file != "" {
		loaded, err := browse.LoadConfig(file)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	} else {
		def := browse.DefaultConfig()
		cfg = &def
	}

	override := func(flag string, dst *int) {
		if cmd.Flags().Changed(flag) {
			v, _ := cmd.Flags().GetInt(flag)
			*dst = v
		}
	}
	override("workers", &cfg.Workers)
	override("look-ahead", &cfg.LookAhead)
	override("look-behind", &cfg.LookBehind)
	override("buffer-zone", &cfg.BufferZone)

	return cfg, nil
}

func setupLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

func main() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file (yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	rootCmd.Flags().IntP("workers", "w", 0, "Number of decode workers")
	rootCmd.Flags().Int("look-ahead", 0, "Images kept ready ahead of the buffer zone")
	rootCmd.Flags().Int("look-behind", 0, "Images kept ready behind the buffer zone")
	rootCmd.Flags().Int("buffer-zone", 0, "Navigation radius that keeps the load pivot in place")
	rootCmd.Flags().StringP("filter", "f", "", "Only walk images with this rating (low|medium|high)")
}
