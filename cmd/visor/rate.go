package main

import (
	"fmt"

	"github.com/go-git/go-billy/v6/osfs"
	"github.com/spf13/cobra"

	"github.com/lewtec/visor/internal/ratings"
	"github.com/lewtec/visor/internal/scan"
)

// rateCmd represents the rate command
var rateCmd = &cobra.Command{
	Use:   "rate folder file (low|medium|high)",
	Short: "Rate a single image without opening a session",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, name := args[0], args[1]
		rating, err := ratings.Parse(args[2])
		if err != nil {
			return err
		}

		fsys := osfs.New(dir)
		entries, err := scan.List(fsys, dir)
		if err != nil {
			return err
		}
		known := make(map[string]bool, len(entries))
		for _, entry := range entries {
			known[entry.Name] = true
		}
		if !known[name] {
			return fmt.Errorf("%s is not an image in %s", name, dir)
		}

		store, err := ratings.Load(fsys, known, setupLogger(cmd))
		if err != nil {
			return fmt.Errorf("failed to load ratings: %w", err)
		}
		if err := store.Set(name, rating); err != nil {
			return fmt.Errorf("failed to save ratings: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", name, rating)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rateCmd)
}
