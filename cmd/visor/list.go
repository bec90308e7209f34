package main

import (
	"fmt"
	"sort"

	"github.com/go-git/go-billy/v6/osfs"
	"github.com/spf13/cobra"

	"github.com/lewtec/visor/internal/ratings"
	"github.com/lewtec/visor/internal/scan"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list folder",
	Short: "List the images of a folder with their ratings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := args[0]

		fsys := osfs.New(dir)
		entries, err := scan.List(fsys, dir)
		if err != nil {
			return err
		}
		known := make(map[string]bool, len(entries))
		for _, entry := range entries {
			known[entry.Name] = true
		}

		store, err := ratings.Load(fsys, known, setupLogger(cmd))
		if err != nil {
			return fmt.Errorf("failed to load ratings: %w", err)
		}

		for _, entry := range entries {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", entry.Name, store.Get(entry.Name))
		}

		if showOrphans, _ := cmd.Flags().GetBool("orphans"); showOrphans {
			orphans := store.Orphaned()
			names := make([]string, 0, len(orphans))
			for name := range orphans {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t(orphaned)\n", name, orphans[name])
			}
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().Bool("orphans", false, "Also show ratings of files no longer in the folder")
}
