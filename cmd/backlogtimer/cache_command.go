package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"backlogtimer/internal/backlog"
	"backlogtimer/internal/progress"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear saved lookup progress",
	}
	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))
	cacheCmd.AddCommand(newCacheRemoveCommand(ctx))
	return cacheCmd
}

type cacheStats struct {
	Path         string `json:"path"`
	Entries      int    `json:"entries"`
	WithMatch    int    `json:"with_match"`
	WithoutMatch int    `json:"without_match"`
	WithMastery  int    `json:"with_mastery"`
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show saved lookup progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := progress.Open(cfg.Paths.ProgressFile, nil)
			if err != nil {
				return err
			}
			defer store.Close()

			stats := cacheStats{Path: store.Path(), Entries: store.Count()}
			for _, key := range store.Keys() {
				entry, _ := store.Get(key)
				if entry.HasMatch() {
					stats.WithMatch++
				} else {
					stats.WithoutMatch++
				}
				if entry.RAMaster != nil {
					stats.WithMastery++
				}
			}

			if asJSON {
				return writeJSON(cmd, stats)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Progress file: %s\n", stats.Path)
			fmt.Fprintf(out, "Entries:       %d\n", stats.Entries)
			fmt.Fprintf(out, "HLTB match:    %d\n", stats.WithMatch)
			fmt.Fprintf(out, "No HLTB match: %d\n", stats.WithoutMatch)
			fmt.Fprintf(out, "RA mastery:    %d\n", stats.WithMastery)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	var keepList bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Discard saved lookup progress so the next scan fetches everything",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := progress.Open(cfg.Paths.ProgressFile, nil)
			if err != nil {
				return err
			}
			defer store.Close()

			removed := store.Count()
			store.Clear()
			if err := store.Flush(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Cleared %d progress entries\n", removed)

			if !keepList {
				if err := backlog.NewSource(nil, cfg.Paths.ListCacheFile, nil).ClearCache(); err != nil {
					return err
				}
				fmt.Fprintln(out, "Cleared cached Want to Play list")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&keepList, "keep-list", false, "Keep the cached Want to Play list")
	return cmd
}

func newCacheRemoveCommand(ctx *commandContext) *cobra.Command {
	var system string

	cmd := &cobra.Command{
		Use:   "remove <title>",
		Short: "Forget the saved lookup for one game so the next scan fetches it again",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := progress.Open(cfg.Paths.ProgressFile, nil)
			if err != nil {
				return err
			}
			defer store.Close()

			key := backlog.Key(strings.Join(args, " "), system)
			if !store.Remove(key) {
				return fmt.Errorf("no saved lookup for %q", key)
			}
			if err := store.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed saved lookup for %s\n", key)
			return nil
		},
	}

	cmd.Flags().StringVar(&system, "system", "", "System name exactly as shown in the Want to Play list")
	_ = cmd.MarkFlagRequired("system")
	return cmd
}
