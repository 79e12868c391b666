package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"backlogtimer/internal/backlog"
	"backlogtimer/internal/logging"
	"backlogtimer/internal/pipeline"
	"backlogtimer/internal/preflight"
	"backlogtimer/internal/progress"
	"backlogtimer/internal/ranking"
	"backlogtimer/internal/statslookup"
	"backlogtimer/internal/table"
)

type scanOptions struct {
	fresh       bool
	cachedList  bool
	listSystems bool
	include     []string
	exclude     []string
}

func newScanCommand(ctx *commandContext) *cobra.Command {
	var opts scanOptions

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Fetch the Want to Play list and look up completion times",
		Long: `Fetch the Want to Play list and enrich every game with HowLongToBeat
estimates and RetroAchievements median completion times.

The list is always fetched so games added since the last scan are picked up.
Without --fresh, an existing table is kept and only games new to the list are
added. Progress is saved after every batch; rerun the command to resume an
interrupted scan.

--list-systems prints the systems in the list with their game counts, using
the cached list when one exists, so --system values can be chosen.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, ctx, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.fresh, "fresh", false, "Discard saved progress and the cached list before scanning")
	cmd.Flags().BoolVar(&opts.cachedList, "cached-list", false, "Reuse the cached Want to Play list instead of fetching it")
	cmd.Flags().BoolVar(&opts.listSystems, "list-systems", false, "List systems in the Want to Play list and exit")
	cmd.Flags().StringArrayVar(&opts.include, "system", nil, "Only scan games for this system (repeatable)")
	cmd.Flags().StringArrayVar(&opts.exclude, "exclude-system", nil, "Skip games for this system (repeatable)")
	return cmd
}

func runScan(cmd *cobra.Command, ctx *commandContext, opts scanOptions) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if failed := preflight.Failed(preflight.RunAll(cfg)); len(failed) > 0 {
		details := make([]string, 0, len(failed))
		for _, r := range failed {
			details = append(details, fmt.Sprintf("%s: %s", r.Name, r.Detail))
		}
		return fmt.Errorf("preflight failed:\n  %s", strings.Join(details, "\n  "))
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}

	runCtx := logging.WithRunID(cmd.Context(), uuid.NewString())
	logger = logging.WithContext(runCtx, logger)
	out := cmd.OutOrStdout()

	raClient, err := ctx.newRetroAchievementsClient(cfg)
	if err != nil {
		return err
	}
	source := backlog.NewSource(raClient, cfg.Paths.ListCacheFile, logger)

	username := cfg.RetroAchievements.Username
	if opts.listSystems {
		items, err := source.Items(runCtx, username, opts.fresh)
		if err != nil {
			return listError(username, err)
		}
		printSystems(out, items)
		return nil
	}

	if opts.fresh {
		if err := progress.Reset(cfg.Paths.ProgressFile); err != nil {
			return err
		}
		if err := source.ClearCache(); err != nil {
			return err
		}
		logger.Info("fresh scan: cleared saved progress and list cache")
	}

	store, err := progress.Open(cfg.Paths.ProgressFile, logger)
	if err != nil {
		if errors.Is(err, progress.ErrLocked) {
			return fmt.Errorf("%w (%s)", err, cfg.Paths.ProgressFile)
		}
		return err
	}
	defer store.Close()

	tbl, err := table.Open(runCtx, cfg.Paths.TableFile)
	if err != nil {
		return err
	}
	defer tbl.Close()

	items, err := source.Items(runCtx, username, opts.fresh || !opts.cachedList)
	if err != nil {
		return listError(username, err)
	}
	if len(items) == 0 {
		return errors.New("no games found in the Want to Play list; make sure the list is not empty")
	}

	if !opts.fresh {
		existing, err := tbl.Load(runCtx)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			var added int
			items, added = backlog.MergeNew(existing, items)
			fmt.Fprintf(out, "Loaded %d saved games, %d new in the Want to Play list\n", len(existing), added)
		}
	}

	before := len(items)
	items = backlog.FilterSystems(items, opts.include, opts.exclude)
	if len(items) != before {
		fmt.Fprintf(out, "System filters kept %d of %d games\n", len(items), before)
	}
	if len(items) == 0 {
		return errors.New("no games to process after filtering; run 'backlogtimer scan --list-systems' to see system names")
	}

	times, err := ctx.newTimeLookup(cfg, logger)
	if err != nil {
		return err
	}
	stats := statslookup.New(raClient, logger)

	p := pipeline.New(times, stats, store, tbl, pipeline.Options{
		MaxConcurrency: cfg.Pipeline.MaxConcurrency,
		BatchSize:      cfg.Pipeline.BatchSize,
		RequestDelay:   cfg.RequestDelay(),
		Username:       username,
	}, logger)

	fmt.Fprintf(out, "Scanning %d games...\n", len(items))
	result, err := p.Run(runCtx, items)
	if err != nil {
		if isUnauthorized(err) {
			return fmt.Errorf("RetroAchievements rejected the API key; scan stopped: %w", err)
		}
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("scan failed: %w", err)
	}

	printScanReport(out, result, items, tbl.Path(), shouldColorize(out))
	return nil
}

func printScanReport(out io.Writer, stats pipeline.Stats, items []backlog.Item, path string, colorize bool) {
	p := newNumberPrinter()
	summary := ranking.Summarize(items)

	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Join(renderSectionHeader("Scan complete", colorize), "\n"))
	fmt.Fprintf(out, "Total games:      %s\n", p.Sprintf("%d", stats.Total))
	fmt.Fprintf(out, "From cache:       %s\n", p.Sprintf("%d", stats.FromCache))
	fmt.Fprintf(out, "Fetched:          %s\n", p.Sprintf("%d", stats.Fetched))
	fmt.Fprintf(out, "Already complete: %s\n", p.Sprintf("%d", stats.Skipped))
	fmt.Fprintf(out, "With HLTB data:   %s\n", p.Sprintf("%d", summary.WithLookup))
	fmt.Fprintf(out, "With RA mastery:  %s\n", p.Sprintf("%d", summary.WithStats))
	fmt.Fprintln(out)
	printQuality(out, summary, colorize)
	printMissing(out, summary.MissingTimes)
	fmt.Fprintf(out, "\nResults saved to %s\n", path)
}

func listError(username string, err error) error {
	if isUnauthorized(err) {
		return fmt.Errorf("RetroAchievements rejected the API key for %s: %w", username, err)
	}
	return err
}

func printSystems(out io.Writer, items []backlog.Item) {
	counts := backlog.SystemCounts(items)
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		if c := cmp.Compare(counts[b], counts[a]); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})

	p := newNumberPrinter()
	rows := make([][]string, 0, len(names))
	for _, name := range names {
		rows = append(rows, []string{name, p.Sprintf("%d", counts[name])})
	}
	fmt.Fprintln(out, renderTable(tableSpec{
		Title:   fmt.Sprintf("Systems (%d games)", len(items)),
		Headers: []string{"System", "Games"},
		Rows:    rows,
		Aligns:  []columnAlignment{alignLeft, alignRight},
	}))
}
