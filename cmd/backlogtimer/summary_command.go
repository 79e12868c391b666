package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"backlogtimer/internal/ranking"
)

func newSummaryCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Summarize the saved backlog table",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, items, err := ctx.loadTable(cmd.Context())
			if err != nil {
				return err
			}
			summary := ranking.Summarize(items)
			if asJSON {
				return writeJSON(cmd, summary)
			}
			printSummary(cmd.OutOrStdout(), summary, shouldColorize(cmd.OutOrStdout()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func printSummary(out io.Writer, s ranking.Summary, colorize bool) {
	p := newNumberPrinter()
	fmt.Fprintln(out, strings.Join(renderSectionHeader("Backlog summary", colorize), "\n"))
	fmt.Fprintf(out, "Total games:            %s\n", p.Sprintf("%d", s.Total))
	fmt.Fprintf(out, "With RA mastery data:   %s\n", p.Sprintf("%d", s.WithStats))
	fmt.Fprintf(out, "With HLTB data:         %s\n", p.Sprintf("%d", s.WithLookup))
	fmt.Fprintf(out, "Total points available: %s\n", p.Sprintf("%d", s.TotalPoints))

	if s.WithStats > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "RA mastery time:")
		fmt.Fprintf(out, "  Total:   %s hours (%s days)\n", p.Sprintf("%.1f", s.TotalMasterHours), p.Sprintf("%.1f", s.TotalMasterHours/24))
		fmt.Fprintf(out, "  Average: %.1f hours per game\n", s.AvgMasterHours)
	}

	if len(s.Systems) > 0 {
		rows := make([][]string, 0, len(s.Systems))
		for _, sc := range s.Systems {
			hours := ""
			if sc.MasterHours > 0 {
				hours = p.Sprintf("%.1f", sc.MasterHours)
			}
			rows = append(rows, []string{sc.System, p.Sprintf("%d", sc.Games), hours})
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderTable(tableSpec{
			Title:   "Games by system",
			Headers: []string{"System", "Games", "Mastery hours"},
			Rows:    rows,
			Aligns:  []columnAlignment{alignLeft, alignRight, alignRight},
		}))
	}

	if len(s.Longest) > 0 {
		rows := make([][]string, 0, len(s.Longest))
		for _, r := range s.Longest {
			rows = append(rows, []string{fmt.Sprintf("%.1f", r.Value), r.Item.Title, r.Item.System})
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderTable(tableSpec{
			Title:     "Longest games (RA mastery)",
			Headers:   []string{"Hours", "Title", "System"},
			Rows:      rows,
			Aligns:    []columnAlignment{alignRight, alignLeft, alignLeft},
			MaxWidths: []int{0, 48, 0},
		}))
	}

	if len(s.MostEfficient) > 0 {
		rows := make([][]string, 0, len(s.MostEfficient))
		for _, r := range s.MostEfficient {
			rows = append(rows, []string{
				fmt.Sprintf("%.1f", r.Value),
				r.Item.Title,
				p.Sprintf("%d", r.Item.Points),
				r.Source,
			})
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderTable(tableSpec{
			Title:     "Most efficient (points per hour)",
			Headers:   []string{"Pts/hr", "Title", "Points", "Basis"},
			Rows:      rows,
			Aligns:    []columnAlignment{alignRight, alignLeft, alignRight, alignLeft},
			MaxWidths: []int{0, 48, 0, 0},
		}))
	}

	fmt.Fprintln(out)
	printQuality(out, s, colorize)

	if c := s.Comparison; c.Games > 0 {
		fmt.Fprintf(out, "\nRA vs HLTB (%d games with both):\n", c.Games)
		fmt.Fprintf(out, "  Avg HLTB completionist: %.1f hours\n", c.AvgCompletionist)
		fmt.Fprintf(out, "  Avg RA mastery:         %.1f hours\n", c.AvgMaster)
		if c.Ratio > 0 {
			fmt.Fprintf(out, "  RA takes %.1fx as long on average\n", c.Ratio)
		}
	}
	printMissing(out, s.MissingTimes)
}

func newEstimateCommand(ctx *commandContext) *cobra.Command {
	var hoursPerWeek float64
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate how long the backlog takes to master",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, items, err := ctx.loadTable(cmd.Context())
			if err != nil {
				return err
			}
			est, err := ranking.EstimateCompletion(items, hoursPerWeek, time.Now())
			if err != nil {
				if errors.Is(err, ranking.ErrNoMasteryData) {
					return fmt.Errorf("%w; run 'backlogtimer scan' to fetch mastery times", err)
				}
				return err
			}
			if asJSON {
				return writeJSON(cmd, est)
			}
			printEstimate(cmd.OutOrStdout(), est, shouldColorize(cmd.OutOrStdout()))
			return nil
		},
	}

	cmd.Flags().Float64Var(&hoursPerWeek, "hours-per-week", 10, "Hours of play available per week")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func printEstimate(out io.Writer, est ranking.Estimate, colorize bool) {
	p := newNumberPrinter()
	fmt.Fprintln(out, strings.Join(renderSectionHeader("Completion estimate", colorize), "\n"))
	fmt.Fprintf(out, "Total backlog: %s hours (%s games)\n", p.Sprintf("%.1f", est.TotalHours), p.Sprintf("%d", est.Games))
	fmt.Fprintf(out, "At %s hours per week:\n", p.Sprintf("%g", est.HoursPerWeek))
	fmt.Fprintf(out, "  Weeks:  %s\n", p.Sprintf("%.1f", est.Weeks))
	fmt.Fprintf(out, "  Months: %s\n", p.Sprintf("%.1f", est.Months))
	fmt.Fprintf(out, "  Years:  %s\n", p.Sprintf("%.2f", est.Years))
	fmt.Fprintf(out, "\nEstimated completion: %s\n", est.Completion.Format("January 2006"))

	color := ansiGreen
	if est.Years > 1 {
		color = ansiYellow
	}
	fmt.Fprintf(out, "%s\n", colorText(est.Outlook(), color, colorize))
}
