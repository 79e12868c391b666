package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"backlogtimer/internal/backlog"
	"backlogtimer/internal/matching"
	"backlogtimer/internal/ranking"
	"backlogtimer/internal/statslookup"
	"backlogtimer/internal/timelookup"
)

type lookupView struct {
	Query        string   `json:"query"`
	RAID         int      `json:"ra_id,omitempty"`
	Title        string   `json:"title"`
	System       string   `json:"system,omitempty"`
	Achievements int      `json:"achievements,omitempty"`
	Points       int      `json:"points,omitempty"`
	MatchedName  string   `json:"hltb_name,omitempty"`
	Similarity   float64  `json:"similarity,omitempty"`
	Beat         *float64 `json:"hltb_beat,omitempty"`
	Complete     *float64 `json:"hltb_complete,omitempty"`
	RABeat       *float64 `json:"ra_beat,omitempty"`
	RAMaster     *float64 `json:"ra_master,omitempty"`
	Players      *int     `json:"ra_players,omitempty"`
	PerHour      *float64 `json:"points_per_hour,omitempty"`
	Comment      string   `json:"comment,omitempty"`
}

func newLookupCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "lookup <title|id>",
		Short: "Look up one game by title or RetroAchievements ID",
		Long: `Look up one game. A numeric argument is treated as a RetroAchievements
game ID: its metadata and player statistics are fetched and the title is
searched on HowLongToBeat. Any other argument is searched on HowLongToBeat only.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			times, err := ctx.newTimeLookup(cfg, logger)
			if err != nil {
				return err
			}

			query := strings.TrimSpace(strings.Join(args, " "))
			view := lookupView{Query: query, Title: query}

			if id, convErr := strconv.Atoi(query); convErr == nil && id > 0 {
				if err := cfg.RequireCredentials(); err != nil {
					return err
				}
				client, err := ctx.newRetroAchievementsClient(cfg)
				if err != nil {
					return err
				}
				info, err := client.Game(cmd.Context(), id)
				if err != nil {
					return fmt.Errorf("look up game %d: %w", id, err)
				}
				view.RAID = info.ID
				view.Title = info.Title
				view.System = info.ConsoleName
				view.Achievements = info.Achievements
				view.Points = info.Points

				stats, err := statslookup.New(client, logger).Lookup(cmd.Context(), id)
				if err != nil {
					return err
				}
				view.RABeat = stats.RABeat
				view.RAMaster = stats.RAMaster
				view.Players = stats.Players
			}

			result, err := times.Lookup(cmd.Context(), view.Title, view.System)
			if err != nil {
				return err
			}
			applyTimeResult(&view, result)

			if asJSON {
				return writeJSON(cmd, view)
			}
			printLookup(cmd.OutOrStdout(), view, shouldColorize(cmd.OutOrStdout()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func applyTimeResult(view *lookupView, result timelookup.Result) {
	view.MatchedName = result.MatchedName
	view.Similarity = result.Similarity
	view.Beat = result.BeatHours
	view.Complete = result.CompletionistHours
	view.Comment = result.Comment
	view.PerHour = ranking.PointsPerHour(backlog.Item{
		Points:       view.Points,
		HLTBBeat:     view.Beat,
		HLTBComplete: view.Complete,
		RAMaster:     view.RAMaster,
	})
}

func printLookup(out io.Writer, view lookupView, colorize bool) {
	p := newNumberPrinter()
	heading := view.Title
	if view.System != "" {
		heading = fmt.Sprintf("%s (%s)", view.Title, view.System)
	}
	fmt.Fprintln(out, strings.Join(renderSectionHeader(heading, colorize), "\n"))
	if view.RAID > 0 {
		fmt.Fprintf(out, "RA ID: %d | Achievements: %d | Points: %s\n", view.RAID, view.Achievements, p.Sprintf("%d", view.Points))
	}

	quality := matching.Classify(view.Comment, view.Beat != nil || view.Complete != nil)
	if view.MatchedName != "" {
		match := view.MatchedName
		if view.Comment != "" {
			match += " (" + colorText(view.Comment, qualityColor(quality), colorize) + ")"
		}
		fmt.Fprintf(out, "\nHLTB match: %s\n", match)
		if view.Beat != nil {
			fmt.Fprintf(out, "  Beat:          %s\n", formatHours(view.Beat))
		}
		if view.Complete != nil {
			fmt.Fprintf(out, "  Completionist: %s\n", formatHours(view.Complete))
		}
	} else {
		fmt.Fprintf(out, "\n%s\n", colorText(view.Comment, ansiRed, colorize))
	}

	if view.RAMaster != nil || view.RABeat != nil {
		fmt.Fprintln(out, "\nRA player data:")
		if view.RABeat != nil {
			fmt.Fprintf(out, "  Median beat:    %s\n", formatHours(view.RABeat))
		}
		if view.RAMaster != nil {
			fmt.Fprintf(out, "  Median mastery: %s\n", formatHours(view.RAMaster))
		}
		if view.Players != nil {
			fmt.Fprintf(out, "  Players:        %s\n", p.Sprintf("%d", *view.Players))
		}
	}
	if view.PerHour != nil {
		fmt.Fprintf(out, "\nEfficiency: %.1f pts/hr\n", *view.PerHour)
	}
}
