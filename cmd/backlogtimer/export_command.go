package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"backlogtimer/internal/config"
	"backlogtimer/internal/table"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var formatFlag string
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the saved backlog table as CSV, JSON, or YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, items, err := ctx.loadTable(cmd.Context())
			if err != nil {
				return err
			}
			format, err := table.ParseFormat(formatFlag, outPath)
			if err != nil {
				return err
			}

			target := strings.TrimSpace(outPath)
			if target == "" {
				target = filepath.Join(cfg.Paths.DataDir, "backlog."+string(format))
			} else if target != "-" {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve export path: %w", err)
				}
				target = expanded
			}

			if target == "-" {
				return table.Write(cmd.OutOrStdout(), format, items)
			}
			if err := table.ExportFile(target, format, items); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d games to %s\n", len(items), target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&formatFlag, "format", "f", "", "Export format: csv, json, or yaml (default from --out extension, else csv)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Destination file, or - for stdout (default: backlog.<format> in the data directory)")
	return cmd
}
