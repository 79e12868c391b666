package table

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"backlogtimer/internal/backlog"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// csvHeader keeps the column names spreadsheets built from older exports expect.
var csvHeader = []string{
	"Title", "System", "Achievements", "Points", "RA_ID",
	"HLTB_Beat", "HLTB_Complete", "RA_Beat", "RA_Master", "RA_Players",
	"Points_Per_Hour", "Comments",
}

// ParseFormat resolves a format name. An empty name falls back to the
// extension of path, then to CSV.
func ParseFormat(name, path string) (Format, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	switch name {
	case "", "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported export format %q (want csv, json, or yaml)", name)
}

// Write encodes items to w in format.
func Write(w io.Writer, format Format, items []backlog.Item) error {
	if items == nil {
		items = []backlog.Item{}
	}
	switch format {
	case FormatCSV:
		return writeCSV(w, items)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(items); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unsupported export format %q", format)
}

// ExportFile writes items to path, replacing any existing file.
func ExportFile(path string, format Format, items []backlog.Item) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := Write(f, format, items); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write %s export: %w", format, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close export file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename export file: %w", err)
	}
	return nil
}

func writeCSV(w io.Writer, items []backlog.Item) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, item := range items {
		record := []string{
			item.Title,
			item.System,
			strconv.Itoa(item.Achievements),
			strconv.Itoa(item.Points),
			strconv.Itoa(item.RAID),
			formatFloat(item.HLTBBeat),
			formatFloat(item.HLTBComplete),
			formatFloat(item.RABeat),
			formatFloat(item.RAMaster),
			formatInt(item.RAPlayers),
			formatFloat(item.PointsPerHour),
			item.Comment,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
