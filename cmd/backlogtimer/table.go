package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// tableSpec describes a rounded-style table. Rows shorter than Headers are
// padded with empty cells.
type tableSpec struct {
	Title   string
	Headers []string
	Rows    [][]string
	Aligns  []columnAlignment
	// MaxWidths caps column widths, wrapping longer cells. Zero means unbounded.
	MaxWidths []int
}

func renderTable(ts tableSpec) string {
	columns := len(ts.Headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	if ts.Title != "" {
		tw.SetTitle(ts.Title)
	}

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = ts.Headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range ts.Rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		cc := table.ColumnConfig{
			Number:      i + 1,
			Align:       text.AlignLeft,
			AlignHeader: text.AlignLeft,
		}
		if i < len(ts.Aligns) && ts.Aligns[i] == alignRight {
			cc.Align = text.AlignRight
		}
		if i < len(ts.MaxWidths) && ts.MaxWidths[i] > 0 {
			cc.WidthMax = ts.MaxWidths[i]
		}
		configs = append(configs, cc)
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}
