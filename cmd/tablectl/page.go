package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/abdurrahmanshkh/admybrand-dashboard/components/datatable"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
	selectedStyle = cellStyle.Foreground(lipgloss.Color("212"))
	captionStyle  = lipgloss.NewStyle().Faint(true)
	borderStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

type pageCmd struct {
	tableFlags `embed:""`

	Page     int `default:"1" help:"1-based page number; out of range pages are clamped."`
	PageSize int `default:"10" enum:"10,20,30,40,50" help:"Rows per page."`
}

func (cmd *pageCmd) Run(ctx context.Context, stdout io.Writer) error {
	t, _, err := cmd.load(ctx)
	if err != nil {
		return err
	}
	size, index := cmd.PageSize, cmd.Page-1
	if err := t.Apply(ctx, datatable.ViewRequest{PageSize: &size, PageIndex: &index}); err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, renderPage(t.Snapshot()))
	return err
}

// renderPage draws the visible data columns of a snapshot with its caption.
func renderPage(snap datatable.Snapshot) string {
	columns := dataColumns(snap)
	if snap.Status == datatable.StatusEmpty || len(columns) == 0 {
		return captionStyle.Render("No results.")
	}
	headers := make([]string, len(columns))
	for i, col := range columns {
		headers[i] = headerLabel(col)
	}
	rows := make([][]string, len(snap.Rows))
	for r, row := range snap.Rows {
		cells := make([]string, len(columns))
		for i, col := range columns {
			cells[i] = row.Cells[col.ID]
		}
		rows[r] = cells
	}
	grid := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row >= 0 && row < len(snap.Rows) && snap.Rows[row].Selected:
				return selectedStyle
			default:
				return cellStyle
			}
		})

	var b strings.Builder
	b.WriteString(grid.Render())
	b.WriteString("\n")
	b.WriteString(captionStyle.Render(pageCaption(snap)))
	return b.String()
}

func dataColumns(snap datatable.Snapshot) []datatable.ColumnState {
	out := make([]datatable.ColumnState, 0, len(snap.Columns))
	for _, col := range snap.Columns {
		if col.Special || col.Hidden {
			continue
		}
		out = append(out, col)
	}
	return out
}

func headerLabel(col datatable.ColumnState) string {
	switch col.Sort {
	case datatable.SortAsc:
		return col.Header + " ↑"
	case datatable.SortDesc:
		return col.Header + " ↓"
	default:
		return col.Header
	}
}

func pageCaption(snap datatable.Snapshot) string {
	return fmt.Sprintf("Page %d of %d · %d of %d rows · %d selected",
		snap.Page.PageIndex+1, max(snap.PageCount, 1), snap.TotalFilteredCount, snap.TotalRows, snap.SelectedCount)
}
