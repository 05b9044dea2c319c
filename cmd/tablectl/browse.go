package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abdurrahmanshkh/admybrand-dashboard/components/datatable"
)

const browseHelp = "/ filter · ←/→ column · s sort · space select · a all · n/p page · +/- size · e export · q quit"

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	activeStyle = lipgloss.NewStyle().Underline(true)
)

type browseCmd struct {
	tableFlags `embed:""`
}

func (cmd *browseCmd) Run(ctx context.Context, _ io.Writer) error {
	t, tm, err := cmd.load(ctx)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(newBrowser(ctx, t, tm.Title), tea.WithContext(ctx), tea.WithAltScreen()).Run()
	return err
}

// browser is the interactive view over one table. Every key maps to one table intent
// and the grid is rebuilt from the resulting snapshot.
type browser struct {
	ctx       context.Context
	table     *datatable.Table[datatable.MapRow]
	title     string
	grid      table.Model
	filter    textinput.Model
	filtering bool
	column    int
	snap      datatable.Snapshot
	status    string
	writeFile func(name string, data []byte) error
}

func newBrowser(ctx context.Context, t *datatable.Table[datatable.MapRow], title string) *browser {
	if title == "" {
		title = t.Name()
	}
	filter := textinput.New()
	filter.Prompt = "filter: "
	filter.Placeholder = "type to filter rows"
	filter.SetValue(t.State().Filter)

	styles := table.DefaultStyles()
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("212")).Bold(true)
	grid := table.New(table.WithFocused(true), table.WithHeight(12), table.WithStyles(styles))

	b := &browser{
		ctx:    ctx,
		table:  t,
		title:  title,
		grid:   grid,
		filter: filter,
		writeFile: func(name string, data []byte) error {
			return os.WriteFile(name, data, 0o644) //nolint:gosec
		},
	}
	b.refresh()
	return b
}

func (b *browser) Init() tea.Cmd {
	return nil
}

func (b *browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		b.grid, cmd = b.grid.Update(msg)
		return b, cmd
	}
	if b.filtering {
		return b.updateFilter(key)
	}

	switch key.String() {
	case "q", "ctrl+c":
		return b, tea.Quit
	case "/":
		b.filtering = true
		return b, b.filter.Focus()
	case "left", "h":
		b.moveColumn(-1)
	case "right", "l":
		b.moveColumn(1)
	case "s":
		if col, ok := b.activeColumn(); ok {
			b.report(b.table.ToggleSort(b.ctx, col.ID))
		}
	case " ":
		if row, ok := b.cursorRow(); ok {
			b.report(b.table.ToggleRow(b.ctx, row.ID))
		}
	case "a":
		b.table.ToggleAll(b.ctx, b.snap.Coverage != datatable.CoverageAll)
	case "n":
		b.table.SetPage(b.ctx, b.snap.Page.PageIndex+1)
	case "p":
		b.table.SetPage(b.ctx, b.snap.Page.PageIndex-1)
	case "+":
		b.report(b.stepPageSize(1))
	case "-":
		b.report(b.stepPageSize(-1))
	case "e":
		b.export()
	default:
		var cmd tea.Cmd
		b.grid, cmd = b.grid.Update(msg)
		return b, cmd
	}
	b.refresh()
	return b, nil
}

func (b *browser) updateFilter(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyEnter, tea.KeyEsc:
		b.filtering = false
		b.filter.Blur()
		return b, nil
	}
	var cmd tea.Cmd
	b.filter, cmd = b.filter.Update(key)
	if b.filter.Value() != b.table.State().Filter {
		b.table.SetFilter(b.ctx, b.filter.Value())
		b.refresh()
	}
	return b, cmd
}

func (b *browser) View() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render(fmt.Sprintf("%s · %d records", b.title, b.snap.TotalRows)))
	s.WriteString("\n")
	s.WriteString(b.filter.View())
	s.WriteString("\n\n")
	if b.snap.Status == datatable.StatusEmpty {
		s.WriteString("No results.\n")
	} else {
		s.WriteString(b.grid.View())
		s.WriteString("\n")
	}
	s.WriteString(statusStyle.Render(pageCaption(b.snap)))
	s.WriteString("\n")
	if b.status != "" {
		s.WriteString(b.status)
		s.WriteString("\n")
	}
	s.WriteString(statusStyle.Render(browseHelp))
	return s.String()
}

func (b *browser) refresh() {
	b.snap = b.table.Snapshot()
	columns := dataColumns(b.snap)
	if b.column >= len(columns) {
		b.column = max(len(columns)-1, 0)
	}

	gridColumns := make([]table.Column, 0, len(columns)+1)
	gridColumns = append(gridColumns, table.Column{Title: " ", Width: 3})
	for i, col := range columns {
		title := headerLabel(col)
		if i == b.column {
			title = activeStyle.Render(title)
		}
		gridColumns = append(gridColumns, table.Column{Title: title, Width: columnWidth(col, b.snap.Rows)})
	}
	rows := make([]table.Row, len(b.snap.Rows))
	for r, row := range b.snap.Rows {
		cells := make(table.Row, 0, len(columns)+1)
		mark := "[ ]"
		if row.Selected {
			mark = "[x]"
		}
		cells = append(cells, mark)
		for _, col := range columns {
			cells = append(cells, row.Cells[col.ID])
		}
		rows[r] = cells
	}
	b.grid.SetRows(nil)
	b.grid.SetColumns(gridColumns)
	b.grid.SetRows(rows)
	if b.grid.Cursor() >= len(rows) {
		b.grid.SetCursor(max(len(rows)-1, 0))
	}
}

func (b *browser) moveColumn(delta int) {
	count := len(dataColumns(b.snap))
	if count == 0 {
		return
	}
	b.column = (b.column + delta + count) % count
}

func (b *browser) activeColumn() (datatable.ColumnState, bool) {
	columns := dataColumns(b.snap)
	if b.column < 0 || b.column >= len(columns) {
		return datatable.ColumnState{}, false
	}
	return columns[b.column], true
}

func (b *browser) cursorRow() (datatable.RowState, bool) {
	idx := b.grid.Cursor()
	if idx < 0 || idx >= len(b.snap.Rows) {
		return datatable.RowState{}, false
	}
	return b.snap.Rows[idx], true
}

func (b *browser) stepPageSize(delta int) error {
	idx := slices.Index(datatable.PageSizes, b.snap.Page.PageSize) + delta
	if idx < 0 || idx >= len(datatable.PageSizes) {
		return nil
	}
	return b.table.SetPageSize(b.ctx, datatable.PageSizes[idx])
}

func (b *browser) export() {
	file, err := b.table.Export(b.ctx, datatable.ExportRequest{})
	if err != nil {
		b.report(err)
		return
	}
	if err := b.writeFile(file.Name, file.Data); err != nil {
		b.report(err)
		return
	}
	b.status = fmt.Sprintf("exported %d rows to %s", file.Rows, file.Name)
}

func (b *browser) report(err error) {
	if err != nil {
		b.status = "error: " + err.Error()
		return
	}
	b.status = ""
}

func columnWidth(col datatable.ColumnState, rows []datatable.RowState) int {
	width := lipgloss.Width(headerLabel(col))
	for _, row := range rows {
		width = max(width, lipgloss.Width(row.Cells[col.ID]))
	}
	return min(width, 32)
}
