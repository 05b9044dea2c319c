package datatable

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedEvent struct {
	name    string
	payload map[string]any
}

type captureTelemetry struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (c *captureTelemetry) Record(_ context.Context, event string, payload map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, recordedEvent{name: event, payload: payload})
}

func (c *captureTelemetry) names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.events))
	for i, evt := range c.events {
		out[i] = evt.name
	}
	return out
}

type captureRefresh struct {
	mu     sync.Mutex
	events []TableEvent
}

func (c *captureRefresh) TableUpdated(_ context.Context, event TableEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

func newMemberTable(t *testing.T, rows []member, opts TableOptions) *Table[member] {
	t.Helper()
	table, err := NewTable(memberSchema(t), opts)
	require.NoError(t, err)
	table.SetRows(context.Background(), rows)
	return table
}

func TestNewTableValidatesOptions(t *testing.T) {
	t.Parallel()
	schema := memberSchema(t)

	_, err := NewTable[member](nil, TableOptions{})
	assert.ErrorIs(t, err, ErrSchemaRequired)

	_, err = NewTable(schema, TableOptions{PageSize: 15})
	assert.ErrorIs(t, err, ErrInvalidPageSize)

	_, err = NewTable(schema, TableOptions{Hidden: []string{SelectColumnID}})
	assert.ErrorIs(t, err, ErrColumnNotHideable)

	_, err = NewTable(schema, TableOptions{Hidden: []string{"nope"}})
	assert.ErrorIs(t, err, ErrUnknownColumn)

	_, err = NewTable(schema, TableOptions{Sort: SortSpec{ColumnID: ActionsColumnID, Direction: SortAsc}})
	assert.ErrorIs(t, err, ErrColumnNotSortable)

	table, err := NewTable(schema, TableOptions{Name: "users"})
	require.NoError(t, err)
	assert.Equal(t, DefaultPageSize, table.State().Page.PageSize)
}

func TestTableSortCycleResetsPage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	table := newMemberTable(t, generatedMembers(35), TableOptions{})
	table.SetPage(ctx, 3)
	require.Equal(t, 3, table.State().Page.PageIndex)

	require.NoError(t, table.ToggleSort(ctx, "name"))
	state := table.State()
	assert.Equal(t, SortSpec{ColumnID: "name", Direction: SortAsc}, state.Sort)
	assert.Zero(t, state.Page.PageIndex)

	require.NoError(t, table.ToggleSort(ctx, "name"))
	assert.Equal(t, SortDesc, table.State().Sort.Direction)
	assert.Equal(t, "user-35", table.View().VisibleRows[0].ID)

	require.NoError(t, table.ToggleSort(ctx, "name"))
	assert.False(t, table.State().Sort.Active())
	assert.Equal(t, "user-1", table.View().VisibleRows[0].ID)

	assert.ErrorIs(t, table.ToggleSort(ctx, SelectColumnID), ErrColumnNotSortable)
	assert.ErrorIs(t, table.ToggleSort(ctx, "missing"), ErrUnknownColumn)
}

func TestTableFilterChangeResetsPageAndClamps(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	table := newMemberTable(t, generatedMembers(35), TableOptions{})
	table.SetPage(ctx, 99)
	assert.Equal(t, 3, table.State().Page.PageIndex)

	table.SetFilter(ctx, "inactive")
	view := table.View()
	assert.Zero(t, view.Page.PageIndex)
	for _, row := range view.VisibleRows {
		assert.Equal(t, "inactive", row.Status)
	}
}

func TestTableSetPageSizeKeepsFirstRowVisible(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	table := newMemberTable(t, generatedMembers(50), TableOptions{})
	table.SetPage(ctx, 4)
	first := table.View().VisibleRows[0].ID

	require.NoError(t, table.SetPageSize(ctx, 20))
	view := table.View()
	assert.Equal(t, 2, view.Page.PageIndex)
	assert.Contains(t, ids(view.VisibleRows), first)

	assert.ErrorIs(t, table.SetPageSize(ctx, 25), ErrInvalidPageSize)
	assert.Equal(t, 20, table.State().Page.PageSize)
}

func TestTableSelectionPersistsAcrossFilterSortAndPage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	table := newMemberTable(t, generatedMembers(30), TableOptions{})
	require.NoError(t, table.ToggleRow(ctx, "user-2"))
	require.NoError(t, table.ToggleRow(ctx, "user-29"))

	table.SetFilter(ctx, "member 02")
	require.NoError(t, table.ToggleSort(ctx, "score"))
	table.SetPage(ctx, 2)

	assert.Equal(t, 2, table.SelectedCount())
	assert.Equal(t, []string{"user-2", "user-29"}, ids(table.SelectedRows()))
	assert.True(t, table.IsSelected("user-29"))

	assert.ErrorIs(t, table.ToggleRow(ctx, "ghost"), ErrUnknownRow)
}

func TestTableToggleAllAppliesToFilteredRows(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	table := newMemberTable(t, generatedMembers(30), TableOptions{})
	table.SetFilter(ctx, "pending")
	table.ToggleAll(ctx, true)
	table.ToggleAll(ctx, true)
	assert.Equal(t, 10, table.SelectedCount())
	assert.Equal(t, CoverageAll, table.Snapshot().Coverage)

	table.SetFilter(ctx, "")
	assert.Equal(t, CoverageSome, table.Snapshot().Coverage)
	table.SetFilter(ctx, "inactive")
	table.ToggleAll(ctx, true)
	assert.Equal(t, 20, table.SelectedCount())

	table.ToggleAll(ctx, false)
	assert.Equal(t, 10, table.SelectedCount())
	for _, row := range table.SelectedRows() {
		assert.Equal(t, "pending", row.Status)
	}
}

func TestTableClearSelectionDropsFilteredOutRows(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	table := newMemberTable(t, generatedMembers(30), TableOptions{})
	table.SetFilter(ctx, "pending")
	table.ToggleAll(ctx, true)
	table.SetFilter(ctx, "inactive")
	require.Equal(t, 10, table.SelectedCount())

	table.ClearSelection(ctx)
	assert.Zero(t, table.SelectedCount())
	assert.Equal(t, CoverageNone, table.Snapshot().Coverage)
}

func TestTableSetRowsPrunesSelection(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	table := newMemberTable(t, generatedMembers(5), TableOptions{})
	table.ToggleAll(ctx, true)
	table.SetRows(ctx, generatedMembers(3))
	assert.Equal(t, []string{"user-1", "user-2", "user-3"}, table.SelectedIDs())
}

func TestTableToggleColumnHidesFromFilterAndExport(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	table := newMemberTable(t, sampleMembers(), TableOptions{})
	table.SetFilter(ctx, "bob@")
	require.Len(t, table.View().VisibleRows, 1)

	require.NoError(t, table.ToggleColumn(ctx, "email"))
	assert.Empty(t, table.View().VisibleRows)
	assert.ErrorIs(t, table.ToggleColumn(ctx, SelectColumnID), ErrColumnNotHideable)

	table.SetFilter(ctx, "")
	file, err := table.Export(ctx, ExportRequest{})
	require.NoError(t, err)
	assert.NotContains(t, string(file.Data), "email")

	require.NoError(t, table.ToggleColumn(ctx, "email"))
	snap := table.Snapshot()
	for _, col := range snap.Columns {
		assert.False(t, col.Hidden, col.ID)
	}
}

func TestTableApplyValidatesBeforeMutating(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	table := newMemberTable(t, generatedMembers(30), TableOptions{})
	filter := "member"
	bad := 33
	err := table.Apply(ctx, ViewRequest{Filter: &filter, PageSize: &bad})
	assert.ErrorIs(t, err, ErrInvalidPageSize)
	assert.Empty(t, table.State().Filter)

	size := 20
	index := 1
	err = table.Apply(ctx, ViewRequest{
		Filter:    &filter,
		Sort:      &SortSpec{ColumnID: "name", Direction: SortDesc},
		PageSize:  &size,
		PageIndex: &index,
	})
	require.NoError(t, err)
	state := table.State()
	assert.Equal(t, "member", state.Filter)
	assert.Equal(t, Pagination{PageIndex: 1, PageSize: 20}, state.Page)
	assert.Equal(t, SortDesc, state.Sort.Direction)

	err = table.Apply(ctx, ViewRequest{Sort: &SortSpec{ColumnID: SelectColumnID, Direction: SortAsc}})
	assert.ErrorIs(t, err, ErrColumnNotSortable)
}

func TestTableApplyResetsPageOnSortChange(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	table := newMemberTable(t, generatedMembers(30), TableOptions{})
	table.SetPage(ctx, 2)
	require.Equal(t, 2, table.State().Page.PageIndex)

	sort := SortSpec{ColumnID: "name", Direction: SortAsc}
	require.NoError(t, table.Apply(ctx, ViewRequest{Sort: &sort}))
	assert.Zero(t, table.State().Page.PageIndex)

	table.SetPage(ctx, 1)
	require.NoError(t, table.Apply(ctx, ViewRequest{Sort: &sort}))
	assert.Equal(t, 1, table.State().Page.PageIndex)

	size := 20
	require.NoError(t, table.Apply(ctx, ViewRequest{PageSize: &size}))
	assert.Equal(t, Pagination{PageIndex: 0, PageSize: 20}, table.State().Page)

	table.SetPage(ctx, 1)
	size = 10
	require.NoError(t, table.Apply(ctx, ViewRequest{PageSize: &size}))
	assert.Equal(t, Pagination{PageIndex: 2, PageSize: 10}, table.State().Page)
}

func TestTableExportScopes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	refresh := &captureRefresh{}
	table := newMemberTable(t, generatedMembers(25), TableOptions{Name: "users", Title: "Users Export", Refresh: refresh})
	require.NoError(t, table.ToggleSort(ctx, "name"))
	require.NoError(t, table.ToggleSort(ctx, "name"))

	file, err := table.Export(ctx, ExportRequest{})
	require.NoError(t, err)
	assert.Equal(t, "users-export.csv", file.Name)
	assert.Equal(t, 25, file.Rows)
	lines := strings.Split(string(file.Data), "\n")
	assert.Equal(t, "id,name,email,status,score", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "user-25,"))
	assert.Len(t, lines, 26)

	_, err = table.Export(ctx, ExportRequest{Scope: ScopeSelected})
	assert.ErrorIs(t, err, ErrEmptySelection)

	require.NoError(t, table.ToggleRow(ctx, "user-9"))
	require.NoError(t, table.ToggleRow(ctx, "user-3"))
	file, err = table.Export(ctx, ExportRequest{Scope: ScopeSelected, Format: FormatParquet})
	require.NoError(t, err)
	assert.Equal(t, "users-export.parquet", file.Name)
	assert.Equal(t, 2, file.Rows)
	assert.Equal(t, "PAR1", string(file.Data[:4]))

	_, err = table.Export(ctx, ExportRequest{Format: "xlsx"})
	assert.ErrorIs(t, err, ErrInvalidFormat)
	_, err = table.Export(ctx, ExportRequest{Scope: "page"})
	assert.ErrorIs(t, err, ErrInvalidScope)

	refresh.mu.Lock()
	defer refresh.mu.Unlock()
	require.NotEmpty(t, refresh.events)
	last := refresh.events[len(refresh.events)-1]
	assert.Equal(t, "export", last.Reason)
	assert.Equal(t, "users", last.Table)
}

func TestTableExportWithNoMatchesIsHeaderOnly(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	table := newMemberTable(t, sampleMembers(), TableOptions{})
	table.SetFilter(ctx, "nobody")
	file, err := table.Export(ctx, ExportRequest{})
	require.NoError(t, err)
	assert.Equal(t, "id,name,email,status,score", string(file.Data))
	assert.Zero(t, file.Rows)
}

func TestTableStatusKeepsLoadingDistinctFromEmpty(t *testing.T) {
	t.Parallel()
	table, err := NewTable(memberSchema(t), TableOptions{})
	require.NoError(t, err)

	table.SetLoading(true)
	assert.Equal(t, StatusLoading, table.Snapshot().Status)
	assert.True(t, table.Loading())

	table.SetLoading(false)
	assert.Equal(t, StatusEmpty, table.Snapshot().Status)

	table.SetLoadError(errors.New("upstream down"))
	snap := table.Snapshot()
	assert.Equal(t, StatusError, snap.Status)
	assert.Equal(t, "upstream down", snap.Error)

	table.SetRows(context.Background(), sampleMembers())
	snap = table.Snapshot()
	assert.Equal(t, StatusReady, snap.Status)
	assert.Empty(t, snap.Error)
}

func TestTableSnapshotRendersVisiblePage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	table := newMemberTable(t, generatedMembers(12), TableOptions{Name: "users"})
	require.NoError(t, table.ToggleRow(ctx, "user-11"))
	table.SetPage(ctx, 1)

	snap := table.Snapshot()
	assert.Equal(t, "users", snap.Table)
	assert.Equal(t, 12, snap.TotalRows)
	assert.Equal(t, 12, snap.TotalFilteredCount)
	assert.Equal(t, 2, snap.PageCount)
	assert.Equal(t, PageSizes, snap.PageSizes)
	assert.Equal(t, "Showing 11 to 12 of 12 results", snap.Caption)
	require.Len(t, snap.Rows, 2)
	assert.True(t, snap.Rows[0].Selected)
	assert.Equal(t, "Member 11", snap.Rows[0].Cells["name"])
	assert.NotContains(t, snap.Rows[0].Cells, SelectColumnID)
	assert.Equal(t, CoverageSome, snap.Coverage)
	assert.Equal(t, SelectColumnID, snap.Columns[0].ID)
	assert.True(t, snap.Columns[0].Special)
}

func TestTableRecordsTelemetry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	telemetry := &captureTelemetry{}
	table := newMemberTable(t, sampleMembers(), TableOptions{Name: "users", Session: "s1", Telemetry: telemetry})
	require.NoError(t, table.ToggleSort(ctx, "name"))
	table.SetFilter(ctx, "a")
	table.SetFilter(ctx, "a")
	require.NoError(t, table.ToggleRow(ctx, "1"))

	assert.Equal(t, []string{
		"datatable.rows.replace",
		"datatable.sort.toggle",
		"datatable.filter.change",
		"datatable.row.toggle",
	}, telemetry.names())
	telemetry.mu.Lock()
	defer telemetry.mu.Unlock()
	assert.Equal(t, "users", telemetry.events[1].payload["table"])
	assert.Equal(t, "s1", telemetry.events[1].payload["session"])
}

func TestTableAggregateFollowsFilter(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	table := newMemberTable(t, generatedMembers(9), TableOptions{})
	table.SetFilter(ctx, "inactive")
	buckets, err := table.Aggregate("status", "score")
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.Equal(t, Bucket{Label: "inactive", Count: 3, Sum: 1 + 0 + 3}, buckets[0])
}
