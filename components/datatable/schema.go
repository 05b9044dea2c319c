package datatable

import (
	"fmt"
	"strings"

	"github.com/ettle/strcase"
)

// Column describes how a row type is projected into one table column.
type Column[R any] struct {
	ID         string
	Header     string
	Accessor   func(R) any
	Format     func(any) string
	Sortable   bool
	Filterable bool
	Hidden     bool
}

// Special reports whether the column is a reserved presentation column.
func (c Column[R]) Special() bool {
	return IsSpecialColumn(c.ID)
}

// Field declares a sortable, filterable data column.
func Field[R any](id, header string, accessor func(R) any) Column[R] {
	return Column[R]{
		ID:         id,
		Header:     header,
		Accessor:   accessor,
		Sortable:   true,
		Filterable: true,
	}
}

// SelectColumn declares the row checkbox column.
func SelectColumn[R any]() Column[R] {
	return Column[R]{ID: SelectColumnID}
}

// ActionsColumn declares the per-row actions column.
func ActionsColumn[R any]() Column[R] {
	return Column[R]{ID: ActionsColumnID}
}

// MapRow is the row type used for schemas declared at runtime.
type MapRow = map[string]any

// MapField returns an accessor reading key from a MapRow.
func MapField(key string) func(MapRow) any {
	return func(row MapRow) any {
		return row[key]
	}
}

// Schema is a validated, ordered set of columns plus the row identity function.
type Schema[R any] struct {
	columns []Column[R]
	index   map[string]int
	rowID   func(R) string
}

// NewSchema validates the columns and returns an immutable schema.
func NewSchema[R any](rowID func(R) string, columns ...Column[R]) (*Schema[R], error) {
	if rowID == nil {
		return nil, ErrRowIDRequired
	}
	s := &Schema[R]{
		columns: make([]Column[R], 0, len(columns)),
		index:   make(map[string]int, len(columns)),
		rowID:   rowID,
	}
	for i, col := range columns {
		col.ID = strings.TrimSpace(col.ID)
		if col.ID == "" {
			return nil, fmt.Errorf("datatable: column at index %d: %w", i, ErrColumnIDRequired)
		}
		if _, exists := s.index[col.ID]; exists {
			return nil, columnError(col.ID, ErrDuplicateColumn)
		}
		if col.Special() {
			col.Sortable = false
			col.Filterable = false
			col.Hidden = false
		} else if col.Accessor == nil {
			return nil, columnError(col.ID, ErrAccessorRequired)
		}
		if col.Header == "" && !col.Special() {
			col.Header = defaultHeader(col.ID)
		}
		s.index[col.ID] = len(s.columns)
		s.columns = append(s.columns, col)
	}
	return s, nil
}

// MustSchema is NewSchema for package-level schema declarations.
func MustSchema[R any](rowID func(R) string, columns ...Column[R]) *Schema[R] {
	s, err := NewSchema(rowID, columns...)
	if err != nil {
		panic(err)
	}
	return s
}

// Columns returns the columns in declaration order.
func (s *Schema[R]) Columns() []Column[R] {
	out := make([]Column[R], len(s.columns))
	copy(out, s.columns)
	return out
}

// Column looks up a column by id.
func (s *Schema[R]) Column(id string) (Column[R], bool) {
	idx, ok := s.index[id]
	if !ok {
		return Column[R]{}, false
	}
	return s.columns[idx], true
}

// RowID returns the stable identity of row.
func (s *Schema[R]) RowID(row R) string {
	return s.rowID(row)
}

// Visible reports whether the column is shown given per-table visibility overrides.
func (s *Schema[R]) Visible(col Column[R], hidden map[string]bool) bool {
	if col.Special() {
		return true
	}
	if override, ok := hidden[col.ID]; ok {
		return !override
	}
	return !col.Hidden
}

// VisibleColumns returns the columns shown given visibility overrides.
func (s *Schema[R]) VisibleColumns(hidden map[string]bool) []Column[R] {
	out := make([]Column[R], 0, len(s.columns))
	for _, col := range s.columns {
		if s.Visible(col, hidden) {
			out = append(out, col)
		}
	}
	return out
}

// DataColumns returns the visible, non-special columns.
func (s *Schema[R]) DataColumns(hidden map[string]bool) []Column[R] {
	out := make([]Column[R], 0, len(s.columns))
	for _, col := range s.columns {
		if !col.Special() && s.Visible(col, hidden) {
			out = append(out, col)
		}
	}
	return out
}

func (s *Schema[R]) filterColumns(hidden map[string]bool) []Column[R] {
	out := make([]Column[R], 0, len(s.columns))
	for _, col := range s.DataColumns(hidden) {
		if col.Filterable {
			out = append(out, col)
		}
	}
	return out
}

func defaultHeader(id string) string {
	words := strings.Split(strcase.ToSnake(id), "_")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
