package datatable

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ManifestVersion is the current table manifest format version.
const ManifestVersion = "1"

// ManifestDocument declares tables over untyped rows.
type ManifestDocument struct {
	Version string          `json:"version" yaml:"version"`
	Tables  []TableManifest `json:"tables" yaml:"tables"`
	Source  string          `json:"-" yaml:"-"`
}

// TableManifest declares one table.
type TableManifest struct {
	Name     string           `json:"name" yaml:"name"`
	Title    string           `json:"title,omitempty" yaml:"title,omitempty"`
	RowID    string           `json:"row_id" yaml:"row_id"`
	PageSize int              `json:"page_size,omitempty" yaml:"page_size,omitempty"`
	Select   bool             `json:"select,omitempty" yaml:"select,omitempty"`
	Actions  bool             `json:"actions,omitempty" yaml:"actions,omitempty"`
	Sort     *ManifestSort    `json:"sort,omitempty" yaml:"sort,omitempty"`
	Columns  []ManifestColumn `json:"columns" yaml:"columns"`
	// Data is a JSON file holding the rows, relative to the manifest.
	Data string `json:"data,omitempty" yaml:"data,omitempty"`
}

// ManifestSort is the initial sort of a table.
type ManifestSort struct {
	Column    string `json:"column" yaml:"column"`
	Direction string `json:"direction" yaml:"direction"`
}

// ManifestColumn declares a column reading one field of the row.
type ManifestColumn struct {
	ID         string `json:"id" yaml:"id"`
	Header     string `json:"header,omitempty" yaml:"header,omitempty"`
	Field      string `json:"field,omitempty" yaml:"field,omitempty"`
	Type       string `json:"type,omitempty" yaml:"type,omitempty"`
	Sortable   *bool  `json:"sortable,omitempty" yaml:"sortable,omitempty"`
	Filterable *bool  `json:"filterable,omitempty" yaml:"filterable,omitempty"`
	Hidden     bool   `json:"hidden,omitempty" yaml:"hidden,omitempty"`
}

// ReadManifest loads a manifest file from disk.
func ReadManifest(path string) (*ManifestDocument, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("datatable: open manifest %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeManifest(f)
	if err != nil {
		return nil, fmt.Errorf("datatable: decode manifest %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeManifest reads and validates a manifest from any reader.
func DecodeManifest(r io.Reader) (*ManifestDocument, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc ManifestDocument
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("datatable: manifest is empty")
		}
		return nil, fmt.Errorf("datatable: parse manifest: %w", err)
	}
	doc.applyDefaults()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks required fields and builds every schema once.
func (doc *ManifestDocument) Validate() error {
	if doc.Version != ManifestVersion {
		return fmt.Errorf("datatable: unsupported manifest version %q", doc.Version)
	}
	seen := make(map[string]struct{}, len(doc.Tables))
	for idx, table := range doc.Tables {
		if table.Name == "" {
			return fmt.Errorf("datatable: manifest table at index %d is missing name", idx)
		}
		if _, exists := seen[table.Name]; exists {
			return fmt.Errorf("datatable: manifest duplicates table %s", table.Name)
		}
		seen[table.Name] = struct{}{}
		if table.RowID == "" {
			return fmt.Errorf("datatable: manifest table %s missing row_id", table.Name)
		}
		if len(table.Columns) == 0 {
			return fmt.Errorf("datatable: manifest table %s declares no columns", table.Name)
		}
		schema, err := table.Schema()
		if err != nil {
			return fmt.Errorf("datatable: manifest table %s: %w", table.Name, err)
		}
		if _, err := NewTable(schema, table.Options()); err != nil {
			return fmt.Errorf("datatable: manifest table %s: %w", table.Name, err)
		}
	}
	return nil
}

// Table returns the manifest entry named name.
func (doc *ManifestDocument) Table(name string) (TableManifest, bool) {
	for _, table := range doc.Tables {
		if table.Name == name {
			return table, true
		}
	}
	return TableManifest{}, false
}

// ReadRows loads the JSON row array tm.Data points at. Relative paths resolve against
// the directory of the manifest file.
func (doc *ManifestDocument) ReadRows(tm TableManifest) ([]MapRow, error) {
	if tm.Data == "" {
		return nil, nil
	}
	path := tm.Data
	if !filepath.IsAbs(path) && doc.Source != "" {
		path = filepath.Join(filepath.Dir(doc.Source), path)
	}
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("datatable: read rows of %s: %w", tm.Name, err)
	}
	var rows []MapRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("datatable: decode rows of %s: %w", tm.Name, err)
	}
	return rows, nil
}

func (doc *ManifestDocument) applyDefaults() {
	if doc.Version == "" {
		doc.Version = ManifestVersion
	}
	for i := range doc.Tables {
		table := &doc.Tables[i]
		for j := range table.Columns {
			col := &table.Columns[j]
			if col.Field == "" {
				col.Field = col.ID
			}
		}
	}
}

// Schema builds the MapRow schema the manifest describes.
func (tm TableManifest) Schema() (*Schema[MapRow], error) {
	columns := make([]Column[MapRow], 0, len(tm.Columns)+2)
	if tm.Select {
		columns = append(columns, SelectColumn[MapRow]())
	}
	for _, mc := range tm.Columns {
		field := mc.Field
		if field == "" {
			field = mc.ID
		}
		accessor, err := typedAccessor(field, mc.Type)
		if err != nil {
			return nil, columnError(mc.ID, err)
		}
		col := Field(mc.ID, mc.Header, accessor)
		if mc.Sortable != nil {
			col.Sortable = *mc.Sortable
		}
		if mc.Filterable != nil {
			col.Filterable = *mc.Filterable
		}
		col.Hidden = mc.Hidden
		columns = append(columns, col)
	}
	if tm.Actions {
		columns = append(columns, ActionsColumn[MapRow]())
	}
	return NewSchema(mapAccessor(MapField(tm.RowID)).asString(), columns...)
}

// Options returns table options for the manifest entry.
func (tm TableManifest) Options() TableOptions {
	opts := TableOptions{
		Name:     tm.Name,
		Title:    tm.Title,
		PageSize: tm.PageSize,
	}
	if tm.Sort != nil {
		opts.Sort = SortSpec{ColumnID: tm.Sort.Column, Direction: SortDirection(strings.ToLower(tm.Sort.Direction))}
	}
	return opts
}

type mapAccessor func(MapRow) any

func (a mapAccessor) asString() func(MapRow) string {
	return func(row MapRow) string {
		return Stringify(a(row))
	}
}

func typedAccessor(field, kind string) (func(MapRow) any, error) {
	read := MapField(field)
	switch strings.ToLower(kind) {
	case "", "string":
		return read, nil
	case "number":
		return func(row MapRow) any {
			return parseNumber(read(row))
		}, nil
	case "date", "time":
		return func(row MapRow) any {
			return parseTime(read(row))
		}, nil
	default:
		return nil, fmt.Errorf("unsupported column type %q", kind)
	}
}

func parseNumber(v any) any {
	switch val := v.(type) {
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return f
		}
		return val
	case interface{ Float64() (float64, error) }:
		if f, err := val.Float64(); err == nil {
			return f
		}
	}
	return v
}

func parseTime(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	for _, layout := range []string{time.RFC3339, time.DateTime, time.DateOnly} {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t
		}
	}
	return v
}
