package datatable

import (
	"strings"

	"github.com/ettle/strcase"
)

// ToCSV renders rows as comma separated text. The first line is the header list,
// lines are joined with "\n" and there is no trailing newline. Fields containing a
// comma, quote or line break are quoted with inner quotes doubled.
func ToCSV[R any](rows []R, headers []string, value func(row R, header string) any) string {
	var b strings.Builder
	writeCSVLine(&b, headers)
	fields := make([]string, len(headers))
	for _, row := range rows {
		for i, header := range headers {
			fields[i] = Stringify(value(row, header))
		}
		b.WriteByte('\n')
		writeCSVLine(&b, fields)
	}
	return b.String()
}

// RecordsToCSV renders a pre-rendered string grid with the same rules as ToCSV.
func RecordsToCSV(headers []string, records [][]string) string {
	var b strings.Builder
	writeCSVLine(&b, headers)
	for _, record := range records {
		b.WriteByte('\n')
		writeCSVLine(&b, record)
	}
	return b.String()
}

// MapRowsToCSV exports plain records keyed by header.
func MapRowsToCSV(rows []MapRow, headers []string) string {
	return ToCSV(rows, headers, func(row MapRow, header string) any {
		return row[header]
	})
}

func writeCSVLine(b *strings.Builder, fields []string) {
	for i, field := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(escapeCSV(field))
	}
}

func escapeCSV(field string) string {
	if !strings.ContainsAny(field, ",\"\r\n") {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// ExportRecords projects rows onto the visible data columns as a string grid.
// Headers are column ids.
func (s *Schema[R]) ExportRecords(rows []R, hidden map[string]bool) ([]string, [][]string) {
	columns := s.DataColumns(hidden)
	headers := make([]string, len(columns))
	for i, col := range columns {
		headers[i] = col.ID
	}
	records := make([][]string, len(rows))
	for r, row := range rows {
		record := make([]string, len(columns))
		for i, col := range columns {
			record[i] = col.Render(row)
		}
		records[r] = record
	}
	return headers, records
}

// ExportCSV renders rows through the visible data columns.
func (s *Schema[R]) ExportCSV(rows []R, hidden map[string]bool) string {
	return RecordsToCSV(s.ExportRecords(rows, hidden))
}

// ExportFileName turns a title into a download name such as "users-export.csv".
func ExportFileName(title string, format ExportFormat) string {
	slug := strcase.ToKebab(strings.TrimSpace(title))
	if slug == "" {
		slug = "export"
	}
	if format == "" {
		format = FormatCSV
	}
	return slug + "." + string(format)
}

func contentType(format ExportFormat) string {
	if format == FormatParquet {
		return "application/vnd.apache.parquet"
	}
	return "text/csv; charset=utf-8"
}
