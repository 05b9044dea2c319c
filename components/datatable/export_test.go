package datatable

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusRow struct {
	ID     int
	Name   string
	Status string
}

func statusValue(row statusRow, header string) any {
	switch header {
	case "id":
		return row.ID
	case "name":
		return row.Name
	case "status":
		return row.Status
	}
	return nil
}

func TestToCSVDocumentedScenario(t *testing.T) {
	t.Parallel()
	rows := []statusRow{{1, "Alice", "active"}, {2, "Bob", "inactive"}}
	got := ToCSV(rows, []string{"id", "name", "status"}, statusValue)
	assert.Equal(t, "id,name,status\n1,Alice,active\n2,Bob,inactive", got)
}

func TestToCSVHeaderOnlyForEmptyRows(t *testing.T) {
	t.Parallel()
	got := ToCSV(nil, []string{"id", "name", "status"}, statusValue)
	assert.Equal(t, "id,name,status", got)
}

func TestToCSVQuotesCommasAndQuotes(t *testing.T) {
	t.Parallel()
	rows := []statusRow{{7, `Smith, "Jo"`, "a\nb"}}
	got := ToCSV(rows, []string{"id", "name", "status"}, statusValue)
	assert.Equal(t, "id,name,status\n7,\"Smith, \"\"Jo\"\"\",\"a\nb\"", got)
	assert.False(t, strings.HasSuffix(got, "\n"))
}

func TestToCSVMissingValueIsEmpty(t *testing.T) {
	t.Parallel()
	got := MapRowsToCSV([]MapRow{{"id": 1}}, []string{"id", "name"})
	assert.Equal(t, "id,name\n1,", got)
}

func TestToCSVRoundTripsThroughEncodingCSV(t *testing.T) {
	t.Parallel()
	headers := []string{"id", "note"}
	records := [][]string{
		{"1", "plain"},
		{"2", "comma, inside"},
		{"3", `quote " inside`},
		{"4", `"leading quote`},
		{"5", ""},
	}
	out := RecordsToCSV(headers, records)

	parsed, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, parsed, len(records)+1)
	assert.Equal(t, headers, parsed[0])
	assert.Equal(t, records, parsed[1:])
}

func TestSchemaExportSkipsSpecialAndHiddenColumns(t *testing.T) {
	t.Parallel()
	schema := memberSchema(t)
	rows := sampleMembers()
	got := schema.ExportCSV(rows, map[string]bool{"email": true, "score": true})
	assert.Equal(t, "id,name,status\n1,Alice,active\n2,Bob,inactive", got)
}

func TestExportFileName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "users-export.csv", ExportFileName("Users Export", FormatCSV))
	assert.Equal(t, "campaign-report.parquet", ExportFileName("campaign report", FormatParquet))
	assert.Equal(t, "export.csv", ExportFileName("  ", ""))
}

func TestWriteParquetProducesParquetFile(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	err := WriteParquet(&buf, []string{"id", "name"}, [][]string{{"1", "Alice"}, {"2", "Bob"}})
	require.NoError(t, err)
	data := buf.Bytes()
	require.Greater(t, len(data), 8)
	assert.Equal(t, "PAR1", string(data[:4]))
	assert.Equal(t, "PAR1", string(data[len(data)-4:]))
}

func TestWriteParquetWithoutRows(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, WriteParquet(&buf, []string{"id"}, nil))
	assert.Equal(t, "PAR1", string(buf.Bytes()[:4]))
}
