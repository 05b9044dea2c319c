package datatable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeViewRequest(t *testing.T) {
	t.Parallel()
	validator := NewRequestValidator()

	req, err := validator.DecodeViewRequest([]byte(`{"filter":"ali","sort":{"column_id":"name","direction":"desc"},"page_size":20}`))
	require.NoError(t, err)
	require.NotNil(t, req.Filter)
	assert.Equal(t, "ali", *req.Filter)
	require.NotNil(t, req.Sort)
	assert.Equal(t, SortDesc, req.Sort.Direction)
	require.NotNil(t, req.PageSize)
	assert.Equal(t, 20, *req.PageSize)
	assert.Nil(t, req.PageIndex)

	req, err = validator.DecodeViewRequest(nil)
	require.NoError(t, err)
	assert.Nil(t, req.Filter)
}

func TestDecodeViewRequestRejectsInvalidPayloads(t *testing.T) {
	t.Parallel()
	validator := NewRequestValidator()
	for name, body := range map[string]string{
		"page size":   `{"page_size":15}`,
		"negative":    `{"page_index":-1}`,
		"fraction":    `{"page_index":1.5}`,
		"direction":   `{"sort":{"column_id":"name","direction":"up"}}`,
		"unknown key": `{"query":"x"}`,
		"malformed":   `{"filter":`,
	} {
		_, err := validator.DecodeViewRequest([]byte(body))
		assert.ErrorIs(t, err, ErrInvalidRequest, name)
	}
}

func TestDecodeExportRequest(t *testing.T) {
	t.Parallel()
	validator := NewRequestValidator()

	req, err := validator.DecodeExportRequest([]byte(`{"scope":"selected","format":"parquet","title":"Users"}`))
	require.NoError(t, err)
	assert.Equal(t, ExportRequest{Scope: ScopeSelected, Format: FormatParquet, Title: "Users"}, req)

	_, err = validator.DecodeExportRequest([]byte(`{"format":"xlsx"}`))
	assert.ErrorIs(t, err, ErrInvalidRequest)

	req, err = validator.DecodeExportRequest([]byte("  "))
	require.NoError(t, err)
	assert.Equal(t, ExportRequest{}, req)
}
