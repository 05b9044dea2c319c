package datatable

import (
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
)

// WriteParquet writes the string grid as a Snappy-compressed Parquet file with one
// utf8 column per header.
func WriteParquet(w io.Writer, headers []string, records [][]string) error {
	fields := make([]arrow.Field, len(headers))
	for i, header := range headers {
		fields[i] = arrow.Field{Name: header, Type: arrow.BinaryTypes.String, Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)
	pool := memory.NewGoAllocator()

	columns := make([]arrow.Column, len(fields))
	for i, field := range fields {
		builder := array.NewStringBuilder(pool)
		builder.Reserve(len(records))
		for _, record := range records {
			if i < len(record) {
				builder.Append(record[i])
			} else {
				builder.AppendNull()
			}
		}
		arr := builder.NewArray()
		builder.Release()
		chunked := arrow.NewChunked(field.Type, []arrow.Array{arr})
		arr.Release()
		columns[i] = *arrow.NewColumn(field, chunked)
		chunked.Release()
	}
	table := array.NewTable(schema, columns, int64(len(records)))
	defer table.Release()
	for i := range columns {
		columns[i].Release()
	}

	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())
	writer, err := pqarrow.NewFileWriter(schema, w, props, arrowProps)
	if err != nil {
		return fmt.Errorf("datatable: create parquet writer: %w", err)
	}
	if err := writer.WriteTable(table, max(table.NumRows(), 1)); err != nil {
		writer.Close()
		return fmt.Errorf("datatable: write parquet table: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("datatable: close parquet writer: %w", err)
	}
	return nil
}
