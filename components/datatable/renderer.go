package datatable

import (
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"

	template "github.com/goliatone/go-template"
)

// PageTemplate is the template rendered for a table page.
const PageTemplate = "table"

// Renderer describes the template renderer contract used for HTML pages.
type Renderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
}

//go:embed templates/*.html
var embeddedTemplates embed.FS

// NewTemplateRenderer creates a go-template renderer backed by the embedded templates.
func NewTemplateRenderer() (Renderer, error) {
	templates, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return nil, fmt.Errorf("datatable: templates: %w", err)
	}
	return template.NewRenderer(
		template.WithFS(templates),
		template.WithExtension(".html"),
	)
}

// RenderPage writes the HTML page of a snapshot.
func RenderPage(renderer Renderer, snap Snapshot, basePath string, out io.Writer) error {
	if renderer == nil {
		return fmt.Errorf("datatable: renderer is required")
	}
	data, err := PageData(snap, basePath)
	if err != nil {
		return err
	}
	if _, err := renderer.Render(PageTemplate, data, out); err != nil {
		return fmt.Errorf("datatable: render %s: %w", snap.Table, err)
	}
	return nil
}

// PageData flattens a snapshot into template data. Columns are the visible ones and
// every row carries its cells in column order.
func PageData(snap Snapshot, basePath string) (map[string]any, error) {
	raw, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("datatable: encode snapshot: %w", err)
	}
	data := map[string]any{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("datatable: normalize snapshot: %w", err)
	}

	columns := make([]map[string]any, 0, len(snap.Columns))
	for _, col := range snap.Columns {
		if col.Hidden {
			continue
		}
		columns = append(columns, map[string]any{
			"id":       col.ID,
			"header":   col.Header,
			"special":  col.Special,
			"sortable": col.Sortable,
			"sort":     string(col.Sort),
		})
	}
	rows := make([]map[string]any, len(snap.Rows))
	for i, row := range snap.Rows {
		cells := make([]map[string]any, len(columns))
		for j, col := range columns {
			id := col["id"].(string)
			cells[j] = map[string]any{"id": id, "value": row.Cells[id]}
		}
		rows[i] = map[string]any{"id": row.ID, "selected": row.Selected, "cells": cells}
	}
	data["columns"] = columns
	data["rows"] = rows
	data["base_path"] = basePath
	data["page_number"] = snap.Page.PageIndex + 1
	return data, nil
}
