package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ettle/strcase"
	"gopkg.in/yaml.v3"

	"github.com/abdurrahmanshkh/admybrand-dashboard/components/datatable"
)

type scaffoldCmd struct {
	Manifest  string   `required:"" type:"path" help:"Path to the table manifest YAML file to update."`
	Name      string   `required:"" help:"Table name (e.g. campaign_reports)."`
	Title     string   `help:"Display title; derived from the name when empty."`
	RowID     string   `name:"row-id" default:"id" help:"Field holding the unique row id."`
	Column    []string `required:"" help:"Column as id[:type], type one of string, number, date (repeatable)."`
	PageSize  int      `default:"10" enum:"10,20,30,40,50" help:"Initial page size."`
	Data      string   `help:"JSON rows file recorded in the manifest."`
	NoSelect  bool     `name:"no-select" help:"Omit the row checkbox column."`
	NoActions bool     `name:"no-actions" help:"Omit the row actions column."`
	Overwrite bool     `help:"Replace an existing table with the same name."`
}

func (cmd *scaffoldCmd) Run(_ context.Context, stdout io.Writer) error {
	manifestPath, err := filepath.Abs(cmd.Manifest)
	if err != nil {
		return fmt.Errorf("tablectl: resolve manifest path: %w", err)
	}
	doc, err := loadOrInitManifest(manifestPath)
	if err != nil {
		return err
	}
	entry, err := cmd.entry()
	if err != nil {
		return err
	}

	replaced := false
	for idx := range doc.Tables {
		if doc.Tables[idx].Name != entry.Name {
			continue
		}
		if !cmd.Overwrite {
			return fmt.Errorf("tablectl: manifest already defines table %s (use --overwrite to replace)", entry.Name)
		}
		doc.Tables[idx] = entry
		replaced = true
		break
	}
	if !replaced {
		doc.Tables = append(doc.Tables, entry)
	}
	sort.Slice(doc.Tables, func(i, j int) bool {
		return doc.Tables[i].Name < doc.Tables[j].Name
	})
	if err := doc.Validate(); err != nil {
		return err
	}
	if err := writeManifest(manifestPath, doc); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "✓ Added %s to %s\n", entry.Name, manifestPath)
	return nil
}

func (cmd *scaffoldCmd) entry() (datatable.TableManifest, error) {
	name := strcase.ToSnake(strings.TrimSpace(cmd.Name))
	if name == "" {
		return datatable.TableManifest{}, errors.New("tablectl: table name is required")
	}
	title := cmd.Title
	if title == "" {
		title = strcase.ToCase(name, strcase.TitleCase, ' ')
	}
	entry := datatable.TableManifest{
		Name:     name,
		Title:    title,
		RowID:    cmd.RowID,
		PageSize: cmd.PageSize,
		Select:   !cmd.NoSelect,
		Actions:  !cmd.NoActions,
		Data:     cmd.Data,
	}
	for _, raw := range cmd.Column {
		id, kind, _ := strings.Cut(raw, ":")
		id = strings.TrimSpace(id)
		if id == "" {
			return entry, fmt.Errorf("tablectl: invalid column %q", raw)
		}
		entry.Columns = append(entry.Columns, datatable.ManifestColumn{
			ID:     id,
			Header: strcase.ToCase(id, strcase.TitleCase, ' '),
			Type:   strings.TrimSpace(kind),
		})
	}
	return entry, nil
}

func loadOrInitManifest(path string) (*datatable.ManifestDocument, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &datatable.ManifestDocument{
				Version: datatable.ManifestVersion,
				Source:  path,
			}, nil
		}
		return nil, fmt.Errorf("tablectl: stat manifest: %w", err)
	}
	return datatable.ReadManifest(path)
}

func writeManifest(path string, doc *datatable.ManifestDocument) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("tablectl: mkdir %s: %w", filepath.Dir(path), err)
	}
	file, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("tablectl: create manifest %s: %w", path, err)
	}
	defer file.Close()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	defer encoder.Close()
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("tablectl: write manifest: %w", err)
	}
	return nil
}
