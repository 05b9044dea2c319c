package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/abdurrahmanshkh/admybrand-dashboard/components/datatable"
)

type exportCmd struct {
	tableFlags `embed:""`

	Format string `default:"csv" enum:"csv,parquet" help:"Output format."`
	Out    string `help:"Output file, '-' for stdout. Defaults to the table's export name."`
}

func (cmd *exportCmd) Run(ctx context.Context, stdout io.Writer) error {
	table, _, err := cmd.load(ctx)
	if err != nil {
		return err
	}
	file, err := table.Export(ctx, datatable.ExportRequest{
		Scope:  datatable.ScopeFiltered,
		Format: datatable.ExportFormat(cmd.Format),
	})
	if err != nil {
		return err
	}
	if cmd.Out == "-" {
		_, err := stdout.Write(file.Data)
		return err
	}
	out := cmd.Out
	if out == "" {
		out = file.Name
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("tablectl: mkdir %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(out, file.Data, 0o644); err != nil { //nolint:gosec
		return fmt.Errorf("tablectl: write export: %w", err)
	}
	fmt.Fprintf(stdout, "✓ Exported %d rows to %s\n", file.Rows, out)
	return nil
}
