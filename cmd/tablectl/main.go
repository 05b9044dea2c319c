package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/abdurrahmanshkh/admybrand-dashboard/components/datatable"
	"github.com/abdurrahmanshkh/admybrand-dashboard/pkg/config"
	"github.com/abdurrahmanshkh/admybrand-dashboard/pkg/logging"
)

type cli struct {
	Log config.Log `embed:"" prefix:"log-"`

	Scaffold scaffoldCmd `cmd:"" help:"Add a table declaration to a manifest."`
	Export   exportCmd   `cmd:"" help:"Export a manifest table to CSV or Parquet."`
	Page     pageCmd     `cmd:"" help:"Print one page of a manifest table."`
	Browse   browseCmd   `cmd:"" help:"Browse a manifest table interactively."`
}

func main() {
	_ = config.LoadEnv()
	var root cli
	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx := kong.Parse(&root,
		kong.Name("tablectl"),
		kong.Description("Manifest table utility: scaffold declarations, export and inspect rows."),
		kong.UsageOnError(),
		kong.BindTo(runCtx, (*context.Context)(nil)),
		kong.BindTo(io.Writer(os.Stdout), (*io.Writer)(nil)),
	)
	logging.Setup(root.Log.Level, root.Log.Format)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

// tableFlags select a manifest table and the view applied before it is used.
type tableFlags struct {
	Manifest string `required:"" type:"existingfile" help:"Table manifest (YAML or JSON)."`
	Table    string `help:"Table name; optional when the manifest declares one table."`
	Rows     string `type:"path" help:"JSON rows file. Defaults to the table's data entry."`
	Filter   string `help:"Global filter text."`
	Sort     string `help:"Sort as column[:asc|desc]."`
}

func (f tableFlags) load(ctx context.Context) (*datatable.Table[datatable.MapRow], datatable.TableManifest, error) {
	doc, err := datatable.ReadManifest(f.Manifest)
	if err != nil {
		return nil, datatable.TableManifest{}, err
	}
	tm, err := pickTable(doc, f.Table)
	if err != nil {
		return nil, tm, err
	}
	if f.Rows != "" {
		abs, err := filepath.Abs(f.Rows)
		if err != nil {
			return nil, tm, fmt.Errorf("tablectl: resolve rows path: %w", err)
		}
		tm.Data = abs
	}
	if tm.Data == "" {
		return nil, tm, fmt.Errorf("tablectl: table %s has no rows; pass --rows or set data in the manifest", tm.Name)
	}
	rows, err := doc.ReadRows(tm)
	if err != nil {
		return nil, tm, err
	}
	schema, err := tm.Schema()
	if err != nil {
		return nil, tm, err
	}
	table, err := datatable.NewTable(schema, tm.Options())
	if err != nil {
		return nil, tm, err
	}
	table.SetRows(ctx, rows)

	req := datatable.ViewRequest{}
	if f.Filter != "" {
		req.Filter = &f.Filter
	}
	if f.Sort != "" {
		order := parseSort(f.Sort)
		req.Sort = &order
	}
	if err := table.Apply(ctx, req); err != nil {
		return nil, tm, err
	}
	return table, tm, nil
}

func pickTable(doc *datatable.ManifestDocument, name string) (datatable.TableManifest, error) {
	if name == "" {
		if len(doc.Tables) == 1 {
			return doc.Tables[0], nil
		}
		return datatable.TableManifest{}, fmt.Errorf("tablectl: manifest declares %d tables, pick one with --table", len(doc.Tables))
	}
	tm, ok := doc.Table(name)
	if !ok {
		return tm, fmt.Errorf("%w: %s", datatable.ErrUnknownTable, name)
	}
	return tm, nil
}

func parseSort(value string) datatable.SortSpec {
	column, direction, _ := strings.Cut(value, ":")
	order := datatable.SortSpec{ColumnID: strings.TrimSpace(column), Direction: datatable.SortAsc}
	if strings.EqualFold(strings.TrimSpace(direction), string(datatable.SortDesc)) {
		order.Direction = datatable.SortDesc
	}
	return order
}
