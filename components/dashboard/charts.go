package dashboard

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/abdurrahmanshkh/admybrand-dashboard/components/datatable"
)

const defaultChartHeight = "360px"

// ChartRequest describes one chart over aggregated table buckets.
type ChartRequest struct {
	Key      string    `json:"key"`
	Kind     ChartKind `json:"kind"`
	Title    string    `json:"title"`
	Subtitle string    `json:"subtitle,omitempty"`
	Metric   string    `json:"metric,omitempty"`
	Theme    string    `json:"theme,omitempty"`
}

// ChartRenderer turns buckets into go-echarts HTML.
type ChartRenderer struct {
	cache      RenderCache
	theme      string
	assetsHost string
}

// ChartOption customizes a ChartRenderer.
type ChartOption func(*ChartRenderer)

// WithChartCache injects a render cache. Nil disables caching.
func WithChartCache(cache RenderCache) ChartOption {
	return func(r *ChartRenderer) {
		r.cache = cache
	}
}

// WithChartTheme sets the default theme (Westeros when unset).
func WithChartTheme(theme string) ChartOption {
	return func(r *ChartRenderer) {
		r.theme = theme
	}
}

// WithChartAssetsHost rewrites the host the ECharts script loads from.
func WithChartAssetsHost(host string) ChartOption {
	return func(r *ChartRenderer) {
		r.assetsHost = host
	}
}

// NewChartRenderer builds a renderer with a five minute cache.
func NewChartRenderer(options ...ChartOption) *ChartRenderer {
	r := &ChartRenderer{
		cache: NewChartCache(5 * time.Minute),
		theme: types.ThemeWesteros,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Render draws the buckets. Bars and lines plot the metric sum per bucket, or the row
// count when no metric is set. Pies use the same values as slices.
func (r *ChartRenderer) Render(req ChartRequest, buckets []datatable.Bucket) (string, error) {
	if len(buckets) == 0 {
		return "", ErrNoChartData
	}
	kind := ChartKind(strings.ToLower(string(req.Kind)))
	if kind == "" {
		kind = ChartBar
	}
	if kind != ChartBar && kind != ChartLine && kind != ChartPie {
		return "", fmt.Errorf("%w: %s", ErrChartKind, req.Kind)
	}
	req.Kind = kind
	if req.Theme == "" {
		req.Theme = r.theme
	}
	render := func() (string, error) {
		return r.render(req, buckets)
	}
	if r.cache == nil {
		return render()
	}
	key := fmt.Sprintf("%s:%s:%s", req.Key, req.Kind, contentHash(struct {
		Request ChartRequest
		Buckets []datatable.Bucket
	}{req, buckets}))
	return r.cache.GetOrRender(key, render)
}

func (r *ChartRenderer) render(req ChartRequest, buckets []datatable.Bucket) (string, error) {
	labels := make([]string, len(buckets))
	values := make([]float64, len(buckets))
	for i, bucket := range buckets {
		labels[i] = bucket.Label
		if labels[i] == "" {
			labels[i] = "(blank)"
		}
		values[i] = bucketValue(bucket, req.Metric)
	}
	name := seriesName(req.Metric)

	switch req.Kind {
	case ChartLine:
		line := charts.NewLine()
		line.SetGlobalOptions(r.globalOptions(req)...)
		line.SetXAxis(labels)
		data := make([]opts.LineData, len(values))
		for i, v := range values {
			data[i] = opts.LineData{Name: labels[i], Value: v}
		}
		line.AddSeries(name, data)
		line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
		return renderChart(line)
	case ChartPie:
		pie := charts.NewPie()
		pie.SetGlobalOptions(r.globalOptions(req)...)
		data := make([]opts.PieData, len(values))
		for i, v := range values {
			data[i] = opts.PieData{Name: labels[i], Value: v}
		}
		pie.AddSeries(name, data)
		return renderChart(pie)
	default:
		bar := charts.NewBar()
		bar.SetGlobalOptions(r.globalOptions(req)...)
		bar.SetXAxis(labels)
		data := make([]opts.BarData, len(values))
		for i, v := range values {
			data[i] = opts.BarData{Name: labels[i], Value: v}
		}
		bar.AddSeries(name, data)
		return renderChart(bar)
	}
}

func (r *ChartRenderer) globalOptions(req ChartRequest) []charts.GlobalOpts {
	init := opts.Initialization{
		Theme:  req.Theme,
		Width:  "100%",
		Height: defaultChartHeight,
	}
	if r.assetsHost != "" {
		init.AssetsHost = r.assetsHost
	}
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: req.Title, Subtitle: req.Subtitle}),
		charts.WithInitializationOpts(init),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", fmt.Errorf("dashboard: render chart: %w", err)
	}
	return buf.String(), nil
}

func bucketValue(bucket datatable.Bucket, metric string) float64 {
	if metric == "" {
		return float64(bucket.Count)
	}
	return bucket.Sum
}

func seriesName(metric string) string {
	if metric == "" {
		return "Rows"
	}
	return metric
}
