package ui

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"funnelboard/domain/funnel"
	"funnelboard/internal/analysis"
)

// handleBarChart renders the companion horizontal bar chart as a standalone page
func (a *App) handleBarChart(w http.ResponseWriter, r *http.Request) {
	name, err := funnelParam(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	summary, err := a.funnels.Summary(r.Context(), name)
	if err != nil {
		a.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := writeBarChart(w, summary, a.config.Palette); err != nil {
		a.logger.Error("[ui] bar chart %s: %v", name, err)
	}
}

// writeBarChart draws one bar per stage, coloured like the pyramid bands.
// Stages are added bottom-up so the first stage sits at the top once the axes
// are swapped.
func writeBarChart(w io.Writer, summary analysis.Summary, palette []string) error {
	n := len(summary.Stages)
	labels := make([]string, n)
	data := make([]opts.BarData, n)
	for i, st := range summary.Stages {
		j := n - 1 - i
		labels[j] = st.Label
		data[j] = opts.BarData{
			Name:      st.Label,
			Value:     st.Value,
			ItemStyle: &opts.ItemStyle{Color: funnel.ColorAt(palette, i)},
		}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: fmt.Sprintf("%s funnel", summary.Name),
			Width:     "900px",
			Height:    "500px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    summary.Name.String(),
			Subtitle: fmt.Sprintf("Overall conversion %.1f%%", summary.OverallConversionPct),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Number of Users"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Stage"}),
	)
	bar.SetXAxis(labels).
		AddSeries("Users", data).
		XYReversal()

	return bar.Render(w)
}
