package analysis

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"

	"funnelboard/domain/core"
	"funnelboard/domain/funnel"
)

// StageMetrics describes how one stage converts relative to the reference
// total and to the stage before it
type StageMetrics struct {
	Label             string  `json:"label"`
	Value             float64 `json:"value"`
	CompletionPct     float64 `json:"completion_pct"`
	StepConversionPct float64 `json:"step_conversion_pct"`
	DropOff           float64 `json:"drop_off"`
	DropOffPct        float64 `json:"drop_off_pct"`
}

// Summary is the conversion report for a funnel
type Summary struct {
	Name                   core.FunnelName `json:"name"`
	Total                  float64         `json:"total"`
	Stages                 []StageMetrics  `json:"stages"`
	OverallConversionPct   float64         `json:"overall_conversion_pct"`
	BiggestDropStage       string          `json:"biggest_drop_stage,omitempty"`
	BiggestDropPct         float64         `json:"biggest_drop_pct"`
	MeanStepRetentionPct   float64         `json:"mean_step_retention_pct"`
	MedianStepRetentionPct float64         `json:"median_step_retention_pct"`
	StepRetentionStdDev    float64         `json:"step_retention_std_dev"`
}

// Summarize computes per-stage and overall conversion figures. Percentages
// use the same zero-total guard and one-decimal rounding as the funnel labels.
func Summarize(name core.FunnelName, spec funnel.Spec) (Summary, error) {
	if err := spec.Validate(); err != nil {
		return Summary{}, err
	}

	n := len(spec.Stages)
	summary := Summary{
		Name:   name,
		Total:  spec.Total,
		Stages: make([]StageMetrics, n),
	}

	retention := make([]float64, 0, n-1)
	dropPcts := make([]float64, 0, n-1)
	for i, st := range spec.Stages {
		m := StageMetrics{
			Label:         st.Label,
			Value:         st.Value,
			CompletionPct: funnel.Percentage(st.Value, spec.Total),
		}
		if i == 0 {
			m.StepConversionPct = funnel.Percentage(st.Value, st.Value)
		} else {
			prev := spec.Stages[i-1].Value
			m.StepConversionPct = funnel.Percentage(st.Value, prev)
			m.DropOff = prev - st.Value
			if prev > 0 {
				m.DropOffPct = round1(100 - 100*st.Value/prev)
				retention = append(retention, 100*st.Value/prev)
			}
			dropPcts = append(dropPcts, m.DropOffPct)
		}
		summary.Stages[i] = m
	}

	summary.OverallConversionPct = funnel.Percentage(spec.Stages[n-1].Value, spec.Stages[0].Value)

	if len(dropPcts) > 0 {
		idx := floats.MaxIdx(dropPcts)
		summary.BiggestDropStage = spec.Stages[idx+1].Label
		summary.BiggestDropPct = dropPcts[idx]
	}

	if len(retention) > 0 {
		mean, _ := stats.Mean(retention)
		median, _ := stats.Median(retention)
		stdDev, _ := stats.StandardDeviation(retention)
		summary.MeanStepRetentionPct = round1(mean)
		summary.MedianStepRetentionPct = round1(median)
		summary.StepRetentionStdDev = round1(stdDev)
	}

	return summary, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
