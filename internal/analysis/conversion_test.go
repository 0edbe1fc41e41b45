package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funnelboard/domain/core"
	"funnelboard/domain/funnel"
)

func TestSummarize(t *testing.T) {
	spec := funnel.Spec{
		Stages: []funnel.Stage{{Label: "A", Value: 1000}, {Label: "B", Value: 800}, {Label: "C", Value: 400}},
		Total:  1000,
	}
	s, err := Summarize("signup", spec)
	require.NoError(t, err)

	assert.Equal(t, core.FunnelName("signup"), s.Name)
	require.Len(t, s.Stages, 3)

	assert.Equal(t, []float64{100, 80, 40}, []float64{s.Stages[0].CompletionPct, s.Stages[1].CompletionPct, s.Stages[2].CompletionPct})
	assert.Equal(t, []float64{100, 80, 50}, []float64{s.Stages[0].StepConversionPct, s.Stages[1].StepConversionPct, s.Stages[2].StepConversionPct})
	assert.Equal(t, []float64{0, 200, 400}, []float64{s.Stages[0].DropOff, s.Stages[1].DropOff, s.Stages[2].DropOff})
	assert.Equal(t, []float64{0, 20, 50}, []float64{s.Stages[0].DropOffPct, s.Stages[1].DropOffPct, s.Stages[2].DropOffPct})

	assert.Equal(t, 40.0, s.OverallConversionPct)
	assert.Equal(t, "C", s.BiggestDropStage)
	assert.Equal(t, 50.0, s.BiggestDropPct)
	assert.Equal(t, 65.0, s.MeanStepRetentionPct)
	assert.Equal(t, 65.0, s.MedianStepRetentionPct)
	assert.Equal(t, 15.0, s.StepRetentionStdDev)
}

func TestSummarizeSingleStage(t *testing.T) {
	s, err := Summarize("one", funnel.NewSpec(funnel.Stage{Label: "A", Value: 50}))
	require.NoError(t, err)
	assert.Equal(t, 100.0, s.Stages[0].CompletionPct)
	assert.Equal(t, 100.0, s.OverallConversionPct)
	assert.Empty(t, s.BiggestDropStage)
	assert.Zero(t, s.MeanStepRetentionPct)
}

func TestSummarizeZeroes(t *testing.T) {
	spec := funnel.Spec{Stages: []funnel.Stage{{Label: "A", Value: 0}, {Label: "B", Value: 0}}, Total: 0}
	s, err := Summarize("empty-dataset", spec)
	require.NoError(t, err)
	for _, st := range s.Stages {
		assert.Zero(t, st.CompletionPct)
		assert.Zero(t, st.StepConversionPct)
	}
	assert.Zero(t, s.OverallConversionPct)
}

func TestSummarizeFlare(t *testing.T) {
	spec := funnel.Spec{Stages: []funnel.Stage{{Label: "A", Value: 100}, {Label: "B", Value: 50}, {Label: "C", Value: 75}}, Total: 100}
	s, err := Summarize("flare", spec)
	require.NoError(t, err)
	assert.Equal(t, -25.0, s.Stages[2].DropOff)
	assert.Equal(t, -50.0, s.Stages[2].DropOffPct)
	assert.Equal(t, "B", s.BiggestDropStage)
}

func TestSummarizeRejectsEmpty(t *testing.T) {
	_, err := Summarize("none", funnel.Spec{})
	assert.ErrorIs(t, err, core.ErrEmptyFunnel)
}
