package experiment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepServersAxisProducesOneRowPerScheduler(t *testing.T) {
	cfg := SweepConfig{
		Axis:       AxisServers,
		Trials:     2,
		Schedulers: []string{"EQUI", "R2"},
		NumEvents:  30,
		Seed:       5,
	}
	rows, summary, err := Sweep(context.Background(), cfg)
	require.NoError(t, err)

	expectedPoints := len(points(AxisServers))
	assert.Len(t, rows, expectedPoints*2)
	assert.Equal(t, "servers", summary.Axis)
	assert.Equal(t, 2, summary.Trials)

	for _, r := range rows {
		assert.Contains(t, []string{"EQUI", "R2"}, r.Scheduler)
		assert.Greater(t, r.AverageProcessingTime, 0.0)
	}
}

func TestSweepPartialServersAxisHasTwoPoints(t *testing.T) {
	cfg := SweepConfig{
		Axis:       AxisPartialServers,
		Trials:     1,
		Schedulers: []string{"EQUI"},
		NumEvents:  20,
		Seed:       1,
	}
	rows, _, err := Sweep(context.Background(), cfg)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.ElementsMatch(t, []string{"false", "true"}, []string{rows[0].Value, rows[1].Value})
}

func TestSweepRejectsUnknownScheduler(t *testing.T) {
	cfg := SweepConfig{
		Axis:       AxisReallocPeriod,
		Trials:     1,
		Schedulers: []string{"R99"},
		NumEvents:  10,
	}
	_, _, err := Sweep(context.Background(), cfg)
	require.Error(t, err)
}

func TestSweepRejectsInvalidTrials(t *testing.T) {
	cfg := SweepConfig{Axis: AxisServers, Trials: 0, NumEvents: 10}
	_, _, err := Sweep(context.Background(), cfg)
	require.Error(t, err)
}

func TestAxisFromOptionCoversAllFive(t *testing.T) {
	for opt := 1; opt <= 5; opt++ {
		_, ok := AxisFromOption(opt)
		assert.True(t, ok)
	}
	_, ok := AxisFromOption(6)
	assert.False(t, ok)
}
