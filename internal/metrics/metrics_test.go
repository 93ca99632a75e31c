package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NotPanics(t, func() { Register(reg) })

	// A second registration of the same collectors must fail loudly.
	assert.Panics(t, func() { Register(reg) })
}

func TestHabitCompletionsCounter(t *testing.T) {
	before := testutil.ToFloat64(HabitCompletions.WithLabelValues("complete"))
	HabitCompletions.WithLabelValues("complete").Inc()

	assert.Equal(t, before+1, testutil.ToFloat64(HabitCompletions.WithLabelValues("complete")))
}
