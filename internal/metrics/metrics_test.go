package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMustRegister_Gathers(t *testing.T) {
	reg := prometheus.NewRegistry()
	MustRegister(reg)

	SignInsTotal.WithLabelValues("ok").Inc()
	assert.GreaterOrEqual(t, testutil.ToFloat64(SignInsTotal.WithLabelValues("ok")), 1.0)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["luna_signins_total"])
}

func TestResult(t *testing.T) {
	assert.Equal(t, "ok", Result(nil))
	assert.Equal(t, "error", Result(errors.New("x")))
}
