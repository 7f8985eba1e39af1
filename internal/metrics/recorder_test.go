package metrics

import (
	"testing"
	"time"

	"seminar-results-service/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	r.ResultsServed(domain.KindRound, "live", 20*time.Millisecond)
	r.ResultsServed(domain.KindRound, "live", 10*time.Millisecond)
	r.ResultsServed(domain.KindPeriod, "frozen", time.Millisecond)
	r.FreezeAttempt(domain.KindRound, "frozen")
	r.FreezeAttempt(domain.KindRound, "already_frozen")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.served.WithLabelValues("round", "live")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.served.WithLabelValues("period", "frozen")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.freezes.WithLabelValues("round", "already_frozen")))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 3)
}
