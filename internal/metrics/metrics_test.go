package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.IncrementCreated()
	m.IncrementCreated()
	m.IncrementDeleted()
	m.IncrementStatusChange("approved")
	m.IncrementStatusChange("approved")
	m.IncrementStatusChange("rejected")
	m.ObserveNearby(time.Now(), 3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.TournamentsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TournamentsDeleted))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.StatusChanges.WithLabelValues("approved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StatusChanges.WithLabelValues("rejected")))

	count, err := testutil.GatherAndCount(reg, "tournament_nearby_query_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNewOnSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
