package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	// Register should be safe to call multiple times
	Register()
	Register()

	assert.NotPanics(t, func() {
		ObserveHTTP("GET /items", 200, 15*time.Millisecond)
	})

	before := testutil.ToFloat64(bookingTransitions.WithLabelValues("APPROVED"))
	IncBookingTransition("APPROVED")
	assert.Equal(t, before+1, testutil.ToFloat64(bookingTransitions.WithLabelValues("APPROVED")))

	assert.Equal(t, float64(1), testutil.ToFloat64(httpRequests.WithLabelValues("GET /items", "200")))
}
