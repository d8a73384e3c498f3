package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveMinted(0, 5)
		m.ObserveReserved("payment")
		m.ObserveFulfilled("direct")
		m.ObserveRejection("mint_batch", "capacity_exceeded")
		m.SetOutstanding(0, 2)
		m.ObserveDelivery("log", nil)
	})
}

func TestMetricsRecord(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveMinted(3, 5)
	m.ObserveMinted(3, 5)
	m.SetOutstanding(3, 4)
	m.ObserveRejection("buy_batch", "capacity_exceeded")
	m.ObserveDelivery("redis", errors.New("down"))

	assert.Equal(t, 10.0, testutil.ToFloat64(m.CardsMinted.WithLabelValues("3")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.Outstanding.WithLabelValues("3")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rejections.WithLabelValues("buy_batch", "capacity_exceeded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Notifications.WithLabelValues("redis", "error")))
}
