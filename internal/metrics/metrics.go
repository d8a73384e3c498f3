// Package metrics exposes Prometheus collectors for the issuance ledger.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Shivanand-hulikatti/card-issuance/internal/model"
)

// Metrics holds all collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	CardsMinted      *prometheus.CounterVec
	BatchesReserved  *prometheus.CounterVec
	BatchesFulfilled *prometheus.CounterVec
	Rejections       *prometheus.CounterVec
	Outstanding      *prometheus.GaugeVec
	Notifications    *prometheus.CounterVec
}

// New registers all collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		CardsMinted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "card_ledger_cards_minted_total",
			Help: "Cards minted, by edition",
		}, []string{"edition"}),
		BatchesReserved: f.NewCounterVec(prometheus.CounterOpts{
			Name: "card_ledger_batches_reserved_total",
			Help: "Batch reservations accepted, by payment path",
		}, []string{"path"}),
		BatchesFulfilled: f.NewCounterVec(prometheus.CounterOpts{
			Name: "card_ledger_batches_fulfilled_total",
			Help: "Batches minted, by flow",
		}, []string{"flow"}),
		Rejections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "card_ledger_rejections_total",
			Help: "Rejected operations, by operation and reason",
		}, []string{"operation", "reason"}),
		Outstanding: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "card_ledger_outstanding_reservations",
			Help: "Outstanding reserved batches, by edition",
		}, []string{"edition"}),
		Notifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "card_ledger_notifications_total",
			Help: "Notification deliveries, by sink and result",
		}, []string{"sink", "result"}),
	}
}

func editionLabel(id model.EditionID) string {
	return strconv.FormatUint(uint64(id), 10)
}

func (m *Metrics) ObserveMinted(edition model.EditionID, n int) {
	if m == nil {
		return
	}
	m.CardsMinted.WithLabelValues(editionLabel(edition)).Add(float64(n))
}

func (m *Metrics) ObserveReserved(path string) {
	if m == nil {
		return
	}
	m.BatchesReserved.WithLabelValues(path).Inc()
}

func (m *Metrics) ObserveFulfilled(flow string) {
	if m == nil {
		return
	}
	m.BatchesFulfilled.WithLabelValues(flow).Inc()
}

func (m *Metrics) ObserveRejection(operation, reason string) {
	if m == nil {
		return
	}
	m.Rejections.WithLabelValues(operation, reason).Inc()
}

func (m *Metrics) SetOutstanding(edition model.EditionID, n uint32) {
	if m == nil {
		return
	}
	m.Outstanding.WithLabelValues(editionLabel(edition)).Set(float64(n))
}

func (m *Metrics) ObserveDelivery(sink string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Notifications.WithLabelValues(sink, result).Inc()
}
