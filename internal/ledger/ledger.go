// Package ledger holds the authoritative issuance state: editions, series
// counters, reservations and minted cards.
//
// The ledger does no locking of its own. Callers serialize every operation;
// IssuanceService in package service does so with a single mutex.
package ledger

import "github.com/Shivanand-hulikatti/card-issuance/internal/model"

// Ledger owns all issuance counters.
type Ledger struct {
	Editions     *EditionRegistry
	Series       *SeriesCounter
	Reservations *ReservationTracker
	Cards        *CardLedger

	self string
}

// New builds an empty ledger whose own address is self.
func New(self string, owners OwnerRegistry) *Ledger {
	editions := NewEditionRegistry()
	series := NewSeriesCounter()
	return &Ledger{
		Editions:     editions,
		Series:       series,
		Reservations: NewReservationTracker(self, editions),
		Cards:        NewCardLedger(editions, series, owners),
		self:         self,
	}
}

// Self returns the ledger's own address.
func (l *Ledger) Self() string {
	return l.self
}

// CheckBatch validates a five-unit mint for owner without mutating anything.
func (l *Ledger) CheckBatch(edition model.EditionID, owner string, batch model.Batch) error {
	if !l.Editions.Exists(edition) {
		return ErrEditionNotFound
	}
	if owner == "" || owner == l.self {
		return ErrInvalidRecipient
	}
	if l.Editions.Remaining(edition) < model.BatchSize {
		return ErrCapacityExceeded
	}
	return l.Series.CheckBatch(edition, batch)
}
