package ledger

import (
	"fmt"
	"math"

	"github.com/Shivanand-hulikatti/card-issuance/internal/model"
)

type reservationKey struct {
	edition   model.EditionID
	purchaser string
}

// ReservationTracker records batches that were paid for but not yet minted,
// per purchaser and in aggregate per edition. The aggregate always equals the
// sum of the per-purchaser counts.
type ReservationTracker struct {
	self      string
	editions  *EditionRegistry
	purchases map[reservationKey]uint16
	aggregate map[model.EditionID]uint32
}

// NewReservationTracker returns a tracker that refuses reservations made by
// the ledger address self.
func NewReservationTracker(self string, editions *EditionRegistry) *ReservationTracker {
	return &ReservationTracker{
		self:      self,
		editions:  editions,
		purchases: make(map[reservationKey]uint16),
		aggregate: make(map[model.EditionID]uint32),
	}
}

// CheckReserve reports whether Reserve would succeed for purchaser.
// Remaining unminted capacity must cover every outstanding batch plus one.
func (t *ReservationTracker) CheckReserve(edition model.EditionID, purchaser string) error {
	if !t.editions.Exists(edition) {
		return ErrEditionNotFound
	}
	if purchaser == t.self {
		return ErrSelfReservationNotAllowed
	}
	if purchaser == "" {
		return ErrInvalidRecipient
	}

	outstanding := uint64(t.aggregate[edition]) + 1
	if uint64(t.editions.Remaining(edition)) < model.BatchSize*outstanding {
		return ErrCapacityExceeded
	}
	if t.purchases[reservationKey{edition, purchaser}] == math.MaxUint16 {
		return fmt.Errorf("%w: purchaser reservation limit reached", ErrCapacityExceeded)
	}
	return nil
}

// Reserve records one more batch for purchaser and returns the purchaser's
// new count.
func (t *ReservationTracker) Reserve(edition model.EditionID, purchaser string) (uint16, error) {
	if err := t.CheckReserve(edition, purchaser); err != nil {
		return 0, err
	}

	k := reservationKey{edition: edition, purchaser: purchaser}
	t.purchases[k]++
	t.aggregate[edition]++
	return t.purchases[k], nil
}

// CanConsume reports whether Consume would succeed.
func (t *ReservationTracker) CanConsume(edition model.EditionID, purchaser string) error {
	if t.aggregate[edition] == 0 || t.purchases[reservationKey{edition, purchaser}] == 0 {
		return ErrReservationNotFound
	}
	return nil
}

// Consume removes one batch from purchaser and from the edition aggregate.
func (t *ReservationTracker) Consume(edition model.EditionID, purchaser string) error {
	if err := t.CanConsume(edition, purchaser); err != nil {
		return err
	}

	k := reservationKey{edition: edition, purchaser: purchaser}
	if t.purchases[k] == 1 {
		delete(t.purchases, k)
	} else {
		t.purchases[k]--
	}
	t.aggregate[edition]--
	return nil
}

// Of returns purchaser's outstanding batch count for edition.
func (t *ReservationTracker) Of(edition model.EditionID, purchaser string) uint16 {
	return t.purchases[reservationKey{edition: edition, purchaser: purchaser}]
}

// Outstanding returns the edition-wide outstanding batch count.
func (t *ReservationTracker) Outstanding(edition model.EditionID) uint32 {
	return t.aggregate[edition]
}

// CanSellMore reports whether one more reservation would fit.
func (t *ReservationTracker) CanSellMore(edition model.EditionID) bool {
	if !t.editions.Exists(edition) {
		return false
	}
	return uint64(t.editions.Remaining(edition)) >= model.BatchSize*(uint64(t.aggregate[edition])+1)
}
