package ledger

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/card-issuance/internal/model"
)

const ledgerAddr = "ledger"

func newTracker(t *testing.T, capacity uint32) (*ReservationTracker, *EditionRegistry) {
	t.Helper()
	editions := NewEditionRegistry()
	_, err := editions.Create("e", capacity, nil, testNow)
	require.NoError(t, err)
	return NewReservationTracker(ledgerAddr, editions), editions
}

func TestReservationScarcityRule(t *testing.T) {
	tr, _ := newTracker(t, 10)

	n, err := tr.Reserve(0, "alice")
	require.NoError(t, err)
	assert.Equal(t, uint16(1), n)
	assert.Equal(t, uint32(1), tr.Outstanding(0))

	n, err = tr.Reserve(0, "bob")
	require.NoError(t, err)
	assert.Equal(t, uint16(1), n)
	assert.Equal(t, uint32(2), tr.Outstanding(0))
	assert.False(t, tr.CanSellMore(0))

	_, err = tr.Reserve(0, "carol")
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Equal(t, uint32(2), tr.Outstanding(0))
	assert.Equal(t, uint16(0), tr.Of(0, "carol"))
}

func TestReservationAccountsForMinted(t *testing.T) {
	tr, editions := newTracker(t, 12)
	for range 5 {
		editions.addMinted(0)
	}
	// 7 remaining covers one batch, not two.
	_, err := tr.Reserve(0, "alice")
	require.NoError(t, err)
	_, err = tr.Reserve(0, "alice")
	assert.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestReservationRejects(t *testing.T) {
	tr, _ := newTracker(t, 100)

	_, err := tr.Reserve(1, "alice")
	assert.ErrorIs(t, err, ErrEditionNotFound)

	_, err = tr.Reserve(0, ledgerAddr)
	assert.ErrorIs(t, err, ErrSelfReservationNotAllowed)

	_, err = tr.Reserve(0, "")
	assert.ErrorIs(t, err, ErrInvalidRecipient)

	assert.Equal(t, uint32(0), tr.Outstanding(0))
}

func TestReservationPurchaserLimit(t *testing.T) {
	tr, _ := newTracker(t, math.MaxUint32)
	tr.purchases[reservationKey{0, "alice"}] = math.MaxUint16
	tr.aggregate[0] = math.MaxUint16

	_, err := tr.Reserve(0, "alice")
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Equal(t, uint16(math.MaxUint16), tr.Of(0, "alice"))
	assert.Equal(t, uint32(math.MaxUint16), tr.Outstanding(0))
}

func TestReservationConsume(t *testing.T) {
	tr, _ := newTracker(t, 100)
	_, err := tr.Reserve(0, "alice")
	require.NoError(t, err)
	_, err = tr.Reserve(0, "alice")
	require.NoError(t, err)
	_, err = tr.Reserve(0, "bob")
	require.NoError(t, err)

	require.NoError(t, tr.Consume(0, "alice"))
	assert.Equal(t, uint16(1), tr.Of(0, "alice"))
	assert.Equal(t, uint32(2), tr.Outstanding(0))

	require.NoError(t, tr.Consume(0, "alice"))
	assert.Equal(t, uint16(0), tr.Of(0, "alice"))

	// The aggregate is non-zero, but alice has nothing left.
	assert.ErrorIs(t, tr.Consume(0, "alice"), ErrReservationNotFound)
	assert.Equal(t, uint32(1), tr.Outstanding(0))

	assert.ErrorIs(t, tr.Consume(0, "carol"), ErrReservationNotFound)
	assert.ErrorIs(t, tr.Consume(5, "bob"), ErrReservationNotFound)
}

func TestReservationAggregateEqualsSum(t *testing.T) {
	tr, _ := newTracker(t, 1000)
	purchasers := []string{"a", "b", "c", "a", "a", "b"}
	for _, p := range purchasers {
		_, err := tr.Reserve(0, p)
		require.NoError(t, err)
	}
	require.NoError(t, tr.Consume(0, "a"))
	require.NoError(t, tr.Consume(0, "c"))

	var sum uint32
	for k, n := range tr.purchases {
		if k.edition == model.EditionID(0) {
			sum += uint32(n)
		}
	}
	assert.Equal(t, tr.Outstanding(0), sum)
	assert.Equal(t, uint32(4), sum)
}
