package ledger

import (
	"math"

	"github.com/Shivanand-hulikatti/card-issuance/internal/model"
)

type seriesKey struct {
	edition  model.EditionID
	none     bool
	category model.CategoryKey
}

func keyOf(category *model.CategoryKey, edition model.EditionID) seriesKey {
	if category == nil {
		return seriesKey{edition: edition, none: true}
	}
	return seriesKey{edition: edition, category: *category}
}

// SeriesCounter hands out gapless series numbers per (category, edition).
type SeriesCounter struct {
	counts map[seriesKey]uint16
}

// NewSeriesCounter returns an empty counter.
func NewSeriesCounter() *SeriesCounter {
	return &SeriesCounter{counts: make(map[seriesKey]uint16)}
}

// Next increments and returns the counter for the pair. The first call
// returns 1. At the uint16 limit it fails without touching state.
func (c *SeriesCounter) Next(category *model.CategoryKey, edition model.EditionID) (uint16, error) {
	k := keyOf(category, edition)
	current := c.counts[k]
	if current == math.MaxUint16 {
		return 0, ErrSeriesOverflow
	}
	current++
	c.counts[k] = current
	return current, nil
}

// Current returns the highest series number issued for the pair.
func (c *SeriesCounter) Current(category *model.CategoryKey, edition model.EditionID) uint16 {
	return c.counts[keyOf(category, edition)]
}

// CheckBatch reports ErrSeriesOverflow if issuing one number per category
// in the batch would overflow any pair.
func (c *SeriesCounter) CheckBatch(edition model.EditionID, batch model.Batch) error {
	pending := make(map[seriesKey]int, len(batch))
	for _, category := range batch {
		k := keyOf(category, edition)
		pending[k]++
		if int(c.counts[k])+pending[k] > math.MaxUint16 {
			return ErrSeriesOverflow
		}
	}
	return nil
}
