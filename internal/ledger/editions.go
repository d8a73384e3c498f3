package ledger

import (
	"math"
	"strings"
	"time"

	"github.com/holiman/uint256"

	"github.com/Shivanand-hulikatti/card-issuance/internal/model"
)

// EditionRegistry is the append-only edition catalog. It also owns the
// per-edition minted counters.
type EditionRegistry struct {
	editions []model.Edition
	minted   []uint32
}

// NewEditionRegistry returns an empty registry.
func NewEditionRegistry() *EditionRegistry {
	return &EditionRegistry{}
}

// Create appends a new edition and returns it with its sequential id.
func (r *EditionRegistry) Create(name string, capacity uint32, unitPrice *uint256.Int, now time.Time) (model.Edition, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Edition{}, ErrInvalidName
	}
	if capacity == 0 {
		return model.Edition{}, ErrInvalidCapacity
	}
	if len(r.editions) > math.MaxUint16 {
		return model.Edition{}, ErrEditionLimitReached
	}

	edition := model.Edition{
		ID:        model.EditionID(len(r.editions)),
		Name:      name,
		Capacity:  capacity,
		UnitPrice: clonePrice(unitPrice),
		CreatedAt: now,
	}
	r.editions = append(r.editions, edition)
	r.minted = append(r.minted, 0)
	return r.copyOf(edition.ID), nil
}

// Exists reports whether id has been allocated.
func (r *EditionRegistry) Exists(id model.EditionID) bool {
	return int(id) < len(r.editions)
}

// Get returns the edition or ErrEditionNotFound.
func (r *EditionRegistry) Get(id model.EditionID) (model.Edition, error) {
	if !r.Exists(id) {
		return model.Edition{}, ErrEditionNotFound
	}
	return r.copyOf(id), nil
}

// List returns all editions in creation order.
func (r *EditionRegistry) List() []model.Edition {
	out := make([]model.Edition, 0, len(r.editions))
	for i := range r.editions {
		out = append(out, r.copyOf(model.EditionID(i)))
	}
	return out
}

// SetUnitPrice replaces the price of an existing edition.
func (r *EditionRegistry) SetUnitPrice(id model.EditionID, price *uint256.Int) error {
	if !r.Exists(id) {
		return ErrEditionNotFound
	}
	r.editions[id].UnitPrice = clonePrice(price)
	return nil
}

// Minted returns the number of cards minted for id. Unknown ids report zero.
func (r *EditionRegistry) Minted(id model.EditionID) uint32 {
	if !r.Exists(id) {
		return 0
	}
	return r.minted[id]
}

// Remaining returns the unminted capacity of id.
func (r *EditionRegistry) Remaining(id model.EditionID) uint32 {
	if !r.Exists(id) {
		return 0
	}
	return r.editions[id].Capacity - r.minted[id]
}

// Len returns the number of editions.
func (r *EditionRegistry) Len() int {
	return len(r.editions)
}

func (r *EditionRegistry) addMinted(id model.EditionID) {
	r.minted[id]++
}

func (r *EditionRegistry) copyOf(id model.EditionID) model.Edition {
	e := r.editions[id]
	e.UnitPrice = clonePrice(e.UnitPrice)
	return e
}

func clonePrice(p *uint256.Int) *uint256.Int {
	if p == nil {
		return new(uint256.Int)
	}
	return new(uint256.Int).Set(p)
}
