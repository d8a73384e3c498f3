// Package ownership records who holds each minted card. Transfers and
// approvals are out of scope; the registry only learns owners at mint time.
package ownership

import (
	"errors"
	"sync"

	"github.com/Shivanand-hulikatti/card-issuance/internal/model"
)

// ErrNoOwner is returned for cards the registry has never seen.
var ErrNoOwner = errors.New("card has no owner")

// Registry is an in-memory owner index.
type Registry struct {
	mu      sync.RWMutex
	owners  map[model.CardID]string
	holding map[string]int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		owners:  make(map[model.CardID]string),
		holding: make(map[string]int),
	}
}

// Assign records owner as the holder of id.
func (r *Registry) Assign(id model.CardID, owner string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.owners[id]; ok {
		r.holding[prev]--
	}
	r.owners[id] = owner
	r.holding[owner]++
}

// OwnerOf returns the holder of id.
func (r *Registry) OwnerOf(id model.CardID) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	owner, ok := r.owners[id]
	if !ok {
		return "", ErrNoOwner
	}
	return owner, nil
}

// BalanceOf returns how many cards owner holds.
func (r *Registry) BalanceOf(owner string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.holding[owner]
}
