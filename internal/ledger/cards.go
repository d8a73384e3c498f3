package ledger

import (
	"fmt"
	"time"

	"github.com/Shivanand-hulikatti/card-issuance/internal/model"
)

// OwnerRegistry receives ownership of freshly minted cards. Assign is local
// bookkeeping and cannot fail.
type OwnerRegistry interface {
	Assign(id model.CardID, owner string)
}

// CardLedger is the append-only store of minted cards. Mint is the only
// place a card id is allocated.
type CardLedger struct {
	cards    []model.Card
	editions *EditionRegistry
	series   *SeriesCounter
	owners   OwnerRegistry
}

// NewCardLedger wires a card ledger to the counters it advances.
func NewCardLedger(editions *EditionRegistry, series *SeriesCounter, owners OwnerRegistry) *CardLedger {
	return &CardLedger{editions: editions, series: series, owners: owners}
}

// MintBatch appends one card per category and only then hands all of them
// to owner, so no hand-off sees a partly counted batch. The caller must have
// validated the batch; a failure part way leaves earlier units minted.
func (l *CardLedger) MintBatch(edition model.EditionID, batch model.Batch, owner string, now time.Time) ([]model.Card, error) {
	cards := make([]model.Card, 0, len(batch))
	for i, category := range batch {
		card, err := l.mint(edition, category, now)
		if err != nil {
			return nil, fmt.Errorf("mint unit %d: %w", i+1, err)
		}
		cards = append(cards, card)
	}

	// Counters are final before the hand-off.
	for i := range cards {
		l.owners.Assign(cards[i].ID, owner)
		cards[i] = copyCard(cards[i])
	}
	return cards, nil
}

func (l *CardLedger) mint(edition model.EditionID, category *model.CategoryKey, now time.Time) (model.Card, error) {
	if !l.editions.Exists(edition) {
		return model.Card{}, ErrEditionNotFound
	}
	serial, err := l.series.Next(category, edition)
	if err != nil {
		return model.Card{}, err
	}

	card := model.Card{
		ID:           model.CardID(len(l.cards)),
		EditionID:    edition,
		Category:     cloneCategory(category),
		SeriesNumber: serial,
		MintedAt:     now,
	}
	l.cards = append(l.cards, card)
	l.editions.addMinted(edition)
	return card, nil
}

// Get returns a card or ErrCardNotFound.
func (l *CardLedger) Get(id model.CardID) (model.Card, error) {
	if uint64(id) >= uint64(len(l.cards)) {
		return model.Card{}, ErrCardNotFound
	}
	return copyCard(l.cards[id]), nil
}

// Len returns the number of minted cards.
func (l *CardLedger) Len() int {
	return len(l.cards)
}

func copyCard(c model.Card) model.Card {
	c.Category = cloneCategory(c.Category)
	return c
}

func cloneCategory(c *model.CategoryKey) *model.CategoryKey {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}
