package service

import (
	"context"

	"github.com/holiman/uint256"

	"github.com/Shivanand-hulikatti/card-issuance/internal/ledger"
	"github.com/Shivanand-hulikatti/card-issuance/internal/model"
)

const (
	opCreateEdition = "create_edition"
	opSetPrice      = "set_unit_price"
	opBuyBatch      = "buy_batch"
	opBuyOnBehalf   = "buy_batch_on_behalf"
	opMintBatch     = "mint_batch"
	opFulfillBatch  = "fulfill_batch"
	opPurchaseBatch = "purchase_batch"
	opWithdraw      = "withdraw_funds"
)

// Reservation is the outcome of a successful batch purchase.
type Reservation struct {
	EditionID   model.EditionID
	Purchaser   string
	Count       uint16
	Outstanding uint32
	Refund      *uint256.Int
}

// Purchase is the outcome of a purchase with immediate fulfillment.
type Purchase struct {
	CardIDs []model.CardID
	Refund  *uint256.Int
}

// CreateEdition appends a new edition. Administrator only.
func (s *IssuanceService) CreateEdition(ctx context.Context, caller, name string, capacity uint32, price *uint256.Int) (model.Edition, error) {
	if err := s.requireAdmin(caller); err != nil {
		return model.Edition{}, s.reject(ctx, opCreateEdition, err)
	}

	var edition model.Edition
	err := s.commit(ctx, opCreateEdition, func() ([]model.Notification, error) {
		now := s.clock.Now()
		e, err := s.ledger.Editions.Create(name, capacity, price, now)
		if err != nil {
			return nil, err
		}
		edition = e
		return []model.Notification{model.NewEditionCreated(e, now)}, nil
	})
	if err != nil {
		return model.Edition{}, err
	}

	s.logger.InfoContext(ctx, "edition created",
		"edition_id", edition.ID,
		"name", edition.Name,
		"capacity", edition.Capacity,
	)
	return edition, nil
}

// SetUnitPrice changes an edition's price. Administrator only.
func (s *IssuanceService) SetUnitPrice(ctx context.Context, caller string, id model.EditionID, price *uint256.Int) error {
	if err := s.requireAdmin(caller); err != nil {
		return s.reject(ctx, opSetPrice, err)
	}
	return s.commit(ctx, opSetPrice, func() ([]model.Notification, error) {
		return nil, s.ledger.Editions.SetUnitPrice(id, price)
	})
}

// BuyBatch reserves one batch for caller, paid with tendered. Anything above
// the unit price is refunded.
func (s *IssuanceService) BuyBatch(ctx context.Context, caller string, id model.EditionID, tendered *uint256.Int) (Reservation, error) {
	if caller == "" {
		return Reservation{}, s.reject(ctx, opBuyBatch, ErrUnauthorized)
	}

	var res Reservation
	err := s.commit(ctx, opBuyBatch, func() ([]model.Notification, error) {
		edition, err := s.ledger.Editions.Get(id)
		if err != nil {
			return nil, err
		}
		if err := s.ledger.Reservations.CheckReserve(id, caller); err != nil {
			return nil, err
		}
		receipt, err := s.treasury.Settle(caller, edition.UnitPrice, tendered)
		if err != nil {
			return nil, err
		}
		res, err = s.reserveLocked(id, caller)
		if err != nil {
			return nil, err
		}
		res.Refund = receipt.Refund
		return []model.Notification{s.reservedNote(res)}, nil
	})
	if err != nil {
		return Reservation{}, err
	}

	s.metrics.ObserveReserved("payment")
	s.metrics.SetOutstanding(id, res.Outstanding)
	return res, nil
}

// BuyBatchOnBehalf reserves one batch for purchaser whose payment was taken
// off-channel. Administrator only.
func (s *IssuanceService) BuyBatchOnBehalf(ctx context.Context, caller string, id model.EditionID, purchaser string) (Reservation, error) {
	if err := s.requireAdmin(caller); err != nil {
		return Reservation{}, s.reject(ctx, opBuyOnBehalf, err)
	}

	var res Reservation
	err := s.commit(ctx, opBuyOnBehalf, func() ([]model.Notification, error) {
		var err error
		res, err = s.reserveLocked(id, purchaser)
		if err != nil {
			return nil, err
		}
		res.Refund = new(uint256.Int)
		return []model.Notification{s.reservedNote(res)}, nil
	})
	if err != nil {
		return Reservation{}, err
	}

	s.metrics.ObserveReserved("on_behalf")
	s.metrics.SetOutstanding(id, res.Outstanding)
	return res, nil
}

// MintBatch mints five cards to owner without a reservation. Administrator
// only.
func (s *IssuanceService) MintBatch(ctx context.Context, caller string, id model.EditionID, owner string, batch model.Batch) ([]model.CardID, error) {
	if err := s.requireAdmin(caller); err != nil {
		return nil, s.reject(ctx, opMintBatch, err)
	}

	var ids []model.CardID
	err := s.commit(ctx, opMintBatch, func() ([]model.Notification, error) {
		cards, err := s.mintLocked(id, owner, batch)
		if err != nil {
			return nil, err
		}
		ids = cardIDs(cards)
		return s.mintedNotes(id, owner, cards, false), nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveFulfilled("direct")
	s.metrics.ObserveMinted(id, len(ids))
	return ids, nil
}

// FulfillBatch consumes one of owner's reservations and mints its five
// cards. Administrator only.
func (s *IssuanceService) FulfillBatch(ctx context.Context, caller string, id model.EditionID, owner string, batch model.Batch) ([]model.CardID, error) {
	if err := s.requireAdmin(caller); err != nil {
		return nil, s.reject(ctx, opFulfillBatch, err)
	}

	var (
		ids         []model.CardID
		outstanding uint32
	)
	err := s.commit(ctx, opFulfillBatch, func() ([]model.Notification, error) {
		if !s.ledger.Editions.Exists(id) {
			return nil, ledger.ErrEditionNotFound
		}
		if err := s.ledger.Reservations.CanConsume(id, owner); err != nil {
			return nil, err
		}
		// A direct mint may have used capacity the reservation was counting on.
		if err := s.ledger.CheckBatch(id, owner, batch); err != nil {
			return nil, err
		}
		if err := s.ledger.Reservations.Consume(id, owner); err != nil {
			return nil, err
		}
		cards, err := s.mintLocked(id, owner, batch)
		if err != nil {
			return nil, err
		}
		ids = cardIDs(cards)
		outstanding = s.ledger.Reservations.Outstanding(id)
		return s.mintedNotes(id, owner, cards, true), nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveFulfilled("reservation")
	s.metrics.ObserveMinted(id, len(ids))
	s.metrics.SetOutstanding(id, outstanding)
	return ids, nil
}

// PurchaseBatch sells and mints one batch to caller in a single step.
func (s *IssuanceService) PurchaseBatch(ctx context.Context, caller string, id model.EditionID, tendered *uint256.Int, batch model.Batch) (Purchase, error) {
	if caller == "" {
		return Purchase{}, s.reject(ctx, opPurchaseBatch, ErrUnauthorized)
	}

	var out Purchase
	err := s.commit(ctx, opPurchaseBatch, func() ([]model.Notification, error) {
		edition, err := s.ledger.Editions.Get(id)
		if err != nil {
			return nil, err
		}
		if err := s.ledger.CheckBatch(id, caller, batch); err != nil {
			return nil, err
		}
		receipt, err := s.treasury.Settle(caller, edition.UnitPrice, tendered)
		if err != nil {
			return nil, err
		}
		cards, err := s.mintLocked(id, caller, batch)
		if err != nil {
			return nil, err
		}
		out = Purchase{CardIDs: cardIDs(cards), Refund: receipt.Refund}
		return s.mintedNotes(id, caller, cards, false), nil
	})
	if err != nil {
		return Purchase{}, err
	}

	s.metrics.ObserveFulfilled("purchase")
	s.metrics.ObserveMinted(id, len(out.CardIDs))
	return out, nil
}

// WithdrawFunds releases the collected balance to to, or to the caller when
// to is empty. Administrator only.
func (s *IssuanceService) WithdrawFunds(ctx context.Context, caller, to string) (*uint256.Int, error) {
	if err := s.requireAdmin(caller); err != nil {
		return nil, s.reject(ctx, opWithdraw, err)
	}
	if to == "" {
		to = caller
	}

	var amount *uint256.Int
	err := s.commit(ctx, opWithdraw, func() ([]model.Notification, error) {
		if to == s.ledger.Self() {
			return nil, ledger.ErrInvalidRecipient
		}
		amount = s.treasury.Withdraw(to)
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "funds withdrawn", "to", to, "amount", amount.Dec())
	return amount, nil
}

func (s *IssuanceService) reserveLocked(id model.EditionID, purchaser string) (Reservation, error) {
	count, err := s.ledger.Reservations.Reserve(id, purchaser)
	if err != nil {
		return Reservation{}, err
	}
	return Reservation{
		EditionID:   id,
		Purchaser:   purchaser,
		Count:       count,
		Outstanding: s.ledger.Reservations.Outstanding(id),
	}, nil
}

// mintLocked validates the whole batch, then mints it. MintBatch cannot fail once
// CheckBatch has passed, so a batch is never left half minted.
func (s *IssuanceService) mintLocked(id model.EditionID, owner string, batch model.Batch) ([]model.Card, error) {
	if err := s.ledger.CheckBatch(id, owner, batch); err != nil {
		return nil, err
	}

	return s.ledger.Cards.MintBatch(id, batch, owner, s.clock.Now())
}

func (s *IssuanceService) reservedNote(r Reservation) model.Notification {
	return model.NewBatchReserved(r.EditionID, r.Purchaser, r.Count, r.Outstanding, s.clock.Now())
}

// mintedNotes returns the batch-level notification followed by one per unit.
func (s *IssuanceService) mintedNotes(id model.EditionID, owner string, cards []model.Card, fromReservation bool) []model.Notification {
	now := s.clock.Now()
	notes := make([]model.Notification, 0, len(cards)+1)
	notes = append(notes, model.NewBatchFulfilled(id, owner, cardIDs(cards), fromReservation, now))
	for _, c := range cards {
		notes = append(notes, model.NewUnitMinted(c, owner, now))
	}
	return notes
}

func cardIDs(cards []model.Card) []model.CardID {
	ids := make([]model.CardID, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
	}
	return ids
}
