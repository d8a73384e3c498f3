package service

import (
	"context"
	"errors"

	"github.com/holiman/uint256"

	"github.com/Shivanand-hulikatti/card-issuance/internal/ledger"
	"github.com/Shivanand-hulikatti/card-issuance/internal/model"
	"github.com/Shivanand-hulikatti/card-issuance/internal/ownership"
)

// EditionInfo returns an edition with its minted and reservation counts.
func (s *IssuanceService) EditionInfo(_ context.Context, id model.EditionID) (model.EditionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.infoLocked(id)
}

// ListEditions returns every edition in creation order.
func (s *IssuanceService) ListEditions(_ context.Context) []model.EditionInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	editions := s.ledger.Editions.List()
	out := make([]model.EditionInfo, 0, len(editions))
	for _, e := range editions {
		info, err := s.infoLocked(e.ID)
		if err != nil {
			continue
		}
		out = append(out, info)
	}
	return out
}

// CardInfo returns a card with its series total and current owner.
func (s *IssuanceService) CardInfo(_ context.Context, id model.CardID) (model.CardInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	card, err := s.ledger.Cards.Get(id)
	if err != nil {
		return model.CardInfo{}, err
	}
	owner, err := s.owners.OwnerOf(id)
	if err != nil && !errors.Is(err, ownership.ErrNoOwner) {
		return model.CardInfo{}, err
	}
	return model.CardInfo{
		Card:        card,
		TotalSeries: s.ledger.Series.Current(card.Category, card.EditionID),
		Owner:       owner,
	}, nil
}

// ReservationOf returns purchaser's outstanding batches and the edition total.
func (s *IssuanceService) ReservationOf(_ context.Context, id model.EditionID, purchaser string) (uint16, uint32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.ledger.Editions.Exists(id) {
		return 0, 0, ledger.ErrEditionNotFound
	}
	return s.ledger.Reservations.Of(id, purchaser), s.ledger.Reservations.Outstanding(id), nil
}

// TreasuryBalance returns collected, unwithdrawn funds. Administrator only.
func (s *IssuanceService) TreasuryBalance(ctx context.Context, caller string) (*uint256.Int, error) {
	if err := s.requireAdmin(caller); err != nil {
		return nil, s.reject(ctx, "treasury_balance", err)
	}
	return s.treasury.Balance(), nil
}

// RefundOwed returns the overpayment recorded for account, or for the caller
// when account is empty. Only the account itself or the administrator may
// read it.
func (s *IssuanceService) RefundOwed(ctx context.Context, caller, account string) (*uint256.Int, error) {
	if account == "" {
		account = caller
	}
	if caller == "" || (caller != account && !s.gate.IsAdministrator(caller)) {
		return nil, s.reject(ctx, "refund_owed", ErrUnauthorized)
	}
	return s.treasury.RefundOwed(account), nil
}

func (s *IssuanceService) infoLocked(id model.EditionID) (model.EditionInfo, error) {
	edition, err := s.ledger.Editions.Get(id)
	if err != nil {
		return model.EditionInfo{}, err
	}
	return model.EditionInfo{
		Edition:            edition,
		Minted:             s.ledger.Editions.Minted(id),
		CanSellMoreBatches: s.ledger.Reservations.CanSellMore(id),
		Outstanding:        s.ledger.Reservations.Outstanding(id),
	}, nil
}
