// Package model defines the core domain types for the card issuance ledger.
package model

import (
	"time"

	"github.com/holiman/uint256"
)

// BatchSize is the fixed number of units purchased or minted together.
const BatchSize = 5

// EditionID is the position of an edition in the append-only edition sequence.
type EditionID uint16

// CardID is the position of a card in the global append-only card sequence.
type CardID uint64

// Edition is a named, capacity-bounded batch of collectible units.
type Edition struct {
	ID        EditionID
	Name      string
	Capacity  uint32
	UnitPrice *uint256.Int
	CreatedAt time.Time
}

// CategoryKey groups series numbering within an edition.
type CategoryKey struct {
	PlayerID uint16 `json:"player_id"`
	CardType uint8  `json:"card_type"`
}

// Card is one minted collectible. Category is nil when the unit was minted
// without a category key.
type Card struct {
	ID           CardID
	EditionID    EditionID
	Category     *CategoryKey
	SeriesNumber uint16
	MintedAt     time.Time
}

// Batch holds the per-unit category keys of one five-unit batch.
type Batch [BatchSize]*CategoryKey

// EditionInfo summarises an edition's issuance state.
type EditionInfo struct {
	Edition
	Minted             uint32
	CanSellMoreBatches bool
	Outstanding        uint32
}

// CardInfo describes a minted card together with its series context.
type CardInfo struct {
	Card
	TotalSeries uint16
	Owner       string
}

// ─── HTTP payloads ────────────────────────────────────────────────────────────

// CreateEditionRequest is the payload for creating a new edition.
type CreateEditionRequest struct {
	Name      string `json:"name"`
	Capacity  uint32 `json:"capacity"`
	UnitPrice string `json:"unit_price"`
}

// SetPriceRequest is the payload for changing an edition's unit price.
type SetPriceRequest struct {
	UnitPrice string `json:"unit_price"`
}

// BuyBatchRequest is the payload for a payment-gated reservation.
type BuyBatchRequest struct {
	Amount string `json:"amount"`
}

// OnBehalfRequest is the payload for an administrator-attested reservation.
type OnBehalfRequest struct {
	Purchaser string `json:"purchaser"`
}

// MintBatchRequest is the payload for direct mints and fulfillments.
type MintBatchRequest struct {
	Owner string         `json:"owner"`
	Units []*CategoryKey `json:"units"`
}

// PurchaseRequest is the payload for a purchase with immediate fulfillment.
type PurchaseRequest struct {
	Amount string         `json:"amount"`
	Units  []*CategoryKey `json:"units"`
}

// WithdrawRequest is the payload for withdrawing collected funds.
type WithdrawRequest struct {
	To string `json:"to"`
}

// EditionResponse is the JSON view of an edition.
type EditionResponse struct {
	ID                 EditionID `json:"id"`
	Name               string    `json:"name"`
	Capacity           uint32    `json:"capacity"`
	UnitPrice          string    `json:"unit_price"`
	Minted             uint32    `json:"minted"`
	CanSellMoreBatches bool      `json:"can_sell_more_batches"`
	Outstanding        uint32    `json:"outstanding_reservations"`
	CreatedAt          time.Time `json:"created_at"`
}

// CardResponse is the JSON view of a card.
type CardResponse struct {
	ID           CardID       `json:"id"`
	EditionID    EditionID    `json:"edition_id"`
	Category     *CategoryKey `json:"category"`
	SeriesNumber uint16       `json:"series_number"`
	TotalSeries  uint16       `json:"total_series"`
	Owner        string       `json:"owner"`
	MintedAt     time.Time    `json:"minted_at"`
}

// ReservationResponse reports a purchaser's outstanding reservations.
type ReservationResponse struct {
	EditionID   EditionID `json:"edition_id"`
	Purchaser   string    `json:"purchaser"`
	Count       uint16    `json:"count"`
	Outstanding uint32    `json:"outstanding"`
	Refund      string    `json:"refund,omitempty"`
}

// BatchResponse lists the cards minted by one batch.
type BatchResponse struct {
	EditionID EditionID `json:"edition_id"`
	Owner     string    `json:"owner"`
	CardIDs   []CardID  `json:"card_ids"`
	Refund    string    `json:"refund,omitempty"`
}

// TreasuryResponse reports collected or withdrawn funds.
type TreasuryResponse struct {
	Balance   string `json:"balance,omitempty"`
	Withdrawn string `json:"withdrawn,omitempty"`
	To        string `json:"to,omitempty"`
}

// RefundResponse reports the overpayment owed to an account.
type RefundResponse struct {
	Account string `json:"account"`
	Owed    string `json:"owed"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
