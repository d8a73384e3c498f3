package model

import (
	"time"

	"github.com/google/uuid"
)

// NotificationKind names a ledger notification.
type NotificationKind string

const (
	KindEditionCreated NotificationKind = "edition_created"
	KindBatchReserved  NotificationKind = "batch_reserved"
	KindBatchFulfilled NotificationKind = "batch_fulfilled"
	KindUnitMinted     NotificationKind = "unit_minted"
)

// Notification is emitted after a ledger operation commits. Exactly one of
// the payload pointers is set, matching Kind. ID lets consumers drop
// duplicates, since delivery is at-least-once.
type Notification struct {
	ID        uuid.UUID        `json:"id"`
	Kind      NotificationKind `json:"kind"`
	EditionID EditionID        `json:"edition_id"`
	EmittedAt time.Time        `json:"emitted_at"`

	EditionCreated *EditionCreated `json:"edition_created,omitempty"`
	BatchReserved  *BatchReserved  `json:"batch_reserved,omitempty"`
	BatchFulfilled *BatchFulfilled `json:"batch_fulfilled,omitempty"`
	UnitMinted     *UnitMinted     `json:"unit_minted,omitempty"`
}

type EditionCreated struct {
	Name     string `json:"name"`
	Capacity uint32 `json:"capacity"`
}

type BatchReserved struct {
	Purchaser      string `json:"purchaser"`
	PurchaserCount uint16 `json:"purchaser_count"`
	Outstanding    uint32 `json:"outstanding"`
}

type BatchFulfilled struct {
	Owner           string   `json:"owner"`
	CardIDs         []CardID `json:"card_ids"`
	FromReservation bool     `json:"from_reservation"`
}

type UnitMinted struct {
	CardID       CardID       `json:"card_id"`
	Category     *CategoryKey `json:"category"`
	SeriesNumber uint16       `json:"series_number"`
	Owner        string       `json:"owner"`
}

// NewEditionCreated builds an EditionCreated notification.
func NewEditionCreated(e Edition, at time.Time) Notification {
	return Notification{
		ID:             uuid.New(),
		Kind:           KindEditionCreated,
		EditionID:      e.ID,
		EmittedAt:      at,
		EditionCreated: &EditionCreated{Name: e.Name, Capacity: e.Capacity},
	}
}

// NewBatchReserved builds a BatchReserved notification.
func NewBatchReserved(edition EditionID, purchaser string, count uint16, outstanding uint32, at time.Time) Notification {
	return Notification{
		ID:        uuid.New(),
		Kind:      KindBatchReserved,
		EditionID: edition,
		EmittedAt: at,
		BatchReserved: &BatchReserved{
			Purchaser:      purchaser,
			PurchaserCount: count,
			Outstanding:    outstanding,
		},
	}
}

// NewBatchFulfilled builds a BatchFulfilled notification.
func NewBatchFulfilled(edition EditionID, owner string, ids []CardID, fromReservation bool, at time.Time) Notification {
	return Notification{
		ID:        uuid.New(),
		Kind:      KindBatchFulfilled,
		EditionID: edition,
		EmittedAt: at,
		BatchFulfilled: &BatchFulfilled{
			Owner:           owner,
			CardIDs:         ids,
			FromReservation: fromReservation,
		},
	}
}

// NewUnitMinted builds a UnitMinted notification.
func NewUnitMinted(c Card, owner string, at time.Time) Notification {
	return Notification{
		ID:        uuid.New(),
		Kind:      KindUnitMinted,
		EditionID: c.EditionID,
		EmittedAt: at,
		UnitMinted: &UnitMinted{
			CardID:       c.ID,
			Category:     c.Category,
			SeriesNumber: c.SeriesNumber,
			Owner:        owner,
		},
	}
}
