// Package repository persists ledger notifications to PostgreSQL.
// It uses pgx directly (no ORM). The journal is a read model for indexers;
// the in-process ledger stays authoritative.
package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/card-issuance/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS ledger_notifications (
	id          UUID PRIMARY KEY,
	kind        TEXT        NOT NULL,
	edition_id  INTEGER     NOT NULL,
	payload     JSONB       NOT NULL,
	emitted_at  TIMESTAMPTZ NOT NULL,
	recorded_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS ledger_notifications_edition_idx
	ON ledger_notifications (edition_id, emitted_at);
`

// DefaultListLimit caps history queries that pass a non-positive limit.
const DefaultListLimit = 100

// NotificationRepository is the Postgres journal of emitted notifications.
type NotificationRepository struct {
	db *pgxpool.Pool
}

// NewNotificationRepository constructs a NotificationRepository.
func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// EnsureSchema creates the journal table if it does not exist.
func (r *NotificationRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (r *NotificationRepository) Name() string { return "postgres" }

// Deliver inserts a notification. Redelivery of the same id is a no-op.
func (r *NotificationRepository) Deliver(ctx context.Context, n model.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO ledger_notifications (id, kind, edition_id, payload, emitted_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO NOTHING`,
		n.ID.String(), string(n.Kind), int32(n.EditionID), payload, n.EmittedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// ListByEdition returns an edition's notifications in emission order.
func (r *NotificationRepository) ListByEdition(ctx context.Context, edition model.EditionID, limit int) ([]model.Notification, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := r.db.Query(ctx,
		`SELECT payload
		 FROM ledger_notifications
		 WHERE edition_id = $1
		 ORDER BY emitted_at ASC, recorded_at ASC
		 LIMIT $2`,
		int32(edition), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notes []model.Notification
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		var n model.Notification
		if err := json.Unmarshal(payload, &n); err != nil {
			return nil, fmt.Errorf("decode notification: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}
