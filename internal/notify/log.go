package notify

import (
	"context"
	"log/slog"

	"github.com/Shivanand-hulikatti/card-issuance/internal/model"
)

// LogSink writes each notification as a structured log line.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Deliver(ctx context.Context, n model.Notification) error {
	attrs := []any{
		"notification_id", n.ID,
		"kind", n.Kind,
		"edition_id", n.EditionID,
	}
	switch {
	case n.BatchReserved != nil:
		attrs = append(attrs, "purchaser", n.BatchReserved.Purchaser, "purchaser_count", n.BatchReserved.PurchaserCount)
	case n.BatchFulfilled != nil:
		attrs = append(attrs, "owner", n.BatchFulfilled.Owner, "cards", len(n.BatchFulfilled.CardIDs))
	case n.UnitMinted != nil:
		attrs = append(attrs, "card_id", n.UnitMinted.CardID, "series", n.UnitMinted.SeriesNumber)
	}
	s.logger.InfoContext(ctx, "ledger notification", attrs...)
	return nil
}
