// Package service implements the issuance coordinator: authorization,
// payment checks and the two mint flows on top of the ledger.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/holiman/uint256"

	"github.com/Shivanand-hulikatti/card-issuance/internal/clock"
	"github.com/Shivanand-hulikatti/card-issuance/internal/ledger"
	"github.com/Shivanand-hulikatti/card-issuance/internal/metrics"
	"github.com/Shivanand-hulikatti/card-issuance/internal/model"
	"github.com/Shivanand-hulikatti/card-issuance/internal/payment"
)

var (
	// ErrUnauthorized is returned when an administrator-only operation is
	// called by anyone else, or a public one by an anonymous caller.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInsufficientPayment is returned when the tendered amount is below
	// the edition's unit price.
	ErrInsufficientPayment = payment.ErrInsufficientPayment
	// ErrInvalidBatch is returned when a batch does not have exactly five units.
	ErrInvalidBatch = fmt.Errorf("a batch must contain exactly %d units", model.BatchSize)
)

// Authorizer decides whether a caller is the administrator.
type Authorizer interface {
	IsAdministrator(caller string) bool
}

// OwnerLookup answers ownership queries for minted cards.
type OwnerLookup interface {
	OwnerOf(id model.CardID) (string, error)
}

// Treasury settles payments and releases collected funds.
type Treasury interface {
	Settle(payer string, price, tendered *uint256.Int) (payment.Receipt, error)
	Balance() *uint256.Int
	RefundOwed(payer string) *uint256.Int
	Withdraw(to string) *uint256.Int
}

// Notifier receives notifications after an operation has committed.
type Notifier interface {
	Notify(ctx context.Context, notes ...model.Notification)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, ...model.Notification) {}

// IssuanceService serializes every ledger operation behind one lock. Reads
// share the lock; writes hold it exclusively. Notifications are handed to
// the notifier only after the lock is released.
type IssuanceService struct {
	mu sync.RWMutex

	ledger   *ledger.Ledger
	owners   OwnerLookup
	gate     Authorizer
	treasury Treasury
	clock    clock.Clock

	notifier Notifier
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// Option configures the IssuanceService.
type Option func(*IssuanceService)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *IssuanceService) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *IssuanceService) {
		s.metrics = m
	}
}

// WithNotifier sets where committed notifications go.
func WithNotifier(n Notifier) Option {
	return func(s *IssuanceService) {
		s.notifier = n
	}
}

// NewIssuanceService constructs an IssuanceService with its dependencies.
func NewIssuanceService(
	l *ledger.Ledger,
	owners OwnerLookup,
	gate Authorizer,
	treasury Treasury,
	clk clock.Clock,
	opts ...Option,
) (*IssuanceService, error) {
	switch {
	case l == nil:
		return nil, fmt.Errorf("ledger is required")
	case owners == nil:
		return nil, fmt.Errorf("owner lookup is required")
	case gate == nil:
		return nil, fmt.Errorf("authorizer is required")
	case treasury == nil:
		return nil, fmt.Errorf("treasury is required")
	case clk == nil:
		return nil, fmt.Errorf("clock is required")
	}

	s := &IssuanceService{
		ledger:   l,
		owners:   owners,
		gate:     gate,
		treasury: treasury,
		clock:    clk,
		notifier: nopNotifier{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// BatchFrom converts request units into a batch.
func BatchFrom(units []*model.CategoryKey) (model.Batch, error) {
	var b model.Batch
	if len(units) != model.BatchSize {
		return b, ErrInvalidBatch
	}
	copy(b[:], units)
	return b, nil
}

// commit runs fn under the write lock and, if it succeeds, emits its
// notifications once the lock is released.
func (s *IssuanceService) commit(ctx context.Context, op string, fn func() ([]model.Notification, error)) error {
	s.mu.Lock()
	notes, err := fn()
	s.mu.Unlock()

	if err != nil {
		return s.reject(ctx, op, err)
	}
	// The operation has committed; a caller going away must not lose its
	// notifications.
	s.notifier.Notify(context.WithoutCancel(ctx), notes...)
	return nil
}

func (s *IssuanceService) requireAdmin(caller string) error {
	if !s.gate.IsAdministrator(caller) {
		return ErrUnauthorized
	}
	return nil
}

func (s *IssuanceService) reject(ctx context.Context, op string, err error) error {
	reason := ReasonCode(err)
	s.metrics.ObserveRejection(op, reason)
	if reason == "internal_error" {
		s.logger.ErrorContext(ctx, "operation failed", "operation", op, "error", err)
	} else {
		s.logger.InfoContext(ctx, "operation rejected", "operation", op, "reason", reason)
	}
	return err
}

// ReasonCode maps an error to a stable snake_case code.
func ReasonCode(err error) string {
	switch {
	case errors.Is(err, ledger.ErrEditionNotFound):
		return "edition_not_found"
	case errors.Is(err, ledger.ErrCardNotFound):
		return "card_not_found"
	case errors.Is(err, ledger.ErrInvalidCapacity):
		return "invalid_capacity"
	case errors.Is(err, ledger.ErrInvalidName):
		return "invalid_name"
	case errors.Is(err, ledger.ErrEditionLimitReached):
		return "edition_limit_reached"
	case errors.Is(err, ledger.ErrCapacityExceeded):
		return "capacity_exceeded"
	case errors.Is(err, ledger.ErrSelfReservationNotAllowed):
		return "self_reservation_not_allowed"
	case errors.Is(err, ledger.ErrInvalidRecipient):
		return "invalid_recipient"
	case errors.Is(err, ledger.ErrReservationNotFound):
		return "reservation_not_found"
	case errors.Is(err, ledger.ErrSeriesOverflow):
		return "series_overflow"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrInsufficientPayment):
		return "insufficient_payment"
	case errors.Is(err, ErrInvalidBatch):
		return "invalid_batch"
	case errors.Is(err, payment.ErrInvalidAmount):
		return "invalid_amount"
	default:
		return "internal_error"
	}
}
