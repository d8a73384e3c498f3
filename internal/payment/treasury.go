// Package payment models the payment channel: it checks tendered amounts,
// collects the price, refunds overpayment and releases collected funds to
// the administrator.
package payment

import (
	"errors"
	"strings"
	"sync"

	"github.com/holiman/uint256"
)

var (
	ErrInsufficientPayment = errors.New("insufficient payment")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrBalanceOverflow     = errors.New("treasury balance overflow")
)

// ParseAmount reads a decimal amount. An empty string is zero.
func ParseAmount(s string) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return new(uint256.Int), nil
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, ErrInvalidAmount
	}
	return v, nil
}

// Check reports ErrInsufficientPayment when tendered is below price.
func Check(price, tendered *uint256.Int) error {
	if tendered == nil || tendered.Lt(price) {
		return ErrInsufficientPayment
	}
	return nil
}

// Receipt describes one settled payment.
type Receipt struct {
	Payer     string
	Collected *uint256.Int
	Refund    *uint256.Int
}

// Treasury holds collected funds, refunds owed to payers and what has been
// paid out to each recipient.
type Treasury struct {
	mu      sync.Mutex
	balance *uint256.Int
	refunds map[string]*uint256.Int
	payouts map[string]*uint256.Int
}

// NewTreasury returns an empty treasury.
func NewTreasury() *Treasury {
	return &Treasury{
		balance: new(uint256.Int),
		refunds: make(map[string]*uint256.Int),
		payouts: make(map[string]*uint256.Int),
	}
}

// Settle collects price out of tendered and records the rest as a refund
// owed to payer. Nothing changes if the payment is short or the balance
// would overflow.
func (t *Treasury) Settle(payer string, price, tendered *uint256.Int) (Receipt, error) {
	if err := Check(price, tendered); err != nil {
		return Receipt{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	next, overflow := new(uint256.Int).AddOverflow(t.balance, price)
	if overflow {
		return Receipt{}, ErrBalanceOverflow
	}
	refund := new(uint256.Int).Sub(tendered, price)

	t.balance = next
	if !refund.IsZero() {
		credit(t.refunds, payer, refund)
	}

	return Receipt{
		Payer:     payer,
		Collected: new(uint256.Int).Set(price),
		Refund:    refund,
	}, nil
}

// Balance returns the collected, unwithdrawn amount.
func (t *Treasury) Balance() *uint256.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return new(uint256.Int).Set(t.balance)
}

// RefundOwed returns the total refund recorded for payer.
func (t *Treasury) RefundOwed(payer string) *uint256.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return amountOf(t.refunds, payer)
}

// PaidTo returns the total withdrawn to recipient.
func (t *Treasury) PaidTo(recipient string) *uint256.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return amountOf(t.payouts, recipient)
}

// Withdraw empties the treasury into to and returns what was released.
func (t *Treasury) Withdraw(to string) *uint256.Int {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := t.balance
	t.balance = new(uint256.Int)
	if !out.IsZero() {
		credit(t.payouts, to, out)
	}
	return new(uint256.Int).Set(out)
}

// credit adds v to m[addr], saturating at the uint256 maximum.
func credit(m map[string]*uint256.Int, addr string, v *uint256.Int) {
	cur, ok := m[addr]
	if !ok {
		cur = new(uint256.Int)
	}
	if _, overflow := cur.AddOverflow(cur, v); overflow {
		cur.SetAllOne()
	}
	m[addr] = cur
}

func amountOf(m map[string]*uint256.Int, addr string) *uint256.Int {
	if v, ok := m[addr]; ok {
		return new(uint256.Int).Set(v)
	}
	return new(uint256.Int)
}
