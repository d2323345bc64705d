package contract

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AmountChange is one entry of a contract's amount history.
type AmountChange struct {
	Seq            int             `json:"seq"`
	ChangedAt      time.Time       `json:"changed_at"`
	PreviousAmount decimal.Decimal `json:"previous_amount"`
	NewAmount      decimal.Decimal `json:"new_amount"`
	Reason         string          `json:"reason"`
}

// RecordAmountChange appends an entry holding the current and new amounts,
// stamped at, and then sets the amount to newAmount.
func (c *Contract) RecordAmountChange(newAmount decimal.Decimal, reason string, at time.Time) (AmountChange, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return AmountChange{}, fmt.Errorf("%w: reason is required", ErrValidation)
	}
	if newAmount.IsNegative() {
		return AmountChange{}, fmt.Errorf("%w: amount must not be negative", ErrValidation)
	}

	change := AmountChange{
		Seq:            c.lastSeq() + 1,
		ChangedAt:      at.UTC(),
		PreviousAmount: c.Amount,
		NewAmount:      newAmount.Round(2),
		Reason:         reason,
	}
	c.changes = append(c.changes, change)
	c.Amount = change.NewAmount
	return change, nil
}

// AmountChanges returns a copy of the amount history, oldest first.
func (c *Contract) AmountChanges() []AmountChange {
	out := make([]AmountChange, len(c.changes))
	copy(out, c.changes)
	return out
}

// pendingChanges returns the entries recorded since the contract was loaded.
func (c *Contract) pendingChanges() []AmountChange {
	return c.changes[c.stored:]
}

// markStored records that every entry is persisted.
func (c *Contract) markStored() { c.stored = len(c.changes) }

func (c *Contract) lastSeq() int {
	if len(c.changes) == 0 {
		return 0
	}
	return c.changes[len(c.changes)-1].Seq
}
