// Package contract manages supplier contracts and their amount history.
package contract

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/georgemunganga/supplyhub/internal/platform/apperr"
)

const DefaultCurrency = "CNY"

var (
	ErrNotFound   = fmt.Errorf("contract %w", apperr.ErrNotFound)
	ErrDuplicate  = fmt.Errorf("contract number %w", apperr.ErrDuplicate)
	ErrValidation = fmt.Errorf("contract %w", apperr.ErrValidation)
)

// Contract is an agreement with a supplier. The amount only changes
// through RecordAmountChange once the contract exists.
type Contract struct {
	ID         uuid.UUID       `json:"id"`
	SupplierID uuid.UUID       `json:"supplier_id"`
	Number     string          `json:"contract_number"`
	Title      string          `json:"title"`
	Type       Type            `json:"contract_type"`
	StartDate  time.Time       `json:"start_date"`
	EndDate    time.Time       `json:"end_date"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	SignedDate *time.Time      `json:"signed_date,omitempty"`
	Terms      string          `json:"terms,omitempty"`
	Remark     string          `json:"remark,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`

	status  Status
	changes []AmountChange
	// stored is the number of leading changes already persisted.
	stored int
}

// Input carries the fields supplied when creating or editing a contract.
// Amount is only read on creation.
type Input struct {
	SupplierID uuid.UUID       `json:"supplier_id"`
	Number     string          `json:"contract_number"`
	Title      string          `json:"title"`
	Type       Type            `json:"contract_type"`
	StartDate  time.Time       `json:"start_date"`
	EndDate    time.Time       `json:"end_date"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency,omitempty"`
	SignedDate *time.Time      `json:"signed_date,omitempty"`
	Terms      string          `json:"terms,omitempty"`
	Remark     string          `json:"remark,omitempty"`
}

func (in Input) check() error {
	switch {
	case in.SupplierID == uuid.Nil:
		return fmt.Errorf("%w: supplier_id is required", ErrValidation)
	case strings.TrimSpace(in.Number) == "":
		return fmt.Errorf("%w: contract_number is required", ErrValidation)
	case strings.TrimSpace(in.Title) == "":
		return fmt.Errorf("%w: title is required", ErrValidation)
	case !in.Type.Valid():
		return fmt.Errorf("%w: unknown contract_type %q", ErrValidation, in.Type)
	case in.StartDate.IsZero() || in.EndDate.IsZero():
		return fmt.Errorf("%w: start_date and end_date are required", ErrValidation)
	case in.EndDate.Before(in.StartDate):
		return fmt.Errorf("%w: end_date precedes start_date", ErrValidation)
	case in.Amount.IsNegative():
		return fmt.Errorf("%w: amount must not be negative", ErrValidation)
	case in.Currency != "" && len(in.Currency) != 3:
		return fmt.Errorf("%w: currency must be a 3-letter code", ErrValidation)
	}
	return nil
}

// New validates in and returns a DRAFT contract.
func New(in Input) (*Contract, error) {
	if err := in.check(); err != nil {
		return nil, err
	}
	c := &Contract{
		ID:         uuid.New(),
		SupplierID: in.SupplierID,
		Amount:     in.Amount.Round(2),
		Currency:   DefaultCurrency,
		status:     StatusDraft,
	}
	c.apply(in)
	return c, nil
}

// Update replaces the descriptive fields. Supplier and amount are kept.
func (c *Contract) Update(in Input) error {
	in.SupplierID = c.SupplierID
	in.Amount = c.Amount
	if err := in.check(); err != nil {
		return err
	}
	c.apply(in)
	return nil
}

func (c *Contract) apply(in Input) {
	c.Number = strings.TrimSpace(in.Number)
	c.Title = strings.TrimSpace(in.Title)
	c.Type = in.Type
	c.StartDate = in.StartDate
	c.EndDate = in.EndDate
	if in.Currency != "" {
		c.Currency = strings.ToUpper(in.Currency)
	}
	c.SignedDate = in.SignedDate
	c.Terms = in.Terms
	c.Remark = in.Remark
}

func (c *Contract) Status() Status { return c.status }

func (c *Contract) IsActive() bool { return c.status.IsActive() }

// SetStatus moves the contract to any known status.
func (c *Contract) SetStatus(s Status) error {
	if !s.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, s)
	}
	c.status = s
	return nil
}

func (c *Contract) Touch(now time.Time) {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
}

func (c *Contract) clone() *Contract {
	cp := *c
	cp.changes = c.AmountChanges()
	if c.SignedDate != nil {
		d := *c.SignedDate
		cp.SignedDate = &d
	}
	return &cp
}

func (c Contract) MarshalJSON() ([]byte, error) {
	type alias Contract
	return json.Marshal(struct {
		alias
		Status        Status         `json:"status"`
		StatusLabel   string         `json:"status_label"`
		TypeLabel     string         `json:"contract_type_label"`
		AmountChanges []AmountChange `json:"amount_changes"`
	}{alias(c), c.status, c.status.Label(), c.Type.Label(), c.AmountChanges()})
}
