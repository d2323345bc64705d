package supplier

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/georgemunganga/supplyhub/internal/platform/apperr"
)

var ErrContactNotFound = fmt.Errorf("supplier contact %w", apperr.ErrNotFound)

// Contact is a person at a supplier. A supplier may flag any number of
// contacts as primary.
type Contact struct {
	ID         uuid.UUID `json:"id"`
	SupplierID uuid.UUID `json:"supplier_id"`
	Name       string    `json:"name"`
	Position   string    `json:"position,omitempty"`
	Email      string    `json:"email,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	IsPrimary  bool      `json:"is_primary"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ContactInput carries the editable contact fields.
type ContactInput struct {
	Name      string `json:"name"`
	Position  string `json:"position,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	IsPrimary bool   `json:"is_primary,omitempty"`
}

func (in ContactInput) check() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: contact name is required", ErrValidation)
	}
	if in.Email != "" {
		if _, err := mail.ParseAddress(in.Email); err != nil {
			return fmt.Errorf("%w: invalid contact email %q", ErrValidation, in.Email)
		}
	}
	return nil
}

// NewContact validates in and returns a contact belonging to supplierID.
func NewContact(supplierID uuid.UUID, in ContactInput) (*Contact, error) {
	if err := in.check(); err != nil {
		return nil, err
	}
	return &Contact{
		ID:         uuid.New(),
		SupplierID: supplierID,
		Name:       strings.TrimSpace(in.Name),
		Position:   in.Position,
		Email:      in.Email,
		Phone:      in.Phone,
		IsPrimary:  in.IsPrimary,
	}, nil
}

// Update replaces the editable fields except the primary flag.
func (c *Contact) Update(in ContactInput) error {
	if err := in.check(); err != nil {
		return err
	}
	c.Name = strings.TrimSpace(in.Name)
	c.Position = in.Position
	c.Email = in.Email
	c.Phone = in.Phone
	return nil
}

// MakePrimary flags the contact as primary. Other contacts of the same
// supplier keep their flags.
func (c *Contact) MakePrimary() { c.IsPrimary = true }

// RemovePrimary clears the primary flag.
func (c *Contact) RemovePrimary() { c.IsPrimary = false }

// Touch stamps the update time; repositories call it before writing.
func (c *Contact) Touch(now time.Time) {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
}
