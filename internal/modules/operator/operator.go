// Package operator manages the back-office accounts that sign in to the
// admin API.
package operator

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/georgemunganga/supplyhub/internal/platform/apperr"
)

var (
	ErrNotFound           = fmt.Errorf("operator %w", apperr.ErrNotFound)
	ErrDuplicate          = fmt.Errorf("operator email %w", apperr.ErrDuplicate)
	ErrValidation         = fmt.Errorf("operator %w", apperr.ErrValidation)
	ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", apperr.ErrUnauthorized)
)

const minPasswordLength = 8

// Role grants access levels to an operator.
type Role string

const (
	RoleOperator Role = "OPERATOR"
	RoleAdmin    Role = "ADMIN"
)

func (r Role) Valid() bool { return r == RoleOperator || r == RoleAdmin }

// Operator is a back-office account.
type Operator struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"display_name"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Input carries the fields of a new operator.
type Input struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	Role        Role   `json:"role,omitempty"`
}

// New validates in and hashes the password.
func New(in Input) (*Operator, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(in.Email))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid email %q", ErrValidation, in.Email)
	}
	if len(in.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
	}
	if strings.TrimSpace(in.DisplayName) == "" {
		return nil, fmt.Errorf("%w: display_name is required", ErrValidation)
	}
	role := in.Role
	if role == "" {
		role = RoleOperator
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return &Operator{
		ID:           uuid.New(),
		Email:        strings.ToLower(addr.Address),
		PasswordHash: string(hash),
		DisplayName:  strings.TrimSpace(in.DisplayName),
		Role:         role,
	}, nil
}

// CheckPassword returns ErrInvalidCredentials unless password matches.
func (o *Operator) CheckPassword(password string) error {
	if bcrypt.CompareHashAndPassword([]byte(o.PasswordHash), []byte(password)) != nil {
		return ErrInvalidCredentials
	}
	return nil
}

func (o *Operator) Touch(now time.Time) {
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now
}
