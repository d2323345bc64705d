package operator

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/georgemunganga/supplyhub/internal/platform/logger"
)

// Service defines the operator business logic.
type Service interface {
	Register(ctx context.Context, in Input) (*Operator, error)
	Get(ctx context.Context, id string) (*Operator, error)

	// Authenticate returns the operator whose email and password match.
	// Unknown emails and wrong passwords both yield ErrInvalidCredentials.
	Authenticate(ctx context.Context, email, password string) (*Operator, error)
}

type service struct {
	repo Repository
}

// NewService creates a new operator service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Register(ctx context.Context, in Input) (*Operator, error) {
	o, err := New(in)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("operator registered",
		zap.String("operator_id", o.ID.String()),
		zap.String("role", string(o.Role)))
	return o, nil
}

func (s *service) Get(ctx context.Context, id string) (*Operator, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid id %q", ErrValidation, id)
	}
	return s.repo.GetByID(ctx, parsed)
}

func (s *service) Authenticate(ctx context.Context, email, password string) (*Operator, error) {
	o, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := o.CheckPassword(password); err != nil {
		return nil, err
	}
	return o, nil
}
