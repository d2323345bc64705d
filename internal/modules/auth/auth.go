// Package auth issues and verifies operator bearer tokens.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/georgemunganga/supplyhub/internal/modules/operator"
	"github.com/georgemunganga/supplyhub/internal/platform/apperr"
	"github.com/georgemunganga/supplyhub/internal/platform/logger"
)

// ErrInvalidToken is returned for missing, malformed or expired tokens.
var ErrInvalidToken = fmt.Errorf("invalid token: %w", apperr.ErrUnauthorized)

// Authenticator checks operator credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*operator.Operator, error)
}

// Token is a signed bearer token.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Claims are carried in every token.
type Claims struct {
	Role string `json:"role"`
	jwt.StandardClaims
}

// OperatorID returns the subject of the token.
func (c *Claims) OperatorID() (uuid.UUID, error) { return uuid.Parse(c.Subject) }

// Service defines the interface for authentication-related business logic.
type Service interface {
	Login(ctx context.Context, email, password string) (Token, error)
	Verify(token string) (*Claims, error)
}

type service struct {
	operators Authenticator
	secret    []byte
	ttl       time.Duration
	now       func() time.Time
}

// NewService creates a new auth service signing HS256 tokens with secret.
func NewService(operators Authenticator, secret string, ttl time.Duration) Service {
	return &service{operators: operators, secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *service) Login(ctx context.Context, email, password string) (Token, error) {
	op, err := s.operators.Authenticate(ctx, email, password)
	if err != nil {
		return Token{}, err
	}

	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := &Claims{
		Role: string(op.Role),
		StandardClaims: jwt.StandardClaims{
			Subject:   op.ID.String(),
			IssuedAt:  now.Unix(),
			ExpiresAt: expiresAt.Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}

	logger.FromContext(ctx).Info("operator logged in", zap.String("operator_id", op.ID.String()))
	return Token{AccessToken: signed, TokenType: "Bearer", ExpiresAt: expiresAt.UTC()}, nil
}

func (s *service) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if _, err := claims.OperatorID(); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
