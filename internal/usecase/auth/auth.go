// Package auth verifies user credentials and issues access tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domain "store-api/internal/domain/user"
	pkgerrors "store-api/pkg/errors"
	"store-api/pkg/security"
)

// ErrRejected means the credentials did not match. Unknown email and wrong
// password are deliberately indistinguishable.
var ErrRejected = errors.New("credentials rejected")

// RejectedMessage is the only detail a caller ever sees for bad credentials.
const RejectedMessage = "incorrect username or password"

// defaultDummyHash is verified when the email is unknown so that both
// rejection paths take the same time. It is a bcrypt hash of a random string.
const defaultDummyHash = "$2a$12$C6UzMDM.H6dfI/f/IKcEeO5nNlQ3xZ0dV4CEi0p0d1Q/5v6F3S0yW"

// CredentialStore is the read side of the user store used for login.
type CredentialStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.Credentials, error)
}

// PasswordVerifier checks a plaintext password against a stored hash.
type PasswordVerifier interface {
	Verify(plaintext, hash string) (bool, error)
}

// TokenIssuer signs and verifies access tokens.
type TokenIssuer interface {
	Issue(claims security.AccessClaims, ttl time.Duration) (string, error)
	Verify(raw string) (*security.AccessClaims, error)
}

// Identity is an authenticated user.
type Identity struct {
	UserID uuid.UUID
	Email  string
}

// LoginRequest carries the form credentials. Username is the user's email.
type LoginRequest struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// TokenResponse is returned by a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Service authenticates users and issues tokens.
type Service struct {
	store    CredentialStore
	verifier PasswordVerifier
	issuer   TokenIssuer
	ttl      time.Duration
	dummy    string
	log      *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithDummyHash sets the hash verified for unknown emails. It should come
// from the same hasher as stored passwords so both paths cost the same.
func WithDummyHash(hash string) Option {
	return func(s *Service) {
		if hash != "" {
			s.dummy = hash
		}
	}
}

// New creates an auth Service. ttl is the lifetime of issued tokens.
func New(store CredentialStore, verifier PasswordVerifier, issuer TokenIssuer, ttl time.Duration, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		store:    store,
		verifier: verifier,
		issuer:   issuer,
		ttl:      ttl,
		dummy:    defaultDummyHash,
		log:      log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Authenticate checks email and password. It returns ErrRejected for bad
// credentials and any other error for a store or hash fault.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Identity, error) {
	creds, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			_, _ = s.verifier.Verify(password, s.dummy)
			return nil, ErrRejected
		}
		return nil, fmt.Errorf("failed to look up credentials: %w", err)
	}

	ok, err := s.verifier.Verify(password, creds.HashedPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password for user %s: %w", creds.ID, err)
	}
	if !ok {
		return nil, ErrRejected
	}

	return &Identity{UserID: creds.ID, Email: creds.Email}, nil
}

// Login authenticates the request and returns a bearer token with subject
// set to the user's email.
func (s *Service) Login(ctx context.Context, in LoginRequest) (*TokenResponse, error) {
	identity, err := s.Authenticate(ctx, in.Username, in.Password)
	if err != nil {
		if errors.Is(err, ErrRejected) {
			s.log.Info("login rejected", zap.String("username", in.Username))
			return nil, pkgerrors.NewUnauthorizedError(RejectedMessage)
		}
		s.log.Error("login failed", zap.String("username", in.Username), zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to authenticate user", err)
	}

	claims := security.AccessClaims{UserID: identity.UserID.String()}
	claims.Subject = identity.Email

	token, err := s.issuer.Issue(claims, s.ttl)
	if err != nil {
		s.log.Error("failed to issue token", zap.String("user_id", identity.UserID.String()), zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to issue token", err)
	}

	s.log.Info("login succeeded", zap.String("user_id", identity.UserID.String()))
	return &TokenResponse{AccessToken: token, TokenType: security.TokenTypeBearer}, nil
}

// VerifyToken validates a bearer token. Every failure is an
// UnauthorizedError; an expired token says so.
func (s *Service) VerifyToken(raw string) (*security.AccessClaims, error) {
	claims, err := s.issuer.Verify(raw)
	if err != nil {
		if errors.Is(err, security.ErrTokenExpired) {
			return nil, pkgerrors.NewUnauthorizedError("token has expired")
		}
		return nil, pkgerrors.NewUnauthorizedError("could not validate credentials")
	}
	return claims, nil
}
