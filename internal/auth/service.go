package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ovaphlow/pitchfork/service-seizure-risk-go/internal/config"
	"github.com/ovaphlow/pitchfork/service-seizure-risk-go/pkg/apperror"
	"github.com/ovaphlow/pitchfork/service-seizure-risk-go/pkg/utilities"
)

const tokenTypeBearer = "bearer"

// invalidCredentials is the only message callers ever see for a failed
// login or a rejected token.
const invalidCredentials = "invalid credentials"

// ErrHashNotConfigured is wrapped in the ConfigurationError returned when
// the admin password hash is empty.
var ErrHashNotConfigured = errors.New("admin password hash not configured")

// Service verifies the configured admin credential and issues and
// validates session tokens. It holds no mutable state.
type Service struct {
	cfg    *config.Config
	method jwt.SigningMethod
	key    []byte
	gate   *hashGate
	now    func() time.Time
	newID  func() string
}

type Option func(*Service)

// WithHasher replaces the default bcrypt hasher.
func WithHasher(h PasswordHasher) Option {
	return func(s *Service) { s.gate.hasher = h }
}

// WithClock sets the time source used for issuing and validating tokens.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService builds a Service from cfg. It fails with a ConfigurationError
// when the secret key is empty or the algorithm is not an HMAC method.
func NewService(cfg *config.Config, opts ...Option) (*Service, error) {
	if cfg.SecretKey == "" {
		return nil, apperror.NewConfigError("secret key is not set", nil)
	}
	method, ok := jwt.GetSigningMethod(cfg.Algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, apperror.NewConfigError(fmt.Sprintf("unsupported signing algorithm %q", cfg.Algorithm), nil)
	}
	s := &Service{
		cfg:    cfg,
		method: method,
		key:    []byte(cfg.SecretKey),
		gate:   newHashGate(BcryptHasher{Cost: DefaultCost}, cfg.HashWorkers),
		now:    time.Now,
		newID:  utilities.NewSnowflakeID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// HashPassword returns a salted one-way hash of plaintext.
func (s *Service) HashPassword(ctx context.Context, plaintext string) (string, error) {
	h, err := s.gate.hash(ctx, plaintext)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return h, nil
}

// VerifyPassword reports whether plaintext matches hash. The error is
// non-nil when ctx ends before a hash worker is free or when hash cannot
// be parsed (ErrInvalidHash).
func (s *Service) VerifyPassword(ctx context.Context, plaintext, hash string) (bool, error) {
	return s.gate.verify(ctx, hash, plaintext)
}

// VerifyCredential checks username and password against the configured
// admin identity and returns the identity on success. A wrong username
// still runs one hash comparison so both failures cost the same.
func (s *Service) VerifyCredential(ctx context.Context, username, password string) (string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.cfg.AdminUsername)) == 1
	if s.cfg.AdminPasswordHash == "" {
		if !userOK {
			return "", apperror.NewAuthError(invalidCredentials, nil)
		}
		return "", apperror.NewConfigError("admin password hash not configured", ErrHashNotConfigured)
	}
	ok, err := s.VerifyPassword(ctx, password, s.cfg.AdminPasswordHash)
	if errors.Is(err, ErrInvalidHash) {
		return "", apperror.NewConfigError("admin password hash is not a valid bcrypt hash", err)
	}
	if err != nil {
		return "", err
	}
	if !userOK || !ok {
		return "", apperror.NewAuthError(invalidCredentials, nil)
	}
	return s.cfg.AdminUsername, nil
}

// IssueToken signs a token for identity valid for ttl. A non-positive ttl
// uses the configured token lifetime.
func (s *Service) IssueToken(identity string, ttl time.Duration) (*Token, error) {
	if ttl <= 0 {
		ttl = s.cfg.AccessTokenTTL
	}
	now := s.now()
	// exp has second precision; round up so the token is never shorter than ttl
	exp := now.Add(ttl)
	if t := exp.Truncate(time.Second); t.Before(exp) {
		exp = t.Add(time.Second)
	}
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		ID:        s.newID(),
		Subject:   identity,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}}
	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.key)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Token{Value: signed, Subject: identity, ExpiresAt: exp}, nil
}

// ValidateToken verifies the signature and expiry of token and returns
// its subject. Every failure yields the same AuthenticationFailure so
// callers cannot tell which check rejected the token.
func (s *Service) ValidateToken(token string) (string, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return s.key, nil },
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
		jwt.WithStrictDecoding(),
	)
	if err != nil {
		return "", apperror.NewAuthError(invalidCredentials, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return "", apperror.NewAuthError(invalidCredentials, jwt.ErrTokenInvalidClaims)
	}
	return claims.Subject, nil
}

// Login verifies the credential and issues a token with the configured lifetime.
func (s *Service) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	identity, err := s.VerifyCredential(ctx, username, password)
	if err != nil {
		return nil, err
	}
	tok, err := s.IssueToken(identity, s.cfg.AccessTokenTTL)
	if err != nil {
		return nil, apperror.NewInternalError("token issuance failed", err)
	}
	return &TokenResponse{
		AccessToken: tok.Value,
		TokenType:   tokenTypeBearer,
		ExpiresIn:   int64(s.cfg.AccessTokenTTL / time.Second),
		Username:    identity,
	}, nil
}
