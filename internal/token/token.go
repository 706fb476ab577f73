// Package token issues and verifies the signed access and refresh tokens
// handed out at login.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Type distinguishes access tokens from refresh tokens.
type Type string

const (
	TypeAccess  Type = "access"
	TypeRefresh Type = "refresh"
)

var (
	ErrInvalidToken = errors.New("token is invalid")
	ErrExpiredToken = errors.New("token is expired")
	ErrWrongType    = errors.New("token has the wrong type")
)

// Config defines how tokens are signed and how long they live.
type Config struct {
	Secret     []byte
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Now        func() time.Time
}

// Pair is the credential set returned by a successful login.
type Pair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Claims captures the validated contents of a token.
type Claims struct {
	UserID    uint64
	Type      Type
	ID        string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type userClaims struct {
	jwt.RegisteredClaims
	UserID    uint64 `json:"user_id"`
	TokenType Type   `json:"token_type"`
}

// Manager signs and parses HS256 tokens.
type Manager struct {
	cfg Config
}

// NewManager validates cfg and returns a Manager.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("token secret is required")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("token lifetimes must be positive")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Manager{cfg: cfg}, nil
}

// IssuePair mints a fresh access and refresh token for userID.
func (m *Manager) IssuePair(userID uint64) (Pair, error) {
	access, err := m.Issue(userID, TypeAccess)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := m.Issue(userID, TypeRefresh)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Access: access, Refresh: refresh}, nil
}

// Issue mints a single token of the given type.
func (m *Manager) Issue(userID uint64, typ Type) (string, error) {
	ttl := m.cfg.AccessTTL
	if typ == TypeRefresh {
		ttl = m.cfg.RefreshTTL
	}

	now := m.cfg.Now()
	claims := userClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.cfg.Issuer,
			Subject:   strconv.FormatUint(userID, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:    userID,
		TokenType: typ,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", typ, err)
	}
	return signed, nil
}

// Parse verifies signature, issuer, expiry and type, and returns the claims.
func (m *Manager) Parse(raw string, want Type) (Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Claims{}, ErrInvalidToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.cfg.Now),
		jwt.WithExpirationRequired(),
	}
	if m.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.cfg.Issuer))
	}

	var parsed userClaims
	_, err := jwt.ParseWithClaims(raw, &parsed, func(*jwt.Token) (any, error) {
		return m.cfg.Secret, nil
	}, opts...)
	if err != nil {
		return Claims{}, mapJWTError(err)
	}

	if parsed.TokenType != want {
		return Claims{}, ErrWrongType
	}
	if parsed.UserID == 0 {
		return Claims{}, ErrInvalidToken
	}

	claims := Claims{
		UserID:    parsed.UserID,
		Type:      parsed.TokenType,
		ID:        parsed.ID,
		ExpiresAt: parsed.ExpiresAt.Time,
	}
	if parsed.IssuedAt != nil {
		claims.IssuedAt = parsed.IssuedAt.Time
	}
	return claims, nil
}

func mapJWTError(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return ErrExpiredToken
	}
	return fmt.Errorf("%w: %v", ErrInvalidToken, err)
}
