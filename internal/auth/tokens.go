package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/clipstream/backend/internal/models"
)

var (
	// ErrTokenInvalid indicates a token that fails signature or shape checks.
	ErrTokenInvalid = errors.New("token invalid")
	// ErrTokenExpired indicates a token past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenMismatch indicates a refresh token that verifies but does not
	// match the one persisted for the user, e.g. after rotation or logout.
	ErrTokenMismatch = errors.New("refresh token mismatch")
)

const (
	kindAccess  = "access"
	kindRefresh = "refresh"
)

// RefreshTokenStore persists the active refresh token hash on the user record.
type RefreshTokenStore interface {
	SetRefreshTokenHash(ctx context.Context, id, hash string) error
	FindByID(ctx context.Context, id string) (models.User, error)
}

type sessionClaims struct {
	Kind string `json:"kind"`
	jwt.RegisteredClaims
}

// Manager issues and validates signed access and refresh tokens. The refresh
// token hash lives on the user record, so a user has at most one active
// refresh token and logout invalidates it everywhere.
type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration

	store RefreshTokenStore

	// NowFunc overrides the time source in tests.
	NowFunc func() time.Time
}

// NewManager constructs a Manager that signs tokens with the provided secret.
func NewManager(secret string, accessTTL, refreshTTL time.Duration, store RefreshTokenStore) *Manager {
	if store == nil {
		panic("auth: refresh token store must not be nil")
	}
	return &Manager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		store:      store,
	}
}

// Issue creates a new pair of access and refresh tokens for the provided user
// identifier and persists the refresh token hash.
func (m *Manager) Issue(ctx context.Context, userID string) (models.SessionTokens, error) {
	if userID == "" {
		return models.SessionTokens{}, errors.New("user id must be provided")
	}

	now := m.now()

	accessToken, accessExpiry, err := m.sign(userID, kindAccess, now, m.accessTTL)
	if err != nil {
		return models.SessionTokens{}, err
	}

	refreshToken, refreshExpiry, err := m.sign(userID, kindRefresh, now, m.refreshTTL)
	if err != nil {
		return models.SessionTokens{}, err
	}

	if err := m.store.SetRefreshTokenHash(ctx, userID, HashToken(refreshToken)); err != nil {
		return models.SessionTokens{}, fmt.Errorf("persist refresh token: %w", err)
	}

	return models.SessionTokens{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExpiry,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshExpiry,
	}, nil
}

// Verify validates an access token and returns the user id it was issued to.
func (m *Manager) Verify(tokenString string) (string, error) {
	claims, err := m.parse(tokenString, kindAccess)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// Refresh exchanges a refresh token for a new session token pair. The
// presented token must verify and match the hash persisted for the user.
func (m *Manager) Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error) {
	claims, err := m.parse(refreshToken, kindRefresh)
	if err != nil {
		return models.SessionTokens{}, err
	}

	user, err := m.store.FindByID(ctx, claims.Subject)
	if err != nil {
		return models.SessionTokens{}, fmt.Errorf("load user for refresh: %w", err)
	}

	if user.RefreshTokenHash == "" || user.RefreshTokenHash != HashToken(refreshToken) {
		return models.SessionTokens{}, ErrTokenMismatch
	}

	return m.Issue(ctx, user.ID)
}

// Revoke clears the persisted refresh token for the user.
func (m *Manager) Revoke(ctx context.Context, userID string) error {
	return m.store.SetRefreshTokenHash(ctx, userID, "")
}

func (m *Manager) sign(userID, kind string, now time.Time, ttl time.Duration) (string, time.Time, error) {
	expiresAt := now.Add(ttl)
	claims := sessionClaims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", kind, err)
	}

	return token, expiresAt, nil
}

func (m *Manager) parse(tokenString, wantKind string) (*sessionClaims, error) {
	if tokenString == "" {
		return nil, ErrTokenInvalid
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	if !token.Valid || claims.Kind != wantKind || claims.Subject == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

func (m *Manager) now() time.Time {
	if m.NowFunc != nil {
		return m.NowFunc()
	}
	return time.Now().UTC()
}

// HashToken returns the hex sha256 digest persisted in place of raw tokens.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
