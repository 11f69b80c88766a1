package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/clipstream/backend/internal/models"
)

type fakeTokenStore struct {
	users map[string]models.User
}

func newFakeTokenStore(ids ...string) *fakeTokenStore {
	s := &fakeTokenStore{users: make(map[string]models.User)}
	for _, id := range ids {
		s.users[id] = models.User{ID: id}
	}
	return s
}

func (s *fakeTokenStore) SetRefreshTokenHash(_ context.Context, id, hash string) error {
	user, ok := s.users[id]
	if !ok {
		return errors.New("user not found")
	}
	user.RefreshTokenHash = hash
	s.users[id] = user
	return nil
}

func (s *fakeTokenStore) FindByID(_ context.Context, id string) (models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return models.User{}, errors.New("user not found")
	}
	return user, nil
}

func TestManagerIssueAndVerify(t *testing.T) {
	store := newFakeTokenStore("user-1")
	manager := NewManager("test-secret", time.Minute, time.Hour, store)

	tokens, err := manager.Issue(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatalf("expected non-empty tokens: %+v", tokens)
	}

	userID, err := manager.Verify(tokens.AccessToken)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if userID != "user-1" {
		t.Fatalf("expected user-1 got %q", userID)
	}

	if store.users["user-1"].RefreshTokenHash != HashToken(tokens.RefreshToken) {
		t.Fatal("expected refresh token hash to be persisted")
	}
}

func TestManagerVerifyRejectsRefreshToken(t *testing.T) {
	manager := NewManager("test-secret", time.Minute, time.Hour, newFakeTokenStore("user-1"))

	tokens, err := manager.Issue(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := manager.Verify(tokens.RefreshToken); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid got %v", err)
	}
}

func TestManagerIssueValidation(t *testing.T) {
	manager := NewManager("test-secret", time.Minute, time.Hour, newFakeTokenStore())
	if _, err := manager.Issue(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty user id")
	}
}

func TestManagerRefreshRotates(t *testing.T) {
	store := newFakeTokenStore("user-1")
	manager := NewManager("test-secret", time.Minute, time.Hour, store)

	// Freeze time one second apart so the rotated token differs.
	base := time.Now().UTC()
	manager.NowFunc = func() time.Time { return base }

	tokens, err := manager.Issue(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	manager.NowFunc = func() time.Time { return base.Add(time.Second) }

	refreshed, err := manager.Refresh(context.Background(), tokens.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.RefreshToken == tokens.RefreshToken {
		t.Fatal("expected new refresh token")
	}

	// The previous token no longer matches the stored hash.
	if _, err := manager.Refresh(context.Background(), tokens.RefreshToken); !errors.Is(err, ErrTokenMismatch) {
		t.Fatalf("expected ErrTokenMismatch got %v", err)
	}
}

func TestManagerRefreshFailures(t *testing.T) {
	store := newFakeTokenStore("user-1")
	manager := NewManager("test-secret", time.Minute, time.Millisecond, store)

	if _, err := manager.Refresh(context.Background(), ""); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected token invalid got %v", err)
	}

	base := time.Now().UTC()
	manager.NowFunc = func() time.Time { return base }

	tokens, err := manager.Issue(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	manager.NowFunc = func() time.Time { return base.Add(time.Minute) }

	if _, err := manager.Refresh(context.Background(), tokens.RefreshToken); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected refresh expired got %v", err)
	}

	manager = NewManager("test-secret", time.Minute, time.Hour, store)
	tokens, err = manager.Issue(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := manager.Revoke(context.Background(), "user-1"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := manager.Refresh(context.Background(), tokens.RefreshToken); !errors.Is(err, ErrTokenMismatch) {
		t.Fatalf("expected mismatch after revoke got %v", err)
	}
}
