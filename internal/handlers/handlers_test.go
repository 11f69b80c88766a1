package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/clipstream/backend/internal/media"
	"github.com/clipstream/backend/internal/models"
)

// fakeSessions resolves bearer tokens through a static token -> user map.
type fakeSessions struct {
	tokens  map[string]string
	issued  models.SessionTokens
	revoked []string

	issueErr   error
	refreshErr error
}

func newFakeSessions(tokens map[string]string) *fakeSessions {
	if tokens == nil {
		tokens = make(map[string]string)
	}
	return &fakeSessions{
		tokens: tokens,
		issued: models.SessionTokens{
			AccessToken:      "issued-access",
			AccessExpiresAt:  time.Now().Add(15 * time.Minute),
			RefreshToken:     "issued-refresh",
			RefreshExpiresAt: time.Now().Add(7 * 24 * time.Hour),
		},
	}
}

func (s *fakeSessions) Verify(token string) (string, error) {
	userID, ok := s.tokens[token]
	if !ok {
		return "", errors.New("unknown token")
	}
	return userID, nil
}

func (s *fakeSessions) Issue(_ context.Context, userID string) (models.SessionTokens, error) {
	if s.issueErr != nil {
		return models.SessionTokens{}, s.issueErr
	}
	return s.issued, nil
}

func (s *fakeSessions) Refresh(_ context.Context, refreshToken string) (models.SessionTokens, error) {
	if s.refreshErr != nil {
		return models.SessionTokens{}, s.refreshErr
	}
	return s.issued, nil
}

func (s *fakeSessions) Revoke(_ context.Context, userID string) error {
	s.revoked = append(s.revoked, userID)
	return nil
}

// fakeMedia records uploads and hands back deterministic URLs.
type fakeMedia struct {
	uploads []string
	err     error
}

func (m *fakeMedia) Upload(_ context.Context, kind media.Kind, keyPrefix, filename string, r io.Reader) (media.Upload, error) {
	if m.err != nil {
		return media.Upload{}, m.err
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return media.Upload{}, err
	}
	key := keyPrefix + "/" + filename
	m.uploads = append(m.uploads, key)
	upload := media.Upload{URL: "https://cdn.example.com/" + key, Size: 1}
	if kind == media.KindVideo {
		upload.DurationSeconds = 120
	}
	return upload, nil
}

func asBearer(r *http.Request, token string) *http.Request {
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var envelope apiResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response envelope: %v", err)
	}
	return envelope
}

func decodeErrorEnvelope(t *testing.T, rec *httptest.ResponseRecorder) apiError {
	t.Helper()
	var envelope apiError
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return envelope
}

func remarshal(t *testing.T, data, dst any) {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal envelope data: %v", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		t.Fatalf("unmarshal envelope data: %v", err)
	}
}
