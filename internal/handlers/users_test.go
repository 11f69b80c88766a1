package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/clipstream/backend/internal/models"
	"github.com/clipstream/backend/internal/repositories"
)

type fakeUsers struct {
	byID map[string]models.User
}

func newFakeUsers(users ...models.User) *fakeUsers {
	f := &fakeUsers{byID: make(map[string]models.User)}
	for _, user := range users {
		f.byID[user.ID] = user
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, user models.User) error {
	for _, existing := range f.byID {
		if existing.Username == user.Username || existing.Email == user.Email {
			return repositories.ErrConflict
		}
	}
	f.byID[user.ID] = user
	return nil
}

func (f *fakeUsers) FindByID(_ context.Context, id string) (models.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

func (f *fakeUsers) FindByLogin(_ context.Context, identifier string) (models.User, error) {
	identifier = strings.ToLower(identifier)
	for _, user := range f.byID {
		if user.Username == identifier || user.Email == identifier {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (f *fakeUsers) Update(_ context.Context, user models.User) error {
	if _, ok := f.byID[user.ID]; !ok {
		return repositories.ErrNotFound
	}
	f.byID[user.ID] = user
	return nil
}

type fakeProfiles struct {
	channel      models.ChannelProfile
	detail       models.VideoDetail
	err          error
	lastViewerID string
}

func (f *fakeProfiles) ChannelProfile(_ context.Context, targetUsername, viewerID string) (models.ChannelProfile, error) {
	f.lastViewerID = viewerID
	if f.err != nil {
		return models.ChannelProfile{}, f.err
	}
	return f.channel, nil
}

func (f *fakeProfiles) VideoDetail(_ context.Context, videoID, viewerID string) (models.VideoDetail, error) {
	f.lastViewerID = viewerID
	if f.err != nil {
		return models.VideoDetail{}, f.err
	}
	return f.detail, nil
}

type fakeHistory struct {
	videos []models.Video
}

func (f *fakeHistory) ListForUser(context.Context, string) ([]models.Video, error) {
	return f.videos, nil
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return string(hashed)
}

func newUserHandler(users *fakeUsers, sessions *fakeSessions) UserHandler {
	return UserHandler{
		Users:    users,
		Sessions: sessions,
		Media:    &fakeMedia{},
		Profiles: &fakeProfiles{},
		History:  &fakeHistory{},
	}
}

func TestLoginSuccess(t *testing.T) {
	users := newFakeUsers(models.User{
		ID:           "u1",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: hashPassword(t, "correct horse"),
	})
	handler := newUserHandler(users, newFakeSessions(nil))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", strings.NewReader(`{"username":"alice","password":"correct horse"}`))
	rec := httptest.NewRecorder()
	handler.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}

	envelope := decodeEnvelope(t, rec)
	var resp loginResponse
	remarshal(t, envelope.Data, &resp)
	if resp.Tokens.AccessToken != "issued-access" {
		t.Fatalf("unexpected tokens: %+v", resp.Tokens)
	}
	if resp.User.ID != "u1" {
		t.Fatalf("unexpected user: %+v", resp.User)
	}

	cookies := rec.Result().Cookies()
	var names []string
	for _, cookie := range cookies {
		names = append(names, cookie.Name)
		if !cookie.HttpOnly {
			t.Fatalf("expected HttpOnly cookie %q", cookie.Name)
		}
	}
	if len(names) != 2 {
		t.Fatalf("expected access and refresh cookies, got %v", names)
	}
}

func TestLoginAcceptsEmail(t *testing.T) {
	users := newFakeUsers(models.User{
		ID:           "u1",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: hashPassword(t, "correct horse"),
	})
	handler := newUserHandler(users, newFakeSessions(nil))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", strings.NewReader(`{"email":"alice@example.com","password":"correct horse"}`))
	rec := httptest.NewRecorder()
	handler.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	users := newFakeUsers(models.User{
		ID:           "u1",
		Username:     "alice",
		PasswordHash: hashPassword(t, "correct horse"),
	})
	handler := newUserHandler(users, newFakeSessions(nil))

	cases := []string{
		`{"username":"alice","password":"wrong"}`,
		`{"username":"nobody","password":"correct horse"}`,
	}
	for _, body := range cases {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", strings.NewReader(body))
		rec := httptest.NewRecorder()
		handler.Login(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 for %s got %d", body, rec.Code)
		}
		envelope := decodeErrorEnvelope(t, rec)
		if envelope.Success {
			t.Fatalf("expected success=false, got %+v", envelope)
		}
	}
}

func multipartBody(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			t.Fatalf("write field %s: %v", name, err)
		}
	}
	for name, filename := range files {
		part, err := writer.CreateFormFile(name, filename)
		if err != nil {
			t.Fatalf("create form file %s: %v", name, err)
		}
		if _, err := part.Write([]byte("file-bytes")); err != nil {
			t.Fatalf("write form file %s: %v", name, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func TestRegisterCreatesUser(t *testing.T) {
	users := newFakeUsers()
	handler := newUserHandler(users, newFakeSessions(nil))

	body, contentType := multipartBody(t,
		map[string]string{
			"fullName": "Alice Example",
			"email":    "Alice@Example.com",
			"username": "Alice",
			"password": "correct horse",
		},
		map[string]string{"avatar": "avatar.png"},
	)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.Register(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}

	envelope := decodeEnvelope(t, rec)
	var created models.User
	remarshal(t, envelope.Data, &created)
	if created.Username != "alice" || created.Email != "alice@example.com" {
		t.Fatalf("expected case-folded identity, got %+v", created)
	}
	if created.AvatarURL == "" {
		t.Fatalf("expected avatar url to be set")
	}

	stored, err := users.FindByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("stored user: %v", err)
	}
	if stored.PasswordHash == "" || stored.PasswordHash == "correct horse" {
		t.Fatalf("expected hashed password, got %q", stored.PasswordHash)
	}
}

func TestRegisterRequiresAvatar(t *testing.T) {
	handler := newUserHandler(newFakeUsers(), newFakeSessions(nil))

	body, contentType := multipartBody(t, map[string]string{
		"fullName": "Alice Example",
		"email":    "alice@example.com",
		"username": "alice",
		"password": "correct horse",
	}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.Register(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestRegisterConflict(t *testing.T) {
	users := newFakeUsers(models.User{ID: "u1", Username: "alice", Email: "alice@example.com"})
	handler := newUserHandler(users, newFakeSessions(nil))

	body, contentType := multipartBody(t,
		map[string]string{
			"fullName": "Alice Example",
			"email":    "alice@example.com",
			"username": "alice",
			"password": "correct horse",
		},
		map[string]string{"avatar": "avatar.png"},
	)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.Register(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}
}

func TestMeRequiresAuth(t *testing.T) {
	users := newFakeUsers(models.User{ID: "u1", Username: "alice"})
	handler := newUserHandler(users, newFakeSessions(map[string]string{"tok": "u1"}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	rec := httptest.NewRecorder()
	handler.Me(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}

	req = asBearer(httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil), "tok")
	rec = httptest.NewRecorder()
	handler.Me(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	sessions := newFakeSessions(map[string]string{"tok": "u1"})
	handler := newUserHandler(newFakeUsers(models.User{ID: "u1"}), sessions)

	req := asBearer(httptest.NewRequest(http.MethodPost, "/api/v1/users/logout", nil), "tok")
	rec := httptest.NewRecorder()
	handler.Logout(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != "u1" {
		t.Fatalf("expected session revocation for u1, got %v", sessions.revoked)
	}

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Value != "" {
			t.Fatalf("expected cleared cookie %q", cookie.Name)
		}
	}
}

func TestChangePassword(t *testing.T) {
	users := newFakeUsers(models.User{
		ID:           "u1",
		Username:     "alice",
		PasswordHash: hashPassword(t, "old password"),
	})
	handler := newUserHandler(users, newFakeSessions(map[string]string{"tok": "u1"}))

	req := asBearer(httptest.NewRequest(http.MethodPost, "/api/v1/users/change-password",
		strings.NewReader(`{"oldPassword":"wrong","newPassword":"new password"}`)), "tok")
	rec := httptest.NewRecorder()
	handler.ChangePassword(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong old password got %d", rec.Code)
	}

	req = asBearer(httptest.NewRequest(http.MethodPost, "/api/v1/users/change-password",
		strings.NewReader(`{"oldPassword":"old password","newPassword":"new password"}`)), "tok")
	rec = httptest.NewRecorder()
	handler.ChangePassword(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}

	stored, _ := users.FindByID(context.Background(), "u1")
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("new password")) != nil {
		t.Fatalf("expected stored hash to match new password")
	}
}

func TestUpdateDetails(t *testing.T) {
	users := newFakeUsers(models.User{ID: "u1", Username: "alice", FullName: "Alice", Email: "alice@example.com"})
	handler := newUserHandler(users, newFakeSessions(map[string]string{"tok": "u1"}))

	req := asBearer(httptest.NewRequest(http.MethodPatch, "/api/v1/users/me",
		strings.NewReader(`{"fullName":"Alice Smith"}`)), "tok")
	rec := httptest.NewRecorder()
	handler.UpdateDetails(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	stored, _ := users.FindByID(context.Background(), "u1")
	if stored.FullName != "Alice Smith" || stored.Email != "alice@example.com" {
		t.Fatalf("unexpected stored user %+v", stored)
	}
}

func TestChannelPassesViewerIdentity(t *testing.T) {
	profiles := &fakeProfiles{channel: models.ChannelProfile{Username: "alice"}}
	handler := newUserHandler(newFakeUsers(), newFakeSessions(map[string]string{"tok": "u2"}))
	handler.Profiles = profiles

	// Anonymous request: empty viewer id.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/channel/alice", nil)
	req.SetPathValue("username", "alice")
	rec := httptest.NewRecorder()
	handler.Channel(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if profiles.lastViewerID != "" {
		t.Fatalf("expected anonymous viewer, got %q", profiles.lastViewerID)
	}

	// Authenticated request: viewer id forwarded.
	req = asBearer(httptest.NewRequest(http.MethodGet, "/api/v1/users/channel/alice", nil), "tok")
	req.SetPathValue("username", "alice")
	rec = httptest.NewRecorder()
	handler.Channel(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if profiles.lastViewerID != "u2" {
		t.Fatalf("expected viewer u2, got %q", profiles.lastViewerID)
	}
}

func TestWatchHistoryRequiresAuth(t *testing.T) {
	handler := newUserHandler(newFakeUsers(), newFakeSessions(map[string]string{"tok": "u1"}))
	handler.History = &fakeHistory{videos: []models.Video{{ID: "v1", Title: "First"}}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me/history", nil)
	rec := httptest.NewRecorder()
	handler.WatchHistory(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}

	req = asBearer(httptest.NewRequest(http.MethodGet, "/api/v1/users/me/history", nil), "tok")
	rec = httptest.NewRecorder()
	handler.WatchHistory(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	envelope := decodeEnvelope(t, rec)
	var videos []models.Video
	remarshal(t, envelope.Data, &videos)
	if len(videos) != 1 || videos[0].ID != "v1" {
		t.Fatalf("unexpected history %v", videos)
	}
}
