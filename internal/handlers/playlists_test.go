package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/clipstream/backend/internal/models"
	"github.com/clipstream/backend/internal/repositories"
)

type fakePlaylists struct {
	byID map[string]models.Playlist
}

func newFakePlaylists(playlists ...models.Playlist) *fakePlaylists {
	f := &fakePlaylists{byID: make(map[string]models.Playlist)}
	for _, playlist := range playlists {
		f.byID[playlist.ID] = playlist
	}
	return f
}

func (f *fakePlaylists) Create(_ context.Context, playlist models.Playlist) error {
	for _, existing := range f.byID {
		if existing.OwnerID == playlist.OwnerID && strings.EqualFold(existing.Name, playlist.Name) {
			return repositories.ErrConflict
		}
	}
	f.byID[playlist.ID] = playlist
	return nil
}

func (f *fakePlaylists) FindByID(_ context.Context, id string) (models.Playlist, error) {
	playlist, ok := f.byID[id]
	if !ok {
		return models.Playlist{}, repositories.ErrNotFound
	}
	return playlist, nil
}

func (f *fakePlaylists) ListForOwner(_ context.Context, ownerID string) ([]models.Playlist, error) {
	var out []models.Playlist
	for _, playlist := range f.byID {
		if playlist.OwnerID == ownerID {
			out = append(out, playlist)
		}
	}
	return out, nil
}

func (f *fakePlaylists) Update(_ context.Context, playlist models.Playlist) error {
	if _, ok := f.byID[playlist.ID]; !ok {
		return repositories.ErrNotFound
	}
	f.byID[playlist.ID] = playlist
	return nil
}

func (f *fakePlaylists) AddVideo(_ context.Context, playlistID, videoID string) error {
	playlist, ok := f.byID[playlistID]
	if !ok {
		return repositories.ErrNotFound
	}
	if slices.Contains(playlist.VideoIDs, videoID) {
		return repositories.ErrConflict
	}
	playlist.VideoIDs = append(playlist.VideoIDs, videoID)
	f.byID[playlistID] = playlist
	return nil
}

func (f *fakePlaylists) RemoveVideo(_ context.Context, playlistID, videoID string) error {
	playlist, ok := f.byID[playlistID]
	if !ok {
		return repositories.ErrNotFound
	}
	index := slices.Index(playlist.VideoIDs, videoID)
	if index < 0 {
		return repositories.ErrNotFound
	}
	playlist.VideoIDs = slices.Delete(playlist.VideoIDs, index, index+1)
	f.byID[playlistID] = playlist
	return nil
}

func (f *fakePlaylists) Delete(_ context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func newPlaylistHandler(playlists *fakePlaylists, sessions *fakeSessions) PlaylistHandler {
	return PlaylistHandler{Playlists: playlists, Sessions: sessions}
}

func TestCreatePlaylist(t *testing.T) {
	playlists := newFakePlaylists()
	handler := newPlaylistHandler(playlists, newFakeSessions(map[string]string{"tok": "u1"}))

	req := asBearer(httptest.NewRequest(http.MethodPost, "/api/v1/playlists",
		strings.NewReader(`{"name":"Favorites","description":"the good ones"}`)), "tok")
	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}

	// Same name for the same owner conflicts, case-insensitively.
	req = asBearer(httptest.NewRequest(http.MethodPost, "/api/v1/playlists",
		strings.NewReader(`{"name":"favorites"}`)), "tok")
	rec = httptest.NewRecorder()
	handler.Create(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}
}

func TestDeleteMissingPlaylist(t *testing.T) {
	handler := newPlaylistHandler(newFakePlaylists(), newFakeSessions(map[string]string{"tok": "u1"}))

	req := asBearer(httptest.NewRequest(http.MethodDelete, "/api/v1/playlists/missing", nil), "tok")
	req.SetPathValue("id", "missing")
	rec := httptest.NewRecorder()
	handler.Delete(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}

func TestPlaylistOwnershipEnforced(t *testing.T) {
	playlists := newFakePlaylists(models.Playlist{ID: "p1", Name: "Mine", OwnerID: "u1"})
	handler := newPlaylistHandler(playlists, newFakeSessions(map[string]string{"other": "u2"}))

	req := asBearer(httptest.NewRequest(http.MethodDelete, "/api/v1/playlists/p1", nil), "other")
	req.SetPathValue("id", "p1")
	rec := httptest.NewRecorder()
	handler.Delete(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rec.Code)
	}
}

func TestAddAndRemovePlaylistVideo(t *testing.T) {
	playlists := newFakePlaylists(models.Playlist{ID: "p1", Name: "Mine", OwnerID: "u1"})
	handler := newPlaylistHandler(playlists, newFakeSessions(map[string]string{"tok": "u1"}))

	add := func() *httptest.ResponseRecorder {
		req := asBearer(httptest.NewRequest(http.MethodPatch, "/api/v1/playlists/p1/videos/v1", nil), "tok")
		req.SetPathValue("id", "p1")
		req.SetPathValue("videoId", "v1")
		rec := httptest.NewRecorder()
		handler.AddVideo(rec, req)
		return rec
	}

	if rec := add(); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	// Adding the same video again conflicts.
	if rec := add(); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}

	req := asBearer(httptest.NewRequest(http.MethodDelete, "/api/v1/playlists/p1/videos/v1", nil), "tok")
	req.SetPathValue("id", "p1")
	req.SetPathValue("videoId", "v1")
	rec := httptest.NewRecorder()
	handler.RemoveVideo(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	stored, _ := playlists.FindByID(context.Background(), "p1")
	if len(stored.VideoIDs) != 0 {
		t.Fatalf("expected empty playlist, got %v", stored.VideoIDs)
	}
}

func TestUpdatePlaylist(t *testing.T) {
	playlists := newFakePlaylists(models.Playlist{ID: "p1", Name: "Mine", OwnerID: "u1"})
	handler := newPlaylistHandler(playlists, newFakeSessions(map[string]string{"tok": "u1"}))

	req := asBearer(httptest.NewRequest(http.MethodPatch, "/api/v1/playlists/p1",
		strings.NewReader(`{"name":"Renamed"}`)), "tok")
	req.SetPathValue("id", "p1")
	rec := httptest.NewRecorder()
	handler.Update(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	stored, _ := playlists.FindByID(context.Background(), "p1")
	if stored.Name != "Renamed" {
		t.Fatalf("expected renamed playlist, got %q", stored.Name)
	}
}
