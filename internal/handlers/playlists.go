package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clipstream/backend/internal/models"
)

// PlaylistHandler implements playlist endpoints.
type PlaylistHandler struct {
	Playlists PlaylistStore
	Sessions  TokenVerifier
	NowFunc   func() time.Time
}

// Create handles POST /api/v1/playlists. The name must be unique per owner,
// comparing case-insensitively.
func (h PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ownerID, ok := requireViewer(w, r, h.Sessions)
	if !ok {
		return
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondError(ctx, w, http.StatusBadRequest, "name is required")
		return
	}

	now := h.now()
	playlist := models.Playlist{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: strings.TrimSpace(req.Description),
		OwnerID:     ownerID,
		VideoIDs:    []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.Playlists.Create(ctx, playlist); err != nil {
		respondStoreError(ctx, w, err, "playlist not found")
		return
	}

	respondData(ctx, w, http.StatusCreated, playlist, "playlist created")
}

// ListForUser handles GET /api/v1/playlists/user/{userId}.
func (h PlaylistHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, ok := requireViewer(w, r, h.Sessions); !ok {
		return
	}

	playlists, err := h.Playlists.ListForOwner(ctx, r.PathValue("userId"))
	if err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}
	if playlists == nil {
		playlists = []models.Playlist{}
	}

	respondData(ctx, w, http.StatusOK, playlists, "playlists")
}

// Get handles GET /api/v1/playlists/{id}.
func (h PlaylistHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, ok := requireViewer(w, r, h.Sessions); !ok {
		return
	}

	playlist, err := h.Playlists.FindByID(ctx, r.PathValue("id"))
	if err != nil {
		respondStoreError(ctx, w, err, "playlist not found")
		return
	}

	respondData(ctx, w, http.StatusOK, playlist, "playlist")
}

// Update handles PATCH /api/v1/playlists/{id}.
func (h PlaylistHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ownerID, ok := requireViewer(w, r, h.Sessions)
	if !ok {
		return
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	if req.Name == "" && req.Description == "" {
		respondError(ctx, w, http.StatusBadRequest, "nothing to update")
		return
	}

	playlist, err := h.Playlists.FindByID(ctx, r.PathValue("id"))
	if err != nil {
		respondStoreError(ctx, w, err, "playlist not found")
		return
	}
	if playlist.OwnerID != ownerID {
		respondError(ctx, w, http.StatusForbidden, "only the owner can modify this playlist")
		return
	}

	if req.Name != "" {
		playlist.Name = req.Name
	}
	if req.Description != "" {
		playlist.Description = req.Description
	}
	playlist.UpdatedAt = h.now()

	if err := h.Playlists.Update(ctx, playlist); err != nil {
		respondStoreError(ctx, w, err, "playlist not found")
		return
	}

	respondData(ctx, w, http.StatusOK, playlist, "playlist updated")
}

// Delete handles DELETE /api/v1/playlists/{id}. Entries are removed with the
// playlist; the videos themselves survive.
func (h PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ownerID, ok := requireViewer(w, r, h.Sessions)
	if !ok {
		return
	}

	playlist, err := h.Playlists.FindByID(ctx, r.PathValue("id"))
	if err != nil {
		respondStoreError(ctx, w, err, "playlist not found")
		return
	}
	if playlist.OwnerID != ownerID {
		respondError(ctx, w, http.StatusForbidden, "only the owner can delete this playlist")
		return
	}

	if err := h.Playlists.Delete(ctx, playlist.ID); err != nil {
		respondStoreError(ctx, w, err, "playlist not found")
		return
	}

	respondData(ctx, w, http.StatusOK, nil, "playlist deleted")
}

// AddVideo handles PATCH /api/v1/playlists/{id}/videos/{videoId}. Adding the
// same video twice is a conflict.
func (h PlaylistHandler) AddVideo(w http.ResponseWriter, r *http.Request) {
	h.mutateVideos(w, r, h.Playlists.AddVideo, "video added to playlist")
}

// RemoveVideo handles DELETE /api/v1/playlists/{id}/videos/{videoId}.
func (h PlaylistHandler) RemoveVideo(w http.ResponseWriter, r *http.Request) {
	h.mutateVideos(w, r, h.Playlists.RemoveVideo, "video removed from playlist")
}

func (h PlaylistHandler) mutateVideos(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, playlistID, videoID string) error, message string) {
	ctx := r.Context()

	ownerID, ok := requireViewer(w, r, h.Sessions)
	if !ok {
		return
	}

	playlist, err := h.Playlists.FindByID(ctx, r.PathValue("id"))
	if err != nil {
		respondStoreError(ctx, w, err, "playlist not found")
		return
	}
	if playlist.OwnerID != ownerID {
		respondError(ctx, w, http.StatusForbidden, "only the owner can modify this playlist")
		return
	}

	if err := op(ctx, playlist.ID, r.PathValue("videoId")); err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	playlist, err = h.Playlists.FindByID(ctx, playlist.ID)
	if err != nil {
		respondStoreError(ctx, w, err, "playlist not found")
		return
	}

	respondData(ctx, w, http.StatusOK, playlist, message)
}

func (h PlaylistHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
