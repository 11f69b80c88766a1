package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clipstream/backend/internal/logging"
	"github.com/clipstream/backend/internal/media"
	"github.com/clipstream/backend/internal/models"
)

// VideoHandler implements video publishing and catalog endpoints.
type VideoHandler struct {
	Videos   VideoStore
	Media    MediaUploader
	Sessions TokenVerifier
	Profiles ProfileComposer
	NowFunc  func() time.Time
}

// Publish handles POST /api/v1/videos. The body is multipart: title and
// description fields plus the video file and its thumbnail.
func (h VideoHandler) Publish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	ownerID, ok := requireViewer(w, r, h.Sessions)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		logger.Warn("invalid publish payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "expected multipart form data")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))
	if title == "" {
		respondError(ctx, w, http.StatusBadRequest, "title is required")
		return
	}

	videoFile, videoHeader, err := r.FormFile("videoFile")
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, "video file is required")
		return
	}
	defer videoFile.Close()

	thumbFile, thumbHeader, err := r.FormFile("thumbnail")
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, "thumbnail is required")
		return
	}
	defer thumbFile.Close()

	videoUpload, err := h.Media.Upload(ctx, media.KindVideo, "videos", videoHeader.Filename, videoFile)
	if err != nil {
		logger.Error("upload video file", "error", err)
		respondStoreError(ctx, w, err, "video upload failed")
		return
	}

	thumbUpload, err := h.Media.Upload(ctx, media.KindImage, "thumbnails", thumbHeader.Filename, thumbFile)
	if err != nil {
		logger.Error("upload thumbnail", "error", err)
		respondStoreError(ctx, w, err, "thumbnail upload failed")
		return
	}

	now := h.now()
	video := models.Video{
		ID:              uuid.NewString(),
		OwnerID:         ownerID,
		Title:           title,
		Description:     description,
		VideoURL:        videoUpload.URL,
		ThumbnailURL:    thumbUpload.URL,
		DurationSeconds: videoUpload.DurationSeconds,
		IsPublished:     true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := h.Videos.Create(ctx, video); err != nil {
		logger.Error("create video", "error", err, "ownerId", ownerID)
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	respondData(ctx, w, http.StatusCreated, video, "video published")
}

// List handles GET /api/v1/videos. Only published videos are returned; the
// optional ownerId query parameter narrows the catalog to one channel.
func (h VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page, limit := parsePagination(r)
	ownerID := strings.TrimSpace(r.URL.Query().Get("ownerId"))

	videos, err := h.Videos.List(ctx, ownerID, page, limit)
	if err != nil {
		respondStoreError(ctx, w, err, "videos not found")
		return
	}
	if videos == nil {
		videos = []models.Video{}
	}

	respondData(ctx, w, http.StatusOK, videos, "videos")
}

// Detail handles GET /api/v1/videos/{id}. Each request counts as a view; for
// signed-in viewers the watch history is updated in the background.
func (h VideoHandler) Detail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	videoID := r.PathValue("id")
	viewer := viewerID(r, h.Sessions)

	detail, err := h.Profiles.VideoDetail(ctx, videoID, viewer)
	if err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	respondData(ctx, w, http.StatusOK, detail, "video detail")
}

// Update handles PATCH /api/v1/videos/{id}. Title and description can be
// changed; a multipart body may also carry a replacement thumbnail.
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	ownerID, ok := requireViewer(w, r, h.Sessions)
	if !ok {
		return
	}

	video, err := h.Videos.FindByID(ctx, r.PathValue("id"))
	if err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}
	if video.OwnerID != ownerID {
		respondError(ctx, w, http.StatusForbidden, "only the owner can modify this video")
		return
	}

	var title, description, thumbnailURL string

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			respondError(ctx, w, http.StatusBadRequest, "invalid multipart form data")
			return
		}
		title = strings.TrimSpace(r.FormValue("title"))
		description = strings.TrimSpace(r.FormValue("description"))

		if thumbFile, thumbHeader, err := r.FormFile("thumbnail"); err == nil {
			defer thumbFile.Close()
			upload, err := h.Media.Upload(ctx, media.KindImage, "thumbnails", thumbHeader.Filename, thumbFile)
			if err != nil {
				logger.Error("upload thumbnail", "error", err)
				respondStoreError(ctx, w, err, "thumbnail upload failed")
				return
			}
			thumbnailURL = upload.URL
		} else if !errors.Is(err, http.ErrMissingFile) {
			respondError(ctx, w, http.StatusBadRequest, "invalid thumbnail upload")
			return
		}
	} else {
		var req struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		}
		if err := decodeJSON(r, &req); err != nil {
			respondError(ctx, w, http.StatusBadRequest, "invalid request body")
			return
		}
		title = strings.TrimSpace(req.Title)
		description = strings.TrimSpace(req.Description)
	}

	if title == "" && description == "" && thumbnailURL == "" {
		respondError(ctx, w, http.StatusBadRequest, "nothing to update")
		return
	}

	if title != "" {
		video.Title = title
	}
	if description != "" {
		video.Description = description
	}
	if thumbnailURL != "" {
		video.ThumbnailURL = thumbnailURL
	}
	video.UpdatedAt = h.now()

	if err := h.Videos.Update(ctx, video); err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	respondData(ctx, w, http.StatusOK, video, "video updated")
}

// Delete handles DELETE /api/v1/videos/{id}. Comments, likes, playlist
// entries and history rows referencing the video go with it.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ownerID, ok := requireViewer(w, r, h.Sessions)
	if !ok {
		return
	}

	video, err := h.Videos.FindByID(ctx, r.PathValue("id"))
	if err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}
	if video.OwnerID != ownerID {
		respondError(ctx, w, http.StatusForbidden, "only the owner can delete this video")
		return
	}

	if err := h.Videos.Delete(ctx, video.ID); err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	respondData(ctx, w, http.StatusOK, nil, "video deleted")
}

// TogglePublish handles PATCH /api/v1/videos/{id}/toggle-publish.
func (h VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ownerID, ok := requireViewer(w, r, h.Sessions)
	if !ok {
		return
	}

	video, err := h.Videos.FindByID(ctx, r.PathValue("id"))
	if err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}
	if video.OwnerID != ownerID {
		respondError(ctx, w, http.StatusForbidden, "only the owner can modify this video")
		return
	}

	video.IsPublished = !video.IsPublished
	video.UpdatedAt = h.now()

	if err := h.Videos.Update(ctx, video); err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	respondData(ctx, w, http.StatusOK, video, "publish state toggled")
}

func (h VideoHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
