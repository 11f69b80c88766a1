package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/clipstream/backend/internal/models"
)

// LikeHandler implements like toggles for videos, comments and tweets.
type LikeHandler struct {
	Likes    LikeStore
	Sessions TokenVerifier
}

// ToggleVideo handles POST /api/v1/likes/video/{id}/toggle.
func (h LikeHandler) ToggleVideo(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, models.Like{VideoID: r.PathValue("id")}, "video not found")
}

// ToggleComment handles POST /api/v1/likes/comment/{id}/toggle.
func (h LikeHandler) ToggleComment(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, models.Like{CommentID: r.PathValue("id")}, "comment not found")
}

// ToggleTweet handles POST /api/v1/likes/tweet/{id}/toggle.
func (h LikeHandler) ToggleTweet(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, models.Like{TweetID: r.PathValue("id")}, "tweet not found")
}

func (h LikeHandler) toggle(w http.ResponseWriter, r *http.Request, like models.Like, notFoundMessage string) {
	ctx := r.Context()

	userID, ok := requireViewer(w, r, h.Sessions)
	if !ok {
		return
	}

	like.ID = uuid.NewString()
	like.LikedBy = userID

	liked, err := h.Likes.Toggle(ctx, like)
	if err != nil {
		respondStoreError(ctx, w, err, notFoundMessage)
		return
	}

	message := "like removed"
	if liked {
		message = "like added"
	}
	respondData(ctx, w, http.StatusOK, map[string]bool{"liked": liked}, message)
}

// LikedVideos handles GET /api/v1/likes/videos.
func (h LikeHandler) LikedVideos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := requireViewer(w, r, h.Sessions)
	if !ok {
		return
	}

	videos, err := h.Likes.ListLikedVideos(ctx, userID)
	if err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}
	if videos == nil {
		videos = []models.Video{}
	}

	respondData(ctx, w, http.StatusOK, videos, "liked videos")
}
