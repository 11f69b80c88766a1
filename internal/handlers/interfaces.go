package handlers

import (
	"context"
	"io"

	"github.com/clipstream/backend/internal/media"
	"github.com/clipstream/backend/internal/models"
)

// UserStore captures the persistence operations required by the user handlers.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByLogin(ctx context.Context, usernameOrEmail string) (models.User, error)
	Update(ctx context.Context, user models.User) error
}

// SessionManager issues, refreshes and revokes authentication tokens.
type SessionManager interface {
	TokenVerifier
	Issue(ctx context.Context, userID string) (models.SessionTokens, error)
	Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error)
	Revoke(ctx context.Context, userID string) error
}

// VideoStore captures persistence for video publishing workflows.
type VideoStore interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	List(ctx context.Context, ownerID string, page, limit int) ([]models.Video, error)
	Update(ctx context.Context, video models.Video) error
	Delete(ctx context.Context, id string) error
}

// CommentStore captures persistence for comment workflows.
type CommentStore interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	ListForVideo(ctx context.Context, videoID string, page, limit int) ([]models.Comment, error)
	Update(ctx context.Context, comment models.Comment) error
	Delete(ctx context.Context, id string) error
}

// LikeStore captures the toggle and listing operations for likes.
type LikeStore interface {
	Toggle(ctx context.Context, like models.Like) (bool, error)
	ListLikedVideos(ctx context.Context, userID string) ([]models.Video, error)
}

// SubscriptionStore captures the toggle and listing operations for
// channel subscriptions.
type SubscriptionStore interface {
	Toggle(ctx context.Context, sub models.Subscription) (bool, error)
	ListSubscribers(ctx context.Context, channelID string) ([]models.OwnerProfile, error)
	ListSubscribedChannels(ctx context.Context, subscriberID string) ([]models.OwnerProfile, error)
}

// PlaylistStore captures persistence for playlist workflows.
type PlaylistStore interface {
	Create(ctx context.Context, playlist models.Playlist) error
	FindByID(ctx context.Context, id string) (models.Playlist, error)
	ListForOwner(ctx context.Context, ownerID string) ([]models.Playlist, error)
	Update(ctx context.Context, playlist models.Playlist) error
	AddVideo(ctx context.Context, playlistID, videoID string) error
	RemoveVideo(ctx context.Context, playlistID, videoID string) error
	Delete(ctx context.Context, id string) error
}

// TweetStore captures persistence for tweet workflows.
type TweetStore interface {
	Create(ctx context.Context, tweet models.Tweet) error
	FindByID(ctx context.Context, id string) (models.Tweet, error)
	ListForOwner(ctx context.Context, ownerID string) ([]models.Tweet, error)
	Update(ctx context.Context, tweet models.Tweet) error
	Delete(ctx context.Context, id string) error
}

// HistoryStore lists the videos a user has watched.
type HistoryStore interface {
	ListForUser(ctx context.Context, userID string) ([]models.Video, error)
}

// MediaUploader pushes uploaded files to the media host.
type MediaUploader interface {
	Upload(ctx context.Context, kind media.Kind, keyPrefix, filename string, r io.Reader) (media.Upload, error)
}

// ProfileComposer merges relation counters into aggregated views.
type ProfileComposer interface {
	ChannelProfile(ctx context.Context, targetUsername, viewerID string) (models.ChannelProfile, error)
	VideoDetail(ctx context.Context, videoID, viewerID string) (models.VideoDetail, error)
}

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
