package repositories

import (
	"context"

	"github.com/clipstream/backend/internal/models"
)

// CommentRepository defines data access for video comments.
type CommentRepository interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	ListForVideo(ctx context.Context, videoID string, page, limit int) ([]models.Comment, error)
	CountForVideo(ctx context.Context, videoID string) (int64, error)
	Update(ctx context.Context, comment models.Comment) error
	Delete(ctx context.Context, id string) error
}

// LikeRepository defines data access for likes on videos, comments and tweets.
type LikeRepository interface {
	// Toggle removes the like when present, otherwise creates it. It reports
	// whether the target is liked after the call.
	Toggle(ctx context.Context, like models.Like) (bool, error)
	CountForVideo(ctx context.Context, videoID string) (int64, error)
	Exists(ctx context.Context, target models.LikeTarget, targetID, userID string) (bool, error)
	ListLikedVideos(ctx context.Context, userID string) ([]models.Video, error)
}

// SubscriptionRepository defines data access for channel subscriptions.
type SubscriptionRepository interface {
	// Toggle removes the subscription when present, otherwise creates it. It
	// reports whether the subscription exists after the call.
	Toggle(ctx context.Context, sub models.Subscription) (bool, error)
	CountSubscribers(ctx context.Context, channelID string) (int64, error)
	CountSubscriptions(ctx context.Context, subscriberID string) (int64, error)
	IsSubscribed(ctx context.Context, channelID, subscriberID string) (bool, error)
	ListSubscribers(ctx context.Context, channelID string) ([]models.OwnerProfile, error)
	ListSubscribedChannels(ctx context.Context, subscriberID string) ([]models.OwnerProfile, error)
}

// PlaylistRepository defines data access for playlists and their entries.
type PlaylistRepository interface {
	Create(ctx context.Context, playlist models.Playlist) error
	FindByID(ctx context.Context, id string) (models.Playlist, error)
	ListForOwner(ctx context.Context, ownerID string) ([]models.Playlist, error)
	Update(ctx context.Context, playlist models.Playlist) error
	AddVideo(ctx context.Context, playlistID, videoID string) error
	RemoveVideo(ctx context.Context, playlistID, videoID string) error
	Delete(ctx context.Context, id string) error
}

// TweetRepository defines data access for channel tweets.
type TweetRepository interface {
	Create(ctx context.Context, tweet models.Tweet) error
	FindByID(ctx context.Context, id string) (models.Tweet, error)
	ListForOwner(ctx context.Context, ownerID string) ([]models.Tweet, error)
	Update(ctx context.Context, tweet models.Tweet) error
	Delete(ctx context.Context, id string) error
}
