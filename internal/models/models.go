package models

import "time"

// User represents an account within the ClipStream platform. A user doubles
// as a channel once they publish videos.
type User struct {
	ID               string    `json:"id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	FullName         string    `json:"fullName"`
	PasswordHash     string    `json:"-"`
	AvatarURL        string    `json:"avatarUrl"`
	CoverImageURL    string    `json:"coverImageUrl,omitempty"`
	RefreshTokenHash string    `json:"-"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Video is a published piece of content owned by exactly one user.
type Video struct {
	ID              string    `json:"id"`
	OwnerID         string    `json:"ownerId"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	VideoURL        string    `json:"videoUrl"`
	ThumbnailURL    string    `json:"thumbnailUrl"`
	DurationSeconds float64   `json:"durationSeconds"`
	ViewCount       int64     `json:"viewCount"`
	IsPublished     bool      `json:"isPublished"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Comment is user-authored text attached to a video.
type Comment struct {
	ID        string    `json:"id"`
	VideoID   string    `json:"videoId"`
	AuthorID  string    `json:"authorId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LikeTarget names the kind of entity a like points at.
type LikeTarget string

const (
	LikeTargetVideo   LikeTarget = "video"
	LikeTargetComment LikeTarget = "comment"
	LikeTargetTweet   LikeTarget = "tweet"
)

// Like records that a user liked exactly one target entity. Exactly one of
// VideoID, CommentID and TweetID is non-empty.
type Like struct {
	ID        string    `json:"id"`
	VideoID   string    `json:"videoId,omitempty"`
	CommentID string    `json:"commentId,omitempty"`
	TweetID   string    `json:"tweetId,omitempty"`
	LikedBy   string    `json:"likedBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// Target reports which entity kind the like points at and its id.
func (l Like) Target() (LikeTarget, string) {
	switch {
	case l.VideoID != "":
		return LikeTargetVideo, l.VideoID
	case l.CommentID != "":
		return LikeTargetComment, l.CommentID
	default:
		return LikeTargetTweet, l.TweetID
	}
}

// Subscription records that SubscriberID follows the channel of ChannelID.
type Subscription struct {
	ID           string    `json:"id"`
	ChannelID    string    `json:"channelId"`
	SubscriberID string    `json:"subscriberId"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Playlist groups an ordered set of videos under a per-owner unique name.
type Playlist struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     string    `json:"ownerId"`
	VideoIDs    []string  `json:"videoIds"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Tweet is a short text post on a user's channel page.
type Tweet struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// OwnerProfile is the trimmed owner record embedded in aggregated views.
type OwnerProfile struct {
	Username  string    `json:"username"`
	FullName  string    `json:"fullName"`
	AvatarURL string    `json:"avatarUrl"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ChannelProfile is the aggregated channel view returned for a username.
type ChannelProfile struct {
	FullName           string `json:"fullName"`
	Username           string `json:"username"`
	AvatarURL          string `json:"avatarUrl"`
	CoverImageURL      string `json:"coverImageUrl,omitempty"`
	Email              string `json:"email"`
	SubscriberCount    int64  `json:"subscriberCount"`
	SubscribedToCount  int64  `json:"subscribedToCount"`
	ViewerIsSubscribed bool   `json:"viewerIsSubscribed"`
}

// VideoDetail merges a video with its engagement counters and the viewer's
// relationship flags.
type VideoDetail struct {
	Video
	Owner                     OwnerProfile `json:"owner"`
	TotalLikes                int64        `json:"totalLikes"`
	TotalComments             int64        `json:"totalComments"`
	OwnerSubscriberCount      int64        `json:"ownerSubscriberCount"`
	ViewerIsSubscribedToOwner bool         `json:"viewerIsSubscribedToOwner"`
	ViewerHasLiked            bool         `json:"viewerHasLiked"`
}

// SessionTokens groups the bearer credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}
