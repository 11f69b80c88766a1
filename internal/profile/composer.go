package profile

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/clipstream/backend/internal/models"
)

// UserFinder resolves user records for aggregation.
type UserFinder interface {
	FindByUsername(ctx context.Context, username string) (models.User, error)
	FindByID(ctx context.Context, id string) (models.User, error)
}

// VideoSource resolves videos and records views.
type VideoSource interface {
	FindByID(ctx context.Context, id string) (models.Video, error)
	IncrementViewCount(ctx context.Context, id string) error
}

// LikeCounter answers like counts and membership for a video.
type LikeCounter interface {
	CountForVideo(ctx context.Context, videoID string) (int64, error)
	Exists(ctx context.Context, target models.LikeTarget, targetID, userID string) (bool, error)
}

// CommentCounter answers comment counts for a video.
type CommentCounter interface {
	CountForVideo(ctx context.Context, videoID string) (int64, error)
}

// SubscriptionCounter answers subscription counts and membership.
type SubscriptionCounter interface {
	CountSubscribers(ctx context.Context, channelID string) (int64, error)
	CountSubscriptions(ctx context.Context, subscriberID string) (int64, error)
	IsSubscribed(ctx context.Context, channelID, subscriberID string) (bool, error)
}

// HistoryRecorder accepts best-effort watch history appends.
type HistoryRecorder interface {
	Record(userID, videoID string)
}

// Composer fans out relation lookups for one target entity and merges the
// counters and relationship flags into a single view. Viewer identity is
// always an explicit parameter; the empty string means anonymous.
type Composer struct {
	Users         UserFinder
	Videos        VideoSource
	Likes         LikeCounter
	Comments      CommentCounter
	Subscriptions SubscriptionCounter
	History       HistoryRecorder
}

// ChannelProfile resolves the channel owner by case-folded username and
// cross-references the subscription relation in both directions.
func (c *Composer) ChannelProfile(ctx context.Context, targetUsername, viewerID string) (models.ChannelProfile, error) {
	target, err := c.Users.FindByUsername(ctx, targetUsername)
	if err != nil {
		return models.ChannelProfile{}, fmt.Errorf("resolve channel %q: %w", targetUsername, err)
	}

	var (
		subscriberCount   int64
		subscribedToCount int64
		viewerSubscribed  bool
	)

	// The three lookups share no state beyond the resolved target.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		subscriberCount, err = c.Subscriptions.CountSubscribers(gctx, target.ID)
		if err != nil {
			return fmt.Errorf("count subscribers: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		subscribedToCount, err = c.Subscriptions.CountSubscriptions(gctx, target.ID)
		if err != nil {
			return fmt.Errorf("count subscribed channels: %w", err)
		}
		return nil
	})
	if viewerID != "" {
		g.Go(func() error {
			var err error
			viewerSubscribed, err = c.Subscriptions.IsSubscribed(gctx, target.ID, viewerID)
			if err != nil {
				return fmt.Errorf("check viewer subscription: %w", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return models.ChannelProfile{}, err
	}

	return models.ChannelProfile{
		FullName:           target.FullName,
		Username:           target.Username,
		AvatarURL:          target.AvatarURL,
		CoverImageURL:      target.CoverImageURL,
		Email:              target.Email,
		SubscriberCount:    subscriberCount,
		SubscribedToCount:  subscribedToCount,
		ViewerIsSubscribed: viewerSubscribed,
	}, nil
}

// VideoDetail resolves the video, bumps its view counter, fans out the
// engagement lookups and merges the trimmed owner profile. For signed-in
// viewers the watch history append is handed to the recorder and never fails
// the read.
func (c *Composer) VideoDetail(ctx context.Context, videoID, viewerID string) (models.VideoDetail, error) {
	video, err := c.Videos.FindByID(ctx, videoID)
	if err != nil {
		return models.VideoDetail{}, fmt.Errorf("resolve video %q: %w", videoID, err)
	}

	if err := c.Videos.IncrementViewCount(ctx, videoID); err != nil {
		return models.VideoDetail{}, fmt.Errorf("increment view count: %w", err)
	}
	video.ViewCount++

	detail := models.VideoDetail{Video: video}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		detail.TotalLikes, err = c.Likes.CountForVideo(gctx, videoID)
		if err != nil {
			return fmt.Errorf("count likes: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		detail.TotalComments, err = c.Comments.CountForVideo(gctx, videoID)
		if err != nil {
			return fmt.Errorf("count comments: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		detail.OwnerSubscriberCount, err = c.Subscriptions.CountSubscribers(gctx, video.OwnerID)
		if err != nil {
			return fmt.Errorf("count owner subscribers: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		owner, err := c.Users.FindByID(gctx, video.OwnerID)
		if err != nil {
			return fmt.Errorf("resolve owner: %w", err)
		}
		detail.Owner = models.OwnerProfile{
			Username:  owner.Username,
			FullName:  owner.FullName,
			AvatarURL: owner.AvatarURL,
			CreatedAt: owner.CreatedAt,
			UpdatedAt: owner.UpdatedAt,
		}
		return nil
	})
	if viewerID != "" {
		g.Go(func() error {
			var err error
			detail.ViewerHasLiked, err = c.Likes.Exists(gctx, models.LikeTargetVideo, videoID, viewerID)
			if err != nil {
				return fmt.Errorf("check viewer like: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			var err error
			detail.ViewerIsSubscribedToOwner, err = c.Subscriptions.IsSubscribed(gctx, video.OwnerID, viewerID)
			if err != nil {
				return fmt.Errorf("check viewer subscription: %w", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return models.VideoDetail{}, err
	}

	if viewerID != "" && c.History != nil {
		c.History.Record(viewerID, videoID)
	}

	return detail, nil
}
