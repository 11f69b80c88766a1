package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/clipstream/backend/internal/db"
	"github.com/clipstream/backend/internal/models"
)

// PostgresLikeRepository provides PostgreSQL-backed persistence for likes.
type PostgresLikeRepository struct {
	pool db.Pool
}

// NewPostgresLikeRepository constructs a like repository backed by PostgreSQL.
func NewPostgresLikeRepository(pool db.Pool) *PostgresLikeRepository {
	return &PostgresLikeRepository{pool: pool}
}

var likeTargetColumns = map[models.LikeTarget]string{
	models.LikeTargetVideo:   "video_id",
	models.LikeTargetComment: "comment_id",
	models.LikeTargetTweet:   "tweet_id",
}

// Toggle removes the like when present, otherwise creates it. The unique
// index on (target, liked_by) makes racing toggles converge: a lost insert
// race reads back as "already liked".
func (r *PostgresLikeRepository) Toggle(ctx context.Context, like models.Like) (bool, error) {
	target, targetID := like.Target()
	column, ok := likeTargetColumns[target]
	if !ok || targetID == "" || like.LikedBy == "" {
		return false, errors.New("like must reference exactly one target and a user")
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx,
		`DELETE FROM likes WHERE `+column+` = $1 AND liked_by = $2`,
		targetID, like.LikedBy)
	if err != nil {
		return false, fmt.Errorf("delete like: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}

	createdAt := like.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	tag, err = conn.Exec(ctx,
		`INSERT INTO likes (id, `+column+`, liked_by, created_at)
         VALUES ($1, $2, $3, $4)
         ON CONFLICT (`+column+`, liked_by) WHERE `+column+` IS NOT NULL DO NOTHING`,
		like.ID, targetID, like.LikedBy, createdAt)
	if err != nil {
		if mapped := mapPgError(err); errors.Is(mapped, ErrInvalidReference) {
			return false, ErrInvalidReference
		}
		return false, fmt.Errorf("insert like: %w", err)
	}

	// Zero rows affected means a concurrent request inserted first; the
	// target is liked either way.
	_ = tag
	return true, nil
}

// CountForVideo returns the number of likes on a video.
func (r *PostgresLikeRepository) CountForVideo(ctx context.Context, videoID string) (int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var count int64
	if err := conn.QueryRow(ctx, `SELECT COUNT(*) FROM likes WHERE video_id = $1`, videoID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}

	return count, nil
}

// Exists reports whether the user has liked the target.
func (r *PostgresLikeRepository) Exists(ctx context.Context, target models.LikeTarget, targetID, userID string) (bool, error) {
	column, ok := likeTargetColumns[target]
	if !ok {
		return false, fmt.Errorf("unknown like target %q", target)
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var exists bool
	err = conn.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM likes WHERE `+column+` = $1 AND liked_by = $2)`,
		targetID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check like: %w", err)
	}

	return exists, nil
}

// ListLikedVideos returns the videos a user has liked, newest like first.
func (r *PostgresLikeRepository) ListLikedVideos(ctx context.Context, userID string) ([]models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT v.id, v.owner_id, v.title, v.description, v.video_url, v.thumbnail_url,
               v.duration_seconds, v.view_count, v.is_published, v.created_at, v.updated_at
        FROM likes l
        JOIN videos v ON v.id = l.video_id
        WHERE l.liked_by = $1 AND l.video_id IS NOT NULL
        ORDER BY l.created_at DESC
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("query liked videos: %w", err)
	}
	defer rows.Close()

	return scanVideos(rows)
}

// PostgresSubscriptionRepository provides PostgreSQL-backed persistence for subscriptions.
type PostgresSubscriptionRepository struct {
	pool db.Pool
}

// NewPostgresSubscriptionRepository constructs a subscription repository backed by PostgreSQL.
func NewPostgresSubscriptionRepository(pool db.Pool) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{pool: pool}
}

// Toggle removes the subscription when present, otherwise creates it. The
// unique index on (channel_id, subscriber_id) makes racing toggles converge.
func (r *PostgresSubscriptionRepository) Toggle(ctx context.Context, sub models.Subscription) (bool, error) {
	if sub.ChannelID == "" || sub.SubscriberID == "" {
		return false, errors.New("subscription requires channel and subscriber")
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM subscriptions
        WHERE channel_id = $1 AND subscriber_id = $2
    `, sub.ChannelID, sub.SubscriberID)
	if err != nil {
		return false, fmt.Errorf("delete subscription: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}

	createdAt := sub.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = conn.Exec(ctx, `
        INSERT INTO subscriptions (id, channel_id, subscriber_id, created_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (channel_id, subscriber_id) DO NOTHING
    `, sub.ID, sub.ChannelID, sub.SubscriberID, createdAt)
	if err != nil {
		if mapped := mapPgError(err); errors.Is(mapped, ErrInvalidReference) {
			return false, ErrInvalidReference
		}
		return false, fmt.Errorf("insert subscription: %w", err)
	}

	return true, nil
}

// CountSubscribers returns how many users subscribe to the channel.
func (r *PostgresSubscriptionRepository) CountSubscribers(ctx context.Context, channelID string) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM subscriptions WHERE channel_id = $1`, channelID)
}

// CountSubscriptions returns how many channels the user subscribes to.
func (r *PostgresSubscriptionRepository) CountSubscriptions(ctx context.Context, subscriberID string) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM subscriptions WHERE subscriber_id = $1`, subscriberID)
}

func (r *PostgresSubscriptionRepository) count(ctx context.Context, query, arg string) (int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var count int64
	if err := conn.QueryRow(ctx, query, arg).Scan(&count); err != nil {
		return 0, fmt.Errorf("count subscriptions: %w", err)
	}

	return count, nil
}

// IsSubscribed reports whether subscriberID follows channelID.
func (r *PostgresSubscriptionRepository) IsSubscribed(ctx context.Context, channelID, subscriberID string) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var exists bool
	err = conn.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM subscriptions
            WHERE channel_id = $1 AND subscriber_id = $2
        )
    `, channelID, subscriberID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check subscription: %w", err)
	}

	return exists, nil
}

// ListSubscribers returns trimmed profiles of users subscribed to the channel.
func (r *PostgresSubscriptionRepository) ListSubscribers(ctx context.Context, channelID string) ([]models.OwnerProfile, error) {
	return r.listProfiles(ctx, `
        SELECT u.username, u.full_name, u.avatar_url, u.created_at, u.updated_at
        FROM subscriptions s
        JOIN users u ON u.id = s.subscriber_id
        WHERE s.channel_id = $1
        ORDER BY s.created_at DESC
    `, channelID)
}

// ListSubscribedChannels returns trimmed profiles of channels the user follows.
func (r *PostgresSubscriptionRepository) ListSubscribedChannels(ctx context.Context, subscriberID string) ([]models.OwnerProfile, error) {
	return r.listProfiles(ctx, `
        SELECT u.username, u.full_name, u.avatar_url, u.created_at, u.updated_at
        FROM subscriptions s
        JOIN users u ON u.id = s.channel_id
        WHERE s.subscriber_id = $1
        ORDER BY s.created_at DESC
    `, subscriberID)
}

func (r *PostgresSubscriptionRepository) listProfiles(ctx context.Context, query, arg string) ([]models.OwnerProfile, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("query subscription profiles: %w", err)
	}
	defer rows.Close()

	var profiles []models.OwnerProfile
	for rows.Next() {
		var profile models.OwnerProfile
		if err := rows.Scan(&profile.Username, &profile.FullName, &profile.AvatarURL,
			&profile.CreatedAt, &profile.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan subscription profile: %w", err)
		}
		profiles = append(profiles, profile)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscription profiles: %w", err)
	}

	return profiles, nil
}
