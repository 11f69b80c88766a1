package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/clipstream/backend/internal/auth"
	"github.com/clipstream/backend/internal/config"
	"github.com/clipstream/backend/internal/db"
	"github.com/clipstream/backend/internal/handlers"
	"github.com/clipstream/backend/internal/media"
	"github.com/clipstream/backend/internal/middleware"
	"github.com/clipstream/backend/internal/profile"
	"github.com/clipstream/backend/internal/repositories"
)

// dependencies bundles the handler collaborators with the background workers
// the server owns and must drain on shutdown.
type dependencies struct {
	handlers handlers.Dependencies
	recorder *profile.Recorder
}

// buildDependencies wires together concrete implementations used by the HTTP handlers.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config, logger *slog.Logger) (dependencies, error) {
	users := repositories.NewPostgresUserRepository(pool)
	videos := repositories.NewPostgresVideoRepository(pool)
	comments := repositories.NewPostgresCommentRepository(pool)
	likes := repositories.NewPostgresLikeRepository(pool)
	subscriptions := repositories.NewPostgresSubscriptionRepository(pool)
	playlists := repositories.NewPostgresPlaylistRepository(pool)
	tweets := repositories.NewPostgresTweetRepository(pool)
	history := repositories.NewPostgresWatchHistoryRepository(pool)

	sessions := auth.NewManager(cfg.TokenSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, users)

	storage, err := media.NewS3Storage(ctx, cfg.ObjectStore)
	if err != nil {
		return dependencies{}, fmt.Errorf("configure object storage: %w", err)
	}
	prober := media.NewFFProbe(cfg.FFProbePath, cfg.UploadTimeout)
	uploader := media.NewUploader(storage, prober, cfg.UploadDir, cfg.UploadTimeout, logger)

	recorder := profile.NewRecorder(history, profile.RecorderConfig{
		QueueSize:    cfg.HistoryQueueSize,
		Workers:      cfg.HistoryWorkers,
		StoreTimeout: cfg.StoreTimeout,
	}, logger)

	composer := &profile.Composer{
		Users:         users,
		Videos:        videos,
		Likes:         likes,
		Comments:      comments,
		Subscriptions: subscriptions,
		History:       recorder,
	}

	authLimiter := middleware.NewIPRateLimiter(
		cfg.AuthRateLimit.Requests,
		cfg.AuthRateLimit.Window,
		cfg.AuthRateLimit.Burst,
		cfg.AuthRateLimit.TTL,
	)

	return dependencies{
		handlers: handlers.Dependencies{
			Users:         users,
			Sessions:      sessions,
			Videos:        videos,
			Comments:      comments,
			Likes:         likes,
			Subscriptions: subscriptions,
			Playlists:     playlists,
			Tweets:        tweets,
			History:       history,
			Media:         uploader,
			Profiles:      composer,
			DB:            pinger{pool},
			AuthLimiter:   authLimiter,
		},
		recorder: recorder,
	}, nil
}

// pinger adapts the pool to the health handler's interface.
type pinger struct {
	pool db.Pool
}

func (p pinger) Ping(ctx context.Context) error {
	return db.Ping(ctx, p.pool)
}
