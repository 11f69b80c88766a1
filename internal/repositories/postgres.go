package repositories

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// mapPgError translates constraint violations into repository sentinel errors.
// Any other error is returned unchanged so callers can wrap it with context.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return ErrConflict
		case pgForeignKeyViolation:
			return ErrInvalidReference
		case pgCheckViolation:
			return ErrInvalidReference
		}
	}
	return err
}

var (
	_ UserRepository         = (*PostgresUserRepository)(nil)
	_ WatchHistoryRepository = (*PostgresWatchHistoryRepository)(nil)
	_ VideoRepository        = (*PostgresVideoRepository)(nil)
	_ CommentRepository      = (*PostgresCommentRepository)(nil)
	_ LikeRepository         = (*PostgresLikeRepository)(nil)
	_ SubscriptionRepository = (*PostgresSubscriptionRepository)(nil)
	_ PlaylistRepository     = (*PostgresPlaylistRepository)(nil)
	_ TweetRepository        = (*PostgresTweetRepository)(nil)
)
