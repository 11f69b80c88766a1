package repositories

import (
	"context"

	"github.com/clipstream/backend/internal/models"
)

// UserRepository defines the data access contract for users.
type UserRepository interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	FindByLogin(ctx context.Context, usernameOrEmail string) (models.User, error)
	Update(ctx context.Context, user models.User) error
	SetRefreshTokenHash(ctx context.Context, id, hash string) error
	Delete(ctx context.Context, id string) error
}

// WatchHistoryRepository records which videos a user has watched.
type WatchHistoryRepository interface {
	Append(ctx context.Context, userID, videoID string) error
	ListForUser(ctx context.Context, userID string) ([]models.Video, error)
}
