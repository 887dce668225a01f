package storage

import (
	"context"

	"xvidbot/internal/domain"
)

// Repository defines the interface for per-user preference storage.
// This allows us to swap storage implementations without changing the
// handlers that read and write preferences.
type Repository interface {
	// GetQuality returns the user's quality preference, or domain.DefaultQuality
	// when the user never set one.
	GetQuality(ctx context.Context, userID int64) (domain.Quality, error)

	// SetQuality stores the user's quality preference.
	SetQuality(ctx context.Context, userID int64, quality domain.Quality) error

	// Close gracefully shuts down the repository.
	Close() error
}
