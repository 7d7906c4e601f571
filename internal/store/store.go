// Package store persists tournaments and newsletter subscriptions.
//
// Stores return the sentinel errors below (optionally wrapped) for facts about records,
// such as "no tournament with that id". Handlers translate them into HTTP status codes with
// errors.Is. Any other error is an infrastructure failure and is passed through as-is.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/trentd187/tournament-finder/internal/geo"
	"github.com/trentd187/tournament-finder/internal/models"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already subscribed")
)

// Tournaments is the persistence contract the HTTP handlers depend on.
// It is implemented by TournamentStore (gorm) and CachedTournaments (redis in front of another
// Tournaments).
type Tournaments interface {
	// Create inserts t, filling its id, status and timestamps.
	Create(ctx context.Context, t *models.Tournament) error
	// List returns every tournament, or only those with the given status when status is non-nil.
	List(ctx context.Context, status *models.TournamentStatus) ([]models.Tournament, error)
	// UpdateStatus sets the status of the tournament with id and returns the updated record.
	// Returns ErrNotFound when no such tournament exists.
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.TournamentStatus) (*models.Tournament, error)
	// Delete removes the tournament with id and returns the record as it was before removal.
	// Returns ErrNotFound when no such tournament exists.
	Delete(ctx context.Context, id uuid.UUID) (*models.Tournament, error)
	// Nearby returns tournaments within maxDistanceKm of center.
	Nearby(ctx context.Context, center geo.Point, maxDistanceKm float64) ([]models.Tournament, error)
}

// StatusPtr is a small helper for calling List with a literal status.
func StatusPtr(s models.TournamentStatus) *models.TournamentStatus {
	return &s
}
