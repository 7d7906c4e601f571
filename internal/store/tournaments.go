package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trentd187/tournament-finder/internal/geo"
	"github.com/trentd187/tournament-finder/internal/models"
)

// TournamentStore implements Tournaments on top of GORM.
type TournamentStore struct {
	db *gorm.DB
}

// NewTournamentStore wraps an open GORM handle.
func NewTournamentStore(db *gorm.DB) *TournamentStore {
	return &TournamentStore{db: db}
}

func (s *TournamentStore) Create(ctx context.Context, t *models.Tournament) error {
	// Status is always pending on creation; moderation goes through UpdateStatus.
	t.Status = models.TournamentStatusPending
	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("create tournament: %w", err)
	}
	return nil
}

func (s *TournamentStore) List(ctx context.Context, status *models.TournamentStatus) ([]models.Tournament, error) {
	query := s.db.WithContext(ctx).Order("created_at ASC")
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	tournaments := []models.Tournament{}
	if err := query.Find(&tournaments).Error; err != nil {
		return nil, fmt.Errorf("list tournaments: %w", err)
	}
	return tournaments, nil
}

func (s *TournamentStore) UpdateStatus(ctx context.Context, id uuid.UUID, status models.TournamentStatus) (*models.Tournament, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("invalid tournament status %q", status)
	}

	var updated models.Tournament
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&updated, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		// Model(&updated).Update writes only the status column (plus updated_at)
		// and reflects both changes back into the struct.
		return tx.Model(&updated).Update("status", status).Error
	})
	if err != nil {
		return nil, fmt.Errorf("update tournament %s status: %w", id, err)
	}
	return &updated, nil
}

func (s *TournamentStore) Delete(ctx context.Context, id uuid.UUID) (*models.Tournament, error) {
	var deleted models.Tournament
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&deleted, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		res := tx.Delete(&models.Tournament{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		// A concurrent delete got there first.
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("delete tournament %s: %w", id, err)
	}
	return &deleted, nil
}

// Nearby narrows candidates with a latitude/longitude box in SQL, then keeps only those
// whose great-circle distance from center is within maxDistanceKm.
func (s *TournamentStore) Nearby(ctx context.Context, center geo.Point, maxDistanceKm float64) ([]models.Tournament, error) {
	radians := geo.Radians(maxDistanceKm)
	box := geo.Bounds(center, radians)

	query := s.db.WithContext(ctx).
		Where("location_latitude BETWEEN ? AND ?", box.MinLat, box.MaxLat)
	if !box.AllLongitudes {
		query = query.Where("location_longitude BETWEEN ? AND ?", box.MinLng, box.MaxLng)
	}

	var candidates []models.Tournament
	if err := query.Order("created_at ASC").Find(&candidates).Error; err != nil {
		return nil, fmt.Errorf("nearby tournaments: %w", err)
	}

	matches := make([]models.Tournament, 0, len(candidates))
	for _, t := range candidates {
		if geo.Within(center, t.LocationCoords.Point(), radians) {
			matches = append(matches, t)
		}
	}
	return matches, nil
}
