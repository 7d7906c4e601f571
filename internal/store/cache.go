package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/trentd187/tournament-finder/internal/geo"
	"github.com/trentd187/tournament-finder/internal/models"
)

const (
	listKeyPrefix = "tournaments:list:"
	// generationKey is bumped by every write. List keys embed the generation they were
	// read under, so a list filled before a write is never served after it.
	generationKey = listKeyPrefix + "gen"
)

// CachedTournaments serves List from Redis and delegates everything else to next.
// Every successful write moves the cache to a new generation, so a read after a write
// never sees the old data, even when a slower read fills the previous generation late.
// Superseded generations expire with the TTL. Redis failures degrade to a direct read
// and are only logged.
type CachedTournaments struct {
	next Tournaments
	rdb  *redis.Client
	ttl  time.Duration
	log  *zap.Logger
}

func NewCachedTournaments(next Tournaments, rdb *redis.Client, ttl time.Duration, log *zap.Logger) *CachedTournaments {
	return &CachedTournaments{next: next, rdb: rdb, ttl: ttl, log: log}
}

// cachedTournament is the cache encoding. models.Tournament has no json tags of its own,
// so the cache keeps its own field names.
type cachedTournament struct {
	ID               uuid.UUID  `json:"id"`
	Name             string     `json:"name"`
	Location         string     `json:"location"`
	Country          string     `json:"country"`
	StartDate        *time.Time `json:"startDate"`
	EndDate          *time.Time `json:"endDate"`
	Description      string     `json:"description"`
	OrganizerContact string     `json:"organizerContact"`
	Latitude         float64    `json:"latitude"`
	Longitude        float64    `json:"longitude"`
	Status           string     `json:"status"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

func listKey(generation int64, status *models.TournamentStatus) string {
	name := "all"
	if status != nil {
		name = string(*status)
	}
	return fmt.Sprintf("%s%d:%s", listKeyPrefix, generation, name)
}

// generation returns the current cache generation; a missing key is generation 0.
func (c *CachedTournaments) generation(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *CachedTournaments) List(ctx context.Context, status *models.TournamentStatus) ([]models.Tournament, error) {
	// Read the generation before querying, so a fill under it never holds rows older
	// than that generation.
	gen, err := c.generation(ctx)
	if err != nil {
		c.log.Warn("tournament cache generation read failed", zap.Error(err))
		return c.next.List(ctx, status)
	}
	key := listKey(gen, status)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		tournaments, decodeErr := decodeList(raw)
		if decodeErr == nil {
			return tournaments, nil
		}
		c.log.Warn("discarding undecodable cache entry", zap.String("key", key), zap.Error(decodeErr))
	case !errors.Is(err, redis.Nil):
		c.log.Warn("tournament cache read failed", zap.String("key", key), zap.Error(err))
	}

	tournaments, err := c.next.List(ctx, status)
	if err != nil {
		return nil, err
	}

	if encoded, err := encodeList(tournaments); err == nil {
		if err := c.rdb.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
			c.log.Warn("tournament cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return tournaments, nil
}

func (c *CachedTournaments) Create(ctx context.Context, t *models.Tournament) error {
	if err := c.next.Create(ctx, t); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

func (c *CachedTournaments) UpdateStatus(ctx context.Context, id uuid.UUID, status models.TournamentStatus) (*models.Tournament, error) {
	t, err := c.next.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx)
	return t, nil
}

func (c *CachedTournaments) Delete(ctx context.Context, id uuid.UUID) (*models.Tournament, error) {
	t, err := c.next.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx)
	return t, nil
}

// Nearby depends on arbitrary coordinates, so it is never cached.
func (c *CachedTournaments) Nearby(ctx context.Context, center geo.Point, maxDistanceKm float64) ([]models.Tournament, error) {
	return c.next.Nearby(ctx, center, maxDistanceKm)
}

func (c *CachedTournaments) invalidate(ctx context.Context) {
	if err := c.rdb.Incr(ctx, generationKey).Err(); err != nil {
		c.log.Error("tournament cache invalidation failed", zap.Error(err))
	}
}

func encodeList(tournaments []models.Tournament) ([]byte, error) {
	out := make([]cachedTournament, 0, len(tournaments))
	for _, t := range tournaments {
		out = append(out, cachedTournament{
			ID:               t.ID,
			Name:             t.Name,
			Location:         t.Location,
			Country:          t.Country,
			StartDate:        t.StartDate,
			EndDate:          t.EndDate,
			Description:      t.Description,
			OrganizerContact: t.OrganizerContact,
			Latitude:         t.LocationCoords.Latitude,
			Longitude:        t.LocationCoords.Longitude,
			Status:           string(t.Status),
			CreatedAt:        t.CreatedAt,
			UpdatedAt:        t.UpdatedAt,
		})
	}
	return json.Marshal(out)
}

func decodeList(raw []byte) ([]models.Tournament, error) {
	var cached []cachedTournament
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, err
	}
	tournaments := make([]models.Tournament, 0, len(cached))
	for _, c := range cached {
		tournaments = append(tournaments, models.Tournament{
			ID:               c.ID,
			Name:             c.Name,
			Location:         c.Location,
			Country:          c.Country,
			StartDate:        c.StartDate,
			EndDate:          c.EndDate,
			Description:      c.Description,
			OrganizerContact: c.OrganizerContact,
			LocationCoords:   models.Coordinates{Latitude: c.Latitude, Longitude: c.Longitude},
			Status:           models.TournamentStatus(c.Status),
			CreatedAt:        c.CreatedAt,
			UpdatedAt:        c.UpdatedAt,
		})
	}
	return tournaments, nil
}
