// Package models defines the data structures (models) that map to database tables.
// GORM uses these structs to generate SQL queries and map database rows back to Go values.
// The struct field tags (the backtick strings like `gorm:"..."`) tell GORM how to handle
// each field: its column name, constraints, default values and indexes.
//
// The data model has two independent record kinds:
//   - Tournaments, submitted by organizers and moderated (pending → approved/rejected)
//   - Newsletter subscriptions, one per normalized email address
//
// There are no relationships between them.
package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trentd187/tournament-finder/internal/geo"
	"github.com/trentd187/tournament-finder/internal/validation"
)

// --- Enums ---

// TournamentStatus is the moderation state of a tournament.
type TournamentStatus string

const (
	TournamentStatusPending  TournamentStatus = "pending"  // Submitted, waiting for a moderator
	TournamentStatusApproved TournamentStatus = "approved" // Visible in public listings
	TournamentStatusRejected TournamentStatus = "rejected" // Turned down by a moderator
)

// TournamentStatuses lists every valid status, in workflow order.
var TournamentStatuses = []TournamentStatus{
	TournamentStatusPending,
	TournamentStatusApproved,
	TournamentStatusRejected,
}

// Valid reports whether s is one of the known statuses.
func (s TournamentStatus) Valid() bool {
	switch s {
	case TournamentStatusPending, TournamentStatusApproved, TournamentStatusRejected:
		return true
	}
	return false
}

// --- Coordinates ---

// ErrInvalidCoordinates is returned when a locationCoords value is not a
// [latitude, longitude] pair of numbers within range.
var ErrInvalidCoordinates = errors.New("invalid location coordinates")

// Coordinates is a fixed-size [latitude, longitude] pair.
// On the wire it is a two-element JSON array; in the database it is two float columns.
type Coordinates struct {
	Latitude  float64 `gorm:"column:latitude;not null"`
	Longitude float64 `gorm:"column:longitude;not null"`
}

// MarshalJSON encodes the pair as [latitude, longitude].
func (c Coordinates) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{c.Latitude, c.Longitude})
}

// UnmarshalJSON accepts exactly a two-element array of numbers.
// Anything else (null, an object, one or three elements, strings) is ErrInvalidCoordinates.
func (c *Coordinates) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return ErrInvalidCoordinates
	}
	if len(raw) != 2 {
		return fmt.Errorf("%w: expected 2 elements, got %d", ErrInvalidCoordinates, len(raw))
	}

	var pair [2]float64
	for i, elem := range raw {
		if err := json.Unmarshal(elem, &pair[i]); err != nil {
			return fmt.Errorf("%w: element %d is not a number", ErrInvalidCoordinates, i)
		}
	}

	parsed := Coordinates{Latitude: pair[0], Longitude: pair[1]}
	if err := parsed.Validate(); err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Validate checks the pair lies on the globe.
func (c Coordinates) Validate() error {
	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v out of range", ErrInvalidCoordinates, c.Latitude)
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v out of range", ErrInvalidCoordinates, c.Longitude)
	}
	return nil
}

// Point converts the pair to a geo.Point for distance calculations.
func (c Coordinates) Point() geo.Point {
	return geo.Point{Lat: c.Latitude, Lng: c.Longitude}
}

// --- Models ---

// Tournament is a submitted event with a location and a moderation status.
// Only Status changes after creation.
type Tournament struct {
	ID               uuid.UUID        `gorm:"type:uuid;primaryKey"`
	Name             string           `gorm:"not null;default:''"`
	Location         string           `gorm:"not null;default:''"` // Free-text venue / city
	Country          string           `gorm:"not null;default:''"`
	StartDate        *time.Time       // Optional; pointer = nullable
	EndDate          *time.Time       // Optional; pointer = nullable
	Description      string           `gorm:"not null;default:''"`
	OrganizerContact string           `gorm:"not null;default:''"` // Email or phone, not validated
	LocationCoords   Coordinates      `gorm:"embedded;embeddedPrefix:location_"`
	Status           TournamentStatus `gorm:"not null;default:'pending';index"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// BeforeCreate assigns the UUID and the default status.
// The Postgres schema also defaults both, but other dialects (sqlite in tests) do not.
func (t *Tournament) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Status == "" {
		t.Status = TournamentStatusPending
	}
	if !t.Status.Valid() {
		return fmt.Errorf("invalid tournament status %q", t.Status)
	}
	return t.LocationCoords.Validate()
}

// NewsletterSubscription is one email address signed up for the newsletter.
// Email is stored normalized (trimmed, lower-case) and is unique.
type NewsletterSubscription struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email        string    `gorm:"not null;uniqueIndex"`
	SubscribedAt time.Time `gorm:"not null"`
}

// ErrInvalidEmail is returned when an email does not look like an address.
var ErrInvalidEmail = errors.New("please enter a valid email address")

// BeforeSave normalizes and validates the email on every write, and fills the
// id and subscription time on first insert.
func (n *NewsletterSubscription) BeforeSave(tx *gorm.DB) error {
	n.Email = validation.NormalizeEmail(n.Email)
	if !validation.ValidEmail(n.Email) {
		return fmt.Errorf("%w: %q", ErrInvalidEmail, strings.TrimSpace(n.Email))
	}
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.SubscribedAt.IsZero() {
		n.SubscribedAt = time.Now().UTC()
	}
	return nil
}
