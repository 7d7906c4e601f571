// Package handlers contains HTTP route handler functions for the Tournament Finder API.
// This file handles the tournament routes: submission, listings, moderation and the
// nearby search.
//
// Each handler is built by a factory method on TournamentHandlers that returns a
// fiber.Handler. The store, metrics, feed hub and logger are injected once through
// NewTournamentHandlers instead of living in package-level variables.
//
// --- Response conventions ---
//   - 400 and 404 bodies are {"message": "..."} and are decided before any write.
//   - 500 bodies are {"error": "<underlying error>"}; the same error is logged.
//   - Writes answer with {"message": "...", "tournament": {...}}; listings with a bare array.
package handlers

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trentd187/tournament-finder/internal/feed"
	"github.com/trentd187/tournament-finder/internal/geo"
	"github.com/trentd187/tournament-finder/internal/metrics"
	"github.com/trentd187/tournament-finder/internal/models"
	"github.com/trentd187/tournament-finder/internal/store"
	"github.com/trentd187/tournament-finder/internal/validation"
)

const (
	msgInvalidCoords  = "Invalid location coordinates. Provide [latitude, longitude]."
	msgInvalidStatus  = "Invalid status value"
	msgNotFound       = "Tournament not found"
	msgMissingLatLng  = "Please provide latitude and longitude."
	msgInvalidLatLng  = "Latitude and longitude must be numbers."
	msgInvalidMaxDist = "maxDistance must be a number."
	msgInvalidBody    = "Invalid request body"
)

// TournamentResponse is what we send back to clients.
// A dedicated response struct (instead of the raw GORM model) controls exactly which
// fields are serialised and how dates are formatted.
type TournamentResponse struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	Location         string             `json:"location"`
	Country          string             `json:"country"`
	StartDate        *string            `json:"startDate"` // RFC 3339 or null
	EndDate          *string            `json:"endDate"`   // RFC 3339 or null
	Description      string             `json:"description"`
	OrganizerContact string             `json:"organizerContact"`
	LocationCoords   models.Coordinates `json:"locationCoords"` // [latitude, longitude]
	Status           string             `json:"status"`
	CreatedAt        string             `json:"createdAt"`
	UpdatedAt        string             `json:"updatedAt"`
}

// AddTournamentRequest is the JSON body expected on POST /add.
// LocationCoords stays raw so a malformed pair can be told apart from a malformed body.
type AddTournamentRequest struct {
	Name             string          `json:"name" validate:"max=200"`
	Location         string          `json:"location" validate:"max=200"`
	Country          string          `json:"country" validate:"max=100"`
	StartDate        *string         `json:"startDate"` // "YYYY-MM-DD" or RFC 3339
	EndDate          *string         `json:"endDate"`   // "YYYY-MM-DD" or RFC 3339
	Description      string          `json:"description" validate:"max=5000"`
	OrganizerContact string          `json:"organizerContact" validate:"max=200"`
	LocationCoords   json.RawMessage `json:"locationCoords"`
}

// UpdateStatusRequest is the JSON body expected on PUT /update-status/:id.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected"`
}

// feedEvent is the payload pushed to stream subscribers.
type feedEvent struct {
	Event      string              `json:"event"` // "created", "status_changed" or "deleted"
	ID         string              `json:"id"`
	Tournament *TournamentResponse `json:"tournament,omitempty"`
}

// TournamentHandlers builds the tournament route handlers.
type TournamentHandlers struct {
	store   store.Tournaments
	metrics *metrics.Metrics
	hub     *feed.Hub // nil disables the live feed
	log     *zap.Logger
}

func NewTournamentHandlers(s store.Tournaments, m *metrics.Metrics, hub *feed.Hub, log *zap.Logger) *TournamentHandlers {
	return &TournamentHandlers{store: s, metrics: m, hub: hub, log: log}
}

// RegisterTournamentRoutes mounts the tournament routes on r.
// The moderation handlers (typically middleware.Auth + middleware.RequireRole) run in front
// of the status update and delete routes; pass none to leave them open.
func RegisterTournamentRoutes(r fiber.Router, h *TournamentHandlers, moderation ...fiber.Handler) {
	r.Post("/add", h.Add())
	r.Get("/all", h.List(nil))
	r.Get("/pending", h.List(store.StatusPtr(models.TournamentStatusPending)))
	r.Get("/approved", h.List(store.StatusPtr(models.TournamentStatusApproved)))
	r.Put("/update-status/:id", withPrefix(moderation, h.UpdateStatus())...)
	r.Delete("/delete/:id", withPrefix(moderation, h.Delete())...)
	r.Get("/nearby", h.Nearby())
	if h.hub != nil {
		r.Get("/stream", h.Stream())
	}
}

func withPrefix(prefix []fiber.Handler, last fiber.Handler) []fiber.Handler {
	chain := make([]fiber.Handler, 0, len(prefix)+1)
	chain = append(chain, prefix...)
	return append(chain, last)
}

// Add returns a handler for POST /add.
// The new tournament always starts as pending, whatever the body says.
func (h *TournamentHandlers) Add() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req AddTournamentRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, msgInvalidBody)
		}

		// The pair is checked first: it is the one field every tournament must carry.
		var coords models.Coordinates
		if len(req.LocationCoords) == 0 || json.Unmarshal(req.LocationCoords, &coords) != nil {
			return badRequest(c, msgInvalidCoords)
		}

		if err := validation.Struct(req); err != nil {
			return badRequest(c, validation.Message(err))
		}

		startDate, err := parseOptionalDate(req.StartDate)
		if err != nil {
			return badRequest(c, "startDate must be YYYY-MM-DD or an RFC 3339 timestamp")
		}
		endDate, err := parseOptionalDate(req.EndDate)
		if err != nil {
			return badRequest(c, "endDate must be YYYY-MM-DD or an RFC 3339 timestamp")
		}

		tournament := models.Tournament{
			Name:             req.Name,
			Location:         req.Location,
			Country:          req.Country,
			StartDate:        startDate,
			EndDate:          endDate,
			Description:      req.Description,
			OrganizerContact: req.OrganizerContact,
			LocationCoords:   coords,
		}
		if err := h.store.Create(c.UserContext(), &tournament); err != nil {
			return h.internalError(c, err)
		}

		h.metrics.IncrementCreated()
		resp := toTournamentResponse(tournament)
		h.publish(string(tournament.Status), feedEvent{Event: "created", ID: resp.ID, Tournament: &resp})

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message":    "Tournament added successfully",
			"tournament": resp,
		})
	}
}

// List returns a handler for GET /all, /pending and /approved.
// A nil status lists every tournament.
func (h *TournamentHandlers) List(status *models.TournamentStatus) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tournaments, err := h.store.List(c.UserContext(), status)
		if err != nil {
			return h.internalError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(toTournamentResponses(tournaments))
	}
}

// UpdateStatus returns a handler for PUT /update-status/:id.
// The status is validated before the id is even looked at, so a bad value never reaches the store.
func (h *TournamentHandlers) UpdateStatus() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req UpdateStatusRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, msgInvalidStatus)
		}
		if err := validation.Struct(req); err != nil {
			return badRequest(c, msgInvalidStatus)
		}

		// An id that is not a UUID cannot name any tournament.
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return notFound(c)
		}

		updated, err := h.store.UpdateStatus(c.UserContext(), id, models.TournamentStatus(req.Status))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return notFound(c)
			}
			return h.internalError(c, err)
		}

		h.metrics.IncrementStatusChange(string(updated.Status))
		resp := toTournamentResponse(*updated)
		h.publish(string(updated.Status), feedEvent{Event: "status_changed", ID: resp.ID, Tournament: &resp})

		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"message":    "Tournament status updated successfully",
			"tournament": resp,
		})
	}
}

// Delete returns a handler for DELETE /delete/:id.
func (h *TournamentHandlers) Delete() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return notFound(c)
		}

		deleted, err := h.store.Delete(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return notFound(c)
			}
			return h.internalError(c, err)
		}

		h.metrics.IncrementDeleted()
		// Subscribers of the last status need to drop it from their view.
		resp := toTournamentResponse(*deleted)
		h.publish(string(deleted.Status), feedEvent{Event: "deleted", ID: resp.ID, Tournament: &resp})

		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Tournament deleted successfully",
		})
	}
}

// Nearby returns a handler for GET /nearby?lat=&lng=&maxDistance=.
// maxDistance is in kilometres and defaults to geo.DefaultMaxDistanceKm.
func (h *TournamentHandlers) Nearby() fiber.Handler {
	return func(c *fiber.Ctx) error {
		latStr, lngStr := c.Query("lat"), c.Query("lng")
		if latStr == "" || lngStr == "" {
			return badRequest(c, msgMissingLatLng)
		}

		lat, latErr := parseFinite(latStr)
		lng, lngErr := parseFinite(lngStr)
		if latErr != nil || lngErr != nil {
			return badRequest(c, msgInvalidLatLng)
		}

		maxDistance := geo.DefaultMaxDistanceKm
		if raw := c.Query("maxDistance"); raw != "" {
			d, err := parseFinite(raw)
			if err != nil {
				return badRequest(c, msgInvalidMaxDist)
			}
			maxDistance = d
		}

		start := time.Now()
		tournaments, err := h.store.Nearby(c.UserContext(), geo.Point{Lat: lat, Lng: lng}, maxDistance)
		if err != nil {
			return h.internalError(c, err)
		}
		h.metrics.ObserveNearby(start, len(tournaments))

		return c.Status(fiber.StatusOK).JSON(toTournamentResponses(tournaments))
	}
}

func (h *TournamentHandlers) publish(topic string, event feedEvent) {
	if h.hub == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Error("encode feed event", zap.Error(err))
		return
	}
	if !h.hub.Publish(topic, data) {
		h.log.Warn("feed queue full, dropped event", zap.String("event", event.Event), zap.String("id", event.ID))
	}
}

// internalError logs err and answers 500 with the error text, which is what clients of
// this API have always received for storage failures.
func (h *TournamentHandlers) internalError(c *fiber.Ctx, err error) error {
	h.log.Error("tournament request failed",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": msg})
}

func notFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": msgNotFound})
}

// parseFinite parses a float and rejects NaN and ±Inf, which strconv accepts.
func parseFinite(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, strconv.ErrSyntax
	}
	return f, nil
}

// parseOptionalDate parses "YYYY-MM-DD" or an RFC 3339 timestamp into a *time.Time.
// Returns nil for a nil or empty string.
func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	v := strings.TrimSpace(*s)
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, err
	}
	t = t.UTC()
	return &t, nil
}

// formatOptionalDate converts a *time.Time to an RFC 3339 *string, keeping nil as nil.
func formatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func toTournamentResponse(t models.Tournament) TournamentResponse {
	return TournamentResponse{
		ID:               t.ID.String(),
		Name:             t.Name,
		Location:         t.Location,
		Country:          t.Country,
		StartDate:        formatOptionalDate(t.StartDate),
		EndDate:          formatOptionalDate(t.EndDate),
		Description:      t.Description,
		OrganizerContact: t.OrganizerContact,
		LocationCoords:   t.LocationCoords,
		Status:           string(t.Status),
		CreatedAt:        t.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:        t.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// toTournamentResponses always returns a non-nil slice so empty listings encode as [].
func toTournamentResponses(ts []models.Tournament) []TournamentResponse {
	out := make([]TournamentResponse, 0, len(ts))
	for _, t := range ts {
		out = append(out, toTournamentResponse(t))
	}
	return out
}
