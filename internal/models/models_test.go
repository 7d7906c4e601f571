package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTournamentStatusValid(t *testing.T) {
	for _, s := range TournamentStatuses {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, TournamentStatus("invalid").Valid())
	assert.False(t, TournamentStatus("").Valid())
	assert.False(t, TournamentStatus("Approved").Valid())
}

func TestCoordinatesUnmarshalJSON(t *testing.T) {
	t.Run("two numbers", func(t *testing.T) {
		var c Coordinates
		require.NoError(t, json.Unmarshal([]byte(`[12.9, 77.5]`), &c))
		assert.Equal(t, Coordinates{Latitude: 12.9, Longitude: 77.5}, c)
	})

	t.Run("integers are numbers too", func(t *testing.T) {
		var c Coordinates
		require.NoError(t, json.Unmarshal([]byte(`[0, -1]`), &c))
		assert.Equal(t, Coordinates{Latitude: 0, Longitude: -1}, c)
	})

	invalid := map[string]string{
		"one element":         `[12.9]`,
		"three elements":      `[1, 2, 3]`,
		"empty array":         `[]`,
		"null":                `null`,
		"object":              `{"lat": 1, "lng": 2}`,
		"string elements":     `["12.9", "77.5"]`,
		"latitude too large":  `[91, 0]`,
		"longitude too small": `[0, -180.5]`,
		"bare number":         `12.9`,
	}
	for name, input := range invalid {
		t.Run(name, func(t *testing.T) {
			var c Coordinates
			err := json.Unmarshal([]byte(input), &c)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidCoordinates)
			assert.Equal(t, Coordinates{}, c)
		})
	}
}

func TestCoordinatesMarshalJSON(t *testing.T) {
	out, err := json.Marshal(Coordinates{Latitude: 12.9, Longitude: 77.5})
	require.NoError(t, err)
	assert.JSONEq(t, `[12.9, 77.5]`, string(out))
}

func TestCoordinatesPoint(t *testing.T) {
	p := Coordinates{Latitude: 1.5, Longitude: -2.5}.Point()
	assert.Equal(t, 1.5, p.Lat)
	assert.Equal(t, -2.5, p.Lng)
}

func TestTournamentBeforeCreate(t *testing.T) {
	t.Run("fills id and pending status", func(t *testing.T) {
		tr := &Tournament{LocationCoords: Coordinates{Latitude: 1, Longitude: 2}}
		require.NoError(t, tr.BeforeCreate(nil))
		assert.NotEqual(t, uuid.Nil, tr.ID)
		assert.Equal(t, TournamentStatusPending, tr.Status)
	})

	t.Run("keeps a preset id", func(t *testing.T) {
		id := uuid.New()
		tr := &Tournament{ID: id, Status: TournamentStatusApproved}
		require.NoError(t, tr.BeforeCreate(nil))
		assert.Equal(t, id, tr.ID)
		assert.Equal(t, TournamentStatusApproved, tr.Status)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		tr := &Tournament{Status: "archived"}
		assert.Error(t, tr.BeforeCreate(nil))
	})

	t.Run("rejects out of range coordinates", func(t *testing.T) {
		tr := &Tournament{LocationCoords: Coordinates{Latitude: 100}}
		assert.ErrorIs(t, tr.BeforeCreate(nil), ErrInvalidCoordinates)
	})
}

func TestNewsletterSubscriptionBeforeSave(t *testing.T) {
	t.Run("normalizes email and fills defaults", func(t *testing.T) {
		n := &NewsletterSubscription{Email: "  Reader@Example.COM "}
		require.NoError(t, n.BeforeSave(nil))
		assert.Equal(t, "reader@example.com", n.Email)
		assert.NotEqual(t, uuid.Nil, n.ID)
		assert.False(t, n.SubscribedAt.IsZero())
	})

	t.Run("rejects malformed email", func(t *testing.T) {
		n := &NewsletterSubscription{Email: "not-an-email"}
		assert.ErrorIs(t, n.BeforeSave(nil), ErrInvalidEmail)
	})
}
