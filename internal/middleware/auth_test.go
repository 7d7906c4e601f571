package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret-that-is-long-enough!")

func signToken(t *testing.T, secret []byte, method jwt.SigningMethod, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(secret)
	require.NoError(t, err)
	return token
}

func claimsFor(subject, role string, expiresIn time.Duration) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
		Role: role,
	}
}

func newApp() *fiber.App {
	app := fiber.New()
	app.Put("/moderate",
		Auth(testSecret),
		RequireRole(RoleAdmin, RoleModerator),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"user": c.Locals("userID"), "role": c.Locals("userRole")})
		},
	)
	return app
}

func do(t *testing.T, app *fiber.App, authHeader string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPut, "/moderate", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestAuth(t *testing.T) {
	app := newApp()

	t.Run("valid moderator token passes", func(t *testing.T) {
		token := signToken(t, testSecret, jwt.SigningMethodHS256, claimsFor("mod-1", RoleModerator, time.Hour))
		status, body := do(t, app, "Bearer "+token)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "mod-1", body["user"])
		assert.Equal(t, RoleModerator, body["role"])
	})

	tests := []struct {
		name       string
		header     func() string
		wantStatus int
		wantError  string
	}{
		{
			name:       "missing header",
			header:     func() string { return "" },
			wantStatus: http.StatusUnauthorized,
			wantError:  "missing or invalid authorization header",
		},
		{
			name:       "not a bearer token",
			header:     func() string { return "Basic abc" },
			wantStatus: http.StatusUnauthorized,
			wantError:  "missing or invalid authorization header",
		},
		{
			name:       "garbage token",
			header:     func() string { return "Bearer not.a.jwt" },
			wantStatus: http.StatusUnauthorized,
			wantError:  "invalid token",
		},
		{
			name: "wrong secret",
			header: func() string {
				return "Bearer " + signToken(t, []byte("some-other-secret-entirely-here!"), jwt.SigningMethodHS256, claimsFor("mod-1", RoleAdmin, time.Hour))
			},
			wantStatus: http.StatusUnauthorized,
			wantError:  "invalid token",
		},
		{
			name: "wrong algorithm",
			header: func() string {
				return "Bearer " + signToken(t, testSecret, jwt.SigningMethodHS512, claimsFor("mod-1", RoleAdmin, time.Hour))
			},
			wantStatus: http.StatusUnauthorized,
			wantError:  "invalid token",
		},
		{
			name: "expired",
			header: func() string {
				return "Bearer " + signToken(t, testSecret, jwt.SigningMethodHS256, claimsFor("mod-1", RoleAdmin, -time.Hour))
			},
			wantStatus: http.StatusUnauthorized,
			wantError:  "token expired",
		},
		{
			name: "missing subject",
			header: func() string {
				return "Bearer " + signToken(t, testSecret, jwt.SigningMethodHS256, claimsFor("", RoleAdmin, time.Hour))
			},
			wantStatus: http.StatusUnauthorized,
			wantError:  "token missing subject",
		},
		{
			name: "role not allowed",
			header: func() string {
				return "Bearer " + signToken(t, testSecret, jwt.SigningMethodHS256, claimsFor("player-1", "player", time.Hour))
			},
			wantStatus: http.StatusForbidden,
			wantError:  "insufficient permissions",
		},
		{
			name: "no role",
			header: func() string {
				return "Bearer " + signToken(t, testSecret, jwt.SigningMethodHS256, claimsFor("player-1", "", time.Hour))
			},
			wantStatus: http.StatusForbidden,
			wantError:  "forbidden",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := do(t, app, tt.header())
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantError, body["error"])
		})
	}
}
