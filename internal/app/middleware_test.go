package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/statsbudsjett/statsbudsjett/internal/auth"
	"github.com/statsbudsjett/statsbudsjett/internal/config"
	"github.com/statsbudsjett/statsbudsjett/pkg/aggregate"
	"github.com/statsbudsjett/statsbudsjett/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jwtSecret = "middleware-secret"

func setupUsers(t *testing.T) (user.Service, user.User) {
	t.Helper()
	users := user.NewUserService(user.NewStubUserRepository())
	admin, err := users.CreateUser(context.Background(), user.User{Name: "Admin", Email: "admin@example.no"})
	require.NoError(t, err)
	return users, admin
}

// serve runs a request through UserMiddleware and reports the user the
// downstream handler saw.
func serve(t *testing.T, secret string, users user.Service, headers map[string]string) (*httptest.ResponseRecorder, *user.User) {
	t.Helper()
	var seen *user.User
	handler := UserMiddleware(auth.NewTokenValidator(secret), users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, err := user.CurrentUser(r.Context()); err == nil {
			seen = &u
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/admin/users/current", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr, seen
}

func token(t *testing.T, subject string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": subject}).SignedString([]byte(jwtSecret))
	require.NoError(t, err)
	return signed
}

func TestUserMiddleware(t *testing.T) {
	t.Run("should resolve the user from a bearer token", func(t *testing.T) {
		users, admin := setupUsers(t)

		rr, seen := serve(t, jwtSecret, users, map[string]string{"Authorization": "Bearer " + token(t, admin.Uid)})

		assert.Equal(t, http.StatusNoContent, rr.Code)
		require.NotNil(t, seen)
		assert.Equal(t, user.RoleAdministrator, seen.Role)
	})

	t.Run("should refuse the X-User-Id header when tokens are configured", func(t *testing.T) {
		// given
		users, admin := setupUsers(t)

		// when
		rr, seen := serve(t, jwtSecret, users, map[string]string{"X-User-Id": admin.Uid})

		// then
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Nil(t, seen)
	})

	t.Run("should take the identity from the token, not the header", func(t *testing.T) {
		// given
		users, admin := setupUsers(t)
		editor, err := users.CreateUser(user.WithUser(context.Background(), admin), user.User{Name: "Redaktør", Email: "red@example.no", Role: user.RoleEditor})
		require.NoError(t, err)

		// when
		rr, seen := serve(t, jwtSecret, users, map[string]string{
			"Authorization": "Bearer " + token(t, editor.Uid),
			"X-User-Id":     admin.Uid,
		})

		// then
		assert.Equal(t, http.StatusNoContent, rr.Code)
		require.NotNil(t, seen)
		assert.Equal(t, editor.Id, seen.Id)
	})

	t.Run("should resolve the user from the X-User-Id header without a secret", func(t *testing.T) {
		users, admin := setupUsers(t)

		rr, seen := serve(t, "", users, map[string]string{"X-User-Id": admin.Uid})

		assert.Equal(t, http.StatusNoContent, rr.Code)
		require.NotNil(t, seen)
		assert.Equal(t, admin.Id, seen.Id)
	})

	t.Run("should reject invalid tokens", func(t *testing.T) {
		users, _ := setupUsers(t)

		rr, seen := serve(t, jwtSecret, users, map[string]string{"Authorization": "Bearer not-a-token"})

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Nil(t, seen)
	})

	t.Run("should forbid unknown users", func(t *testing.T) {
		users, _ := setupUsers(t)

		rr, _ := serve(t, jwtSecret, users, map[string]string{"Authorization": "Bearer " + token(t, "unknown")})

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("should pass anonymous requests through without a user", func(t *testing.T) {
		users, _ := setupUsers(t)

		rr, seen := serve(t, jwtSecret, users, nil)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Nil(t, seen)
	})
}

func TestClientRateLimiter(t *testing.T) {
	t.Run("should answer 429 once a client exhausts its burst", func(t *testing.T) {
		// given
		limiter := NewClientRateLimiter(0.001, 2)
		handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		call := func(remote string) int {
			req := httptest.NewRequest(http.MethodGet, "/api/years/2025/aggregate", nil)
			req.RemoteAddr = remote
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			return rr.Code
		}

		// when
		codes := []int{call("10.0.0.1:1000"), call("10.0.0.1:1001"), call("10.0.0.1:1002"), call("10.0.0.2:1000")}

		// then
		assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests, http.StatusOK}, codes)
	})

	t.Run("should not limit when disabled", func(t *testing.T) {
		limiter := NewClientRateLimiter(0, 0)

		for i := 0; i < 100; i++ {
			require.True(t, limiter.Allow("10.0.0.1"))
		}
	})
}

func TestChartConfig(t *testing.T) {
	t.Run("should keep the built-in grouping for empty configuration", func(t *testing.T) {
		fallback := aggregate.DefaultExpenditureConfig()

		assert.Equal(t, fallback, chartConfig(config.Chart{}, fallback))
	})

	t.Run("should replace rules and palette when configured", func(t *testing.T) {
		// given
		configured := config.Chart{
			Rules:            []config.GroupingRule{{Id: "alt", Name: "Alt", CatchAll: true}},
			Palette:          []string{"#111111"},
			TwoStepThreshold: 3,
		}

		// when
		cfg := chartConfig(configured, aggregate.DefaultExpenditureConfig())

		// then
		assert.Equal(t, []aggregate.GroupingRule{{ID: "alt", Name: "Alt", CatchAll: true}}, cfg.Rules)
		assert.Equal(t, []string{"#111111"}, cfg.Palette)
		assert.Equal(t, 3, cfg.TwoStepThreshold)
	})
}
