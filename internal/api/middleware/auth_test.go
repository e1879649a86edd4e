package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apiContext "grievance/internal/api/context"
	"grievance/internal/platform/auth"
	"grievance/internal/platform/config"
	"grievance/internal/platform/models"
)

type profiles struct {
	users map[string]*models.User
	err   error
}

func (p profiles) GetByID(_ context.Context, id string) (*models.User, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.users[id], nil
}

func newTokens() *auth.TokenService {
	return auth.NewTokenService(config.JWTConfig{Secret: "secret", AccessTokenTTL: time.Hour})
}

func TestAuthMiddleware(t *testing.T) {
	tokens := newTokens()
	store := profiles{users: map[string]*models.User{
		"u1": {ID: "u1", Email: "ann@acme.com", Name: "Ann", Role: models.RoleManager, OrgID: "org_a"},
	}}
	mw := NewAuthMiddleware(tokens, store)

	registered, err := tokens.GenerateAccessToken("u1", "ann@acme.com", "Ann")
	require.NoError(t, err)
	newcomer, err := tokens.GenerateAccessToken("u2", "bob@acme.com", "Bob")
	require.NoError(t, err)

	t.Run("Registered Subject", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+registered)
		rr := httptest.NewRecorder()

		called := false
		mw.Handle(mw.Registered(func(w http.ResponseWriter, r *http.Request) {
			called = true
			actor, ok := apiContext.ActorFrom(r.Context())
			require.True(t, ok)
			assert.Equal(t, models.Actor{UserID: "u1", Email: "ann@acme.com", Name: "Ann", Role: models.RoleManager, OrgID: "org_a"}, actor)
			w.WriteHeader(http.StatusOK)
		}))(rr, req)

		assert.True(t, called)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Unregistered Subject", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+newcomer)

		rr := httptest.NewRecorder()
		mw.Handle(func(w http.ResponseWriter, r *http.Request) {
			_, ok := apiContext.ActorFrom(r.Context())
			assert.False(t, ok)
			claims, ok := apiContext.ClaimsFrom(r.Context())
			require.True(t, ok)
			assert.Equal(t, "u2", claims.Subject)
			w.WriteHeader(http.StatusOK)
		})(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)

		rr = httptest.NewRecorder()
		mw.Handle(mw.Registered(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler should not be called")
		}))(rr, req)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"Missing Header", "", http.StatusUnauthorized},
		{"Wrong Scheme", "Basic abc", http.StatusUnauthorized},
		{"Bad Token", "Bearer nope", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			mw.Handle(func(w http.ResponseWriter, r *http.Request) {
				t.Error("handler should not be called")
			})(rr, req)
			assert.Equal(t, tt.want, rr.Code)
		})
	}

	t.Run("Profile Store Down", func(t *testing.T) {
		down := NewAuthMiddleware(tokens, profiles{err: errors.New("locked")})
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+registered)
		rr := httptest.NewRecorder()
		down.Handle(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler should not be called")
		})(rr, req)
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})
}

func TestRequireRole(t *testing.T) {
	ok := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }
	guard := RequireRole(models.RoleAdmin)(ok)

	tests := []struct {
		name  string
		actor *models.Actor
		want  int
	}{
		{"Admin", &models.Actor{UserID: "a", Role: models.RoleAdmin}, http.StatusNoContent},
		{"Manager", &models.Actor{UserID: "m", Role: models.RoleManager}, http.StatusForbidden},
		{"No Actor", nil, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.actor != nil {
				req = req.WithContext(context.WithValue(req.Context(), apiContext.Actor, *tt.actor))
			}
			rr := httptest.NewRecorder()
			guard(rr, req)
			assert.Equal(t, tt.want, rr.Code)
		})
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(config.RateLimitConfig{AnalyzePerMinute: 2})
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return fixed }

	handler := rl.Limit(LimitAnalyze)(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	call := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/analyze-complaint", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		handler(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1:1111"))
	assert.Equal(t, http.StatusOK, call("10.0.0.1:2222"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1:3333"), "same host, different port")
	assert.Equal(t, http.StatusOK, call("10.0.0.2:1111"))

	fixed = fixed.Add(30 * time.Second)
	assert.Equal(t, http.StatusOK, call("10.0.0.1:1111"), "refilled one token")

	assert.True(t, rl.Allow("anything", LimitAPIRead), "zero limit disables limiting")

	fixed = fixed.Add(time.Hour)
	rl.evict()
	assert.Empty(t, rl.buckets)
}
