package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	apiContext "grievance/internal/api/context"
	"grievance/internal/pkg/errors"
	"grievance/internal/platform/auth"
	"grievance/internal/platform/models"
)

// ProfileStore looks up the application profile of a token subject.
type ProfileStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

type AuthMiddleware struct {
	tokenSvc *auth.TokenService
	profiles ProfileStore
}

func NewAuthMiddleware(tokenSvc *auth.TokenService, profiles ProfileStore) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc, profiles: profiles}
}

// Handle verifies the bearer token and loads the caller's profile. The
// actor is only set once the subject has registered.
func (m *AuthMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Missing authorization header", nil)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid authorization header format", nil)
			return
		}

		claims, err := m.tokenSvc.ValidateToken(parts[1])
		if err != nil {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid or expired token", nil)
			return
		}

		ctx := context.WithValue(r.Context(), apiContext.Claims, claims)

		user, err := m.profiles.GetByID(ctx, claims.Subject)
		if err != nil {
			log.Error().Err(err).Str("actor", claims.Subject).Msg("failed to load profile")
			errors.WriteError(w, http.StatusServiceUnavailable, errors.ErrCodeUnavailable, "Failed to load profile", nil)
			return
		}
		if user != nil {
			ctx = context.WithValue(ctx, apiContext.Actor, models.Actor{
				UserID: user.ID,
				Email:  user.Email,
				Name:   user.Name,
				Role:   user.Role,
				OrgID:  user.OrgID,
			})
		}

		next(w, r.WithContext(ctx))
	}
}

// Registered rejects subjects without a profile. It must run after Handle.
func (m *AuthMiddleware) Registered(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := apiContext.ActorFrom(r.Context()); !ok {
			errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Profile not registered", nil)
			return
		}
		next(w, r)
	}
}

func RequireRole(roles ...string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			actor, _ := apiContext.ActorFrom(r.Context())

			allowed := false
			for _, role := range roles {
				if actor.Role == role {
					allowed = true
					break
				}
			}

			if !allowed {
				errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Insufficient permissions", nil)
				return
			}

			next(w, r)
		}
	}
}
