package api

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"

	apiContext "grievance/internal/api/context"
	"grievance/internal/api/handlers"
	"grievance/internal/api/middleware"
	"grievance/internal/pkg/logger"
	"grievance/internal/platform/config"
	"grievance/internal/platform/metrics"
	"grievance/internal/platform/models"
)

type Dependencies struct {
	AnalyzeHandler   *handlers.AnalyzeHandler
	AuthHandler      *handlers.AuthHandler
	UserHandler      *handlers.UserHandler
	OrgHandler       *handlers.OrgHandler
	ComplaintHandler *handlers.ComplaintHandler
	AuditHandler     *handlers.AuditHandler
	AnalyticsHandler *handlers.AnalyticsHandler
	StreamHandler    *handlers.StreamHandler
	HealthHandler    *handlers.HealthHandler
	AuthMiddleware   *middleware.AuthMiddleware
	RateLimiter      *middleware.RateLimiter
}

type routes struct {
	*httprouter.Router
}

func (rt routes) handle(method, path string, handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) {
	rt.Handle(method, path, chain(path, handler, middlewares...))
}

func NewRouter(deps *Dependencies) *httprouter.Router {
	rt := routes{httprouter.New()}

	authMid := deps.AuthMiddleware
	limit := deps.RateLimiter.Limit
	admin := middleware.RequireRole(models.RoleAdmin)
	manager := middleware.RequireRole(models.RoleManager)
	member := middleware.RequireRole(models.RoleUser, models.RoleManager)
	staff := middleware.RequireRole(models.RoleAdmin, models.RoleManager)
	read := limit(middleware.LimitAPIRead)
	write := limit(middleware.LimitAPIWrite)

	// Public
	rt.Handler(http.MethodGet, "/health", metrics.Instrument("/health", http.HandlerFunc(deps.HealthHandler.Check)))
	rt.Handler(http.MethodGet, "/metrics", metrics.Handler())
	rt.handle(http.MethodPost, "/analyze-complaint", deps.AnalyzeHandler.Analyze, limit(middleware.LimitAnalyze))

	// Registration works before a profile exists
	rt.handle(http.MethodPost, "/api/v1/auth/register", deps.AuthHandler.Register, authMid.Handle, write)
	rt.handle(http.MethodGet, "/api/v1/auth/me", deps.AuthHandler.Me, authMid.Handle, read)

	registered := func(extra ...func(http.HandlerFunc) http.HandlerFunc) []func(http.HandlerFunc) http.HandlerFunc {
		return append([]func(http.HandlerFunc) http.HandlerFunc{authMid.Handle, authMid.Registered}, extra...)
	}

	// Users and organizations
	rt.handle(http.MethodGet, "/api/v1/users", deps.UserHandler.List, registered(read, admin)...)
	rt.handle(http.MethodPost, "/api/v1/organizations", deps.OrgHandler.Create, registered(write, admin)...)
	rt.handle(http.MethodGet, "/api/v1/organizations", deps.OrgHandler.List, registered(read)...)
	rt.handle(http.MethodGet, "/api/v1/organizations/:org_id", deps.OrgHandler.Get, registered(read)...)
	rt.handle(http.MethodPost, "/api/v1/organizations/:org_id/managers", deps.OrgHandler.AssignManager, registered(write, admin)...)

	// Complaints
	rt.handle(http.MethodPost, "/api/v1/complaints", deps.ComplaintHandler.Submit, registered(write, member)...)
	rt.handle(http.MethodGet, "/api/v1/complaints", deps.ComplaintHandler.List, registered(read)...)
	rt.handle(http.MethodGet, "/api/v1/complaints/:complaint_id", deps.ComplaintHandler.Get, registered(read)...)
	rt.handle(http.MethodDelete, "/api/v1/complaints/:complaint_id", deps.ComplaintHandler.Delete, registered(write)...)
	rt.handle(http.MethodPost, "/api/v1/complaints/:complaint_id/stage", deps.ComplaintHandler.Advance, registered(write, manager)...)
	rt.handle(http.MethodPost, "/api/v1/complaints/:complaint_id/rating", deps.ComplaintHandler.Rate, registered(write)...)
	rt.handle(http.MethodPost, "/api/v1/complaints/:complaint_id/reanalyze", deps.ComplaintHandler.Reanalyze, registered(write, manager)...)
	rt.handle(http.MethodGet, "/api/v1/complaints/:complaint_id/qr", deps.ComplaintHandler.GetQRCode, registered(read)...)

	// Audit
	rt.handle(http.MethodGet, "/api/v1/audit-logs", deps.AuditHandler.List, registered(read, admin)...)

	// Analytics
	rt.handle(http.MethodGet, "/api/v1/analytics/insights", deps.AnalyticsHandler.GetInsights, registered(read, staff)...)
	rt.handle(http.MethodGet, "/api/v1/analytics/scorecards", deps.AnalyticsHandler.GetScorecards, registered(read, admin)...)
	rt.handle(http.MethodGet, "/api/v1/analytics/overview", deps.AnalyticsHandler.GetOverview, registered(read, admin)...)
	rt.handle(http.MethodGet, "/api/v1/analytics/workflow", deps.AnalyticsHandler.GetWorkflow, registered(read, manager)...)

	// Change notifications
	rt.handle(http.MethodGet, "/api/v1/stream/:collection", deps.StreamHandler.Stream, registered()...)

	return rt.Router
}

// Handler adds CORS and request logging around the router.
func Handler(router http.Handler, cfg config.CORSConfig) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: cfg.AllowedMethods,
		AllowedHeaders: cfg.AllowedHeaders,
		MaxAge:         cfg.MaxAge,
	})
	return logger.Requests(c.Handler(router))
}

// Helper function to chain middlewares
func chain(route string, handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) httprouter.Handle {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return wrap(route, handler)
}

// Convert http.HandlerFunc to httprouter.Handle
func wrap(route string, handler http.HandlerFunc) httprouter.Handle {
	instrumented := metrics.Instrument(route, handler)
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		// Inject params into context
		ctx := context.WithValue(r.Context(), apiContext.Params, ps)
		instrumented.ServeHTTP(w, r.WithContext(ctx))
	}
}
