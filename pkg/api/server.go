package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/lumenhq/console/pkg/directory"
	"github.com/lumenhq/console/pkg/middleware"
	"github.com/lumenhq/console/pkg/observability"
	"github.com/lumenhq/console/pkg/rbac"
)

// Server implements the console's JSON API
type Server struct {
	registry  *rbac.Registry
	evaluator *rbac.Evaluator
	users     *directory.Store
	logger    *observability.Logger
	metrics   *observability.Metrics
}

// NewServer creates the API handler set
func NewServer(registry *rbac.Registry, evaluator *rbac.Evaluator, users *directory.Store, logger *observability.Logger, metrics *observability.Metrics) *Server {
	return &Server{
		registry:  registry,
		evaluator: evaluator,
		users:     users,
		logger:    logger,
		metrics:   metrics,
	}
}

// RegisterRoutes mounts the API endpoints on the router. The session
// middleware and route guard already run ahead of these handlers;
// admin endpoints add their own role checks as a second line.
func (s *Server) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/me", s.getMe).Methods(http.MethodGet)

	r.HandleFunc("/api/dashboard", s.getDashboard).Methods(http.MethodGet)
	r.HandleFunc("/api/dashboard/settings", s.getSettings).Methods(http.MethodGet)

	admin := r.PathPrefix("/api/admin").Subrouter()
	admin.Use(middleware.RequireRole(rbac.RoleAdmin))
	admin.HandleFunc("", s.getAdminOverview).Methods(http.MethodGet)
	admin.HandleFunc("/users", s.listUsers).Methods(http.MethodGet)
	admin.HandleFunc("/users", s.addUser).Methods(http.MethodPost)
	admin.HandleFunc("/users/{id}/role", s.updateUserRole).Methods(http.MethodPut)
	admin.HandleFunc("/users/{id}/status", s.updateUserStatus).Methods(http.MethodPut)
	admin.HandleFunc("/messages", s.getMessages).Methods(http.MethodGet)
	admin.HandleFunc("/support", s.getSupport).Methods(http.MethodGet)

	moderation := r.PathPrefix("/api/moderator").Subrouter()
	moderation.Use(middleware.RequireAnyRole(rbac.RoleModerator, rbac.RoleAdmin))
	moderation.HandleFunc("", s.getModerationQueue).Methods(http.MethodGet)

	r.HandleFunc("/api/debug", s.getDebug).Methods(http.MethodGet)

	// Page routes guarded by the route rules. The dashboard frontend
	// fetches its data from /api; these return the page descriptor.
	r.PathPrefix("/").HandlerFunc(s.servePage).Methods(http.MethodGet)
}
