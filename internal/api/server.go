// Package api exposes the form-builder services as a REST JSON API.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/formbuilder/internal/auth"
	"github.com/mmynk/formbuilder/internal/middleware"
	"github.com/mmynk/formbuilder/internal/service"
)

// Deps are the collaborators the API is built from.
type Deps struct {
	Auth      *service.AuthService
	Users     *service.UserService
	Forms     *service.FormService
	Responses *service.ResponseService
	Presets   *service.PresetService
	Fields    *service.FieldService
	Comments  *service.CommentService
	Verifier  *auth.Verifier

	// Registry receives the HTTP metrics and is served on /metrics.
	Registry *prometheus.Registry

	// Ping reports database health for /healthz. Optional.
	Ping func(ctx context.Context) error

	AllowedOrigins []string
	Logger         *slog.Logger
}

// Server routes HTTP requests to the services.
type Server struct {
	auth      *service.AuthService
	users     *service.UserService
	forms     *service.FormService
	responses *service.ResponseService
	presets   *service.PresetService
	fields    *service.FieldService
	comments  *service.CommentService

	gate     *middleware.Gate
	metrics  *middleware.Metrics
	registry *prometheus.Registry
	ping     func(ctx context.Context) error
	origins  []string
	logger   *slog.Logger
}

// New creates a Server. The metrics collectors are registered on
// deps.Registry, or on a fresh registry when it is nil.
func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	reg := deps.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	s := &Server{
		auth:      deps.Auth,
		users:     deps.Users,
		forms:     deps.Forms,
		responses: deps.Responses,
		presets:   deps.Presets,
		fields:    deps.Fields,
		comments:  deps.Comments,
		metrics:   middleware.NewMetrics(reg),
		registry:  reg,
		ping:      deps.Ping,
		origins:   deps.AllowedOrigins,
		logger:    logger,
	}
	s.gate = middleware.NewGate(deps.Verifier, s.writeError)
	return s
}

// Handler returns the full middleware chain around the router.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.routes()
	h = middleware.CORS(s.origins)(h)
	h = middleware.Recover(s.logger)(h)
	h = s.metrics.Middleware(h)
	h = middleware.Logging(s.logger)(h)
	return h
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	authed := s.gate.RequireAuth

	// Authentication
	mux.HandleFunc("POST /api/auth/register/{$}", s.gate.OptionalAuth(s.handleRegister))
	mux.HandleFunc("POST /api/auth/login/{$}", s.handleLogin)
	mux.HandleFunc("POST /api/auth/token/refresh/{$}", s.handleRefresh)
	mux.HandleFunc("POST /api/auth/token/verify/{$}", s.handleVerify)
	mux.HandleFunc("POST /api/auth/logout/{$}", authed(s.handleLogout))
	mux.HandleFunc("PUT /api/auth/change-password/{$}", authed(s.handleChangePassword))
	mux.HandleFunc("GET /api/user-info/{$}", authed(s.handleUserInfo))
	mux.HandleFunc("GET /api/user/{$}", authed(s.handleUserInfo))

	// Users (admin)
	mux.HandleFunc("GET /api/users/{$}", authed(s.handleListUsers))
	mux.HandleFunc("POST /api/users/{$}", authed(s.handleCreateUser))
	mux.HandleFunc("GET /api/users/{id}/{$}", authed(s.handleGetUser))
	mux.HandleFunc("PUT /api/users/{id}/{$}", authed(s.handleUpdateUser(false)))
	mux.HandleFunc("PATCH /api/users/{id}/{$}", authed(s.handleUpdateUser(true)))

	// Forms
	mux.HandleFunc("GET /api/forms/{$}", authed(s.handleListForms))
	mux.HandleFunc("POST /api/forms/{$}", authed(s.handleCreateForm))
	mux.HandleFunc("GET /api/forms/{id}/{$}", authed(s.handleGetForm))
	mux.HandleFunc("PUT /api/forms/{id}/{$}", authed(s.handleUpdateForm(false)))
	mux.HandleFunc("PATCH /api/forms/{id}/{$}", authed(s.handleUpdateForm(true)))
	mux.HandleFunc("DELETE /api/forms/{id}/{$}", authed(s.handleDeleteForm))
	mux.HandleFunc("POST /api/forms/{id}/submit/{$}", authed(s.handleSubmit))
	mux.HandleFunc("GET /api/forms/{id}/skeleton/{$}", authed(s.handleSkeleton))

	// Responses
	mux.HandleFunc("GET /api/responses/{$}", authed(s.handleListResponses))
	mux.HandleFunc("POST /api/responses/{$}", authed(s.handleCreateResponse))
	mux.HandleFunc("GET /api/responses/{id}/{$}", authed(s.handleGetResponse))
	mux.HandleFunc("PUT /api/responses/{id}/{$}", authed(s.handleUpdateResponse(false)))
	mux.HandleFunc("PATCH /api/responses/{id}/{$}", authed(s.handleUpdateResponse(true)))
	mux.HandleFunc("DELETE /api/responses/{id}/{$}", authed(s.handleDeleteResponse))
	mux.HandleFunc("DELETE /responses/{id}/{$}", authed(s.handleDeleteResponse))

	// Presets
	mux.HandleFunc("GET /api/presets/{$}", authed(s.handleListPresets))
	mux.HandleFunc("POST /api/presets/{$}", authed(s.handleCreatePreset))
	mux.HandleFunc("GET /api/presets/{id}/{$}", authed(s.handleGetPreset))
	mux.HandleFunc("PUT /api/presets/{id}/{$}", authed(s.handleUpdatePreset(false)))
	mux.HandleFunc("PATCH /api/presets/{id}/{$}", authed(s.handleUpdatePreset(true)))
	mux.HandleFunc("DELETE /api/presets/{id}/{$}", authed(s.handleDeletePreset))

	// Form fields
	mux.HandleFunc("GET /api/form-fields/{$}", authed(s.handleListFields))
	mux.HandleFunc("POST /api/form-fields/{$}", authed(s.handleCreateField))
	mux.HandleFunc("GET /api/form-fields/{id}/{$}", authed(s.handleGetField))
	mux.HandleFunc("PUT /api/form-fields/{id}/{$}", authed(s.handleUpdateField(false)))
	mux.HandleFunc("PATCH /api/form-fields/{id}/{$}", authed(s.handleUpdateField(true)))
	mux.HandleFunc("DELETE /api/form-fields/{id}/{$}", authed(s.handleDeleteField))

	// Comments
	mux.HandleFunc("GET /api/comments/{$}", authed(s.handleListComments))
	mux.HandleFunc("POST /api/comments/{$}", authed(s.handleCreateComment))
	mux.HandleFunc("GET /api/comments/{id}/{$}", authed(s.handleGetComment))
	mux.HandleFunc("PUT /api/comments/{id}/{$}", authed(s.handleUpdateComment))
	mux.HandleFunc("DELETE /api/comments/{id}/{$}", authed(s.handleDeleteComment))

	// Operations
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /healthz", s.handleHealth)

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.ping != nil {
		if err := s.ping(r.Context()); err != nil {
			s.logger.Error("Health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
