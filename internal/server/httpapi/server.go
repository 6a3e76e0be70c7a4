// Package httpapi exposes the REST JSON API. Handlers stay thin: decode,
// delegate to a service, map the result. Error mapping happens once, in
// writeError.
package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/mbaudry/moustass-web/internal/denylist"
	"github.com/mbaudry/moustass-web/internal/repository"
	"github.com/mbaudry/moustass-web/internal/service"
	"github.com/mbaudry/moustass-web/internal/token"
)

// Server wires services into HTTP handlers.
type Server struct {
	auth      service.AuthService
	users     service.UserService
	audio     service.AudioService
	financial service.FinancialService
	logs      service.AccessLogService

	tokens   *token.Manager
	userRepo repository.UserRepository
	revoked  denylist.Denylist

	log     *zap.Logger
	devMode bool
}

// Deps collects the server's constructor dependencies.
type Deps struct {
	Auth      service.AuthService
	Users     service.UserService
	Audio     service.AudioService
	Financial service.FinancialService
	Logs      service.AccessLogService

	Tokens   *token.Manager
	UserRepo repository.UserRepository
	Revoked  denylist.Denylist

	Log     *zap.Logger
	DevMode bool
}

// New constructs the HTTP server with injected services.
func New(d Deps) *Server {
	return &Server{
		auth:      d.Auth,
		users:     d.Users,
		audio:     d.Audio,
		financial: d.Financial,
		logs:      d.Logs,
		tokens:    d.Tokens,
		userRepo:  d.UserRepo,
		revoked:   d.Revoked,
		log:       d.Log,
		devMode:   d.DevMode,
	}
}

// Router returns the configured route table wrapped in logging and recovery
// middleware.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", s.handleHealth)

	// Auth
	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/logout", s.requireAuth(s.handleLogout))
	mux.HandleFunc("GET /api/auth/verify", s.requireAuth(s.handleVerify))
	mux.HandleFunc("POST /api/auth/change-password", s.requireAuth(s.handleChangePassword))
	mux.HandleFunc("POST /api/auth/forgot-password", s.handleForgotPassword)
	mux.HandleFunc("POST /api/auth/reset-password", s.handleResetPassword)

	// Profile
	mux.HandleFunc("GET /api/users/profile", s.requireAuth(s.handleGetProfile))
	mux.HandleFunc("PUT /api/users/profile", s.requireAuth(s.handleUpdateProfile))
	mux.HandleFunc("GET /api/users/{id}", s.requireAuth(s.handleGetUser))
	mux.HandleFunc("GET /api/users/{id}/logs", s.requireAuth(s.handleListUserLogs))

	// Audio records
	mux.HandleFunc("POST /api/audio", s.requireAuth(s.handleCreateAudio))
	mux.HandleFunc("GET /api/audio/user/{userId}", s.requireAuth(s.handleListAudio))
	mux.HandleFunc("GET /api/audio/{id}", s.requireAuth(s.handleGetAudio))
	mux.HandleFunc("GET /api/audio/{id}/data", s.requireAuth(s.handleGetAudioData))
	mux.HandleFunc("PUT /api/audio/{id}", s.requireAuth(s.handleUpdateAudio))
	mux.HandleFunc("DELETE /api/audio/{id}", s.requireAuth(s.handleDeleteAudio))

	// Financial records
	mux.HandleFunc("POST /api/financial", s.requireAuth(s.handleCreateFinancial))
	mux.HandleFunc("GET /api/financial/user/{userId}", s.requireAuth(s.handleListFinancial))
	mux.HandleFunc("GET /api/financial/{id}", s.requireAuth(s.handleGetFinancial))
	mux.HandleFunc("GET /api/financial/{id}/content", s.requireAuth(s.handleGetFinancialContent))
	mux.HandleFunc("PUT /api/financial/{id}", s.requireAuth(s.handleUpdateFinancial))
	mux.HandleFunc("DELETE /api/financial/{id}", s.requireAuth(s.handleDeleteFinancial))

	// Admin
	mux.HandleFunc("GET /api/admin/users", s.requireAuth(s.handleAdminListUsers))
	mux.HandleFunc("POST /api/admin/users", s.requireAuth(s.handleAdminCreateUser))
	mux.HandleFunc("GET /api/admin/users/{id}", s.requireAuth(s.handleGetUserByID))
	mux.HandleFunc("PUT /api/admin/users/{id}", s.requireAuth(s.handleAdminUpdateUser))
	mux.HandleFunc("DELETE /api/admin/users/{id}", s.requireAuth(s.handleAdminDeleteUser))
	mux.HandleFunc("GET /api/admin/logs", s.requireAuth(s.handleAdminListLogs))

	return s.withLogging(s.withRecover(mux))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
