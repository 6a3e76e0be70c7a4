package httpapi

import (
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mbaudry/moustass-web/internal/model"
)

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withLogging logs request metadata. Payloads are never logged.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info("http",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("dur", time.Since(start)),
			zap.String("remote", clientIP(r)),
		)
	})
}

// withRecover turns panics into plain 500s instead of dropped connections.
func (s *Server) withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.Error("panic",
					zap.Any("reason", rec),
					zap.ByteString("stack", debug.Stack()),
					zap.String("path", r.URL.Path),
				)
				s.writeJSON(w, http.StatusInternalServerError, errorBody{Message: "internal error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// requireAuth verifies the bearer token and attaches the session to context.
// The account is re-read on every request so deactivation, deletion and role
// changes take effect immediately rather than at token expiry.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			s.writeJSON(w, http.StatusUnauthorized, errorBody{Message: "missing bearer token"})
			return
		}
		claims, err := s.tokens.Verify(raw)
		if err != nil {
			s.writeError(w, err)
			return
		}
		revoked, err := s.revoked.IsRevoked(r.Context(), claims.ID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		if revoked {
			s.writeJSON(w, http.StatusUnauthorized, errorBody{Message: "token revoked"})
			return
		}

		p, err := claims.Principal()
		if err != nil {
			s.writeJSON(w, http.StatusUnauthorized, errorBody{Message: "unauthorized"})
			return
		}
		u, err := s.userRepo.GetByID(r.Context(), p.UserID)
		if err != nil || !u.IsActive {
			s.writeJSON(w, http.StatusUnauthorized, errorBody{Message: "unauthorized"})
			return
		}

		sess := sessionInfo{
			Principal: model.Principal{UserID: u.ID, Role: u.Role},
			JTI:       claims.ID,
			ExpiresAt: claims.ExpiresAt.Time,
		}
		next(w, r.WithContext(withSession(r.Context(), sess)))
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return "", false
	}
	tok := strings.TrimSpace(h[len(prefix):])
	return tok, tok != ""
}

// clientIP prefers X-Forwarded-For so the limiter and audit trail see the
// real client behind a reverse proxy.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if ip, _, ok := strings.Cut(fwd, ","); ok {
			return strings.TrimSpace(ip)
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
