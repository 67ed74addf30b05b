package web

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/users"
)

// Guard authenticates requests from their Authorization header: it extracts
// the bearer token, verifies the signature and expiry, and resolves the
// subject to a stored user.
type Guard struct {
	secret []byte
	users  users.Repository
}

func NewGuard(secret []byte, users users.Repository) *Guard {
	return &Guard{secret: secret, users: users}
}

// Authenticate turns an Authorization header value into the user it proves.
// Each failure mode has its own sentinel, but all of them map to a 401 at
// the boundary.
func (g *Guard) Authenticate(ctx context.Context, header string) (*models.User, error) {
	if header == "" {
		return nil, common.ErrMissingCredential
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, common.ErrMalformedCredential
	}

	subject, err := auth.GetSubjectFromToken(parts[1], g.secret)
	if err != nil {
		return nil, common.ErrInvalidToken
	}

	user, err := g.users.GetByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// A valid token may outlive its user.
			return nil, common.ErrPrincipalNotFound
		}
		return nil, err
	}
	return user, nil
}

// requireAuth rejects unauthenticated requests and stores the resolved user
// in the request context for handlers downstream.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Authorization")

		user, err := s.guard.Authenticate(r.Context(), r.Header.Get("Authorization"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

// logRequests logs one line per request with method, path, status and
// duration.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.logger.Info(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// recoverPanics converts handler panics into plain 500 responses instead of
// dropping the connection.
func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				w.Header().Set("Connection", "close")
				s.logger.Error(r.Context(), "panic in handler", "method", r.Method, "path", r.URL.Path, "panic", v)
				writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
