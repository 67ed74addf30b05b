// Package web exposes the HTTP API: registration, token issuance, and
// owner-scoped task CRUD behind bearer authentication.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
)

type Server struct {
	address string
	logger  logging.Logger
	guard   *Guard
	users   *services.UserService
	tasks   *services.TaskService
}

func NewServer(address string, logger logging.Logger, guard *Guard, users *services.UserService, tasks *services.TaskService) *Server {
	return &Server{
		address: address,
		logger:  logger,
		guard:   guard,
		users:   users,
		tasks:   tasks,
	}
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.healthHandler)

	mux.HandleFunc("POST /users", s.registerUserHandler)
	mux.HandleFunc("POST /token", s.createTokenHandler)

	mux.HandleFunc("POST /tasks", s.requireAuth(s.createTaskHandler))
	mux.HandleFunc("GET /tasks", s.requireAuth(s.listTasksHandler))
	mux.HandleFunc("GET /tasks/{id}", s.requireAuth(s.getTaskHandler))
	mux.HandleFunc("PUT /tasks/{id}", s.requireAuth(s.updateTaskHandler))
	mux.HandleFunc("DELETE /tasks/{id}", s.requireAuth(s.deleteTaskHandler))

	return s.recoverPanics(s.logRequests(mux))
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.address,
		Handler:      s.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "starting http server", "addr", s.address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
