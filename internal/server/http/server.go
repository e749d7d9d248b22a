// Package httpserver exposes the task tracking API over JSON HTTP.
package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/tracknest/tracknest/internal/service"
	"github.com/tracknest/tracknest/internal/token"
)

// Server wires services into HTTP handlers.
type Server struct {
	log     *zap.Logger
	tokens  *token.Service
	persons *service.PersonService
	tasks   *service.TaskService

	pageSize int
}

// New constructs a Server. pageSize is the fixed page size for list endpoints.
func New(log *zap.Logger, tokens *token.Service, persons *service.PersonService, tasks *service.TaskService, pageSize int) *Server {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &Server{
		log:      log,
		tokens:   tokens,
		persons:  persons,
		tasks:    tasks,
		pageSize: pageSize,
	}
}

// Handler builds the route table and wraps it with the middleware chain:
// recover, then request logging, then the auth gate.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/logout", s.handleLogout)
	mux.HandleFunc("GET /api/auth/me", s.handleMe)

	// "all" and "paginated" are literal segments and win over {id}.
	mux.HandleFunc("GET /api/persons/all", s.handleListPersons)
	mux.HandleFunc("GET /api/persons/paginated/{page}", s.handleListPersonsPaginated)
	mux.HandleFunc("POST /api/persons/add-admin", s.handleAddAdmin)
	mux.HandleFunc("GET /api/persons/{id}", s.handleGetPerson)
	mux.HandleFunc("PATCH /api/persons/{id}/profile", s.handlePatchProfile)
	mux.HandleFunc("PUT /api/persons/{id}/password", s.handleChangePassword)
	mux.HandleFunc("DELETE /api/persons/{id}", s.handleDeletePerson)

	mux.HandleFunc("GET /api/tasks", s.handleListTasks)
	mux.HandleFunc("GET /api/tasks/my", s.handleMyTasks)
	mux.HandleFunc("GET /api/tasks/{id}", s.handleGetTask)
	mux.HandleFunc("POST /api/tasks", s.handleCreateTask)
	mux.HandleFunc("PUT /api/tasks/{id}", s.handleUpdateTask)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.handleDeleteTask)

	return s.recover(s.logging(s.authGate(mux)))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
