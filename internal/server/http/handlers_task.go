package httpserver

import (
	"net/http"
	"strconv"

	"github.com/tracknest/tracknest/internal/model"
	"github.com/tracknest/tracknest/internal/service"
)

// taskFilterFromQuery builds the list filter from query parameters. ok is
// false when a parameter failed to parse and the response is already written.
func (s *Server) taskFilterFromQuery(w http.ResponseWriter, r *http.Request) (model.TaskFilter, model.PageRequest, bool) {
	var f model.TaskFilter
	q := r.URL.Query()

	if raw := q.Get("status"); raw != "" {
		st, err := model.ParseStatus(raw)
		if err != nil {
			writeEnumMismatch(w, r, raw, model.Statuses())
			return f, model.PageRequest{}, false
		}
		f.Status = &st
	}
	if raw := q.Get("owner"); raw != "" {
		owner, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeIntMismatch(w, r, "owner", raw)
			return f, model.PageRequest{}, false
		}
		f.OwnerID = &owner
	}
	f.Title = q.Get("title")

	page := model.PageRequest{Number: 0, Size: s.pageSize}
	if raw := q.Get("page"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeIntMismatch(w, r, "page", raw)
			return f, model.PageRequest{}, false
		}
		if n > 0 {
			page.Number = int(n)
		}
	}
	return f, page, true
}

// handleListTasks is the ADMIN listing over all persons' tasks.
func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	f, page, ok := s.taskFilterFromQuery(w, r)
	if !ok {
		return
	}
	result, err := s.tasks.List(r.Context(), f, page)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskPageView(result))
}

// handleMyTasks lists the principal's own tasks; the owner filter is pinned to
// the principal regardless of query parameters.
func (s *Server) handleMyTasks(w http.ResponseWriter, r *http.Request) {
	p, ok := s.requirePrincipal(w, r)
	if !ok {
		return
	}
	f, page, ok := s.taskFilterFromQuery(w, r)
	if !ok {
		return
	}
	owner := p.ID
	f.OwnerID = &owner
	result, err := s.tasks.List(r.Context(), f, page)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskPageView(result))
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requirePrincipal(w, r); !ok {
		return
	}
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	t, err := s.tasks.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskView(t))
}

// taskDetails converts the request body, rejecting an unknown status value.
func (s *Server) taskDetails(w http.ResponseWriter, r *http.Request, req taskRequest) (service.TaskDetails, bool) {
	details := service.TaskDetails{Title: req.Title, Description: req.Description}
	if req.TrackingStatus != nil {
		st, err := model.ParseStatus(*req.TrackingStatus)
		if err != nil {
			writeEnumMismatch(w, r, *req.TrackingStatus, model.Statuses())
			return details, false
		}
		details.Status = &st
	}
	return details, true
}

// handleCreateTask stores a new task owned by the principal. Any supplied
// status is ignored; new tasks start as TO_DO.
func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	p, ok := s.requirePrincipal(w, r)
	if !ok {
		return
	}
	var req taskRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	details, ok := s.taskDetails(w, r, req)
	if !ok {
		return
	}
	t, err := s.tasks.Create(r.Context(), details, p.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTaskView(t))
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	p, ok := s.requirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	var req taskRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	details, ok := s.taskDetails(w, r, req)
	if !ok {
		return
	}
	t, err := s.tasks.Update(r.Context(), id, details, p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskView(t))
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	p, ok := s.requirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.tasks.Delete(r.Context(), id, p); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
