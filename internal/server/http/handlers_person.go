package httpserver

import (
	"net/http"
	"strconv"

	"github.com/tracknest/tracknest/internal/model"
	"github.com/tracknest/tracknest/internal/service"
)

// pathID parses the {id} path segment. A non-integer value is reported with
// the parameter type mismatch body.
func (s *Server) pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeIntMismatch(w, r, name, raw)
		return 0, false
	}
	return id, true
}

// requireSelfOrAdmin gates person endpoints that the subject themselves or an
// ADMIN may reach.
func (s *Server) requireSelfOrAdmin(w http.ResponseWriter, r *http.Request, id int64) (model.Principal, bool) {
	p, ok := s.requirePrincipal(w, r)
	if !ok {
		return model.Principal{}, false
	}
	if p.ID != id && !p.IsAdmin() {
		s.forbidden(w, r)
		return model.Principal{}, false
	}
	return p, true
}

func (s *Server) handleGetPerson(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	if _, ok := s.requireSelfOrAdmin(w, r, id); !ok {
		return
	}
	p, err := s.persons.FindByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPersonView(p))
}

func (s *Server) handleListPersons(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	list, err := s.persons.FindAll(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	views := make([]personView, 0, len(list))
	for i := range list {
		views = append(views, toPersonView(&list[i]))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleListPersonsPaginated(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	page, ok := s.pathID(w, r, "page")
	if !ok {
		return
	}
	if page < 0 {
		page = 0
	}
	result, err := s.persons.FindAllPaginated(r.Context(), model.PageRequest{Number: int(page), Size: s.pageSize})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPersonPageView(result))
}

// handleAddAdmin creates an ADMIN account. Only reachable by an ADMIN; the
// role is forced server-side just like registration forces USER.
func (s *Server) handleAddAdmin(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	var req createPersonRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.persons.Create(r.Context(), service.CreatePerson{
		FullName: req.FullName,
		Role:     model.RoleAdmin,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPersonView(p))
}

func (s *Server) handlePatchProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	if _, ok := s.requireSelfOrAdmin(w, r, id); !ok {
		return
	}
	var req patchProfileRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.persons.PatchProfile(r.Context(), id, service.ProfilePatch{
		FullName: req.FullName,
		Username: req.Username,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPersonView(p))
}

// handleChangePassword rotates a password. Self only: an ADMIN must not be
// able to verify or set another person's password.
func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	p, ok := s.requirePrincipal(w, r)
	if !ok {
		return
	}
	if p.ID != id {
		s.forbidden(w, r)
		return
	}
	var req changePasswordRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	person, err := s.persons.ChangePassword(r.Context(), id, service.PasswordChange{
		Current: req.CurrentPassword,
		New:     req.NewPassword,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPersonView(person))
}

func (s *Server) handleDeletePerson(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	p, ok := s.requireSelfOrAdmin(w, r, id)
	if !ok {
		return
	}
	if err := s.persons.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	// Deleting your own account ends the browser session too.
	if p.ID == id {
		s.setTokenCookie(w, "", 0)
	}
	w.WriteHeader(http.StatusNoContent)
}
