package httpserver

import (
	"net"
	"net/http"

	"github.com/tracknest/tracknest/internal/model"
	"github.com/tracknest/tracknest/internal/service"
)

const cookieName = "token"

// setTokenCookie propagates the issued token as an HttpOnly cookie so browser
// clients authenticate without touching the Authorization header. maxAge <= 0
// clears the cookie.
func (s *Server) setTokenCookie(w http.ResponseWriter, token string, maxAge int) {
	value := token
	if maxAge <= 0 {
		// MaxAge -1 emits Max-Age=0, which deletes the cookie.
		value = ""
		maxAge = -1
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// clientIP strips the port from RemoteAddr for the login rate limiter.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// issueSession issues a token for the person, sets the cookie and writes the
// person view. Shared by register, add-admin and login.
func (s *Server) issueSession(w http.ResponseWriter, r *http.Request, p *model.Person, status int) {
	tok, err := s.tokens.Issue(model.Principal{
		ID:       p.ID,
		FullName: p.FullName,
		Username: p.Username,
		Role:     p.Role,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.setTokenCookie(w, tok, int(s.tokens.TTL().Seconds()))
	writeJSON(w, status, toPersonView(p))
}

// handleRegister creates a USER account. The role is never taken from the
// request body.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
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
		Role:     model.RoleUser,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.issueSession(w, r, p, http.StatusCreated)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	p, err := s.persons.Login(r.Context(), req.Username, req.Password, clientIP(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.issueSession(w, r, p, http.StatusOK)
}

// handleLogout clears the token cookie. Tokens themselves stay valid until
// expiry; logout only drops the browser session.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.setTokenCookie(w, "", 0)
	w.WriteHeader(http.StatusNoContent)
}

// handleMe returns the account behind the current token.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	p, ok := s.requirePrincipal(w, r)
	if !ok {
		return
	}
	person, err := s.persons.FindByID(r.Context(), p.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPersonView(person))
}
