package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tracknest/tracknest/internal/errs"
	"github.com/tracknest/tracknest/internal/model"
)

// personView is the outward representation of a person. The password hash
// never leaves the service boundary.
type personView struct {
	PersonID int64  `json:"personId"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
	Username string `json:"username"`
}

func toPersonView(p *model.Person) personView {
	return personView{
		PersonID: p.ID,
		FullName: p.FullName,
		Role:     string(p.Role),
		Username: p.Username,
	}
}

type taskView struct {
	ID             int64  `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	TrackingStatus string `json:"trackingStatus"`
	UserID         int64  `json:"userId"`
}

func toTaskView(t *model.Task) taskView {
	return taskView{
		ID:             t.ID,
		Title:          t.Title,
		Description:    t.Description,
		TrackingStatus: string(t.Status),
		UserID:         t.OwnerID,
	}
}

// pageView is the pagination envelope shared by list endpoints.
type pageView[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

func toTaskPageView(p model.TaskPage) pageView[taskView] {
	out := pageView[taskView]{
		Content:       []taskView{},
		Page:          p.Page,
		Size:          p.Size,
		TotalElements: p.Total,
		TotalPages:    p.TotalPages(),
	}
	for i := range p.Items {
		out.Content = append(out.Content, toTaskView(&p.Items[i]))
	}
	return out
}

func toPersonPageView(p model.PersonPage) pageView[personView] {
	out := pageView[personView]{
		Content:       []personView{},
		Page:          p.Page,
		Size:          p.Size,
		TotalElements: p.Total,
		TotalPages:    p.TotalPages(),
	}
	for i := range p.Items {
		out.Content = append(out.Content, toPersonView(&p.Items[i]))
	}
	return out
}

// decodeBody unmarshals a JSON request body into dst.
func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("malformed request body: %w", errs.ErrInvalidInput)
	}
	return nil
}

// Field constraint bounds, mirrored in the validation messages.
const (
	fullNameMin = 8
	fullNameMax = 100
	usernameMin = 8
	usernameMax = 50
	passwordMin = 8
	titleMax    = 100
)

type fieldErrors map[string]string

func (f fieldErrors) asError() error {
	if len(f) == 0 {
		return nil
	}
	return &errs.ValidationError{Fields: f}
}

func checkLen(f fieldErrors, field, value string, min, max int) {
	if len(value) < min || (max > 0 && len(value) > max) {
		if max > 0 {
			f[field] = fmt.Sprintf("%s must be %d - %d characters.", field, min, max)
		} else {
			f[field] = fmt.Sprintf("%s must be a minimum of %d characters.", field, min)
		}
	}
}

type createPersonRequest struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (req createPersonRequest) validate() error {
	f := fieldErrors{}
	checkLen(f, "fullName", req.FullName, fullNameMin, fullNameMax)
	checkLen(f, "username", req.Username, usernameMin, usernameMax)
	checkLen(f, "password", req.Password, passwordMin, 0)
	return f.asError()
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (req loginRequest) validate() error {
	f := fieldErrors{}
	if req.Username == "" {
		f["username"] = "username must not be blank."
	}
	if req.Password == "" {
		f["password"] = "password must not be blank."
	}
	return f.asError()
}

type patchProfileRequest struct {
	FullName *string `json:"fullName"`
	Username *string `json:"username"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (req changePasswordRequest) validate() error {
	f := fieldErrors{}
	checkLen(f, "currentPassword", req.CurrentPassword, passwordMin, 0)
	checkLen(f, "newPassword", req.NewPassword, passwordMin, 0)
	return f.asError()
}

type taskRequest struct {
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	TrackingStatus *string `json:"trackingStatus"`
}

func (req taskRequest) validate() error {
	f := fieldErrors{}
	if req.Title == "" {
		f["title"] = "Title is required"
	} else if len(req.Title) > titleMax {
		f["title"] = fmt.Sprintf("Title must be under %d characters", titleMax)
	}
	return f.asError()
}
