// Package model defines domain entities used by services and repositories.
package model

import (
	"fmt"
	"time"
)

// Role is a person's access level. Closed set, validated at every boundary.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// Roles lists all valid roles, in declaration order.
func Roles() []Role { return []Role{RoleAdmin, RoleUser} }

// ParseRole validates a role string coming from the outside (request body,
// token claim).
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleUser:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Status is a task's tracking state.
type Status string

const (
	StatusToDo       Status = "TO_DO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
)

// Statuses lists all valid tracking statuses, in declaration order.
func Statuses() []Status { return []Status{StatusToDo, StatusInProgress, StatusDone} }

// ParseStatus validates a tracking status string from a request.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusToDo, StatusInProgress, StatusDone:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Person is an account stored on the server. PasswordHash is never serialized
// outward.
type Person struct {
	ID           int64
	FullName     string
	Role         Role
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Task is a single tracked work item. OwnerID is set once at creation and
// never rewritten by update or delete.
type Task struct {
	ID          int64
	Title       string
	Description string
	Status      Status
	OwnerID     int64
}

// Principal is the authenticated identity reconstructed from a validated
// token. It lives only for the duration of a request.
type Principal struct {
	ID       int64
	FullName string
	Username string
	Role     Role
}

// IsAdmin reports whether the principal carries the ADMIN role.
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// PageRequest selects a zero-based page of a fixed size.
type PageRequest struct {
	Number int
	Size   int
}

// Offset returns the row offset for the page.
func (p PageRequest) Offset() int { return p.Number * p.Size }

// TaskPage is one page of tasks together with the total match count.
type TaskPage struct {
	Items []Task
	Page  int
	Size  int
	Total int64
}

// TotalPages returns the number of pages needed for Total items.
func (p TaskPage) TotalPages() int {
	if p.Size <= 0 {
		return 0
	}
	return int((p.Total + int64(p.Size) - 1) / int64(p.Size))
}

// PersonPage is one page of persons together with the total count.
type PersonPage struct {
	Items []Person
	Page  int
	Size  int
	Total int64
}

// TotalPages returns the number of pages needed for Total items.
func (p PersonPage) TotalPages() int {
	if p.Size <= 0 {
		return 0
	}
	return int((p.Total + int64(p.Size) - 1) / int64(p.Size))
}

// TaskFilter narrows task queries. Set fields are ANDed together.
type TaskFilter struct {
	OwnerID *int64  // only tasks owned by this person
	Status  *Status // only tasks in this state
	Title   string  // case-insensitive substring match, empty means any
}
