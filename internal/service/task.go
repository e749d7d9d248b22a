package service

import (
	"context"
	"fmt"

	"github.com/tracknest/tracknest/internal/errs"
	"github.com/tracknest/tracknest/internal/model"
	"github.com/tracknest/tracknest/internal/repository"
)

// TaskDetails carries task fields from a create or update request. A nil
// Status means "not supplied": creation forces TO_DO either way, update keeps
// the stored status.
type TaskDetails struct {
	Title       string
	Description string
	Status      *model.Status
}

// personFinder is the slice of PersonService the task service needs to
// resolve owners.
type personFinder interface {
	FindByID(ctx context.Context, id int64) (*model.Person, error)
}

// TaskService implements task CRUD and filtered listing. It owns the
// ownership check on mutation.
type TaskService struct {
	tasks   repository.TaskRepository
	persons personFinder

	// adminOverride lets ADMIN principals update and delete tasks they do
	// not own. Off by default.
	adminOverride bool
}

// NewTaskService constructs a TaskService.
func NewTaskService(tasks repository.TaskRepository, persons personFinder, adminOverride bool) *TaskService {
	return &TaskService{tasks: tasks, persons: persons, adminOverride: adminOverride}
}

// Create stores a new task owned by ownerID. The owner must exist; any status
// supplied by the client is ignored and the task starts as TO_DO.
func (s *TaskService) Create(ctx context.Context, details TaskDetails, ownerID int64) (*model.Task, error) {
	owner, err := s.persons.FindByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return s.tasks.Create(ctx, &model.Task{
		Title:       details.Title,
		Description: details.Description,
		Status:      model.StatusToDo,
		OwnerID:     owner.ID,
	})
}

// GetByID returns the task with the given id.
func (s *TaskService) GetByID(ctx context.Context, id int64) (*model.Task, error) {
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("task with id %d: %w", id, err)
	}
	return t, nil
}

// Update overwrites title and description of the task, and the status only
// when one is supplied. The requester must own the task; failure leaves the
// stored row untouched.
func (s *TaskService) Update(ctx context.Context, id int64, details TaskDetails, requester model.Principal) (*model.Task, error) {
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("task with id %d: %w", id, err)
	}
	if err := s.checkOwnership(t, requester); err != nil {
		return nil, err
	}

	t.Title = details.Title
	t.Description = details.Description
	if details.Status != nil {
		t.Status = *details.Status
	}

	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Delete removes the task after the same not-found and ownership checks as
// Update.
func (s *TaskService) Delete(ctx context.Context, id int64, requester model.Principal) error {
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("task with id %d: %w", id, err)
	}
	if err := s.checkOwnership(t, requester); err != nil {
		return err
	}
	return s.tasks.Delete(ctx, id)
}

// List returns one page of tasks matching the filter. Every listing variant
// (all tasks, by status, by owner, by title substring, and combinations) is a
// filter combination. An empty page is a valid result.
func (s *TaskService) List(ctx context.Context, f model.TaskFilter, page model.PageRequest) (model.TaskPage, error) {
	return s.tasks.List(ctx, f, page)
}

func (s *TaskService) checkOwnership(t *model.Task, requester model.Principal) error {
	if t.OwnerID == requester.ID {
		return nil
	}
	if s.adminOverride && requester.IsAdmin() {
		return nil
	}
	return fmt.Errorf("task %d is not owned by person %d: %w", t.ID, requester.ID, errs.ErrForbidden)
}
