package repository

import (
	"context"

	"github.com/tracknest/tracknest/internal/model"
)

// TaskRepository provides CRUD and filtered queries over tasks.
type TaskRepository interface {
	// Create inserts a new task and returns it with the assigned id.
	Create(ctx context.Context, t *model.Task) (*model.Task, error)
	// GetByID loads a task by id.
	GetByID(ctx context.Context, id int64) (*model.Task, error)
	// Update persists title, description and status of an existing task.
	// The owner column is never rewritten.
	Update(ctx context.Context, t *model.Task) error
	// Delete removes a task by id.
	Delete(ctx context.Context, id int64) error
	// List returns one page of tasks matching the filter plus the total
	// match count. Filter fields are independent predicates ANDed together.
	List(ctx context.Context, f model.TaskFilter, page model.PageRequest) (model.TaskPage, error)
}
