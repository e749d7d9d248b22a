package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/tracknest/tracknest/internal/errs"
	"github.com/tracknest/tracknest/internal/model"
)

// TaskRepo implements TaskRepository using PostgreSQL.
type TaskRepo struct{ db *DB }

// NewTaskRepo constructs a task repository.
func NewTaskRepo(db *DB) *TaskRepo { return &TaskRepo{db: db} }

const taskColumns = `id, title, description, tracking_status, person_id`

// Create inserts a new task row and returns it with the assigned id.
func (r *TaskRepo) Create(ctx context.Context, t *model.Task) (*model.Task, error) {
	const q = `
INSERT INTO tasks (title, description, tracking_status, person_id)
VALUES ($1, $2, $3, $4)
RETURNING id`
	saved := *t
	err := r.db.Pool.QueryRow(ctx, q, t.Title, t.Description, t.Status, t.OwnerID).Scan(&saved.ID)
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// GetByID selects a task by id.
func (r *TaskRepo) GetByID(ctx context.Context, id int64) (*model.Task, error) {
	const q = `SELECT ` + taskColumns + ` FROM tasks WHERE id=$1`
	var t model.Task
	err := r.db.Pool.QueryRow(ctx, q, id).
		Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.OwnerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrTaskNotFound
		}
		return nil, err
	}
	return &t, nil
}

// Update persists title, description and status. person_id is not touched.
func (r *TaskRepo) Update(ctx context.Context, t *model.Task) error {
	const q = `
UPDATE tasks SET title=$2, description=$3, tracking_status=$4 WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, t.ID, t.Title, t.Description, t.Status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrTaskNotFound
	}
	return nil
}

// Delete removes a task row.
func (r *TaskRepo) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM tasks WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrTaskNotFound
	}
	return nil
}

// List returns one page of tasks matching the filter plus the total match
// count. Each set filter field adds one predicate; predicates are ANDed.
func (r *TaskRepo) List(ctx context.Context, f model.TaskFilter, page model.PageRequest) (model.TaskPage, error) {
	where, args := buildTaskWhere(f)

	var total int64
	count := `SELECT count(*) FROM tasks` + where
	if err := r.db.Pool.QueryRow(ctx, count, args...).Scan(&total); err != nil {
		return model.TaskPage{}, err
	}

	q := fmt.Sprintf(`SELECT `+taskColumns+` FROM tasks%s ORDER BY id LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2)
	rows, err := r.db.Pool.Query(ctx, q, append(args, page.Size, page.Offset())...)
	if err != nil {
		return model.TaskPage{}, err
	}
	defer rows.Close()

	out := model.TaskPage{Page: page.Number, Size: page.Size, Total: total}
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.OwnerID); err != nil {
			return model.TaskPage{}, err
		}
		out.Items = append(out.Items, t)
	}
	return out, rows.Err()
}

// buildTaskWhere renders the WHERE clause for a filter, with positional args.
func buildTaskWhere(f model.TaskFilter) (string, []any) {
	var preds []string
	var args []any
	if f.OwnerID != nil {
		args = append(args, *f.OwnerID)
		preds = append(preds, fmt.Sprintf("person_id=$%d", len(args)))
	}
	if f.Status != nil {
		args = append(args, *f.Status)
		preds = append(preds, fmt.Sprintf("tracking_status=$%d", len(args)))
	}
	if f.Title != "" {
		args = append(args, f.Title)
		preds = append(preds, fmt.Sprintf("title ILIKE '%%'||$%d||'%%'", len(args)))
	}
	if len(preds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(preds, " AND "), args
}
