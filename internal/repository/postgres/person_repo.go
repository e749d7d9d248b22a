package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/tracknest/tracknest/internal/errs"
	"github.com/tracknest/tracknest/internal/model"
)

// PersonRepo implements PersonRepository using PostgreSQL.
type PersonRepo struct{ db *DB }

// NewPersonRepo constructs a person repository.
func NewPersonRepo(db *DB) *PersonRepo { return &PersonRepo{db: db} }

const personColumns = `person_id, full_name, role, username, password, created_at`

func scanPerson(row pgx.Row) (*model.Person, error) {
	var p model.Person
	err := row.Scan(&p.ID, &p.FullName, &p.Role, &p.Username, &p.PasswordHash, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrPersonNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Create inserts a new person row and returns it with the assigned id.
func (r *PersonRepo) Create(ctx context.Context, p *model.Person) (*model.Person, error) {
	const q = `
INSERT INTO persons (full_name, role, username, password)
VALUES ($1, $2, $3, $4)
RETURNING person_id, created_at`
	saved := *p
	err := r.db.Pool.QueryRow(ctx, q, p.FullName, p.Role, p.Username, p.PasswordHash).
		Scan(&saved.ID, &saved.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, errs.ErrDuplicateUsername
		}
		return nil, err
	}
	return &saved, nil
}

// GetByID selects a person by id.
func (r *PersonRepo) GetByID(ctx context.Context, id int64) (*model.Person, error) {
	const q = `SELECT ` + personColumns + ` FROM persons WHERE person_id=$1`
	return scanPerson(r.db.Pool.QueryRow(ctx, q, id))
}

// GetByUsername selects a person by username.
func (r *PersonRepo) GetByUsername(ctx context.Context, username string) (*model.Person, error) {
	const q = `SELECT ` + personColumns + ` FROM persons WHERE username=$1`
	return scanPerson(r.db.Pool.QueryRow(ctx, q, username))
}

// ExistsByUsername reports whether any person has the username.
func (r *PersonRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM persons WHERE username=$1)`
	var exists bool
	if err := r.db.Pool.QueryRow(ctx, q, username).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// ExistsByUsernameExcludingID reports whether a person other than id has the username.
func (r *PersonRepo) ExistsByUsernameExcludingID(ctx context.Context, username string, id int64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM persons WHERE username=$1 AND person_id<>$2)`
	var exists bool
	if err := r.db.Pool.QueryRow(ctx, q, username, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Update persists profile fields and password hash of an existing person.
func (r *PersonRepo) Update(ctx context.Context, p *model.Person) error {
	const q = `
UPDATE persons SET full_name=$2, username=$3, password=$4 WHERE person_id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, p.ID, p.FullName, p.Username, p.PasswordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return errs.ErrDuplicateUsername
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrPersonNotFound
	}
	return nil
}

// Delete removes a person row. Owned tasks go with it via the FK cascade.
func (r *PersonRepo) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM persons WHERE person_id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrPersonNotFound
	}
	return nil
}

// ListAll returns every person ordered by id.
func (r *PersonRepo) ListAll(ctx context.Context) ([]model.Person, error) {
	const q = `SELECT ` + personColumns + ` FROM persons ORDER BY person_id`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Person
	for rows.Next() {
		var p model.Person
		if err := rows.Scan(&p.ID, &p.FullName, &p.Role, &p.Username, &p.PasswordHash, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListPaginated returns one page of persons plus the total count.
func (r *PersonRepo) ListPaginated(ctx context.Context, page model.PageRequest) (model.PersonPage, error) {
	const count = `SELECT count(*) FROM persons`
	var total int64
	if err := r.db.Pool.QueryRow(ctx, count).Scan(&total); err != nil {
		return model.PersonPage{}, err
	}

	const q = `SELECT ` + personColumns + ` FROM persons ORDER BY person_id LIMIT $1 OFFSET $2`
	rows, err := r.db.Pool.Query(ctx, q, page.Size, page.Offset())
	if err != nil {
		return model.PersonPage{}, err
	}
	defer rows.Close()

	out := model.PersonPage{Page: page.Number, Size: page.Size, Total: total}
	for rows.Next() {
		var p model.Person
		if err := rows.Scan(&p.ID, &p.FullName, &p.Role, &p.Username, &p.PasswordHash, &p.CreatedAt); err != nil {
			return model.PersonPage{}, err
		}
		out.Items = append(out.Items, p)
	}
	return out, rows.Err()
}
