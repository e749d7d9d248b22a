// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/tracknest/tracknest/internal/model"
)

// PersonRepository provides CRUD access to person accounts.
type PersonRepository interface {
	// Create inserts a new person and returns it with the assigned id.
	Create(ctx context.Context, p *model.Person) (*model.Person, error)
	// GetByID loads a person by id.
	GetByID(ctx context.Context, id int64) (*model.Person, error)
	// GetByUsername loads a person by username.
	GetByUsername(ctx context.Context, username string) (*model.Person, error)
	// ExistsByUsername reports whether any person has the username.
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// ExistsByUsernameExcludingID reports whether a person other than id has
	// the username.
	ExistsByUsernameExcludingID(ctx context.Context, username string, id int64) (bool, error)
	// Update persists changed profile fields and password hash.
	Update(ctx context.Context, p *model.Person) error
	// Delete removes a person by id.
	Delete(ctx context.Context, id int64) error
	// ListAll returns every person, ordered by id.
	ListAll(ctx context.Context) ([]model.Person, error)
	// ListPaginated returns one page of persons and the total count.
	ListPaginated(ctx context.Context, page model.PageRequest) (model.PersonPage, error)
}
