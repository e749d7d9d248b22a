// Package service contains application services for persons and tasks.
package service

import (
	"context"
	"fmt"
	"strings"

	pkgcrypto "github.com/tracknest/tracknest/internal/crypto"
	"github.com/tracknest/tracknest/internal/errs"
	"github.com/tracknest/tracknest/internal/limiter"
	"github.com/tracknest/tracknest/internal/model"
	"github.com/tracknest/tracknest/internal/repository"
)

// CreatePerson carries the fields needed to register an account. Role is
// decided by the calling endpoint (self-registration forces USER,
// admin-creation forces ADMIN), never by the client.
type CreatePerson struct {
	FullName string
	Role     model.Role
	Username string
	Password string
}

// ProfilePatch is a partial profile update; nil fields are left untouched.
type ProfilePatch struct {
	FullName *string
	Username *string
}

// PasswordChange carries a password rotation request.
type PasswordChange struct {
	Current string
	New     string
}

// PersonService implements account CRUD and login. It owns password-hash
// verification and username uniqueness enforcement.
type PersonService struct {
	persons repository.PersonRepository
	lim     limiter.Limiter
}

// NewPersonService constructs a PersonService.
func NewPersonService(persons repository.PersonRepository, lim limiter.Limiter) *PersonService {
	return &PersonService{persons: persons, lim: lim}
}

// FindByID returns the person with the given id.
func (s *PersonService) FindByID(ctx context.Context, id int64) (*model.Person, error) {
	p, err := s.persons.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("person with id %d: %w", id, err)
	}
	return p, nil
}

// FindAll returns every person. Unlike the paginated variant it errors when
// there are no persons at all; the two behaviors are intentionally distinct.
func (s *PersonService) FindAll(ctx context.Context) ([]model.Person, error) {
	list, err := s.persons.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("no persons exist: %w", errs.ErrPersonNotFound)
	}
	return list, nil
}

// FindAllPaginated returns one page of persons. An empty page is a valid
// result.
func (s *PersonService) FindAllPaginated(ctx context.Context, page model.PageRequest) (model.PersonPage, error) {
	return s.persons.ListPaginated(ctx, page)
}

// Login authenticates by username and password, rate limited per
// (username, client ip). An unknown username and a wrong password produce the
// same error so usernames cannot be enumerated.
func (s *PersonService) Login(ctx context.Context, username, password, ip string) (*model.Person, error) {
	ipHash := limiter.HashIP(ip)

	allowed, _, err := s.lim.Allow(ctx, username, ipHash)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, errs.ErrRateLimited
	}

	p, err := s.persons.GetByUsername(ctx, username)
	if err != nil || !pkgcrypto.VerifyPassword(password, p.PasswordHash) {
		if blocked, _, ferr := s.lim.Failure(ctx, username, ipHash); ferr == nil && blocked {
			return nil, errs.ErrRateLimited
		}
		// lookup errors are masked as bad credentials
		return nil, errs.ErrBadCredentials
	}

	// Success: reset counters (best-effort).
	_ = s.lim.Success(ctx, username, ipHash)

	return p, nil
}

// Create registers a new person with a freshly hashed password.
func (s *PersonService) Create(ctx context.Context, req CreatePerson) (*model.Person, error) {
	taken, err := s.persons.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, errs.ErrDuplicateUsername
	}
	hash, err := pkgcrypto.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	return s.persons.Create(ctx, &model.Person{
		FullName:     req.FullName,
		Role:         req.Role,
		Username:     req.Username,
		PasswordHash: hash,
	})
}

// PatchProfile applies a partial update to fullName and username. Supplied
// fields are trimmed; a field that trims to empty is invalid. A patch with no
// fields set returns the unchanged person without a write.
func (s *PersonService) PatchProfile(ctx context.Context, id int64, patch ProfilePatch) (*model.Person, error) {
	p, err := s.persons.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("person with id %d: %w", id, err)
	}

	changed := false

	if patch.FullName != nil {
		name := strings.TrimSpace(*patch.FullName)
		if name == "" {
			return nil, fmt.Errorf("full name must not be blank: %w", errs.ErrInvalidInput)
		}
		p.FullName = name
		changed = true
	}

	if patch.Username != nil {
		uname := strings.TrimSpace(*patch.Username)
		if uname == "" {
			return nil, fmt.Errorf("username must not be blank: %w", errs.ErrInvalidInput)
		}
		if uname != p.Username {
			taken, err := s.persons.ExistsByUsernameExcludingID(ctx, uname, id)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, errs.ErrDuplicateUsername
			}
		}
		p.Username = uname
		changed = true
	}

	if !changed {
		return p, nil
	}
	if err := s.persons.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ChangePassword rotates a person's password after verifying the current one.
// The new password must differ from the current one.
func (s *PersonService) ChangePassword(ctx context.Context, id int64, change PasswordChange) (*model.Person, error) {
	p, err := s.persons.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("person with id %d: %w", id, err)
	}

	if !pkgcrypto.VerifyPassword(change.Current, p.PasswordHash) {
		return nil, errs.ErrBadCredentials
	}
	if pkgcrypto.VerifyPassword(change.New, p.PasswordHash) {
		return nil, fmt.Errorf("new password must differ from the current one: %w", errs.ErrInvalidInput)
	}

	hash, err := pkgcrypto.HashPassword(change.New)
	if err != nil {
		return nil, err
	}
	p.PasswordHash = hash
	if err := s.persons.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a person by id.
func (s *PersonService) Delete(ctx context.Context, id int64) error {
	if err := s.persons.Delete(ctx, id); err != nil {
		return fmt.Errorf("person with id %d: %w", id, err)
	}
	return nil
}
