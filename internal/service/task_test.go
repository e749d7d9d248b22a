package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tracknest/tracknest/internal/errs"
	"github.com/tracknest/tracknest/internal/model"
	"github.com/tracknest/tracknest/internal/repository"
)

type fakeTasks struct {
	byID   map[int64]*model.Task
	nextID int64

	updateCalls int
	deleteCalls int
}

var _ repository.TaskRepository = (*fakeTasks)(nil)

func newFakeTasks() *fakeTasks {
	return &fakeTasks{byID: map[int64]*model.Task{}, nextID: 1}
}

func (f *fakeTasks) Create(_ context.Context, t *model.Task) (*model.Task, error) {
	cpy := *t
	cpy.ID = f.nextID
	f.nextID++
	f.byID[cpy.ID] = &cpy
	out := cpy
	return &out, nil
}

func (f *fakeTasks) GetByID(_ context.Context, id int64) (*model.Task, error) {
	t, ok := f.byID[id]
	if !ok {
		return nil, errs.ErrTaskNotFound
	}
	c := *t
	return &c, nil
}

func (f *fakeTasks) Update(_ context.Context, t *model.Task) error {
	f.updateCalls++
	stored, ok := f.byID[t.ID]
	if !ok {
		return errs.ErrTaskNotFound
	}
	stored.Title = t.Title
	stored.Description = t.Description
	stored.Status = t.Status
	return nil
}

func (f *fakeTasks) Delete(_ context.Context, id int64) error {
	f.deleteCalls++
	if _, ok := f.byID[id]; !ok {
		return errs.ErrTaskNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeTasks) List(_ context.Context, flt model.TaskFilter, page model.PageRequest) (model.TaskPage, error) {
	var matched []model.Task
	for id := int64(1); id < f.nextID; id++ {
		t, ok := f.byID[id]
		if !ok {
			continue
		}
		if flt.OwnerID != nil && t.OwnerID != *flt.OwnerID {
			continue
		}
		if flt.Status != nil && t.Status != *flt.Status {
			continue
		}
		if flt.Title != "" && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(flt.Title)) {
			continue
		}
		matched = append(matched, *t)
	}
	out := model.TaskPage{Page: page.Number, Size: page.Size, Total: int64(len(matched))}
	lo := page.Offset()
	for i := lo; i < len(matched) && i < lo+page.Size; i++ {
		out.Items = append(out.Items, matched[i])
	}
	return out, nil
}

type staticPersons struct{ known map[int64]*model.Person }

func (s staticPersons) FindByID(_ context.Context, id int64) (*model.Person, error) {
	p, ok := s.known[id]
	if !ok {
		return nil, errs.ErrPersonNotFound
	}
	return p, nil
}

var (
	ownerX     = model.Principal{ID: 1, Username: "alice1234", Role: model.RoleUser}
	strangerY  = model.Principal{ID: 2, Username: "bob567890", Role: model.RoleUser}
	adminCarol = model.Principal{ID: 3, Username: "carol1234", Role: model.RoleAdmin}
)

func newTaskService(tasks *fakeTasks, adminOverride bool) *TaskService {
	persons := staticPersons{known: map[int64]*model.Person{
		1: {ID: 1, Username: "alice1234", Role: model.RoleUser},
		3: {ID: 3, Username: "carol1234", Role: model.RoleAdmin},
	}}
	return NewTaskService(tasks, persons, adminOverride)
}

func TestTask_CreateForcesToDo(t *testing.T) {
	t.Parallel()
	s := newTaskService(newFakeTasks(), false)

	done := model.StatusDone
	created, err := s.Create(context.Background(), TaskDetails{
		Title: "Draft roadmap", Description: "d", Status: &done,
	}, ownerX.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Status != model.StatusToDo {
		t.Fatalf("new task status = %s, want TO_DO regardless of request", created.Status)
	}
	if created.OwnerID != ownerX.ID {
		t.Fatalf("owner = %d, want %d", created.OwnerID, ownerX.ID)
	}
}

func TestTask_CreateUnknownOwner(t *testing.T) {
	t.Parallel()
	s := newTaskService(newFakeTasks(), false)

	_, err := s.Create(context.Background(), TaskDetails{Title: "x"}, 99)
	if !errors.Is(err, errs.ErrPersonNotFound) {
		t.Fatalf("want ErrPersonNotFound for missing owner, got %v", err)
	}
}

func TestTask_UpdateOwnershipCheck(t *testing.T) {
	t.Parallel()
	repo := newFakeTasks()
	s := newTaskService(repo, false)
	created, err := s.Create(context.Background(), TaskDetails{Title: "Draft roadmap", Description: "d"}, ownerX.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Foreign requester: Forbidden, and the stored row is untouched.
	_, err = s.Update(context.Background(), created.ID, TaskDetails{Title: "hijack"}, strangerY)
	if !errors.Is(err, errs.ErrForbidden) {
		t.Fatalf("want ErrForbidden, got %v", err)
	}
	if repo.updateCalls != 0 {
		t.Fatalf("forbidden update must not write")
	}
	stored, _ := repo.GetByID(context.Background(), created.ID)
	if stored.Title != "Draft roadmap" {
		t.Fatalf("task mutated by forbidden update: %q", stored.Title)
	}

	// Without the override flag even an admin is rejected.
	if _, err := s.Update(context.Background(), created.ID, TaskDetails{Title: "admin edit"}, adminCarol); !errors.Is(err, errs.ErrForbidden) {
		t.Fatalf("admin without override: want ErrForbidden, got %v", err)
	}

	// The owner can update; status only changes when supplied.
	got, err := s.Update(context.Background(), created.ID, TaskDetails{Title: "v2", Description: "d2"}, ownerX)
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if got.Status != model.StatusToDo {
		t.Fatalf("status must be kept when not supplied, got %s", got.Status)
	}
	inProgress := model.StatusInProgress
	got, err = s.Update(context.Background(), created.ID, TaskDetails{Title: "v2", Description: "d2", Status: &inProgress}, ownerX)
	if err != nil {
		t.Fatalf("owner update with status: %v", err)
	}
	if got.Status != model.StatusInProgress {
		t.Fatalf("status not applied, got %s", got.Status)
	}
}

func TestTask_AdminOverride(t *testing.T) {
	t.Parallel()
	repo := newFakeTasks()
	s := newTaskService(repo, true)
	created, err := s.Create(context.Background(), TaskDetails{Title: "Draft roadmap"}, ownerX.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := s.Update(context.Background(), created.ID, TaskDetails{Title: "admin edit"}, adminCarol); err != nil {
		t.Fatalf("admin with override: %v", err)
	}
	// A plain foreign user is still rejected.
	if _, err := s.Update(context.Background(), created.ID, TaskDetails{Title: "x"}, strangerY); !errors.Is(err, errs.ErrForbidden) {
		t.Fatalf("want ErrForbidden for non-admin, got %v", err)
	}
	if err := s.Delete(context.Background(), created.ID, adminCarol); err != nil {
		t.Fatalf("admin delete with override: %v", err)
	}
}

func TestTask_DeleteOwnershipCheck(t *testing.T) {
	t.Parallel()
	repo := newFakeTasks()
	s := newTaskService(repo, false)
	created, err := s.Create(context.Background(), TaskDetails{Title: "Draft roadmap"}, ownerX.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := s.Delete(context.Background(), created.ID, strangerY); !errors.Is(err, errs.ErrForbidden) {
		t.Fatalf("want ErrForbidden, got %v", err)
	}
	if _, err := repo.GetByID(context.Background(), created.ID); err != nil {
		t.Fatalf("task must survive a forbidden delete")
	}

	if err := s.Delete(context.Background(), created.ID, ownerX); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if err := s.Delete(context.Background(), created.ID, ownerX); !errors.Is(err, errs.ErrTaskNotFound) {
		t.Fatalf("want ErrTaskNotFound after delete, got %v", err)
	}
}

func TestTask_ListByOwnerAndStatus(t *testing.T) {
	t.Parallel()
	s := newTaskService(newFakeTasks(), false)
	ctx := context.Background()

	mk := func(title string, owner int64, status model.Status) {
		t.Helper()
		created, err := s.Create(ctx, TaskDetails{Title: title}, owner)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if status != model.StatusToDo {
			st := status
			if _, err := s.Update(ctx, created.ID, TaskDetails{Title: title, Status: &st}, model.Principal{ID: owner}); err != nil {
				t.Fatalf("Update: %v", err)
			}
		}
	}
	mk("alpha", ownerX.ID, model.StatusInProgress)
	mk("beta", ownerX.ID, model.StatusDone)
	mk("gamma", ownerX.ID, model.StatusInProgress)
	mk("delta", adminCarol.ID, model.StatusInProgress)

	st := model.StatusInProgress
	page, err := s.List(ctx, model.TaskFilter{OwnerID: &ownerX.ID, Status: &st}, model.PageRequest{Number: 0, Size: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 2 {
		t.Fatalf("total = %d, want 2", page.Total)
	}
	if len(page.Items) != 2 {
		t.Fatalf("page size not respected: %d items", len(page.Items))
	}
	for _, task := range page.Items {
		if task.OwnerID != ownerX.ID || task.Status != model.StatusInProgress {
			t.Fatalf("filter leaked a foreign or mismatched task: %+v", task)
		}
	}
}
