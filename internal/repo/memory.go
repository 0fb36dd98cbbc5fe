package repo

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	dom "TodoAPI/internal/domain"
)

// MemoryUserRepo is an in-process UserRepo backing service and handler tests.
type MemoryUserRepo struct {
	mu    sync.RWMutex
	users map[string]dom.User
	seq   int64
	now   func() time.Time
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{users: make(map[string]dom.User), now: time.Now}
}

func (r *MemoryUserRepo) Create(_ context.Context, u dom.User) (dom.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return dom.User{}, ErrDuplicateEmail
		}
	}
	r.seq++
	now := r.now().Add(time.Duration(r.seq))
	u.CreatedAt, u.UpdatedAt = now, now
	u.Todos = []string{}
	r.users[u.ID] = u
	return cloneUser(u), nil
}

func (r *MemoryUserRepo) List(_ context.Context) ([]dom.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]dom.User, 0, len(r.users))
	for _, u := range r.users {
		list = append(list, cloneUser(u))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return list, nil
}

func (r *MemoryUserRepo) GetByID(_ context.Context, id string) (dom.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return dom.User{}, ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *MemoryUserRepo) GetByEmail(_ context.Context, email string) (dom.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return dom.User{}, ErrNotFound
}

func (r *MemoryUserRepo) GetByIDs(_ context.Context, ids []string) ([]dom.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var list []dom.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			list = append(list, cloneUser(u))
		}
	}
	return list, nil
}

func (r *MemoryUserRepo) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return false, nil
	}
	delete(r.users, id)
	return true, nil
}

func (r *MemoryUserRepo) AddTodo(_ context.Context, userID, todoID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return false, nil
	}
	if !slices.Contains(u.Todos, todoID) {
		u.Todos = append(u.Todos, todoID)
		r.users[userID] = u
	}
	return true, nil
}

func (r *MemoryUserRepo) RemoveTodo(_ context.Context, userID, todoID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil
	}
	u.Todos = slices.DeleteFunc(u.Todos, func(id string) bool { return id == todoID })
	r.users[userID] = u
	return nil
}

func (r *MemoryUserRepo) RemoveTodoFromAll(_ context.Context, todoID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, u := range r.users {
		if !slices.Contains(u.Todos, todoID) {
			continue
		}
		u.Todos = slices.DeleteFunc(u.Todos, func(t string) bool { return t == todoID })
		r.users[id] = u
		n++
	}
	return n, nil
}

// MemoryTodoRepo is an in-process TodoRepo.
type MemoryTodoRepo struct {
	mu    sync.RWMutex
	todos map[string]dom.Todo
	seq   int64
	now   func() time.Time
}

func NewMemoryTodoRepo() *MemoryTodoRepo {
	return &MemoryTodoRepo{todos: make(map[string]dom.Todo), now: time.Now}
}

func (r *MemoryTodoRepo) Create(_ context.Context, t dom.Todo) (dom.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	now := r.now().Add(time.Duration(r.seq))
	t.CreatedAt, t.UpdatedAt = now, now
	t.AssignedTo = nonNil(slices.Clone(t.AssignedTo))
	t.Assignees = nil
	r.todos[t.ID] = t
	return cloneTodo(t), nil
}

func (r *MemoryTodoRepo) GetByID(_ context.Context, id string) (dom.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.todos[id]
	if !ok {
		return dom.Todo{}, ErrNotFound
	}
	return cloneTodo(t), nil
}

func (r *MemoryTodoRepo) List(_ context.Context) ([]dom.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]dom.Todo, 0, len(r.todos))
	for _, t := range r.todos {
		list = append(list, cloneTodo(t))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

func (r *MemoryTodoRepo) Update(_ context.Context, t dom.Todo) (dom.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.todos[t.ID]
	if !ok {
		return dom.Todo{}, ErrNotFound
	}
	r.seq++
	t.CreatedAt = existing.CreatedAt
	t.UpdatedAt = r.now().Add(time.Duration(r.seq))
	t.AssignedTo = nonNil(slices.Clone(t.AssignedTo))
	t.Assignees = nil
	r.todos[t.ID] = t
	return cloneTodo(t), nil
}

func (r *MemoryTodoRepo) Delete(_ context.Context, id string) (dom.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.todos[id]
	if !ok {
		return dom.Todo{}, ErrNotFound
	}
	delete(r.todos, id)
	return t, nil
}

func (r *MemoryTodoRepo) UnassignUser(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, t := range r.todos {
		if !slices.Contains(t.AssignedTo, userID) {
			continue
		}
		t.AssignedTo = slices.DeleteFunc(slices.Clone(t.AssignedTo), func(u string) bool { return u == userID })
		r.todos[id] = t
		n++
	}
	return n, nil
}

func cloneUser(u dom.User) dom.User {
	u.Todos = nonNil(slices.Clone(u.Todos))
	return u
}

func cloneTodo(t dom.Todo) dom.Todo {
	t.AssignedTo = nonNil(slices.Clone(t.AssignedTo))
	return t
}
