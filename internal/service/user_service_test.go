package service

import (
	"context"
	"testing"

	"TodoAPI/internal/repo"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type services struct {
	users    *UserService
	todos    *TodoService
	userRepo *repo.MemoryUserRepo
	todoRepo *repo.MemoryTodoRepo
}

func newServices(t *testing.T) services {
	t.Helper()
	ur := repo.NewMemoryUserRepo()
	tr := repo.NewMemoryTodoRepo()
	todos := NewTodoService(tr, ur, nil, zerolog.Nop())
	return services{
		users:    NewUserService(ur, todos, bcrypt.MinCost, zerolog.Nop()),
		todos:    todos,
		userRepo: ur,
		todoRepo: tr,
	}
}

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)

	u, err := s.users.Register(ctx, " Ann ", "ann@example.com", "pw")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "Ann", u.Name)
	assert.NotEqual(t, "pw", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("pw")))
	assert.Empty(t, u.Todos)

	_, err = s.users.Register(ctx, "Other", "ann@example.com", "pw2")
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = s.users.Register(ctx, "", "bob@example.com", "pw")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = s.users.Register(ctx, "Bob", "bob@example.com", "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	list, err := s.users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUserService_ValidateCredentials(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)
	created, err := s.users.Register(ctx, "Ann", "ann@example.com", "pw")
	require.NoError(t, err)

	u, err := s.users.ValidateCredentials(ctx, "ann@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, created.ID, u.ID)

	_, err = s.users.ValidateCredentials(ctx, "ann@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.users.ValidateCredentials(ctx, "nobody@example.com", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserService_GetByID(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)
	created, err := s.users.Register(ctx, "Ann", "ann@example.com", "pw")
	require.NoError(t, err)

	u, err := s.users.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", u.Email)

	_, err = s.users.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserService_DeleteUnassignsTodos(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)
	ann, err := s.users.Register(ctx, "Ann", "ann@example.com", "pw")
	require.NoError(t, err)
	bob, err := s.users.Register(ctx, "Bob", "bob@example.com", "pw")
	require.NoError(t, err)

	todo, err := s.todos.Create(ctx, CreateTodoInput{Title: "ship", AssignedTo: []string{ann.ID, bob.ID}})
	require.NoError(t, err)

	require.NoError(t, s.users.Delete(ctx, ann.ID))

	got, err := s.todos.GetByID(ctx, todo.ID, true)
	require.NoError(t, err)
	assert.Equal(t, []string{bob.ID}, got.AssignedTo)
	require.Len(t, got.Assignees, 1)
	assert.Equal(t, bob.ID, got.Assignees[0].ID)

	_, err = s.users.GetByID(ctx, ann.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.users.Delete(ctx, ann.ID), ErrNotFound)
}
