package repo

import (
	"context"
	"testing"
	"time"

	dom "TodoAPI/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var todoCols = []string{"id", "title", "description", "status", "start_date", "end_date", "assigned_to", "created_at", "updated_at"}

func newTodoRepoWithMock(t *testing.T) (*PGTodoRepo, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPGTodoRepo(mock), mock
}

func TestPGTodoRepo_Create_NilAssigneesStoredEmpty(t *testing.T) {
	r, mock := newTodoRepoWithMock(t)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	mock.ExpectQuery(`INSERT INTO todos`).
		WithArgs("t-1", "Learn English", "", dom.StatusTodo, start, end, []string{}).
		WillReturnRows(pgxmock.NewRows(todoCols).
			AddRow("t-1", "Learn English", "", dom.StatusTodo, start, end, []string{}, start, start))

	got, err := r.Create(context.Background(), dom.Todo{
		ID: "t-1", Title: "Learn English", Status: dom.StatusTodo, StartDate: start, EndDate: end,
	})
	require.NoError(t, err)
	assert.Equal(t, "t-1", got.ID)
	assert.Equal(t, dom.StatusTodo, got.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGTodoRepo_List(t *testing.T) {
	r, mock := newTodoRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT .+ FROM todos ORDER BY created_at DESC`).
		WillReturnRows(pgxmock.NewRows(todoCols).
			AddRow("t-2", "b", "", dom.StatusDone, now, now, []string{"u-1"}, now, now).
			AddRow("t-1", "a", "d", dom.StatusTodo, now, now, []string{}, now, now))

	list, err := r.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, []string{"u-1"}, list[0].AssignedTo)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGTodoRepo_Update_NotFound(t *testing.T) {
	r, mock := newTodoRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`UPDATE todos SET title = \$2`).
		WithArgs("ghost", "x", "", dom.StatusTodo, now, now, []string{}).
		WillReturnError(pgx.ErrNoRows)

	_, err := r.Update(context.Background(), dom.Todo{ID: "ghost", Title: "x", Status: dom.StatusTodo, StartDate: now, EndDate: now})
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGTodoRepo_Delete(t *testing.T) {
	r, mock := newTodoRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`DELETE FROM todos WHERE id = \$1 RETURNING`).
		WithArgs("t-1").
		WillReturnRows(pgxmock.NewRows(todoCols).
			AddRow("t-1", "a", "", dom.StatusTodo, now, now, []string{"u-1"}, now, now))
	mock.ExpectQuery(`DELETE FROM todos WHERE id = \$1 RETURNING`).
		WithArgs("t-1").
		WillReturnError(pgx.ErrNoRows)

	got, err := r.Delete(context.Background(), "t-1")
	require.NoError(t, err)
	assert.Equal(t, "t-1", got.ID)

	_, err = r.Delete(context.Background(), "t-1")
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGTodoRepo_UnassignUser(t *testing.T) {
	r, mock := newTodoRepoWithMock(t)

	mock.ExpectExec(`UPDATE todos SET assigned_to = array_remove\(assigned_to, \$1\)`).
		WithArgs("u-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	n, err := r.UnassignUser(context.Background(), "u-1")
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
	require.NoError(t, mock.ExpectationsWereMet())
}
