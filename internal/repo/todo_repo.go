package repo

import (
	"context"
	"fmt"

	dom "TodoAPI/internal/domain"
)

type TodoRepo interface {
	Create(ctx context.Context, t dom.Todo) (dom.Todo, error)
	GetByID(ctx context.Context, id string) (dom.Todo, error)
	List(ctx context.Context) ([]dom.Todo, error)
	// Update overwrites the mutable fields of t.ID with the values in t.
	Update(ctx context.Context, t dom.Todo) (dom.Todo, error)
	// Delete removes the todo and returns the removed record.
	Delete(ctx context.Context, id string) (dom.Todo, error)
	// UnassignUser pulls userID from every todo's assignee list.
	UnassignUser(ctx context.Context, userID string) (int64, error)
}

const todoColumns = `id, title, description, status, start_date, end_date, assigned_to, created_at, updated_at`

type PGTodoRepo struct {
	db DBTX
}

func NewPGTodoRepo(db DBTX) *PGTodoRepo {
	return &PGTodoRepo{db: db}
}

func scanTodo(row scanner) (dom.Todo, error) {
	var t dom.Todo
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Status, &t.StartDate, &t.EndDate,
		&t.AssignedTo, &t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

func (r *PGTodoRepo) Create(ctx context.Context, t dom.Todo) (dom.Todo, error) {
	query := `
		INSERT INTO todos (id, title, description, status, start_date, end_date, assigned_to)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + todoColumns
	out, err := scanTodo(r.db.QueryRow(ctx, query,
		t.ID, t.Title, t.Description, t.Status, t.StartDate, t.EndDate, nonNil(t.AssignedTo),
	))
	if err != nil {
		return dom.Todo{}, fmt.Errorf("insert todo: %w", err)
	}
	return out, nil
}

func (r *PGTodoRepo) GetByID(ctx context.Context, id string) (dom.Todo, error) {
	t, err := scanTodo(r.db.QueryRow(ctx, `SELECT `+todoColumns+` FROM todos WHERE id = $1`, id))
	if err != nil {
		return dom.Todo{}, notFound(err)
	}
	return t, nil
}

func (r *PGTodoRepo) List(ctx context.Context) ([]dom.Todo, error) {
	rows, err := r.db.Query(ctx, `SELECT `+todoColumns+` FROM todos ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.Todo
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func (r *PGTodoRepo) Update(ctx context.Context, t dom.Todo) (dom.Todo, error) {
	query := `
		UPDATE todos SET title = $2, description = $3, status = $4, start_date = $5,
			end_date = $6, assigned_to = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + todoColumns
	out, err := scanTodo(r.db.QueryRow(ctx, query,
		t.ID, t.Title, t.Description, t.Status, t.StartDate, t.EndDate, nonNil(t.AssignedTo),
	))
	if err != nil {
		return dom.Todo{}, notFound(err)
	}
	return out, nil
}

func (r *PGTodoRepo) Delete(ctx context.Context, id string) (dom.Todo, error) {
	t, err := scanTodo(r.db.QueryRow(ctx, `DELETE FROM todos WHERE id = $1 RETURNING `+todoColumns, id))
	if err != nil {
		return dom.Todo{}, notFound(err)
	}
	return t, nil
}

func (r *PGTodoRepo) UnassignUser(ctx context.Context, userID string) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE todos SET assigned_to = array_remove(assigned_to, $1), updated_at = NOW() WHERE $1 = ANY(assigned_to)`,
		userID,
	)
	if err != nil {
		return 0, fmt.Errorf("unassign user: %w", err)
	}
	return tag.RowsAffected(), nil
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
