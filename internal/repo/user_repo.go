package repo

import (
	"context"
	"fmt"

	dom "TodoAPI/internal/domain"
	"TodoAPI/internal/utils"
)

// UserRepo provides user persistence, including the user side of todo assignment.
type UserRepo interface {
	Create(ctx context.Context, u dom.User) (dom.User, error)
	List(ctx context.Context) ([]dom.User, error)
	GetByID(ctx context.Context, id string) (dom.User, error)
	GetByEmail(ctx context.Context, email string) (dom.User, error)
	// GetByIDs returns the users that exist among ids, in no particular order.
	GetByIDs(ctx context.Context, ids []string) ([]dom.User, error)
	// Delete reports whether a user was removed.
	Delete(ctx context.Context, id string) (bool, error)
	// AddTodo appends todoID to the user's list. It reports false if the user does not exist.
	AddTodo(ctx context.Context, userID, todoID string) (bool, error)
	RemoveTodo(ctx context.Context, userID, todoID string) error
	// RemoveTodoFromAll pulls todoID from every user's list and returns how many lists changed.
	RemoveTodoFromAll(ctx context.Context, todoID string) (int64, error)
}

const userColumns = `u.id, u.name, u.email, u.password_hash, u.created_at, u.updated_at,
		ARRAY(SELECT ut.todo_id FROM user_todos ut WHERE ut.user_id = u.id ORDER BY ut.added_at, ut.todo_id)`

// PGUserRepo implements UserRepo with Postgres.
type PGUserRepo struct {
	db DBTX
}

// NewPGUserRepo returns a new PGUserRepo.
func NewPGUserRepo(db DBTX) *PGUserRepo {
	return &PGUserRepo{db: db}
}

func scanUser(row scanner) (dom.User, error) {
	var u dom.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt, &u.Todos)
	return u, err
}

// Create inserts a new user and returns it.
func (r *PGUserRepo) Create(ctx context.Context, u dom.User) (dom.User, error) {
	query := `
		INSERT INTO users (id, name, email, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, email, password_hash, created_at, updated_at`
	var out dom.User
	err := r.db.QueryRow(ctx, query, u.ID, u.Name, u.Email, u.PasswordHash).Scan(
		&out.ID, &out.Name, &out.Email, &out.PasswordHash, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		if utils.IsPGUniqueViolation(err) {
			return dom.User{}, ErrDuplicateEmail
		}
		return dom.User{}, fmt.Errorf("insert user: %w", err)
	}
	out.Todos = []string{}
	return out, nil
}

func (r *PGUserRepo) List(ctx context.Context) ([]dom.User, error) {
	return r.query(ctx, `SELECT `+userColumns+` FROM users u ORDER BY u.created_at, u.id`)
}

func (r *PGUserRepo) GetByID(ctx context.Context, id string) (dom.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users u WHERE u.id = $1`, id))
	if err != nil {
		return dom.User{}, notFound(err)
	}
	return u, nil
}

// GetByEmail returns the user by email.
func (r *PGUserRepo) GetByEmail(ctx context.Context, email string) (dom.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users u WHERE u.email = $1`, email))
	if err != nil {
		return dom.User{}, notFound(err)
	}
	return u, nil
}

func (r *PGUserRepo) GetByIDs(ctx context.Context, ids []string) ([]dom.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.query(ctx, `SELECT `+userColumns+` FROM users u WHERE u.id = ANY($1)`, ids)
}

func (r *PGUserRepo) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PGUserRepo) AddTodo(ctx context.Context, userID, todoID string) (bool, error) {
	query := `
		INSERT INTO user_todos (user_id, todo_id)
		SELECT u.id, $2 FROM users u WHERE u.id = $1
		ON CONFLICT (user_id, todo_id) DO NOTHING`
	tag, err := r.db.Exec(ctx, query, userID, todoID)
	if err != nil {
		return false, fmt.Errorf("add todo to user: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}
	// Zero rows also happens when the pair already exists.
	var exists bool
	err = r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check user: %w", err)
	}
	return exists, nil
}

func (r *PGUserRepo) RemoveTodo(ctx context.Context, userID, todoID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM user_todos WHERE user_id = $1 AND todo_id = $2`, userID, todoID)
	if err != nil {
		return fmt.Errorf("remove todo from user: %w", err)
	}
	return nil
}

func (r *PGUserRepo) RemoveTodoFromAll(ctx context.Context, todoID string) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM user_todos WHERE todo_id = $1`, todoID)
	if err != nil {
		return 0, fmt.Errorf("sweep todo from users: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *PGUserRepo) query(ctx context.Context, query string, args ...any) ([]dom.User, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}
