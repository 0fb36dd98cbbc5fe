package domain

import "time"

// TodoStatus is the lifecycle state of a todo.
type TodoStatus string

const (
	StatusTodo       TodoStatus = "TODO"
	StatusInProgress TodoStatus = "IN_PROGRESS"
	StatusDone       TodoStatus = "DONE"
)

// Valid reports whether s is one of the known statuses.
func (s TodoStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Domain entity: бизнес-объект (истина).
// Не зависит от Gin, Postgres, Redis.
type Todo struct {
	ID          string
	Title       string
	Description string
	Status      TodoStatus
	StartDate   time.Time
	EndDate     time.Time

	// AssignedTo holds user IDs in assignment order.
	AssignedTo []string
	// Assignees is filled only when the todo was loaded with population.
	Assignees []User

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TodoPatch carries the fields of a partial update. Nil means "keep".
type TodoPatch struct {
	Title       *string
	Description *string
	Status      *TodoStatus
	StartDate   *time.Time
	EndDate     *time.Time
	AssignedTo  *[]string
}
