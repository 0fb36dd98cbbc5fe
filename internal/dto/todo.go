package dto

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	dom "TodoAPI/internal/domain"
)

// Date parses a JSON date as either date-only ("2006-01-02") or RFC3339.
// Date-only is stored as start of that day in UTC.
type Date struct{ t *time.Time }

func (d *Date) UnmarshalJSON(data []byte) error {
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil || strings.TrimSpace(*raw) == "" {
		d.t = nil
		return nil
	}
	s := strings.TrimSpace(*raw)
	layouts := []string{
		"2006-01-02",     // date only
		time.RFC3339,     // 2006-01-02T15:04:05Z07:00
		time.RFC3339Nano, // with nanoseconds
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			parsed = parsed.UTC()
			d.t = &parsed
			return nil
		}
	}
	return fmt.Errorf("date %q: use YYYY-MM-DD or RFC3339 datetime", s)
}

// Ptr returns *time.Time for use in service/domain.
func (d Date) Ptr() *time.Time { return d.t }

type CreateTodoRequest struct {
	Title      string   `json:"title" binding:"required,max=200"`
	Desc       string   `json:"desc" binding:"max=2000"`
	Status     string   `json:"status" binding:"omitempty,oneof=TODO IN_PROGRESS DONE"`
	StartDate  *Date    `json:"startDate" binding:"required" swaggertype:"string" example:"2026-01-01"`
	EndDate    *Date    `json:"endDate" binding:"required" swaggertype:"string" example:"2026-01-02"`
	AssignedTo []string `json:"assignedTo" binding:"omitempty,dive,uuid"`
}

type UpdateTodoRequest struct {
	Title      *string   `json:"title" binding:"omitempty,max=200"`
	Desc       *string   `json:"desc" binding:"omitempty,max=2000"`
	Status     *string   `json:"status" binding:"omitempty,oneof=TODO IN_PROGRESS DONE"`
	StartDate  *Date     `json:"startDate" swaggertype:"string"`
	EndDate    *Date     `json:"endDate" swaggertype:"string"`
	AssignedTo *[]string `json:"assignedTo" binding:"omitempty,dive,uuid"`
}

// Patch converts the request into a domain patch. Nil fields are left unchanged.
func (r UpdateTodoRequest) Patch() dom.TodoPatch {
	p := dom.TodoPatch{
		Title:       r.Title,
		Description: r.Desc,
		AssignedTo:  r.AssignedTo,
	}
	if r.Status != nil {
		s := dom.TodoStatus(*r.Status)
		p.Status = &s
	}
	if r.StartDate != nil {
		p.StartDate = r.StartDate.Ptr()
	}
	if r.EndDate != nil {
		p.EndDate = r.EndDate.Ptr()
	}
	return p
}

type todoBase struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Desc      string    `json:"desc"`
	Status    string    `json:"status"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TodoResponse carries assignee ids.
type TodoResponse struct {
	todoBase
	AssignedTo []string `json:"assignedTo"`
}

// PopulatedTodoResponse carries assignees resolved to users.
type PopulatedTodoResponse struct {
	todoBase
	AssignedTo []UserResponse `json:"assignedTo"`
}

func newTodoBase(t dom.Todo) todoBase {
	return todoBase{
		ID:        t.ID,
		Title:     t.Title,
		Desc:      t.Description,
		Status:    string(t.Status),
		StartDate: t.StartDate,
		EndDate:   t.EndDate,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func NewTodoResponse(t dom.Todo) TodoResponse {
	ids := t.AssignedTo
	if ids == nil {
		ids = []string{}
	}
	return TodoResponse{todoBase: newTodoBase(t), AssignedTo: ids}
}

func NewPopulatedTodoResponse(t dom.Todo) PopulatedTodoResponse {
	return PopulatedTodoResponse{todoBase: newTodoBase(t), AssignedTo: NewUserResponses(t.Assignees)}
}

func NewPopulatedTodoResponses(list []dom.Todo) []PopulatedTodoResponse {
	out := make([]PopulatedTodoResponse, len(list))
	for i := range list {
		out[i] = NewPopulatedTodoResponse(list[i])
	}
	return out
}
