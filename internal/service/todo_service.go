package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"TodoAPI/internal/cache"
	dom "TodoAPI/internal/domain"
	"TodoAPI/internal/repo"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// defaultTodoSpan is the gap between start and end when a todo is created without an end date.
const defaultTodoSpan = 24 * time.Hour

// CreateTodoInput carries the fields accepted when creating a todo.
// A nil StartDate defaults to the creation time, a nil EndDate to one day after the start.
type CreateTodoInput struct {
	Title       string
	Description string
	Status      dom.TodoStatus
	StartDate   *time.Time
	EndDate     *time.Time
	AssignedTo  []string
}

type TodoService struct {
	repo  repo.TodoRepo
	users repo.UserRepo
	cache *cache.TodoCache
	sf    singleflight.Group
	log   zerolog.Logger
	now   func() time.Time
}

// NewTodoService creates a TodoService. If c is nil, caching is disabled.
func NewTodoService(r repo.TodoRepo, users repo.UserRepo, c *cache.TodoCache, log zerolog.Logger) *TodoService {
	return &TodoService{repo: r, users: users, cache: c, log: log, now: time.Now}
}

func (s *TodoService) Create(ctx context.Context, in CreateTodoInput) (dom.Todo, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return dom.Todo{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	status := in.Status
	if status == "" {
		status = dom.StatusTodo
	}
	if !status.Valid() {
		return dom.Todo{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}

	start := s.now().UTC()
	if in.StartDate != nil {
		start = *in.StartDate
	}
	end := start.Add(defaultTodoSpan)
	if in.EndDate != nil {
		end = *in.EndDate
	}
	if err := checkDates(start, end); err != nil {
		return dom.Todo{}, err
	}

	assigned := uniqueIDs(in.AssignedTo)
	t, err := s.repo.Create(ctx, dom.Todo{
		ID:          uuid.NewString(),
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Status:      status,
		StartDate:   start,
		EndDate:     end,
		AssignedTo:  assigned,
	})
	if err != nil {
		return dom.Todo{}, err
	}
	defer s.invalidateCache(ctx)

	if err := s.addToUsers(ctx, t.ID, assigned); err != nil {
		return dom.Todo{}, err
	}
	s.log.Info().Str("todo_id", t.ID).Int("assignees", len(assigned)).Msg("created todo")
	return t, nil
}

// List returns all todos, newest first, with assignees resolved.
func (s *TodoService) List(ctx context.Context) ([]dom.Todo, error) {
	if s.cache != nil {
		v, err, _ := s.sf.Do("list", func() (interface{}, error) {
			// shared by every waiter on the key; one caller's cancellation must not fail the rest
			ctx := context.WithoutCancel(ctx)
			if list, err := s.cache.GetList(ctx); err == nil && list != nil {
				return list, nil
			}
			list, err := s.listPopulated(ctx)
			if err != nil {
				return nil, err
			}
			if err := s.cache.SetList(ctx, list); err != nil {
				s.log.Warn().Err(err).Msg("cache todo list")
			}
			return list, nil
		})
		if err != nil {
			return nil, err
		}
		return v.([]dom.Todo), nil
	}
	return s.listPopulated(ctx)
}

// GetByID returns the todo with id. Assignees are resolved when populate is set.
func (s *TodoService) GetByID(ctx context.Context, id string, populate bool) (dom.Todo, error) {
	if !populate {
		return s.get(ctx, id)
	}
	if s.cache != nil {
		v, err, _ := s.sf.Do("item:"+id, func() (interface{}, error) {
			ctx := context.WithoutCancel(ctx)
			if t, ok, err := s.cache.GetTodo(ctx, id); err == nil && ok {
				return t, nil
			}
			t, err := s.getPopulated(ctx, id)
			if err != nil {
				return nil, err
			}
			if err := s.cache.SetTodo(ctx, t); err != nil {
				s.log.Warn().Err(err).Str("todo_id", id).Msg("cache todo")
			}
			return t, nil
		})
		if err != nil {
			return dom.Todo{}, err
		}
		return v.(dom.Todo), nil
	}
	return s.getPopulated(ctx, id)
}

// Update applies patch to the todo. A changed assignee list is synced to the
// users' own lists.
func (s *TodoService) Update(ctx context.Context, id string, patch dom.TodoPatch) (dom.Todo, error) {
	existing, err := s.get(ctx, id)
	if err != nil {
		return dom.Todo{}, err
	}
	merged := existing
	if patch.Title != nil {
		merged.Title = strings.TrimSpace(*patch.Title)
		if merged.Title == "" {
			return dom.Todo{}, fmt.Errorf("%w: title must not be empty", ErrInvalidInput)
		}
	}
	if patch.Description != nil {
		merged.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return dom.Todo{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *patch.Status)
		}
		merged.Status = *patch.Status
	}
	if patch.StartDate != nil {
		merged.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		merged.EndDate = *patch.EndDate
	}
	if err := checkDates(merged.StartDate, merged.EndDate); err != nil {
		return dom.Todo{}, err
	}

	var added, removed []string
	if patch.AssignedTo != nil {
		merged.AssignedTo = uniqueIDs(*patch.AssignedTo)
		added = difference(merged.AssignedTo, existing.AssignedTo)
		removed = difference(existing.AssignedTo, merged.AssignedTo)
	}

	t, err := s.repo.Update(ctx, merged)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return dom.Todo{}, ErrNotFound
		}
		return dom.Todo{}, err
	}
	defer s.invalidateCache(ctx)

	if err := s.addToUsers(ctx, t.ID, added); err != nil {
		return dom.Todo{}, err
	}
	for _, userID := range removed {
		if err := s.users.RemoveTodo(ctx, userID, t.ID); err != nil {
			return dom.Todo{}, fmt.Errorf("unassign todo %s from user %s: %w", t.ID, userID, err)
		}
	}
	return t, nil
}

// Delete removes the todo from every user's list, then deletes it.
// The deleted record is returned.
func (s *TodoService) Delete(ctx context.Context, id string) (dom.Todo, error) {
	if _, err := s.get(ctx, id); err != nil {
		return dom.Todo{}, err
	}
	n, err := s.users.RemoveTodoFromAll(ctx, id)
	if err != nil {
		return dom.Todo{}, fmt.Errorf("detach todo %s from users: %w", id, err)
	}
	t, err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return dom.Todo{}, ErrNotFound
		}
		return dom.Todo{}, err
	}
	s.invalidateCache(ctx)
	s.log.Info().Str("todo_id", id).Int64("detached", n).Msg("deleted todo")
	return t, nil
}

// UnassignUser pulls userID from every todo's assignee list.
func (s *TodoService) UnassignUser(ctx context.Context, userID string) error {
	n, err := s.repo.UnassignUser(ctx, userID)
	if err != nil {
		return err
	}
	if n > 0 {
		s.log.Debug().Str("user_id", userID).Int64("todos", n).Msg("unassigned user")
	}
	s.invalidateCache(ctx)
	return nil
}

func (s *TodoService) get(ctx context.Context, id string) (dom.Todo, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return dom.Todo{}, ErrNotFound
		}
		return dom.Todo{}, err
	}
	return t, nil
}

func (s *TodoService) getPopulated(ctx context.Context, id string) (dom.Todo, error) {
	t, err := s.get(ctx, id)
	if err != nil {
		return dom.Todo{}, err
	}
	list := []dom.Todo{t}
	if err := s.populate(ctx, list); err != nil {
		return dom.Todo{}, err
	}
	return list[0], nil
}

func (s *TodoService) listPopulated(ctx context.Context) ([]dom.Todo, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []dom.Todo{}
	}
	if err := s.populate(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// populate fills Assignees in AssignedTo order. Ids of users that no longer
// exist are skipped.
func (s *TodoService) populate(ctx context.Context, list []dom.Todo) error {
	var ids []string
	for _, t := range list {
		ids = append(ids, t.AssignedTo...)
	}
	ids = uniqueIDs(ids)

	byID := make(map[string]dom.User, len(ids))
	if len(ids) > 0 {
		users, err := s.users.GetByIDs(ctx, ids)
		if err != nil {
			return fmt.Errorf("resolve assignees: %w", err)
		}
		for _, u := range users {
			u.PasswordHash = ""
			byID[u.ID] = u
		}
	}
	for i := range list {
		assignees := make([]dom.User, 0, len(list[i].AssignedTo))
		for _, id := range list[i].AssignedTo {
			if u, ok := byID[id]; ok {
				assignees = append(assignees, u)
			}
		}
		list[i].Assignees = assignees
	}
	return nil
}

// addToUsers appends todoID to each user's list. Unknown users are skipped.
func (s *TodoService) addToUsers(ctx context.Context, todoID string, userIDs []string) error {
	for _, userID := range userIDs {
		ok, err := s.users.AddTodo(ctx, userID, todoID)
		if err != nil {
			return fmt.Errorf("assign todo %s to user %s: %w", todoID, userID, err)
		}
		if !ok {
			s.log.Warn().Str("todo_id", todoID).Str("user_id", userID).Msg("assignee not found, skipped")
		}
	}
	return nil
}

func (s *TodoService) invalidateCache(ctx context.Context) {
	if s.cache != nil {
		if err := s.cache.InvalidateAll(ctx); err != nil {
			s.log.Warn().Err(err).Msg("invalidate todo cache")
		}
	}
}

func checkDates(start, end time.Time) error {
	if !start.Before(end) {
		return fmt.Errorf("%w: startDate must be before endDate", ErrInvalidInput)
	}
	return nil
}

// uniqueIDs drops blanks and duplicates, keeping first occurrence order.
func uniqueIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || slices.Contains(out, id) {
			continue
		}
		out = append(out, id)
	}
	return out
}

// difference returns the elements of a missing from b.
func difference(a, b []string) []string {
	var out []string
	for _, id := range a {
		if !slices.Contains(b, id) {
			out = append(out, id)
		}
	}
	return out
}
