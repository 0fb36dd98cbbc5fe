package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	dom "TodoAPI/internal/domain"
	"TodoAPI/internal/repo"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// AssignmentSweeper removes a user from every todo it is assigned to.
type AssignmentSweeper interface {
	UnassignUser(ctx context.Context, userID string) error
}

// UserService handles registration, lookup and credential checks.
type UserService struct {
	repo    repo.UserRepo
	sweeper AssignmentSweeper
	cost    int
	log     zerolog.Logger
}

// NewUserService returns a new UserService. cost is the bcrypt work factor.
func NewUserService(r repo.UserRepo, sweeper AssignmentSweeper, cost int, log zerolog.Logger) *UserService {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &UserService{repo: r, sweeper: sweeper, cost: cost, log: log}
}

// HashPassword returns the bcrypt hash of password at the given cost.
func HashPassword(password string, cost int) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// Register creates a new user with hashed password.
func (s *UserService) Register(ctx context.Context, name, email, password string) (dom.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return dom.User{}, fmt.Errorf("%w: name, email and password are required", ErrInvalidInput)
	}
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return dom.User{}, ErrEmailTaken
	} else if !errors.Is(err, repo.ErrNotFound) {
		return dom.User{}, err
	}

	hash, err := HashPassword(password, s.cost)
	if err != nil {
		return dom.User{}, err
	}
	u, err := s.repo.Create(ctx, dom.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return dom.User{}, ErrEmailTaken
		}
		return dom.User{}, err
	}
	s.log.Info().Str("user_id", u.ID).Msg("registered user")
	return u, nil
}

// ValidateCredentials checks email and password; returns user if valid.
// Unknown email and wrong password are reported the same way.
func (s *UserService) ValidateCredentials(ctx context.Context, email, password string) (dom.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return dom.User{}, ErrInvalidCredentials
	}
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return dom.User{}, ErrInvalidCredentials
		}
		return dom.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return dom.User{}, ErrInvalidCredentials
	}
	return u, nil
}

func (s *UserService) List(ctx context.Context) ([]dom.User, error) {
	return s.repo.List(ctx)
}

func (s *UserService) GetByID(ctx context.Context, id string) (dom.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return dom.User{}, ErrNotFound
		}
		return dom.User{}, err
	}
	return u, nil
}

// Delete removes the user after pulling it from every todo's assignee list.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if s.sweeper != nil {
		if err := s.sweeper.UnassignUser(ctx, id); err != nil {
			return err
		}
	}
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFound
	}
	s.log.Info().Str("user_id", id).Msg("deleted user")
	return nil
}
