package dto

import (
	"time"

	dom "TodoAPI/internal/domain"
)

// CreateUserRequest is the JSON body for POST /users.
type CreateUserRequest struct {
	Name     string `json:"name" binding:"required,max=120"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest is the JSON body for POST /login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the signed bearer token.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

// UserResponse never includes the password hash.
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Todos     []string  `json:"todos"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MessageResponse is returned by endpoints that confirm an action.
type MessageResponse struct {
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

func NewUserResponse(u dom.User) UserResponse {
	todos := u.Todos
	if todos == nil {
		todos = []string{}
	}
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Todos:     todos,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func NewUserResponses(list []dom.User) []UserResponse {
	out := make([]UserResponse, len(list))
	for i := range list {
		out[i] = NewUserResponse(list[i])
	}
	return out
}
