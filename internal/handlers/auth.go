package handlers

import (
	"net/http"

	"TodoAPI/internal/auth"
	"TodoAPI/internal/dto"
	"TodoAPI/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// AuthHandler handles login.
type AuthHandler struct {
	issuer  *auth.Issuer
	userSvc *service.UserService
	log     zerolog.Logger
}

// NewAuthHandler returns a new AuthHandler.
func NewAuthHandler(issuer *auth.Issuer, userSvc *service.UserService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{issuer: issuer, userSvc: userSvc, log: log}
}

// Login godoc
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.LoginRequest  true  "Credentials"
// @Success      201   {object}  dto.LoginResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.userSvc.ValidateCredentials(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	token, err := h.issuer.Issue(user)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	h.log.Debug().Str("user_id", user.ID).Dur("ttl", h.issuer.TTL()).Msg("issued access token")
	c.JSON(http.StatusCreated, dto.LoginResponse{AccessToken: token})
}
