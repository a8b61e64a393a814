package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/clubciclismoepn/backend/internal/domain"
	"github.com/gin-gonic/gin"
)

// authUsecaser is the subset of AuthUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	Register(ctx context.Context, email, password string, role domain.Role) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	ChangeRole(ctx context.Context, userID string, role domain.Role) error
}

type recoveryUsecaser interface {
	RequestCode(ctx context.Context, email string) error
	CheckCode(ctx context.Context, value string) (domain.TokenStatus, error)
	ResetPassword(ctx context.Context, value, newPassword string) error
}

type AuthHandler struct {
	auth     authUsecaser
	recovery recoveryUsecaser
	logger   *slog.Logger
}

func NewAuthHandler(auth authUsecaser, recovery recoveryUsecaser, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		recovery: recovery,
		logger:   logger.With("component", "auth_handler"),
	}
}

type registerRequest struct {
	Email    string      `json:"email"    binding:"required,email"`
	Password string      `json:"password" binding:"required"`
	Role     domain.Role `json:"role"     binding:"omitempty,oneof=Admin Normal"`
}

type userResponse struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
}

// POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateEmail):
			c.JSON(http.StatusBadRequest, gin.H{"error": errEmailTaken})
		case errors.Is(err, domain.ErrWeakPassword):
			c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrWeakPassword.Error()})
		default:
			h.logger.Error("register user", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	c.JSON(http.StatusCreated, userResponse{
		ID:        user.ID,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	})
}

type loginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// POST /auth/token
func (h *AuthHandler) Token(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredential) {
			c.Header("WWW-Authenticate", "Bearer")
			c.JSON(http.StatusUnauthorized, gin.H{"error": errInvalidCredentials})
			return
		}
		h.logger.Error("login", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

type resetSendRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// POST /auth/reset_password/send
// Always answers the same generic success so callers cannot probe which
// emails are registered.
func (h *AuthHandler) SendResetCode(c *gin.Context) {
	var req resetSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.recovery.RequestCode(c.Request.Context(), req.Email); err != nil {
		h.logger.Error("request recovery code", "error", err)
	}

	c.JSON(http.StatusOK, gin.H{"message": msgCodeSent})
}

type resetVerifyRequest struct {
	Code string `json:"code" binding:"required,len=6,numeric"`
}

// POST /auth/reset_password/verify
// Non-consuming pre-validation of a code: 200 valid, 410 expired or
// spent, 400 unknown.
func (h *AuthHandler) VerifyResetCode(c *gin.Context) {
	var req resetVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status, err := h.recovery.CheckCode(c.Request.Context(), req.Code)
	if err != nil {
		h.logger.Error("check recovery code", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	switch status {
	case domain.TokenValid:
		c.JSON(http.StatusOK, gin.H{"is_valid": true, "message": "Código valido"})
	case domain.TokenExpired:
		c.JSON(http.StatusGone, gin.H{"error": errCodeExpired})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": errCodeInvalid})
	}
}

type resetRequest struct {
	Code        string `json:"code"         binding:"required,len=6,numeric"`
	NewPassword string `json:"new_password" binding:"required"`
}

// POST /auth/reset_password/reset
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.recovery.ResetPassword(c.Request.Context(), req.Code, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTokenInvalid):
			c.JSON(http.StatusBadRequest, gin.H{"error": errCodeInvalid})
		case errors.Is(err, domain.ErrWeakPassword):
			c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrWeakPassword.Error()})
		default:
			h.logger.Error("reset password", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"detail": "Contraseña actualizada exitosamente."})
}

// GET /auth/users  (admin)
func (h *AuthHandler) ListUsers(c *gin.Context) {
	users, err := h.auth.ListUsers(c.Request.Context())
	if err != nil {
		h.logger.Error("list users", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, userResponse{
			ID:        u.ID,
			Email:     u.Email,
			Role:      u.Role,
			CreatedAt: u.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}

type updateRoleRequest struct {
	Role domain.Role `json:"role" binding:"required,oneof=Admin Normal"`
}

// PUT /auth/users/:id/role  (admin)
func (h *AuthHandler) UpdateRole(c *gin.Context) {
	var req updateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.Param("id")
	if err := h.auth.ChangeRole(c.Request.Context(), userID, req.Role); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Usuario no encontrado."})
			return
		}
		h.logger.Error("update role", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.Status(http.StatusOK)
}
