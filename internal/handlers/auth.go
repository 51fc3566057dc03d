package handlers

import (
	"errors"
	"fmt"
	"net/http"

	apierrors "github.com/Ankitaa-Mannaa/task-manager/internal/errors"
	"github.com/Ankitaa-Mannaa/task-manager/internal/models"
	"github.com/Ankitaa-Mannaa/task-manager/internal/services"
	"github.com/gin-gonic/gin"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Signup registers a new user. The first user in the system becomes admin
// regardless of the requested role.
func (h *AuthHandler) Signup(c *gin.Context) {
	type SignupRequest struct {
		Name      string  `json:"name"`
		Email     string  `json:"email"`
		Password  string  `json:"password"`
		Role      string  `json:"role"`
		ManagerID *uint64 `json:"manager_id"`
	}

	var req SignupRequest
	if err := bindStrict(c, &req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.Signup(services.SignupInput{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		Role:      models.Role(req.Role),
		ManagerID: req.ManagerID,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingFields):
			apierrors.BadRequest(c, "Name, email, and password are required")
		case errors.Is(err, services.ErrEmailTaken):
			apierrors.Conflict(c, "User already exists")
		default:
			apierrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"msg": fmt.Sprintf("Signup successful as %s", user.Role)})
}

// Login authenticates a user and returns a bearer token plus the role.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var req LoginRequest
	if err := bindStrict(c, &req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	token, role, err := h.authService.Login(services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingCredentials):
			apierrors.BadRequest(c, "Email and password are required")
		case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrAccountDisabled):
			apierrors.Unauthorized(c, "Invalid credentials")
		default:
			apierrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "role": role})
}

// ChangeRole lets an admin set another user's role to user or manager.
func (h *AuthHandler) ChangeRole(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	targetID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	type RoleRequest struct {
		Role string `json:"role"`
	}

	var req RoleRequest
	if err := bindStrict(c, &req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.authService.ChangeRole(actor, targetID, models.Role(req.Role)); err != nil {
		switch {
		case errors.Is(err, services.ErrRoleChangeForbidden):
			apierrors.Forbidden(c, "Only admins can change roles")
		case errors.Is(err, services.ErrInvalidRole):
			apierrors.BadRequest(c, "Invalid role. Must be 'user' or 'manager'")
		case errors.Is(err, services.ErrUserNotFound):
			apierrors.NotFound(c, "User not found")
		default:
			apierrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": fmt.Sprintf("User role updated to %s", req.Role)})
}
