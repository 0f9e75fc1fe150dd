package handler

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/trading-ledger/internal/middleware"
	"github.com/trading-ledger/internal/models"
	"github.com/trading-ledger/internal/service"
	"github.com/trading-ledger/pkg/response"
)

// AuthHandler exposes signup, login, token refresh, and the
// current-user lookup
type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.authService.Register(&req)
	if err != nil {
		replyAuthError(c, err)
		return
	}

	response.Created(c, userProfile(user))
}

// Login handles POST /auth/login. The identifier may be a username or
// an email address.
func (h *AuthHandler) Login(c *gin.Context) {
	var creds service.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	token, err := h.authService.Login(&creds)
	if err != nil {
		replyAuthError(c, err)
		return
	}

	response.Success(c, token)
}

// Refresh handles POST /auth/refresh, exchanging the bearer token on
// the Authorization header for a fresh one
func (h *AuthHandler) Refresh(c *gin.Context) {
	raw := bearerToken(c)
	if raw == "" {
		response.Unauthorized(c, "missing bearer token")
		return
	}

	token, err := h.authService.Refresh(raw)
	if err != nil {
		replyAuthError(c, err)
		return
	}

	response.Success(c, token)
}

// Me handles GET /auth/me, returning the authenticated user's profile
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authService.GetUserByID(middleware.GetUserID(c))
	if err != nil {
		response.Unauthorized(c, "invalid or expired token")
		return
	}
	response.Success(c, userProfile(user))
}

// RegisterRoutes registers auth routes; /auth/me requires a valid token
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.Refresh)
		auth.GET("/me", authMiddleware, h.Me)
	}
}

func userProfile(user *models.User) gin.H {
	return gin.H{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
	}
}

func replyAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmailTaken):
		response.BadRequest(c, "email already registered")
	case errors.Is(err, service.ErrUsernameTaken):
		response.BadRequest(c, "username already taken")
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, "invalid credentials")
	case errors.Is(err, service.ErrInvalidToken):
		response.Unauthorized(c, "invalid or expired token")
	default:
		response.InternalError(c, "authentication failed")
	}
}

func bearerToken(c *gin.Context) string {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
