package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"mindcare-be/internal/logging"
	"mindcare-be/internal/middleware"
	"mindcare-be/internal/models"
	"mindcare-be/internal/service"
)

// Client-facing error messages
const (
	msgMissingFields      = "Missing fields"
	msgMissingLogin       = "Missing email or password"
	msgEmailTaken         = "Email already registered"
	msgInvalidCredentials = "Invalid credentials"
	msgNoToken            = "No token"
	msgInvalidToken       = "Invalid token"
	msgUserNotFound       = "User not found"
	msgServerError        = "Server error"
)

type AuthController struct {
	authService service.AuthService
	logger      *slog.Logger
}

func NewAuthController(authService service.AuthService, logger *slog.Logger) *AuthController {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthController{
		authService: authService,
		logger:      logger,
	}
}

// Signup handles POST /signup
func (ac *AuthController) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(msgMissingFields))
		return
	}

	response, err := ac.authService.Register(c.Request.Context(), &req)
	if err != nil {
		ac.writeError(c, err, msgMissingFields)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// Login handles POST /login
func (ac *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(msgMissingLogin))
		return
	}

	response, err := ac.authService.Authenticate(c.Request.Context(), &req)
	if err != nil {
		ac.writeError(c, err, msgMissingLogin)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Me handles GET /me
func (ac *AuthController) Me(c *gin.Context) {
	token, present := middleware.BearerToken(c)
	if present && token == "" {
		c.JSON(http.StatusUnauthorized, models.NewErrorResponse(msgInvalidToken))
		return
	}

	user, err := ac.authService.Identify(c.Request.Context(), token)
	if err != nil {
		ac.writeError(c, err, msgInvalidToken)
		return
	}

	c.JSON(http.StatusOK, models.MeResponse{Status: models.StatusOK, User: user})
}

// writeError maps service errors to a status and message. invalidInputMsg
// differs between signup and login.
func (ac *AuthController) writeError(c *gin.Context, err error, invalidInputMsg string) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(invalidInputMsg))
	case errors.Is(err, service.ErrEmailTaken):
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(msgEmailTaken))
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, models.NewErrorResponse(msgInvalidCredentials))
	case errors.Is(err, service.ErrMissingToken):
		c.JSON(http.StatusUnauthorized, models.NewErrorResponse(msgNoToken))
	case errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, models.NewErrorResponse(msgInvalidToken))
	case errors.Is(err, service.ErrAccountNotFound):
		c.JSON(http.StatusNotFound, models.NewErrorResponse(msgUserNotFound))
	default:
		logging.LogError(ac.logger, "request failed", err,
			"method", c.Request.Method,
			"path", c.FullPath(),
		)
		c.JSON(http.StatusInternalServerError, models.NewErrorResponse(msgServerError))
	}
}
