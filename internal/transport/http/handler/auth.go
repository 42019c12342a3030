package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gemcanvas/internal/app"
	"gemcanvas/internal/transport/http/middleware"
	"gemcanvas/internal/transport/http/response"
)

type AuthHandler struct {
	authService *app.OwnerAuthService
}

type LoginRequest struct {
	Username string `json:"username" binding:"required,max=64"`
	Password string `json:"password" binding:"required,max=128"`
}

func NewAuthHandler(authService *app.OwnerAuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.authService.Login(app.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrInvalidCredential):
			response.Error(c, http.StatusUnauthorized, response.CodeInvalidCredentials, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "login failed")
		}
		return
	}

	response.OK(c, result)
}

func (h *AuthHandler) Me(c *gin.Context) {
	if !h.authService.Enabled() {
		response.OK(c, gin.H{"auth_enabled": false})
		return
	}
	username, ok := c.Get(middleware.ContextUsernameKey)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found in token")
		return
	}
	response.OK(c, gin.H{"auth_enabled": true, "username": username})
}
