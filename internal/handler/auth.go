package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/msomdec/product-catalog/internal/domain"
	"github.com/msomdec/product-catalog/internal/service"
)

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// HandleLogin processes a JSON login request.
// POST /api/Auth/Login
// Request:  {"username":"...","password":"..."}
// Response: {"token":"..."}
func (h *AuthHandler) HandleLogin(c *gin.Context) {
	var req credentialsRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(c, http.StatusBadRequest, "Username and password are required.")
		case errors.Is(err, domain.ErrUnauthorized):
			writeError(c, http.StatusUnauthorized, "Invalid username or password.")
		default:
			zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("login user")
			writeError(c, http.StatusInternalServerError, msgInternal)
		}
		return
	}

	c.JSON(http.StatusOK, tokenResponse{Token: token})
}

// HandleRegister processes a JSON registration request.
// POST /api/Auth/Register
// Request:  {"username":"...","password":"...","email":"..."}
// Response: {"token":"..."}
func (h *AuthHandler) HandleRegister(c *gin.Context) {
	var req credentialsRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}

	token, err := h.auth.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(c, http.StatusBadRequest, "Username and password are required.")
		case errors.Is(err, domain.ErrUsernameTaken):
			writeError(c, http.StatusBadRequest, "Username already exists.")
		default:
			zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("register user")
			writeError(c, http.StatusInternalServerError, msgInternal)
		}
		return
	}

	c.JSON(http.StatusOK, tokenResponse{Token: token})
}
