package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dom/visa-booking-website/internal/api/middleware"
	"github.com/dom/visa-booking-website/internal/api/respond"
	"github.com/dom/visa-booking-website/internal/domain"
	"github.com/dom/visa-booking-website/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
	log         *slog.Logger
}

func NewAuthHandler(authService *service.AuthService, log *slog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, log: log}
}

type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type AuthResponse struct {
	UserResponse
	Token string `json:"token"`
}

func newUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID.String(),
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.authService.Register(r.Context(), service.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
	})
	if err != nil {
		if errors.Is(err, service.ErrDuplicateEmail) {
			respond.Error(w, http.StatusBadRequest, respond.CodeDuplicateEmail, "An account with this email already exists")
			return
		}
		h.internalError(w, r, "auth.Register", err)
		return
	}

	respond.JSON(w, http.StatusOK, AuthResponse{
		UserResponse: newUserResponse(result.User),
		Token:        result.Token,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.authService.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respond.Error(w, http.StatusUnauthorized, respond.CodeInvalidCredentials, "Invalid email or password")
			return
		}
		h.internalError(w, r, "auth.Login", err)
		return
	}

	respond.JSON(w, http.StatusOK, AuthResponse{
		UserResponse: newUserResponse(result.User),
		Token:        result.Token,
	})
}

// Logout has no server state to clear; the client discards its token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	respond.Message(w, "Logged out")
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}

	respond.JSON(w, http.StatusOK, newUserResponse(user))
}

func (h *AuthHandler) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.log.ErrorContext(r.Context(), "request failed", "op", op, "error", err)
	if errors.Is(err, service.ErrTransient) {
		w.Header().Set("Retry-After", "1")
	}
	respond.Internal(w)
}
