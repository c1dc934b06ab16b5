package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dom/visa-booking-website/internal/api/middleware"
	"github.com/dom/visa-booking-website/internal/api/respond"
	"github.com/dom/visa-booking-website/internal/service"
)

type AccountHandler struct {
	accountService *service.AccountService
	log            *slog.Logger
}

func NewAccountHandler(accountService *service.AccountService, log *slog.Logger) *AccountHandler {
	return &AccountHandler{accountService: accountService, log: log}
}

// UpdateProfile changes the caller's own name and email.
func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}

	var req UpdateProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	updated, err := h.accountService.UpdateProfile(r.Context(), user, service.UpdateProfileInput{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     req.Email,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			respond.Error(w, http.StatusBadRequest, respond.CodeEmailTaken, "This email is already in use")
		case errors.Is(err, service.ErrUnauthorized):
			respond.Unauthorized(w)
		default:
			h.internalError(w, r, "account.UpdateProfile", err)
		}
		return
	}

	respond.JSON(w, http.StatusOK, newUserResponse(updated))
}

// ChangePassword requires the current password again before replacing it.
func (h *AccountHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}

	var req ChangePasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	err := h.accountService.ChangePassword(r.Context(), user, service.ChangePasswordInput{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCurrentPassword):
			respond.Error(w, http.StatusBadRequest, respond.CodeInvalidCurrentPassword, "Current password is incorrect")
		case errors.Is(err, service.ErrUnauthorized):
			respond.Unauthorized(w)
		default:
			h.internalError(w, r, "account.ChangePassword", err)
		}
		return
	}

	respond.Message(w, "Password updated")
}

func (h *AccountHandler) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.log.ErrorContext(r.Context(), "request failed", "op", op, "error", err)
	if errors.Is(err, service.ErrTransient) {
		w.Header().Set("Retry-After", "1")
	}
	respond.Internal(w)
}
