package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dom/visa-booking-website/internal/api/respond"
	"github.com/dom/visa-booking-website/internal/password"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

const maxBodyBytes = 1 << 20

const minPasswordLength = 6

// notBlank rejects whitespace-only strings, which Required lets through.
var notBlank = validation.By(func(value interface{}) error {
	if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
		return errors.New("cannot be blank")
	}
	return nil
})

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(3, 254), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(minPasswordLength, password.MaxLength)),
		validation.Field(&r.FirstName, validation.Required, notBlank, validation.RuneLength(1, 100)),
		validation.Field(&r.LastName, validation.Required, notBlank, validation.RuneLength(1, 100)),
	)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

type UpdateProfileRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

func (r UpdateProfileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Required, notBlank, validation.RuneLength(1, 100)),
		validation.Field(&r.LastName, validation.Required, notBlank, validation.RuneLength(1, 100)),
		validation.Field(&r.Email, validation.Required, validation.Length(3, 254), is.Email),
	)
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (r ChangePasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required, validation.Length(minPasswordLength, password.MaxLength)),
	)
}

type validatable interface {
	Validate() error
}

// decodeAndValidate reads a JSON body into v and validates it, writing a 400
// and returning false on failure. Messages name fields, never echo values.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v validatable) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respond.Error(w, http.StatusBadRequest, respond.CodeInvalidRequest, "Invalid request body")
		return false
	}

	if err := v.Validate(); err != nil {
		body := respond.ErrorBody{
			Error:   respond.CodeValidationFailed,
			Message: "Request validation failed",
		}
		var fieldErrs validation.Errors
		if errors.As(err, &fieldErrs) {
			body.Fields = make(map[string]string, len(fieldErrs))
			for field, ferr := range fieldErrs {
				body.Fields[field] = ferr.Error()
			}
		}
		respond.JSON(w, http.StatusBadRequest, body)
		return false
	}

	return true
}
