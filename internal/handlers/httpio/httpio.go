// Package httpio holds the request decoding and error mapping shared by the
// API handlers.
package httpio

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/GlebRadaev/loanportal/internal/domain"
	"github.com/GlebRadaev/loanportal/pkg/auth"
	"github.com/GlebRadaev/loanportal/pkg/utils"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var (
	ErrInvalidBody = errors.New("Invalid request body")
	ErrInvalidID   = errors.New("Invalid identifier")
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Bind decodes a JSON body into dst and runs its validate tags.
func Bind(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return ErrInvalidBody
	}
	if err := validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return domain.NewValidationError(domain.KindInvalidField, fe.Field(),
				"field %s failed on the %q rule", fe.Field(), fe.Tag())
		}
		return err
	}
	return nil
}

// BindOptional is Bind for bodies that may be omitted.
func BindOptional(r *http.Request, dst any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return ErrInvalidBody
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	return Bind(r, dst)
}

// IDParam reads a positive integer URL parameter.
func IDParam(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}

// Actor returns the caller placed in the context by auth.AuthMiddleware.
func Actor(r *http.Request) auth.Actor {
	actor, _ := auth.ActorFromContext(r.Context())
	return actor
}

// Fail writes the status and message that match err.
func Fail(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	switch {
	case errors.Is(err, ErrInvalidBody), errors.Is(err, ErrInvalidID):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &validationErr):
		utils.RespondWithError(w, http.StatusBadRequest, validationErr.Message)
	case errors.Is(err, domain.ErrValidation):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, domain.ErrForbidden):
		utils.RespondWithError(w, http.StatusForbidden, "Forbidden")
	case errors.Is(err, domain.ErrNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrConflict):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrGateway):
		utils.RespondWithError(w, http.StatusBadGateway, err.Error())
	default:
		zap.L().Error("request failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
