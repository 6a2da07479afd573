package controller

import (
	"errors"
	"net/http"

	"github.com/strikelab/cyberlab/internal/apperr"
)

// StatusForError maps engine error kinds to HTTP statuses. Anything outside
// the taxonomy is a server error.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
