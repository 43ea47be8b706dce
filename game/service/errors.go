package service

import (
	"errors"
	"net/http"

	"github.com/wricardo/mcp-training/jackaroo/game/engine"
)

// Errors shared by the session and config managers. Their packages alias these
// so errors.Is works across layers.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrConfigNotFound  = errors.New("configuration not found")
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrInvalidRequest  = errors.New("invalid request")
)

// HTTPStatus maps an error returned by the service onto a response status
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrConfigNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, ErrInvalidConfig), engine.IsSelectionError(err):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrGameOver), engine.IsActionError(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
