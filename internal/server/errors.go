package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/teamverse/internal/ingestion"
	"github.com/jonathan/teamverse/internal/types"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error.
// Request validation and invalid sources are 422. Fetch failures,
// rendering and everything else are 500.
func HTTPStatus(err error) int {
	var (
		validationErr *ErrValidation
		audienceErr   *types.InvalidAudienceError
		sourceErr     *ingestion.InvalidSourceError
		fieldErrs     validator.ValidationErrors
	)
	switch {
	case err == nil:
		return http.StatusInternalServerError
	case errors.As(err, &validationErr), errors.As(err, &audienceErr), errors.As(err, &sourceErr),
		errors.As(err, &fieldErrs):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
