package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(Validation("bad input")))
	assert.Equal(t, KindNotFound, KindOf(NotFound("missing")))
	assert.Equal(t, KindInternal, KindOf(errors.New("untyped")))

	// Wrapped typed errors are still classified.
	wrapped := fmt.Errorf("context: %w", Forbidden("no"))
	assert.Equal(t, KindForbidden, KindOf(wrapped))
}

func TestInternalKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal("lookup failed", cause)
	assert.ErrorIs(t, err, cause)
}

func TestHTTPStatus(t *testing.T) {
	cases := map[int]error{
		http.StatusBadRequest:          Validation("x"),
		http.StatusNotFound:            NotFound("x"),
		http.StatusForbidden:           Forbidden("x"),
		http.StatusUnprocessableEntity: InvalidOperation("x"),
		http.StatusConflict:            Conflict("x"),
		http.StatusInternalServerError: Internal("x", nil),
	}
	for status, err := range cases {
		assert.Equal(t, status, HTTPStatus(err))
	}
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("untyped")))
}
