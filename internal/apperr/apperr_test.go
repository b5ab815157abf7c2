package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{Validation("bad"), http.StatusBadRequest},
		{Conflict("taken"), http.StatusBadRequest},
		{Unauthenticated("who"), http.StatusUnauthorized},
		{Forbidden("no"), http.StatusForbidden},
		{NotFound("gone"), http.StatusNotFound},
		{Unavailable("later"), http.StatusServiceUnavailable},
		{fmt.Errorf("wrapped: %w", NotFound("gone")), http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Status(tt.err), tt.err.Error())
	}
}

func TestWrapKeepsCauseAndMessage(t *testing.T) {
	cause := errors.New("disk on fire")
	err := Wrap(ErrValidation, "invalid body", cause)

	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "invalid body", Detail(err))
	assert.Equal(t, "invalid body: disk on fire", err.Error())
}

func TestDetailLeaksUnclassified(t *testing.T) {
	assert.Equal(t, "dial tcp: refused", Detail(errors.New("dial tcp: refused")))
	assert.Equal(t, "Unauthorized", Title(http.StatusUnauthorized))
	assert.Equal(t, "Too Many Requests", Title(http.StatusTooManyRequests))
}
