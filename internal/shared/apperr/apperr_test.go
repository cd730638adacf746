package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusOf(t *testing.T) {
	t.Parallel()

	sentinel := NotFound("Product not found.")

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("bad"), http.StatusBadRequest},
		{"conflict maps to 400", Conflict("dup"), http.StatusBadRequest},
		{"not found", sentinel, http.StatusNotFound},
		{"wrapped sentinel", fmt.Errorf("repo: %w", sentinel), http.StatusNotFound},
		{"unauthorized", Unauthorized("no"), http.StatusUnauthorized},
		{"forbidden", Forbidden("no"), http.StatusForbidden},
		{"throttled", New(KindThrottled, "slow down"), http.StatusTooManyRequests},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, StatusOf(tt.err))
		})
	}
}

func TestError_IsAndUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("driver failure")
	err := Wrap(KindInternal, "could not save", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "could not save: driver failure", err.Error())

	sentinel := Validation("Quantity must be positive.")
	wrapped := fmt.Errorf("add item: %w", sentinel)
	assert.ErrorIs(t, wrapped, sentinel)

	got, ok := As(wrapped)
	assert.True(t, ok)
	assert.Equal(t, "Quantity must be positive.", got.Message)
}
