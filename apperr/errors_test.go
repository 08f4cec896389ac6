package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind(t *testing.T) {
	cause := errors.New("disk full")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"storage", fmt.Errorf("move upload: %w: %w", ErrStorage, cause), ErrStorage},
		{"pricing", fmt.Errorf("resolve: %w: %w", ErrPricing, cause), ErrPricing},
		{"nested", fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", ErrNotFoundOrExpired)), ErrNotFoundOrExpired},
		{"unknown", cause, nil},
		{"nil", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Kind(tt.err))
		})
	}
}

func TestWrappedCauseStillVisible(t *testing.T) {
	cause := errors.New("permission denied")
	err := fmt.Errorf("move upload: %w: %w", ErrStorage, cause)

	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, cause)
}
