package wmerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{name: "nil", err: nil, want: OK},
		{name: "bare", err: ErrInvalidType, want: InvalidType},
		{name: "wrapped", err: fmt.Errorf("raise window 3: %w", ErrInvalidType), want: InvalidType},
		{name: "foreign", err: errors.New("boom"), want: InvalidParam},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}

func TestWrappedCodeMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("remove window: %w", ErrDestroyedObject)
	assert.ErrorIs(t, err, ErrDestroyedObject)
	assert.NotErrorIs(t, err, ErrNullPtr)
	assert.Equal(t, "remove window: DESTROYED_OBJECT", err.Error())
}

func TestParseCode(t *testing.T) {
	for c := OK; c <= InvalidDisplay; c++ {
		got, ok := ParseCode(c.String())
		assert.True(t, ok)
		assert.Equal(t, c, got)
	}
	_, ok := ParseCode("BOGUS")
	assert.False(t, ok)
}
