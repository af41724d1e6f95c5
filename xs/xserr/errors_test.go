package xserr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_MatchesKindAndCause(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(ErrData, "library.Load", cause).WithNuclide("Li6").WithReaction(102, "294").WithEnergy(2.5)

	assert.True(t, errors.Is(err, ErrData))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrConfig))
	assert.Equal(t, "library.Load: data error [nuclide=Li6 mt=102 temperature=294 energy=2.5eV]: boom", err.Error())
}

func TestError_WrappedByFmt(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(ErrOutOfRange, "table.Lookup", "energy %g", 1.0).WithMaterial("steel"))
	assert.True(t, errors.Is(err, ErrOutOfRange))
	assert.Equal(t, ErrOutOfRange, KindOf(err))

	var xe *Error
	assert.True(t, errors.As(err, &xe))
	assert.Equal(t, "steel", xe.Material)
}

func TestKindOf(t *testing.T) {
	assert.Nil(t, KindOf(errors.New("plain")))
	assert.Equal(t, ErrInvalidMaterial, KindOf(New(ErrInvalidMaterial, "op", "x")))
}

func TestIsRetryable(t *testing.T) {
	inner := Wrap(ErrData, "library.Fetch", errors.New("timeout"))
	inner.Retryable = true
	outer := Wrap(ErrData, "xs.Material", inner).WithMaterial("m")

	assert.True(t, IsRetryable(inner))
	assert.True(t, IsRetryable(outer))
	assert.True(t, IsRetryable(fmt.Errorf("ctx: %w", outer)))
	assert.False(t, IsRetryable(New(ErrData, "library.Parse", "bad")))
	assert.False(t, IsRetryable(errors.New("plain")))
}
