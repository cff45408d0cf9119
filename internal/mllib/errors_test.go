package mllib

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	bp := ErrBadParam("bad repo")
	in := ErrInternal("disk fault")

	assert.Equal(t, "bad repo", bp.Error())
	assert.Equal(t, "disk fault", in.Error())
	assert.True(t, IsBadParam(bp))
	assert.False(t, IsInternal(bp))
	assert.True(t, IsInternal(in))
	assert.False(t, IsBadParam(in))
	assert.False(t, IsBadParam(errors.New("plain")))
	assert.False(t, IsInternal(nil))
}

func TestErrorKindsSurviveWrapping(t *testing.T) {
	wrapped := fmt.Errorf("service %q: %w", "s1", ErrBadParam("missing label"))
	assert.True(t, IsBadParam(wrapped))
	assert.Contains(t, wrapped.Error(), "missing label")
}
