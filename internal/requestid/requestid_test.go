package requestid

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCarriesID(t *testing.T) {
	ctx, id := New(context.Background())
	assert.NotEmpty(t, id)
	assert.Equal(t, id, FromContext(ctx))

	_, other := New(context.Background())
	assert.NotEqual(t, id, other, "every request gets its own id")
}

func TestFromContextGeneratesWhenMissing(t *testing.T) {
	first := FromContext(context.Background())
	second := FromContext(context.Background())
	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second, "a bare context yields a fresh id each call")
}

func TestWithRequestIDOverridesExisting(t *testing.T) {
	ctx, generated := New(context.Background())
	ctx = WithRequestID(ctx, "req-42")
	assert.Equal(t, "req-42", FromContext(ctx))
	assert.NotEqual(t, generated, FromContext(ctx))
}
