package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorage_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "k", []byte("v1")))
	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)

	require.NoError(t, s.Set(ctx, "k", []byte("v2")))
	got, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)

	require.NoError(t, s.Delete(ctx, "k"))
	require.NoError(t, s.Delete(ctx, "k"))
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStorage_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	value := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", value))
	value[0] = 'x'

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)

	got[1] = 'y'
	again, _ := s.Get(ctx, "k")
	assert.Equal(t, []byte("abc"), again)
}

func TestForSession_IsolatesSessions(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryStorage()

	alice := ForSession(backend, "alice")
	bob := ForSession(backend, "bob")

	require.NoError(t, alice.Set(ctx, "shopsphere_cart", []byte(`[1]`)))

	_, err := bob.Get(ctx, "shopsphere_cart")
	assert.ErrorIs(t, err, ErrNotFound)

	raw, err := backend.Get(ctx, "session:alice:shopsphere_cart")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[1]`), raw)

	require.NoError(t, alice.Delete(ctx, "shopsphere_cart"))
	_, err = backend.Get(ctx, "session:alice:shopsphere_cart")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, bob.Ping(ctx))
}
