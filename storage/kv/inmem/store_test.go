package inmem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compliedu/backend/core"
)

func TestStore(t *testing.T) {
	store := NewStore()

	_, err := store.Get("users")
	assert.Equal(t, core.ErrKeyNotFound, err)

	val := []byte(`[]`)
	require.NoError(t, store.Set("users", val))

	got, err := store.Get("users")
	require.NoError(t, err)
	assert.Equal(t, val, got)

	// mutating a returned value must not affect the stored one
	got[0] = 'X'
	got2, err := store.Get("users")
	require.NoError(t, err)
	assert.Equal(t, val, got2)

	require.NoError(t, store.Delete("users"))
	_, err = store.Get("users")
	assert.Equal(t, core.ErrKeyNotFound, err)
}
