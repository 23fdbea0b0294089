package file

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compliedu/backend/core"
)

func TestStore(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	_, err = store.Get("sar_applications")
	assert.Equal(t, core.ErrKeyNotFound, err)

	val := []byte(`[{"id":"app-1"}]`)
	require.NoError(t, store.Set("sar_applications", val))

	got, err := store.Get("sar_applications")
	require.NoError(t, err)
	assert.Equal(t, val, got)

	// overwrite
	val2 := []byte(`[]`)
	require.NoError(t, store.Set("sar_applications", val2))
	got, err = store.Get("sar_applications")
	require.NoError(t, err)
	assert.Equal(t, val2, got)

	require.NoError(t, store.Delete("sar_applications"))
	_, err = store.Get("sar_applications")
	assert.Equal(t, core.ErrKeyNotFound, err)

	// deleting a missing key is not an error
	assert.NoError(t, store.Delete("sar_applications"))
}

func TestStoreKeyFlattening(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("institute_form_../evil", []byte("x")))

	// the value must land inside the store directory
	files, err := ioutil.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Base(files[0].Name()), files[0].Name())

	got, err := store.Get("institute_form_../evil")
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), got)
}
