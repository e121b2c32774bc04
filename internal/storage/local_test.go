package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labelprint/orderexport/pkg/errors"
)

func TestLocalStore(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "exports")
	store, err := NewLocalStore(dir, "/exports/", nil)
	require.NoError(t, err)

	t.Run("Save writes the file and returns its URL", func(t *testing.T) {
		location, err := store.Save(ctx, "orders_20240307_0905.csv", []byte("a,b"))
		require.NoError(t, err)

		assert.Equal(t, "/exports/orders_20240307_0905.csv", location)
		data, err := os.ReadFile(filepath.Join(dir, "orders_20240307_0905.csv"))
		require.NoError(t, err)
		assert.Equal(t, "a,b", string(data))
	})

	t.Run("Save never replaces an existing file", func(t *testing.T) {
		_, err := store.Save(ctx, "orders_all.csv", []byte("old"))
		require.NoError(t, err)
		_, err = store.Save(ctx, "orders_all.csv", []byte("new"))

		var conflict *errors.ErrConflict
		require.ErrorAs(t, err, &conflict)
		p, err := store.Path("orders_all.csv")
		require.NoError(t, err)
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.Equal(t, "old", string(data))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		for _, e := range entries {
			assert.NotContains(t, e.Name(), ".export-", "temp file left behind")
		}
	})

	t.Run("Delete removes the file and tolerates missing ones", func(t *testing.T) {
		_, err := store.Save(ctx, "gone.csv", []byte("x"))
		require.NoError(t, err)

		require.NoError(t, store.Delete(ctx, "gone.csv"))
		require.NoError(t, store.Delete(ctx, "gone.csv"))

		_, err = store.Path("gone.csv")
		var notFound *errors.ErrNotFound
		assert.ErrorAs(t, err, &notFound)
	})

	t.Run("Rejects path names", func(t *testing.T) {
		for _, name := range []string{"", "../secret.csv", "a/b.csv", `a\b.csv`, ".hidden"} {
			_, err := store.Save(ctx, name, []byte("x"))
			var validation *errors.ErrValidation
			assert.ErrorAs(t, err, &validation, name)
		}
	})

	t.Run("No temp files left behind", func(t *testing.T) {
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		for _, e := range entries {
			assert.NotContains(t, e.Name(), ".export-")
		}
	})
}
