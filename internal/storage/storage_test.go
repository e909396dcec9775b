package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorePutListDelete(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir(), "/static/uploads/")
	require.NoError(t, err)

	url, err := store.Put(ctx, "app/restaurants/r1/a.jpg", "image/jpeg", strings.NewReader("a"))
	require.NoError(t, err)
	assert.Equal(t, "/static/uploads/app/restaurants/r1/a.jpg", url)

	_, err = store.Put(ctx, "app/restaurants/r1/b.jpg", "image/jpeg", strings.NewReader("b"))
	require.NoError(t, err)
	_, err = store.Put(ctx, "app/restaurants/r2/c.jpg", "image/jpeg", strings.NewReader("c"))
	require.NoError(t, err)

	keys, err := store.List(ctx, "app/restaurants/r1/")
	require.NoError(t, err)
	assert.Equal(t, []string{"app/restaurants/r1/a.jpg", "app/restaurants/r1/b.jpg"}, keys)

	require.NoError(t, store.Delete(ctx, "app/restaurants/r1/a.jpg"))
	require.NoError(t, store.Delete(ctx, "app/restaurants/r1/a.jpg"), "deleting an absent object succeeds")
}

func TestLocalStoreRejectsEscapingKeys(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(root, "/u")
	require.NoError(t, err)

	_, err = store.Put(context.Background(), "../../etc/passwd", "", strings.NewReader("x"))
	require.NoError(t, err, "keys are cleaned into the root")

	keys, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"etc/passwd"}, keys)

	_, err = store.Put(context.Background(), "/", "", strings.NewReader("x"))
	assert.Error(t, err)
}

type flakyStore struct {
	mu      sync.Mutex
	keys    []string
	deleted []string
	missing map[string]bool
	broken  map[string]bool
}

func (f *flakyStore) Put(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	return key, nil
}

func (f *flakyStore) List(ctx context.Context, prefix string) ([]string, error) {
	return f.keys, nil
}

func (f *flakyStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.missing[key] {
		return ErrObjectNotFound
	}
	if f.broken[key] {
		return errors.New("boom: " + key)
	}
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *flakyStore) URL(key string) string { return key }

func TestDeletePrefixTreatsMissingAsSuccess(t *testing.T) {
	store := &flakyStore{
		keys:    []string{"p/a", "p/b", "p/c"},
		missing: map[string]bool{"p/b": true},
	}

	deleted, err := DeletePrefix(context.Background(), store, "p/")
	require.NoError(t, err)
	assert.Equal(t, 3, deleted)
	assert.ElementsMatch(t, []string{"p/a", "p/c"}, store.deleted)
}

func TestDeletePrefixCombinesFailures(t *testing.T) {
	store := &flakyStore{
		keys:   []string{"p/a", "p/b", "p/c"},
		broken: map[string]bool{"p/a": true, "p/c": true},
	}

	deleted, err := DeletePrefix(context.Background(), store, "p/")
	require.Error(t, err)
	assert.Equal(t, 1, deleted)
	assert.Contains(t, err.Error(), "boom: p/a")
	assert.Contains(t, err.Error(), "boom: p/c")
}
