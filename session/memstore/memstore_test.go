package memstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratahttp/strata/session"
	"github.com/stratahttp/strata/session/memstore"
)

func TestMemstoreSaveLoad(t *testing.T) {
	t.Parallel()

	store := memstore.New()
	ctx := context.Background()

	sess := session.New("tok-1")
	sess.Authenticate("user-1")
	sess.Set("lang", "en")
	require.NoError(t, store.Save(ctx, sess, time.Minute))

	loaded, err := store.Load(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", loaded.UserID)
	v, ok := loaded.Get("lang")
	assert.True(t, ok)
	assert.Equal(t, "en", v)
}

func TestMemstoreLoadMissing(t *testing.T) {
	t.Parallel()

	store := memstore.New()
	_, err := store.Load(context.Background(), "nope")
	require.ErrorIs(t, err, session.ErrNotFound)
}

func TestMemstoreExpiry(t *testing.T) {
	t.Parallel()

	store := memstore.New()
	ctx := context.Background()

	sess := session.New("tok-exp")
	require.NoError(t, store.Save(ctx, sess, time.Millisecond))

	time.Sleep(10 * time.Millisecond)

	_, err := store.Load(ctx, "tok-exp")
	require.ErrorIs(t, err, session.ErrNotFound)
}

func TestMemstoreDelete(t *testing.T) {
	t.Parallel()

	store := memstore.New()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, session.New("tok-del"), time.Minute))
	require.NoError(t, store.Delete(ctx, "tok-del"))
	// Deleting twice is fine.
	require.NoError(t, store.Delete(ctx, "tok-del"))

	_, err := store.Load(ctx, "tok-del")
	require.ErrorIs(t, err, session.ErrNotFound)
}

func TestMemstoreLoadReturnsCopy(t *testing.T) {
	t.Parallel()

	store := memstore.New()
	ctx := context.Background()

	sess := session.New("tok-copy")
	sess.Set("n", 1)
	require.NoError(t, store.Save(ctx, sess, time.Minute))

	first, err := store.Load(ctx, "tok-copy")
	require.NoError(t, err)
	first.Set("n", 2)

	second, err := store.Load(ctx, "tok-copy")
	require.NoError(t, err)
	v, _ := second.Get("n")
	assert.Equal(t, 1, v, "unsaved mutations must not leak between loads")
}
