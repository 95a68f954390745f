package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irgomallis/cybercommand-missao-teclado/go-server/internal/game"
)

func TestMemoryStoreSaveGet(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	s := game.New()
	require.NoError(t, st.Save(ctx, s))

	got, err := st.Get(ctx, s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)
}

func TestMemoryStoreGetMissing(t *testing.T) {
	st := NewMemoryStore()

	_, err := st.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreOverwrite(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	s := game.New()
	require.NoError(t, st.Save(ctx, s))
	require.NoError(t, st.Save(ctx, s)) // idempotent

	got, err := st.Get(ctx, s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)
}
