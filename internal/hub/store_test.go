package hub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreGetOrCreate(t *testing.T) {
	store := NewStore(8)

	sess, created := store.GetOrCreate("m1")
	require.True(t, created)
	assert.Equal(t, "m1", sess.ID)
	assert.False(t, sess.StartedAt().IsZero())

	again, created := store.GetOrCreate("m1")
	assert.False(t, created)
	assert.Same(t, sess, again)
	assert.Equal(t, 1, store.Len())
}

func TestStoreDelete(t *testing.T) {
	store := NewStore(8)

	store.GetOrCreate("m1")
	store.Delete("m1")
	store.Delete("m1") // absent: no-op

	_, ok := store.Get("m1")
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len())
}

func TestSessionsAreIsolated(t *testing.T) {
	store := NewStore(8)

	a, _ := store.GetOrCreate("a")
	b, _ := store.GetOrCreate("b")

	a.mu.Lock()
	a.appendLocked(TranscriptEntry{Text: "only in a", UserID: "u1"})
	a.mu.Unlock()

	assert.Len(t, a.Transcript(), 1)
	assert.Empty(t, b.Transcript())
	assert.ElementsMatch(t, []string{"u1"}, a.Participants())
	assert.Empty(t, b.Participants())
}
