package nats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingCache struct {
	invalidated []string
	cleared     int
}

func (r *recordingCache) Invalidate(userID string) { r.invalidated = append(r.invalidated, userID) }
func (r *recordingCache) ClearCache() { r.cleared++ }

func TestProfileUpdateListener_Handle(t *testing.T) {
	cache := &recordingCache{}
	l := NewProfileUpdateListener(nil, cache, "persona-cache")

	assert.NoError(t, l.Handle([]byte(`{"id":"e1","user_id":"u1"}`)))
	assert.NoError(t, l.Handle([]byte(`{"id":"e2","user_id":"u2"}`)))
	assert.Equal(t, []string{"u1", "u2"}, cache.invalidated)
	assert.Zero(t, cache.cleared)

	assert.NoError(t, l.Handle([]byte(`{"id":"e3"}`)))
	assert.Equal(t, 1, cache.cleared)
}

func TestProfileUpdateListener_HandleMalformed(t *testing.T) {
	cache := &recordingCache{}
	l := NewProfileUpdateListener(nil, cache, "persona-cache")

	assert.Error(t, l.Handle([]byte(`{not json`)))
	assert.Empty(t, cache.invalidated)
	assert.Zero(t, cache.cleared)
}
