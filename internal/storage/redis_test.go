package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/marcelohs402015/app-email-attendant-sub001/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisRepository(t *testing.T) (*RedisSessionRepository, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := NewRedisClient(RedisConfig{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisSessionRepository(client, "test:"), mr
}

func TestRedisSessionRepository_PutGet(t *testing.T) {
	ctx := context.Background()
	repo, mr := newTestRedisRepository(t)
	require.NoError(t, repo.Ping(ctx))

	now := time.Now().UTC().Truncate(time.Millisecond)
	session := newSession("abc", now)
	session.Messages = append(session.Messages, models.ChatMessage{
		ID:        "m1",
		SessionID: "abc",
		Role:      models.RoleUser,
		Content:   "olá",
		Timestamp: now,
	})
	require.NoError(t, repo.Put(ctx, session))

	assert.True(t, mr.Exists("test:session:abc"))

	got, err := repo.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)
	assert.Equal(t, session.Title, got.Title)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "olá", got.Messages[0].Content)
	assert.True(t, now.Equal(got.UpdatedAt))
}

func TestRedisSessionRepository_GetMissing(t *testing.T) {
	repo, _ := newTestRedisRepository(t)

	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisSessionRepository_ListByRecency(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRedisRepository(t)
	base := time.Now()

	empty, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, repo.Put(ctx, newSession("a", base.Add(-time.Hour))))
	require.NoError(t, repo.Put(ctx, newSession("b", base)))
	require.NoError(t, repo.Put(ctx, newSession("c", base.Add(-2*time.Hour))))

	// Touching "c" moves it to the front.
	c := newSession("c", base.Add(time.Hour))
	require.NoError(t, repo.Put(ctx, c))

	sessions, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{sessions[0].ID, sessions[1].ID, sessions[2].ID})
}
