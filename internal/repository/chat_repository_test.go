package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zivox/zivox/internal/domain"
)

func TestChatRepository_CreateAndGet(t *testing.T) {
	repo := NewChatRepository(setupDB(t))
	ctx := context.Background()
	now := time.Now().Truncate(time.Millisecond)

	chat := domain.NewPrivateChat("chat-1", "alice", "bob", now)
	require.NoError(t, repo.Create(ctx, chat))

	got, err := repo.GetByID(ctx, "chat-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.ChatTypePrivate, got.Type)
	assert.True(t, got.Members.Contains("alice"))
	assert.True(t, got.Members.Contains("bob"))
	assert.Empty(t, got.MutedBy)
	assert.Empty(t, got.PinnedBy)
}

func TestChatRepository_GetByID_Missing(t *testing.T) {
	repo := NewChatRepository(setupDB(t))

	got, err := repo.GetByID(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestChatRepository_GetByMember(t *testing.T) {
	repo := NewChatRepository(setupDB(t))
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.Create(ctx, domain.NewPrivateChat("c1", "alice", "bob", now)))
	require.NoError(t, repo.Create(ctx, domain.NewPrivateChat("c2", "alice", "carol", now)))
	require.NoError(t, repo.Create(ctx, domain.NewPrivateChat("c3", "bob", "carol", now)))

	chats, err := repo.GetByMember(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, chats, 2)

	chats, err = repo.GetByMember(ctx, "dave")
	require.NoError(t, err)
	assert.Empty(t, chats)
}

func TestChatRepository_GetByMember_SubstringUID(t *testing.T) {
	// "bob" is a substring of "bobby"; the JSON LIKE must not confuse them.
	repo := NewChatRepository(setupDB(t))
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.Create(ctx, domain.NewPrivateChat("c1", "bobby", "carol", now)))

	chats, err := repo.GetByMember(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, chats)

	chats, err = repo.GetByMember(ctx, "bobby")
	require.NoError(t, err)
	assert.Len(t, chats, 1)
}

func TestChatRepository_UpdatePreview(t *testing.T) {
	repo := NewChatRepository(setupDB(t))
	ctx := context.Background()
	now := time.Now().Truncate(time.Millisecond)

	require.NoError(t, repo.Create(ctx, domain.NewPrivateChat("c1", "alice", "bob", now)))
	require.NoError(t, repo.UpdatePreview(ctx, "c1", "hello there", now))

	got, err := repo.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "hello there", got.LastMessage)
	assert.WithinDuration(t, now, got.LastMessageTime, time.Millisecond)
}

func TestChatRepository_MuteAndPin(t *testing.T) {
	repo := NewChatRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, domain.NewPrivateChat("c1", "alice", "bob", time.Now())))

	require.NoError(t, repo.SetMuted(ctx, "c1", "alice", true))
	require.NoError(t, repo.SetPinned(ctx, "c1", "bob", true))

	got, err := repo.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, got.IsMutedBy("alice"))
	assert.False(t, got.IsMutedBy("bob"))
	assert.True(t, got.IsPinnedBy("bob"))

	// Toggling twice is idempotent
	require.NoError(t, repo.SetMuted(ctx, "c1", "alice", true))
	got, err = repo.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, domain.StringSet{"alice"}, got.MutedBy)

	require.NoError(t, repo.SetMuted(ctx, "c1", "alice", false))
	got, err = repo.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.False(t, got.IsMutedBy("alice"))
}

func TestChatRepository_Delete(t *testing.T) {
	repo := NewChatRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, domain.NewPrivateChat("c1", "alice", "bob", time.Now())))
	require.NoError(t, repo.Delete(ctx, "c1"))

	got, err := repo.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Nil(t, got)
}
