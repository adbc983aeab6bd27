package store

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/zivox/zivox/internal/domain"
	"github.com/zivox/zivox/internal/repository"
)

const waitFor = 2 * time.Second
const tick = 10 * time.Millisecond

type testEnv struct {
	store  *ChatStore
	chats  repository.ChatRepository
	msgs   repository.MessageRepository
	users  repository.UserRepository
	typing repository.TypingRepository
	bus    domain.EventBus
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(repository.AllModels()...))

	env := &testEnv{
		chats:  repository.NewChatRepository(db),
		msgs:   repository.NewMessageRepository(db),
		users:  repository.NewUserRepository(db),
		typing: repository.NewTypingRepository(db),
		bus:    domain.NewEventBus(),
	}
	env.store = New(env.chats, env.msgs, env.users, env.typing, env.bus, zerolog.Nop())
	t.Cleanup(env.store.Cleanup)
	return env
}

func (e *testEnv) seedChat(t *testing.T, id, memberA, memberB string) *domain.Chat {
	t.Helper()
	chat := domain.NewPrivateChat(id, memberA, memberB, time.Now())
	require.NoError(t, e.chats.Create(context.Background(), chat))
	return chat
}

func (e *testEnv) seedMessages(t *testing.T, chatID string, n int, base time.Time) {
	t.Helper()
	for i := 0; i < n; i++ {
		msg := domain.NewTextMessage(
			fmt.Sprintf("m%03d", i), chatID, "alice",
			fmt.Sprintf("message %d", i),
			base.Add(time.Duration(i)*time.Second),
		)
		require.NoError(t, e.msgs.Create(context.Background(), msg))
	}
}

func messageIDs(msgs []*domain.Message) []string {
	ids := make([]string, len(msgs))
	for i, m := range msgs {
		ids[i] = m.ID
	}
	return ids
}

func assertNoDuplicates(t *testing.T, msgs []*domain.Message) {
	t.Helper()
	seen := map[string]bool{}
	for _, m := range msgs {
		assert.False(t, seen[m.ID], "message %s appears twice", m.ID)
		seen[m.ID] = true
	}
}

func TestSendMessage_EmptyTextDropped(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	msg, err := env.store.SendMessage(ctx, "c1", "alice", "   \n\t ")
	require.NoError(t, err)
	assert.Nil(t, msg)

	stored, err := env.msgs.GetLatest(ctx, "c1", 10)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestSendMessage_PersistsAndUpdatesPreview(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedChat(t, "c1", "alice", "bob")

	msg, err := env.store.SendMessage(ctx, "c1", "alice", "  hello bob  ")
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, "hello bob", msg.Text)
	assert.Equal(t, domain.StringSet{"alice"}, msg.SeenBy)

	stored, err := env.msgs.GetByID(ctx, msg.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)

	chat, err := env.chats.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "hello bob", chat.LastMessage)
	assert.False(t, chat.LastMessageTime.IsZero())
}

func TestSendMediaMessage_ImagePreviewLabel(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedChat(t, "c1", "alice", "bob")

	img := image.NewRGBA(image.Rect(0, 0, 40, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, color.RGBA{200, 100, 50, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	msg, err := env.store.SendMediaMessage(ctx, "c1", "alice", buf.Bytes(), domain.MediaTypeImage)
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, domain.MediaTypeImage, msg.MediaType)
	assert.Contains(t, msg.MediaURL, "data:image/jpeg;base64,")
	assert.Empty(t, msg.Text)

	chat, err := env.chats.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "📷 Photo", chat.LastMessage)
}

func TestSendMediaMessage_OversizedVideoRejected(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.store.SendMediaMessage(context.Background(), "c1", "alice", make([]byte, 4*1024*1024), domain.MediaTypeVideo)
	require.Error(t, err)
}

func TestStartChat_ReusesExistingPair(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	id1, err := env.store.StartChat(ctx, "alice", "bob")
	require.NoError(t, err)
	require.NotEmpty(t, id1)

	// Same pair from either side resolves to the same chat
	id2, err := env.store.StartChat(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	id3, err := env.store.StartChat(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.Equal(t, id1, id3)

	// A different counterpart makes a new chat
	id4, err := env.store.StartChat(ctx, "alice", "carol")
	require.NoError(t, err)
	assert.NotEqual(t, id1, id4)
}

func TestStartGroupChat(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	id, err := env.store.StartGroupChat(ctx, "alice", []string{"bob", "carol", "bob"})
	require.NoError(t, err)

	chat, err := env.chats.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, chat)
	assert.Equal(t, domain.ChatTypeGroup, chat.Type)
	assert.ElementsMatch(t, []string{"alice", "bob", "carol"}, []string(chat.Members))

	// Every member sees the group; no counterpart profile on group chats
	for _, uid := range []string{"alice", "bob", "carol"} {
		chats, err := env.store.GetChats(ctx, uid)
		require.NoError(t, err)
		require.Len(t, chats, 1, "chat list for %s", uid)
		assert.Nil(t, chats[0].OtherUser)
	}

	// Unlike private chats, each call mints a fresh group
	id2, err := env.store.StartGroupChat(ctx, "alice", []string{"bob", "carol"})
	require.NoError(t, err)
	assert.NotEqual(t, id, id2)

	_, err = env.store.StartGroupChat(ctx, "alice", []string{"alice"})
	require.Error(t, err)
}

func TestStartChat_ConcurrentCalls(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	start := make(chan struct{})
	ids := make([]string, 2)
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			ids[i], errs[i] = env.store.StartChat(ctx, "alice", "bob")
		}(i)
	}
	close(start)
	wg.Wait()

	// Lookup-before-create without a uniqueness constraint: both calls must
	// succeed, but when neither sees the other's insert they mint distinct
	// chats. Either id must resolve to a real chat for the pair.
	for i := 0; i < 2; i++ {
		require.NoError(t, errs[i])
		chat, err := env.chats.GetByID(ctx, ids[i])
		require.NoError(t, err)
		require.NotNil(t, chat)
		assert.True(t, chat.Members.Contains("bob"))
	}

	chats, err := env.chats.GetByMember(ctx, "alice")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(chats), 1)
	assert.LessOrEqual(t, len(chats), 2)
}

func TestSubscribeChats_InitialSnapshotAndDecoration(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.users.Upsert(ctx, &domain.User{UID: "bob", Name: "Bob Smith"}))
	env.seedChat(t, "c1", "me", "bob")
	env.seedChat(t, "c2", "me", "ghost")
	env.seedChat(t, "other", "alice", "bob")

	require.NoError(t, env.store.SubscribeChats(ctx, "me"))
	assert.False(t, env.store.LoadingChats())

	chats := env.store.Chats()
	require.Len(t, chats, 2)

	byID := map[string]*domain.Chat{}
	for _, c := range chats {
		byID[c.ID] = c
	}
	require.NotNil(t, byID["c1"].OtherUser)
	assert.Equal(t, "Bob Smith", byID["c1"].OtherUser.Name)
	// Missing profile falls back to a placeholder instead of dropping the chat
	require.NotNil(t, byID["c2"].OtherUser)
	assert.Equal(t, "User", byID["c2"].OtherUser.Name)
}

func TestSubscribeChats_LiveUpdateAndOrdering(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.seedChat(t, "c1", "me", "bob")
	env.seedChat(t, "c2", "me", "carol")

	require.NoError(t, env.store.SubscribeChats(ctx, "me"))

	_, err := env.store.SendMessage(ctx, "c2", "me", "to carol")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		chats := env.store.Chats()
		return len(chats) == 2 && chats[0].ID == "c2" && chats[0].LastMessage == "to carol"
	}, waitFor, tick, "most recently active chat should rise to the top")

	_, err = env.store.SendMessage(ctx, "c1", "me", "to bob")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		chats := env.store.Chats()
		return len(chats) == 2 && chats[0].ID == "c1"
	}, waitFor, tick)
}

func TestSelectChat_TailWindow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	chat := env.seedChat(t, "c1", "me", "bob")
	base := time.Now().Add(-time.Hour).Truncate(time.Millisecond)

	env.seedMessages(t, "c1", 35, base)

	require.NoError(t, env.store.SelectChat(ctx, chat))

	msgs := env.store.Messages()
	require.Len(t, msgs, PageSize)
	// Oldest first within the window
	assert.Equal(t, "m005", msgs[0].ID)
	assert.Equal(t, "m034", msgs[len(msgs)-1].ID)
	assert.True(t, env.store.HasMore())
	assert.False(t, env.store.LoadingMessages())
}

func TestSelectChat_ShortChatHasNoMore(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	chat := env.seedChat(t, "c1", "me", "bob")

	env.seedMessages(t, "c1", 5, time.Now().Add(-time.Hour))

	require.NoError(t, env.store.SelectChat(ctx, chat))

	assert.Len(t, env.store.Messages(), 5)
	assert.False(t, env.store.HasMore())

	// LoadMore is a no-op without more history
	require.NoError(t, env.store.LoadMore(ctx))
	assert.Len(t, env.store.Messages(), 5)
}

func TestLoadMore_PrependsWithoutDuplicates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	chat := env.seedChat(t, "c1", "me", "bob")
	base := time.Now().Add(-time.Hour).Truncate(time.Millisecond)

	env.seedMessages(t, "c1", 35, base)
	require.NoError(t, env.store.SelectChat(ctx, chat))

	require.NoError(t, env.store.LoadMore(ctx))

	msgs := env.store.Messages()
	require.Len(t, msgs, 35)
	assertNoDuplicates(t, msgs)
	assert.Equal(t, "m000", msgs[0].ID)
	assert.Equal(t, "m034", msgs[len(msgs)-1].ID)
	// The closing page was short, so history is exhausted
	assert.False(t, env.store.HasMore())

	// Further calls change nothing
	require.NoError(t, env.store.LoadMore(ctx))
	assert.Len(t, env.store.Messages(), 35)
}

func TestTailRefresh_PreservesPagedHistory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	chat := env.seedChat(t, "c1", "me", "bob")
	base := time.Now().Add(-time.Hour).Truncate(time.Millisecond)

	env.seedMessages(t, "c1", 35, base)
	require.NoError(t, env.store.SelectChat(ctx, chat))
	require.NoError(t, env.store.LoadMore(ctx))
	require.Len(t, env.store.Messages(), 35)

	sent, err := env.store.SendMessage(ctx, "c1", "me", "fresh arrival")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		msgs := env.store.Messages()
		return len(msgs) == 36 && msgs[len(msgs)-1].ID == sent.ID
	}, waitFor, tick, "new message should land at the end without evicting paged history")

	msgs := env.store.Messages()
	assertNoDuplicates(t, msgs)
	assert.Equal(t, "m000", msgs[0].ID)
}

func TestReselect_ResetsPagination(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	chat := env.seedChat(t, "c1", "me", "bob")
	base := time.Now().Add(-time.Hour).Truncate(time.Millisecond)

	env.seedMessages(t, "c1", 35, base)
	require.NoError(t, env.store.SelectChat(ctx, chat))
	require.NoError(t, env.store.LoadMore(ctx))
	require.Len(t, env.store.Messages(), 35)

	// Re-selecting drops the paged history and reseeds the tail window
	require.NoError(t, env.store.SelectChat(ctx, chat))
	assert.Len(t, env.store.Messages(), PageSize)
	assert.True(t, env.store.HasMore())

	// Selecting nil deselects
	require.NoError(t, env.store.SelectChat(ctx, nil))
	assert.Empty(t, env.store.Messages())
	assert.Nil(t, env.store.ActiveChat())
}

func TestDeleteMessage_TombstoneKeepsPosition(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	chat := env.seedChat(t, "c1", "me", "bob")
	base := time.Now().Add(-time.Hour).Truncate(time.Millisecond)

	env.seedMessages(t, "c1", 5, base)
	require.NoError(t, env.store.SelectChat(ctx, chat))

	before := messageIDs(env.store.Messages())
	require.NoError(t, env.store.DeleteMessage(ctx, "c1", "m002", true))

	require.Eventually(t, func() bool {
		for _, m := range env.store.Messages() {
			if m.ID == "m002" {
				return m.DeletedForEveryone && m.Text == ""
			}
		}
		return false
	}, waitFor, tick)

	// Same ids in the same order
	assert.Equal(t, before, messageIDs(env.store.Messages()))
}

func TestDeleteMessage_ForMeWritesNothing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.seedMessages(t, "c1", 1, time.Now())
	require.NoError(t, env.store.DeleteMessage(ctx, "c1", "m000", false))

	got, err := env.msgs.GetByID(ctx, "m000")
	require.NoError(t, err)
	assert.False(t, got.DeletedForEveryone)
}

func TestEditMessage_Live(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	chat := env.seedChat(t, "c1", "me", "bob")

	env.seedMessages(t, "c1", 3, time.Now().Add(-time.Hour))
	require.NoError(t, env.store.SelectChat(ctx, chat))

	require.NoError(t, env.store.EditMessage(ctx, "c1", "m001", "amended"))

	require.Eventually(t, func() bool {
		for _, m := range env.store.Messages() {
			if m.ID == "m001" {
				return m.Edited && m.Text == "amended"
			}
		}
		return false
	}, waitFor, tick)
}

func TestAddReaction_Live(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	chat := env.seedChat(t, "c1", "me", "bob")

	env.seedMessages(t, "c1", 3, time.Now().Add(-time.Hour))
	require.NoError(t, env.store.SelectChat(ctx, chat))

	require.NoError(t, env.store.AddReaction(ctx, "c1", "m001", "bob", "👍"))
	require.NoError(t, env.store.AddReaction(ctx, "c1", "m001", "bob", "❤️"))

	require.Eventually(t, func() bool {
		for _, m := range env.store.Messages() {
			if m.ID == "m001" {
				return m.Reactions["bob"] == "❤️"
			}
		}
		return false
	}, waitFor, tick)
}

func TestMarkSeen_Live(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	chat := env.seedChat(t, "c1", "me", "bob")

	env.seedMessages(t, "c1", 3, time.Now().Add(-time.Hour))
	require.NoError(t, env.store.SelectChat(ctx, chat))

	env.store.MarkSeen(ctx, "c1", []string{"m000", "m001"}, "me")

	require.Eventually(t, func() bool {
		seen := 0
		for _, m := range env.store.Messages() {
			if m.SeenBy.Contains("me") {
				seen++
			}
		}
		return seen == 2
	}, waitFor, tick)
}

func TestClearChat_EmptiesAndResetsPreview(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	chat := env.seedChat(t, "c1", "me", "bob")
	base := time.Now().Add(-time.Hour).Truncate(time.Millisecond)

	env.seedMessages(t, "c1", 35, base)
	require.NoError(t, env.store.SelectChat(ctx, chat))
	require.NoError(t, env.store.LoadMore(ctx))

	require.NoError(t, env.store.ClearChat(ctx, "c1"))

	require.Eventually(t, func() bool {
		return len(env.store.Messages()) == 0
	}, waitFor, tick)

	stored, err := env.msgs.GetLatest(ctx, "c1", 10)
	require.NoError(t, err)
	assert.Empty(t, stored)

	got, err := env.chats.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, got.LastMessage)

	// Sending into the cleared chat starts over cleanly
	sent, err := env.store.SendMessage(ctx, "c1", "me", "starting fresh")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		msgs := env.store.Messages()
		return len(msgs) == 1 && msgs[0].ID == sent.ID
	}, waitFor, tick)
}

func TestMuteAndPinChat(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedChat(t, "c1", "me", "bob")

	env.store.MuteChat(ctx, "c1", "me", true)
	env.store.PinChat(ctx, "c1", "me", true)

	got, err := env.chats.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, got.IsMutedBy("me"))
	assert.True(t, got.IsPinnedBy("me"))

	env.store.MuteChat(ctx, "c1", "me", false)
	got, err = env.chats.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.False(t, got.IsMutedBy("me"))
}

func TestTypingUsers_ExcludesSessionAndStale(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedChat(t, "c1", "me", "bob")

	require.NoError(t, env.store.SubscribeChats(ctx, "me"))

	env.store.SetTyping(ctx, "c1", "me", true)
	env.store.SetTyping(ctx, "c1", "bob", true)
	// Stale row outside the freshness window
	require.NoError(t, env.typing.Set(ctx, "c1", "carol", time.Now().Add(-time.Minute)))

	assert.Equal(t, []string{"bob"}, env.store.TypingUsers(ctx, "c1"))

	env.store.SetTyping(ctx, "c1", "bob", false)
	assert.Empty(t, env.store.TypingUsers(ctx, "c1"))
}

func TestGetChats_OneShot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.users.Upsert(ctx, &domain.User{UID: "bob", Name: "Bob"}))
	env.seedChat(t, "c1", "me", "bob")

	require.NoError(t, env.chats.UpdatePreview(ctx, "c1", "latest", time.Now()))

	chats, err := env.store.GetChats(ctx, "me")
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, "latest", chats[0].LastMessage)
	require.NotNil(t, chats[0].OtherUser)
	assert.Equal(t, "Bob", chats[0].OtherUser.Name)
}

func TestGetMessages_OneShotOldestFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour).Truncate(time.Millisecond)

	env.seedMessages(t, "c1", 10, base)

	msgs, err := env.store.GetMessages(ctx, "c1", 5)
	require.NoError(t, err)
	require.Len(t, msgs, 5)
	assert.Equal(t, "m005", msgs[0].ID)
	assert.Equal(t, "m009", msgs[4].ID)
}

func TestOnMessagesCallback(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	chat := env.seedChat(t, "c1", "me", "bob")

	snapshots := make(chan int, 16)
	env.store.OnMessagesChanged(func(msgs []*domain.Message) {
		snapshots <- len(msgs)
	})

	env.seedMessages(t, "c1", 3, time.Now().Add(-time.Hour))
	require.NoError(t, env.store.SelectChat(ctx, chat))

	select {
	case n := <-snapshots:
		assert.Equal(t, 3, n)
	case <-time.After(waitFor):
		t.Fatal("no snapshot delivered on select")
	}
}
