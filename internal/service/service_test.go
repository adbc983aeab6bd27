package service

import (
	"context"
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

type svcEnv struct {
	users    *UserService
	statuses *StatusService
	calls    *CallService

	userRepo   repository.UserRepository
	statusRepo repository.StatusRepository
	bus        domain.EventBus
}

func newSvcEnv(t *testing.T) *svcEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(repository.AllModels()...))

	userRepo := repository.NewUserRepository(db)
	statusRepo := repository.NewStatusRepository(db)
	callRepo := repository.NewCallRepository(db)
	bus := domain.NewEventBus()

	return &svcEnv{
		users:      NewUserService(userRepo, bus, zerolog.Nop()),
		statuses:   NewStatusService(statusRepo, userRepo, bus, zerolog.Nop()),
		calls:      NewCallService(callRepo, userRepo, bus, zerolog.Nop()),
		userRepo:   userRepo,
		statusRepo: statusRepo,
		bus:        bus,
	}
}

func TestUserService_SignIn(t *testing.T) {
	env := newSvcEnv(t)
	ctx := context.Background()

	t.Run("first sign-in creates the profile", func(t *testing.T) {
		user, err := env.users.SignIn(ctx, "alice", "Alice Johnson", "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, "Alice Johnson", user.Name)
		assert.True(t, user.OnlineStatus)
		assert.Equal(t, domain.LastSeenEveryone, user.LastSeenVisibility)
		assert.True(t, user.OnlineStatusVisible)

		stored, err := env.userRepo.GetByUID(ctx, "alice")
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, "alice@example.com", stored.Email)
	})

	t.Run("empty name gets a fallback", func(t *testing.T) {
		user, err := env.users.SignIn(ctx, "anon", "", "")
		require.NoError(t, err)
		assert.Equal(t, "User", user.Name)
	})

	t.Run("repeat sign-in refreshes presence without clobbering profile", func(t *testing.T) {
		require.NoError(t, env.users.SignOut(ctx, "alice"))
		stored, err := env.userRepo.GetByUID(ctx, "alice")
		require.NoError(t, err)
		assert.False(t, stored.OnlineStatus)

		user, err := env.users.SignIn(ctx, "alice", "Somebody Else", "other@example.com")
		require.NoError(t, err)
		assert.True(t, user.OnlineStatus)
		assert.Equal(t, "Alice Johnson", user.Name)
	})
}

func TestUserService_UpdateProfile(t *testing.T) {
	env := newSvcEnv(t)
	ctx := context.Background()

	_, err := env.users.SignIn(ctx, "bob", "Bob", "")
	require.NoError(t, err)

	user, err := env.users.UpdateProfile(ctx, "bob", "Robert", "hello there", nil)
	require.NoError(t, err)
	assert.Equal(t, "Robert", user.Name)
	assert.Equal(t, "hello there", user.Bio)

	// Empty name keeps the stored one, bio is always rewritten
	user, err = env.users.UpdateProfile(ctx, "bob", "", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "Robert", user.Name)
	assert.Empty(t, user.Bio)

	_, err = env.users.UpdateProfile(ctx, "nobody", "X", "", nil)
	require.Error(t, err)
}

func TestUserService_UpdateSettings(t *testing.T) {
	env := newSvcEnv(t)
	ctx := context.Background()

	_, err := env.users.SignIn(ctx, "carol", "Carol", "")
	require.NoError(t, err)

	require.NoError(t, env.users.UpdateSettings(ctx, "carol", domain.LastSeenNobody, false))

	stored, err := env.userRepo.GetByUID(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, domain.LastSeenNobody, stored.LastSeenVisibility)
	assert.False(t, stored.OnlineStatusVisible)

	err = env.users.UpdateSettings(ctx, "carol", "sometimes", true)
	require.Error(t, err)
}

func TestStatusService_Post(t *testing.T) {
	env := newSvcEnv(t)
	ctx := context.Background()

	_, err := env.users.SignIn(ctx, "alice", "Alice", "")
	require.NoError(t, err)

	t.Run("needs text or image", func(t *testing.T) {
		_, err := env.statuses.Post(ctx, "alice", StatusDraft{Text: "   "})
		require.Error(t, err)
	})

	t.Run("snapshots the owner display attributes", func(t *testing.T) {
		status, err := env.statuses.Post(ctx, "alice", StatusDraft{
			Text:       "out hiking",
			Background: "#0b6e4f",
			Font:       "serif",
		})
		require.NoError(t, err)
		assert.Equal(t, "Alice", status.UserName)
		assert.Equal(t, "out hiking", status.Text)
		assert.Empty(t, status.ViewedBy)
		assert.False(t, status.CreatedAt.IsZero())
	})
}

func TestStatusService_ActiveWindow(t *testing.T) {
	env := newSvcEnv(t)
	ctx := context.Background()

	stale := &domain.Status{
		ID:        "old",
		UID:       "alice",
		Text:      "yesterday's news",
		ViewedBy:  domain.StringSet{},
		CreatedAt: time.Now().UTC().Add(-25 * time.Hour),
	}
	require.NoError(t, env.statusRepo.Create(ctx, stale))

	fresh, err := env.statuses.Post(ctx, "alice", StatusDraft{Text: "right now"})
	require.NoError(t, err)

	active, err := env.statuses.Active(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, fresh.ID, active[0].ID)
}

func TestStatusService_ActiveGrouped(t *testing.T) {
	env := newSvcEnv(t)
	ctx := context.Background()

	_, err := env.statuses.Post(ctx, "alice", StatusDraft{Text: "a1"})
	require.NoError(t, err)
	_, err = env.statuses.Post(ctx, "bob", StatusDraft{Text: "b1"})
	require.NoError(t, err)
	_, err = env.statuses.Post(ctx, "bob", StatusDraft{Text: "b2"})
	require.NoError(t, err)

	mine, others, err := env.statuses.ActiveGrouped(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "a1", mine[0].Text)
	require.Len(t, others, 1)
	assert.Equal(t, "bob", others[0].UID)
	assert.Len(t, others[0].Statuses, 2)
}

func TestStatusService_MarkViewed(t *testing.T) {
	env := newSvcEnv(t)
	ctx := context.Background()

	status, err := env.statuses.Post(ctx, "alice", StatusDraft{Text: "look"})
	require.NoError(t, err)

	require.NoError(t, env.statuses.MarkViewed(ctx, status.ID, "bob"))
	require.NoError(t, env.statuses.MarkViewed(ctx, status.ID, "bob"))

	active, err := env.statuses.Active(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, domain.StringSet{"bob"}, active[0].ViewedBy)
}

func TestStatusService_Subscribe(t *testing.T) {
	env := newSvcEnv(t)
	ctx := context.Background()

	snapshots := make(chan []*domain.Status, 16)
	stop, err := env.statuses.Subscribe(ctx, func(statuses []*domain.Status) {
		snapshots <- statuses
	})
	require.NoError(t, err)
	defer stop()

	select {
	case initial := <-snapshots:
		assert.Empty(t, initial)
	case <-time.After(2 * time.Second):
		t.Fatal("no initial snapshot")
	}

	posted, err := env.statuses.Post(ctx, "alice", StatusDraft{Text: "fresh"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		select {
		case statuses := <-snapshots:
			return len(statuses) == 1 && statuses[0].ID == posted.ID
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)

	// Stop is idempotent and leaves the bus usable
	stop()
	stop()
}

func TestCallService_RecordAndHistory(t *testing.T) {
	env := newSvcEnv(t)
	ctx := context.Background()

	_, err := env.users.SignIn(ctx, "alice", "Alice", "")
	require.NoError(t, err)
	_, err = env.users.SignIn(ctx, "bob", "Bob", "")
	require.NoError(t, err)

	call, err := env.calls.Record(ctx, "alice", "bob", domain.CallTypeVideo, domain.CallStatusOutgoing, 125)
	require.NoError(t, err)
	assert.Equal(t, "Alice", call.CallerName)
	assert.Equal(t, "Bob", call.ReceiverName)
	assert.Equal(t, 125, call.Duration)

	// Both participants see the record
	for _, uid := range []string{"alice", "bob"} {
		history, err := env.calls.History(ctx, uid)
		require.NoError(t, err)
		require.Len(t, history, 1, "history for %s", uid)
		assert.Equal(t, call.ID, history[0].ID)
	}

	// Names are snapshots: a later profile rename does not rewrite history
	_, err = env.users.UpdateProfile(ctx, "alice", "Alicia", "", nil)
	require.NoError(t, err)

	history, err := env.calls.History(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Alice", history[0].CallerName)
}

func TestCallService_Delete(t *testing.T) {
	env := newSvcEnv(t)
	ctx := context.Background()

	call, err := env.calls.Record(ctx, "alice", "bob", domain.CallTypeVoice, domain.CallStatusMissed, 0)
	require.NoError(t, err)

	require.NoError(t, env.calls.Delete(ctx, call.ID))

	history, err := env.calls.History(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestCallService_Subscribe(t *testing.T) {
	env := newSvcEnv(t)
	ctx := context.Background()

	snapshots := make(chan []*domain.CallRecord, 16)
	stop, err := env.calls.Subscribe(ctx, "alice", func(calls []*domain.CallRecord) {
		snapshots <- calls
	})
	require.NoError(t, err)
	defer stop()

	select {
	case initial := <-snapshots:
		assert.Empty(t, initial)
	case <-time.After(2 * time.Second):
		t.Fatal("no initial snapshot")
	}

	call, err := env.calls.Record(ctx, "alice", "bob", domain.CallTypeVoice, domain.CallStatusIncoming, 30)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		select {
		case calls := <-snapshots:
			return len(calls) == 1 && calls[0].ID == call.ID
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}
