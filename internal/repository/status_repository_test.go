package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zivox/zivox/internal/domain"
)

func makeStatus(id, uid string, createdAt time.Time) *domain.Status {
	return &domain.Status{
		ID:        id,
		UID:       uid,
		UserName:  uid,
		Text:      "status " + id,
		ViewedBy:  domain.StringSet{},
		CreatedAt: createdAt,
	}
}

func TestStatusRepository_GetActiveSince(t *testing.T) {
	repo := NewStatusRepository(setupDB(t))
	ctx := context.Background()
	now := time.Now().Truncate(time.Millisecond)

	// One inside the window, one on the boundary, one expired
	require.NoError(t, repo.Create(ctx, makeStatus("s1", "alice", now.Add(-time.Hour))))
	require.NoError(t, repo.Create(ctx, makeStatus("s2", "bob", now.Add(-domain.StatusTTL))))
	require.NoError(t, repo.Create(ctx, makeStatus("s3", "carol", now.Add(-domain.StatusTTL-time.Minute))))

	got, err := repo.GetActiveSince(ctx, now.Add(-domain.StatusTTL))
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Newest first
	assert.Equal(t, "s1", got[0].ID)
	assert.Equal(t, "s2", got[1].ID)
}

func TestStatusRepository_AddViewer(t *testing.T) {
	repo := NewStatusRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, makeStatus("s1", "alice", time.Now())))

	require.NoError(t, repo.AddViewer(ctx, "s1", "bob"))
	require.NoError(t, repo.AddViewer(ctx, "s1", "bob"))
	require.NoError(t, repo.AddViewer(ctx, "s1", "carol"))

	got, err := repo.GetActiveSince(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.StringSet{"bob", "carol"}, got[0].ViewedBy)
}

func TestStatusRepository_PurgeExpired(t *testing.T) {
	repo := NewStatusRepository(setupDB(t))
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.Create(ctx, makeStatus("fresh", "alice", now.Add(-time.Hour))))
	require.NoError(t, repo.Create(ctx, makeStatus("old1", "bob", now.Add(-48*time.Hour))))
	require.NoError(t, repo.Create(ctx, makeStatus("old2", "carol", now.Add(-30*time.Hour))))

	purged, err := repo.PurgeExpired(ctx, now.Add(-domain.StatusTTL))
	require.NoError(t, err)
	assert.Equal(t, int64(2), purged)

	got, err := repo.GetActiveSince(ctx, now.Add(-72*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "fresh", got[0].ID)
}
