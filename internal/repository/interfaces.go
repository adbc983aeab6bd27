package repository

import (
	"context"
	"time"

	"github.com/zivox/zivox/internal/domain"
)

type ChatRepository interface {
	Create(ctx context.Context, chat *domain.Chat) error
	GetByID(ctx context.Context, id string) (*domain.Chat, error)
	GetByMember(ctx context.Context, uid string) ([]*domain.Chat, error)
	UpdatePreview(ctx context.Context, id, lastMessage string, t time.Time) error
	SetMuted(ctx context.Context, id, uid string, muted bool) error
	SetPinned(ctx context.Context, id, uid string, pinned bool) error
	Delete(ctx context.Context, id string) error
}

type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	GetByID(ctx context.Context, id string) (*domain.Message, error)
	// GetLatest returns up to limit messages ordered by timestamp descending.
	GetLatest(ctx context.Context, chatID string, limit int) ([]*domain.Message, error)
	// GetPageBefore returns up to limit messages strictly older than the
	// (before, beforeID) cursor, ordered descending. beforeID breaks timestamp
	// ties so equal-timestamp rows can neither repeat nor be skipped.
	GetPageBefore(ctx context.Context, chatID string, before time.Time, beforeID string, limit int) ([]*domain.Message, error)
	UpdateText(ctx context.Context, id, text string) error
	Tombstone(ctx context.Context, id string) error
	SetReaction(ctx context.Context, id, uid, emoji string) error
	AddSeenBy(ctx context.Context, id, uid string) error
	AddDeliveredTo(ctx context.Context, id, uid string) error
	Search(ctx context.Context, query string, limit int) ([]*domain.Message, error)
	DeleteByChat(ctx context.Context, chatID string) error
}

type UserRepository interface {
	Upsert(ctx context.Context, user *domain.User) error
	GetByUID(ctx context.Context, uid string) (*domain.User, error)
	Search(ctx context.Context, query string, limit int) ([]*domain.User, error)
	SetPresence(ctx context.Context, uid string, online bool, lastSeen time.Time) error
	UpdateSettings(ctx context.Context, uid string, visibility domain.LastSeenVisibility, onlineVisible bool) error
}

type StatusRepository interface {
	Create(ctx context.Context, status *domain.Status) error
	// GetActiveSince returns statuses created at or after since, newest first.
	GetActiveSince(ctx context.Context, since time.Time) ([]*domain.Status, error)
	AddViewer(ctx context.Context, id, uid string) error
	// PurgeExpired deletes statuses older than before. Nothing schedules this;
	// it exists for the seeder and manual housekeeping.
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}

type CallRepository interface {
	Create(ctx context.Context, call *domain.CallRecord) error
	GetByParticipant(ctx context.Context, uid string) ([]*domain.CallRecord, error)
	Delete(ctx context.Context, id string) error
}

type TypingRepository interface {
	Set(ctx context.Context, chatID, uid string, t time.Time) error
	Clear(ctx context.Context, chatID, uid string) error
	// Active returns uids with a typing row newer than since.
	Active(ctx context.Context, chatID string, since time.Time) ([]string, error)
}
