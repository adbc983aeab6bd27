package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/zivox/zivox/internal/domain"
)

type gormChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &gormChatRepository{db: db}
}

func (r *gormChatRepository) Create(ctx context.Context, chat *domain.Chat) error {
	model := ChatDomainToModel(chat)
	return r.db.WithContext(ctx).Create(model).Error
}

func (r *gormChatRepository) GetByID(ctx context.Context, id string) (*domain.Chat, error) {
	var model ChatModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return ChatModelToDomain(&model), nil
}

// GetByMember matches against the JSON-serialized members column. Uids are
// opaque identifiers (no quotes), so a quoted LIKE pattern is an exact
// element match.
func (r *gormChatRepository) GetByMember(ctx context.Context, uid string) ([]*domain.Chat, error) {
	pattern := "%" + `"` + escapeLike(uid) + `"` + "%"

	var models []ChatModel
	err := r.db.WithContext(ctx).
		Where(`members LIKE ? ESCAPE '\'`, pattern).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	chats := make([]*domain.Chat, 0, len(models))
	for i := range models {
		chat := ChatModelToDomain(&models[i])
		// LIKE can false-positive on uids that embed another uid; recheck.
		if chat.Members.Contains(uid) {
			chats = append(chats, chat)
		}
	}
	return chats, nil
}

func (r *gormChatRepository) UpdatePreview(ctx context.Context, id, lastMessage string, t time.Time) error {
	return r.db.WithContext(ctx).
		Model(&ChatModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_message":      lastMessage,
			"last_message_time": t,
		}).Error
}

func (r *gormChatRepository) SetMuted(ctx context.Context, id, uid string, muted bool) error {
	return r.updateSet(ctx, id, "muted_by", uid, muted, func(m *ChatModel) *domain.StringSet { return &m.MutedBy })
}

func (r *gormChatRepository) SetPinned(ctx context.Context, id, uid string, pinned bool) error {
	return r.updateSet(ctx, id, "pinned_by", uid, pinned, func(m *ChatModel) *domain.StringSet { return &m.PinnedBy })
}

// updateSet is a read-modify-write on one of the chat's uid-set columns. Like
// the rest of the store there is no row lock; concurrent toggles follow
// last-write-wins.
func (r *gormChatRepository) updateSet(ctx context.Context, id, column, uid string, present bool, field func(*ChatModel) *domain.StringSet) error {
	var model ChatModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return err
	}

	set := field(&model)
	if present {
		*set = set.Add(uid)
	} else {
		*set = set.Remove(uid)
	}

	// Write through the model so the json serializer runs; a raw column
	// Update would hand the driver an unencoded Go slice.
	return r.db.WithContext(ctx).
		Model(&model).
		Select(column).
		Updates(&model).Error
}

func (r *gormChatRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&ChatModel{}).Error
}

// escapeLike escapes LIKE special characters so user-supplied strings cannot
// widen the pattern.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}
