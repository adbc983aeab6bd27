package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zivox/zivox/internal/domain"
)

type gormMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &gormMessageRepository{db: db}
}

func (r *gormMessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	model := MessageDomainToModel(msg)
	// Duplicate delivery of the same id is a no-op (SQLite INSERT OR IGNORE).
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(model).Error
}

func (r *gormMessageRepository) GetByID(ctx context.Context, id string) (*domain.Message, error) {
	var model MessageModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return MessageModelToDomain(&model), nil
}

func (r *gormMessageRepository) GetLatest(ctx context.Context, chatID string, limit int) ([]*domain.Message, error) {
	var models []MessageModel
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("timestamp DESC, id DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return messageModelsToDomain(models), nil
}

func (r *gormMessageRepository) GetPageBefore(ctx context.Context, chatID string, before time.Time, beforeID string, limit int) ([]*domain.Message, error) {
	var models []MessageModel
	err := r.db.WithContext(ctx).
		Where("chat_id = ? AND (timestamp < ? OR (timestamp = ? AND id < ?))",
			chatID, before, before, beforeID).
		Order("timestamp DESC, id DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return messageModelsToDomain(models), nil
}

func (r *gormMessageRepository) UpdateText(ctx context.Context, id, text string) error {
	return r.db.WithContext(ctx).
		Model(&MessageModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"text":   text,
			"edited": true,
		}).Error
}

func (r *gormMessageRepository) Tombstone(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&MessageModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"deleted_for_everyone": true,
			"text":                 "",
			"media_url":            "",
		}).Error
}

func (r *gormMessageRepository) SetReaction(ctx context.Context, id, uid, emoji string) error {
	var model MessageModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return err
	}

	if model.Reactions == nil {
		model.Reactions = domain.ReactionMap{}
	}
	// Single slot per user, unconditionally overwritten.
	model.Reactions[uid] = emoji

	// Write through the model so the json serializer runs on the map.
	return r.db.WithContext(ctx).
		Model(&model).
		Select("reactions").
		Updates(&model).Error
}

func (r *gormMessageRepository) AddSeenBy(ctx context.Context, id, uid string) error {
	return r.addToSet(ctx, id, "seen_by", uid, func(m *MessageModel) *domain.StringSet { return &m.SeenBy })
}

func (r *gormMessageRepository) AddDeliveredTo(ctx context.Context, id, uid string) error {
	return r.addToSet(ctx, id, "delivered_to", uid, func(m *MessageModel) *domain.StringSet { return &m.DeliveredTo })
}

func (r *gormMessageRepository) addToSet(ctx context.Context, id, column, uid string, field func(*MessageModel) *domain.StringSet) error {
	var model MessageModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return err
	}

	set := field(&model)
	if set.Contains(uid) {
		return nil
	}
	*set = set.Add(uid)

	return r.db.WithContext(ctx).
		Model(&model).
		Select(column).
		Updates(&model).Error
}

func (r *gormMessageRepository) Search(ctx context.Context, query string, limit int) ([]*domain.Message, error) {
	likePattern := "%" + escapeLike(query) + "%"

	var models []MessageModel
	err := r.db.WithContext(ctx).
		Where(`text LIKE ? ESCAPE '\' AND deleted_for_everyone = ?`, likePattern, false).
		Order("timestamp DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return messageModelsToDomain(models), nil
}

func (r *gormMessageRepository) DeleteByChat(ctx context.Context, chatID string) error {
	return r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Delete(&MessageModel{}).Error
}

func messageModelsToDomain(models []MessageModel) []*domain.Message {
	messages := make([]*domain.Message, len(models))
	for i := range models {
		messages[i] = MessageModelToDomain(&models[i])
	}
	return messages
}
