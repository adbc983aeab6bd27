package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormTypingRepository struct {
	db *gorm.DB
}

func NewTypingRepository(db *gorm.DB) TypingRepository {
	return &gormTypingRepository{db: db}
}

func (r *gormTypingRepository) Set(ctx context.Context, chatID, uid string, t time.Time) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chat_id"}, {Name: "uid"}},
		UpdateAll: true,
	}).Create(&TypingModel{ChatID: chatID, UID: uid, UpdatedAt: t}).Error
}

func (r *gormTypingRepository) Clear(ctx context.Context, chatID, uid string) error {
	return r.db.WithContext(ctx).
		Where("chat_id = ? AND uid = ?", chatID, uid).
		Delete(&TypingModel{}).Error
}

func (r *gormTypingRepository) Active(ctx context.Context, chatID string, since time.Time) ([]string, error) {
	var models []TypingModel
	err := r.db.WithContext(ctx).
		Where("chat_id = ? AND updated_at >= ?", chatID, since).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	uids := make([]string, len(models))
	for i := range models {
		uids[i] = models[i].UID
	}
	return uids, nil
}
