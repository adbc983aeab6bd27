package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/zivox/zivox/internal/domain"
)

type gormStatusRepository struct {
	db *gorm.DB
}

func NewStatusRepository(db *gorm.DB) StatusRepository {
	return &gormStatusRepository{db: db}
}

func (r *gormStatusRepository) Create(ctx context.Context, status *domain.Status) error {
	model := StatusDomainToModel(status)
	return r.db.WithContext(ctx).Create(model).Error
}

func (r *gormStatusRepository) GetActiveSince(ctx context.Context, since time.Time) ([]*domain.Status, error) {
	var models []StatusModel
	err := r.db.WithContext(ctx).
		Where("created_at >= ?", since).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	statuses := make([]*domain.Status, len(models))
	for i := range models {
		statuses[i] = StatusModelToDomain(&models[i])
	}
	return statuses, nil
}

func (r *gormStatusRepository) AddViewer(ctx context.Context, id, uid string) error {
	var model StatusModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return err
	}

	if model.ViewedBy.Contains(uid) {
		return nil
	}
	model.ViewedBy = model.ViewedBy.Add(uid)

	return r.db.WithContext(ctx).
		Model(&model).
		Select("viewed_by").
		Updates(&model).Error
}

func (r *gormStatusRepository) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("created_at < ?", before).
		Delete(&StatusModel{})
	return res.RowsAffected, res.Error
}
