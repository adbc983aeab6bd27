package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zivox/zivox/internal/domain"
)

type gormUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

func (r *gormUserRepository) Upsert(ctx context.Context, user *domain.User) error {
	model := UserDomainToModel(user)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "uid"}},
		UpdateAll: true,
	}).Create(model).Error
}

func (r *gormUserRepository) GetByUID(ctx context.Context, uid string) (*domain.User, error) {
	var model UserModel
	if err := r.db.WithContext(ctx).First(&model, "uid = ?", uid).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return UserModelToDomain(&model), nil
}

func (r *gormUserRepository) Search(ctx context.Context, query string, limit int) ([]*domain.User, error) {
	likePattern := "%" + escapeLike(query) + "%"

	var models []UserModel
	err := r.db.WithContext(ctx).
		Where(`name LIKE ? ESCAPE '\' OR email LIKE ? ESCAPE '\'`, likePattern, likePattern).
		Order("name ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	users := make([]*domain.User, len(models))
	for i := range models {
		users[i] = UserModelToDomain(&models[i])
	}
	return users, nil
}

func (r *gormUserRepository) SetPresence(ctx context.Context, uid string, online bool, lastSeen time.Time) error {
	return r.db.WithContext(ctx).
		Model(&UserModel{}).
		Where("uid = ?", uid).
		Updates(map[string]interface{}{
			"online_status": online,
			"last_seen":     lastSeen,
		}).Error
}

func (r *gormUserRepository) UpdateSettings(ctx context.Context, uid string, visibility domain.LastSeenVisibility, onlineVisible bool) error {
	return r.db.WithContext(ctx).
		Model(&UserModel{}).
		Where("uid = ?", uid).
		Updates(map[string]interface{}{
			"last_seen_visibility":  string(visibility),
			"online_status_visible": onlineVisible,
		}).Error
}
