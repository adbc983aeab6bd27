package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/zivox/zivox/internal/domain"
)

type gormCallRepository struct {
	db *gorm.DB
}

func NewCallRepository(db *gorm.DB) CallRepository {
	return &gormCallRepository{db: db}
}

func (r *gormCallRepository) Create(ctx context.Context, call *domain.CallRecord) error {
	model := CallDomainToModel(call)
	return r.db.WithContext(ctx).Create(model).Error
}

func (r *gormCallRepository) GetByParticipant(ctx context.Context, uid string) ([]*domain.CallRecord, error) {
	pattern := "%" + `"` + escapeLike(uid) + `"` + "%"

	var models []CallModel
	err := r.db.WithContext(ctx).
		Where(`participants LIKE ? ESCAPE '\'`, pattern).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	calls := make([]*domain.CallRecord, 0, len(models))
	for i := range models {
		call := CallModelToDomain(&models[i])
		if call.Participants.Contains(uid) {
			calls = append(calls, call)
		}
	}
	return calls, nil
}

func (r *gormCallRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&CallModel{}).Error
}
