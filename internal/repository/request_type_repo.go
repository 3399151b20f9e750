package repository

import (
	"context"

	"aprobaciones/internal/model"

	"gorm.io/gorm"
)

// RequestTypeRepository manages the admin-owned request type catalog.
// Types are never deleted; deactivation is an Update with Active=false.
type RequestTypeRepository interface {
	Create(ctx context.Context, rt *model.RequestType) error
	GetByID(ctx context.Context, id uint) (*model.RequestType, error)
	List(ctx context.Context) ([]model.RequestType, error)
	Update(ctx context.Context, rt *model.RequestType) error
}

type requestTypeRepository struct {
	db *gorm.DB
}

// NewRequestTypeRepository returns a gorm-backed RequestTypeRepository.
func NewRequestTypeRepository(db *gorm.DB) RequestTypeRepository {
	return &requestTypeRepository{db: db}
}

func (r *requestTypeRepository) Create(ctx context.Context, rt *model.RequestType) error {
	return r.db.WithContext(ctx).Create(rt).Error
}

func (r *requestTypeRepository) GetByID(ctx context.Context, id uint) (*model.RequestType, error) {
	var rt model.RequestType
	if err := r.db.WithContext(ctx).First(&rt, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rt, nil
}

func (r *requestTypeRepository) List(ctx context.Context) ([]model.RequestType, error) {
	var types []model.RequestType
	if err := r.db.WithContext(ctx).Order("name asc").Find(&types).Error; err != nil {
		return nil, err
	}
	return types, nil
}

func (r *requestTypeRepository) Update(ctx context.Context, rt *model.RequestType) error {
	return r.db.WithContext(ctx).Save(rt).Error
}
