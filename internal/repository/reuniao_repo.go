package repository

import (
	"context"

	"sigoc/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReuniaoRepository interface {
	Create(ctx context.Context, r *model.Reuniao) error
	Update(ctx context.Context, r *model.Reuniao) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Reuniao, error)
	List(ctx context.Context, processoID *uuid.UUID, page, limit int) ([]model.Reuniao, int64, error)
}

type reuniaoRepository struct {
	db *gorm.DB
}

func NewReuniaoRepository(db *gorm.DB) ReuniaoRepository {
	return &reuniaoRepository{db: db}
}

func (r *reuniaoRepository) Create(ctx context.Context, reuniao *model.Reuniao) error {
	return GetDB(ctx, r.db).Create(reuniao).Error
}

func (r *reuniaoRepository) Update(ctx context.Context, reuniao *model.Reuniao) error {
	return GetDB(ctx, r.db).Save(reuniao).Error
}

func (r *reuniaoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Reuniao{}).Error
}

func (r *reuniaoRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Reuniao, error) {
	var reuniao model.Reuniao
	if err := GetDB(ctx, r.db).First(&reuniao, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &reuniao, nil
}

func (r *reuniaoRepository) List(ctx context.Context, processoID *uuid.UUID, page, limit int) ([]model.Reuniao, int64, error) {
	var reunioes []model.Reuniao
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Reuniao{})
	if processoID != nil {
		query = query.Where("processo_id = ?", *processoID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("data desc").Offset(offset).Limit(limit).Find(&reunioes).Error; err != nil {
		return nil, 0, err
	}

	return reunioes, total, nil
}
