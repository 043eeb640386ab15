package repository

import (
	"context"

	"sigoc/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HistoricoRepository is append-only: entries are never updated or
// deleted here, only removed by cascade with their Processo.
type HistoricoRepository interface {
	Append(ctx context.Context, entry *model.HistoricoProcesso) error
	ListByProcesso(ctx context.Context, processoID uuid.UUID, page, limit int) ([]model.HistoricoProcesso, int64, error)
}

type historicoRepository struct {
	db *gorm.DB
}

func NewHistoricoRepository(db *gorm.DB) HistoricoRepository {
	return &historicoRepository{db: db}
}

func (r *historicoRepository) Append(ctx context.Context, entry *model.HistoricoProcesso) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *historicoRepository) ListByProcesso(ctx context.Context, processoID uuid.UUID, page, limit int) ([]model.HistoricoProcesso, int64, error) {
	var entries []model.HistoricoProcesso
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.HistoricoProcesso{}).Where("processo_id = ?", processoID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Preload("AlteradoPor").Order("data desc").Offset(offset).Limit(limit).Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
