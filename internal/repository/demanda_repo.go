package repository

import (
	"context"

	"sigoc/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DemandaRepository interface {
	Create(ctx context.Context, d *model.Demanda) error
	Update(ctx context.Context, d *model.Demanda) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Demanda, error)
	List(ctx context.Context, processoID *uuid.UUID, page, limit int) ([]model.Demanda, int64, error)
	CreatePedido(ctx context.Context, p *model.PedidoProrrogacao) error
	ListPedidos(ctx context.Context, demandaID uuid.UUID) ([]model.PedidoProrrogacao, error)
}

type demandaRepository struct {
	db *gorm.DB
}

func NewDemandaRepository(db *gorm.DB) DemandaRepository {
	return &demandaRepository{db: db}
}

func preloadDemanda(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Situacao").
		Preload("TipoDemanda").
		Preload("Atribuicao").
		Preload("AreaDemandada").
		Preload("Pedidos", func(db *gorm.DB) *gorm.DB {
			return db.Order("data_pedido asc")
		})
}

func (r *demandaRepository) Create(ctx context.Context, d *model.Demanda) error {
	return GetDB(ctx, r.db).Omit("Pedidos").Create(d).Error
}

func (r *demandaRepository) Update(ctx context.Context, d *model.Demanda) error {
	return GetDB(ctx, r.db).Omit("Pedidos").Save(d).Error
}

func (r *demandaRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Demanda{}).Error
}

func (r *demandaRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Demanda, error) {
	var d model.Demanda
	if err := preloadDemanda(GetDB(ctx, r.db)).First(&d, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *demandaRepository) List(ctx context.Context, processoID *uuid.UUID, page, limit int) ([]model.Demanda, int64, error) {
	var demandas []model.Demanda
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Demanda{})
	if processoID != nil {
		query = query.Where("processo_id = ?", *processoID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := preloadDemanda(query).Order("created_at desc").Offset(offset).Limit(limit).Find(&demandas).Error; err != nil {
		return nil, 0, err
	}

	return demandas, total, nil
}

func (r *demandaRepository) CreatePedido(ctx context.Context, p *model.PedidoProrrogacao) error {
	return GetDB(ctx, r.db).Create(p).Error
}

func (r *demandaRepository) ListPedidos(ctx context.Context, demandaID uuid.UUID) ([]model.PedidoProrrogacao, error) {
	var pedidos []model.PedidoProrrogacao
	err := GetDB(ctx, r.db).
		Where("demanda_id = ?", demandaID).
		Order("data_pedido asc").
		Find(&pedidos).Error
	return pedidos, err
}
