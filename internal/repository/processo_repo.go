package repository

import (
	"context"

	"sigoc/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProcessoFilter narrows processo listings; zero values mean "no filter".
type ProcessoFilter struct {
	Tipo            string
	SituacaoID      *uuid.UUID
	Prioridade      string
	OrgaoDemandante string
	AnoSolicitacao  *int
	PaiID           *uuid.UUID
	Search          string
}

type ProcessoRepository interface {
	Create(ctx context.Context, p *model.Processo) error
	Update(ctx context.Context, p *model.Processo) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Processo, error)
	FindByIdentificador(ctx context.Context, identificador string) (*model.Processo, error)
	List(ctx context.Context, filter ProcessoFilter, page, limit int) ([]model.Processo, int64, error)
	ListFilhos(ctx context.Context, paiID uuid.UUID) ([]model.Processo, error)
	ReplaceUnidadesAuditadas(ctx context.Context, p *model.Processo, unidades []model.Unidade) error
	ReplaceAuditoresResponsaveis(ctx context.Context, p *model.Processo, auditores []model.Auditor) error
}

type processoRepository struct {
	db *gorm.DB
}

func NewProcessoRepository(db *gorm.DB) ProcessoRepository {
	return &processoRepository{db: db}
}

func preloadProcesso(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Situacao").
		Preload("Categoria").
		Preload("Atribuicao").
		Preload("AreaDemandada").
		Preload("UnidadesAuditadas").
		Preload("AuditoresResponsaveis")
}

func (r *processoRepository) Create(ctx context.Context, p *model.Processo) error {
	// Only the row itself. The m2m relations are written separately by
	// the service so relation changes get their own history entries, and
	// the preloaded lookups must never be upserted through a save.
	return GetDB(ctx, r.db).Omit(clause.Associations).Create(p).Error
}

func (r *processoRepository) Update(ctx context.Context, p *model.Processo) error {
	return GetDB(ctx, r.db).Omit(clause.Associations).Save(p).Error
}

func (r *processoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Processo{}).Error
}

func (r *processoRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Processo, error) {
	var p model.Processo
	if err := preloadProcesso(GetDB(ctx, r.db)).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *processoRepository) FindByIdentificador(ctx context.Context, identificador string) (*model.Processo, error) {
	var p model.Processo
	if err := preloadProcesso(GetDB(ctx, r.db)).First(&p, "identificador = ?", identificador).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *processoRepository) List(ctx context.Context, filter ProcessoFilter, page, limit int) ([]model.Processo, int64, error) {
	var processos []model.Processo
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Processo{})

	if filter.Tipo != "" {
		query = query.Where("tipo = ?", filter.Tipo)
	}
	if filter.SituacaoID != nil {
		query = query.Where("situacao_id = ?", *filter.SituacaoID)
	}
	if filter.Prioridade != "" {
		query = query.Where("prioridade = ?", filter.Prioridade)
	}
	if filter.OrgaoDemandante != "" {
		query = query.Where("orgao_demandante = ?", filter.OrgaoDemandante)
	}
	if filter.AnoSolicitacao != nil {
		query = query.Where("ano_solicitacao = ?", *filter.AnoSolicitacao)
	}
	if filter.PaiID != nil {
		query = query.Where("pai_id = ?", *filter.PaiID)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where(
			"identificador ILIKE ? OR assunto ILIKE ? OR numero_sei ILIKE ? OR numero_processo_externo ILIKE ?",
			like, like, like, like,
		)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := preloadProcesso(query).Order("created_at desc").Offset(offset).Limit(limit).Find(&processos).Error; err != nil {
		return nil, 0, err
	}

	return processos, total, nil
}

func (r *processoRepository) ListFilhos(ctx context.Context, paiID uuid.UUID) ([]model.Processo, error) {
	var filhos []model.Processo
	err := preloadProcesso(GetDB(ctx, r.db)).
		Where("pai_id = ?", paiID).
		Order("created_at asc").
		Find(&filhos).Error
	return filhos, err
}

func (r *processoRepository) ReplaceUnidadesAuditadas(ctx context.Context, p *model.Processo, unidades []model.Unidade) error {
	return GetDB(ctx, r.db).Model(p).Association("UnidadesAuditadas").Replace(unidades)
}

func (r *processoRepository) ReplaceAuditoresResponsaveis(ctx context.Context, p *model.Processo, auditores []model.Auditor) error {
	return GetDB(ctx, r.db).Model(p).Association("AuditoresResponsaveis").Replace(auditores)
}
