package service

import (
	"context"
	"time"

	"sigoc/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DashboardStats summarizes the current state of the tracked processes.
type DashboardStats struct {
	TotalProcessos    int64            `json:"total_processos"`
	PorTipo           []ContagemRotulo `json:"por_tipo"`
	PorSituacao       []ContagemRotulo `json:"por_situacao"`
	PorPrioridade     []ContagemRotulo `json:"por_prioridade"`
	PorOrgao          []ContagemRotulo `json:"por_orgao"`
	DemandasNoPrazo   int64            `json:"demandas_no_prazo"`
	DemandasAtrasadas int64            `json:"demandas_atrasadas"`
	CriadosUltimos30d int64            `json:"criados_ultimos_30_dias"`
}

// ContagemRotulo is one slice of an aggregation, with its share of the total.
type ContagemRotulo struct {
	Rotulo     string          `json:"rotulo"`
	Quantidade int64           `json:"quantidade"`
	Percentual decimal.Decimal `json:"percentual"`
}

type StatisticsService interface {
	GetDashboardStats(ctx context.Context) (*DashboardStats, error)
}

type statisticsService struct {
	db *gorm.DB
}

func NewStatisticsService(db *gorm.DB) StatisticsService {
	return &statisticsService{db: db}
}

type rowCount struct {
	Rotulo     string
	Quantidade int64
}

func comPercentual(rows []rowCount, total int64) []ContagemRotulo {
	out := make([]ContagemRotulo, 0, len(rows))
	totalDec := decimal.NewFromInt(total)
	cem := decimal.NewFromInt(100)
	for _, r := range rows {
		pct := decimal.Zero
		if total > 0 {
			pct = decimal.NewFromInt(r.Quantidade).Mul(cem).DivRound(totalDec, 2)
		}
		out = append(out, ContagemRotulo{Rotulo: r.Rotulo, Quantidade: r.Quantidade, Percentual: pct})
	}
	return out
}

// consultaPorSituacao groups the processos by the display name of their
// situação. Deletion is a hard cascade, so there is no soft-delete
// column to filter on.
func consultaPorSituacao(db *gorm.DB) *gorm.DB {
	return db.Table("processos").
		Select("situacoes.nome as rotulo, COUNT(*) as quantidade").
		Joins("JOIN situacoes ON situacoes.id = processos.situacao_id").
		Group("situacoes.nome").
		Order("quantidade DESC")
}

// contarPrazos classifies every demanda by its effective deadline, so a
// demanda whose prorrogação was approved counts against the authorized
// deadline rather than the initial one. No deadline at all means the
// demanda is in neither bucket.
func contarPrazos(demandas []model.Demanda, hoje time.Time) (noPrazo, atrasadas int64) {
	for _, d := range demandas {
		estado := CalcularEstadoDerivado(&d, d.Pedidos)
		if estado.PrazoEfetivo == nil {
			continue
		}
		if estado.PrazoEfetivo.Before(hoje) {
			atrasadas++
		} else {
			noPrazo++
		}
	}
	return noPrazo, atrasadas
}

func (s *statisticsService) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}
	db := s.db.WithContext(ctx)

	if err := db.Model(&model.Processo{}).Count(&stats.TotalProcessos).Error; err != nil {
		return nil, err
	}

	var porTipo []rowCount
	if err := db.Model(&model.Processo{}).
		Select("tipo as rotulo, COUNT(*) as quantidade").
		Group("tipo").
		Order("quantidade DESC").
		Scan(&porTipo).Error; err != nil {
		return nil, err
	}
	stats.PorTipo = comPercentual(porTipo, stats.TotalProcessos)

	var porSituacao []rowCount
	if err := consultaPorSituacao(db).Scan(&porSituacao).Error; err != nil {
		return nil, err
	}
	stats.PorSituacao = comPercentual(porSituacao, stats.TotalProcessos)

	var porPrioridade []rowCount
	if err := db.Model(&model.Processo{}).
		Select("prioridade as rotulo, COUNT(*) as quantidade").
		Group("prioridade").
		Order("quantidade DESC").
		Scan(&porPrioridade).Error; err != nil {
		return nil, err
	}
	stats.PorPrioridade = comPercentual(porPrioridade, stats.TotalProcessos)

	var porOrgao []rowCount
	if err := db.Model(&model.Processo{}).
		Select("orgao_demandante as rotulo, COUNT(*) as quantidade").
		Where("orgao_demandante <> ''").
		Group("orgao_demandante").
		Order("quantidade DESC").
		Scan(&porOrgao).Error; err != nil {
		return nil, err
	}
	stats.PorOrgao = comPercentual(porOrgao, stats.TotalProcessos)

	hoje := time.Now()
	var demandas []model.Demanda
	if err := db.Preload("Pedidos").Find(&demandas).Error; err != nil {
		return nil, err
	}
	stats.DemandasNoPrazo, stats.DemandasAtrasadas = contarPrazos(demandas, hoje)

	if err := db.Model(&model.Processo{}).
		Where("created_at >= ?", hoje.AddDate(0, 0, -30)).
		Count(&stats.CriadosUltimos30d).Error; err != nil {
		return nil, err
	}

	return stats, nil
}
