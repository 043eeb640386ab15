package service

import (
	"context"
	"errors"
	"time"

	"sigoc/internal/model"
	"sigoc/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrDemandaNaoEncontrada = errors.New("demanda não encontrada")

// --- derived state ---

// EstadoDerivado is the read-time projection of a Demanda's deadline
// situation. It is recomputed on every read and never persisted.
type EstadoDerivado struct {
	PrazoEfetivo            *time.Time `json:"prazo_efetivo"`
	TemProrrogacao          bool       `json:"tem_prorrogacao"`
	StatusUltimaProrrogacao string     `json:"status_ultima_prorrogacao,omitempty"`
}

// CalcularEstadoDerivado scans a demanda's pedidos and derives:
//   - the effective deadline: the authorized deadline of the most
//     recently decided aprovado/parcial pedido, falling back to the
//     demanda's own initial deadline;
//   - whether any pedido exists at all;
//   - the status of the most recently requested pedido.
func CalcularEstadoDerivado(d *model.Demanda, pedidos []model.PedidoProrrogacao) EstadoDerivado {
	estado := EstadoDerivado{
		PrazoEfetivo:   d.PrazoInicial,
		TemProrrogacao: len(pedidos) > 0,
	}

	var ultimaDecisao *model.PedidoProrrogacao
	var ultimoPedido *model.PedidoProrrogacao
	for i := range pedidos {
		p := &pedidos[i]

		if ultimoPedido == nil || p.DataPedido.After(ultimoPedido.DataPedido) {
			ultimoPedido = p
		}

		deferido := p.Status == model.StatusPedidoAprovado || p.Status == model.StatusPedidoParcial
		if !deferido || p.DataDecisao == nil || p.PrazoAutorizado == nil {
			continue
		}
		if ultimaDecisao == nil || p.DataDecisao.After(*ultimaDecisao.DataDecisao) {
			ultimaDecisao = p
		}
	}

	if ultimaDecisao != nil {
		estado.PrazoEfetivo = ultimaDecisao.PrazoAutorizado
	}
	if ultimoPedido != nil {
		estado.StatusUltimaProrrogacao = ultimoPedido.Status
	}
	return estado
}

// --- DTOs ---

type CreateDemandaRequest struct {
	ProcessoID      uuid.UUID  `json:"processo_id" binding:"required"`
	Assunto         string     `json:"assunto" binding:"required"`
	TipoDemandaID   *uuid.UUID `json:"tipo_demanda_id"`
	SituacaoID      uuid.UUID  `json:"situacao_id" binding:"required"`
	Prioridade      string     `json:"prioridade"`
	AtribuicaoID    *uuid.UUID `json:"atribuicao_id"`
	AreaDemandadaID *uuid.UUID `json:"area_demandada_id"`
	PrazoInicial    *time.Time `json:"prazo_inicial"`
	Observacao      string     `json:"observacao"`
}

type UpdateDemandaRequest struct {
	Assunto           *string    `json:"assunto"`
	TipoDemandaID     *uuid.UUID `json:"tipo_demanda_id"`
	SituacaoID        *uuid.UUID `json:"situacao_id"`
	Prioridade        *string    `json:"prioridade"`
	AtribuicaoID      *uuid.UUID `json:"atribuicao_id"`
	AreaDemandadaID   *uuid.UUID `json:"area_demandada_id"`
	PrazoInicial      *time.Time `json:"prazo_inicial"`
	DocumentoResposta *string    `json:"documento_resposta"`
	Observacao        *string    `json:"observacao"`
}

type CreatePedidoRequest struct {
	DataPedido      time.Time  `json:"data_pedido" binding:"required"`
	PrazoSolicitado time.Time  `json:"prazo_solicitado" binding:"required"`
	DataDecisao     *time.Time `json:"data_decisao"`
	PrazoAutorizado *time.Time `json:"prazo_autorizado"`
	Status          string     `json:"status"`
	Justificativa   string     `json:"justificativa"`
}

// DemandaResponse pairs the stored record with its derived projections.
type DemandaResponse struct {
	model.Demanda
	EstadoDerivado
}

// --- Interface ---

type DemandaService interface {
	Create(ctx context.Context, req CreateDemandaRequest) (*DemandaResponse, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateDemandaRequest) (*DemandaResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*DemandaResponse, error)
	List(ctx context.Context, processoID *uuid.UUID, page, limit int) ([]DemandaResponse, int64, error)
	CreatePedido(ctx context.Context, demandaID uuid.UUID, req CreatePedidoRequest) (*model.PedidoProrrogacao, error)
	ListPedidos(ctx context.Context, demandaID uuid.UUID) ([]model.PedidoProrrogacao, error)
}

type demandaService struct {
	repo         repository.DemandaRepository
	processoRepo repository.ProcessoRepository
}

func NewDemandaService(repo repository.DemandaRepository, processoRepo repository.ProcessoRepository) DemandaService {
	return &demandaService{repo: repo, processoRepo: processoRepo}
}

func (s *demandaService) toResponse(d *model.Demanda) *DemandaResponse {
	return &DemandaResponse{
		Demanda:        *d,
		EstadoDerivado: CalcularEstadoDerivado(d, d.Pedidos),
	}
}

func validateDemanda(d *model.Demanda) FieldErrors {
	errs := FieldErrors{}
	if d.Assunto == "" {
		errs["assunto"] = "campo obrigatório"
	}
	if d.SituacaoID == uuid.Nil {
		errs["situacao"] = "campo obrigatório"
	}
	if d.Prioridade != "" && !prioridadesValidas[d.Prioridade] {
		errs["prioridade"] = "prioridade inválida"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (s *demandaService) Create(ctx context.Context, req CreateDemandaRequest) (*DemandaResponse, error) {
	if _, err := s.processoRepo.FindByID(ctx, req.ProcessoID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, FieldErrors{"processo": "processo não encontrado"}
		}
		return nil, err
	}

	prioridade := req.Prioridade
	if prioridade == "" {
		prioridade = model.PrioridadeNormal
	}

	d := &model.Demanda{
		ProcessoID:      req.ProcessoID,
		Assunto:         req.Assunto,
		TipoDemandaID:   req.TipoDemandaID,
		SituacaoID:      req.SituacaoID,
		Prioridade:      prioridade,
		AtribuicaoID:    req.AtribuicaoID,
		AreaDemandadaID: req.AreaDemandadaID,
		PrazoInicial:    req.PrazoInicial,
		Observacao:      req.Observacao,
	}
	if errs := validateDemanda(d); errs != nil {
		return nil, errs
	}

	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	return s.toResponse(d), nil
}

func (s *demandaService) Update(ctx context.Context, id uuid.UUID, req UpdateDemandaRequest) (*DemandaResponse, error) {
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDemandaNaoEncontrada
		}
		return nil, err
	}

	if req.Assunto != nil {
		d.Assunto = *req.Assunto
	}
	if req.TipoDemandaID != nil {
		d.TipoDemandaID = req.TipoDemandaID
		d.TipoDemanda = nil
	}
	if req.SituacaoID != nil {
		d.SituacaoID = *req.SituacaoID
		d.Situacao = nil
	}
	if req.Prioridade != nil {
		d.Prioridade = *req.Prioridade
	}
	if req.AtribuicaoID != nil {
		d.AtribuicaoID = req.AtribuicaoID
		d.Atribuicao = nil
	}
	if req.AreaDemandadaID != nil {
		d.AreaDemandadaID = req.AreaDemandadaID
		d.AreaDemandada = nil
	}
	if req.PrazoInicial != nil {
		d.PrazoInicial = req.PrazoInicial
	}
	if req.DocumentoResposta != nil {
		d.DocumentoResposta = *req.DocumentoResposta
	}
	if req.Observacao != nil {
		d.Observacao = *req.Observacao
	}

	if errs := validateDemanda(d); errs != nil {
		return nil, errs
	}
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	return s.toResponse(d), nil
}

func (s *demandaService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDemandaNaoEncontrada
		}
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *demandaService) Get(ctx context.Context, id uuid.UUID) (*DemandaResponse, error) {
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDemandaNaoEncontrada
		}
		return nil, err
	}
	return s.toResponse(d), nil
}

func (s *demandaService) List(ctx context.Context, processoID *uuid.UUID, page, limit int) ([]DemandaResponse, int64, error) {
	demandas, total, err := s.repo.List(ctx, processoID, page, limit)
	if err != nil {
		return nil, 0, err
	}
	res := make([]DemandaResponse, 0, len(demandas))
	for i := range demandas {
		res = append(res, *s.toResponse(&demandas[i]))
	}
	return res, total, nil
}

func (s *demandaService) CreatePedido(ctx context.Context, demandaID uuid.UUID, req CreatePedidoRequest) (*model.PedidoProrrogacao, error) {
	if _, err := s.repo.FindByID(ctx, demandaID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDemandaNaoEncontrada
		}
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = model.StatusPedidoSolicitado
	}

	pedido := &model.PedidoProrrogacao{
		DemandaID:       demandaID,
		DataPedido:      req.DataPedido,
		PrazoSolicitado: req.PrazoSolicitado,
		DataDecisao:     req.DataDecisao,
		PrazoAutorizado: req.PrazoAutorizado,
		Status:          status,
		Justificativa:   req.Justificativa,
	}
	if errs := ValidatePedido(pedido); errs != nil {
		return nil, errs
	}

	if err := s.repo.CreatePedido(ctx, pedido); err != nil {
		return nil, err
	}
	return pedido, nil
}

func (s *demandaService) ListPedidos(ctx context.Context, demandaID uuid.UUID) ([]model.PedidoProrrogacao, error) {
	if _, err := s.repo.FindByID(ctx, demandaID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDemandaNaoEncontrada
		}
		return nil, err
	}
	return s.repo.ListPedidos(ctx, demandaID)
}
