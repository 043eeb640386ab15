package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sigoc/internal/model"
	"sigoc/internal/repository"
	"sigoc/pkg/identifier"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// identifierRetries bounds how many times a create is retried after the
// storage unique index rejects a generated identifier.
const identifierRetries = 3

var ErrProcessoNaoEncontrado = errors.New("processo não encontrado")

// ChangeNotifier receives a notification after a history entry is
// committed. The websocket hub implements it; a nil notifier disables it.
type ChangeNotifier interface {
	NotifyProcessoChange(identificador, tipoAlteracao string)
}

// --- DTOs ---

type CreateProcessoRequest struct {
	Assunto                string      `json:"assunto"`
	Tipo                   string      `json:"tipo" binding:"required"`
	SituacaoID             uuid.UUID   `json:"situacao_id"`
	Prioridade             string      `json:"prioridade"`
	CategoriaID            *uuid.UUID  `json:"categoria_id"`
	PaiID                  *uuid.UUID  `json:"pai_id"`
	OrgaoDemandante        string      `json:"orgao_demandante"`
	NumeroProcessoExterno  string      `json:"numero_processo_externo"`
	AnoSolicitacao         *int        `json:"ano_solicitacao"`
	NumeroSEI              string      `json:"numero_sei"`
	CorrelacaoLAR          bool        `json:"correlacao_lar"`
	AtribuicaoID           *uuid.UUID  `json:"atribuicao_id"`
	PrazoInicial           *time.Time  `json:"prazo_inicial"`
	SolicitacaoProrrogacao *bool       `json:"solicitacao_prorrogacao"`
	Reiterado              bool        `json:"reiterado"`
	DataReiteracao         *time.Time  `json:"data_reiteracao"`
	IdentificacaoAchados   string      `json:"identificacao_achados"`
	DocumentoResposta      string      `json:"documento_resposta"`
	AreaDemandadaID        *uuid.UUID  `json:"area_demandada_id"`
	DuracaoExecucao        string      `json:"duracao_execucao"`
	FormaExecucao          string      `json:"forma_execucao"`
	ResultadoPretendido    string      `json:"resultado_pretendido"`
	DocumentoSEI           string      `json:"documento_sei"`
	DataDocumentoSEI       *time.Time  `json:"data_documento_sei"`
	Descricao              string      `json:"descricao"`
	Observacao             string      `json:"observacao"`
	UnidadesAuditadas      []uuid.UUID `json:"unidades_auditadas"`
	AuditoresResponsaveis  []uuid.UUID `json:"auditores_responsaveis"`
}

// UpdateProcessoRequest uses pointers so nil means "not sent". The
// identifier and the system timestamps are not updatable at all. For the
// many-to-many fields, nil means untouched and an empty list clears the
// relation.
type UpdateProcessoRequest struct {
	Assunto                *string      `json:"assunto"`
	SituacaoID             *uuid.UUID   `json:"situacao_id"`
	Prioridade             *string      `json:"prioridade"`
	CategoriaID            *uuid.UUID   `json:"categoria_id"`
	PaiID                  *uuid.UUID   `json:"pai_id"`
	OrgaoDemandante        *string      `json:"orgao_demandante"`
	NumeroProcessoExterno  *string      `json:"numero_processo_externo"`
	AnoSolicitacao         *int         `json:"ano_solicitacao"`
	NumeroSEI              *string      `json:"numero_sei"`
	CorrelacaoLAR          *bool        `json:"correlacao_lar"`
	AtribuicaoID           *uuid.UUID   `json:"atribuicao_id"`
	PrazoInicial           *time.Time   `json:"prazo_inicial"`
	SolicitacaoProrrogacao *bool        `json:"solicitacao_prorrogacao"`
	Reiterado              *bool        `json:"reiterado"`
	DataReiteracao         *time.Time   `json:"data_reiteracao"`
	IdentificacaoAchados   *string      `json:"identificacao_achados"`
	DocumentoResposta      *string      `json:"documento_resposta"`
	AreaDemandadaID        *uuid.UUID   `json:"area_demandada_id"`
	DuracaoExecucao        *string      `json:"duracao_execucao"`
	FormaExecucao          *string      `json:"forma_execucao"`
	ResultadoPretendido    *string      `json:"resultado_pretendido"`
	DocumentoSEI           *string      `json:"documento_sei"`
	DataDocumentoSEI       *time.Time   `json:"data_documento_sei"`
	Descricao              *string      `json:"descricao"`
	Observacao             *string      `json:"observacao"`
	UnidadesAuditadas      *[]uuid.UUID `json:"unidades_auditadas"`
	AuditoresResponsaveis  *[]uuid.UUID `json:"auditores_responsaveis"`
}

type ArvoreNode struct {
	Processo     model.Processo `json:"processo"`
	Subprocessos []ArvoreNode   `json:"subprocessos"`
}

// --- Interface ---

type ProcessoService interface {
	Create(ctx context.Context, req CreateProcessoRequest) (*model.Processo, error)
	Update(ctx context.Context, identificador string, req UpdateProcessoRequest) (*model.Processo, error)
	Delete(ctx context.Context, identificador string) error
	Get(ctx context.Context, identificador string) (*model.Processo, error)
	List(ctx context.Context, filter repository.ProcessoFilter, page, limit int) ([]model.Processo, int64, error)
	Arvore(ctx context.Context, identificador string) (*ArvoreNode, error)
	Arquivar(ctx context.Context, identificador string) (*model.Processo, error)
	Historicos(ctx context.Context, identificador string, page, limit int) ([]model.HistoricoProcesso, int64, error)
}

type processoService struct {
	repo           repository.ProcessoRepository
	historicoRepo  repository.HistoricoRepository
	unidadeRepo    repository.LookupRepository[model.Unidade]
	auditorRepo    repository.LookupRepository[model.Auditor]
	situacaoRepo   repository.LookupRepository[model.Situacao]
	categoriaRepo  repository.LookupRepository[model.Categoria]
	atribuicaoRepo repository.LookupRepository[model.Atribuicao]
	recorder       *HistoryRecorder
	txManager      repository.TransactionManager
	notifier       ChangeNotifier
	generateID     func() string
}

func NewProcessoService(
	repo repository.ProcessoRepository,
	historicoRepo repository.HistoricoRepository,
	unidadeRepo repository.LookupRepository[model.Unidade],
	auditorRepo repository.LookupRepository[model.Auditor],
	situacaoRepo repository.LookupRepository[model.Situacao],
	categoriaRepo repository.LookupRepository[model.Categoria],
	atribuicaoRepo repository.LookupRepository[model.Atribuicao],
	recorder *HistoryRecorder,
	txManager repository.TransactionManager,
	notifier ChangeNotifier,
) ProcessoService {
	return &processoService{
		repo:           repo,
		historicoRepo:  historicoRepo,
		unidadeRepo:    unidadeRepo,
		auditorRepo:    auditorRepo,
		situacaoRepo:   situacaoRepo,
		categoriaRepo:  categoriaRepo,
		atribuicaoRepo: atribuicaoRepo,
		recorder:       recorder,
		txManager:      txManager,
		notifier:       notifier,
		generateID:     identifier.New,
	}
}

// --- helpers ---

func (s *processoService) parentTipo(ctx context.Context, paiID *uuid.UUID) (string, FieldErrors) {
	if paiID == nil {
		return "", nil
	}
	pai, err := s.repo.FindByID(ctx, *paiID)
	if err != nil {
		return "", FieldErrors{"pai": "processo pai não encontrado"}
	}
	return pai.Tipo, nil
}

func (s *processoService) resolveUnidades(ctx context.Context, ids []uuid.UUID) ([]model.Unidade, FieldErrors) {
	unidades := make([]model.Unidade, 0, len(ids))
	for _, id := range ids {
		u, err := s.unidadeRepo.FindByID(ctx, id)
		if err != nil {
			return nil, FieldErrors{"unidades_auditadas": fmt.Sprintf("unidade %s não encontrada", id)}
		}
		unidades = append(unidades, *u)
	}
	return unidades, nil
}

func (s *processoService) resolveAuditores(ctx context.Context, ids []uuid.UUID) ([]model.Auditor, FieldErrors) {
	auditores := make([]model.Auditor, 0, len(ids))
	for _, id := range ids {
		a, err := s.auditorRepo.FindByID(ctx, id)
		if err != nil {
			return nil, FieldErrors{"auditores_responsaveis": fmt.Sprintf("auditor %s não encontrado", id)}
		}
		auditores = append(auditores, *a)
	}
	return auditores, nil
}

// resolveAssociacoes loads the lookup association for every foreign key
// whose pointer is missing, either because the request just changed the
// id or because the record was built from a DTO. Snapshots and responses
// then carry display names instead of raw ids, and an unknown id is
// rejected before anything is persisted.
func (s *processoService) resolveAssociacoes(ctx context.Context, p *model.Processo) FieldErrors {
	if p.Situacao == nil && p.SituacaoID != uuid.Nil {
		situacao, err := s.situacaoRepo.FindByID(ctx, p.SituacaoID)
		if err != nil {
			return FieldErrors{"situacao": "situação não encontrada"}
		}
		p.Situacao = situacao
	}
	if p.Categoria == nil && p.CategoriaID != nil {
		categoria, err := s.categoriaRepo.FindByID(ctx, *p.CategoriaID)
		if err != nil {
			return FieldErrors{"categoria": "categoria não encontrada"}
		}
		p.Categoria = categoria
	}
	if p.Atribuicao == nil && p.AtribuicaoID != nil {
		atribuicao, err := s.atribuicaoRepo.FindByID(ctx, *p.AtribuicaoID)
		if err != nil {
			return FieldErrors{"atribuicao": "atribuição não encontrada"}
		}
		p.Atribuicao = atribuicao
	}
	if p.AreaDemandada == nil && p.AreaDemandadaID != nil {
		area, err := s.unidadeRepo.FindByID(ctx, *p.AreaDemandadaID)
		if err != nil {
			return FieldErrors{"area_demandada": "unidade não encontrada"}
		}
		p.AreaDemandada = area
	}
	return nil
}

func (s *processoService) notify(p *model.Processo, tipoAlteracao string) {
	if s.notifier != nil {
		s.notifier.NotifyProcessoChange(p.Identificador, tipoAlteracao)
	}
}

// --- operations ---

func (s *processoService) Create(ctx context.Context, req CreateProcessoRequest) (*model.Processo, error) {
	prioridade := req.Prioridade
	if prioridade == "" {
		prioridade = model.PrioridadeNormal
	}

	p := &model.Processo{
		Assunto:                req.Assunto,
		Tipo:                   req.Tipo,
		SituacaoID:             req.SituacaoID,
		Prioridade:             prioridade,
		CategoriaID:            req.CategoriaID,
		PaiID:                  req.PaiID,
		OrgaoDemandante:        req.OrgaoDemandante,
		NumeroProcessoExterno:  req.NumeroProcessoExterno,
		AnoSolicitacao:         req.AnoSolicitacao,
		NumeroSEI:              req.NumeroSEI,
		CorrelacaoLAR:          req.CorrelacaoLAR,
		AtribuicaoID:           req.AtribuicaoID,
		PrazoInicial:           req.PrazoInicial,
		SolicitacaoProrrogacao: req.SolicitacaoProrrogacao,
		Reiterado:              req.Reiterado,
		DataReiteracao:         req.DataReiteracao,
		IdentificacaoAchados:   req.IdentificacaoAchados,
		DocumentoResposta:      req.DocumentoResposta,
		AreaDemandadaID:        req.AreaDemandadaID,
		DuracaoExecucao:        req.DuracaoExecucao,
		FormaExecucao:          req.FormaExecucao,
		ResultadoPretendido:    req.ResultadoPretendido,
		DocumentoSEI:           req.DocumentoSEI,
		DataDocumentoSEI:       req.DataDocumentoSEI,
		Descricao:              req.Descricao,
		Observacao:             req.Observacao,
	}

	unidades, ferr := s.resolveUnidades(ctx, req.UnidadesAuditadas)
	if ferr != nil {
		return nil, ferr
	}
	auditores, ferr := s.resolveAuditores(ctx, req.AuditoresResponsaveis)
	if ferr != nil {
		return nil, ferr
	}
	p.UnidadesAuditadas = unidades
	p.AuditoresResponsaveis = auditores

	if ferr := s.resolveAssociacoes(ctx, p); ferr != nil {
		return nil, ferr
	}
	parentTipo, ferr := s.parentTipo(ctx, p.PaiID)
	if ferr != nil {
		return nil, ferr
	}
	if errs := ValidateProcesso(p, parentTipo); errs != nil {
		return nil, errs
	}

	// The generated identifier is only probabilistically unique; on a
	// duplicate-key rejection the whole transaction is retried with a
	// fresh one, a bounded number of times.
	var lastErr error
	for attempt := 0; attempt < identifierRetries; attempt++ {
		p.ID = uuid.Nil
		p.Identificador = s.generateID()

		lastErr = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
			if err := s.repo.Create(txCtx, p); err != nil {
				return err
			}
			if err := s.recorder.RecordCreation(txCtx, p); err != nil {
				return err
			}
			if len(unidades) > 0 {
				if err := s.repo.ReplaceUnidadesAuditadas(txCtx, p, unidades); err != nil {
					return err
				}
				if err := s.recorder.RecordRelationAdd(txCtx, p, "unidades_auditadas", nomesUnidades(unidades)); err != nil {
					return err
				}
			}
			if len(auditores) > 0 {
				if err := s.repo.ReplaceAuditoresResponsaveis(txCtx, p, auditores); err != nil {
					return err
				}
				if err := s.recorder.RecordRelationAdd(txCtx, p, "auditores_responsaveis", nomesAuditores(auditores)); err != nil {
					return err
				}
			}
			return nil
		})
		if lastErr == nil {
			s.notify(p, model.AlteracaoCriacao)
			return p, nil
		}
		if !errors.Is(lastErr, gorm.ErrDuplicatedKey) {
			return nil, lastErr
		}
	}
	return nil, fmt.Errorf("gerar identificador único após %d tentativas: %w", identifierRetries, lastErr)
}

func (s *processoService) Update(ctx context.Context, identificador string, req UpdateProcessoRequest) (*model.Processo, error) {
	p, err := s.repo.FindByIdentificador(ctx, identificador)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProcessoNaoEncontrado
		}
		return nil, err
	}

	// Pre-write snapshot. The record was just loaded, so a "snapshot
	// miss" cannot happen here; absence of the row fails loudly above.
	before := SnapshotProcesso(p)

	applyProcessoUpdate(p, req)
	// Changed foreign keys dropped their preloaded association; reload
	// them so the post-write snapshot diffs display names against
	// display names. Resending an unchanged id stays a no-op.
	if ferr := s.resolveAssociacoes(ctx, p); ferr != nil {
		return nil, ferr
	}

	var unidades []model.Unidade
	var auditores []model.Auditor
	if req.UnidadesAuditadas != nil {
		var ferr FieldErrors
		unidades, ferr = s.resolveUnidades(ctx, *req.UnidadesAuditadas)
		if ferr != nil {
			return nil, ferr
		}
	}
	if req.AuditoresResponsaveis != nil {
		var ferr FieldErrors
		auditores, ferr = s.resolveAuditores(ctx, *req.AuditoresResponsaveis)
		if ferr != nil {
			return nil, ferr
		}
	}

	// Validation sees the prospective m2m state so the non-empty rules hold.
	validationCopy := *p
	if req.UnidadesAuditadas != nil {
		validationCopy.UnidadesAuditadas = unidades
	}
	parentTipo, ferr := s.parentTipo(ctx, p.PaiID)
	if ferr != nil {
		return nil, ferr
	}
	if errs := ValidateProcesso(&validationCopy, parentTipo); errs != nil {
		return nil, errs
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Update(txCtx, p); err != nil {
			return err
		}
		if _, err := s.recorder.RecordUpdate(txCtx, p, before); err != nil {
			return err
		}

		if req.UnidadesAuditadas != nil {
			old := nomesUnidades(p.UnidadesAuditadas)
			if err := s.repo.ReplaceUnidadesAuditadas(txCtx, p, unidades); err != nil {
				return err
			}
			if err := s.recordRelationDiff(txCtx, p, "unidades_auditadas", old, nomesUnidades(unidades)); err != nil {
				return err
			}
			p.UnidadesAuditadas = unidades
		}
		if req.AuditoresResponsaveis != nil {
			old := nomesAuditores(p.AuditoresResponsaveis)
			if err := s.repo.ReplaceAuditoresResponsaveis(txCtx, p, auditores); err != nil {
				return err
			}
			if err := s.recordRelationDiff(txCtx, p, "auditores_responsaveis", old, nomesAuditores(auditores)); err != nil {
				return err
			}
			p.AuditoresResponsaveis = auditores
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Re-read so the response carries the same nested lookups a GET does.
	updated, err := s.repo.FindByIdentificador(ctx, p.Identificador)
	if err != nil {
		return nil, err
	}

	s.notify(updated, model.AlteracaoAtualizacao)
	return updated, nil
}

// recordRelationDiff turns an old/new name-set comparison into the
// add / remove / clear history events for one many-to-many field.
func (s *processoService) recordRelationDiff(ctx context.Context, p *model.Processo, field string, old, current []string) error {
	if len(current) == 0 && len(old) > 0 {
		return s.recorder.RecordRelationClear(ctx, p, field)
	}

	oldSet := make(map[string]bool, len(old))
	for _, n := range old {
		oldSet[n] = true
	}
	currentSet := make(map[string]bool, len(current))
	for _, n := range current {
		currentSet[n] = true
	}

	var added, removed []string
	for _, n := range current {
		if !oldSet[n] {
			added = append(added, n)
		}
	}
	for _, n := range old {
		if !currentSet[n] {
			removed = append(removed, n)
		}
	}

	if err := s.recorder.RecordRelationAdd(ctx, p, field, added); err != nil {
		return err
	}
	return s.recorder.RecordRelationRemove(ctx, p, field, removed)
}

func (s *processoService) Delete(ctx context.Context, identificador string) error {
	p, err := s.repo.FindByIdentificador(ctx, identificador)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProcessoNaoEncontrado
		}
		return err
	}
	// History entries and dependent submodels go with the processo (cascade).
	return s.repo.Delete(ctx, p.ID)
}

func (s *processoService) Get(ctx context.Context, identificador string) (*model.Processo, error) {
	p, err := s.repo.FindByIdentificador(ctx, identificador)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProcessoNaoEncontrado
		}
		return nil, err
	}
	return p, nil
}

func (s *processoService) List(ctx context.Context, filter repository.ProcessoFilter, page, limit int) ([]model.Processo, int64, error) {
	return s.repo.List(ctx, filter, page, limit)
}

func (s *processoService) Arvore(ctx context.Context, identificador string) (*ArvoreNode, error) {
	p, err := s.Get(ctx, identificador)
	if err != nil {
		return nil, err
	}
	return s.buildArvore(ctx, *p)
}

func (s *processoService) buildArvore(ctx context.Context, p model.Processo) (*ArvoreNode, error) {
	node := &ArvoreNode{Processo: p, Subprocessos: []ArvoreNode{}}
	filhos, err := s.repo.ListFilhos(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	for _, filho := range filhos {
		child, err := s.buildArvore(ctx, filho)
		if err != nil {
			return nil, err
		}
		node.Subprocessos = append(node.Subprocessos, *child)
	}
	return node, nil
}

func (s *processoService) Arquivar(ctx context.Context, identificador string) (*model.Processo, error) {
	concluido, err := s.situacaoRepo.FindByNome(ctx, "Concluído")
	if err != nil {
		return nil, fmt.Errorf("situação 'Concluído' não cadastrada: %w", err)
	}
	return s.Update(ctx, identificador, UpdateProcessoRequest{SituacaoID: &concluido.ID})
}

func (s *processoService) Historicos(ctx context.Context, identificador string, page, limit int) ([]model.HistoricoProcesso, int64, error) {
	p, err := s.Get(ctx, identificador)
	if err != nil {
		return nil, 0, err
	}
	return s.historicoRepo.ListByProcesso(ctx, p.ID, page, limit)
}

// --- field application / name extraction ---

func applyProcessoUpdate(p *model.Processo, req UpdateProcessoRequest) {
	if req.Assunto != nil {
		p.Assunto = *req.Assunto
	}
	if req.SituacaoID != nil {
		p.SituacaoID = *req.SituacaoID
		p.Situacao = nil
	}
	if req.Prioridade != nil {
		p.Prioridade = *req.Prioridade
	}
	if req.CategoriaID != nil {
		p.CategoriaID = req.CategoriaID
		p.Categoria = nil
	}
	if req.PaiID != nil {
		p.PaiID = req.PaiID
	}
	if req.OrgaoDemandante != nil {
		p.OrgaoDemandante = *req.OrgaoDemandante
	}
	if req.NumeroProcessoExterno != nil {
		p.NumeroProcessoExterno = *req.NumeroProcessoExterno
	}
	if req.AnoSolicitacao != nil {
		p.AnoSolicitacao = req.AnoSolicitacao
	}
	if req.NumeroSEI != nil {
		p.NumeroSEI = *req.NumeroSEI
	}
	if req.CorrelacaoLAR != nil {
		p.CorrelacaoLAR = *req.CorrelacaoLAR
	}
	if req.AtribuicaoID != nil {
		p.AtribuicaoID = req.AtribuicaoID
		p.Atribuicao = nil
	}
	if req.PrazoInicial != nil {
		p.PrazoInicial = req.PrazoInicial
	}
	if req.SolicitacaoProrrogacao != nil {
		p.SolicitacaoProrrogacao = req.SolicitacaoProrrogacao
	}
	if req.Reiterado != nil {
		p.Reiterado = *req.Reiterado
	}
	if req.DataReiteracao != nil {
		p.DataReiteracao = req.DataReiteracao
	}
	if req.IdentificacaoAchados != nil {
		p.IdentificacaoAchados = *req.IdentificacaoAchados
	}
	if req.DocumentoResposta != nil {
		p.DocumentoResposta = *req.DocumentoResposta
	}
	if req.AreaDemandadaID != nil {
		p.AreaDemandadaID = req.AreaDemandadaID
		p.AreaDemandada = nil
	}
	if req.DuracaoExecucao != nil {
		p.DuracaoExecucao = *req.DuracaoExecucao
	}
	if req.FormaExecucao != nil {
		p.FormaExecucao = *req.FormaExecucao
	}
	if req.ResultadoPretendido != nil {
		p.ResultadoPretendido = *req.ResultadoPretendido
	}
	if req.DocumentoSEI != nil {
		p.DocumentoSEI = *req.DocumentoSEI
	}
	if req.DataDocumentoSEI != nil {
		p.DataDocumentoSEI = req.DataDocumentoSEI
	}
	if req.Descricao != nil {
		p.Descricao = *req.Descricao
	}
	if req.Observacao != nil {
		p.Observacao = *req.Observacao
	}
}

func nomesUnidades(unidades []model.Unidade) []string {
	nomes := make([]string, 0, len(unidades))
	for _, u := range unidades {
		nomes = append(nomes, u.Nome)
	}
	return nomes
}

func nomesAuditores(auditores []model.Auditor) []string {
	nomes := make([]string, 0, len(auditores))
	for _, a := range auditores {
		nomes = append(nomes, a.Nome)
	}
	return nomes
}
