package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"sigoc/internal/middleware"
	"sigoc/internal/model"
	"sigoc/internal/repository"

	"github.com/google/uuid"
)

// Snapshot is a stringified view of every scalar/foreign-key field of a
// Processo, captured before a write and diffed against the state after.
type Snapshot map[string]string

// FieldChange is one field's previous/new value pair in an update entry.
type FieldChange struct {
	Anterior string `json:"anterior"`
	Novo     string `json:"novo"`
}

// valueMissing mirrors the placeholder the audit trail uses for unset values.
const valueMissing = "N/A"

// ClearSentinel marks a relation fully emptied in a history payload.
const ClearSentinel = "Todos os itens foram removidos."

func dateStr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func fkNome(nome func() string, id *uuid.UUID) string {
	if nome != nil {
		if n := nome(); n != "" {
			return n
		}
	}
	if id == nil {
		return ""
	}
	return id.String()
}

// SnapshotProcesso captures the scalar and foreign-key fields of p.
// Foreign keys snapshot as display names when the association is loaded
// (FindByID preloads them) so diffs read like the admin UI. System
// timestamps stay out: they change on every save and would turn every
// no-op write into a history entry.
func SnapshotProcesso(p *model.Processo) Snapshot {
	s := Snapshot{
		"identificador":           p.Identificador,
		"assunto":                 p.Assunto,
		"tipo":                    p.Tipo,
		"prioridade":              p.Prioridade,
		"orgao_demandante":        p.OrgaoDemandante,
		"numero_processo_externo": p.NumeroProcessoExterno,
		"numero_sei":              p.NumeroSEI,
		"correlacao_lar":          strconv.FormatBool(p.CorrelacaoLAR),
		"reiterado":               strconv.FormatBool(p.Reiterado),
		"data_reiteracao":         dateStr(p.DataReiteracao),
		"prazo_inicial":           dateStr(p.PrazoInicial),
		"identificacao_achados":   p.IdentificacaoAchados,
		"documento_resposta":      p.DocumentoResposta,
		"duracao_execucao":        p.DuracaoExecucao,
		"forma_execucao":          p.FormaExecucao,
		"resultado_pretendido":    p.ResultadoPretendido,
		"documento_sei":           p.DocumentoSEI,
		"data_documento_sei":      dateStr(p.DataDocumentoSEI),
		"descricao":               p.Descricao,
		"observacao":              p.Observacao,
	}

	if p.AnoSolicitacao != nil {
		s["ano_solicitacao"] = strconv.Itoa(*p.AnoSolicitacao)
	} else {
		s["ano_solicitacao"] = ""
	}
	if p.SolicitacaoProrrogacao != nil {
		s["solicitacao_prorrogacao"] = strconv.FormatBool(*p.SolicitacaoProrrogacao)
	} else {
		s["solicitacao_prorrogacao"] = ""
	}
	if p.PaiID != nil {
		s["pai"] = p.PaiID.String()
	} else {
		s["pai"] = ""
	}

	s["situacao"] = fkNome(func() string {
		if p.Situacao != nil {
			return p.Situacao.Nome
		}
		return ""
	}, &p.SituacaoID)
	s["categoria"] = fkNome(func() string {
		if p.Categoria != nil {
			return p.Categoria.Nome
		}
		return ""
	}, p.CategoriaID)
	s["atribuicao"] = fkNome(func() string {
		if p.Atribuicao != nil {
			return p.Atribuicao.Nome
		}
		return ""
	}, p.AtribuicaoID)
	s["area_demandada"] = fkNome(func() string {
		if p.AreaDemandada != nil {
			return p.AreaDemandada.Nome
		}
		return ""
	}, p.AreaDemandadaID)

	return s
}

// DiffSnapshots compares the pre-write snapshot to the post-write state
// field by field. An empty result means nothing actually changed and no
// history entry should be recorded.
func DiffSnapshots(old, current Snapshot) map[string]FieldChange {
	changes := make(map[string]FieldChange)
	for field, newValue := range current {
		oldValue, ok := old[field]
		if !ok {
			oldValue = ""
		}
		if oldValue == newValue {
			continue
		}
		change := FieldChange{Anterior: oldValue, Novo: newValue}
		if change.Anterior == "" {
			change.Anterior = valueMissing
		}
		if change.Novo == "" {
			change.Novo = valueMissing
		}
		changes[field] = change
	}
	return changes
}

// HistoryRecorder appends HistoricoProcesso rows. It is the only writer
// of the history table; the acting user comes from the request context
// and is left nil for system-initiated changes, never fabricated.
type HistoryRecorder struct {
	repo  repository.HistoricoRepository
	clock func() time.Time
}

func NewHistoryRecorder(repo repository.HistoricoRepository) *HistoryRecorder {
	return &HistoryRecorder{repo: repo, clock: time.Now}
}

func (h *HistoryRecorder) append(ctx context.Context, processoID uuid.UUID, tipo string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("serializar alterações: %w", err)
	}
	return h.repo.Append(ctx, &model.HistoricoProcesso{
		ProcessoID:    processoID,
		Data:          h.clock(),
		AlteradoPorID: middleware.ActorFrom(ctx),
		TipoAlteracao: tipo,
		Alteracoes:    string(raw),
	})
}

// RecordCreation emits the CRIACAO entry: a snapshot of every field
// holding a non-empty value at creation time.
func (h *HistoryRecorder) RecordCreation(ctx context.Context, p *model.Processo) error {
	dados := make(map[string]string)
	for field, value := range SnapshotProcesso(p) {
		if value != "" && value != "false" {
			dados[field] = value
		}
	}
	payload := map[string]interface{}{
		"status":         "Processo criado.",
		"dados_iniciais": dados,
	}
	return h.append(ctx, p.ID, model.AlteracaoCriacao, payload)
}

// RecordUpdate diffs the pre-write snapshot against the saved state and
// emits one ATUALIZACAO entry. Returns false when nothing changed and no
// entry was written.
func (h *HistoryRecorder) RecordUpdate(ctx context.Context, p *model.Processo, before Snapshot) (bool, error) {
	changes := DiffSnapshots(before, SnapshotProcesso(p))
	if len(changes) == 0 {
		return false, nil
	}
	payload := make(map[string]interface{}, len(changes))
	for field, change := range changes {
		payload[field] = change
	}
	return true, h.append(ctx, p.ID, model.AlteracaoAtualizacao, payload)
}

// RecordRelationAdd emits one entry listing the display names newly
// linked to a many-to-many relation.
func (h *HistoryRecorder) RecordRelationAdd(ctx context.Context, p *model.Processo, field string, nomes []string) error {
	if len(nomes) == 0 {
		return nil
	}
	payload := map[string]interface{}{
		field: map[string]interface{}{"adicionado": nomes},
	}
	return h.append(ctx, p.ID, model.AlteracaoAtualizacao, payload)
}

// RecordRelationRemove emits one entry listing the display names
// unlinked from a many-to-many relation.
func (h *HistoryRecorder) RecordRelationRemove(ctx context.Context, p *model.Processo, field string, nomes []string) error {
	if len(nomes) == 0 {
		return nil
	}
	payload := map[string]interface{}{
		field: map[string]interface{}{"removido": nomes},
	}
	return h.append(ctx, p.ID, model.AlteracaoAtualizacao, payload)
}

// RecordRelationClear emits the sentinel entry for a fully emptied relation.
func (h *HistoryRecorder) RecordRelationClear(ctx context.Context, p *model.Processo, field string) error {
	payload := map[string]interface{}{
		field: map[string]interface{}{"status": ClearSentinel},
	}
	return h.append(ctx, p.ID, model.AlteracaoAtualizacao, payload)
}
