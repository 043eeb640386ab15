package service

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"sigoc/internal/model"

	"github.com/google/uuid"
)

// FieldErrors maps offending field names to human-readable violation
// messages. It implements error so the save path can return it directly;
// handlers unpack it into a structured 400 payload.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HierarquiaProcesso is the static adjacency table of allowed
// parent-type → child-type pairs. A type absent from the table cannot
// have children at all.
var HierarquiaProcesso = map[string][]string{
	model.TipoProcessoRaiz: {model.TipoAcordao, model.TipoRelatorio, model.TipoDemandaFilha},
	model.TipoAcordao:      {model.TipoRecomendacao, model.TipoDeterminacao},
	model.TipoRelatorio:    {model.TipoRecomendacao, model.TipoDeterminacao},
	model.TipoDeterminacao: {model.TipoAcao},
}

var tiposValidos = map[string]bool{
	model.TipoProcessoRaiz: true,
	model.TipoAcordao:      true,
	model.TipoRelatorio:    true,
	model.TipoRecomendacao: true,
	model.TipoDeterminacao: true,
	model.TipoAcao:         true,
	model.TipoDemandaFilha: true,
}

var prioridadesValidas = map[string]bool{
	model.PrioridadeNormal:  true,
	model.PrioridadeAlta:    true,
	model.PrioridadeUrgente: true,
}

var orgaosValidos = map[string]bool{
	model.OrgaoTCU:    true,
	model.OrgaoCGU:    true,
	model.OrgaoAUDGER: true,
	model.OrgaoMD:     true,
	model.OrgaoOutros: true,
}

var (
	tcuPattern   = regexp.MustCompile(`^\d{3}\.\d{3}/\d{4}-\d$`)
	onlyDigits   = regexp.MustCompile(`^\d+$`)
	cguDigits    = 8
	audgerDigits = 7
)

// permitidoComoFilho reports whether childTipo may sit under parentTipo.
func permitidoComoFilho(parentTipo, childTipo string) bool {
	for _, t := range HierarquiaProcesso[parentTipo] {
		if t == childTipo {
			return true
		}
	}
	return false
}

// ValidateProcesso applies every record rule to a candidate state and
// collects all violations. parentTipo is the persisted type of the
// referenced parent ("" when the record has no parent). A nil return
// means the record may be persisted.
func ValidateProcesso(p *model.Processo, parentTipo string) FieldErrors {
	errs := FieldErrors{}

	if !tiposValidos[p.Tipo] {
		errs["tipo"] = fmt.Sprintf("tipo inválido: %q", p.Tipo)
		return errs
	}
	if p.Prioridade != "" && !prioridadesValidas[p.Prioridade] {
		errs["prioridade"] = fmt.Sprintf("prioridade inválida: %q", p.Prioridade)
	}
	if p.OrgaoDemandante != "" && !orgaosValidos[p.OrgaoDemandante] {
		errs["orgao_demandante"] = fmt.Sprintf("órgão demandante inválido: %q", p.OrgaoDemandante)
	}

	validarHierarquia(p, parentTipo, errs)
	validarCamposObrigatorios(p, errs)
	validarNumeroExterno(p, errs)
	validarReiteracao(p, errs)

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Rule 1: the root type stands alone; any other parent/child pair must
// be listed in the hierarchy table.
func validarHierarquia(p *model.Processo, parentTipo string, errs FieldErrors) {
	if p.Tipo == model.TipoProcessoRaiz {
		if p.PaiID != nil {
			errs["pai"] = "processo raiz não pode ter processo pai"
		}
		return
	}
	if p.PaiID == nil {
		return
	}
	if !permitidoComoFilho(parentTipo, p.Tipo) {
		errs["tipo"] = fmt.Sprintf("tipo %q não é permitido como filho de %q", p.Tipo, parentTipo)
	}
}

// Rule 2: required fields vary per type. Each type is handled by its own
// case; the shared base fields (assunto, situação, prioridade) apply to
// all of them.
func validarCamposObrigatorios(p *model.Processo, errs FieldErrors) {
	if strings.TrimSpace(p.Assunto) == "" {
		errs["assunto"] = "campo obrigatório"
	}
	if p.SituacaoID == uuid.Nil {
		errs["situacao"] = "campo obrigatório"
	}
	if p.Prioridade == "" {
		errs["prioridade"] = "campo obrigatório"
	}

	switch p.Tipo {
	case model.TipoProcessoRaiz:
		if strings.TrimSpace(p.NumeroSEI) == "" {
			errs["numero_sei"] = "campo obrigatório para processos"
		}
		if p.OrgaoDemandante == "" {
			errs["orgao_demandante"] = "campo obrigatório para processos"
		}
		if strings.TrimSpace(p.NumeroProcessoExterno) == "" {
			errs["numero_processo_externo"] = "campo obrigatório para processos"
		}
		if p.AnoSolicitacao == nil {
			errs["ano_solicitacao"] = "campo obrigatório para processos"
		}

	case model.TipoRecomendacao, model.TipoDeterminacao:
		if len(p.UnidadesAuditadas) == 0 {
			errs["unidades_auditadas"] = "informe ao menos uma unidade auditada"
		}
		if p.PrazoInicial == nil {
			errs["prazo_inicial"] = "campo obrigatório para recomendações e determinações"
		}
		if p.SolicitacaoProrrogacao == nil {
			errs["solicitacao_prorrogacao"] = "campo obrigatório para recomendações e determinações"
		}

	case model.TipoAcao:
		if p.AreaDemandadaID == nil {
			errs["area_demandada"] = "campo obrigatório para ações"
		}
		if p.PrazoInicial == nil {
			errs["prazo_inicial"] = "campo obrigatório para ações"
		}
		if strings.TrimSpace(p.DuracaoExecucao) == "" {
			errs["duracao_execucao"] = "campo obrigatório para ações"
		}
		if strings.TrimSpace(p.FormaExecucao) == "" {
			errs["forma_execucao"] = "campo obrigatório para ações"
		}
		if strings.TrimSpace(p.ResultadoPretendido) == "" {
			errs["resultado_pretendido"] = "campo obrigatório para ações"
		}
	}
}

// Rule 3: the external number format is keyed by the issuing body.
func validarNumeroExterno(p *model.Processo, errs FieldErrors) {
	if p.NumeroProcessoExterno == "" {
		return
	}
	switch p.OrgaoDemandante {
	case model.OrgaoTCU:
		if !tcuPattern.MatchString(p.NumeroProcessoExterno) {
			errs["numero_processo_externo"] = "o formato para TCU deve ser: 044.967/2021-7"
		}
	case model.OrgaoCGU:
		if !onlyDigits.MatchString(p.NumeroProcessoExterno) || len(p.NumeroProcessoExterno) != cguDigits {
			errs["numero_processo_externo"] = "o formato para CGU deve ser: 8 dígitos (ex: 01229074)"
		}
	case model.OrgaoAUDGER:
		if !onlyDigits.MatchString(p.NumeroProcessoExterno) || len(p.NumeroProcessoExterno) != audgerDigits {
			errs["numero_processo_externo"] = "o formato para AUDGER deve ser: 7 dígitos (ex: 1577597)"
		}
	}
}

// Rule 4: a reiterated record must say when it was reiterated.
func validarReiteracao(p *model.Processo, errs FieldErrors) {
	if p.Reiterado && p.DataReiteracao == nil {
		errs["data_reiteracao"] = "data de reiteração é obrigatória quando o processo é reiterado"
	}
}

// ValidatePedido applies the temporal rules of an extension request:
// the requested deadline must fall after the request date; decided
// statuses carry a decision date not before the request; approvals
// carry an authorized deadline after the decision.
func ValidatePedido(p *model.PedidoProrrogacao) FieldErrors {
	errs := FieldErrors{}

	switch p.Status {
	case model.StatusPedidoSolicitado, model.StatusPedidoAprovado,
		model.StatusPedidoReprovado, model.StatusPedidoParcial:
	default:
		errs["status"] = fmt.Sprintf("status inválido: %q", p.Status)
		return errs
	}

	if p.DataPedido.IsZero() {
		errs["data_pedido"] = "campo obrigatório"
	}
	if p.PrazoSolicitado.IsZero() {
		errs["prazo_solicitado"] = "campo obrigatório"
	} else if !p.DataPedido.IsZero() && !p.PrazoSolicitado.After(p.DataPedido) {
		errs["prazo_solicitado"] = "o prazo solicitado deve ser posterior à data do pedido"
	}

	decidido := p.Status == model.StatusPedidoAprovado ||
		p.Status == model.StatusPedidoReprovado ||
		p.Status == model.StatusPedidoParcial

	if decidido && p.DataDecisao == nil {
		errs["data_decisao"] = "data de decisão é obrigatória para pedidos decididos"
	}
	if p.DataDecisao != nil && !p.DataPedido.IsZero() && p.DataDecisao.Before(p.DataPedido) {
		errs["data_decisao"] = "a data de decisão não pode ser anterior à data do pedido"
	}

	autorizado := p.Status == model.StatusPedidoAprovado || p.Status == model.StatusPedidoParcial
	if autorizado && p.PrazoAutorizado == nil {
		errs["prazo_autorizado"] = "prazo autorizado é obrigatório para pedidos aprovados ou parciais"
	}
	if p.PrazoAutorizado != nil && p.DataDecisao != nil && !p.PrazoAutorizado.After(*p.DataDecisao) {
		errs["prazo_autorizado"] = "o prazo autorizado deve ser posterior à data de decisão"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
