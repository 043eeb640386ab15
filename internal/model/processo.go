package model

import (
	"time"

	"github.com/google/uuid"
)

// TipoProcesso enum constants. "processo" is the root type; the allowed
// parent/child pairs live in service.HierarquiaProcesso.
const (
	TipoProcessoRaiz = "processo"
	TipoAcordao      = "acordao"
	TipoRelatorio    = "relatorio"
	TipoRecomendacao = "recomendacao"
	TipoDeterminacao = "determinacao"
	TipoAcao         = "acao"
	TipoDemandaFilha = "demanda"
)

// Prioridade enum constants
const (
	PrioridadeNormal  = "normal"
	PrioridadeAlta    = "alta"
	PrioridadeUrgente = "urgente"
)

// OrgaoDemandante enum constants. TCU, CGU and AUDGER carry a fixed
// external process number format; MD and OUTROS are free-form.
const (
	OrgaoTCU    = "TCU"
	OrgaoCGU    = "CGU"
	OrgaoAUDGER = "AUDGER"
	OrgaoMD     = "MD"
	OrgaoOutros = "OUTROS"
)

// Processo is the top-level audited work item. Identificador is assigned
// once at creation and never changes; all other writes flow through the
// save-with-history path so every change lands in HistoricoProcesso.
type Processo struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Identificador string     `gorm:"type:varchar(10);uniqueIndex;not null" json:"identificador"`
	Assunto       string     `gorm:"type:varchar(200);not null" json:"assunto"`
	Tipo          string     `gorm:"type:varchar(20);not null;index" json:"tipo"`
	SituacaoID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"situacao_id"`
	Situacao      *Situacao  `gorm:"foreignKey:SituacaoID;constraint:OnDelete:RESTRICT" json:"situacao,omitempty"`
	Prioridade    string     `gorm:"type:varchar(10);not null;default:'normal'" json:"prioridade"`
	CategoriaID   *uuid.UUID `gorm:"type:uuid;index" json:"categoria_id"`
	Categoria     *Categoria `gorm:"foreignKey:CategoriaID;constraint:OnDelete:RESTRICT" json:"categoria,omitempty"`

	// Self-relation by stable ID; children are expanded via the tree read,
	// never held as live references.
	PaiID *uuid.UUID `gorm:"type:uuid;index" json:"pai_id"`

	// Campos do tipo raiz 'processo'
	OrgaoDemandante       string `gorm:"type:varchar(10)" json:"orgao_demandante"`
	NumeroProcessoExterno string `gorm:"type:varchar(50)" json:"numero_processo_externo"`
	AnoSolicitacao        *int   `json:"ano_solicitacao"`
	NumeroSEI             string `gorm:"type:varchar(50)" json:"numero_sei"`
	CorrelacaoLAR         bool   `gorm:"default:false" json:"correlacao_lar"`

	// Campos de 'demanda', 'recomendacao', 'determinacao'
	AtribuicaoID           *uuid.UUID  `gorm:"type:uuid" json:"atribuicao_id"`
	Atribuicao             *Atribuicao `gorm:"foreignKey:AtribuicaoID;constraint:OnDelete:RESTRICT" json:"atribuicao,omitempty"`
	PrazoInicial           *time.Time  `gorm:"type:date" json:"prazo_inicial"`
	SolicitacaoProrrogacao *bool       `json:"solicitacao_prorrogacao"`
	Reiterado              bool        `gorm:"default:false" json:"reiterado"`
	DataReiteracao         *time.Time  `gorm:"type:date" json:"data_reiteracao"`
	IdentificacaoAchados   string      `gorm:"type:text" json:"identificacao_achados"`
	DocumentoResposta      string      `gorm:"type:varchar(50)" json:"documento_resposta"`

	// Campos de 'acao'
	AreaDemandadaID     *uuid.UUID `gorm:"type:uuid" json:"area_demandada_id"`
	AreaDemandada       *Unidade   `gorm:"foreignKey:AreaDemandadaID;constraint:OnDelete:RESTRICT" json:"area_demandada,omitempty"`
	DuracaoExecucao     string     `gorm:"type:varchar(100)" json:"duracao_execucao"`
	FormaExecucao       string     `gorm:"type:text" json:"forma_execucao"`
	ResultadoPretendido string     `gorm:"type:text" json:"resultado_pretendido"`

	// Campos de 'acordao' e 'relatorio'
	DocumentoSEI     string     `gorm:"type:varchar(50)" json:"documento_sei"`
	DataDocumentoSEI *time.Time `gorm:"type:date" json:"data_documento_sei"`

	Descricao  string `gorm:"type:text" json:"descricao"`
	Observacao string `gorm:"type:text" json:"observacao"`

	UnidadesAuditadas     []Unidade `gorm:"many2many:processo_unidades_auditadas;" json:"unidades_auditadas"`
	AuditoresResponsaveis []Auditor `gorm:"many2many:processo_auditores_responsaveis;" json:"auditores_responsaveis"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"data_criacao"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"data_atualizacao"`
}
