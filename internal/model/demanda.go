package model

import (
	"time"

	"github.com/google/uuid"
)

// StatusPedido enum constants for PedidoProrrogacao.
const (
	StatusPedidoSolicitado = "solicitado"
	StatusPedidoAprovado   = "aprovado"
	StatusPedidoReprovado  = "reprovado"
	StatusPedidoParcial    = "parcial"
)

// Demanda is a child obligation of a Processo, subject to a deadline that
// extension requests may push out. The effective deadline is derived at
// read time from the associated pedidos; nothing is cached.
type Demanda struct {
	ID              uuid.UUID    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProcessoID      uuid.UUID    `gorm:"type:uuid;not null;index" json:"processo_id"`
	Processo        *Processo    `gorm:"foreignKey:ProcessoID;constraint:OnDelete:CASCADE" json:"-"`
	Assunto         string       `gorm:"type:varchar(200);not null" json:"assunto"`
	TipoDemandaID   *uuid.UUID   `gorm:"type:uuid" json:"tipo_demanda_id"`
	TipoDemanda     *TipoDemanda `gorm:"foreignKey:TipoDemandaID;constraint:OnDelete:RESTRICT" json:"tipo_demanda,omitempty"`
	SituacaoID      uuid.UUID    `gorm:"type:uuid;not null;index" json:"situacao_id"`
	Situacao        *Situacao    `gorm:"foreignKey:SituacaoID;constraint:OnDelete:RESTRICT" json:"situacao,omitempty"`
	Prioridade      string       `gorm:"type:varchar(10);not null;default:'normal'" json:"prioridade"`
	AtribuicaoID    *uuid.UUID   `gorm:"type:uuid" json:"atribuicao_id"`
	Atribuicao      *Atribuicao  `gorm:"foreignKey:AtribuicaoID;constraint:OnDelete:RESTRICT" json:"atribuicao,omitempty"`
	AreaDemandadaID *uuid.UUID   `gorm:"type:uuid" json:"area_demandada_id"`
	AreaDemandada   *Unidade     `gorm:"foreignKey:AreaDemandadaID;constraint:OnDelete:RESTRICT" json:"area_demandada,omitempty"`

	PrazoInicial      *time.Time `gorm:"type:date" json:"prazo_inicial"`
	DocumentoResposta string     `gorm:"type:varchar(50)" json:"documento_resposta"`
	Observacao        string     `gorm:"type:text" json:"observacao"`

	Pedidos []PedidoProrrogacao `gorm:"foreignKey:DemandaID;constraint:OnDelete:CASCADE" json:"pedidos_prorrogacao"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"data_criacao"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"data_atualizacao"`
}

// PedidoProrrogacao is a request to push out a Demanda's deadline.
// Temporal invariants are enforced by the demanda service before any write:
// prazo_solicitado after data_pedido, decided statuses carry data_decisao,
// aprovado/parcial carry prazo_autorizado after data_decisao.
type PedidoProrrogacao struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	DemandaID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"demanda_id"`
	DataPedido      time.Time  `gorm:"type:date;not null" json:"data_pedido"`
	PrazoSolicitado time.Time  `gorm:"type:date;not null" json:"prazo_solicitado"`
	DataDecisao     *time.Time `gorm:"type:date" json:"data_decisao"`
	PrazoAutorizado *time.Time `gorm:"type:date" json:"prazo_autorizado"`
	Status          string     `gorm:"type:varchar(15);not null;default:'solicitado'" json:"status"`
	Justificativa   string     `gorm:"type:text" json:"justificativa"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
