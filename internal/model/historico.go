package model

import (
	"time"

	"github.com/google/uuid"
)

// TipoAlteracao enum constants for HistoricoProcesso.
const (
	AlteracaoCriacao     = "CRIACAO"
	AlteracaoAtualizacao = "ATUALIZACAO"
)

// HistoricoProcesso is one immutable audit-trail row for a Processo.
// Rows are created only by the history recorder, never by handlers, and
// are removed only by cascade when the Processo itself is deleted.
//
// Alteracoes holds a JSON document:
//   - creation:   {"status": "...", "dados_iniciais": {field: value}}
//   - update:     {field: {"anterior": old, "novo": new}}
//   - m2m change: {field: {"adicionado": [names]}} / {"removido": [names]}
//     or the clear sentinel {"status": "Todos os itens foram removidos."}
type HistoricoProcesso struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProcessoID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"processo_id"`
	Processo      *Processo  `gorm:"foreignKey:ProcessoID;constraint:OnDelete:CASCADE" json:"-"`
	Data          time.Time  `gorm:"not null;index" json:"data"`
	AlteradoPorID *uuid.UUID `gorm:"type:uuid" json:"alterado_por_id"` // nil for system-initiated changes
	AlteradoPor   *Usuario   `gorm:"foreignKey:AlteradoPorID;constraint:OnDelete:SET NULL" json:"alterado_por,omitempty"`
	TipoAlteracao string     `gorm:"type:varchar(20);not null" json:"tipo_alteracao"`
	Alteracoes    string     `gorm:"type:jsonb;not null;default:'{}'" json:"alteracoes"`
}
