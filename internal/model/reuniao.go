package model

import (
	"time"

	"github.com/google/uuid"
)

// TipoReuniao enum constants
const (
	ReuniaoApresentacao       = "apresentacao"
	ReuniaoAlinhamentoInterno = "alinhamento_interno"
	ReuniaoAlinhamentoExterno = "alinhamento_externo"
	ReuniaoBuscaSolucoes      = "busca_solucoes"
	ReuniaoEncerramento       = "encerramento"
)

// Reuniao is a meeting held in the context of a Processo.
type Reuniao struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProcessoID    uuid.UUID `gorm:"type:uuid;not null;index" json:"processo_id"`
	Processo      *Processo `gorm:"foreignKey:ProcessoID;constraint:OnDelete:CASCADE" json:"-"`
	Data          time.Time `gorm:"not null" json:"data"`
	Tipo          string    `gorm:"type:varchar(30);not null" json:"tipo"`
	Participantes string    `gorm:"type:text" json:"participantes"`
	Pauta         string    `gorm:"type:text;not null" json:"pauta"`
	Resultado     string    `gorm:"type:text" json:"resultado"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
