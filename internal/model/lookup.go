package model

import (
	"time"

	"github.com/google/uuid"
)

// Lookup entities referenced by Processo and Demanda. Foreign keys into
// these tables use RESTRICT so a record in use cannot be deleted out from
// under its processos.

// GrupoAuditor groups auditors by team.
type GrupoAuditor struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Nome      string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"nome"`
	Descricao string    `gorm:"type:text" json:"descricao"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Auditor is a person responsible for processos.
type Auditor struct {
	ID        uuid.UUID     `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Nome      string        `gorm:"type:varchar(100);not null;index" json:"nome"`
	GrupoID   *uuid.UUID    `gorm:"type:uuid;index" json:"grupo_id"`
	Grupo     *GrupoAuditor `gorm:"foreignKey:GrupoID;constraint:OnDelete:SET NULL" json:"grupo,omitempty"`
	Telefone  string        `gorm:"type:varchar(20)" json:"telefone"`
	Email     string        `gorm:"type:varchar(255)" json:"email"`
	CreatedAt time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

// Unidade is an audited or demanded organizational unit.
type Unidade struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Nome      string    `gorm:"type:varchar(250);uniqueIndex;not null" json:"nome"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Atribuicao is the internal area a record is assigned to.
type Atribuicao struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Nome      string    `gorm:"type:varchar(200);uniqueIndex;not null" json:"nome"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Situacao is the workflow status of a Processo or Demanda.
type Situacao struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Nome      string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"nome"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Categoria classifies processos; valor orders them in listings.
type Categoria struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Nome      string    `gorm:"type:varchar(100);not null" json:"nome"`
	Valor     int       `gorm:"uniqueIndex;not null" json:"valor"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TipoDemanda classifies demandas.
type TipoDemanda struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Nome      string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"nome"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
