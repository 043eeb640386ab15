package database

import (
	"log"

	"sigoc/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM.
// TranslateError is on so driver errors surface as gorm.ErrDuplicatedKey
// and gorm.ErrForeignKeyViolated; the identifier retry and the lookup
// delete handling depend on that.
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	// Auto-migrate core models
	err = db.AutoMigrate(
		&model.Usuario{},
		&model.RefreshToken{},
		&model.GrupoAuditor{},
		&model.Auditor{},
		&model.Unidade{},
		&model.Atribuicao{},
		&model.Situacao{},
		&model.Categoria{},
		&model.TipoDemanda{},
		&model.Processo{},
		&model.HistoricoProcesso{},
		&model.Demanda{},
		&model.PedidoProrrogacao{},
		&model.Reuniao{},
	)
	if err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	return db, nil
}
