package service

import (
	"strings"
	"testing"

	"sigoc/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newDryRunDB opens a gorm handle that only builds SQL, never touching a
// database, so the aggregation queries can be checked against the schema
// the models actually declare.
func newDryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost user=sigoc dbname=sigoc sslmode=disable"}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	if err != nil {
		t.Fatalf("open dry-run db: %v", err)
	}
	return db
}

func TestConsultaPorSituacaoNaoReferenciaSoftDelete(t *testing.T) {
	db := newDryRunDB(t)

	var rows []rowCount
	stmt := consultaPorSituacao(db).Scan(&rows).Statement
	sql := stmt.SQL.String()

	if !strings.Contains(sql, "JOIN situacoes ON situacoes.id = processos.situacao_id") {
		t.Errorf("missing situacoes join: %s", sql)
	}
	// Processos are hard-deleted; the table has no deleted_at column and
	// the query must not pretend otherwise.
	if strings.Contains(sql, "deleted_at") {
		t.Errorf("query references a column the schema never creates: %s", sql)
	}
}

func TestContarPrazosUsaPrazoEfetivo(t *testing.T) {
	hoje := dia(2026, 6, 1)
	vencido := dia(2026, 5, 1)
	prorrogado := dia(2026, 7, 1)
	decidido := dia(2026, 4, 20)

	demandas := []model.Demanda{
		// Initial deadline expired, but an approved prorrogação pushed
		// the effective deadline past today.
		{
			PrazoInicial: &vencido,
			Pedidos: []model.PedidoProrrogacao{{
				DataPedido:      dia(2026, 4, 15),
				PrazoSolicitado: prorrogado,
				DataDecisao:     &decidido,
				PrazoAutorizado: &prorrogado,
				Status:          model.StatusPedidoAprovado,
			}},
		},
		// Genuinely late, no prorrogação.
		{PrazoInicial: &vencido},
		// No deadline at all, counts in neither bucket.
		{},
	}

	noPrazo, atrasadas := contarPrazos(demandas, hoje)
	if noPrazo != 1 {
		t.Errorf("noPrazo = %d, want 1", noPrazo)
	}
	if atrasadas != 1 {
		t.Errorf("atrasadas = %d, want 1", atrasadas)
	}
}

func TestContarPrazosReprovadoNaoEstende(t *testing.T) {
	hoje := dia(2026, 6, 1)
	vencido := dia(2026, 5, 1)
	pedido := dia(2026, 7, 1)
	decidido := dia(2026, 4, 20)

	demandas := []model.Demanda{{
		PrazoInicial: &vencido,
		Pedidos: []model.PedidoProrrogacao{{
			DataPedido:      dia(2026, 4, 15),
			PrazoSolicitado: pedido,
			DataDecisao:     &decidido,
			Status:          model.StatusPedidoReprovado,
		}},
	}}

	noPrazo, atrasadas := contarPrazos(demandas, hoje)
	if noPrazo != 0 || atrasadas != 1 {
		t.Errorf("noPrazo = %d, atrasadas = %d; a rejected pedido must not extend the deadline", noPrazo, atrasadas)
	}
}

func TestComPercentual(t *testing.T) {
	out := comPercentual([]rowCount{
		{Rotulo: "processo", Quantidade: 2},
		{Rotulo: "acordao", Quantidade: 1},
	}, 3)

	if len(out) != 2 {
		t.Fatalf("len = %d", len(out))
	}
	if !out[0].Percentual.Equal(decimal.RequireFromString("66.67")) {
		t.Errorf("percentual = %s, want 66.67", out[0].Percentual)
	}
	if !out[1].Percentual.Equal(decimal.RequireFromString("33.33")) {
		t.Errorf("percentual = %s, want 33.33", out[1].Percentual)
	}
}
