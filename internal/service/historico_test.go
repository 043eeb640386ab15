package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"sigoc/internal/middleware"
	"sigoc/internal/model"

	"github.com/google/uuid"
)

type fakeHistoricoRepo struct {
	entries []model.HistoricoProcesso
}

func (f *fakeHistoricoRepo) Append(_ context.Context, entry *model.HistoricoProcesso) error {
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeHistoricoRepo) ListByProcesso(_ context.Context, processoID uuid.UUID, _, _ int) ([]model.HistoricoProcesso, int64, error) {
	var out []model.HistoricoProcesso
	for _, e := range f.entries {
		if e.ProcessoID == processoID {
			out = append(out, e)
		}
	}
	return out, int64(len(out)), nil
}

func newTestRecorder() (*HistoryRecorder, *fakeHistoricoRepo) {
	repo := &fakeHistoricoRepo{}
	return NewHistoryRecorder(repo), repo
}

func TestDiffSnapshotsSingleField(t *testing.T) {
	old := Snapshot{"assunto": "antigo", "prioridade": "normal"}
	current := Snapshot{"assunto": "novo", "prioridade": "normal"}

	changes := DiffSnapshots(old, current)
	if len(changes) != 1 {
		t.Fatalf("expected 1 change, got %d: %v", len(changes), changes)
	}
	change := changes["assunto"]
	if change.Anterior != "antigo" || change.Novo != "novo" {
		t.Errorf("got %+v", change)
	}
}

func TestDiffSnapshotsEmptyBecomesPlaceholder(t *testing.T) {
	changes := DiffSnapshots(Snapshot{"observacao": ""}, Snapshot{"observacao": "anotado"})
	if changes["observacao"].Anterior != "N/A" {
		t.Errorf("expected N/A placeholder, got %+v", changes["observacao"])
	}

	changes = DiffSnapshots(Snapshot{"observacao": "anotado"}, Snapshot{"observacao": ""})
	if changes["observacao"].Novo != "N/A" {
		t.Errorf("expected N/A placeholder, got %+v", changes["observacao"])
	}
}

func TestDiffSnapshotsNoChange(t *testing.T) {
	s := Snapshot{"assunto": "x", "tipo": "processo"}
	if changes := DiffSnapshots(s, s); len(changes) != 0 {
		t.Errorf("expected no changes, got %v", changes)
	}
}

func TestSnapshotProcessoUsaNomesDasAssociacoes(t *testing.T) {
	catID := uuid.New()
	p := &model.Processo{
		SituacaoID:  uuid.New(),
		Situacao:    &model.Situacao{Nome: "Em andamento"},
		CategoriaID: &catID,
	}

	s := SnapshotProcesso(p)
	if s["situacao"] != "Em andamento" {
		t.Errorf("expected preloaded name, got %q", s["situacao"])
	}
	// Falls back to the raw id when the association is not loaded.
	if s["categoria"] != catID.String() {
		t.Errorf("expected id fallback, got %q", s["categoria"])
	}
}

func TestSnapshotProcessoExcluiTimestamps(t *testing.T) {
	p := &model.Processo{CreatedAt: time.Now(), UpdatedAt: time.Now()}
	s := SnapshotProcesso(p)
	for field := range s {
		if field == "data_criacao" || field == "data_atualizacao" || field == "created_at" || field == "updated_at" {
			t.Errorf("system timestamp %q leaked into snapshot", field)
		}
	}
}

func TestRecordCreation(t *testing.T) {
	recorder, repo := newTestRecorder()
	userID := uuid.New()
	ctx := middleware.WithActor(context.Background(), userID)

	p := &model.Processo{
		ID:            uuid.New(),
		Identificador: "0000012345",
		Assunto:       "Auditoria",
		Tipo:          model.TipoProcessoRaiz,
		SituacaoID:    uuid.New(),
		Situacao:      &model.Situacao{Nome: "Aberto"},
		Prioridade:    model.PrioridadeAlta,
	}
	if err := recorder.RecordCreation(ctx, p); err != nil {
		t.Fatal(err)
	}

	if len(repo.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(repo.entries))
	}
	entry := repo.entries[0]
	if entry.TipoAlteracao != model.AlteracaoCriacao {
		t.Errorf("tipo_alteracao = %q", entry.TipoAlteracao)
	}
	if entry.AlteradoPorID == nil || *entry.AlteradoPorID != userID {
		t.Errorf("expected actor %s, got %v", userID, entry.AlteradoPorID)
	}

	var payload struct {
		Status        string            `json:"status"`
		DadosIniciais map[string]string `json:"dados_iniciais"`
	}
	if err := json.Unmarshal([]byte(entry.Alteracoes), &payload); err != nil {
		t.Fatal(err)
	}
	if payload.Status != "Processo criado." {
		t.Errorf("status = %q", payload.Status)
	}
	if payload.DadosIniciais["assunto"] != "Auditoria" {
		t.Errorf("dados_iniciais = %v", payload.DadosIniciais)
	}
	// Empty and false-valued fields stay out of the creation snapshot.
	if _, ok := payload.DadosIniciais["observacao"]; ok {
		t.Error("empty field recorded in dados_iniciais")
	}
	if _, ok := payload.DadosIniciais["reiterado"]; ok {
		t.Error("false flag recorded in dados_iniciais")
	}
}

func TestRecordUpdateNoChangeNoEntry(t *testing.T) {
	recorder, repo := newTestRecorder()
	p := &model.Processo{ID: uuid.New(), Assunto: "igual"}

	before := SnapshotProcesso(p)
	recorded, err := recorder.RecordUpdate(context.Background(), p, before)
	if err != nil {
		t.Fatal(err)
	}
	if recorded {
		t.Error("expected no entry for a no-op save")
	}
	if len(repo.entries) != 0 {
		t.Errorf("expected 0 entries, got %d", len(repo.entries))
	}
}

func TestRecordUpdateDiff(t *testing.T) {
	recorder, repo := newTestRecorder()
	p := &model.Processo{ID: uuid.New(), Assunto: "antes", Prioridade: model.PrioridadeNormal}

	before := SnapshotProcesso(p)
	p.Assunto = "depois"
	recorded, err := recorder.RecordUpdate(context.Background(), p, before)
	if err != nil {
		t.Fatal(err)
	}
	if !recorded {
		t.Fatal("expected an entry")
	}

	entry := repo.entries[0]
	if entry.TipoAlteracao != model.AlteracaoAtualizacao {
		t.Errorf("tipo_alteracao = %q", entry.TipoAlteracao)
	}
	if entry.AlteradoPorID != nil {
		t.Errorf("expected nil actor without authentication, got %v", entry.AlteradoPorID)
	}

	var payload map[string]FieldChange
	if err := json.Unmarshal([]byte(entry.Alteracoes), &payload); err != nil {
		t.Fatal(err)
	}
	if len(payload) != 1 {
		t.Fatalf("expected 1 field, got %v", payload)
	}
	if payload["assunto"].Anterior != "antes" || payload["assunto"].Novo != "depois" {
		t.Errorf("got %+v", payload["assunto"])
	}
}

func TestRecordRelationEvents(t *testing.T) {
	recorder, repo := newTestRecorder()
	p := &model.Processo{ID: uuid.New()}
	ctx := context.Background()

	if err := recorder.RecordRelationAdd(ctx, p, "unidades_auditadas", []string{"Comando Logístico"}); err != nil {
		t.Fatal(err)
	}
	if err := recorder.RecordRelationRemove(ctx, p, "unidades_auditadas", []string{"Hospital Central"}); err != nil {
		t.Fatal(err)
	}
	if err := recorder.RecordRelationClear(ctx, p, "auditores_responsaveis"); err != nil {
		t.Fatal(err)
	}
	// Empty name lists produce no entry at all.
	if err := recorder.RecordRelationAdd(ctx, p, "unidades_auditadas", nil); err != nil {
		t.Fatal(err)
	}

	if len(repo.entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(repo.entries))
	}

	var added map[string]map[string][]string
	if err := json.Unmarshal([]byte(repo.entries[0].Alteracoes), &added); err != nil {
		t.Fatal(err)
	}
	if got := added["unidades_auditadas"]["adicionado"]; len(got) != 1 || got[0] != "Comando Logístico" {
		t.Errorf("adicionado = %v", got)
	}

	var cleared map[string]map[string]string
	if err := json.Unmarshal([]byte(repo.entries[2].Alteracoes), &cleared); err != nil {
		t.Fatal(err)
	}
	if cleared["auditores_responsaveis"]["status"] != ClearSentinel {
		t.Errorf("clear payload = %v", cleared)
	}
}
