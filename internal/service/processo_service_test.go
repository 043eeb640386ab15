package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"sigoc/internal/model"
	"sigoc/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- in-memory fakes ---

type fakeProcessoRepo struct {
	byID map[uuid.UUID]*model.Processo
}

func newFakeProcessoRepo() *fakeProcessoRepo {
	return &fakeProcessoRepo{byID: make(map[uuid.UUID]*model.Processo)}
}

func (f *fakeProcessoRepo) Create(_ context.Context, p *model.Processo) error {
	for _, existing := range f.byID {
		if existing.Identificador == p.Identificador {
			return gorm.ErrDuplicatedKey
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakeProcessoRepo) Update(_ context.Context, p *model.Processo) error {
	if _, ok := f.byID[p.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakeProcessoRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.byID, id)
	return nil
}

func (f *fakeProcessoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Processo, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProcessoRepo) FindByIdentificador(_ context.Context, identificador string) (*model.Processo, error) {
	for _, p := range f.byID {
		if p.Identificador == identificador {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeProcessoRepo) List(_ context.Context, _ repository.ProcessoFilter, _, _ int) ([]model.Processo, int64, error) {
	var out []model.Processo
	for _, p := range f.byID {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (f *fakeProcessoRepo) ListFilhos(_ context.Context, paiID uuid.UUID) ([]model.Processo, error) {
	var out []model.Processo
	for _, p := range f.byID {
		if p.PaiID != nil && *p.PaiID == paiID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProcessoRepo) ReplaceUnidadesAuditadas(_ context.Context, p *model.Processo, unidades []model.Unidade) error {
	stored, ok := f.byID[p.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.UnidadesAuditadas = unidades
	return nil
}

func (f *fakeProcessoRepo) ReplaceAuditoresResponsaveis(_ context.Context, p *model.Processo, auditores []model.Auditor) error {
	stored, ok := f.byID[p.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.AuditoresResponsaveis = auditores
	return nil
}

type fakeLookupRepo[T any] struct {
	items map[uuid.UUID]T
	id    func(T) uuid.UUID
	nome  func(T) string
}

func (f *fakeLookupRepo[T]) Create(_ context.Context, entity *T) error {
	f.items[f.id(*entity)] = *entity
	return nil
}

func (f *fakeLookupRepo[T]) Update(_ context.Context, entity *T) error {
	f.items[f.id(*entity)] = *entity
	return nil
}

func (f *fakeLookupRepo[T]) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.items, id)
	return nil
}

func (f *fakeLookupRepo[T]) FindByID(_ context.Context, id uuid.UUID) (*T, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &item, nil
}

func (f *fakeLookupRepo[T]) FindByNome(_ context.Context, nome string) (*T, error) {
	for _, item := range f.items {
		if f.nome(item) == nome {
			return &item, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLookupRepo[T]) List(_ context.Context, _ string, _, _ int) ([]T, int64, error) {
	var out []T
	for _, item := range f.items {
		out = append(out, item)
	}
	return out, int64(len(out)), nil
}

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type fakeNotifier struct {
	events []string
}

func (f *fakeNotifier) NotifyProcessoChange(identificador, tipoAlteracao string) {
	f.events = append(f.events, identificador+":"+tipoAlteracao)
}

// --- fixture ---

type processoFixture struct {
	svc         *processoService
	repo        *fakeProcessoRepo
	historico   *fakeHistoricoRepo
	unidades    *fakeLookupRepo[model.Unidade]
	auditores   *fakeLookupRepo[model.Auditor]
	situacoes   *fakeLookupRepo[model.Situacao]
	categorias  *fakeLookupRepo[model.Categoria]
	atribuicoes *fakeLookupRepo[model.Atribuicao]
	notifier    *fakeNotifier
	situacaoID  uuid.UUID
}

func newProcessoFixture(t *testing.T) *processoFixture {
	t.Helper()

	f := &processoFixture{
		repo:      newFakeProcessoRepo(),
		historico: &fakeHistoricoRepo{},
		notifier:  &fakeNotifier{},
	}
	f.unidades = &fakeLookupRepo[model.Unidade]{
		items: make(map[uuid.UUID]model.Unidade),
		id:    func(u model.Unidade) uuid.UUID { return u.ID },
		nome:  func(u model.Unidade) string { return u.Nome },
	}
	f.auditores = &fakeLookupRepo[model.Auditor]{
		items: make(map[uuid.UUID]model.Auditor),
		id:    func(a model.Auditor) uuid.UUID { return a.ID },
		nome:  func(a model.Auditor) string { return a.Nome },
	}
	f.situacoes = &fakeLookupRepo[model.Situacao]{
		items: make(map[uuid.UUID]model.Situacao),
		id:    func(s model.Situacao) uuid.UUID { return s.ID },
		nome:  func(s model.Situacao) string { return s.Nome },
	}

	f.categorias = &fakeLookupRepo[model.Categoria]{
		items: make(map[uuid.UUID]model.Categoria),
		id:    func(c model.Categoria) uuid.UUID { return c.ID },
		nome:  func(c model.Categoria) string { return c.Nome },
	}
	f.atribuicoes = &fakeLookupRepo[model.Atribuicao]{
		items: make(map[uuid.UUID]model.Atribuicao),
		id:    func(a model.Atribuicao) uuid.UUID { return a.ID },
		nome:  func(a model.Atribuicao) string { return a.Nome },
	}

	f.situacaoID = uuid.New()
	f.situacoes.items[f.situacaoID] = model.Situacao{ID: f.situacaoID, Nome: "Em andamento"}

	recorder := NewHistoryRecorder(f.historico)
	svc := NewProcessoService(f.repo, f.historico, f.unidades, f.auditores, f.situacoes, f.categorias, f.atribuicoes, recorder, fakeTxManager{}, f.notifier)
	f.svc = svc.(*processoService)
	return f
}

func (f *processoFixture) createRequest() CreateProcessoRequest {
	ano := 2024
	return CreateProcessoRequest{
		Assunto:               "Auditoria de obras",
		Tipo:                  model.TipoProcessoRaiz,
		SituacaoID:            f.situacaoID,
		OrgaoDemandante:       model.OrgaoCGU,
		NumeroProcessoExterno: "01229074",
		NumeroSEI:             "00000.000123/2024-01",
		AnoSolicitacao:        &ano,
	}
}

// --- tests ---

func TestProcessoCreateGeraIdentificador(t *testing.T) {
	f := newProcessoFixture(t)

	p, err := f.svc.Create(context.Background(), f.createRequest())
	if err != nil {
		t.Fatal(err)
	}

	if len(p.Identificador) != 10 {
		t.Errorf("identificador %q has %d digits", p.Identificador, len(p.Identificador))
	}
	for _, r := range p.Identificador {
		if r < '0' || r > '9' {
			t.Errorf("identificador %q contains non-digit", p.Identificador)
		}
	}
	if p.Prioridade != model.PrioridadeNormal {
		t.Errorf("expected default prioridade, got %q", p.Prioridade)
	}

	if len(f.historico.entries) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(f.historico.entries))
	}
	if f.historico.entries[0].TipoAlteracao != model.AlteracaoCriacao {
		t.Errorf("tipo_alteracao = %q", f.historico.entries[0].TipoAlteracao)
	}
	if len(f.notifier.events) != 1 || !strings.HasSuffix(f.notifier.events[0], ":"+model.AlteracaoCriacao) {
		t.Errorf("notifier events = %v", f.notifier.events)
	}
}

func TestProcessoCreateRetryOnDuplicateIdentifier(t *testing.T) {
	f := newProcessoFixture(t)

	first, err := f.svc.Create(context.Background(), f.createRequest())
	if err != nil {
		t.Fatal(err)
	}

	ids := []string{first.Identificador, "9999999999"}
	f.svc.generateID = func() string {
		id := ids[0]
		if len(ids) > 1 {
			ids = ids[1:]
		}
		return id
	}

	second, err := f.svc.Create(context.Background(), f.createRequest())
	if err != nil {
		t.Fatal(err)
	}
	if second.Identificador != "9999999999" {
		t.Errorf("expected retry to pick fresh identifier, got %q", second.Identificador)
	}
	if second.Identificador == first.Identificador {
		t.Error("identifier collision persisted")
	}
}

func TestProcessoCreateEsgotaTentativas(t *testing.T) {
	f := newProcessoFixture(t)

	first, err := f.svc.Create(context.Background(), f.createRequest())
	if err != nil {
		t.Fatal(err)
	}

	// Always collides.
	f.svc.generateID = func() string { return first.Identificador }

	if _, err := f.svc.Create(context.Background(), f.createRequest()); err == nil {
		t.Fatal("expected failure after exhausting retries")
	}
}

func TestProcessoCreateInvalidoNaoPersiste(t *testing.T) {
	f := newProcessoFixture(t)

	req := f.createRequest()
	req.NumeroProcessoExterno = ""

	_, err := f.svc.Create(context.Background(), req)
	if err == nil {
		t.Fatal("expected validation error")
	}
	var fieldErrs FieldErrors
	if !errors.As(err, &fieldErrs) {
		t.Fatalf("expected FieldErrors, got %T", err)
	}
	if len(f.repo.byID) != 0 {
		t.Error("invalid record was persisted")
	}
	if len(f.historico.entries) != 0 {
		t.Error("invalid record produced history")
	}
}

func TestProcessoUpdateRegistraDiff(t *testing.T) {
	f := newProcessoFixture(t)

	p, err := f.svc.Create(context.Background(), f.createRequest())
	if err != nil {
		t.Fatal(err)
	}

	assunto := "Auditoria de obras revisada"
	updated, err := f.svc.Update(context.Background(), p.Identificador, UpdateProcessoRequest{Assunto: &assunto})
	if err != nil {
		t.Fatal(err)
	}

	if updated.Identificador != p.Identificador {
		t.Errorf("identificador changed from %q to %q", p.Identificador, updated.Identificador)
	}
	if updated.Assunto != assunto {
		t.Errorf("assunto = %q", updated.Assunto)
	}

	// Creation entry plus one update entry.
	if len(f.historico.entries) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(f.historico.entries))
	}
	last := f.historico.entries[len(f.historico.entries)-1]
	if last.TipoAlteracao != model.AlteracaoAtualizacao {
		t.Errorf("tipo_alteracao = %q", last.TipoAlteracao)
	}
	if !strings.Contains(last.Alteracoes, "Auditoria de obras revisada") {
		t.Errorf("diff payload missing new value: %s", last.Alteracoes)
	}
}

func TestProcessoUpdateSemMudancaSemEntrada(t *testing.T) {
	f := newProcessoFixture(t)

	p, err := f.svc.Create(context.Background(), f.createRequest())
	if err != nil {
		t.Fatal(err)
	}
	entriesBefore := len(f.historico.entries)

	if _, err := f.svc.Update(context.Background(), p.Identificador, UpdateProcessoRequest{}); err != nil {
		t.Fatal(err)
	}
	if len(f.historico.entries) != entriesBefore {
		t.Errorf("no-op update produced history entries")
	}
}

func TestProcessoUpdateMesmaSituacaoNaoGeraEntrada(t *testing.T) {
	f := newProcessoFixture(t)

	p, err := f.svc.Create(context.Background(), f.createRequest())
	if err != nil {
		t.Fatal(err)
	}
	// The real repository preloads the lookups on every find.
	sit := f.situacoes.items[f.situacaoID]
	f.repo.byID[p.ID].Situacao = &sit
	entriesBefore := len(f.historico.entries)

	sitID := f.situacaoID
	if _, err := f.svc.Update(context.Background(), p.Identificador, UpdateProcessoRequest{SituacaoID: &sitID}); err != nil {
		t.Fatal(err)
	}
	if len(f.historico.entries) != entriesBefore {
		last := f.historico.entries[len(f.historico.entries)-1]
		t.Errorf("resending the same situacao_id produced a history entry: %s", last.Alteracoes)
	}
}

func TestProcessoUpdateSituacaoDiffUsaNomes(t *testing.T) {
	f := newProcessoFixture(t)

	suspensoID := uuid.New()
	f.situacoes.items[suspensoID] = model.Situacao{ID: suspensoID, Nome: "Suspenso"}

	p, err := f.svc.Create(context.Background(), f.createRequest())
	if err != nil {
		t.Fatal(err)
	}
	sit := f.situacoes.items[f.situacaoID]
	f.repo.byID[p.ID].Situacao = &sit

	updated, err := f.svc.Update(context.Background(), p.Identificador, UpdateProcessoRequest{SituacaoID: &suspensoID})
	if err != nil {
		t.Fatal(err)
	}

	last := f.historico.entries[len(f.historico.entries)-1]
	if !strings.Contains(last.Alteracoes, `"anterior":"Em andamento"`) || !strings.Contains(last.Alteracoes, `"novo":"Suspenso"`) {
		t.Errorf("diff should record display names: %s", last.Alteracoes)
	}
	if strings.Contains(last.Alteracoes, suspensoID.String()) {
		t.Errorf("raw id leaked into the diff payload: %s", last.Alteracoes)
	}
	if updated.Situacao == nil || updated.Situacao.Nome != "Suspenso" {
		t.Errorf("update response missing the nested situação: %+v", updated.Situacao)
	}
}

func TestProcessoArquivarJaConcluidoNaoGeraEntrada(t *testing.T) {
	f := newProcessoFixture(t)

	concluidoID := uuid.New()
	f.situacoes.items[concluidoID] = model.Situacao{ID: concluidoID, Nome: "Concluído"}

	p, err := f.svc.Create(context.Background(), f.createRequest())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Arquivar(context.Background(), p.Identificador); err != nil {
		t.Fatal(err)
	}
	entriesBefore := len(f.historico.entries)

	if _, err := f.svc.Arquivar(context.Background(), p.Identificador); err != nil {
		t.Fatal(err)
	}
	if len(f.historico.entries) != entriesBefore {
		last := f.historico.entries[len(f.historico.entries)-1]
		t.Errorf("arquivar on a concluded processo produced a history entry: %s", last.Alteracoes)
	}
}

func TestProcessoUpdateNaoEncontrado(t *testing.T) {
	f := newProcessoFixture(t)

	_, err := f.svc.Update(context.Background(), "0000000000", UpdateProcessoRequest{})
	if err != ErrProcessoNaoEncontrado {
		t.Errorf("expected ErrProcessoNaoEncontrado, got %v", err)
	}
}

func TestProcessoUpdateLimpaRelacaoComSentinela(t *testing.T) {
	f := newProcessoFixture(t)

	unidade := model.Unidade{ID: uuid.New(), Nome: "Comando Logístico"}
	f.unidades.items[unidade.ID] = unidade

	req := f.createRequest()
	req.UnidadesAuditadas = []uuid.UUID{unidade.ID}
	p, err := f.svc.Create(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}

	vazio := []uuid.UUID{}
	if _, err := f.svc.Update(context.Background(), p.Identificador, UpdateProcessoRequest{UnidadesAuditadas: &vazio}); err != nil {
		t.Fatal(err)
	}

	last := f.historico.entries[len(f.historico.entries)-1]
	if !strings.Contains(last.Alteracoes, ClearSentinel) {
		t.Errorf("expected clear sentinel in payload: %s", last.Alteracoes)
	}
}

func TestProcessoArquivar(t *testing.T) {
	f := newProcessoFixture(t)

	concluidoID := uuid.New()
	f.situacoes.items[concluidoID] = model.Situacao{ID: concluidoID, Nome: "Concluído"}

	p, err := f.svc.Create(context.Background(), f.createRequest())
	if err != nil {
		t.Fatal(err)
	}

	arquivado, err := f.svc.Arquivar(context.Background(), p.Identificador)
	if err != nil {
		t.Fatal(err)
	}
	if arquivado.SituacaoID != concluidoID {
		t.Errorf("situacao = %s, want Concluído (%s)", arquivado.SituacaoID, concluidoID)
	}
}

func TestProcessoArquivarSemSituacaoConcluido(t *testing.T) {
	f := newProcessoFixture(t)

	p, err := f.svc.Create(context.Background(), f.createRequest())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Arquivar(context.Background(), p.Identificador); err == nil {
		t.Fatal("expected error when Concluído is not registered")
	}
}

func TestProcessoArvore(t *testing.T) {
	f := newProcessoFixture(t)

	raiz, err := f.svc.Create(context.Background(), f.createRequest())
	if err != nil {
		t.Fatal(err)
	}

	acordao, err := f.svc.Create(context.Background(), CreateProcessoRequest{
		Assunto:    "Acórdão 123",
		Tipo:       model.TipoAcordao,
		SituacaoID: f.situacaoID,
		PaiID:      &raiz.ID,
	})
	if err != nil {
		t.Fatal(err)
	}

	prazo := raiz.CreatedAt.AddDate(0, 3, 0)
	solicita := false
	unidade := model.Unidade{ID: uuid.New(), Nome: "Hospital Central"}
	f.unidades.items[unidade.ID] = unidade
	if _, err := f.svc.Create(context.Background(), CreateProcessoRequest{
		Assunto:                "Recomendação 1",
		Tipo:                   model.TipoRecomendacao,
		SituacaoID:             f.situacaoID,
		PaiID:                  &acordao.ID,
		PrazoInicial:           &prazo,
		SolicitacaoProrrogacao: &solicita,
		UnidadesAuditadas:      []uuid.UUID{unidade.ID},
	}); err != nil {
		t.Fatal(err)
	}

	arvore, err := f.svc.Arvore(context.Background(), raiz.Identificador)
	if err != nil {
		t.Fatal(err)
	}
	if arvore.Processo.ID != raiz.ID {
		t.Error("root mismatch")
	}
	if len(arvore.Subprocessos) != 1 {
		t.Fatalf("expected 1 child, got %d", len(arvore.Subprocessos))
	}
	if len(arvore.Subprocessos[0].Subprocessos) != 1 {
		t.Fatalf("expected 1 grandchild, got %d", len(arvore.Subprocessos[0].Subprocessos))
	}
}

func TestProcessoCreateFilhoHierarquiaInvalida(t *testing.T) {
	f := newProcessoFixture(t)

	raiz, err := f.svc.Create(context.Background(), f.createRequest())
	if err != nil {
		t.Fatal(err)
	}

	_, err = f.svc.Create(context.Background(), CreateProcessoRequest{
		Assunto:    "Ação direta sob raiz",
		Tipo:       model.TipoAcao,
		SituacaoID: f.situacaoID,
		PaiID:      &raiz.ID,
	})
	if err == nil {
		t.Fatal("expected hierarchy violation")
	}
}
