package service

import (
	"context"
	"errors"
	"time"

	"sigoc/internal/model"
	"sigoc/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrReuniaoNaoEncontrada = errors.New("reunião não encontrada")

var tiposReuniaoValidos = map[string]bool{
	model.ReuniaoApresentacao:       true,
	model.ReuniaoAlinhamentoInterno: true,
	model.ReuniaoAlinhamentoExterno: true,
	model.ReuniaoBuscaSolucoes:      true,
	model.ReuniaoEncerramento:       true,
}

type CreateReuniaoRequest struct {
	ProcessoID    uuid.UUID `json:"processo_id" binding:"required"`
	Data          time.Time `json:"data" binding:"required"`
	Tipo          string    `json:"tipo" binding:"required"`
	Participantes string    `json:"participantes"`
	Pauta         string    `json:"pauta"`
	Resultado     string    `json:"resultado"`
}

type UpdateReuniaoRequest struct {
	Data          *time.Time `json:"data"`
	Tipo          *string    `json:"tipo"`
	Participantes *string    `json:"participantes"`
	Pauta         *string    `json:"pauta"`
	Resultado     *string    `json:"resultado"`
}

type ReuniaoService interface {
	Create(ctx context.Context, req CreateReuniaoRequest) (*model.Reuniao, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateReuniaoRequest) (*model.Reuniao, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*model.Reuniao, error)
	List(ctx context.Context, processoID *uuid.UUID, page, limit int) ([]model.Reuniao, int64, error)
}

type reuniaoService struct {
	repo         repository.ReuniaoRepository
	processoRepo repository.ProcessoRepository
}

func NewReuniaoService(repo repository.ReuniaoRepository, processoRepo repository.ProcessoRepository) ReuniaoService {
	return &reuniaoService{repo: repo, processoRepo: processoRepo}
}

func (s *reuniaoService) Create(ctx context.Context, req CreateReuniaoRequest) (*model.Reuniao, error) {
	if !tiposReuniaoValidos[req.Tipo] {
		return nil, FieldErrors{"tipo": "tipo de reunião inválido"}
	}
	if _, err := s.processoRepo.FindByID(ctx, req.ProcessoID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, FieldErrors{"processo": "processo não encontrado"}
		}
		return nil, err
	}

	r := &model.Reuniao{
		ProcessoID:    req.ProcessoID,
		Data:          req.Data,
		Tipo:          req.Tipo,
		Participantes: req.Participantes,
		Pauta:         req.Pauta,
		Resultado:     req.Resultado,
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *reuniaoService) Update(ctx context.Context, id uuid.UUID, req UpdateReuniaoRequest) (*model.Reuniao, error) {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReuniaoNaoEncontrada
		}
		return nil, err
	}

	if req.Tipo != nil {
		if !tiposReuniaoValidos[*req.Tipo] {
			return nil, FieldErrors{"tipo": "tipo de reunião inválido"}
		}
		r.Tipo = *req.Tipo
	}
	if req.Data != nil {
		r.Data = *req.Data
	}
	if req.Participantes != nil {
		r.Participantes = *req.Participantes
	}
	if req.Pauta != nil {
		r.Pauta = *req.Pauta
	}
	if req.Resultado != nil {
		r.Resultado = *req.Resultado
	}

	if err := s.repo.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *reuniaoService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReuniaoNaoEncontrada
		}
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *reuniaoService) Get(ctx context.Context, id uuid.UUID) (*model.Reuniao, error) {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReuniaoNaoEncontrada
		}
		return nil, err
	}
	return r, nil
}

func (s *reuniaoService) List(ctx context.Context, processoID *uuid.UUID, page, limit int) ([]model.Reuniao, int64, error) {
	return s.repo.List(ctx, processoID, page, limit)
}
