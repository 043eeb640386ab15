package service

import (
	"context"
	"errors"

	"sigoc/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrRegistroNaoEncontrado = errors.New("registro não encontrado")
	// ErrRegistroEmUso signals a delete blocked by referencing records.
	ErrRegistroEmUso = errors.New("registro em uso por outros cadastros")
)

// LookupService wraps the CRUD of a reference table (situações,
// categorias, unidades and the like) behind consistent error mapping.
type LookupService[T any] interface {
	Create(ctx context.Context, entity *T) error
	Update(ctx context.Context, id uuid.UUID, entity *T) error
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*T, error)
	List(ctx context.Context, search string, page, limit int) ([]T, int64, error)
}

type lookupService[T any] struct {
	repo  repository.LookupRepository[T]
	setID func(entity *T, id uuid.UUID)
}

// NewLookupService builds a lookup CRUD service. setID assigns the
// primary key on the entity so updates target the path parameter
// rather than whatever id the body carries.
func NewLookupService[T any](repo repository.LookupRepository[T], setID func(entity *T, id uuid.UUID)) LookupService[T] {
	return &lookupService[T]{repo: repo, setID: setID}
}

func (s *lookupService[T]) Create(ctx context.Context, entity *T) error {
	return s.repo.Create(ctx, entity)
}

func (s *lookupService[T]) Update(ctx context.Context, id uuid.UUID, entity *T) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRegistroNaoEncontrado
		}
		return err
	}
	s.setID(entity, id)
	return s.repo.Update(ctx, entity)
}

func (s *lookupService[T]) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRegistroNaoEncontrado
		}
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return ErrRegistroEmUso
		}
		return err
	}
	return nil
}

func (s *lookupService[T]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	entity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRegistroNaoEncontrado
		}
		return nil, err
	}
	return entity, nil
}

func (s *lookupService[T]) List(ctx context.Context, search string, page, limit int) ([]T, int64, error) {
	return s.repo.List(ctx, search, page, limit)
}
