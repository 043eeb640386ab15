package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LookupRepository is the shared persistence contract for the simple
// reference entities (grupos, auditores, unidades, atribuições,
// situações, categorias, tipos de demanda). Deletes rely on RESTRICT
// foreign keys: removing a record still referenced by a processo or
// demanda fails with a foreign-key violation.
type LookupRepository[T any] interface {
	Create(ctx context.Context, entity *T) error
	Update(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*T, error)
	FindByNome(ctx context.Context, nome string) (*T, error)
	List(ctx context.Context, search string, page, limit int) ([]T, int64, error)
}

type lookupRepository[T any] struct {
	db         *gorm.DB
	searchCols []string
	orderBy    string
	preloads   []string
}

// NewLookupRepository builds a repository for one lookup entity.
// searchCols are matched with ILIKE against the search term; orderBy is
// the default listing order (e.g. "nome asc").
func NewLookupRepository[T any](db *gorm.DB, orderBy string, searchCols []string, preloads ...string) LookupRepository[T] {
	return &lookupRepository[T]{db: db, searchCols: searchCols, orderBy: orderBy, preloads: preloads}
}

func (r *lookupRepository[T]) Create(ctx context.Context, entity *T) error {
	return GetDB(ctx, r.db).Create(entity).Error
}

func (r *lookupRepository[T]) Update(ctx context.Context, entity *T) error {
	return GetDB(ctx, r.db).Save(entity).Error
}

func (r *lookupRepository[T]) Delete(ctx context.Context, id uuid.UUID) error {
	var entity T
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&entity).Error
}

func (r *lookupRepository[T]) FindByID(ctx context.Context, id uuid.UUID) (*T, error) {
	var entity T
	query := GetDB(ctx, r.db)
	for _, p := range r.preloads {
		query = query.Preload(p)
	}
	if err := query.First(&entity, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entity, nil
}

func (r *lookupRepository[T]) FindByNome(ctx context.Context, nome string) (*T, error) {
	var entity T
	if err := GetDB(ctx, r.db).First(&entity, "nome = ?", nome).Error; err != nil {
		return nil, err
	}
	return &entity, nil
}

func (r *lookupRepository[T]) List(ctx context.Context, search string, page, limit int) ([]T, int64, error) {
	var entities []T
	var total int64

	var zero T
	query := GetDB(ctx, r.db).Model(&zero)

	if search != "" && len(r.searchCols) > 0 {
		like := "%" + search + "%"
		conds := make([]string, 0, len(r.searchCols))
		args := make([]interface{}, 0, len(r.searchCols))
		for _, col := range r.searchCols {
			conds = append(conds, col+" ILIKE ?")
			args = append(args, like)
		}
		query = query.Where(strings.Join(conds, " OR "), args...)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	for _, p := range r.preloads {
		query = query.Preload(p)
	}

	offset := (page - 1) * limit
	if err := query.Order(r.orderBy).Offset(offset).Limit(limit).Find(&entities).Error; err != nil {
		return nil, 0, err
	}

	return entities, total, nil
}
