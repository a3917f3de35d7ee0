package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Inventario-componentes/internal/domain/entity"
	"github.com/jhoicas/Inventario-componentes/internal/domain/repository"
)

var _ repository.StorageLocationRepository = (*StorageLocationRepo)(nil)

// StorageLocationRepo implementación del puerto StorageLocationRepository sobre PostgreSQL.
type StorageLocationRepo struct {
	q Querier
}

// NewStorageLocationRepository construye el adaptador de persistencia para ubicaciones.
func NewStorageLocationRepository(q Querier) *StorageLocationRepo {
	return &StorageLocationRepo{q: q}
}

// Create persiste una nueva ubicación.
func (r *StorageLocationRepo) Create(ctx context.Context, l *entity.StorageLocation) error {
	query := `
		INSERT INTO storage_locations (id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.q.Exec(ctx, query, l.ID, l.Name, l.Description, l.CreatedAt, l.UpdatedAt); err != nil {
		return mapError("insert storage location", err)
	}
	return nil
}

// GetByID obtiene una ubicación por ID.
func (r *StorageLocationRepo) GetByID(ctx context.Context, id string) (*entity.StorageLocation, error) {
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM storage_locations WHERE id = $1`
	var l entity.StorageLocation
	err := r.q.QueryRow(ctx, query, id).Scan(&l.ID, &l.Name, &l.Description, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || pgCode(err) == codeInvalidText {
			return nil, nil
		}
		return nil, fmt.Errorf("get storage location: %w", err)
	}
	return &l, nil
}

// List lista ubicaciones por nombre con paginación.
func (r *StorageLocationRepo) List(ctx context.Context, limit, offset int) ([]*entity.StorageLocation, error) {
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM storage_locations ORDER BY name LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list storage locations: %w", err)
	}
	defer rows.Close()
	list := []*entity.StorageLocation{}
	for rows.Next() {
		var l entity.StorageLocation
		if err := rows.Scan(&l.ID, &l.Name, &l.Description, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan storage location: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}
