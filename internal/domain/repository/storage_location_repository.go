package repository

import (
	"context"

	"github.com/jhoicas/Inventario-componentes/internal/domain/entity"
)

// StorageLocationRepository define el puerto de persistencia para StorageLocation (DIP).
type StorageLocationRepository interface {
	Create(ctx context.Context, location *entity.StorageLocation) error
	GetByID(ctx context.Context, id string) (*entity.StorageLocation, error)
	List(ctx context.Context, limit, offset int) ([]*entity.StorageLocation, error)
}
