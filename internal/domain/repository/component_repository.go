package repository

import (
	"context"

	"github.com/jhoicas/Inventario-componentes/internal/domain/entity"
)

// ComponentRepository define el puerto de persistencia para Component (DIP).
// GetByID devuelve (nil, nil) si no existe.
type ComponentRepository interface {
	Create(ctx context.Context, component *entity.Component) error
	GetByID(ctx context.Context, id string) (*entity.Component, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Component, error)
}
