package repository

import (
	"context"

	"github.com/jhoicas/Inventario-componentes/internal/domain/entity"
)

// ComponentLocationRepository define el puerto para las filas de stock por (componente, ubicación).
// Los métodos *ForUpdate deben usarse dentro de una transacción: el lock se libera en Commit/Rollback.
type ComponentLocationRepository interface {
	// GetForUpdate bloquea la fila y la devuelve; (nil, nil) si no existe (no crea nada).
	GetForUpdate(ctx context.Context, componentID, locationID string) (*entity.ComponentLocation, error)
	// EnsureForUpdate crea la fila con cantidad 0 si no existe y la bloquea.
	// created indica si la fila nació en esta transacción. Devuelve domain.ErrConflict
	// si pierde una carrera de creación/borrado; el caller reintenta la unidad de trabajo.
	EnsureForUpdate(ctx context.Context, componentID, locationID string) (cl *entity.ComponentLocation, created bool, err error)
	Update(ctx context.Context, cl *entity.ComponentLocation) error
	Delete(ctx context.Context, componentID, locationID string) error

	Get(ctx context.Context, componentID, locationID string) (*entity.ComponentLocation, error)
	ListByComponent(ctx context.Context, componentID string) ([]*entity.ComponentLocation, error)
	// SumQuantityByComponent total agregado derivado (nunca cacheado).
	SumQuantityByComponent(ctx context.Context, componentID string) (int64, error)
	// UpdateReorder modifica solo reorder_threshold/reorder_enabled de una fila existente.
	UpdateReorder(ctx context.Context, componentID, locationID string, threshold *int64, enabled bool) error
}
