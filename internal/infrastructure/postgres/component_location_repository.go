package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Inventario-componentes/internal/domain"
	"github.com/jhoicas/Inventario-componentes/internal/domain/entity"
	"github.com/jhoicas/Inventario-componentes/internal/domain/repository"
)

var _ repository.ComponentLocationRepository = (*ComponentLocationRepo)(nil)

const componentLocationColumns = `
	id, component_id, location_id, quantity_on_hand, reorder_threshold, reorder_enabled,
	unit_cost_at_location, created_at, updated_at`

// ComponentLocationRepo filas de stock sobre PostgreSQL (usable con pool o tx).
type ComponentLocationRepo struct {
	q Querier
}

// NewComponentLocationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewComponentLocationRepository(q Querier) *ComponentLocationRepo {
	return &ComponentLocationRepo{q: q}
}

// GetForUpdate obtiene la fila y la bloquea (SELECT FOR UPDATE); (nil, nil) si no existe
// o si algún id no es un UUID válido.
func (r *ComponentLocationRepo) GetForUpdate(ctx context.Context, componentID, locationID string) (*entity.ComponentLocation, error) {
	query := `SELECT` + componentLocationColumns + `
		FROM component_locations WHERE component_id = $1 AND location_id = $2
		FOR UPDATE`
	cl, err := scanComponentLocation(r.q.QueryRow(ctx, query, componentID, locationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || pgCode(err) == codeInvalidText {
			return nil, nil
		}
		return nil, mapError("get component location for update", err)
	}
	return cl, nil
}

// EnsureForUpdate inserta la fila con cantidad 0 si falta y luego la bloquea.
// Si otra transacción la borra entre ambos pasos devuelve domain.ErrConflict.
func (r *ComponentLocationRepo) EnsureForUpdate(ctx context.Context, componentID, locationID string) (*entity.ComponentLocation, bool, error) {
	insert := `
		INSERT INTO component_locations (id, component_id, location_id, quantity_on_hand, reorder_enabled, created_at, updated_at)
		VALUES ($1, $2, $3, 0, false, now(), now())
		ON CONFLICT (component_id, location_id) DO NOTHING`
	tag, err := r.q.Exec(ctx, insert, uuid.New().String(), componentID, locationID)
	if err != nil {
		return nil, false, mapError("ensure component location", err)
	}
	cl, err := r.GetForUpdate(ctx, componentID, locationID)
	if err != nil {
		return nil, false, err
	}
	if cl == nil {
		return nil, false, fmt.Errorf("ensure component location %s/%s: %w", componentID, locationID, domain.ErrConflict)
	}
	return cl, tag.RowsAffected() == 1, nil
}

// Update persiste cantidad y costo; los campos de reorden solo cambian con UpdateReorder.
func (r *ComponentLocationRepo) Update(ctx context.Context, cl *entity.ComponentLocation) error {
	query := `
		UPDATE component_locations
		SET quantity_on_hand = $3, unit_cost_at_location = $4, updated_at = $5
		WHERE component_id = $1 AND location_id = $2`
	cmd, err := r.q.Exec(ctx, query,
		cl.ComponentID, cl.LocationID, cl.QuantityOnHand, cl.UnitCostAtLocation, cl.UpdatedAt,
	)
	if err != nil {
		return mapError("update component location", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("update component location: %w", domain.ErrNotFound)
	}
	return nil
}

// Delete elimina la fila (se llama al llegar a cantidad 0).
func (r *ComponentLocationRepo) Delete(ctx context.Context, componentID, locationID string) error {
	_, err := r.q.Exec(ctx,
		`DELETE FROM component_locations WHERE component_id = $1 AND location_id = $2`,
		componentID, locationID,
	)
	if err != nil {
		return mapError("delete component location", err)
	}
	return nil
}

// Get lectura sin bloqueo.
func (r *ComponentLocationRepo) Get(ctx context.Context, componentID, locationID string) (*entity.ComponentLocation, error) {
	query := `SELECT` + componentLocationColumns + `
		FROM component_locations WHERE component_id = $1 AND location_id = $2`
	cl, err := scanComponentLocation(r.q.QueryRow(ctx, query, componentID, locationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || pgCode(err) == codeInvalidText {
			return nil, nil
		}
		return nil, fmt.Errorf("get component location: %w", err)
	}
	return cl, nil
}

// ListByComponent filas del componente ordenadas por ubicación.
func (r *ComponentLocationRepo) ListByComponent(ctx context.Context, componentID string) ([]*entity.ComponentLocation, error) {
	query := `SELECT` + componentLocationColumns + `
		FROM component_locations WHERE component_id = $1 ORDER BY location_id`
	rows, err := r.q.Query(ctx, query, componentID)
	if err != nil {
		return nil, mapError("list component locations", err)
	}
	defer rows.Close()
	list := []*entity.ComponentLocation{}
	for rows.Next() {
		cl, err := scanComponentLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan component location: %w", err)
		}
		list = append(list, cl)
	}
	return list, rows.Err()
}

// SumQuantityByComponent total agregado del componente.
func (r *ComponentLocationRepo) SumQuantityByComponent(ctx context.Context, componentID string) (int64, error) {
	var total int64
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity_on_hand), 0)::BIGINT FROM component_locations WHERE component_id = $1`,
		componentID,
	).Scan(&total)
	if err != nil {
		return 0, mapError("sum component quantity", err)
	}
	return total, nil
}

// UpdateReorder cambia solo la configuración de reorden. El UPDATE espera el lock de la fila
// si hay una operación de stock en curso sobre ella.
func (r *ComponentLocationRepo) UpdateReorder(ctx context.Context, componentID, locationID string, threshold *int64, enabled bool) error {
	query := `
		UPDATE component_locations
		SET reorder_threshold = $3, reorder_enabled = $4, updated_at = now()
		WHERE component_id = $1 AND location_id = $2`
	cmd, err := r.q.Exec(ctx, query, componentID, locationID, threshold, enabled)
	if err != nil {
		return mapError("update reorder", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("update reorder: %w", domain.ErrNotFound)
	}
	return nil
}

func scanComponentLocation(row pgx.Row) (*entity.ComponentLocation, error) {
	var cl entity.ComponentLocation
	err := row.Scan(
		&cl.ID, &cl.ComponentID, &cl.LocationID, &cl.QuantityOnHand, &cl.ReorderThreshold,
		&cl.ReorderEnabled, &cl.UnitCostAtLocation, &cl.CreatedAt, &cl.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &cl, nil
}
