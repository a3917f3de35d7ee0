package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Inventario-componentes/internal/domain/entity"
	"github.com/jhoicas/Inventario-componentes/internal/domain/repository"
)

var _ repository.ComponentRepository = (*ComponentRepo)(nil)

// ComponentRepo implementación del puerto ComponentRepository sobre PostgreSQL.
type ComponentRepo struct {
	q Querier
}

// NewComponentRepository construye el adaptador de persistencia para componentes.
func NewComponentRepository(q Querier) *ComponentRepo {
	return &ComponentRepo{q: q}
}

// Create persiste un nuevo componente. part_number duplicado -> domain.ErrDuplicate.
func (r *ComponentRepo) Create(ctx context.Context, c *entity.Component) error {
	query := `
		INSERT INTO components (id, part_number, manufacturer, description, category, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.PartNumber, c.Manufacturer, c.Description, c.Category, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return mapError("insert component", err)
	}
	return nil
}

// GetByID obtiene un componente por ID; (nil, nil) si no existe.
func (r *ComponentRepo) GetByID(ctx context.Context, id string) (*entity.Component, error) {
	query := `
		SELECT id, part_number, manufacturer, description, category, created_at, updated_at
		FROM components WHERE id = $1`
	var c entity.Component
	err := r.q.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.PartNumber, &c.Manufacturer, &c.Description, &c.Category, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || pgCode(err) == codeInvalidText {
			return nil, nil
		}
		return nil, fmt.Errorf("get component: %w", err)
	}
	return &c, nil
}

// List lista componentes por part_number con paginación.
func (r *ComponentRepo) List(ctx context.Context, limit, offset int) ([]*entity.Component, error) {
	query := `
		SELECT id, part_number, manufacturer, description, category, created_at, updated_at
		FROM components ORDER BY part_number LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list components: %w", err)
	}
	defer rows.Close()
	list := []*entity.Component{}
	for rows.Next() {
		var c entity.Component
		if err := rows.Scan(&c.ID, &c.PartNumber, &c.Manufacturer, &c.Description, &c.Category, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan component: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}
