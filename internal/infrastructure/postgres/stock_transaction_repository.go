package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Inventario-componentes/internal/domain/entity"
	"github.com/jhoicas/Inventario-componentes/internal/domain/repository"
)

var _ repository.StockTransactionRepository = (*StockTransactionRepo)(nil)

const stockTransactionColumns = `
	id, seq, component_id, transaction_type, quantity_change, previous_quantity, new_quantity,
	from_location_id, to_location_id, price_per_unit, total_price, lot_id, reference,
	correlation_id, user_id, user_name, reason, created_at`

// StockTransactionRepo ledger de auditoría sobre PostgreSQL. Solo inserta: un trigger
// rechaza UPDATE y DELETE sobre stock_transactions.
type StockTransactionRepo struct {
	q Querier
}

// NewStockTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockTransactionRepository(q Querier) *StockTransactionRepo {
	return &StockTransactionRepo{q: q}
}

// Create inserta la transacción; seq la asigna la secuencia de la tabla.
func (r *StockTransactionRepo) Create(ctx context.Context, t *entity.StockTransaction) error {
	query := `
		INSERT INTO stock_transactions (
			id, component_id, transaction_type, quantity_change, previous_quantity, new_quantity,
			from_location_id, to_location_id, price_per_unit, total_price, lot_id, reference,
			correlation_id, user_id, user_name, reason, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING seq`
	err := r.q.QueryRow(ctx, query,
		t.ID, t.ComponentID, t.Type, t.QuantityChange, t.PreviousQuantity, t.NewQuantity,
		nullString(t.FromLocationID), nullString(t.ToLocationID), t.PricePerUnit, t.TotalPrice,
		nullString(t.LotID), nullString(t.Reference), nullString(t.CorrelationID),
		t.UserID, nullString(t.UserName), nullString(t.Reason), t.CreatedAt,
	).Scan(&t.Sequence)
	if err != nil {
		return mapError("insert stock transaction", err)
	}
	return nil
}

// GetByID obtiene una transacción por ID.
func (r *StockTransactionRepo) GetByID(ctx context.Context, id string) (*entity.StockTransaction, error) {
	query := `SELECT` + stockTransactionColumns + ` FROM stock_transactions WHERE id = $1`
	t, err := scanStockTransaction(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || pgCode(err) == codeInvalidText {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock transaction: %w", err)
	}
	return t, nil
}

// ListByComponent historial paginado, más reciente primero.
func (r *StockTransactionRepo) ListByComponent(ctx context.Context, componentID string, limit, offset int) ([]*entity.StockTransaction, error) {
	query := `SELECT` + stockTransactionColumns + `
		FROM stock_transactions WHERE component_id = $1
		ORDER BY seq DESC LIMIT $2 OFFSET $3`
	return r.list(ctx, query, componentID, limit, offset)
}

// ListForReplay todas las transacciones del componente en orden de aplicación.
func (r *StockTransactionRepo) ListForReplay(ctx context.Context, componentID string) ([]*entity.StockTransaction, error) {
	query := `SELECT` + stockTransactionColumns + `
		FROM stock_transactions WHERE component_id = $1 ORDER BY seq`
	return r.list(ctx, query, componentID)
}

func (r *StockTransactionRepo) list(ctx context.Context, query string, args ...any) ([]*entity.StockTransaction, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list stock transactions", err)
	}
	defer rows.Close()
	list := []*entity.StockTransaction{}
	for rows.Next() {
		t, err := scanStockTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock transaction: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func scanStockTransaction(row pgx.Row) (*entity.StockTransaction, error) {
	var (
		t                                  entity.StockTransaction
		from, to, lot, ref, corr, uname, r *string
	)
	err := row.Scan(
		&t.ID, &t.Sequence, &t.ComponentID, &t.Type, &t.QuantityChange, &t.PreviousQuantity, &t.NewQuantity,
		&from, &to, &t.PricePerUnit, &t.TotalPrice, &lot, &ref,
		&corr, &t.UserID, &uname, &r, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.FromLocationID, t.ToLocationID = derefString(from), derefString(to)
	t.LotID, t.Reference, t.CorrelationID = derefString(lot), derefString(ref), derefString(corr)
	t.UserName, t.Reason = derefString(uname), derefString(r)
	return &t, nil
}
