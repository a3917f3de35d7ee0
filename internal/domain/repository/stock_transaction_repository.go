package repository

import (
	"context"

	"github.com/jhoicas/Inventario-componentes/internal/domain/entity"
)

// StockTransactionRepository define el puerto del ledger de auditoría (solo inserción).
type StockTransactionRepository interface {
	Create(ctx context.Context, tx *entity.StockTransaction) error
	GetByID(ctx context.Context, id string) (*entity.StockTransaction, error)
	// ListByComponent historial más reciente primero, paginado.
	ListByComponent(ctx context.Context, componentID string, limit, offset int) ([]*entity.StockTransaction, error)
	// ListForReplay todas las transacciones del componente en orden de secuencia ascendente.
	ListForReplay(ctx context.Context, componentID string) ([]*entity.StockTransaction, error)
}
