package inventory

import (
	"context"

	"github.com/jhoicas/Inventario-componentes/internal/application/dto"
	"github.com/jhoicas/Inventario-componentes/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Commit si fn retorna nil; Rollback en cualquier otro caso. Los locks tomados con *ForUpdate
// se liberan al terminar la transacción.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		stockRepo repository.ComponentLocationRepository,
		txRepo repository.StockTransactionRepository,
	) error) error
}

// SnapshotReader ejecuta lecturas sobre una única vista consistente de filas y ledger:
// una operación que comprometa durante fn se ve completa o no se ve.
type SnapshotReader interface {
	View(ctx context.Context, fn func(
		stockRepo repository.ComponentLocationRepository,
		txRepo repository.StockTransactionRepository,
	) error) error
}

// ChangeObserver recibe el estado comprometido de las filas tocadas por una operación.
// Se invoca solo después de un commit exitoso (p. ej. el disparador de alertas de reorden).
type ChangeObserver interface {
	StockCommitted(ctx context.Context, ev dto.StockCommittedEvent)
}

type nopObserver struct{}

func (nopObserver) StockCommitted(context.Context, dto.StockCommittedEvent) {}
