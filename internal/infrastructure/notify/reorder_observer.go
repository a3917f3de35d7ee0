// Package notify observadores post-commit del motor de stock.
package notify

import (
	"context"

	"github.com/jhoicas/Inventario-componentes/internal/application/dto"
	"github.com/jhoicas/Inventario-componentes/internal/application/inventory"
	"github.com/jhoicas/Inventario-componentes/pkg/logger"
)

var _ inventory.ChangeObserver = (*ReorderObserver)(nil)

// ReorderObserver registra cada commit y emite una alerta cuando una ubicación con
// reorden habilitado queda en o por debajo de su umbral.
type ReorderObserver struct {
	log *logger.Logger
}

// NewReorderObserver construye el observador.
func NewReorderObserver(log *logger.Logger) *ReorderObserver {
	if log == nil {
		log = logger.Nop()
	}
	return &ReorderObserver{log: log.Named("reorder")}
}

// StockCommitted implementa inventory.ChangeObserver.
func (o *ReorderObserver) StockCommitted(_ context.Context, ev dto.StockCommittedEvent) {
	o.log.Debug().
		Str("op", ev.Operation).
		Str("component_id", ev.ComponentID).
		Str("correlation_id", ev.CorrelationID).
		Int64("total_quantity", ev.TotalQuantity).
		Msg("stock comprometido")

	for _, loc := range Alerts(ev) {
		o.log.Warn().
			Str("component_id", ev.ComponentID).
			Str("location_id", loc.LocationID).
			Int64("quantity_on_hand", loc.QuantityOnHand).
			Int64("reorder_threshold", *loc.ReorderThreshold).
			Bool("location_deleted", loc.Deleted).
			Msg("stock en o bajo el umbral de reorden")
	}
}

// Alerts ubicaciones del evento que requieren reorden.
func Alerts(ev dto.StockCommittedEvent) []dto.CommittedLocationDTO {
	var out []dto.CommittedLocationDTO
	for _, loc := range ev.Locations {
		if !loc.ReorderEnabled || loc.ReorderThreshold == nil {
			continue
		}
		if loc.QuantityOnHand <= *loc.ReorderThreshold {
			out = append(out, loc)
		}
	}
	return out
}
