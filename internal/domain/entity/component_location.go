package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ComponentLocation es el registro de stock de un componente en una ubicación.
// Única por (ComponentID, LocationID). Una fila con QuantityOnHand == 0 no persiste: se elimina.
type ComponentLocation struct {
	ID                 string
	ComponentID        string
	LocationID         string
	QuantityOnHand     int64
	ReorderThreshold   *int64
	ReorderEnabled     bool
	UnitCostAtLocation *decimal.Decimal
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Clone devuelve una copia profunda (los punteros no se comparten).
func (cl *ComponentLocation) Clone() *ComponentLocation {
	if cl == nil {
		return nil
	}
	c := *cl
	if cl.ReorderThreshold != nil {
		v := *cl.ReorderThreshold
		c.ReorderThreshold = &v
	}
	if cl.UnitCostAtLocation != nil {
		v := *cl.UnitCostAtLocation
		c.UnitCostAtLocation = &v
	}
	return &c
}
