package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de transacción de stock. Un traslado genera un REMOVE en origen y un ADD en destino.
const (
	TransactionTypeADD    = "ADD"
	TransactionTypeREMOVE = "REMOVE"
)

// StockTransaction entrada inmutable del ledger de auditoría.
// Sequence ordena la reproducción; CorrelationID une las dos filas de un traslado.
type StockTransaction struct {
	ID               string
	Sequence         int64
	ComponentID      string
	Type             string
	QuantityChange   int64 // positivo en ADD, negativo en REMOVE
	PreviousQuantity int64
	NewQuantity      int64
	FromLocationID   string // vacío = NULL
	ToLocationID     string // vacío = NULL
	PricePerUnit     *decimal.Decimal
	TotalPrice       *decimal.Decimal
	LotID            string
	Reference        string
	CorrelationID    string
	UserID           string
	UserName         string
	Reason           string
	CreatedAt        time.Time
}

// LocationID devuelve la ubicación cuya cantidad modifica la transacción.
func (t *StockTransaction) LocationID() string {
	if t.Type == TransactionTypeADD {
		return t.ToLocationID
	}
	return t.FromLocationID
}
