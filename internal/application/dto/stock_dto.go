package dto

import "github.com/shopspring/decimal"

// AddStockRequest body para POST /api/stock/add.
type AddStockRequest struct {
	ComponentID  string           `json:"component_id" validate:"required"`
	LocationID   string           `json:"location_id" validate:"required"`
	Quantity     int64            `json:"quantity" validate:"gt=0"`
	PricePerUnit *decimal.Decimal `json:"price_per_unit,omitempty"`
	TotalPrice   *decimal.Decimal `json:"total_price,omitempty"`
	LotID        string           `json:"lot_id,omitempty" validate:"max=100"`
	Reference    string           `json:"reference,omitempty" validate:"max=255"`
}

// RemoveStockRequest body para POST /api/stock/remove.
type RemoveStockRequest struct {
	ComponentID string `json:"component_id" validate:"required"`
	LocationID  string `json:"location_id" validate:"required"`
	Quantity    int64  `json:"quantity" validate:"gt=0"`
	Reason      string `json:"reason,omitempty" validate:"max=500"`
}

// MoveStockRequest body para POST /api/stock/move.
type MoveStockRequest struct {
	ComponentID           string `json:"component_id" validate:"required"`
	SourceLocationID      string `json:"source_location_id" validate:"required"`
	DestinationLocationID string `json:"destination_location_id" validate:"required"`
	Quantity              int64  `json:"quantity" validate:"gt=0"`
	Reason                string `json:"reason,omitempty" validate:"max=500"`
}

// UpdateReorderRequest body para PUT /api/components/:id/locations/:location_id/reorder.
type UpdateReorderRequest struct {
	ReorderThreshold *int64 `json:"reorder_threshold" validate:"omitempty,gte=0"`
	ReorderEnabled   bool   `json:"reorder_enabled"`
}

// AddStockResult salida de AddStock.
type AddStockResult struct {
	Success          bool             `json:"success"`
	Message          string           `json:"message"`
	TransactionID    string           `json:"transaction_id"`
	ComponentID      string           `json:"component_id"`
	LocationID       string           `json:"location_id"`
	Quantity         int64            `json:"quantity"`
	PreviousQuantity int64            `json:"previous_quantity"`
	NewQuantity      int64            `json:"new_quantity"`
	LocationCreated  bool             `json:"location_created"`
	PricePerUnit     *decimal.Decimal `json:"price_per_unit,omitempty"`
	TotalPrice       *decimal.Decimal `json:"total_price,omitempty"`
	TotalQuantity    int64            `json:"total_quantity"` // agregado recalculado del componente
}

// RemoveStockResult salida de RemoveStock. Capped indica que se retiró menos de lo solicitado.
type RemoveStockResult struct {
	Success           bool   `json:"success"`
	Message           string `json:"message"`
	TransactionID     string `json:"transaction_id"`
	ComponentID       string `json:"component_id"`
	LocationID        string `json:"location_id"`
	RequestedQuantity int64  `json:"requested_quantity"`
	ActualQuantity    int64  `json:"actual_quantity"`
	Capped            bool   `json:"capped"`
	PreviousQuantity  int64  `json:"previous_quantity"`
	NewQuantity       int64  `json:"new_quantity"`
	LocationDeleted   bool   `json:"location_deleted"`
	TotalQuantity     int64  `json:"total_quantity"`
}

// MoveStockResult salida de MoveStock. Las dos transacciones comparten CorrelationID.
type MoveStockResult struct {
	Success                     bool   `json:"success"`
	Message                     string `json:"message"`
	RemoveTransactionID         string `json:"remove_transaction_id"`
	AddTransactionID            string `json:"add_transaction_id"`
	CorrelationID               string `json:"correlation_id"`
	ComponentID                 string `json:"component_id"`
	SourceLocationID            string `json:"source_location_id"`
	DestinationLocationID       string `json:"destination_location_id"`
	RequestedQuantity           int64  `json:"requested_quantity"`
	ActualQuantity              int64  `json:"actual_quantity"`
	Capped                      bool   `json:"capped"`
	SourcePreviousQuantity      int64  `json:"source_previous_quantity"`
	SourceNewQuantity           int64  `json:"source_new_quantity"`
	DestinationPreviousQuantity int64  `json:"destination_previous_quantity"`
	DestinationNewQuantity      int64  `json:"destination_new_quantity"`
	SourceLocationDeleted       bool   `json:"source_location_deleted"`
	DestinationLocationCreated  bool   `json:"destination_location_created"`
	PricingInherited            bool   `json:"pricing_inherited"`
	TotalQuantity               int64  `json:"total_quantity"`
}

// ComponentLocationDTO estado de una fila de stock por ubicación.
type ComponentLocationDTO struct {
	LocationID         string           `json:"location_id"`
	QuantityOnHand     int64            `json:"quantity_on_hand"`
	ReorderThreshold   *int64           `json:"reorder_threshold,omitempty"`
	ReorderEnabled     bool             `json:"reorder_enabled"`
	UnitCostAtLocation *decimal.Decimal `json:"unit_cost_at_location,omitempty"`
}

// ComponentStockResponse componente con sus ubicaciones activas y total derivado.
type ComponentStockResponse struct {
	Component     ComponentResponse      `json:"component"`
	Locations     []ComponentLocationDTO `json:"locations"`
	TotalQuantity int64                  `json:"total_quantity"`
}

// StockTransactionDTO entrada del ledger.
type StockTransactionDTO struct {
	ID               string           `json:"id"`
	Sequence         int64            `json:"seq"`
	Type             string           `json:"type"`
	QuantityChange   int64            `json:"quantity_change"`
	PreviousQuantity int64            `json:"previous_quantity"`
	NewQuantity      int64            `json:"new_quantity"`
	FromLocationID   string           `json:"from_location_id,omitempty"`
	ToLocationID     string           `json:"to_location_id,omitempty"`
	PricePerUnit     *decimal.Decimal `json:"price_per_unit,omitempty"`
	TotalPrice       *decimal.Decimal `json:"total_price,omitempty"`
	LotID            string           `json:"lot_id,omitempty"`
	Reference        string           `json:"reference,omitempty"`
	CorrelationID    string           `json:"correlation_id,omitempty"`
	UserID           string           `json:"user_id"`
	UserName         string           `json:"user_name,omitempty"`
	Reason           string           `json:"reason,omitempty"`
	CreatedAt        string           `json:"created_at"`
}

// StockTransactionListResponse historial paginado.
type StockTransactionListResponse struct {
	Items []StockTransactionDTO `json:"items"`
	Page  PageResponse          `json:"page"`
}

// LocationAuditDTO resultado de reproducir el ledger de una ubicación.
type LocationAuditDTO struct {
	LocationID       string   `json:"location_id"`
	TransactionCount int      `json:"transaction_count"`
	CurrentQuantity  int64    `json:"current_quantity"`
	ReplayedQuantity int64    `json:"replayed_quantity"`
	Consistent       bool     `json:"consistent"`
	Discrepancies    []string `json:"discrepancies,omitempty"`
}

// AuditReport auditoría del ledger de un componente.
type AuditReport struct {
	ComponentID   string             `json:"component_id"`
	Consistent    bool               `json:"consistent"`
	TotalQuantity int64              `json:"total_quantity"`
	Locations     []LocationAuditDTO `json:"locations"`
}

// StockCommittedEvent estado comprometido de las filas tocadas por una operación.
// Lo recibe el ChangeObserver (p. ej. el disparador de alertas de reorden) después del commit.
type StockCommittedEvent struct {
	Operation     string                 `json:"operation"` // add | remove | move
	ComponentID   string                 `json:"component_id"`
	CorrelationID string                 `json:"correlation_id,omitempty"`
	Locations     []CommittedLocationDTO `json:"locations"`
	TotalQuantity int64                  `json:"total_quantity"`
}

// CommittedLocationDTO fila tras el commit; Deleted indica que la fila dejó de existir.
type CommittedLocationDTO struct {
	ComponentLocationDTO
	Deleted bool `json:"deleted"`
}
