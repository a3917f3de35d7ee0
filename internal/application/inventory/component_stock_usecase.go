package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Inventario-componentes/internal/application/dto"
	"github.com/jhoicas/Inventario-componentes/internal/domain"
	"github.com/jhoicas/Inventario-componentes/internal/domain/entity"
	"github.com/jhoicas/Inventario-componentes/internal/domain/repository"
	"github.com/jhoicas/Inventario-componentes/internal/domain/stock"
)

// ComponentStockUseCase lecturas sobre el stock de un componente: ubicaciones activas,
// total derivado, historial del ledger y auditoría por reproducción.
type ComponentStockUseCase struct {
	views         SnapshotReader
	componentRepo repository.ComponentRepository
	stockRepo     repository.ComponentLocationRepository
	txRepo        repository.StockTransactionRepository
}

// NewComponentStockUseCase construye el caso de uso.
func NewComponentStockUseCase(
	views SnapshotReader,
	componentRepo repository.ComponentRepository,
	stockRepo repository.ComponentLocationRepository,
	txRepo repository.StockTransactionRepository,
) *ComponentStockUseCase {
	return &ComponentStockUseCase{
		views:         views,
		componentRepo: componentRepo,
		stockRepo:     stockRepo,
		txRepo:        txRepo,
	}
}

// GetComponentStock devuelve el componente con sus filas activas y el total (suma de filas).
func (uc *ComponentStockUseCase) GetComponentStock(ctx context.Context, componentID string) (*dto.ComponentStockResponse, error) {
	c, err := uc.component(ctx, componentID)
	if err != nil {
		return nil, err
	}
	rows, err := uc.stockRepo.ListByComponent(ctx, componentID)
	if err != nil {
		return nil, err
	}
	out := &dto.ComponentStockResponse{
		Component: ToComponentResponse(c),
		Locations: make([]dto.ComponentLocationDTO, 0, len(rows)),
	}
	for _, cl := range rows {
		if cl.QuantityOnHand <= 0 {
			continue
		}
		out.Locations = append(out.Locations, toLocationDTO(cl))
		out.TotalQuantity += cl.QuantityOnHand
	}
	return out, nil
}

// ListTransactions historial del componente, más reciente primero.
func (uc *ComponentStockUseCase) ListTransactions(ctx context.Context, componentID string, page dto.PageRequest) (*dto.StockTransactionListResponse, error) {
	if _, err := uc.component(ctx, componentID); err != nil {
		return nil, err
	}
	page.DefaultPage()
	list, err := uc.txRepo.ListByComponent(ctx, componentID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StockTransactionDTO, 0, len(list))
	for _, t := range list {
		items = append(items, toTransactionDTO(t))
	}
	return &dto.StockTransactionListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// AuditComponent reproduce el ledger por ubicación y lo compara con las filas actuales.
// Filas y ledger se leen en la misma vista. Solo lectura: no corrige nada.
func (uc *ComponentStockUseCase) AuditComponent(ctx context.Context, componentID string) (*dto.AuditReport, error) {
	if _, err := uc.component(ctx, componentID); err != nil {
		return nil, err
	}
	var (
		rows []*entity.ComponentLocation
		txs  []*entity.StockTransaction
	)
	err := uc.views.View(ctx, func(stockRepo repository.ComponentLocationRepository, txRepo repository.StockTransactionRepository) error {
		var err error
		if rows, err = stockRepo.ListByComponent(ctx, componentID); err != nil {
			return err
		}
		txs, err = txRepo.ListForReplay(ctx, componentID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("audit component %s: %w", componentID, err)
	}

	current := make(map[string]int64, len(rows))
	report := &dto.AuditReport{ComponentID: componentID, Consistent: true}
	for _, cl := range rows {
		current[cl.LocationID] = cl.QuantityOnHand
		report.TotalQuantity += cl.QuantityOnHand
	}
	for _, r := range stock.Replay(txs, current) {
		report.Locations = append(report.Locations, dto.LocationAuditDTO{
			LocationID:       r.LocationID,
			TransactionCount: r.TransactionCount,
			CurrentQuantity:  r.CurrentQuantity,
			ReplayedQuantity: r.ReplayedQuantity,
			Consistent:       r.Consistent(),
			Discrepancies:    r.Discrepancies,
		})
		if !r.Consistent() {
			report.Consistent = false
		}
	}
	return report, nil
}

// UpdateReorder cambia el umbral de reorden de una fila existente. No toca quantity_on_hand.
func (uc *ComponentStockUseCase) UpdateReorder(ctx context.Context, componentID, locationID string, in dto.UpdateReorderRequest) (*dto.ComponentLocationDTO, error) {
	if in.ReorderThreshold != nil && *in.ReorderThreshold < 0 {
		return nil, fmt.Errorf("%w: reorder_threshold negativo", domain.ErrInvalidInput)
	}
	if err := uc.stockRepo.UpdateReorder(ctx, componentID, locationID, in.ReorderThreshold, in.ReorderEnabled); err != nil {
		return nil, err
	}
	cl, err := uc.stockRepo.Get(ctx, componentID, locationID)
	if err != nil {
		return nil, err
	}
	if cl == nil {
		return nil, fmt.Errorf("%w: el componente %s no tiene stock en la ubicación %s", domain.ErrNotFound, componentID, locationID)
	}
	out := toLocationDTO(cl)
	return &out, nil
}

func (uc *ComponentStockUseCase) component(ctx context.Context, id string) (*entity.Component, error) {
	c, err := uc.componentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: componente %s", domain.ErrNotFound, id)
	}
	return c, nil
}

// ToComponentResponse mapea la entidad a su DTO de salida.
func ToComponentResponse(c *entity.Component) dto.ComponentResponse {
	return dto.ComponentResponse{
		ID:           c.ID,
		PartNumber:   c.PartNumber,
		Manufacturer: c.Manufacturer,
		Description:  c.Description,
		Category:     c.Category,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func toLocationDTO(cl *entity.ComponentLocation) dto.ComponentLocationDTO {
	if cl == nil {
		return dto.ComponentLocationDTO{}
	}
	return dto.ComponentLocationDTO{
		LocationID:         cl.LocationID,
		QuantityOnHand:     cl.QuantityOnHand,
		ReorderThreshold:   cl.ReorderThreshold,
		ReorderEnabled:     cl.ReorderEnabled,
		UnitCostAtLocation: cl.UnitCostAtLocation,
	}
}

func toTransactionDTO(t *entity.StockTransaction) dto.StockTransactionDTO {
	return dto.StockTransactionDTO{
		ID:               t.ID,
		Sequence:         t.Sequence,
		Type:             t.Type,
		QuantityChange:   t.QuantityChange,
		PreviousQuantity: t.PreviousQuantity,
		NewQuantity:      t.NewQuantity,
		FromLocationID:   t.FromLocationID,
		ToLocationID:     t.ToLocationID,
		PricePerUnit:     t.PricePerUnit,
		TotalPrice:       t.TotalPrice,
		LotID:            t.LotID,
		Reference:        t.Reference,
		CorrelationID:    t.CorrelationID,
		UserID:           t.UserID,
		UserName:         t.UserName,
		Reason:           t.Reason,
		CreatedAt:        t.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}
