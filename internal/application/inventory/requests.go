package inventory

import (
	"context"

	"github.com/jhoicas/Inventario-componentes/internal/application/dto"
	"github.com/jhoicas/Inventario-componentes/internal/domain/entity"
)

// AddStockFromRequest adapta el request HTTP al caso de uso AddStock.
func (uc *StockOperationsUseCase) AddStockFromRequest(ctx context.Context, user entity.UserRef, in dto.AddStockRequest) (*dto.AddStockResult, error) {
	return uc.AddStock(ctx, AddStockInput{
		ComponentID:  in.ComponentID,
		LocationID:   in.LocationID,
		Quantity:     in.Quantity,
		User:         user,
		PricePerUnit: in.PricePerUnit,
		TotalPrice:   in.TotalPrice,
		LotID:        in.LotID,
		Reference:    in.Reference,
	})
}

// RemoveStockFromRequest adapta el request HTTP al caso de uso RemoveStock.
func (uc *StockOperationsUseCase) RemoveStockFromRequest(ctx context.Context, user entity.UserRef, in dto.RemoveStockRequest) (*dto.RemoveStockResult, error) {
	return uc.RemoveStock(ctx, RemoveStockInput{
		ComponentID: in.ComponentID,
		LocationID:  in.LocationID,
		Quantity:    in.Quantity,
		User:        user,
		Reason:      in.Reason,
	})
}

// MoveStockFromRequest adapta el request HTTP al caso de uso MoveStock.
func (uc *StockOperationsUseCase) MoveStockFromRequest(ctx context.Context, user entity.UserRef, in dto.MoveStockRequest) (*dto.MoveStockResult, error) {
	return uc.MoveStock(ctx, MoveStockInput{
		ComponentID:           in.ComponentID,
		SourceLocationID:      in.SourceLocationID,
		DestinationLocationID: in.DestinationLocationID,
		Quantity:              in.Quantity,
		User:                  user,
		Reason:                in.Reason,
	})
}
