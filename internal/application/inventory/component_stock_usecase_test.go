package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/Inventario-componentes/internal/application/dto"
	"github.com/jhoicas/Inventario-componentes/internal/application/inventory"
	"github.com/jhoicas/Inventario-componentes/internal/domain"
	"github.com/jhoicas/Inventario-componentes/internal/domain/repository"
)

func TestGetComponentStock(t *testing.T) {
	h := newHarness(t)
	h.add(t, locB, 4)
	h.add(t, locA, 6)

	out, err := h.queries.GetComponentStock(context.Background(), compID)
	require.NoError(t, err)
	assert.Equal(t, "LM317T", out.Component.PartNumber)
	assert.Equal(t, int64(10), out.TotalQuantity)
	require.Len(t, out.Locations, 2)
	assert.Equal(t, locA, out.Locations[0].LocationID)
	assert.Equal(t, locB, out.Locations[1].LocationID)

	_, err = h.queries.GetComponentStock(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListTransactions_NewestFirstAndPaged(t *testing.T) {
	h := newHarness(t)
	for i := int64(1); i <= 5; i++ {
		h.add(t, locA, i)
	}

	out, err := h.queries.ListTransactions(context.Background(), compID, dto.PageRequest{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, out.Items, 2)
	assert.Equal(t, int64(4), out.Items[0].QuantityChange)
	assert.Equal(t, int64(3), out.Items[1].QuantityChange)
	assert.Greater(t, out.Items[0].Sequence, out.Items[1].Sequence)
	assert.Equal(t, 2, out.Page.Limit)

	out, err = h.queries.ListTransactions(context.Background(), compID, dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, out.Items, 5)
	assert.Equal(t, 20, out.Page.Limit)
}

func TestUpdateReorder(t *testing.T) {
	h := newHarness(t)
	h.add(t, locA, 8)
	th := int64(5)

	out, err := h.queries.UpdateReorder(context.Background(), compID, locA, dto.UpdateReorderRequest{ReorderThreshold: &th, ReorderEnabled: true})
	require.NoError(t, err)
	assert.True(t, out.ReorderEnabled)
	require.NotNil(t, out.ReorderThreshold)
	assert.Equal(t, int64(5), *out.ReorderThreshold)
	assert.Equal(t, int64(8), out.QuantityOnHand)

	// Una operación de stock posterior conserva la configuración de reorden.
	_, err = h.ops.RemoveStock(context.Background(), inventory.RemoveStockInput{ComponentID: compID, LocationID: locA, Quantity: 4, User: testUser})
	require.NoError(t, err)
	cl, err := h.store.ComponentLocations().Get(context.Background(), compID, locA)
	require.NoError(t, err)
	assert.True(t, cl.ReorderEnabled)

	neg := int64(-1)
	_, err = h.queries.UpdateReorder(context.Background(), compID, locA, dto.UpdateReorderRequest{ReorderThreshold: &neg})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = h.queries.UpdateReorder(context.Background(), compID, locB, dto.UpdateReorderRequest{ReorderEnabled: true})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAuditComponent(t *testing.T) {
	h := newHarness(t)
	h.add(t, locA, 10)
	_, err := h.ops.MoveStock(context.Background(), inventory.MoveStockInput{
		ComponentID: compID, SourceLocationID: locA, DestinationLocationID: locB, Quantity: 10, User: testUser,
	})
	require.NoError(t, err)

	report, err := h.queries.AuditComponent(context.Background(), compID)
	require.NoError(t, err)
	assert.True(t, report.Consistent)
	assert.Equal(t, int64(10), report.TotalQuantity)
	require.Len(t, report.Locations, 2)
	assert.Equal(t, locA, report.Locations[0].LocationID)
	assert.Equal(t, int64(0), report.Locations[0].ReplayedQuantity)
	assert.Equal(t, int64(10), report.Locations[1].ReplayedQuantity)

	// Escritura directa sin ledger: la auditoría la detecta.
	err = h.store.Run(context.Background(), func(stockRepo repository.ComponentLocationRepository, _ repository.StockTransactionRepository) error {
		cl, err := stockRepo.GetForUpdate(context.Background(), compID, locB)
		if err != nil {
			return err
		}
		cl.QuantityOnHand = 99
		return stockRepo.Update(context.Background(), cl)
	})
	require.NoError(t, err)

	report, err = h.queries.AuditComponent(context.Background(), compID)
	require.NoError(t, err)
	assert.False(t, report.Consistent)
	assert.False(t, report.Locations[1].Consistent)
	assert.NotEmpty(t, report.Locations[1].Discrepancies)
}

func TestAuditComponent_ConsistentWhileStockChanges(t *testing.T) {
	h := newHarness(t)
	h.add(t, locA, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	for range 4 {
		g.Go(func() error {
			for gctx.Err() == nil {
				_, err := h.ops.AddStock(gctx, inventory.AddStockInput{
					ComponentID: compID, LocationID: locA, Quantity: 1, User: testUser,
				})
				if err != nil && gctx.Err() == nil {
					return err
				}
			}
			return nil
		})
	}

	for range 200 {
		report, err := h.queries.AuditComponent(context.Background(), compID)
		require.NoError(t, err)
		require.True(t, report.Consistent, "auditoría concurrente: %+v", report.Locations)
	}
	cancel()
	require.NoError(t, g.Wait())
	h.assertConsistent(t)
}
