package postgres_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/Inventario-componentes/internal/application/inventory"
	"github.com/jhoicas/Inventario-componentes/internal/domain"
	"github.com/jhoicas/Inventario-componentes/internal/domain/entity"
	"github.com/jhoicas/Inventario-componentes/internal/infrastructure/postgres"
	"github.com/jhoicas/Inventario-componentes/pkg/config"
)

// Requiere una base PostgreSQL desechable: INVENTORY_TEST_DATABASE_URL=postgres://...
func openTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("INVENTORY_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("INVENTORY_TEST_DATABASE_URL no definido")
	}
	require.NoError(t, postgres.Migrate(dsn))
	pool, err := postgres.NewPool(context.Background(), config.DBConfig{DatabaseURL: dsn, MaxConns: 20})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

type fixture struct {
	pool      *pgxpool.Pool
	ops       *inventory.StockOperationsUseCase
	queries   *inventory.ComponentStockUseCase
	stock     *postgres.ComponentLocationRepo
	component string
	locA      string
	locB      string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	pool := openTestPool(t)
	ctx := context.Background()
	now := time.Now().UTC()

	components := postgres.NewComponentRepository(pool)
	locations := postgres.NewStorageLocationRepository(pool)
	stock := postgres.NewComponentLocationRepository(pool)

	f := &fixture{pool: pool, stock: stock, component: uuid.New().String(), locA: uuid.New().String(), locB: uuid.New().String()}
	require.NoError(t, components.Create(ctx, &entity.Component{ID: f.component, PartNumber: "IT-" + f.component, CreatedAt: now, UpdatedAt: now}))
	for _, id := range []string{f.locA, f.locB} {
		require.NoError(t, locations.Create(ctx, &entity.StorageLocation{ID: id, Name: "IT-" + id, CreatedAt: now, UpdatedAt: now}))
	}
	f.ops = inventory.NewStockOperationsUseCase(postgres.NewTxRunner(pool), components, locations, stock)
	f.queries = inventory.NewComponentStockUseCase(postgres.NewTxRunner(pool), components, stock, postgres.NewStockTransactionRepository(pool))
	return f
}

var itUser = entity.UserRef{ID: "it-user", Name: "Integración"}

func TestPostgres_ConcurrentAddsFromEmpty(t *testing.T) {
	f := newFixture(t)

	g, ctx := errgroup.WithContext(context.Background())
	for range 20 {
		g.Go(func() error {
			_, err := f.ops.AddStock(ctx, inventory.AddStockInput{ComponentID: f.component, LocationID: f.locA, Quantity: 1, User: itUser})
			return err
		})
	}
	require.NoError(t, g.Wait())

	total, err := f.stock.SumQuantityByComponent(context.Background(), f.component)
	require.NoError(t, err)
	assert.Equal(t, int64(20), total)

	report, err := f.queries.AuditComponent(context.Background(), f.component)
	require.NoError(t, err)
	assert.True(t, report.Consistent)
}

func TestPostgres_OppositeMovesAndPricing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ppu := decimal.RequireFromString("0.125")

	_, err := f.ops.AddStock(ctx, inventory.AddStockInput{ComponentID: f.component, LocationID: f.locA, Quantity: 50, User: itUser, PricePerUnit: &ppu})
	require.NoError(t, err)
	_, err = f.ops.AddStock(ctx, inventory.AddStockInput{ComponentID: f.component, LocationID: f.locB, Quantity: 50, User: itUser})
	require.NoError(t, err)

	tctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	g, gctx := errgroup.WithContext(tctx)
	for i := range 40 {
		src, dst := f.locA, f.locB
		if i%2 == 1 {
			src, dst = f.locB, f.locA
		}
		g.Go(func() error {
			_, err := f.ops.MoveStock(gctx, inventory.MoveStockInput{
				ComponentID: f.component, SourceLocationID: src, DestinationLocationID: dst, Quantity: 2, User: itUser,
			})
			if errors.Is(err, domain.ErrNotFound) {
				return nil
			}
			return err
		})
	}
	require.NoError(t, g.Wait())

	stock, err := f.queries.GetComponentStock(ctx, f.component)
	require.NoError(t, err)
	assert.Equal(t, int64(100), stock.TotalQuantity)

	cl, err := f.stock.Get(ctx, f.component, f.locA)
	require.NoError(t, err)
	require.NotNil(t, cl)
	require.NotNil(t, cl.UnitCostAtLocation)
	assert.True(t, cl.UnitCostAtLocation.Equal(ppu))

	report, err := f.queries.AuditComponent(ctx, f.component)
	require.NoError(t, err)
	assert.True(t, report.Consistent)
}

func TestPostgres_RemoveDeletesRowAndLedgerIsImmutable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.ops.AddStock(ctx, inventory.AddStockInput{ComponentID: f.component, LocationID: f.locA, Quantity: 3, User: itUser})
	require.NoError(t, err)
	res, err := f.ops.RemoveStock(ctx, inventory.RemoveStockInput{ComponentID: f.component, LocationID: f.locA, Quantity: 5, User: itUser})
	require.NoError(t, err)
	assert.True(t, res.Capped)
	assert.True(t, res.LocationDeleted)

	cl, err := f.stock.Get(ctx, f.component, f.locA)
	require.NoError(t, err)
	assert.Nil(t, cl)

	_, err = f.pool.Exec(ctx, `UPDATE stock_transactions SET quantity_change = 0 WHERE component_id = $1`, f.component)
	assert.Error(t, err)
	_, err = f.pool.Exec(ctx, `DELETE FROM stock_transactions WHERE component_id = $1`, f.component)
	assert.Error(t, err)
}

func TestPostgres_MoveFromEmptySourceRollsBackDestination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.ops.MoveStock(ctx, inventory.MoveStockInput{
		ComponentID: f.component, SourceLocationID: f.locA, DestinationLocationID: f.locB, Quantity: 1, User: itUser,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	cl, err := f.stock.Get(ctx, f.component, f.locB)
	require.NoError(t, err)
	assert.Nil(t, cl)
}

func TestPostgres_MalformedSourceIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.ops.RemoveStock(ctx, inventory.RemoveStockInput{
		ComponentID: f.component, LocationID: "no-es-uuid", Quantity: 1, User: itUser,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// "0-..." ordena antes que cualquier UUID: el origen se bloquea antes que el destino.
	_, err = f.ops.MoveStock(ctx, inventory.MoveStockInput{
		ComponentID: f.component, SourceLocationID: "0-no-es-uuid", DestinationLocationID: f.locB, Quantity: 1, User: itUser,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	cl, err := f.stock.Get(ctx, f.component, f.locB)
	require.NoError(t, err)
	assert.Nil(t, cl)
}

func TestPostgres_AuditConsistentWhileStockChanges(t *testing.T) {
	f := newFixture(t)
	_, err := f.ops.AddStock(context.Background(), inventory.AddStockInput{ComponentID: f.component, LocationID: f.locA, Quantity: 1, User: itUser})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	for range 4 {
		g.Go(func() error {
			for gctx.Err() == nil {
				_, err := f.ops.AddStock(gctx, inventory.AddStockInput{ComponentID: f.component, LocationID: f.locA, Quantity: 1, User: itUser})
				if err != nil && gctx.Err() == nil {
					return err
				}
			}
			return nil
		})
	}

	for range 50 {
		report, err := f.queries.AuditComponent(context.Background(), f.component)
		require.NoError(t, err)
		require.True(t, report.Consistent, "auditoría concurrente: %+v", report.Locations)
	}
	cancel()
	require.NoError(t, g.Wait())
}
