package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-componentes/internal/application/dto"
	"github.com/jhoicas/Inventario-componentes/internal/application/inventory"
	"github.com/jhoicas/Inventario-componentes/internal/application/usecase"
	"github.com/jhoicas/Inventario-componentes/internal/domain/entity"
	"github.com/jhoicas/Inventario-componentes/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/Inventario-componentes/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	compID = "cmp-1"
	locA   = "loc-a"
	locB   = "loc-b"
)

func buildAPI(t *testing.T) *fiber.App {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Components().Create(ctx, &entity.Component{ID: compID, PartNumber: "NE555P"}))
	require.NoError(t, store.Locations().Create(ctx, &entity.StorageLocation{ID: locA, Name: "Gaveta A"}))
	require.NoError(t, store.Locations().Create(ctx, &entity.StorageLocation{ID: locB, Name: "Gaveta B"}))

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		StockOps:    inventory.NewStockOperationsUseCase(store, store.Components(), store.Locations(), store.ComponentLocations()),
		StockQuery:  inventory.NewComponentStockUseCase(store, store.Components(), store.ComponentLocations(), store.Transactions()),
		ComponentUC: usecase.NewComponentUseCase(store.Components()),
		LocationUC:  usecase.NewLocationUseCase(store.Locations()),
		JWTSecret:   testJWTSecret,
	})
	return app
}

func send(t *testing.T, app *fiber.App, auth, method, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Operaciones de stock
// ──────────────────────────────────────────────────────────────────────────────

func TestStockAPI_AddRemoveMove(t *testing.T) {
	app := buildAPI(t)
	auth := bearer(t, "almacen")

	resp := send(t, app, auth, http.MethodPost, "/api/stock/add", fiber.Map{
		"component_id": compID, "location_id": locA, "quantity": 10, "price_per_unit": "0.12",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	added := decode[dto.AddStockResult](t, resp)
	assert.True(t, added.Success)
	assert.True(t, added.LocationCreated)
	assert.Equal(t, int64(10), added.TotalQuantity)
	require.NotNil(t, added.TotalPrice)
	assert.Equal(t, "1.2", added.TotalPrice.String())

	resp = send(t, app, auth, http.MethodPost, "/api/stock/move", fiber.Map{
		"component_id": compID, "source_location_id": locA, "destination_location_id": locB, "quantity": 4,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	moved := decode[dto.MoveStockResult](t, resp)
	assert.Equal(t, int64(6), moved.SourceNewQuantity)
	assert.Equal(t, int64(4), moved.DestinationNewQuantity)
	assert.NotEmpty(t, moved.CorrelationID)

	resp = send(t, app, auth, http.MethodPost, "/api/stock/remove", fiber.Map{
		"component_id": compID, "location_id": locB, "quantity": 9,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	removed := decode[dto.RemoveStockResult](t, resp)
	assert.True(t, removed.Capped)
	assert.Equal(t, int64(4), removed.ActualQuantity)
	assert.True(t, removed.LocationDeleted)
	assert.Equal(t, int64(6), removed.TotalQuantity)

	resp = send(t, app, auth, http.MethodGet, "/api/components/"+compID+"/stock", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stock := decode[dto.ComponentStockResponse](t, resp)
	assert.Equal(t, int64(6), stock.TotalQuantity)
	require.Len(t, stock.Locations, 1)
	assert.Equal(t, locA, stock.Locations[0].LocationID)

	resp = send(t, app, auth, http.MethodGet, "/api/components/"+compID+"/transactions?limit=2", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	history := decode[dto.StockTransactionListResponse](t, resp)
	require.Len(t, history.Items, 2)
	assert.Equal(t, entity.TransactionTypeREMOVE, history.Items[0].Type)
	assert.Equal(t, testUserID, history.Items[0].UserID)
	assert.Equal(t, testUserName, history.Items[0].UserName)

	resp = send(t, app, auth, http.MethodGet, "/api/components/"+compID+"/audit", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	audit := decode[dto.AuditReport](t, resp)
	assert.True(t, audit.Consistent)
}

func TestStockAPI_ValidationErrors(t *testing.T) {
	app := buildAPI(t)
	auth := bearer(t, "")

	resp := send(t, app, auth, http.MethodPost, "/api/stock/add", fiber.Map{
		"component_id": compID, "location_id": locA, "quantity": 0,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "VALIDATION", body.Code)
	assert.Contains(t, body.Details, "quantity")

	resp = send(t, app, auth, http.MethodPost, "/api/stock/move", fiber.Map{
		"component_id": compID, "source_location_id": locA, "destination_location_id": locA, "quantity": 1,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/stock/remove", bytes.NewBufferString("{no json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", auth)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_BODY", decode[dto.ErrorResponse](t, resp).Code)
}

func TestStockAPI_NotFound(t *testing.T) {
	app := buildAPI(t)
	auth := bearer(t, "")

	resp := send(t, app, auth, http.MethodPost, "/api/stock/remove", fiber.Map{
		"component_id": compID, "location_id": locA, "quantity": 1,
	})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decode[dto.ErrorResponse](t, resp).Code)

	resp = send(t, app, auth, http.MethodGet, "/api/components/desconocido/stock", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestStockAPI_RequiresToken(t *testing.T) {
	app := buildAPI(t)
	resp := send(t, app, "", http.MethodPost, "/api/stock/add", fiber.Map{
		"component_id": compID, "location_id": locA, "quantity": 1,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestStockAPI_UpdateReorder(t *testing.T) {
	app := buildAPI(t)
	auth := bearer(t, "")

	resp := send(t, app, auth, http.MethodPut, "/api/components/"+compID+"/locations/"+locA+"/reorder", fiber.Map{
		"reorder_threshold": 3, "reorder_enabled": true,
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = send(t, app, auth, http.MethodPost, "/api/stock/add", fiber.Map{
		"component_id": compID, "location_id": locA, "quantity": 5,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = send(t, app, auth, http.MethodPut, "/api/components/"+compID+"/locations/"+locA+"/reorder", fiber.Map{
		"reorder_threshold": 3, "reorder_enabled": true,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[dto.ComponentLocationDTO](t, resp)
	assert.True(t, out.ReorderEnabled)
	require.NotNil(t, out.ReorderThreshold)
	assert.Equal(t, int64(3), *out.ReorderThreshold)
}

// ──────────────────────────────────────────────────────────────────────────────
// Catálogo
// ──────────────────────────────────────────────────────────────────────────────

func TestCatalogAPI(t *testing.T) {
	app := buildAPI(t)
	auth := bearer(t, "")

	resp := send(t, app, auth, http.MethodPost, "/api/components", fiber.Map{
		"part_number": "ATMEGA328P-PU", "manufacturer": "Microchip", "category": "MCU",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[dto.ComponentResponse](t, resp)
	assert.NotEmpty(t, created.ID)

	resp = send(t, app, auth, http.MethodPost, "/api/components", fiber.Map{"part_number": "ATMEGA328P-PU"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	resp = send(t, app, auth, http.MethodPost, "/api/components", fiber.Map{"manufacturer": "TI"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = send(t, app, auth, http.MethodGet, "/api/components/"+created.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ATMEGA328P-PU", decode[dto.ComponentResponse](t, resp).PartNumber)

	resp = send(t, app, auth, http.MethodGet, "/api/components?limit=10", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[dto.ComponentListResponse](t, resp).Items, 2)

	resp = send(t, app, auth, http.MethodPost, "/api/locations", fiber.Map{"name": "Estante 3"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	loc := decode[dto.LocationResponse](t, resp)

	resp = send(t, app, auth, http.MethodGet, "/api/locations/"+loc.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = send(t, app, auth, http.MethodGet, "/api/locations/no-existe", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = send(t, app, auth, http.MethodGet, "/api/locations", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[dto.LocationListResponse](t, resp).Items, 3)
}
