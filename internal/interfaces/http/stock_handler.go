package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-componentes/internal/application/dto"
	"github.com/jhoicas/Inventario-componentes/internal/application/inventory"
)

// StockHandler operaciones de stock y consultas por componente (protegido).
type StockHandler struct {
	ops     *inventory.StockOperationsUseCase
	queries *inventory.ComponentStockUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(ops *inventory.StockOperationsUseCase, queries *inventory.ComponentStockUseCase) *StockHandler {
	return &StockHandler{ops: ops, queries: queries}
}

// Add godoc
// @Summary      Agregar stock
// @Description  Suma unidades en (componente, ubicación). Crea la fila si no existe.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.AddStockRequest  true  "component_id, location_id, quantity y precios opcionales"
// @Success      200   {object}  dto.AddStockResult
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stock/add [post]
func (h *StockHandler) Add(c *fiber.Ctx) error {
	var in dto.AddStockRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	res, err := h.ops.AddStockFromRequest(c.Context(), CurrentUser(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}

// Remove godoc
// @Summary      Retirar stock
// @Description  Retira hasta quantity unidades; si hay menos se retira todo (capped=true).
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.RemoveStockRequest  true  "component_id, location_id, quantity, reason"
// @Success      200   {object}  dto.RemoveStockResult
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stock/remove [post]
func (h *StockHandler) Remove(c *fiber.Ctx) error {
	var in dto.RemoveStockRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	res, err := h.ops.RemoveStockFromRequest(c.Context(), CurrentUser(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}

// Move godoc
// @Summary      Trasladar stock
// @Description  Traslada hasta quantity unidades entre dos ubicaciones en una transacción.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.MoveStockRequest  true  "component_id, source_location_id, destination_location_id, quantity"
// @Success      200   {object}  dto.MoveStockResult
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/move [post]
func (h *StockHandler) Move(c *fiber.Ctx) error {
	var in dto.MoveStockRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	res, err := h.ops.MoveStockFromRequest(c.Context(), CurrentUser(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}

// GetStock godoc
// @Summary      Stock de un componente
// @Tags         components
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del componente"
// @Success      200  {object}  dto.ComponentStockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/components/{id}/stock [get]
func (h *StockHandler) GetStock(c *fiber.Ctx) error {
	out, err := h.queries.GetComponentStock(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListTransactions godoc
// @Summary      Historial de transacciones
// @Tags         components
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del componente"
// @Param        limit   query  int     false  "Máximo de items (1-100)"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.StockTransactionListResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/components/{id}/transactions [get]
func (h *StockHandler) ListTransactions(c *fiber.Ctx) error {
	out, err := h.queries.ListTransactions(c.Context(), c.Params("id"), pageFromQuery(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Audit godoc
// @Summary      Auditoría del ledger
// @Description  Reproduce el ledger por ubicación y lo compara con las cantidades actuales.
// @Tags         components
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del componente"
// @Success      200  {object}  dto.AuditReport
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/components/{id}/audit [get]
func (h *StockHandler) Audit(c *fiber.Ctx) error {
	out, err := h.queries.AuditComponent(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// UpdateReorder godoc
// @Summary      Configurar reorden
// @Tags         components
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id           path  string                    true  "ID del componente"
// @Param        location_id  path  string                    true  "ID de la ubicación"
// @Param        body         body  dto.UpdateReorderRequest  true  "reorder_threshold, reorder_enabled"
// @Success      200  {object}  dto.ComponentLocationDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/components/{id}/locations/{location_id}/reorder [put]
func (h *StockHandler) UpdateReorder(c *fiber.Ctx) error {
	var in dto.UpdateReorderRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.queries.UpdateReorder(c.Context(), c.Params("id"), c.Params("location_id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
