package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-componentes/internal/application/dto"
	"github.com/jhoicas/Inventario-componentes/internal/application/usecase"
)

// ComponentHandler maneja el catálogo de componentes (protegido).
type ComponentHandler struct {
	uc *usecase.ComponentUseCase
}

// NewComponentHandler construye el handler.
func NewComponentHandler(uc *usecase.ComponentUseCase) *ComponentHandler {
	return &ComponentHandler{uc: uc}
}

// Create godoc
// @Summary      Crear componente
// @Tags         components
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateComponentRequest  true  "part_number, manufacturer, description, category"
// @Success      201   {object}  dto.ComponentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/components [post]
func (h *ComponentHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateComponentRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Create(c.Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener componente
// @Tags         components
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del componente"
// @Success      200  {object}  dto.ComponentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/components/{id} [get]
func (h *ComponentHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	if out == nil {
		return notFound(c, "componente no encontrado")
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar componentes
// @Tags         components
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Máximo de items (1-100)"
// @Param        offset  query  int  false  "Desplazamiento"
// @Success      200  {object}  dto.ComponentListResponse
// @Router       /api/components [get]
func (h *ComponentHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.Context(), pageFromQuery(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
