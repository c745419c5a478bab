package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/order-allocation/internal/application/allocation"
	"github.com/jhoicas/order-allocation/internal/application/dto"
)

// AllocationHandler maneja la asignación y consulta de órdenes (protegido).
type AllocationHandler struct {
	uc      *allocation.AllocateOrderUseCase
	timeout time.Duration
}

// NewAllocationHandler construye el handler. timeout <= 0 usa 5s.
func NewAllocationHandler(uc *allocation.AllocateOrderUseCase, timeout time.Duration) *AllocationHandler {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &AllocationHandler{uc: uc, timeout: timeout}
}

// Allocate godoc
// @Summary      Asignar orden al centro más cercano con stock
// @Tags         allocation
// @Security     ApiKey
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AllocateOrderRequest  true  "order_id, quantity, zip_code"
// @Success      200   {object}  dto.AllocationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/allocate [post]
func (h *AllocationHandler) Allocate(c *fiber.Ctx) error {
	var in dto.AllocateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	out, err := h.uc.Allocate(ctx, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(out)
}

// GetOrder godoc
// @Summary      Consultar una orden por order_id
// @Tags         allocation
// @Security     ApiKey
// @Produce      json
// @Param        order_id  path  string  true  "order_id"
// @Success      200   {object}  dto.OrderResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/orders/{order_id} [get]
func (h *AllocationHandler) GetOrder(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	out, err := h.uc.GetOrder(ctx, c.Params("order_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
