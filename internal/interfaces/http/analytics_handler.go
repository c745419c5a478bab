package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/order-allocation/internal/application/analytics"
	"github.com/jhoicas/order-allocation/internal/application/dto"
)

// AnalyticsHandler expone el reporte por centro.
type AnalyticsHandler struct {
	uc      *analytics.CenterReportUseCase
	timeout time.Duration
}

// NewAnalyticsHandler construye el handler. timeout <= 0 usa 5s.
func NewAnalyticsHandler(uc *analytics.CenterReportUseCase, timeout time.Duration) *AnalyticsHandler {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &AnalyticsHandler{uc: uc, timeout: timeout}
}

// Centers godoc
// @Summary      Órdenes y stock por centro de distribución
// @Description  Totales de órdenes asignadas desde from_date (por defecto últimos 30 días).
//
//	Stock, porcentaje restante y alerta son siempre los valores vigentes.
//
// @Tags         analytics
// @Security     ApiKey
// @Produce      json
// @Param        from_date  query  string  false  "YYYY-MM-DD o RFC3339"
// @Success      200  {array}   dto.CenterAnalyticsDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/analytics [get]
func (h *AnalyticsHandler) Centers(c *fiber.Ctx) error {
	var in dto.CenterAnalyticsRequest
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	from, err := analytics.ParseFromDate(in.FromDate)
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	rows, err := h.uc.Report(ctx, from)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(rows)
}
