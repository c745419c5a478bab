package dto

import "github.com/shopspring/decimal"

// CenterAnalyticsRequest parámetros de GET /api/analytics.
type CenterAnalyticsRequest struct {
	FromDate string `query:"from_date"` // YYYY-MM-DD o RFC3339; por defecto hace 30 días
}

// CenterAnalyticsDTO fila del reporte por centro de distribución.
// RemainingPercentage y LowStockAlert se calculan siempre con el stock actual (no se filtran por fecha).
type CenterAnalyticsDTO struct {
	CenterID            string          `json:"center_id"`
	Stock               int             `json:"stock"`
	InitialStock        int             `json:"initial_stock"`
	RemainingPercentage decimal.Decimal `json:"remaining_percentage"` // 100 * stock / initial_stock
	LowStockAlert       bool            `json:"low_stock_alert"`
	TotalOrders         int             `json:"total_orders"`   // órdenes allocated desde from_date
	TotalQuantity       int             `json:"total_quantity"` // suma de quantity de esas órdenes
}
