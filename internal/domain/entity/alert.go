package entity

import "time"

// LowStockMessage mensaje fijo de las alertas de stock bajo.
const LowStockMessage = "low stock: remaining stock below 20% of initial stock"

// AlertRecord evento efímero de stock bajo; no se persiste como entidad consultable.
type AlertRecord struct {
	CenterID       string    `json:"center_id"`
	StockRemaining int       `json:"stock_remaining"`
	InitialStock   int       `json:"initial_stock"`
	Timestamp      time.Time `json:"timestamp"`
	Message        string    `json:"message"`
}

// NewAlertRecord construye una alerta nueva para el estado actual del centro.
func NewAlertRecord(c *DistributionCenter, now time.Time) AlertRecord {
	return AlertRecord{
		CenterID:       c.CenterID,
		StockRemaining: c.Stock,
		InitialStock:   c.InitialStock,
		Timestamp:      now.UTC(),
		Message:        LowStockMessage,
	}
}

// AllocationRecord copia del resultado de una asignación exitosa (bitácora externa).
type AllocationRecord struct {
	OrderID  string `json:"order_id"`
	CenterID string `json:"center_id"`
	Status   string `json:"status"`
}
