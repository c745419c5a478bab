package dto

import "time"

// AllocateOrderRequest entrada de POST /api/allocate.
type AllocateOrderRequest struct {
	OrderID  string `json:"order_id"`
	Quantity int    `json:"quantity"`
	ZipCode  string `json:"zip_code"`
}

// AllocationResponse resultado de una asignación exitosa.
type AllocationResponse struct {
	OrderID  string `json:"order_id"`
	CenterID string `json:"center_id"`
	Status   string `json:"status"`
}

// OrderResponse salida de GET /api/orders/:order_id.
type OrderResponse struct {
	OrderID   string    `json:"order_id"`
	Quantity  int       `json:"quantity"`
	ZipCode   string    `json:"zip_code"`
	CenterID  *string   `json:"center_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
