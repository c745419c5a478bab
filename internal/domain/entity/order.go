package entity

import "time"

// Estados de una orden. La asignación sólo produce OrderStatusAllocated; pending queda reservado.
const (
	OrderStatusPending   = "pending"
	OrderStatusAllocated = "allocated"
)

// Order representa una orden de un único ítem asignada a un centro de distribución.
// Se crea una sola vez, al asignarse, y es inmutable.
type Order struct {
	OrderID      string
	Quantity     int
	ZipCode      string
	CenterID     *string // referencia débil: nil si el centro fue eliminado
	Status       string
	AllocationID string // identifica el intento de asignación que escribió la fila
	CreatedAt    time.Time
}

// CenterIDOrEmpty devuelve el centro asignado o "" si no hay.
func (o *Order) CenterIDOrEmpty() string {
	if o.CenterID == nil {
		return ""
	}
	return *o.CenterID
}
