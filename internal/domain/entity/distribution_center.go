package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultInitialStock capacidad base cuando el seed no la informa.
const DefaultInitialStock = 100

// lowStockDivisor: stock < 20% de initial_stock  ⇔  5*stock < initial_stock (sin flotantes).
const lowStockDivisor = 5

// DistributionCenter representa un centro de distribución con stock de un único ítem.
// CenterID e InitialStock son inmutables; Stock sólo cambia por el camino de asignación.
type DistributionCenter struct {
	CenterID     string
	Stock        int
	InitialStock int
	ZipCode      string // código postal numérico usado para la distancia
	UpdatedAt    time.Time
}

// IsLowStock indica si el stock quedó por debajo del 20% del stock inicial (derivado, no se almacena).
func (c *DistributionCenter) IsLowStock() bool {
	return IsLowStock(c.Stock, c.InitialStock)
}

// IsLowStock aplica la regla de stock bajo a valores sueltos.
func IsLowStock(stock, initialStock int) bool {
	return stock*lowStockDivisor < initialStock
}

// RemainingPercentage devuelve 100 * stock / initial_stock redondeado a 2 decimales.
func (c *DistributionCenter) RemainingPercentage() decimal.Decimal {
	if c.InitialStock <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(c.Stock)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(c.InitialStock))).
		Round(2)
}

// Validate verifica las invariantes de creación (usado por el seed).
func (c *DistributionCenter) Validate() error {
	if strings.TrimSpace(c.CenterID) == "" {
		return errInvalidCenter("center_id vacío")
	}
	if c.Stock < 0 {
		return errInvalidCenter("stock no puede ser negativo")
	}
	if c.InitialStock <= 0 {
		return errInvalidCenter("initial_stock debe ser positivo")
	}
	if !IsNumeric(c.ZipCode) {
		return errInvalidCenter("zip_code debe ser numérico")
	}
	return nil
}

// IsNumeric indica si s es no vacío y sólo contiene dígitos ASCII.
func IsNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

type invalidCenterError string

func (e invalidCenterError) Error() string { return "centro inválido: " + string(e) }

func errInvalidCenter(msg string) error { return invalidCenterError(msg) }
