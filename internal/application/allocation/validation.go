package allocation

import (
	"strings"

	"github.com/jhoicas/order-allocation/internal/application/dto"
	"github.com/jhoicas/order-allocation/internal/domain"
	"github.com/jhoicas/order-allocation/internal/domain/entity"
)

// rule valida un aspecto de la entrada; nil si se cumple.
type rule func(in dto.AllocateOrderRequest) error

var allocateRules = []rule{
	requireOrderID,
	requirePositiveQuantity,
	requireNumericZip,
}

// validateAllocateRequest aplica las reglas en orden; la primera violación gana.
func validateAllocateRequest(in dto.AllocateOrderRequest) error {
	for _, r := range allocateRules {
		if err := r(in); err != nil {
			return err
		}
	}
	return nil
}

func requireOrderID(in dto.AllocateOrderRequest) error {
	if strings.TrimSpace(in.OrderID) == "" {
		return domain.NewValidationError("order_id", "no puede estar vacío")
	}
	return nil
}

func requirePositiveQuantity(in dto.AllocateOrderRequest) error {
	if in.Quantity <= 0 {
		return domain.NewValidationError("quantity", "debe ser un entero positivo")
	}
	return nil
}

func requireNumericZip(in dto.AllocateOrderRequest) error {
	if !entity.IsNumeric(in.ZipCode) {
		return domain.NewValidationError("zip_code", "debe ser numérico")
	}
	return nil
}
