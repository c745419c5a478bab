// Package allocation contiene la política pura de selección de centro (servicio de dominio).
package allocation

import (
	"strconv"

	"github.com/jhoicas/order-allocation/internal/domain"
	"github.com/jhoicas/order-allocation/internal/domain/entity"
)

// ParseZip convierte un código postal numérico en entero.
func ParseZip(zip string) (int, error) {
	if !entity.IsNumeric(zip) {
		return 0, domain.NewValidationError("zip_code", "debe ser numérico")
	}
	n, err := strconv.Atoi(zip)
	if err != nil {
		return 0, domain.NewValidationError("zip_code", "fuera de rango")
	}
	return n, nil
}

// Choose elige el candidato que minimiza |zip_centro - targetZip|.
// Empate: gana el primero en el orden recibido. Centros con zip no numérico se ignoran.
// Sin candidatos válidos devuelve domain.ErrNoCapacity.
func Choose(candidates []*entity.DistributionCenter, targetZip int) (*entity.DistributionCenter, error) {
	var best *entity.DistributionCenter
	bestDist := 0
	for _, c := range candidates {
		if c == nil {
			continue
		}
		z, err := ParseZip(c.ZipCode)
		if err != nil {
			continue
		}
		d := distance(z, targetZip)
		if best == nil || d < bestDist {
			best, bestDist = c, d
		}
	}
	if best == nil {
		return nil, domain.ErrNoCapacity
	}
	return best, nil
}

func distance(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
