// Package analytics contiene el reporte de actividad por centro de distribución.
package analytics

import (
	"context"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/order-allocation/internal/application/dto"
	"github.com/jhoicas/order-allocation/internal/domain"
	"github.com/jhoicas/order-allocation/internal/domain/entity"
	"github.com/jhoicas/order-allocation/internal/domain/repository"
)

const defaultWindowDays = 30

// CenterReportUseCase agrega órdenes asignadas por centro.
//
// Fuente de datos: CenterRepository.List y OrderRepository.ListAllocatedSince.
// Stock, porcentaje y alerta son siempre los valores vigentes; sólo los totales
// se filtran por fecha.
type CenterReportUseCase struct {
	centers    repository.CenterRepository
	orders     repository.OrderRepository
	windowDays int
	now        func() time.Time
}

// NewCenterReportUseCase construye el caso de uso. windowDays <= 0 usa 30 días; now nil usa time.Now.
func NewCenterReportUseCase(
	centers repository.CenterRepository,
	orders repository.OrderRepository,
	windowDays int,
	now func() time.Time,
) *CenterReportUseCase {
	if windowDays <= 0 {
		windowDays = defaultWindowDays
	}
	if now == nil {
		now = time.Now
	}
	return &CenterReportUseCase{centers: centers, orders: orders, windowDays: windowDays, now: now}
}

// Report devuelve una fila por centro, ordenada por center_id.
// from nil equivale a now - windowDays.
func (uc *CenterReportUseCase) Report(ctx context.Context, from *time.Time) ([]dto.CenterAnalyticsDTO, error) {
	since := uc.now().AddDate(0, 0, -uc.windowDays)
	if from != nil {
		since = *from
	}

	// Dos lecturas independientes en paralelo.
	var (
		centers []*entity.DistributionCenter
		orders  []*entity.Order
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := uc.centers.List(gctx)
		if err != nil {
			return domain.NewStoreError("listar centros", err)
		}
		centers = list
		return nil
	})
	g.Go(func() error {
		list, err := uc.orders.ListAllocatedSince(gctx, since)
		if err != nil {
			return domain.NewStoreError("listar órdenes asignadas", err)
		}
		orders = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	type totals struct{ count, quantity int }
	byCenter := make(map[string]totals, len(centers))
	for _, o := range orders {
		if o == nil || o.CenterID == nil {
			continue
		}
		t := byCenter[*o.CenterID]
		t.count++
		t.quantity += o.Quantity
		byCenter[*o.CenterID] = t
	}

	rows := make([]dto.CenterAnalyticsDTO, 0, len(centers))
	for _, c := range centers {
		if c == nil {
			continue
		}
		t := byCenter[c.CenterID]
		rows = append(rows, dto.CenterAnalyticsDTO{
			CenterID:            c.CenterID,
			Stock:               c.Stock,
			InitialStock:        c.InitialStock,
			RemainingPercentage: c.RemainingPercentage(),
			LowStockAlert:       c.IsLowStock(),
			TotalOrders:         t.count,
			TotalQuantity:       t.quantity,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CenterID < rows[j].CenterID })
	return rows, nil
}

// ParseFromDate interpreta from_date como YYYY-MM-DD (UTC) o RFC3339. Vacío devuelve nil.
func ParseFromDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, domain.NewValidationError("from_date", "formato esperado YYYY-MM-DD o RFC3339")
	}
	return &t, nil
}
