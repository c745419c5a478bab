// Package allocation orquesta la asignación de órdenes a centros de distribución:
// validación, reserva del order_id, selección del centro, descuento atómico de stock,
// registro de la orden y efectos secundarios (alerta de stock bajo, bitácora).
package allocation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/order-allocation/internal/application/dto"
	"github.com/jhoicas/order-allocation/internal/domain"
	policy "github.com/jhoicas/order-allocation/internal/domain/allocation"
	"github.com/jhoicas/order-allocation/internal/domain/entity"
	"github.com/jhoicas/order-allocation/internal/domain/repository"
	"github.com/jhoicas/order-allocation/pkg/logger"
)

const (
	defaultMaxCommitAttempts  = 3
	defaultMaxPersistAttempts = 3
	defaultPersistBackoff     = 50 * time.Millisecond
	defaultPersistTimeout     = 10 * time.Second
	defaultSideEffectTimeout  = 2 * time.Second
	compensationTimeout       = 5 * time.Second
	tracerName                = "github.com/jhoicas/order-allocation/allocation"
)

// Config límites de reintento de la asignación.
type Config struct {
	MaxCommitAttempts  int           // intentos de descuento ante carrera perdida (total)
	MaxPersistAttempts int           // intentos de registrar la orden tras descontar stock
	PersistBackoff     time.Duration // espera lineal entre intentos de registro
	PersistTimeout     time.Duration // tope total del registro; no depende del contexto del cliente
	SideEffectTimeout  time.Duration // tope de alerta + bitácora
}

func (c Config) withDefaults() Config {
	if c.MaxCommitAttempts <= 0 {
		c.MaxCommitAttempts = defaultMaxCommitAttempts
	}
	if c.MaxPersistAttempts <= 0 {
		c.MaxPersistAttempts = defaultMaxPersistAttempts
	}
	if c.PersistBackoff < 0 {
		c.PersistBackoff = 0
	}
	if c.PersistTimeout <= 0 {
		c.PersistTimeout = defaultPersistTimeout
	}
	if c.SideEffectTimeout <= 0 {
		c.SideEffectTimeout = defaultSideEffectTimeout
	}
	return c
}

// Deps dependencias del caso de uso. Guard, Alerts, Records, Logger, Tracer y Now son opcionales.
type Deps struct {
	Centers repository.CenterRepository
	Orders  repository.OrderRepository
	Guard   OrderGuard
	Alerts  AlertSink
	Records RecordSink
	Logger  *logger.Logger
	Tracer  trace.Tracer
	Now     func() time.Time
	NewID   func() string
}

// AllocateOrderUseCase asigna órdenes al centro más cercano con stock suficiente.
type AllocateOrderUseCase struct {
	centers repository.CenterRepository
	orders  repository.OrderRepository
	guard   OrderGuard
	alerts  AlertSink
	records RecordSink
	log     *logger.Logger
	tracer  trace.Tracer
	now     func() time.Time
	newID   func() string
	cfg     Config
}

// NewAllocateOrderUseCase construye el caso de uso.
func NewAllocateOrderUseCase(deps Deps, cfg Config) *AllocateOrderUseCase {
	uc := &AllocateOrderUseCase{
		centers: deps.Centers,
		orders:  deps.Orders,
		guard:   deps.Guard,
		alerts:  deps.Alerts,
		records: deps.Records,
		log:     deps.Logger,
		tracer:  deps.Tracer,
		now:     deps.Now,
		newID:   deps.NewID,
		cfg:     cfg.withDefaults(),
	}
	if uc.guard == nil {
		uc.guard = nopGuard{}
	}
	if uc.alerts == nil {
		uc.alerts = nopAlertSink{}
	}
	if uc.records == nil {
		uc.records = nopRecordSink{}
	}
	if uc.log == nil {
		uc.log = logger.Nop()
	}
	if uc.tracer == nil {
		uc.tracer = otel.Tracer(tracerName)
	}
	if uc.now == nil {
		uc.now = time.Now
	}
	if uc.newID == nil {
		uc.newID = func() string { return uuid.New().String() }
	}
	return uc
}

// Allocate valida la orden, elige el centro más cercano con stock suficiente, descuenta
// el stock de forma atómica, registra la orden y dispara la alerta de stock bajo si aplica.
//
// Errores: *domain.ValidationError, domain.ErrDuplicateOrder, domain.ErrNoCapacity,
// *domain.StoreError. Cualquier error antes del descuento no deja cambios.
func (uc *AllocateOrderUseCase) Allocate(ctx context.Context, in dto.AllocateOrderRequest) (_ *dto.AllocationResponse, err error) {
	ctx, span := uc.tracer.Start(ctx, "allocation.allocate")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "allocated")
		}
		span.End()
	}()

	in.OrderID = strings.TrimSpace(in.OrderID)
	if err := validateAllocateRequest(in); err != nil {
		return nil, err
	}
	targetZip, err := policy.ParseZip(in.ZipCode)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("order.id", in.OrderID),
		attribute.Int("order.quantity", in.Quantity),
		attribute.String("order.zip_code", in.ZipCode),
	)
	log := uc.log.With().Str("order_id", in.OrderID).Int("quantity", in.Quantity).Logger()

	// 1. Duplicados: registro existente + reserva del order_id durante la asignación
	exists, err := uc.orders.Exists(ctx, in.OrderID)
	if err != nil {
		return nil, domain.NewStoreError("verificar order_id", err)
	}
	if exists {
		return nil, domain.ErrDuplicateOrder
	}
	allocationID := uc.newID()
	claimed, err := uc.guard.Claim(ctx, in.OrderID, allocationID)
	if err != nil {
		return nil, domain.NewStoreError("reservar order_id", err)
	}
	if !claimed {
		return nil, domain.ErrDuplicateOrder
	}
	defer func() {
		if err == nil {
			return
		}
		relCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
		defer cancel()
		if relErr := uc.guard.Release(relCtx, in.OrderID, allocationID); relErr != nil {
			log.Warn().Err(relErr).Msg("no se pudo liberar la reserva del order_id")
		}
	}()

	// 2. Selección + descuento con reintento acotado ante carreras perdidas
	best, newStock, attempts, err := uc.commit(ctx, in.Quantity, targetZip)
	span.SetAttributes(attribute.Int("allocation.commit_attempts", attempts))
	if err != nil {
		if errors.Is(err, domain.ErrNoCapacity) {
			log.Info().Int("attempts", attempts).Msg("sin centro con stock suficiente")
		}
		return nil, err
	}
	span.SetAttributes(attribute.String("allocation.center_id", best.CenterID))
	log = log.With().Str("center_id", best.CenterID).Logger()

	// 3. Registro de la orden: se reintenta el registro, nunca el descuento.
	// El descuento ya está confirmado, así que la cancelación del cliente no lo corta.
	persistCtx, cancelPersist := context.WithTimeout(context.WithoutCancel(ctx), uc.cfg.PersistTimeout)
	defer cancelPersist()
	centerID := best.CenterID
	order := &entity.Order{
		OrderID:      in.OrderID,
		Quantity:     in.Quantity,
		ZipCode:      in.ZipCode,
		CenterID:     &centerID,
		Status:       entity.OrderStatusAllocated,
		AllocationID: allocationID,
		CreatedAt:    uc.now().UTC(),
	}
	if err := uc.persistOrder(persistCtx, order); err != nil {
		uc.compensate(persistCtx, order, err)
		return nil, err
	}

	log.Info().Int("stock_remaining", newStock).Msg("orden asignada")

	// 4. Efectos secundarios best-effort, con su propio tope
	sideCtx, cancelSide := context.WithTimeout(context.WithoutCancel(ctx), uc.cfg.SideEffectTimeout)
	defer cancelSide()
	after := &entity.DistributionCenter{
		CenterID:     best.CenterID,
		Stock:        newStock,
		InitialStock: best.InitialStock,
		ZipCode:      best.ZipCode,
		UpdatedAt:    uc.now(),
	}
	if after.IsLowStock() {
		span.AddEvent("low_stock_alert")
		if alertErr := uc.alerts.Emit(sideCtx, after); alertErr != nil {
			log.Error().Err(fmt.Errorf("%w: %v", domain.ErrAlertEmission, alertErr)).Msg("alerta de stock bajo no emitida")
		}
	}
	rec := entity.AllocationRecord{OrderID: order.OrderID, CenterID: centerID, Status: order.Status}
	if recErr := uc.records.Record(sideCtx, rec); recErr != nil {
		log.Warn().Err(recErr).Msg("no se pudo guardar el registro de asignación")
	}

	return &dto.AllocationResponse{
		OrderID:  order.OrderID,
		CenterID: centerID,
		Status:   order.Status,
	}, nil
}

// commit repite FindEligible → Choose → CommitDecrement hasta MaxCommitAttempts veces.
func (uc *AllocateOrderUseCase) commit(ctx context.Context, quantity, targetZip int) (*entity.DistributionCenter, int, int, error) {
	for attempt := 1; ; attempt++ {
		candidates, err := uc.centers.FindEligible(ctx, quantity)
		if err != nil {
			return nil, 0, attempt, domain.NewStoreError("buscar centros elegibles", err)
		}
		if len(candidates) == 0 {
			return nil, 0, attempt, domain.ErrNoCapacity
		}
		best, err := policy.Choose(candidates, targetZip)
		if err != nil {
			return nil, 0, attempt, err
		}
		newStock, ok, err := uc.centers.CommitDecrement(ctx, best.CenterID, quantity)
		if err != nil {
			return nil, 0, attempt, domain.NewStoreError("descontar stock", err)
		}
		if ok {
			return best, newStock, attempt, nil
		}
		uc.log.Debug().Str("center_id", best.CenterID).Int("attempt", attempt).Msg("carrera perdida al descontar stock")
		if attempt >= uc.cfg.MaxCommitAttempts {
			return nil, 0, attempt, domain.ErrNoCapacity
		}
	}
}

// persistOrder registra la orden de forma idempotente sobre (order_id, allocation_id).
func (uc *AllocateOrderUseCase) persistOrder(ctx context.Context, order *entity.Order) error {
	var lastErr error
	for attempt := 1; attempt <= uc.cfg.MaxPersistAttempts; attempt++ {
		err := uc.orders.Create(ctx, order)
		if err == nil {
			return nil
		}
		if errors.Is(err, domain.ErrDuplicate) {
			existing, getErr := uc.orders.GetByOrderID(ctx, order.OrderID)
			switch {
			case getErr == nil && existing != nil && existing.AllocationID == order.AllocationID:
				// un intento previo de este mismo Allocate ya quedó registrado
				return nil
			case getErr == nil && existing != nil:
				return domain.ErrDuplicateOrder
			case getErr != nil:
				err = getErr
			}
		}
		lastErr = err
		uc.log.Warn().Err(err).Str("order_id", order.OrderID).Int("attempt", attempt).Msg("fallo al registrar la orden")
		if attempt < uc.cfg.MaxPersistAttempts {
			if waitErr := sleep(ctx, uc.cfg.PersistBackoff*time.Duration(attempt)); waitErr != nil {
				lastErr = waitErr
				break
			}
		}
	}
	return domain.NewStoreError("registrar orden", lastErr)
}

// compensate devuelve el stock descontado cuando se sabe con certeza que la orden no quedó registrada.
// Si no se puede confirmar (almacenamiento caído) no se toca el stock: el resultado queda indeterminado
// y el cliente debe consultar por order_id.
func (uc *AllocateOrderUseCase) compensate(ctx context.Context, order *entity.Order, cause error) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()
	centerID := order.CenterIDOrEmpty()
	log := uc.log.With().Str("order_id", order.OrderID).Str("center_id", centerID).Int("quantity", order.Quantity).Logger()

	if !errors.Is(cause, domain.ErrDuplicateOrder) {
		existing, err := uc.orders.GetByOrderID(cctx, order.OrderID)
		if err != nil {
			log.Error().Err(err).Msg("resultado indeterminado: no se pudo verificar la orden, stock sin compensar")
			return
		}
		if existing != nil && existing.AllocationID == order.AllocationID {
			log.Error().Err(cause).Msg("la orden quedó registrada pese al error; stock sin compensar")
			return
		}
	}
	if err := uc.centers.Restock(cctx, centerID, order.Quantity); err != nil {
		log.Error().Err(err).Msg("CRÍTICO: no se pudo devolver el stock descontado")
		return
	}
	log.Warn().Err(cause).Msg("stock devuelto tras fallo al registrar la orden")
}

// GetOrder devuelve la orden registrada; domain.ErrNotFound si no existe.
func (uc *AllocateOrderUseCase) GetOrder(ctx context.Context, orderID string) (*dto.OrderResponse, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, domain.NewValidationError("order_id", "no puede estar vacío")
	}
	o, err := uc.orders.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, domain.NewStoreError("consultar orden", err)
	}
	if o == nil {
		return nil, domain.ErrNotFound
	}
	return &dto.OrderResponse{
		OrderID:   o.OrderID,
		Quantity:  o.Quantity,
		ZipCode:   o.ZipCode,
		CenterID:  o.CenterID,
		Status:    o.Status,
		CreatedAt: o.CreatedAt,
	}, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
