// Package alert contiene los destinos de alertas de stock bajo y de registros de asignación.
package alert

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/order-allocation/internal/application/allocation"
	"github.com/jhoicas/order-allocation/internal/domain"
	"github.com/jhoicas/order-allocation/internal/domain/entity"
	"github.com/jhoicas/order-allocation/pkg/logger"
)

var (
	_ allocation.AlertSink  = (*LogSink)(nil)
	_ allocation.AlertSink  = (*MultiSink)(nil)
	_ allocation.RecordSink = NopRecordSink{}
	_ allocation.RecordSink = (*MultiRecordSink)(nil)
)

// LogSink emite la alerta como evento warn low_stock_alert.
type LogSink struct {
	log *logger.Logger
	now func() time.Time
}

// NewLogSink construye el sink sobre log.
func NewLogSink(log *logger.Logger) *LogSink {
	return &LogSink{log: log, now: time.Now}
}

func (s *LogSink) Emit(_ context.Context, c *entity.DistributionCenter) error {
	rec := entity.NewAlertRecord(c, s.now())
	s.log.Warn().
		Str("center_id", rec.CenterID).
		Int("stock_remaining", rec.StockRemaining).
		Int("initial_stock", rec.InitialStock).
		Time("alert_timestamp", rec.Timestamp).
		Msg("low_stock_alert")
	return nil
}

// MultiSink reparte la alerta a todos los sinks; los errores se acumulan.
type MultiSink struct {
	sinks []allocation.AlertSink
}

// NewMultiSink agrupa sinks; los nil se ignoran.
func NewMultiSink(sinks ...allocation.AlertSink) *MultiSink {
	m := &MultiSink{}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

func (m *MultiSink) Emit(ctx context.Context, c *entity.DistributionCenter) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Emit(ctx, c); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", domain.ErrAlertEmission, errors.Join(errs...))
}

// Len número de sinks activos.
func (m *MultiSink) Len() int { return len(m.sinks) }

// NopRecordSink descarta los registros.
type NopRecordSink struct{}

func (NopRecordSink) Record(context.Context, entity.AllocationRecord) error { return nil }

// MultiRecordSink reparte el registro a todos los sinks.
type MultiRecordSink struct {
	sinks []allocation.RecordSink
}

// NewMultiRecordSink agrupa sinks de registro; los nil se ignoran.
func NewMultiRecordSink(sinks ...allocation.RecordSink) *MultiRecordSink {
	m := &MultiRecordSink{}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

func (m *MultiRecordSink) Record(ctx context.Context, rec entity.AllocationRecord) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Record(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
