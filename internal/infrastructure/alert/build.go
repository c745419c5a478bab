package alert

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jhoicas/order-allocation/internal/application/allocation"
	"github.com/jhoicas/order-allocation/pkg/config"
	"github.com/jhoicas/order-allocation/pkg/logger"
)

// WriterFactory crea el writer de un tópico; reemplazable en tests.
type WriterFactory func(brokers []string, topic string) MessageWriter

// Sinks destinos armados desde la configuración.
type Sinks struct {
	Alerts  allocation.AlertSink
	Records allocation.RecordSink
	closers []io.Closer
}

// Close cierra los writers abiertos.
func (s *Sinks) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Build arma los sinks de ALERT_SINKS. Con brokers definidos el registro de asignaciones
// también se publica en kafka; con RecordDir definido se escribe en archivo.
func Build(cfg config.Config, log *logger.Logger, newWriter WriterFactory) (*Sinks, error) {
	if newWriter == nil {
		newWriter = func(brokers []string, topic string) MessageWriter { return NewKafkaWriter(brokers, topic) }
	}
	out := &Sinks{}
	fail := func(err error) (*Sinks, error) {
		_ = out.Close()
		return nil, err
	}
	alerts := NewMultiSink()
	for _, name := range cfg.Alerts.Sinks {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "log":
			alerts.sinks = append(alerts.sinks, NewLogSink(log))
		case "file":
			fs, err := NewFileSink(cfg.Alerts.Dir)
			if err != nil {
				return fail(err)
			}
			alerts.sinks = append(alerts.sinks, fs)
		case "kafka":
			if len(cfg.Kafka.Brokers) == 0 {
				return fail(errors.New("sink kafka sin KAFKA_BROKERS"))
			}
			ks := NewKafkaSink(newWriter(cfg.Kafka.Brokers, cfg.Kafka.AlertTopic))
			out.closers = append(out.closers, ks)
			alerts.sinks = append(alerts.sinks, ks)
		case "":
		default:
			return fail(fmt.Errorf("sink de alertas desconocido: %q", name))
		}
	}
	out.Alerts = alerts

	records := NewMultiRecordSink()
	if cfg.Alerts.RecordDir != "" {
		fr, err := NewFileRecordSink(cfg.Alerts.RecordDir)
		if err != nil {
			return fail(err)
		}
		records.sinks = append(records.sinks, fr)
	}
	if len(cfg.Kafka.Brokers) > 0 && cfg.Kafka.RecordTopic != "" {
		kr := NewKafkaRecordSink(newWriter(cfg.Kafka.Brokers, cfg.Kafka.RecordTopic))
		out.closers = append(out.closers, kr)
		records.sinks = append(records.sinks, kr)
	}
	if len(records.sinks) == 0 {
		out.Records = NopRecordSink{}
	} else {
		out.Records = records
	}
	return out, nil
}
