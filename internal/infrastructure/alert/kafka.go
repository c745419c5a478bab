package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/order-allocation/internal/application/allocation"
	"github.com/jhoicas/order-allocation/internal/domain"
	"github.com/jhoicas/order-allocation/internal/domain/entity"
)

var (
	_ allocation.AlertSink  = (*KafkaSink)(nil)
	_ allocation.RecordSink = (*KafkaRecordSink)(nil)
)

// MessageWriter subconjunto de *kafka.Writer usado por los sinks.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewKafkaWriter crea un writer síncrono para topic.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		BatchSize:              100,
		AllowAutoTopicCreation: true,
	}
}

// KafkaSink publica la alerta en JSON con key center_id.
type KafkaSink struct {
	w   MessageWriter
	now func() time.Time
}

// NewKafkaSink construye el sink sobre w.
func NewKafkaSink(w MessageWriter) *KafkaSink {
	return &KafkaSink{w: w, now: time.Now}
}

func (s *KafkaSink) Emit(ctx context.Context, c *entity.DistributionCenter) error {
	rec := entity.NewAlertRecord(c, s.now())
	value, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrAlertEmission, err)
	}
	msg := kafka.Message{
		Key:   []byte(rec.CenterID),
		Value: value,
		Time:  rec.Timestamp,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("low_stock_alert")},
		},
	}
	if err := s.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("%w: kafka: %w", domain.ErrAlertEmission, err)
	}
	return nil
}

// Close cierra el writer.
func (s *KafkaSink) Close() error { return s.w.Close() }

// KafkaRecordSink publica el registro de asignación con key order_id.
type KafkaRecordSink struct {
	w MessageWriter
}

// NewKafkaRecordSink construye el sink sobre w.
func NewKafkaRecordSink(w MessageWriter) *KafkaRecordSink {
	return &KafkaRecordSink{w: w}
}

func (s *KafkaRecordSink) Record(ctx context.Context, rec entity.AllocationRecord) error {
	value, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:   []byte(rec.OrderID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("order_allocated")},
		},
	}
	if err := s.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka record %s: %w", rec.OrderID, err)
	}
	return nil
}

// Close cierra el writer.
func (s *KafkaRecordSink) Close() error { return s.w.Close() }
