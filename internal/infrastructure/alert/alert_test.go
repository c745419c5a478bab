package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/order-allocation/internal/domain"
	"github.com/jhoicas/order-allocation/internal/domain/entity"
	"github.com/jhoicas/order-allocation/pkg/config"
	"github.com/jhoicas/order-allocation/pkg/logger"
)

var fixedNow = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func lowCenter() *entity.DistributionCenter {
	return &entity.DistributionCenter{CenterID: "C1", Stock: 18, InitialStock: 100, ZipCode: "10000"}
}

type fakeWriter struct {
	mu     sync.Mutex
	topic  string
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogSink(logger.New(logger.Config{Env: "production", Level: "info", Output: &buf}))
	s.now = func() time.Time { return fixedNow }

	require.NoError(t, s.Emit(context.Background(), lowCenter()))

	var ev map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &ev))
	assert.Equal(t, "warn", ev["level"])
	assert.Equal(t, "low_stock_alert", ev["message"])
	assert.Equal(t, "C1", ev["center_id"])
	assert.Equal(t, float64(18), ev["stock_remaining"])
	assert.Equal(t, float64(100), ev["initial_stock"])
}

func TestFileSink_SobrescribePorCentro(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "alerts")
	s, err := NewFileSink(dir)
	require.NoError(t, err)
	s.now = func() time.Time { return fixedNow }

	c := lowCenter()
	require.NoError(t, s.Emit(context.Background(), c))
	c.Stock = 10
	require.NoError(t, s.Emit(context.Background(), c))

	data, err := os.ReadFile(filepath.Join(dir, "C1_alert.json"))
	require.NoError(t, err)
	var rec entity.AlertRecord
	require.NoError(t, json.Unmarshal(data, &rec))
	assert.Equal(t, "C1", rec.CenterID)
	assert.Equal(t, 10, rec.StockRemaining)
	assert.Equal(t, 100, rec.InitialStock)
	assert.True(t, fixedNow.Equal(rec.Timestamp))
	assert.Equal(t, entity.LowStockMessage, rec.Message)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileRecordSink(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileRecordSink(dir)
	require.NoError(t, err)

	rec := entity.AllocationRecord{OrderID: "O1", CenterID: "C1", Status: entity.OrderStatusAllocated}
	require.NoError(t, s.Record(context.Background(), rec))

	data, err := os.ReadFile(filepath.Join(dir, "O1.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"order_id":"O1","center_id":"C1","status":"allocated"}`, string(data))
}

func TestSafeName(t *testing.T) {
	assert.Equal(t, "C1", safeName("C1"))
	assert.Equal(t, "..%2F..%2Fx", safeName("../../x"))
	assert.NotEqual(t, safeName("x/b"), safeName("b"))
	assert.NotContains(t, safeName(`a\b`), `\`)
}

func TestFileRecordSink_IdsConSeparadorNoColisionan(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileRecordSink(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, entity.AllocationRecord{OrderID: "x/b", CenterID: "C1", Status: entity.OrderStatusAllocated}))
	require.NoError(t, s.Record(ctx, entity.AllocationRecord{OrderID: "b", CenterID: "C2", Status: entity.OrderStatusAllocated}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	data, err := os.ReadFile(filepath.Join(dir, "b.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"order_id":"b","center_id":"C2","status":"allocated"}`, string(data))
}

func TestKafkaSink(t *testing.T) {
	w := &fakeWriter{}
	s := NewKafkaSink(w)
	s.now = func() time.Time { return fixedNow }

	require.NoError(t, s.Emit(context.Background(), lowCenter()))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "C1", string(w.msgs[0].Key))

	var rec entity.AlertRecord
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &rec))
	assert.Equal(t, 18, rec.StockRemaining)
	assert.Equal(t, entity.LowStockMessage, rec.Message)

	w.err = errors.New("broker caído")
	err := s.Emit(context.Background(), lowCenter())
	assert.ErrorIs(t, err, domain.ErrAlertEmission)
}

func TestKafkaRecordSink(t *testing.T) {
	w := &fakeWriter{}
	s := NewKafkaRecordSink(w)
	require.NoError(t, s.Record(context.Background(), entity.AllocationRecord{OrderID: "O1", CenterID: "C2", Status: "allocated"}))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "O1", string(w.msgs[0].Key))
	assert.JSONEq(t, `{"order_id":"O1","center_id":"C2","status":"allocated"}`, string(w.msgs[0].Value))
}

type failingSink struct{}

func (failingSink) Emit(context.Context, *entity.DistributionCenter) error {
	return errors.New("sin disco")
}

func TestMultiSink_ContinuaTrasError(t *testing.T) {
	w := &fakeWriter{}
	m := NewMultiSink(failingSink{}, nil, NewKafkaSink(w))
	assert.Equal(t, 2, m.Len())

	err := m.Emit(context.Background(), lowCenter())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAlertEmission)
	assert.Len(t, w.msgs, 1)
}

func TestBuild(t *testing.T) {
	writers := map[string]*fakeWriter{}
	factory := func(_ []string, topic string) MessageWriter {
		w := &fakeWriter{topic: topic}
		writers[topic] = w
		return w
	}
	dir := t.TempDir()
	cfg := config.Config{
		Kafka: config.KafkaConfig{Brokers: []string{"localhost:9092"}, AlertTopic: "LowStockAlerts", RecordTopic: "OrderAllocations"},
		Alerts: config.AlertsConfig{
			Sinks:     []string{"log", "file", "kafka"},
			Dir:       filepath.Join(dir, "alerts"),
			RecordDir: filepath.Join(dir, "logs"),
		},
	}

	sinks, err := Build(cfg, logger.Nop(), factory)
	require.NoError(t, err)
	assert.Equal(t, 3, sinks.Alerts.(*MultiSink).Len())

	require.NoError(t, sinks.Alerts.Emit(context.Background(), lowCenter()))
	require.NoError(t, sinks.Records.Record(context.Background(), entity.AllocationRecord{OrderID: "O1", CenterID: "C1", Status: "allocated"}))

	assert.Len(t, writers["LowStockAlerts"].msgs, 1)
	assert.Len(t, writers["OrderAllocations"].msgs, 1)
	assert.FileExists(t, filepath.Join(dir, "alerts", "C1_alert.json"))
	assert.FileExists(t, filepath.Join(dir, "logs", "O1.json"))

	require.NoError(t, sinks.Close())
	assert.True(t, writers["LowStockAlerts"].closed)
	assert.True(t, writers["OrderAllocations"].closed)
}

func TestBuild_Errores(t *testing.T) {
	_, err := Build(config.Config{Alerts: config.AlertsConfig{Sinks: []string{"kafka"}}}, logger.Nop(), nil)
	assert.Error(t, err)

	_, err = Build(config.Config{Alerts: config.AlertsConfig{Sinks: []string{"sms"}}}, logger.Nop(), nil)
	assert.Error(t, err)

	sinks, err := Build(config.Config{}, logger.Nop(), nil)
	require.NoError(t, err)
	assert.IsType(t, NopRecordSink{}, sinks.Records)
}
