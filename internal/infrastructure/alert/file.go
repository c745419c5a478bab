package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jhoicas/order-allocation/internal/application/allocation"
	"github.com/jhoicas/order-allocation/internal/domain"
	"github.com/jhoicas/order-allocation/internal/domain/entity"
)

var (
	_ allocation.AlertSink  = (*FileSink)(nil)
	_ allocation.RecordSink = (*FileRecordSink)(nil)
)

// FileSink escribe <dir>/<center_id>_alert.json; cada emisión reemplaza la anterior.
type FileSink struct {
	dir string
	now func() time.Time
	mu  sync.Mutex
}

// NewFileSink crea el directorio si no existe.
func NewFileSink(dir string) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("crear directorio de alertas: %w", err)
	}
	return &FileSink{dir: dir, now: time.Now}, nil
}

func (s *FileSink) Emit(_ context.Context, c *entity.DistributionCenter) error {
	rec := entity.NewAlertRecord(c, s.now())
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := writeJSON(filepath.Join(s.dir, safeName(rec.CenterID)+"_alert.json"), rec); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrAlertEmission, err)
	}
	return nil
}

// FileRecordSink escribe <dir>/<order_id>.json por asignación.
type FileRecordSink struct {
	dir string
}

// NewFileRecordSink crea el directorio si no existe.
func NewFileRecordSink(dir string) (*FileRecordSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("crear directorio de registros: %w", err)
	}
	return &FileRecordSink{dir: dir}, nil
}

func (s *FileRecordSink) Record(_ context.Context, rec entity.AllocationRecord) error {
	if err := writeJSON(filepath.Join(s.dir, safeName(rec.OrderID)+".json"), rec); err != nil {
		return fmt.Errorf("registrar asignación %s: %w", rec.OrderID, err)
	}
	return nil
}

// writeJSON escribe en un temporal y renombra, así un lector nunca ve un archivo a medias.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// safeName escapa el id para usarlo como nombre de archivo: sin separadores de ruta y sin colisiones
// entre ids distintos.
func safeName(id string) string {
	return url.PathEscape(id)
}
