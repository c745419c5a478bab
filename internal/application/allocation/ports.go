package allocation

import (
	"context"

	"github.com/jhoicas/order-allocation/internal/domain/entity"
)

// AlertSink registra una alerta de stock bajo (frontera hacia logging/notificaciones externas).
// Best-effort: un error se registra en log y nunca afecta el resultado de la asignación.
type AlertSink interface {
	Emit(ctx context.Context, center *entity.DistributionCenter) error
}

// RecordSink guarda una copia del resultado de cada asignación exitosa. Best-effort.
type RecordSink interface {
	Record(ctx context.Context, rec entity.AllocationRecord) error
}

// OrderGuard reserva un order_id mientras dura una asignación para que dos envíos
// concurrentes del mismo id no avancen ambos hasta el descuento de stock.
type OrderGuard interface {
	// Claim devuelve false si otro intento ya tiene reservado el order_id.
	Claim(ctx context.Context, orderID, token string) (bool, error)
	// Release libera la reserva sólo si sigue perteneciendo a token.
	Release(ctx context.Context, orderID, token string) error
}

type nopGuard struct{}

func (nopGuard) Claim(context.Context, string, string) (bool, error) { return true, nil }
func (nopGuard) Release(context.Context, string, string) error        { return nil }

type nopRecordSink struct{}

func (nopRecordSink) Record(context.Context, entity.AllocationRecord) error { return nil }

type nopAlertSink struct{}

func (nopAlertSink) Emit(context.Context, *entity.DistributionCenter) error { return nil }
