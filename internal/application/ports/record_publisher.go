package ports

import (
	"context"

	"github.com/jhoicas/conciliador-ubl/internal/domain/entity"
)

// RecordPublisher puerto de salida para entregar los registros aceptados de un lote a
// sistemas posteriores (contabilidad, pagos). La extracción no depende de que exista:
// un lote sin publicador simplemente no publica.
type RecordPublisher interface {
	// Publish entrega los registros en orden. Un error no invalida los registros ya extraídos.
	Publish(ctx context.Context, runID string, records []*entity.InvoiceRecord) error
}
