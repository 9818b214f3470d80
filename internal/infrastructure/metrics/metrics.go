// Package metrics expone contadores Prometheus del procesamiento de facturas. Un *Metrics nil
// es válido y no registra nada.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contadores de documentos, avisos y adjuntos, más la duración por documento.
type Metrics struct {
	Documents        *prometheus.CounterVec
	Warnings         prometheus.Counter
	Attachments      *prometheus.CounterVec
	DocumentDuration prometheus.Histogram
}

// New registra las métricas en reg. Usar un registry propio en tests para no chocar con el global.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Documents: f.NewCounterVec(prometheus.CounterOpts{
			Name: "conciliador_documents_total",
			Help: "Documentos procesados por estado (accepted, malformed, missing_total, incoherent, canceled)",
		}, []string{"status"}),
		Warnings: f.NewCounter(prometheus.CounterOpts{
			Name: "conciliador_warnings_total",
			Help: "Avisos emitidos sobre documentos aceptados o rechazados",
		}),
		Attachments: f.NewCounterVec(prometheus.CounterOpts{
			Name: "conciliador_attachments_total",
			Help: "Adjuntos por resultado (stored, duplicate, error)",
		}, []string{"result"}),
		DocumentDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "conciliador_document_duration_seconds",
			Help:    "Duración de la extracción y validación de un documento",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		}),
	}
}

// ObserveOutcome registra el estado final de un documento y sus avisos.
func (m *Metrics) ObserveOutcome(status string, warnings int) {
	if m == nil {
		return
	}
	m.Documents.WithLabelValues(status).Inc()
	if warnings > 0 {
		m.Warnings.Add(float64(warnings))
	}
}

// ObserveDocument registra la duración. Llamar con time.Now() al inicio.
func (m *Metrics) ObserveDocument(start time.Time) {
	if m == nil {
		return
	}
	m.DocumentDuration.Observe(time.Since(start).Seconds())
}

// ObserveAttachment registra el resultado del almacenamiento de un adjunto.
func (m *Metrics) ObserveAttachment(result string) {
	if m == nil {
		return
	}
	m.Attachments.WithLabelValues(result).Inc()
}

// WriteTextfile vuelca las métricas de g en formato texto (colector textfile de node_exporter).
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
