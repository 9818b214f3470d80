package extraction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/conciliador-ubl/internal/application/attachments"
	"github.com/jhoicas/conciliador-ubl/internal/application/ports"
	"github.com/jhoicas/conciliador-ubl/internal/domain/entity"
	"github.com/jhoicas/conciliador-ubl/internal/infrastructure/dian"
	"github.com/jhoicas/conciliador-ubl/internal/infrastructure/metrics"
)

// Input archivo recibido: un XML (Invoice o AttachedDocument) o un ZIP con XML y anexos.
type Input struct {
	Name string
	Data []byte
}

// AttachmentStore deduplica y guarda un adjunto. Lo implementa *attachments.Service.
type AttachmentStore interface {
	Store(ctx context.Context, a entity.AttachmentRecord) (attachments.StoreResult, error)
}

// BatchConfig dependencias opcionales del lote; los campos nil se omiten.
type BatchConfig struct {
	Workers     int
	Attachments AttachmentStore
	Publisher   ports.RecordPublisher
	Metrics     *metrics.Metrics
}

// BatchResult salida de un lote. Outcomes conserva el orden de entrada (un ZIP aporta una
// entrada por cada XML que contiene).
type BatchResult struct {
	RunID        string        `json:"run_id"`
	Outcomes     []Outcome     `json:"outcomes"`
	Consolidated Consolidation `json:"consolidated"`
	PublishError string        `json:"publish_error,omitempty"`
}

// Counts documentos por estado.
func (r *BatchResult) Counts() map[Status]int {
	counts := make(map[Status]int)
	for _, o := range r.Outcomes {
		counts[o.Status]++
	}
	return counts
}

// Batch procesa varios documentos en paralelo. El fallo de un documento nunca detiene el lote.
type Batch struct {
	engine *Engine
	cfg    BatchConfig
	log    zerolog.Logger
}

// NewBatch Workers < 1 se toma como 1.
func NewBatch(engine *Engine, cfg BatchConfig, log zerolog.Logger) *Batch {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Batch{engine: engine, cfg: cfg, log: log}
}

// unit un documento a procesar, con los anexos del ZIP que lo trajo.
type unit struct {
	source  string
	data    []byte
	bundled []dian.BundleFile
	// err el contenedor no se pudo abrir; el documento se reporta malformado.
	err error
}

// Run procesa inputs. Si ctx se cancela, los documentos aún no iniciados quedan StatusCanceled.
func (b *Batch) Run(ctx context.Context, inputs []Input) *BatchResult {
	runID := uuid.NewString()
	log := b.log.With().Str("run_id", runID).Logger()
	started := time.Now()

	units := expand(inputs)
	outcomes := make([]Outcome, len(units))

	g := new(errgroup.Group)
	g.SetLimit(b.cfg.Workers)
	for i, u := range units {
		g.Go(func() error {
			outcomes[i] = b.process(ctx, u, log)
			return nil
		})
	}
	_ = g.Wait()

	res := &BatchResult{RunID: runID, Outcomes: outcomes, Consolidated: Consolidate(outcomes)}

	if b.cfg.Publisher != nil && len(res.Consolidated.Records) > 0 && ctx.Err() == nil {
		if err := b.cfg.Publisher.Publish(ctx, runID, res.Consolidated.Records); err != nil {
			log.Error().Err(err).Msg("no se pudieron publicar los registros")
			res.PublishError = err.Error()
		}
	}

	counts := res.Counts()
	log.Info().
		Int("documents", len(outcomes)).
		Int("accepted", counts[StatusAccepted]).
		Int("rejected", len(outcomes)-counts[StatusAccepted]-counts[StatusCanceled]).
		Int("canceled", counts[StatusCanceled]).
		Int("duplicate_records", res.Consolidated.DuplicateRecords).
		Dur("elapsed", time.Since(started)).
		Msg("lote procesado")
	return res
}

func (b *Batch) process(ctx context.Context, u unit, log zerolog.Logger) Outcome {
	if err := ctx.Err(); err != nil {
		out := rejected(Outcome{Source: u.source}, StatusCanceled, err)
		b.cfg.Metrics.ObserveOutcome(string(out.Status), 0)
		return out
	}

	start := time.Now()
	var out Outcome
	if u.err != nil {
		out = rejected(Outcome{Source: u.source}, StatusMalformed, u.err)
	} else {
		out = b.engine.Extract(u.source, u.data)
	}
	b.cfg.Metrics.ObserveDocument(start)

	if out.Accepted() {
		for _, f := range u.bundled {
			out.Pending = append(out.Pending, entity.AttachmentRecord{
				Filename: f.Name,
				Owner:    out.Record.Supplier.ID,
				Data:     f.Data,
			})
		}
		b.storeAttachments(ctx, &out, log)
	} else {
		log.Warn().Str("source", u.source).Str("status", string(out.Status)).Err(out.Err).Msg("documento rechazado")
	}

	b.cfg.Metrics.ObserveOutcome(string(out.Status), len(out.Warnings))
	return out
}

func (b *Batch) storeAttachments(ctx context.Context, out *Outcome, log zerolog.Logger) {
	if b.cfg.Attachments == nil {
		return
	}
	for _, a := range out.Pending {
		res, err := b.cfg.Attachments.Store(ctx, a)
		switch {
		case err != nil && res.Filename == "":
			b.cfg.Metrics.ObserveAttachment("error")
			out.warn("adjunto %s no almacenado: %v", a.Filename, err)
			log.Error().Err(err).Str("source", out.Source).Str("filename", a.Filename).Msg("adjunto no almacenado")
			continue
		case err != nil:
			// Archivo escrito pero sin registrar en el índice: se reprocesará en el próximo lote.
			out.warn("adjunto %s almacenado sin registrar en el índice: %v", res.Filename, err)
		}
		if res.Duplicate {
			b.cfg.Metrics.ObserveAttachment("duplicate")
		} else {
			b.cfg.Metrics.ObserveAttachment("stored")
		}
		out.Attachments = append(out.Attachments, res)
	}
	out.Pending = nil
}

// expand abre los ZIP y devuelve las unidades en orden.
func expand(inputs []Input) []unit {
	units := make([]unit, 0, len(inputs))
	for _, in := range inputs {
		if !dian.IsZip(in.Data) {
			units = append(units, unit{source: in.Name, data: in.Data})
			continue
		}
		bundle, err := dian.ReadZipBundle(in.Data)
		if err != nil {
			units = append(units, unit{source: in.Name, err: err})
			continue
		}
		if len(bundle.Documents) == 0 {
			units = append(units, unit{source: in.Name, err: errors.New("el ZIP no contiene XML")})
			continue
		}
		for _, d := range bundle.Documents {
			units = append(units, unit{
				source:  fmt.Sprintf("%s!%s", in.Name, d.Name),
				data:    d.Data,
				bundled: bundle.Attachments,
			})
		}
	}
	return units
}
