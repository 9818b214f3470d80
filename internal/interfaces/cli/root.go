// Package cli comandos de línea de comandos del conciliador (cobra).
package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/jhoicas/conciliador-ubl/internal/application/extraction"
	"github.com/jhoicas/conciliador-ubl/internal/infrastructure/metrics"
	"github.com/jhoicas/conciliador-ubl/pkg/config"
	"github.com/jhoicas/conciliador-ubl/pkg/logger"
)

// Formatos de salida.
const (
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatTable = "table"
	FormatCSV   = "csv"
)

// ValidFormats formatos aceptados por --format.
var ValidFormats = []string{FormatJSON, FormatYAML, FormatTable, FormatCSV}

// RootOptions flags globales y dependencias resueltas antes de cada comando.
type RootOptions struct {
	Format      string
	Workers     int
	LogLevel    string
	MetricsFile string

	// LoadConfig por defecto config.Load.
	LoadConfig func() (*config.Config, error)

	cfg      *config.Config
	log      *logger.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
}

// NewRootCommand crea el comando raíz con extract, validate e ingest.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{LoadConfig: config.Load})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "conciliador",
		Short: "Extrae y concilia facturas electrónicas UBL 2.1 (DIAN)",
		Long: `Conciliador lee facturas electrónicas UBL 2.1 recibidas de proveedores (XML, AttachedDocument
o ZIP de correo), resuelve el total a pagar, valida que subtotal, IVA y retenciones cuadren
y deduplica los adjuntos por contenido.

Ejemplos:
  conciliador extract factura.xml
  conciliador validate --format table ./recibidas
  conciliador ingest --workers 8 correo1.zip correo2.zip`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup(cmd)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.Format, "format", "f", FormatJSON, "formato de salida (json, yaml, table, csv)")
	cmd.PersistentFlags().IntVarP(&opts.Workers, "workers", "w", 0, "documentos en paralelo (env: ENGINE_WORKERS)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "nivel de log (env: LOG_LEVEL)")
	cmd.PersistentFlags().StringVar(&opts.MetricsFile, "metrics-file", "", "archivo .prom para el colector textfile (env: METRICS_FILE)")

	cmd.AddCommand(newExtractCommand(opts))
	cmd.AddCommand(newValidateCommand(opts))
	cmd.AddCommand(newIngestCommand(opts))
	return cmd
}

// setup carga la configuración; los flags explícitos tienen prioridad sobre el entorno.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	if !slices.Contains(ValidFormats, o.Format) {
		return commandError(fmt.Sprintf("formato %q inválido, use uno de %v", o.Format, ValidFormats), nil)
	}
	cfg, err := o.LoadConfig()
	if err != nil {
		return commandError("configuración", err)
	}
	flags := cmd.Flags()
	if flags.Changed("workers") {
		if o.Workers < 1 {
			return commandError("--workers debe ser >= 1", nil)
		}
		cfg.Engine.Workers = o.Workers
	}
	if flags.Changed("log-level") {
		cfg.App.LogLevel = o.LogLevel
	}
	if flags.Changed("metrics-file") {
		cfg.Engine.MetricsFile = o.MetricsFile
	}

	o.cfg = cfg
	o.log = logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Output: cmd.ErrOrStderr()})
	o.registry = prometheus.NewRegistry()
	o.metrics = metrics.New(o.registry)
	return nil
}

func (o *RootOptions) engine() *extraction.Engine {
	return extraction.NewEngine(extraction.Options{
		TechnicalKeys: o.cfg.DIAN.TechnicalKeys,
		Environment:   o.cfg.DIAN.Environment,
	}, o.log.Zerolog())
}

// runBatch ejecuta el lote y vuelca las métricas si hay archivo configurado.
func (o *RootOptions) runBatch(ctx context.Context, inputs []extraction.Input, bc extraction.BatchConfig) (*extraction.BatchResult, error) {
	bc.Workers = o.cfg.Engine.Workers
	bc.Metrics = o.metrics
	res := extraction.NewBatch(o.engine(), bc, o.log.Zerolog()).Run(ctx, inputs)

	if path := o.cfg.Engine.MetricsFile; path != "" {
		if err := metrics.WriteTextfile(path, o.registry); err != nil {
			return res, commandError("escribir métricas", err)
		}
		o.log.WithRun(res.RunID).Debug().Str("path", path).Msg("métricas escritas")
	}
	return res, nil
}
