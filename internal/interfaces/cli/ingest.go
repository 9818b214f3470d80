package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jhoicas/conciliador-ubl/internal/application/attachments"
	"github.com/jhoicas/conciliador-ubl/internal/application/extraction"
)

func newIngestCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <archivo|directorio>...",
		Short: "Extrae, deduplica adjuntos y consolida el lote",
		Long: `Procesa el lote completo: extrae cada factura, guarda sus adjuntos (embebidos o del ZIP)
una sola vez por proveedor en el backend configurado (DEDUP_BACKEND, BLOB_BACKEND), consolida
registros e ítems repetidos y, con PUBLISHER=kafka, publica los registros aceptados.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := readInputs(args)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			log := opts.log.Zerolog()
			b, err := openBackends(ctx, opts.cfg, log)
			if err != nil {
				return commandError("abrir backends", err)
			}
			defer b.Close()

			res, err := opts.runBatch(ctx, inputs, extraction.BatchConfig{
				Attachments: attachments.NewService(b.indexes, b.blobs, log),
				Publisher:   b.publisher,
			})
			if err != nil {
				return err
			}
			if err := render(cmd.OutOrStdout(), opts.Format, res, ingestTable(res)); err != nil {
				return err
			}
			if res.PublishError != "" {
				return &ExitError{Code: ExitRejected, Message: fmt.Sprintf("publicación del lote %s", res.RunID), Err: errors.New(res.PublishError)}
			}
			return nil
		},
	}
}

// ingestTable una fila por documento con el conteo de adjuntos y si el registro quedó en la
// consolidación.
func ingestTable(res *extraction.BatchResult) table {
	kept := make(map[string]bool, len(res.Consolidated.Records))
	for _, r := range res.Consolidated.Records {
		kept[r.Key()] = true
	}
	seen := make(map[string]bool)

	t := table{header: []string{
		"source", "status", "invoice", "supplier", "total_a_pagar",
		"attachments_stored", "attachments_duplicate", "consolidated", "warnings", "error",
	}}
	for _, o := range res.Outcomes {
		var stored, dup int
		for _, a := range o.Attachments {
			if a.Duplicate {
				dup++
			} else {
				stored++
			}
		}
		total, consolidated := "", ""
		if o.Record != nil {
			total = o.Record.TotalAPagar.StringFixed(2)
			key := o.Record.Key()
			consolidated = strconv.FormatBool(kept[key] && !seen[key])
			seen[key] = true
		}
		t.rows = append(t.rows, []string{
			o.Source, string(o.Status), o.InvoiceNumber, o.Supplier, total,
			strconv.Itoa(stored), strconv.Itoa(dup), consolidated,
			strconv.Itoa(len(o.Warnings)), o.Error,
		})
	}
	return t
}
