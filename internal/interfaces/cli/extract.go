package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jhoicas/conciliador-ubl/internal/application/extraction"
	"github.com/jhoicas/conciliador-ubl/pkg/dian"
)

func newExtractCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "extract <archivo|directorio>...",
		Short: "Extrae el registro canónico de cada factura",
		Long: `Procesa facturas XML, AttachedDocument o ZIP y muestra el resultado de cada documento:
registro aceptado con sus avisos, o el motivo del rechazo. No almacena adjuntos.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := readInputs(args)
			if err != nil {
				return err
			}
			res, err := opts.runBatch(cmd.Context(), inputs, extraction.BatchConfig{})
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.Format, res, outcomeTable(res.Outcomes))
		},
	}
}

func outcomeTable(outcomes []extraction.Outcome) table {
	t := table{header: []string{
		"source", "status", "invoice", "supplier", "cufe", "issue_date",
		"subtotal", "iva", "retenciones", "total_a_pagar", "total_source", "interpretation",
		"payment", "items", "warnings", "error",
	}}
	for _, o := range outcomes {
		row := []string{o.Source, string(o.Status), o.InvoiceNumber, o.Supplier}
		if r := o.Record; r != nil {
			row = append(row,
				r.CUFE,
				r.IssueDate.Format("2006-01-02"),
				r.Subtotal.StringFixed(2),
				r.IVA.StringFixed(2),
				r.Retenciones.StringFixed(2),
				r.TotalAPagar.StringFixed(2),
				string(r.TotalSource),
				string(r.Interpretation),
				dian.PaymentDescription(r.PaymentFormCode, r.PaymentMeansCode),
				strconv.Itoa(len(r.Items)),
			)
		} else {
			row = append(row, "", "", "", "", "", "", "", "", "", "")
		}
		row = append(row, strings.Join(o.Warnings, "; "), o.Error)
		t.rows = append(t.rows, row)
	}
	return t
}
