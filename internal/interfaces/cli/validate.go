package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/conciliador-ubl/internal/application/extraction"
)

// ValidationReport resultado de validate por documento.
type ValidationReport struct {
	Source         string `json:"source"`
	Invoice        string `json:"invoice,omitempty"`
	Status         string `json:"status"`
	Interpretation string `json:"interpretation,omitempty"`
	TotalAPagar    string `json:"total_a_pagar,omitempty"`
	TotalSource    string `json:"total_source,omitempty"`
	NetDelta       string `json:"net_delta,omitempty"`
	GrossDelta     string `json:"gross_delta,omitempty"`
	Warnings       int    `json:"warnings"`
	Error          string `json:"error,omitempty"`
}

func newValidateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <archivo|directorio>...",
		Short: "Verifica la coherencia de los totales",
		Long: `Informe de coherencia por documento: fórmula con la que cuadró el total (neta o bruta) o
las diferencias contra ambas cuando no cuadra. Termina con código 1 si algún documento fue rechazado.`,
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

			reports := validationReports(res.Outcomes)
			if err := render(cmd.OutOrStdout(), opts.Format, reports, reportTable(reports)); err != nil {
				return err
			}
			if rejected := len(res.Outcomes) - res.Counts()[extraction.StatusAccepted]; rejected > 0 {
				return &ExitError{Code: ExitRejected, Message: fmt.Sprintf("%d de %d documentos rechazados", rejected, len(res.Outcomes))}
			}
			return nil
		},
	}
}

func validationReports(outcomes []extraction.Outcome) []ValidationReport {
	reports := make([]ValidationReport, 0, len(outcomes))
	for _, o := range outcomes {
		r := ValidationReport{
			Source:   o.Source,
			Invoice:  o.InvoiceNumber,
			Status:   string(o.Status),
			Warnings: len(o.Warnings),
			Error:    o.Error,
		}
		if rec := o.Record; rec != nil {
			r.Interpretation = string(rec.Interpretation)
			r.TotalAPagar = rec.TotalAPagar.StringFixed(2)
			r.TotalSource = string(rec.TotalSource)
		}
		if d := o.Diagnostic; d != nil {
			r.TotalAPagar = d.TotalAPagar.StringFixed(2)
			r.TotalSource = d.TotalSource
			r.NetDelta = d.NetDelta.StringFixed(2)
			r.GrossDelta = d.GrossDelta.StringFixed(2)
		}
		reports = append(reports, r)
	}
	return reports
}

func reportTable(reports []ValidationReport) table {
	t := table{header: []string{
		"source", "invoice", "status", "interpretation", "total_a_pagar", "total_source",
		"net_delta", "gross_delta", "warnings", "error",
	}}
	for _, r := range reports {
		t.rows = append(t.rows, []string{
			r.Source, r.Invoice, r.Status, r.Interpretation, r.TotalAPagar, r.TotalSource,
			r.NetDelta, r.GrossDelta, fmt.Sprint(r.Warnings), r.Error,
		})
	}
	return t
}
