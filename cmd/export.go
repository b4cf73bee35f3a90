package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/yeremiapane/table-reservations/reports"
	"github.com/yeremiapane/table-reservations/services"
)

func newExportCmd() *cobra.Command {
	var from, to, format, dir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a PDF or XLSX reservations report for a date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.Close()

			renderer, err := reports.ForFormat(format, a.cfg.ReportTitle)
			if err != nil {
				return err
			}

			if from == "" {
				from = a.clock.Today()
			}
			if to == "" {
				to = from
			}

			report, err := services.NewReportService(a.store).Build(cmd.Context(), from, to)
			if err != nil {
				return err
			}
			out, err := renderer.Render(report)
			if err != nil {
				return err
			}

			path := filepath.Join(dir, reports.FileName(report, renderer))
			if err := os.WriteFile(path, out, 0o644); err != nil {
				return fmt.Errorf("cannot write report: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d reservations)\n", path, report.TotalReservations)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first date, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&to, "to", "", "last date, YYYY-MM-DD (default --from)")
	cmd.Flags().StringVar(&format, "format", "pdf", "pdf or excel")
	cmd.Flags().StringVar(&dir, "dir", ".", "output directory")
	return cmd
}
