package cmd

import (
	"fmt"
	"log/slog"

	"github.com/progmawarid-dot/association-najah-ass/pkg/db"
	"github.com/progmawarid-dot/association-najah-ass/pkg/export"
	"github.com/spf13/cobra"
)

var (
	exportAssociation int64
	exportPeriod      string
)

// exportCmd represents the export command.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the journal to an Excel workbook",
	Long: `Write the daily operations journal to an .xlsx workbook under the
exports directory (LEDGER_EXPORTS_DIR, default <data dir>/exports).

The period is empty for the whole history, YYYY for a year or YYYY-MM for
a month.

Example:
  assoc-ledger export --association 1 --period 2025
  assoc-ledger export --association 1 --period 2025-02`,
	Run: runExport,
}

func init() {
	exportCmd.Flags().Int64Var(&exportAssociation, "association", 0, "association id (required)")
	exportCmd.Flags().StringVar(&exportPeriod, "period", "", "YYYY or YYYY-MM (default: all)")
	_ = exportCmd.MarkFlagRequired("association")
}

func runExport(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.conn.Close()

	exporter := export.NewExporter(a.pathResolver, a.ledger, db.NewMetadata(a.conn))

	path, err := exporter.ExportJournal(exportAssociation, exportPeriod)
	exitOnError(err, "failed to export journal")

	slog.Info("Journal exported", "association_id", exportAssociation, "period", exportPeriod, "path", path)
	fmt.Println(path)
}
