package cmd

import (
	"fmt"
	"log/slog"

	"github.com/progmawarid-dot/association-najah-ass/pkg/db"
	"github.com/spf13/cobra"
)

var statsAssociation int64

// statsCmd represents the stats command.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Display row counts of an association",
	Long: `Display statistics about the books of an association.

Shows:
- Number of income and expense transactions
- Number of cash and bank register rows
- Number of checkbooks and cancelled checks
- Last export timestamp

Example:
  assoc-ledger stats --association 1`,
	Run: runStats,
}

func init() {
	statsCmd.Flags().Int64Var(&statsAssociation, "association", 0, "association id (required)")
	_ = statsCmd.MarkFlagRequired("association")
}

func runStats(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.conn.Close()

	stats, err := db.GetStats(a.conn, statsAssociation)
	exitOnError(err, "failed to get statistics")

	fmt.Println("\n=== Ledger Statistics ===")
	fmt.Printf("Income transactions:   %d\n", stats.IncomeTransactions)
	fmt.Printf("Expense transactions:  %d\n", stats.ExpenseTransactions)
	fmt.Printf("Cash register rows:    %d\n", stats.CashTransactions)
	fmt.Printf("Bank register rows:    %d\n", stats.BankTransactions)
	fmt.Printf("Checkbooks:            %d\n", stats.Checkbooks)
	fmt.Printf("Cancelled checks:      %d\n", stats.CancelledChecks)

	if stats.LastExport.Valid {
		fmt.Printf("Last export:           %s\n", stats.LastExport.String)
	} else {
		fmt.Printf("Last export:           (never)\n")
	}

	fmt.Println()

	slog.Debug("Statistics displayed successfully")
}
