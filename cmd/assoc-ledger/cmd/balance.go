package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	balanceAssociation int64
	balanceYear        int
)

// balanceCmd represents the balance command.
var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Display balances and the yearly summary",
	Long: `Display the cash, bank and total balances of an association, derived
from its registers, with the income and paid expenses of a fiscal year.

Example:
  assoc-ledger balance --association 1 --year 2025`,
	Run: runBalance,
}

func init() {
	balanceCmd.Flags().Int64Var(&balanceAssociation, "association", 0, "association id (required)")
	balanceCmd.Flags().IntVar(&balanceYear, "year", 0, "fiscal year (default: all years)")
	_ = balanceCmd.MarkFlagRequired("association")
}

func runBalance(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.conn.Close()

	summary, err := a.ledger.Summary(balanceAssociation, balanceYear)
	exitOnError(err, "failed to compute summary")

	fmt.Println("\n=== Balance ===")
	fmt.Printf("Cash:            %s\n", summary.CashBalance.StringFixed(2))
	fmt.Printf("Bank:            %s\n", summary.BankBalance.StringFixed(2))
	fmt.Printf("Total:           %s\n", summary.TotalBalance.StringFixed(2))
	fmt.Println()
	fmt.Printf("Income:          %s\n", summary.TotalIncome.StringFixed(2))
	fmt.Printf("Paid expenses:   %s\n", summary.TotalExpenses.StringFixed(2))
	fmt.Printf("Operations:      %d\n", summary.OperationsCount)
	fmt.Println()
}
