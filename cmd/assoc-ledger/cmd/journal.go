package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/progmawarid-dot/association-najah-ass/pkg/ledger"
	"github.com/spf13/cobra"
)

var (
	journalAssociation int64
	journalFilter      ledger.JournalFilter
)

// journalCmd represents the journal command.
var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Print the daily operations journal",
	Long: `Print the daily operations journal of an association: every cash and
bank movement, plus income and paid expenses not posted to a register, in
date order with the running balance.

Example:
  assoc-ledger journal --association 1 --year 2025
  assoc-ledger journal --association 1 --from 2025-02-01 --to 2025-02-28 --source cash`,
	Run: runJournal,
}

func init() {
	journalCmd.Flags().Int64Var(&journalAssociation, "association", 0, "association id (required)")
	journalCmd.Flags().IntVar(&journalFilter.FiscalYear, "year", 0, "fiscal year")
	journalCmd.Flags().StringVar(&journalFilter.StartDate, "from", "", "start date (YYYY-MM-DD)")
	journalCmd.Flags().StringVar(&journalFilter.EndDate, "to", "", "end date (YYYY-MM-DD)")
	journalCmd.Flags().StringVar(&journalFilter.OperationType, "type", "", "operation type: income, expense or transfer")
	journalCmd.Flags().StringVar(&journalFilter.SourceRegister, "source", "", "source register: cash, bank, income or expense")
	_ = journalCmd.MarkFlagRequired("association")
}

func runJournal(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.conn.Close()

	entries, err := a.ledger.DailyJournal(journalAssociation, journalFilter)
	exitOnError(err, "failed to build journal")

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "N°\tDate\tSource\tReference\tDebit\tCredit\tBalance\t")
	for _, e := range entries {
		debit, credit := "", ""
		if e.Direction == ledger.Debit {
			debit = e.Amount.StringFixed(2)
		} else {
			credit = e.Amount.StringFixed(2)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			e.OperationNumber, e.Date, e.SourceRegister, e.Reference, debit, credit, e.BalanceAfter.StringFixed(2))
	}
	exitOnError(w.Flush(), "failed to print journal")

	fmt.Printf("\n%d operations\n", len(entries))
}
