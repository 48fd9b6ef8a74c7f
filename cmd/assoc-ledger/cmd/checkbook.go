package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	checkbookAssociation int64
	checkbookBank        string
	checkbookSeries      string
	checkbookStart       int
	checkbookEnd         int
	checkbookThreshold   int
	cancelReason         string
	cancelDate           string
)

// checkbookCmd groups the checkbook subcommands.
var checkbookCmd = &cobra.Command{
	Use:   "checkbook",
	Short: "Manage checkbooks",
}

var checkbookRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a checkbook",
	Long: `Register a checkbook covering a range of check numbers.

Example:
  assoc-ledger checkbook register --association 1 --series A --start 500 --end 550`,
	Run: runCheckbookRegister,
}

var checkbookListCmd = &cobra.Command{
	Use:   "list",
	Short: "List checkbooks with their usage",
	Run:   runCheckbookList,
}

var checkbookCancelCmd = &cobra.Command{
	Use:   "cancel CHECKBOOK_ID NUMBER",
	Short: "Cancel an available check",
	Args:  cobra.ExactArgs(2),
	Run:   runCheckbookCancel,
}

func init() {
	checkbookRegisterCmd.Flags().Int64Var(&checkbookAssociation, "association", 0, "association id (required)")
	checkbookRegisterCmd.Flags().StringVar(&checkbookBank, "bank", "", "bank account name")
	checkbookRegisterCmd.Flags().StringVar(&checkbookSeries, "series", "", "series name (required)")
	checkbookRegisterCmd.Flags().IntVar(&checkbookStart, "start", 0, "first check number")
	checkbookRegisterCmd.Flags().IntVar(&checkbookEnd, "end", 0, "last check number")
	checkbookRegisterCmd.Flags().IntVar(&checkbookThreshold, "alert", 0, "low stock threshold (default 5)")
	_ = checkbookRegisterCmd.MarkFlagRequired("association")
	_ = checkbookRegisterCmd.MarkFlagRequired("series")

	checkbookListCmd.Flags().Int64Var(&checkbookAssociation, "association", 0, "association id (required)")
	_ = checkbookListCmd.MarkFlagRequired("association")

	checkbookCancelCmd.Flags().StringVar(&cancelReason, "reason", "", "cancellation reason (required)")
	checkbookCancelCmd.Flags().StringVar(&cancelDate, "date", "", "cancellation date (default: today)")
	_ = checkbookCancelCmd.MarkFlagRequired("reason")

	checkbookCmd.AddCommand(checkbookRegisterCmd)
	checkbookCmd.AddCommand(checkbookListCmd)
	checkbookCmd.AddCommand(checkbookCancelCmd)
}

func runCheckbookRegister(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.conn.Close()

	cb, err := a.ledger.RegisterCheckbook(checkbookAssociation, checkbookBank, checkbookSeries, checkbookStart, checkbookEnd, checkbookThreshold)
	exitOnError(err, "failed to register checkbook")

	fmt.Printf("Registered checkbook %d: series %s, checks %d-%d\n", cb.ID, cb.SeriesName, cb.StartNumber, cb.EndNumber)
}

func runCheckbookList(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.conn.Close()

	checkbooks, err := a.ledger.ListCheckbooks(checkbookAssociation)
	exitOnError(err, "failed to list checkbooks")

	fmt.Println("\n=== Checkbooks ===")
	for _, cb := range checkbooks {
		alert := ""
		if cb.Stats.LowStock {
			alert = "  (low stock)"
		}
		fmt.Printf("#%d %s %d-%d: %d used, %d cancelled, %d remaining%s\n",
			cb.ID, cb.SeriesName, cb.StartNumber, cb.EndNumber,
			cb.Stats.Used, cb.Stats.Cancelled, cb.Stats.Remaining, alert)
	}
	fmt.Println()
}

func runCheckbookCancel(cmd *cobra.Command, args []string) {
	checkbookID, err := strconv.ParseInt(args[0], 10, 64)
	exitOnError(err, "invalid checkbook id")
	number, err := strconv.Atoi(args[1])
	exitOnError(err, "invalid check number")

	a := openApp()
	defer a.conn.Close()

	cc, err := a.ledger.CancelCheck(checkbookID, number, cancelReason, cancelDate)
	exitOnError(err, "failed to cancel check")

	fmt.Printf("Cancelled check %d of checkbook %d on %s\n", cc.CheckNumber, cc.CheckbookID, cc.CancellationDate)
}
