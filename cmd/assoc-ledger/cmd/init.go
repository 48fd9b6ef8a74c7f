package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	initName string
	initYear int
)

// initCmd represents the init command.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an association",
	Long: `Create an association with its active fiscal year, its cash and bank
accounts, and the payment methods and categories of the seed file
(LEDGER_SEED_FILE, or the built-in defaults).

Example:
  assoc-ledger init --name "Association Najah" --year 2025`,
	Run: runInit,
}

func init() {
	initCmd.Flags().StringVar(&initName, "name", "", "association name (required)")
	initCmd.Flags().IntVar(&initYear, "year", 0, "first fiscal year (default: current year)")
	_ = initCmd.MarkFlagRequired("name")
}

func runInit(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.conn.Close()

	year := initYear
	if year == 0 {
		year = time.Now().Year()
	}

	assoc, err := a.ledger.CreateAssociation(initName, year)
	exitOnError(err, "failed to create association")

	fmt.Printf("Created association %d (%s), fiscal year %d\n", assoc.ID, assoc.Name, year)
}
