// Package export writes the daily operations journal to Excel workbooks.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/progmawarid-dot/association-najah-ass/pkg/db"
	"github.com/progmawarid-dot/association-najah-ass/pkg/ledger"
	"github.com/progmawarid-dot/association-najah-ass/pkg/pathutil"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the journal.
const SheetName = "Journal"

var headers = []string{
	"N°", "Date", "Libellé", "Registre", "Type", "Référence", "Débit", "Crédit", "Solde",
}

var columnWidths = map[string]float64{
	"A": 6, "B": 12, "C": 40, "D": 10, "E": 12, "F": 16, "G": 14, "H": 14, "I": 14,
}

// JournalSource provides journal entries.
type JournalSource interface {
	DailyJournal(associationID int64, f ledger.JournalFilter) ([]ledger.JournalEntry, error)
}

// Exporter writes journal workbooks under the exports directory.
type Exporter struct {
	pathResolver *pathutil.PathResolver
	source       JournalSource
	metadata     *db.Metadata
	now          func() time.Time
}

// NewExporter creates a new Exporter. metadata may be nil.
func NewExporter(pathResolver *pathutil.PathResolver, source JournalSource, metadata *db.Metadata) *Exporter {
	return &Exporter{
		pathResolver: pathResolver,
		source:       source,
		metadata:     metadata,
		now:          time.Now,
	}
}

// ExportJournal writes the journal of an association for period (YYYY,
// YYYY-MM or empty for all dates) and returns the workbook path.
func (e *Exporter) ExportJournal(associationID int64, period string) (string, error) {
	filter, err := PeriodFilter(period)
	if err != nil {
		return "", err
	}

	filePath, err := e.pathResolver.GetJournalExportPath(associationID, period)
	if err != nil {
		return "", fmt.Errorf("failed to get export path: %w", err)
	}

	entries, err := e.source.DailyJournal(associationID, filter)
	if err != nil {
		return "", fmt.Errorf("failed to load journal: %w", err)
	}

	f, err := BuildWorkbook(entries)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := e.pathResolver.EnsureParentDir(filePath); err != nil {
		return "", err
	}
	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}

	if e.metadata != nil {
		if err := e.metadata.Set(db.MetadataLastExport, e.now().Format(time.RFC3339)); err != nil {
			return "", err
		}
	}

	return filePath, nil
}

// WriteJournal streams a journal workbook to w.
func WriteJournal(w io.Writer, entries []ledger.JournalEntry) error {
	f, err := BuildWorkbook(entries)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// BuildWorkbook lays out journal entries on a single sheet, one row per
// entry below a header row.
func BuildWorkbook(entries []ledger.JournalEntry) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}

	for i, h := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for idx, entry := range entries {
		row := idx + 2

		var debit, credit interface{}
		amount, _ := entry.Amount.Float64()
		if entry.Direction == ledger.Debit {
			debit = amount
		} else {
			credit = amount
		}
		balance, _ := entry.BalanceAfter.Float64()

		values := []interface{}{
			entry.OperationNumber,
			entry.Date,
			entry.Description,
			entry.SourceRegister,
			entry.OperationType,
			entry.Reference,
			debit,
			credit,
			balance,
		}
		for col, v := range values {
			if v == nil {
				continue
			}
			cell := fmt.Sprintf("%c%d", 'A'+col, row)
			if err := f.SetCellValue(SheetName, cell, v); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to write row %d: %w", row, err)
			}
		}
	}

	for col, width := range columnWidths {
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	return f, nil
}

// PeriodFilter converts an export period into a journal filter.
func PeriodFilter(period string) (ledger.JournalFilter, error) {
	switch len(period) {
	case 0:
		return ledger.JournalFilter{}, nil
	case 4:
		t, err := time.Parse("2006", period)
		if err != nil {
			return ledger.JournalFilter{}, fmt.Errorf("invalid period %q: %w", period, err)
		}
		return ledger.JournalFilter{FiscalYear: t.Year()}, nil
	case 7:
		t, err := time.Parse("2006-01", period)
		if err != nil {
			return ledger.JournalFilter{}, fmt.Errorf("invalid period %q: %w", period, err)
		}
		last := t.AddDate(0, 1, -1)
		return ledger.JournalFilter{
			StartDate: t.Format("2006-01-02"),
			EndDate:   last.Format("2006-01-02"),
		}, nil
	}
	return ledger.JournalFilter{}, fmt.Errorf("invalid period %q: expected YYYY or YYYY-MM", period)
}
