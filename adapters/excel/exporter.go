package excel

import (
	"fmt"
	"io"

	"funnelboard/internal/analysis"

	"github.com/xuri/excelize/v2"
)

var exportHeader = []interface{}{"Stage", "Users", "Completion %", "Step Conversion %", "Drop-off", "Drop-off %"}

// WriteSummary writes a conversion summary as a single-sheet workbook. The
// first two columns round-trip through Workbook.
func WriteSummary(w io.Writer, summary analysis.Summary) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := exportSheetName(string(summary.Name))
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := f.SetSheetRow(sheet, "A1", &exportHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", "F1", bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, st := range summary.Stages {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{st.Label, st.Value, st.CompletionPct, st.StepConversionPct, st.DropOff, st.DropOffPct}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write stage %q: %w", st.Label, err)
		}
	}

	totalCell, err := excelize.CoordinatesToCellName(1, len(summary.Stages)+2)
	if err != nil {
		return err
	}
	totalRow := []interface{}{"Total", summary.Total}
	if err := f.SetSheetRow(sheet, totalCell, &totalRow); err != nil {
		return fmt.Errorf("failed to write total: %w", err)
	}

	if err := f.SetColWidth(sheet, "A", "A", 24); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", "F", 16); err != nil {
		return err
	}
	return f.Write(w)
}

// exportSheetName trims a funnel name to Excel's 31 character sheet limit
func exportSheetName(name string) string {
	if name == "" {
		name = "funnel"
	}
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}
