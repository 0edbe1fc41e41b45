package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"funnelboard/domain/core"
	"funnelboard/domain/funnel"
	"funnelboard/internal"
	"funnelboard/internal/errors"
	"funnelboard/ports"

	"github.com/xuri/excelize/v2"
)

// Workbook exposes an xlsx file as one funnel per sheet, or a csv file as a
// single funnel named after the file. Each sheet lists "label, value" rows; an
// optional total row sets the reference total.
type Workbook struct {
	config   ExcelConfig
	fileType string // "xlsx" or "csv"
	logger   *internal.Logger
}

var _ ports.FunnelCatalog = (*Workbook)(nil)

// NewWorkbook creates a workbook source for the configured file. A nil logger
// falls back to internal.DefaultLogger.
func NewWorkbook(config ExcelConfig, logger *internal.Logger) *Workbook {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if config.TotalLabel == "" {
		config.TotalLabel = DefaultExcelConfig().TotalLabel
	}
	fileType := "xlsx"
	if strings.ToLower(filepath.Ext(config.FilePath)) == ".csv" {
		fileType = "csv"
	}
	return &Workbook{config: config, fileType: fileType, logger: logger}
}

// Sources lists one funnel source per sheet
func (w *Workbook) Sources(ctx context.Context) ([]ports.FunnelSource, error) {
	if _, err := os.Stat(w.config.FilePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(w.fileType), w.config.FilePath)
	}

	if w.fileType == "csv" {
		base := strings.TrimSuffix(filepath.Base(w.config.FilePath), filepath.Ext(w.config.FilePath))
		return []ports.FunnelSource{&sheetSource{wb: w, name: SheetFunnelName(base)}}, nil
	}

	f, err := excelize.OpenFile(w.config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	var sources []ports.FunnelSource
	for _, sheet := range f.GetSheetList() {
		sources = append(sources, &sheetSource{wb: w, sheet: sheet, name: SheetFunnelName(sheet)})
	}
	w.logger.Info("[Workbook] %s exposes %d funnel(s)", w.config.FilePath, len(sources))
	return sources, nil
}

// ReadSheet reads and parses one sheet; the sheet name is ignored for csv files
func (w *Workbook) ReadSheet(sheet string) (funnel.Spec, error) {
	start := time.Now()
	var rows [][]string
	var err error
	switch w.fileType {
	case "csv":
		rows, err = w.readCSVRows()
	default:
		rows, err = w.readExcelRows(sheet)
	}
	if err != nil {
		return funnel.Spec{}, err
	}

	spec, err := ParseRows(rows, w.config.TotalLabel)
	if err != nil {
		return funnel.Spec{}, errors.Wrapf(err, "sheet %q", sheet)
	}
	w.logger.Debug("[Workbook] read %d stage(s) from %q in %.2fms", len(spec.Stages), sheet, float64(time.Since(start).Nanoseconds())/1e6)
	return spec, nil
}

func (w *Workbook) readExcelRows(sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(w.config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sheet, err)
	}
	return rows, nil
}

func (w *Workbook) readCSVRows() ([][]string, error) {
	file, err := os.Open(w.config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

// ParseRows turns "label, value" rows into a spec. A leading header row whose
// value cell is not numeric is skipped, blank rows are ignored, and a row
// labelled totalLabel sets the total. Without one the first stage's value is used.
func ParseRows(rows [][]string, totalLabel string) (funnel.Spec, error) {
	var spec funnel.Spec
	hasTotal := false
	for i, row := range rows {
		if len(row) == 0 || strings.TrimSpace(strings.Join(row, "")) == "" {
			continue
		}
		label := strings.TrimSpace(row[0])
		raw := ""
		if len(row) > 1 {
			raw = strings.TrimSpace(row[1])
		}
		value, err := parseNumber(raw)
		if err != nil {
			if len(spec.Stages) == 0 && !hasTotal {
				continue // header
			}
			return funnel.Spec{}, errors.ValidationError(fmt.Sprintf("row %d: value %q is not a number", i+1, raw))
		}
		if strings.EqualFold(label, totalLabel) {
			spec.Total = value
			hasTotal = true
			continue
		}
		spec.Stages = append(spec.Stages, funnel.Stage{Label: label, Value: value})
	}

	if len(spec.Stages) == 0 {
		return funnel.Spec{}, core.ErrEmptyFunnel
	}
	if !hasTotal {
		spec.Total = spec.Stages[0].Value
	}
	if err := spec.Validate(); err != nil {
		return funnel.Spec{}, err
	}
	return spec, nil
}

func parseNumber(s string) (float64, error) {
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}
	return strconv.ParseFloat(s, 64)
}

// SheetFunnelName derives a URL-safe funnel name from a sheet or file name
func SheetFunnelName(sheet string) core.FunnelName {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(sheet)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return core.FunnelName(strings.TrimSuffix(b.String(), "-"))
}

type sheetSource struct {
	wb    *Workbook
	sheet string
	name  core.FunnelName
}

func (s *sheetSource) Name() core.FunnelName { return s.name }

func (s *sheetSource) Funnel(ctx context.Context) (funnel.Spec, error) {
	if err := ctx.Err(); err != nil {
		return funnel.Spec{}, err
	}
	return s.wb.ReadSheet(s.sheet)
}
