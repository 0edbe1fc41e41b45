package excel

// ExcelConfig holds configuration for the workbook funnel source
type ExcelConfig struct {
	FilePath string `json:"file_path"`
	Enabled  bool   `json:"enabled"`
	// TotalLabel marks the row that carries the reference total
	TotalLabel string `json:"total_label"`
}

// DefaultExcelConfig returns sensible defaults for workbook processing
func DefaultExcelConfig() ExcelConfig {
	return ExcelConfig{
		TotalLabel: "total",
		Enabled:    false,
	}
}
