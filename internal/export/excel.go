package export

import (
	"fmt"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/GerritSt/API-discovery-agent/pkg/discovery"
)

const (
	sheetEndpoints = "API Endpoints"
	sheetSummary   = "Summary"

	headerRow    = 6
	firstDataRow = 7
)

var columnHeaders = []string{"Method", "Path", "Full Endpoint", "Description", "Source"}

var columnWidths = map[string]float64{
	"A": 12,
	"B": 40,
	"C": 50,
	"D": 60,
	"E": 30,
}

// ExcelWriter writes each discovery result to its own styled workbook.
type ExcelWriter struct {
	mu       sync.Mutex
	filePath string
	written  []string
}

// NewExcelWriter creates an Excel writer. An empty filePath generates one
// file per result from the company name.
func NewExcelWriter(filePath string) *ExcelWriter {
	return &ExcelWriter{filePath: filePath}
}

// WrittenFiles returns the paths of workbooks written so far.
func (e *ExcelWriter) WrittenFiles() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.written...)
}

// WriteResult renders one result into a workbook and saves it.
func (e *ExcelWriter) WriteResult(result *discovery.Result) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	path := e.filePath
	if path == "" {
		path = DefaultFilename(result.Company, "xlsx")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := buildEndpointSheet(f, result); err != nil {
		return fmt.Errorf("failed to build endpoint sheet: %w", err)
	}
	if err := buildSummarySheet(f, result); err != nil {
		return fmt.Errorf("failed to build summary sheet: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	e.written = append(e.written, path)
	return nil
}

// Close is a no-op; each WriteResult saves its own workbook.
func (e *ExcelWriter) Close() error {
	return nil
}

func buildEndpointSheet(f *excelize.File, result *discovery.Result) error {
	index, err := f.NewSheet(sheetEndpoints)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 16, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"366092"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	labelStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"366092"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	zebraStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"F2F2F2"}, Pattern: 1},
	})

	// Title banner
	f.MergeCell(sheetEndpoints, "A1", "E1")
	f.SetCellValue(sheetEndpoints, "A1", fmt.Sprintf("%s - API Documentation", result.Company))
	f.SetCellStyle(sheetEndpoints, "A1", "E1", titleStyle)
	f.SetRowHeight(sheetEndpoints, 1, 28)

	// Metadata
	f.SetCellValue(sheetEndpoints, "A3", "Documentation URL:")
	f.SetCellStyle(sheetEndpoints, "A3", "A3", labelStyle)
	if result.DocumentationURL != "" {
		f.SetCellValue(sheetEndpoints, "B3", result.DocumentationURL)
		f.SetCellHyperLink(sheetEndpoints, "B3", result.DocumentationURL, "External")
	} else {
		f.SetCellValue(sheetEndpoints, "B3", "N/A")
	}

	f.SetCellValue(sheetEndpoints, "A4", "Endpoints Found:")
	f.SetCellStyle(sheetEndpoints, "A4", "A4", labelStyle)
	f.SetCellValue(sheetEndpoints, "B4", len(result.Endpoints))

	f.SetCellValue(sheetEndpoints, "A5", "Generated:")
	f.SetCellStyle(sheetEndpoints, "A5", "A5", labelStyle)
	f.SetCellValue(sheetEndpoints, "B5", result.GeneratedAt.Format("2006-01-02 15:04:05"))

	// Column headers
	for i, header := range columnHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, headerRow)
		f.SetCellValue(sheetEndpoints, cell, header)
	}
	f.SetCellStyle(sheetEndpoints, "A6", "E6", headerStyle)

	for col, width := range columnWidths {
		f.SetColWidth(sheetEndpoints, col, col, width)
	}

	// Data rows
	lastRow := firstDataRow
	if len(result.Endpoints) == 0 {
		f.SetCellValue(sheetEndpoints, "A7", "N/A")
		f.SetCellValue(sheetEndpoints, "B7", "N/A")
		f.SetCellValue(sheetEndpoints, "C7", "N/A")
		f.SetCellValue(sheetEndpoints, "D7", "No endpoints could be extracted from the documentation page")
		f.SetCellValue(sheetEndpoints, "E7", "N/A")
	} else {
		for i, ep := range result.Endpoints {
			row := firstDataRow + i
			values := []interface{}{ep.Method, ep.Path, ep.FullEndpoint, ep.Description, ep.Source}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row)
				f.SetCellValue(sheetEndpoints, cell, v)
			}
			if i%2 == 1 {
				f.SetCellStyle(sheetEndpoints,
					fmt.Sprintf("A%d", row), fmt.Sprintf("E%d", row), zebraStyle)
			}
			lastRow = row
		}
	}

	f.AutoFilter(sheetEndpoints, fmt.Sprintf("A%d:E%d", headerRow, lastRow), nil)

	// Keep the banner and headers visible while scrolling
	f.SetPanes(sheetEndpoints, &excelize.Panes{
		Freeze:      true,
		YSplit:      headerRow,
		TopLeftCell: fmt.Sprintf("A%d", firstDataRow),
		ActivePane:  "bottomLeft",
	})

	return nil
}

func buildSummarySheet(f *excelize.File, result *discovery.Result) error {
	if _, err := f.NewSheet(sheetSummary); err != nil {
		return err
	}

	labelStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})

	rows := []struct {
		label string
		value interface{}
	}{
		{"Company", result.Company},
		{"Run ID", result.RunID},
		{"Documentation URL", result.DocumentationURL},
		{"Documentation Title", result.DocumentationTitle},
		{"Endpoints Found", result.Stats.EndpointsFound},
		{"Probes Attempted", result.Stats.ProbesAttempted},
		{"AI Assisted", result.Stats.AIAssisted},
		{"From Cache", result.FromCache},
		{"Duration", result.Duration.String()},
		{"Generated", result.GeneratedAt.Format("2006-01-02 15:04:05")},
	}

	row := 1
	for _, r := range rows {
		labelCell := fmt.Sprintf("A%d", row)
		f.SetCellValue(sheetSummary, labelCell, r.label)
		f.SetCellStyle(sheetSummary, labelCell, labelCell, labelStyle)
		f.SetCellValue(sheetSummary, fmt.Sprintf("B%d", row), r.value)
		row++
	}

	if len(result.Stats.ByStrategy) > 0 {
		row++
		header := fmt.Sprintf("A%d", row)
		f.SetCellValue(sheetSummary, header, "Endpoints by Strategy")
		f.SetCellStyle(sheetSummary, header, header, labelStyle)
		row++
		for strategy, count := range result.Stats.ByStrategy {
			f.SetCellValue(sheetSummary, fmt.Sprintf("A%d", row), strategy)
			f.SetCellValue(sheetSummary, fmt.Sprintf("B%d", row), count)
			row++
		}
	}

	f.SetColWidth(sheetSummary, "A", "A", 24)
	f.SetColWidth(sheetSummary, "B", "B", 60)

	return nil
}
