package services

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Saurabhrajput1234/subhsankalpCRM-sub000/pkg/logger"
	"github.com/xuri/excelize/v2"
)

// ImportService loads plot inventory from uploaded spreadsheets
type ImportService struct {
	plots *PlotService
}

func NewImportService(plots *PlotService) *ImportService {
	return &ImportService{plots: plots}
}

// ImportResult summarizes a spreadsheet import run
type ImportResult struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

// ImportPlotsXLSX reads plot rows from the first sheet of an uploaded
// workbook. Expected columns: site name, plot no, size, unit rate, total
// price, description. The first row is treated as a header. Malformed numeric
// cells degrade to zero rather than failing the row, matching how sizes are
// parsed elsewhere.
func (s *ImportService) ImportPlotsXLSX(ctx context.Context, r io.Reader, createdByID uint) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	var inputs []CreatePlotInput
	result := &ImportResult{}

	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		if len(row) < 2 || strings.TrimSpace(cell(row, 0)) == "" {
			result.Skipped++
			continue
		}

		var description *string
		if d := strings.TrimSpace(cell(row, 5)); d != "" {
			description = &d
		}

		inputs = append(inputs, CreatePlotInput{
			SiteName:    strings.TrimSpace(cell(row, 0)),
			PlotNo:      strings.TrimSpace(cell(row, 1)),
			SizeText:    strings.TrimSpace(cell(row, 2)),
			UnitRate:    parseNumber(cell(row, 3)),
			TotalPrice:  parseNumber(cell(row, 4)),
			Description: description,
			CreatedByID: createdByID,
		})
	}

	created, rowErrors, err := s.plots.CreateBatch(ctx, inputs)
	if err != nil {
		return nil, err
	}

	result.Created = len(created)
	for idx, rowErr := range rowErrors {
		result.Skipped++
		// +2: one for the header row, one for the zero based index
		result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", idx+2, rowErr))
	}

	logger.Info("plot import finished",
		"created", result.Created, "skipped", result.Skipped, "errors", len(result.Errors))
	return result, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return row[i]
}

func parseNumber(text string) float64 {
	clean := strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	if clean == "" {
		return 0
	}
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0
	}
	return v
}
