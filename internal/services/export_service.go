package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/Saurabhrajput1234/subhsankalpCRM-sub000/internal/models"
	"github.com/Saurabhrajput1234/subhsankalpCRM-sub000/internal/repository"
	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportService renders the plot register and receipt documents into
// downloadable files
type ExportService struct {
	db *gorm.DB
}

func NewExportService(db *gorm.DB) *ExportService {
	return &ExportService{db: db}
}

func plotRegisterRow(p *models.Plot) []string {
	return []string{
		p.SiteName,
		p.PlotNo,
		p.SizeText,
		fmt.Sprintf("%.2f", p.UnitRate),
		fmt.Sprintf("%.2f", p.TotalPrice),
		fmt.Sprintf("%.2f", p.ReceivedAmount),
		fmt.Sprintf("%.2f", p.Balance()),
		p.Status,
	}
}

// ExportPlotsCSV renders the full plot register as CSV
func (s *ExportService) ExportPlotsCSV(ctx context.Context, query *repository.ListQuery) ([]byte, string, error) {
	query.PerPage = 0 // export everything that matches
	plots, _, err := repository.NewPlotRepository(s.db).List(ctx, query)
	if err != nil {
		return nil, "", err
	}

	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)

	_ = writer.Write([]string{"Plot Register", time.Now().Format("2006-01-02 15:04")})
	_ = writer.Write([]string{""})
	_ = writer.Write([]string{"Site", "Plot No", "Size", "Unit Rate", "Total Price", "Received", "Balance", "Status"})

	for i := range plots {
		_ = writer.Write(plotRegisterRow(&plots[i]))
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("plot_register_%s.csv", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

// ExportPlotsXLSX renders the full plot register as a spreadsheet
func (s *ExportService) ExportPlotsXLSX(ctx context.Context, query *repository.ListQuery) ([]byte, string, error) {
	query.PerPage = 0
	plots, _, err := repository.NewPlotRepository(s.db).List(ctx, query)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Plots"
	_ = f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	headers := []string{"Site", "Plot No", "Size", "Unit Rate", "Total Price", "Received", "Balance", "Status"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
		_ = f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for row := range plots {
		p := &plots[row]
		values := []interface{}{
			p.SiteName, p.PlotNo, p.SizeText,
			p.UnitRate, p.TotalPrice, p.ReceivedAmount, p.Balance(), p.Status,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("plot_register_%s.xlsx", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

// ExportReceiptPDF renders a single receipt as a printable document
func (s *ExportService) ExportReceiptPDF(ctx context.Context, id uint) ([]byte, string, error) {
	receipt, err := repository.NewReceiptRepository(s.db).FindByID(ctx, id)
	if err != nil {
		return nil, "", ErrNotFound
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, fmt.Sprintf("Receipt #%d", receipt.ReceiptNo))
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(60, 10, "Reference:")
	pdf.Cell(80, 10, receipt.GUID)
	pdf.Ln(6)

	pdf.Cell(60, 10, "Site:")
	pdf.Cell(80, 10, receipt.SiteName)
	pdf.Ln(6)

	pdf.Cell(60, 10, "Plot No:")
	pdf.Cell(80, 10, receipt.PlotNo)
	pdf.Ln(6)

	pdf.Cell(60, 10, "Type:")
	pdf.Cell(80, 10, receipt.Type)
	pdf.Ln(6)

	pdf.Cell(60, 10, "Status:")
	pdf.Cell(80, 10, receipt.Status)
	pdf.Ln(6)

	pdf.Cell(60, 10, "Amount:")
	pdf.Cell(80, 10, fmt.Sprintf("%.2f", receipt.Amount))
	pdf.Ln(6)

	if receipt.OtherCharges != nil {
		pdf.Cell(60, 10, "Other Charges:")
		pdf.Cell(80, 10, *receipt.OtherCharges)
		pdf.Ln(6)
	}

	pdf.Cell(60, 10, "Total Amount:")
	pdf.Cell(80, 10, fmt.Sprintf("%.2f", receipt.Contribution()))
	pdf.Ln(6)

	if receipt.Discount > 0 {
		pdf.Cell(60, 10, "Discount (per unit):")
		pdf.Cell(80, 10, fmt.Sprintf("%.2f", receipt.Discount))
		pdf.Ln(6)
	}

	if receipt.ExpiryDate != nil {
		pdf.Cell(60, 10, "Valid Until:")
		pdf.Cell(80, 10, receipt.ExpiryDate.Format("2006-01-02"))
		pdf.Ln(6)
	}

	pdf.Cell(60, 10, "Date:")
	pdf.Cell(80, 10, receipt.CreatedAt.Format("2006-01-02 15:04"))
	pdf.Ln(12)

	if receipt.ApprovedBy != nil {
		pdf.SetFont("Arial", "I", 9)
		pdf.Cell(80, 10, fmt.Sprintf("Approved by %s", receipt.ApprovedBy.FullName))
		pdf.Ln(6)
	}

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("receipt_%d.pdf", receipt.ReceiptNo)
	return buf.Bytes(), filename, nil
}
