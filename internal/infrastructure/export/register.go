// Package export writes the invoice register as a spreadsheet.
package export

import (
	"fmt"

	"github.com/sangkips/invoicer/internal/domain/entity"
	"github.com/xuri/excelize/v2"
)

const (
	sheetName = "Invoices"
	dateFmt   = "2006-01-02"
)

var headers = []string{"#", "Invoice No", "Type", "Client", "Issue Date", "Due Date", "Total", "Currency"}

// RegisterXLSX renders invoices, in the given order, as an XLSX workbook
func RegisterXLSX(invoices []entity.Invoice) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return nil, fmt.Errorf("failed to create amount style: %w", err)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheetName, "A1", last, bold); err != nil {
		return nil, err
	}

	for i, inv := range invoices {
		row := i + 2
		total, _ := inv.Total.Round(2).Float64()
		values := []any{
			i + 1,
			inv.InvoiceNo,
			inv.InvoiceType.String(),
			inv.ClientName,
			inv.IssueDate.Format(dateFmt),
			inv.DueDate.Format(dateFmt),
			total,
			inv.Currency,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, err
			}
		}
		totalCell, _ := excelize.CoordinatesToCellName(7, row)
		if err := f.SetCellStyle(sheetName, totalCell, totalCell, money); err != nil {
			return nil, err
		}
	}

	if err := f.SetColWidth(sheetName, "B", "D", 22); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheetName, "E", "G", 14); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
