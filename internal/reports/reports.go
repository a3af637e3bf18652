package reports

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/savethebee/honeyweb/internal/models"
	"github.com/tealeg/xlsx"
)

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypePDF  = "application/pdf"
)

var orderHeaders = []string{
	"Order ID", "Created", "Status", "Customer", "Email", "Phone",
	"Address", "Items", "Total (BGN)",
}

// WriteOrdersWorkbook writes an "Orders" sheet with one row per order.
func WriteOrdersWorkbook(w io.Writer, orders []models.Order) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	headerRow := sheet.AddRow()
	for _, h := range orderHeaders {
		headerRow.AddCell().SetValue(h)
	}

	for _, o := range orders {
		row := sheet.AddRow()
		row.AddCell().SetValue(o.ID.String())
		row.AddCell().SetValue(o.CreatedOn.Format("2006-01-02 15:04"))
		row.AddCell().SetValue(string(o.Status))
		row.AddCell().SetValue(o.CustomerName)
		row.AddCell().SetValue(o.Email)
		row.AddCell().SetValue(o.PhoneNumber)
		row.AddCell().SetValue(o.Address)
		row.AddCell().SetValue(itemSummary(o.Items))
		total, _ := o.TotalPrice.Float64()
		row.AddCell().SetFloatWithFormat(total, "0.00")
	}

	return file.Write(w)
}

func itemSummary(items []models.OrderItem) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = fmt.Sprintf("%s x%d", it.ProductName, it.Quantity)
	}
	return strings.Join(parts, "; ")
}

// WriteOrderReceipt renders a one-page PDF receipt for o.
func WriteOrderReceipt(w io.Writer, o *models.Order) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Receipt "+o.ID.String(), true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "Save The Bee Bulgaria", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 8, "Order receipt", "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "", 11)
	for _, line := range [][2]string{
		{"Order number", o.ID.String()},
		{"Date", o.CreatedOn.Format("02.01.2006 15:04")},
		{"Status", string(o.Status)},
		{"Customer", o.CustomerName},
		{"Email", o.Email},
		{"Phone", o.PhoneNumber},
		{"Address", o.Address},
	} {
		pdf.CellFormat(40, 7, line[0]+":", "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, tr(line[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(90, 8, "Product", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 8, "Quantity", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 8, "Price", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 8, "Subtotal", "1", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 11)
	for _, it := range o.Items {
		pdf.CellFormat(90, 8, tr(it.ProductName), "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 8, fmt.Sprintf("%d", it.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 8, it.Price.StringFixed(2)+" BGN", "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 8, it.Subtotal().StringFixed(2)+" BGN", "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(150, 10, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 10, o.TotalPrice.StringFixed(2)+" BGN", "1", 1, "R", false, 0, "")

	return pdf.Output(w)
}
