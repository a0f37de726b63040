package notify

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/rushgit99x/StarTickets-F-sub001/internal/repository"
)

// PDFRenderer renders booking views into printable ticket documents,
// one page per ticket with the door QR code embedded.  It holds no
// state and is safe for concurrent use.
type PDFRenderer struct{}

// NewPDFRenderer returns a PDFRenderer.
func NewPDFRenderer() *PDFRenderer { return &PDFRenderer{} }

// Render produces a PDF for every ticket in the view.  Each page
// carries the event header, the ticket's category and price, its
// number, and the QR image generated from its signed payload.
func (r *PDFRenderer) Render(view *repository.BookingView) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Tickets "+view.Reference, false)

	for i, tk := range view.Tickets {
		qrPNG, err := QRImage(tk.QRPayload)
		if err != nil {
			return nil, fmt.Errorf("qr encode %s: %w", tk.Number, err)
		}

		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 20)
		pdf.CellFormat(0, 12, view.EventName, "", 1, "C", false, 0, "")
		pdf.SetFont("Helvetica", "", 12)
		pdf.CellFormat(0, 8, view.EventStartsAt.UTC().Format("Monday, 2 January 2006 15:04 MST"), "", 1, "C", false, 0, "")
		pdf.CellFormat(0, 8, fmt.Sprintf("%s, %s, %s", view.VenueName, view.VenueAddress, view.VenueCity), "", 1, "C", false, 0, "")
		pdf.Ln(6)

		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(0, 8, tk.CategoryName, "", 1, "C", false, 0, "")
		pdf.SetFont("Helvetica", "", 12)
		pdf.CellFormat(0, 8, formatCents(tk.UnitPriceCents), "", 1, "C", false, 0, "")
		pdf.CellFormat(0, 8, "Holder: "+view.CustomerName, "", 1, "C", false, 0, "")
		pdf.Ln(4)

		imgName := fmt.Sprintf("qr-%d", i)
		pdf.RegisterImageOptionsReader(imgName, gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))
		// 60mm square, centered on a 210mm page.
		pdf.ImageOptions(imgName, 75, pdf.GetY(), 60, 60, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
		pdf.SetY(pdf.GetY() + 64)

		pdf.SetFont("Courier", "", 11)
		pdf.CellFormat(0, 8, tk.Number, "", 1, "C", false, 0, "")
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(0, 6, "Booking "+view.Reference+" - present this code at the entrance", "", 1, "C", false, 0, "")
		if tk.Used {
			pdf.SetFont("Helvetica", "B", 9)
			pdf.CellFormat(0, 6, "ALREADY SCANNED", "", 1, "C", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// formatCents renders a cent amount as a dollar string for display.
func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
