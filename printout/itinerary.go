// Package printout renders optimization results as printable PDFs.
package printout

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"

	"wayfare/models"
)

// ErrNothingToPrint is returned for a response without a best itinerary.
var ErrNothingToPrint = errors.New("printout: response has no itinerary")

// LookupURL is formatted with the request hash and encoded in the QR code.
var LookupURL = "/api/itineraries/optimize/%s"

// RenderItinerary writes the best itinerary of resp as a one page PDF with a
// QR code pointing back at the cached result.
func RenderItinerary(resp *models.OptimizationResponse) ([]byte, error) {
	if resp == nil || resp.BestItinerary == nil {
		return nil, ErrNothingToPrint
	}
	it := resp.BestItinerary

	qrPNG, err := qrcode.Encode(fmt.Sprintf(LookupURL, resp.RequestHash), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("printout: qr code: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Trip Itinerary")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Dates: %s to %s (%d nights)", it.StartDate, it.EndDate, it.TotalNights))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Total: %.2f %s", it.TotalCost, it.Currency))
	pdf.Ln(8)
	if it.MixedCurrency {
		pdf.Cell(0, 8, "Prices are in more than one currency and were not converted.")
		pdf.Ln(8)
	}
	pdf.Cell(0, 8, fmt.Sprintf("Reference: %s", resp.RequestHash))
	pdf.Ln(12)

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 160, 10, 35, 35, false, opts, 0, "")

	for _, d := range it.Destinations {
		pdf.SetFont("Arial", "B", 13)
		pdf.Cell(0, 9, fmt.Sprintf("%d. %s", d.Order, d.DestinationName))
		pdf.Ln(9)
		pdf.SetFont("Arial", "", 11)
		pdf.Cell(0, 7, fmt.Sprintf("%s to %s, %d nights, %.2f %s", d.StartDate, d.EndDate, d.Nights, d.TotalCost, d.Currency))
		pdf.Ln(8)

		pdf.SetFont("Arial", "", 10)
		for _, ha := range d.HotelAssignments {
			pdf.CellFormat(30, 6, ha.AssignmentDate.String(), "1", 0, "", false, 0, "")
			pdf.CellFormat(90, 6, ha.HotelName, "1", 0, "", false, 0, "")
			pdf.CellFormat(35, 6, fmt.Sprintf("%.2f %s", ha.Price, ha.Currency), "1", 1, "R", false, 0, "")
		}
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("printout: render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
