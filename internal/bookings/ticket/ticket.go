package ticket

import (
	"bytes"
	"fmt"
	"strings"
	"time"
	"unicode"

	"travelpartner/pkg/config"
	"travelpartner/pkg/locale"
	"travelpartner/pkg/model"

	"github.com/phpdave11/gofpdf"
)

const timeLayout = "02 Jan 2006 15:04 MST"

// Render builds the e-ticket PDF for a booking and a download file name.
func Render(b *model.Booking) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("E-Ticket "+b.ClientBookingID, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "E-TICKET")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, tr(fmt.Sprintf("%s %s  %s", strings.ToUpper(b.Trip.Mode), b.Trip.Number, b.Trip.Operator)))
	pdf.Ln(10)

	loc := locale.Location(b.Purchaser.Phone)
	pdf.SetFont("Helvetica", "", 11)
	lines := []string{
		fmt.Sprintf("From        : %s (%s), %s", safe(b.Trip.Source.Name), safe(b.Trip.Source.Code), safe(b.Trip.Source.City)),
		fmt.Sprintf("To          : %s (%s), %s", safe(b.Trip.Destination.Name), safe(b.Trip.Destination.Code), safe(b.Trip.Destination.City)),
		fmt.Sprintf("Departure   : %s", DisplayTime(b.Trip.DepartureTime, loc)),
		fmt.Sprintf("Arrival     : %s", DisplayTime(b.Trip.ArrivalTime, loc)),
		fmt.Sprintf("Gate        : %s", safe(b.Trip.Gate)),
		fmt.Sprintf("Class       : %s", safe(b.FareClass)),
		fmt.Sprintf("Booking ref : %s", b.ClientBookingID),
		fmt.Sprintf("Payment id  : %s", safe(b.PaymentID)),
		fmt.Sprintf("Amount paid : %s %s", FormatAmount(b.AmountMinor), b.Currency),
	}
	if b.MealPreference != "" {
		lines = append(lines, fmt.Sprintf("Meal        : %s", b.MealPreference))
	}
	for _, s := range lines {
		pdf.Cell(0, 7, tr(s))
		pdf.Ln(7)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Passengers")
	pdf.Ln(9)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(20, 7, "Seat", "1", 0, "C", false, 0, "")
	pdf.CellFormat(100, 7, "Name", "1", 0, "L", false, 0, "")
	pdf.CellFormat(20, 7, "Age", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 7, "Gender", "1", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, p := range b.Passengers {
		pdf.CellFormat(20, 7, tr(p.SeatNumber), "1", 0, "C", false, 0, "")
		pdf.CellFormat(100, 7, tr(p.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 7, fmt.Sprintf("%d", p.Age), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 7, tr(p.Gender), "1", 1, "C", false, 0, "")
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5, tr(fmt.Sprintf("Booked by %s <%s>. Carry a photo ID matching the passenger name.", b.Purchaser.Name, b.Purchaser.Email)), "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("ETICKET_%s_%s.pdf", filenamePart(b.Trip.Number), filenamePart(b.ClientBookingID))
	return buf.Bytes(), filename, nil
}

// DisplayTime formats t in the purchaser's zone.
func DisplayTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(timeLayout)
}

// FormatAmount renders minor units as a major-unit decimal, e.g. 1234550 as 12345.50.
func FormatAmount(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/config.MinorUnitsPerMajor, minor%config.MinorUnitsPerMajor)
}

func safe(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func filenamePart(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "X"
	}
	return b.String()
}
