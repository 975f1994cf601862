package export

import (
	"bytes"

	"github.com/go-pdf/fpdf"
)

func renderPDF(blocks []block) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.SetTitle("Meeting Minutes", true)
	pdf.AddPage()
	// core fonts are cp1252
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, b := range blocks {
		switch b.kind {
		case title:
			pdf.SetFont("Helvetica", "B", 20)
			pdf.MultiCell(0, 10, tr(b.text), "", "C", false)
			pdf.Ln(4)
		case heading:
			pdf.Ln(3)
			pdf.SetFont("Helvetica", "B", 14)
			pdf.MultiCell(0, 8, tr(b.text), "", "L", false)
		case bullet:
			pdf.SetFont("Helvetica", "", 11)
			pdf.SetX(pdf.GetX() + 5)
			pdf.MultiCell(0, 6, tr("- "+b.text), "", "L", false)
		default:
			pdf.SetFont("Helvetica", "", 11)
			pdf.MultiCell(0, 6, tr(b.text), "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
