package lease

import (
	"fmt"
	"io"
	"text/template"

	"github.com/go-pdf/fpdf"
)

var textTmpl = template.Must(template.New("lease").Parse(`{{.Title}}
{{range .Sections}}
{{.Title}}
{{range .Paragraphs}}{{.}}
{{end}}{{if .ListTitle}}{{.ListTitle}}
{{end}}{{range .List}}  {{.}}
{{end}}{{range .Closing}}{{.}}
{{end}}{{end}}
Landlord: {{.Landlord}}
Signature: ______________________  Date: __________________

Tenant: {{.Tenant}}
Signature: ______________________  Date: __________________
`))

// WriteText renders the document as plain text.
func WriteText(w io.Writer, d Document) error {
	if err := textTmpl.Execute(w, d); err != nil {
		return fmt.Errorf("rendering lease text: %w", err)
	}
	return nil
}

// WritePDF renders the document as an A4 PDF.
func WritePDF(w io.Writer, d Document) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.SetTitle(d.Title, true)
	pdf.AddPage()

	// core fonts are cp1252
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Times", "BU", 16)
	pdf.CellFormat(0, 10, tr(d.Title), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	for _, s := range d.Sections {
		pdf.SetFont("Times", "B", 12)
		pdf.CellFormat(0, 7, tr(s.Title), "", 1, "L", false, 0, "")
		pdf.SetFont("Times", "", 11)
		for _, p := range s.Paragraphs {
			pdf.MultiCell(0, 5.5, tr(p), "", "J", false)
		}
		if s.ListTitle != "" {
			pdf.SetFont("Times", "B", 11)
			pdf.MultiCell(0, 5.5, tr(s.ListTitle), "", "L", false)
			pdf.SetFont("Times", "", 11)
		}
		for _, item := range s.List {
			pdf.SetX(pdf.GetX() + 6)
			pdf.MultiCell(0, 5.5, tr(item), "", "L", false)
		}
		for _, p := range s.Closing {
			pdf.MultiCell(0, 5.5, tr(p), "", "J", false)
		}
		pdf.Ln(3)
	}

	pdf.Ln(10)
	left, _, right, _ := pdf.GetMargins()
	pageW, _ := pdf.GetPageSize()
	half := (pageW - left - right) / 2

	pdf.SetFont("Times", "B", 11)
	pdf.CellFormat(half, 6, tr("Landlord: "+d.Landlord), "", 0, "L", false, 0, "")
	pdf.CellFormat(half, 6, tr("Tenant: "+d.Tenant), "", 1, "L", false, 0, "")
	pdf.Ln(12)

	y := pdf.GetY()
	pdf.Line(left, y, left+half-10, y)
	pdf.Line(left+half, y, left+2*half-10, y)
	pdf.Ln(2)

	pdf.SetFont("Times", "", 10)
	pdf.CellFormat(half, 5, "Date: __________________", "", 0, "L", false, 0, "")
	pdf.CellFormat(half, 5, "Date: __________________", "", 1, "L", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("rendering lease pdf: %w", err)
	}
	return nil
}
