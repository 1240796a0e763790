// Package report composes the PDF documents generated for accounts:
// the custom bill and the full report. Documents are built from two
// primitives, a titled key-value section and a sequential attachment
// embedder, on top of gofpdf.
package report

import (
	"bytes"

	"github.com/phpdave11/gofpdf"
)

const (
	pageMargin    = 15.0
	sectionTitleH = 8.0
	rowH          = 7.0
	labelColW     = 60.0
)

// Row is one label/value line inside a section. Rows with empty
// values are skipped.
type Row struct {
	Label string
	Value string
}

// Artifact is a finished document ready for upload.
type Artifact struct {
	Filename string
	Bytes    []byte
}

// Doc wraps a paginated PDF document with a vertical cursor.
type Doc struct {
	pdf *gofpdf.Fpdf
}

// NewDoc starts an A4 portrait document with a first page.
func NewDoc(title string) *Doc {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
	pdf.Ln(4)
	return &Doc{pdf: pdf}
}

// Section appends a titled two-column table, skipping rows whose
// value is empty. When every row is empty the section is omitted
// entirely, header included. A page break is inserted when the
// remaining space cannot fit the header plus one row. Returns the
// cursor position after the section.
func (d *Doc) Section(title string, rows []Row) float64 {
	filled := rows[:0:0]
	for _, row := range rows {
		if row.Value != "" {
			filled = append(filled, row)
		}
	}
	if len(filled) == 0 {
		_, y := d.pdf.GetXY()
		return y
	}

	d.ensureSpace(sectionTitleH + rowH)

	d.pdf.SetFont("Helvetica", "B", 12)
	d.pdf.CellFormat(0, sectionTitleH, title, "B", 1, "L", false, 0, "")
	d.pdf.Ln(1)

	for _, row := range filled {
		d.ensureSpace(rowH)
		d.pdf.SetFont("Helvetica", "B", 10)
		d.pdf.CellFormat(labelColW, rowH, row.Label, "", 0, "L", false, 0, "")
		d.pdf.SetFont("Helvetica", "", 10)
		d.pdf.CellFormat(0, rowH, row.Value, "", 1, "L", false, 0, "")
	}
	d.pdf.Ln(4)

	_, y := d.pdf.GetXY()
	return y
}

// Table appends a titled grid with a header row. Used for the sibling
// installment listing on full reports.
func (d *Doc) Table(title string, header []string, rows [][]string) {
	if len(rows) == 0 {
		return
	}
	d.ensureSpace(sectionTitleH + 2*rowH)

	d.pdf.SetFont("Helvetica", "B", 12)
	d.pdf.CellFormat(0, sectionTitleH, title, "B", 1, "L", false, 0, "")
	d.pdf.Ln(1)

	pageW, _ := d.pdf.GetPageSize()
	colW := (pageW - 2*pageMargin) / float64(len(header))

	d.pdf.SetFont("Helvetica", "B", 9)
	for _, h := range header {
		d.pdf.CellFormat(colW, rowH, h, "1", 0, "C", false, 0, "")
	}
	d.pdf.Ln(rowH)

	d.pdf.SetFont("Helvetica", "", 9)
	for _, row := range rows {
		d.ensureSpace(rowH)
		for i, cell := range row {
			if i >= len(header) {
				break
			}
			d.pdf.CellFormat(colW, rowH, cell, "1", 0, "C", false, 0, "")
		}
		d.pdf.Ln(rowH)
	}
	d.pdf.Ln(4)
}

// SignatureLines appends two labelled signature rules at the bottom
// area of the current page.
func (d *Doc) SignatureLines(firstLabel, secondLabel string) {
	d.ensureSpace(3 * rowH)
	d.pdf.Ln(10)

	d.pdf.SetFont("Helvetica", "", 10)
	pageW, _ := d.pdf.GetPageSize()
	lineW := (pageW - 2*pageMargin - 10) / 2

	x, y := d.pdf.GetXY()
	d.pdf.Line(x, y, x+lineW, y)
	d.pdf.Line(x+lineW+10, y, x+2*lineW+10, y)

	d.pdf.SetXY(x, y+2)
	d.pdf.CellFormat(lineW, rowH, firstLabel, "", 0, "C", false, 0, "")
	d.pdf.SetX(x + lineW + 10)
	d.pdf.CellFormat(lineW, rowH, secondLabel, "", 1, "C", false, 0, "")
}

// Output renders the finished document.
func (d *Doc) Output() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PageCount returns the number of pages rendered so far.
func (d *Doc) PageCount() int {
	return d.pdf.PageCount()
}

// ensureSpace starts a new page when fewer than needed millimetres
// remain below the cursor.
func (d *Doc) ensureSpace(needed float64) {
	_, pageH := d.pdf.GetPageSize()
	_, y := d.pdf.GetXY()
	if y+needed > pageH-pageMargin {
		d.pdf.AddPage()
	}
}
