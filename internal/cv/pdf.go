package cv

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"
)

// Font files looked up in the fonts directory. DejaVu covers Polish
// diacritics; without it the core Helvetica font is used.
const (
	FontRegularFile = "DejaVuSans.ttf"
	FontBoldFile    = "DejaVuSans-Bold.ttf"

	dejaVu    = "DejaVuSans"
	helvetica = "Helvetica"
)

// Page geometry in millimetres.
const (
	marginLeft   = 18.0
	marginRight  = 18.0
	marginTop    = 16.0
	marginBottom = 16.0

	labelWidth = 65.0
	valueWidth = 110.0
)

// Type sizes in points and line heights in millimetres.
const (
	sizeH1    = 16.0
	sizeH2    = 12.0
	sizeBody  = 9.5
	sizeSmall = 8.8
	sizeTable = 9.0

	lineBody  = 4.2 // 12pt leading
	lineSmall = 3.9 // 11pt leading
	lineTable = 3.9
	lineH1    = 7.0
	lineH2    = 5.6
)

const ptToMM = 25.4 / 72

// PDFOptions controls PDF rendering.
type PDFOptions struct {
	FontsDir string
}

// pdfWriter wraps fpdf with the chosen fonts and text translation.
type pdfWriter struct {
	pdf     *fpdf.Fpdf
	regular string
	bold    string
	tr      func(string) string
}

// WritePDF renders doc as an A4 PDF at path, creating its directory.
// It reports whether the embedded DejaVu fonts were used.
func WritePDF(doc *Document, path string, opts PDFOptions) (bool, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, fmt.Errorf("creating directory for %s: %w", path, err)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginLeft, marginTop, marginRight)
	pdf.SetAutoPageBreak(true, marginBottom)
	pdf.SetTitle(PDFTitle, true)
	pdf.SetAuthor(doc.Name, true)

	w := &pdfWriter{pdf: pdf}
	embedded, err := w.loadFonts(opts.FontsDir)
	if err != nil {
		return false, err
	}

	pdf.AddPage()
	w.render(doc)

	if err := pdf.OutputFileAndClose(path); err != nil {
		return false, fmt.Errorf("writing PDF: %w", err)
	}
	return embedded, nil
}

// loadFonts registers DejaVuSans from fontsDir when present. A missing bold
// face falls back to the regular one.
func (w *pdfWriter) loadFonts(fontsDir string) (bool, error) {
	regular, err := readFont(fontsDir, FontRegularFile)
	if err != nil {
		return false, err
	}
	if regular == nil {
		w.regular, w.bold = helvetica, helvetica
		w.tr = w.pdf.UnicodeTranslatorFromDescriptor("")
		return false, nil
	}

	w.pdf.AddUTF8FontFromBytes(dejaVu, "", regular)
	w.regular, w.bold = dejaVu, dejaVu
	w.tr = func(s string) string { return s }

	bold, err := readFont(fontsDir, FontBoldFile)
	if err != nil {
		return false, err
	}
	if bold != nil {
		w.pdf.AddUTF8FontFromBytes(dejaVu, "B", bold)
	} else {
		// Registering the regular face as bold keeps SetFont(dejaVu, "B") valid.
		w.pdf.AddUTF8FontFromBytes(dejaVu, "B", regular)
	}

	if w.pdf.Err() {
		return false, fmt.Errorf("loading fonts: %w", w.pdf.Error())
	}
	return true, nil
}

func readFont(dir, name string) ([]byte, error) {
	if dir == "" {
		return nil, nil
	}
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading font %s: %w", name, err)
	}
	return data, nil
}

func (w *pdfWriter) render(doc *Document) {
	w.heading(doc.Name, sizeH1, lineH1, 6)
	w.paragraph(doc.HeaderLine, sizeBody, lineBody, 0)
	if doc.LinksLine != "" {
		w.paragraph(doc.LinksLine, sizeSmall, lineSmall, 0)
	}
	w.space(10)

	w.heading(SummaryTitle, sizeH2, lineH2, 4)
	w.table(doc.Summary)
	w.space(10)

	for _, sec := range doc.Sections {
		w.heading(sec.Title, sizeH2, lineH2, 4)
		if len(sec.Items) == 0 {
			w.paragraph(NoRecords, sizeBody, lineBody, 6)
			continue
		}
		for _, item := range sec.Items {
			w.paragraph(item, sizeBody, lineBody, 2)
		}
		w.space(8)
	}
}

// heading writes bold text followed by spaceAfter points of spacing.
func (w *pdfWriter) heading(text string, size, line, spaceAfter float64) {
	w.pdf.SetFont(w.bold, "B", size)
	w.pdf.MultiCell(0, line, w.tr(text), "", "L", false)
	w.space(spaceAfter)
}

func (w *pdfWriter) paragraph(text string, size, line, spaceAfter float64) {
	w.pdf.SetFont(w.regular, "", size)
	w.pdf.MultiCell(0, line, w.tr(text), "", "L", false)
	w.space(spaceAfter)
}

// space adds vertical spacing given in points.
func (w *pdfWriter) space(pt float64) {
	if pt > 0 {
		w.pdf.Ln(pt * ptToMM)
	}
}

// table writes two-column rows separated by light-grey rules.
func (w *pdfWriter) table(rows []Row) {
	const pad = 2 * ptToMM

	w.pdf.SetFont(w.regular, "", sizeTable)
	w.pdf.SetDrawColor(211, 211, 211)
	w.pdf.SetLineWidth(0.25 * ptToMM)

	_, pageHeight := w.pdf.GetPageSize()
	x := marginLeft
	for _, row := range rows {
		y := w.pdf.GetY()
		if y+2*lineTable+2*pad > pageHeight-marginBottom {
			w.pdf.AddPage()
			y = w.pdf.GetY()
		}

		w.pdf.SetXY(x, y+pad)
		w.pdf.MultiCell(labelWidth, lineTable, w.tr(row.Label), "", "L", false)
		labelBottom := w.pdf.GetY()

		w.pdf.SetXY(x+labelWidth, y+pad)
		w.pdf.MultiCell(valueWidth, lineTable, w.tr(row.Value), "", "L", false)
		bottom := w.pdf.GetY()
		if labelBottom > bottom {
			bottom = labelBottom
		}
		bottom += pad

		w.pdf.Line(x, bottom, x+labelWidth+valueWidth, bottom)
		w.pdf.SetXY(x, bottom)
	}
}
