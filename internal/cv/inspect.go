package cv

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// DOI pattern: 10.XXXX/... where XXXX is 4 to 9 digits
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

// validDOIPattern is doiPattern anchored to the whole string.
var validDOIPattern = regexp.MustCompile(`^10\.\d{4,9}/\S+$`)

// PDFInfo describes a rendered PDF as read back from disk.
type PDFInfo struct {
	Pages int
	Text  string
	DOIs  []string
}

// InspectPDF opens the PDF at path and extracts its page count, plain text
// and the DOIs found in the text. Pages whose text cannot be extracted are
// skipped; a file that does not parse as PDF is an error.
func InspectPDF(path string) (*PDFInfo, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	info := &PDFInfo{Pages: r.NumPage()}
	if info.Pages < 1 {
		return nil, fmt.Errorf("PDF has no pages: %s", path)
	}

	var builder strings.Builder
	for i := 1; i <= info.Pages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}

	info.Text = builder.String()
	info.DOIs = FindDOIs(info.Text)
	return info, nil
}

// FindDOIs returns the distinct DOIs in text, in order of appearance.
func FindDOIs(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, match := range doiPattern.FindAllString(text, -1) {
		// Remove trailing punctuation
		match = strings.TrimRight(match, ".,;:)")
		if ValidDOI(match) && !seen[match] {
			seen[match] = true
			out = append(out, match)
		}
	}
	return out
}

// ValidDOI reports whether doi has the form 10.<4-9 digits>/<suffix>.
func ValidDOI(doi string) bool {
	return validDOIPattern.MatchString(doi)
}

// MissingDOIs returns the DOIs from want that do not appear in the PDF text.
func (p *PDFInfo) MissingDOIs(want []string) []string {
	found := make(map[string]bool, len(p.DOIs))
	for _, d := range p.DOIs {
		found[d] = true
	}
	var missing []string
	for _, d := range want {
		if !found[d] {
			missing = append(missing, d)
		}
	}
	return missing
}
