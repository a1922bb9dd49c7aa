package cv

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gomutex/godocx"
)

// WriteDOCX renders doc as a Word document at path, creating its directory.
func WriteDOCX(doc *Document, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}

	d, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("creating document: %w", err)
	}

	if _, err := d.AddHeading(doc.Name, 0); err != nil {
		return fmt.Errorf("adding title: %w", err)
	}
	if doc.HeaderLine != "" {
		d.AddParagraph(doc.HeaderLine)
	}
	if doc.LinksLine != "" {
		d.AddParagraph(doc.LinksLine)
	}

	if _, err := d.AddHeading(SummaryTitle, 1); err != nil {
		return fmt.Errorf("adding heading %q: %w", SummaryTitle, err)
	}
	for _, row := range doc.Summary {
		d.AddParagraph(row.Label + ": " + row.Value)
	}

	for _, sec := range doc.Sections {
		if _, err := d.AddHeading(sec.Title, 1); err != nil {
			return fmt.Errorf("adding heading %q: %w", sec.Title, err)
		}
		if len(sec.Items) == 0 {
			d.AddParagraph(NoRecords)
			continue
		}
		for _, item := range sec.Items {
			d.AddParagraph(item)
		}
	}

	if err := d.SaveTo(path); err != nil {
		return fmt.Errorf("writing DOCX: %w", err)
	}
	return nil
}
