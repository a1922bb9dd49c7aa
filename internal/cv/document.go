// Package cv builds the scientific CV document model and renders it as PDF
// and DOCX.
package cv

import (
	"strconv"
	"strings"

	"github.com/dtobolski/sitecv/internal/profile"
	"github.com/dtobolski/sitecv/internal/publication"
	"github.com/dtobolski/sitecv/internal/summary"
)

// Section titles, in rendering order.
const (
	SectionListA       = "Peer-reviewed publications (List A)"
	SectionListB       = "Other publications (List B)"
	SectionChapters    = "Book chapters"
	SectionConferences = "Conference contributions"
)

// SummaryTitle heads the summary table.
const SummaryTitle = "Summary"

// NoRecords is rendered in place of an empty section.
const NoRecords = "No records."

// PDFTitle is the document title stored in PDF metadata.
const PDFTitle = "Scientific CV"

// Document is the format-neutral CV content.
type Document struct {
	Name       string
	HeaderLine string
	LinksLine  string
	Summary    []Row
	Sections   []Section
}

// Row is one label/value line of the summary table.
type Row struct {
	Label string
	Value string
}

// Section is a titled, numbered list of entries.
type Section struct {
	Title string
	Items []string
}

// Build assembles the CV from the profile, the computed summary and the
// records in CSV order.
func Build(p *profile.Profile, s *summary.Summary, records []publication.Record) *Document {
	doc := &Document{
		Name:       p.DisplayName(),
		HeaderLine: p.HeaderLine(),
		LinksLine:  p.LinksLine(),
		Summary:    SummaryRows(s),
	}

	doc.Sections = []Section{
		publicationSection(SectionListA, publication.Filter(records, publication.Record.IsListA)),
		publicationSection(SectionListB, publication.Filter(records, publication.Record.IsCategoryB)),
		publicationSection(SectionChapters, publication.Filter(records, publication.Record.IsBookChapter)),
		conferenceSection(publication.Filter(records, publication.Record.IsConference)),
	}
	return doc
}

// SummaryRows returns the label/value pairs shown in the CV summary.
func SummaryRows(s *summary.Summary) []Row {
	t := s.Totals
	m := s.ScholarMetrics
	return []Row{
		{"MNiSW points (computed)", t.MNiSWPoints.String()},
		{"Sum of journal impact factors (computed)", t.SumImpactFactor.String()},
		{"Publications (List A)", strconv.Itoa(t.PublicationsListA)},
		{"Other publications (List B)", strconv.Itoa(t.PublicationsListB)},
		{"Book chapters", strconv.Itoa(t.BookChapters)},
		{"Conference contributions (total)", strconv.Itoa(t.ConferenceContributionsTotal)},
		{"Google Scholar citations", m.CitationsAll.String()},
		{"Google Scholar h-index", m.HIndexAll.String()},
		{"Google Scholar last updated", m.LastUpdated},
	}
}

func publicationSection(title string, records []publication.Record) Section {
	sec := Section{Title: title}
	for i, r := range publication.SortByYear(records) {
		sec.Items = append(sec.Items, numbered(i, r.Citation+publicationExtras(r)))
	}
	return sec
}

// publicationExtras renders " (MNiSW: p; IF: f; DOI: d)" with only the
// present parts, or "" when none are.
func publicationExtras(r publication.Record) string {
	var extras []string
	if r.Points != "" {
		extras = append(extras, "MNiSW: "+r.Points)
	}
	if r.ImpactFactor != "" {
		extras = append(extras, "IF: "+r.ImpactFactor)
	}
	if r.DOI != "" {
		extras = append(extras, "DOI: "+r.DOI)
	}
	if len(extras) == 0 {
		return ""
	}
	return " (" + strings.Join(extras, "; ") + ")"
}

func conferenceSection(records []publication.Record) Section {
	sec := Section{Title: SectionConferences}
	for i, r := range publication.SortConferences(records) {
		tail := publication.JoinNonEmpty(" · ",
			r.Subtype,
			publication.FormatDateRange(r.StartDate, r.EndDate),
			r.Location(),
			r.Award,
		)
		if tail != "" {
			tail = " — " + tail
		}
		sec.Items = append(sec.Items, numbered(i, r.Citation+tail))
	}
	return sec
}

func numbered(i int, text string) string {
	return strconv.Itoa(i+1) + ". " + text
}
