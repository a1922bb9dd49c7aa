package cv

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/dtobolski/sitecv/internal/profile"
	"github.com/dtobolski/sitecv/internal/publication"
	"github.com/dtobolski/sitecv/internal/scholar"
	"github.com/dtobolski/sitecv/internal/summary"
)

func testRecords() []publication.Record {
	fields := []publication.Fields{
		{RecordType: "article", Year: "2019", Category: "A", Citation: "Old A paper.", Points: "100", ImpactFactor: "4.2", DOI: "10.1000/old"},
		{RecordType: "article", Year: "2023", Category: "a", Citation: "New A paper.", Points: "140"},
		{RecordType: "article", Year: "2021", Category: "B", Citation: "B paper.", DOI: "10.1000/b"},
		{RecordType: "book_chapter", Year: "2020", Category: "Book chapter", Citation: "A chapter.", Points: "20"},
		{RecordType: "conference_contribution", Year: "2022", Subtype: "oral", StartDate: "12.05.2022", EndDate: "14.05.2022", City: "Kraków", Country: "Poland", Award: "Best talk", Citation: "Talk."},
		{Category: "conference", Year: "2023", StartDate: "01.03.2023", EndDate: "01.03.2023", Citation: "Poster."},
		{Category: "Conference", Year: "2018", Citation: "Undated."},
	}
	out := make([]publication.Record, len(fields))
	for i, f := range fields {
		out[i] = publication.New(f)
	}
	return out
}

func testProfile() *profile.Profile {
	return &profile.Profile{
		Name:        "Jan Kowalski",
		Role:        "Adiunkt",
		Affiliation: "Wrocław University",
		Email:       "jan@example.org",
		Links:       profile.Links{{Label: "ORCID", URL: "https://orcid.org/0000"}},
	}
}

func TestBuild(t *testing.T) {
	records := testRecords()
	metrics := &scholar.Metrics{CitationsAll: "120", HIndexAll: "6", LastUpdated: "02.01.2025"}
	s := summary.Compute(records, metrics, "data/publications.csv", time.Date(2025, 1, 9, 0, 0, 0, 0, time.UTC))

	doc := Build(testProfile(), s, records)

	if doc.Name != "Jan Kowalski" {
		t.Errorf("Name = %q", doc.Name)
	}
	if doc.HeaderLine != "Adiunkt · Wrocław University · jan@example.org" {
		t.Errorf("HeaderLine = %q", doc.HeaderLine)
	}
	if doc.LinksLine != "ORCID: https://orcid.org/0000" {
		t.Errorf("LinksLine = %q", doc.LinksLine)
	}

	wantSummary := []Row{
		{"MNiSW points (computed)", "260"},
		{"Sum of journal impact factors (computed)", "4.2"},
		{"Publications (List A)", "2"},
		{"Other publications (List B)", "2"},
		{"Book chapters", "1"},
		{"Conference contributions (total)", "3"},
		{"Google Scholar citations", "120"},
		{"Google Scholar h-index", "6"},
		{"Google Scholar last updated", "02.01.2025"},
	}
	if diff := cmp.Diff(wantSummary, doc.Summary); diff != "" {
		t.Errorf("Summary mismatch (-want +got):\n%s", diff)
	}

	wantSections := []Section{
		{Title: SectionListA, Items: []string{
			"1. New A paper. (MNiSW: 140)",
			"2. Old A paper. (MNiSW: 100; IF: 4.2; DOI: 10.1000/old)",
		}},
		{Title: SectionListB, Items: []string{
			"1. B paper. (DOI: 10.1000/b)",
		}},
		{Title: SectionChapters, Items: []string{
			"1. A chapter. (MNiSW: 20)",
		}},
		{Title: SectionConferences, Items: []string{
			"1. Poster. — 01.03.2023",
			"2. Talk. — oral · 12.05.2022–14.05.2022 · Kraków, Poland · Best talk",
			"3. Undated.",
		}},
	}
	if diff := cmp.Diff(wantSections, doc.Sections); diff != "" {
		t.Errorf("Sections mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_EmptySections(t *testing.T) {
	s := summary.Compute(nil, nil, "x.csv", time.Now())
	doc := Build(&profile.Profile{}, s, nil)

	if doc.Name != profile.DefaultName {
		t.Errorf("Name = %q, want %q", doc.Name, profile.DefaultName)
	}
	if len(doc.Sections) != 4 {
		t.Fatalf("len(Sections) = %d, want 4", len(doc.Sections))
	}
	for _, sec := range doc.Sections {
		if len(sec.Items) != 0 {
			t.Errorf("section %q has %d items, want 0", sec.Title, len(sec.Items))
		}
	}
	if got := doc.Summary[6].Value; got != "" {
		t.Errorf("citations without metrics = %q, want empty", got)
	}
}
