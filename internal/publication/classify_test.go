package publication

import "testing"

func TestClassification(t *testing.T) {
	tests := []struct {
		name       string
		fields     Fields
		listA      bool
		listB      bool
		chapter    bool
		conference bool
		oral       bool
		poster     bool
	}{
		{
			name:   "list A lowercase",
			fields: Fields{RecordType: "article", Category: "a"},
			listA:  true,
		},
		{
			name:   "list B",
			fields: Fields{RecordType: "article", Category: "B"},
			listB:  true,
		},
		{
			name:    "chapter by record type",
			fields:  Fields{RecordType: "book_chapter", Category: ""},
			listB:   true,
			chapter: true,
		},
		{
			name:    "chapter by category text",
			fields:  Fields{Category: "Book chapter (monograph)"},
			listB:   true,
			chapter: true,
		},
		{
			name:       "oral conference by record type",
			fields:     Fields{RecordType: "conference_contribution", Subtype: "Oral presentation"},
			conference: true,
			oral:       true,
		},
		{
			name:       "poster conference by category",
			fields:     Fields{Category: "Conference", Subtype: "poster"},
			conference: true,
			poster:     true,
		},
		{
			name:       "conference without subtype",
			fields:     Fields{Category: "conference"},
			conference: true,
		},
		{
			name:   "poster subtype outside conference",
			fields: Fields{RecordType: "article", Subtype: "poster"},
		},
		{
			name:   "category with padding is not A",
			fields: Fields{Category: "A "},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(tt.fields)
			if got := r.IsListA(); got != tt.listA {
				t.Errorf("IsListA() = %v, want %v", got, tt.listA)
			}
			if got := r.IsListB(); got != tt.listB {
				t.Errorf("IsListB() = %v, want %v", got, tt.listB)
			}
			if got := r.IsBookChapter(); got != tt.chapter {
				t.Errorf("IsBookChapter() = %v, want %v", got, tt.chapter)
			}
			if got := r.IsConference(); got != tt.conference {
				t.Errorf("IsConference() = %v, want %v", got, tt.conference)
			}
			if got := r.IsOral(); got != tt.oral {
				t.Errorf("IsOral() = %v, want %v", got, tt.oral)
			}
			if got := r.IsPoster(); got != tt.poster {
				t.Errorf("IsPoster() = %v, want %v", got, tt.poster)
			}
		})
	}
}

func TestFilterAndCount(t *testing.T) {
	records := []Record{
		New(Fields{Category: "A", Citation: "one"}),
		New(Fields{Category: "B", Citation: "two"}),
		New(Fields{Category: "A", Citation: "three"}),
	}

	got := Filter(records, Record.IsListA)
	if len(got) != 2 {
		t.Fatalf("Filter() returned %d records, want 2", len(got))
	}
	if got[0].Citation != "one" || got[1].Citation != "three" {
		t.Errorf("Filter() order = [%s %s], want [one three]", got[0].Citation, got[1].Citation)
	}

	if n := Count(records, Record.IsCategoryB); n != 1 {
		t.Errorf("Count(IsCategoryB) = %d, want 1", n)
	}
}
