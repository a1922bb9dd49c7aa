package publication

import "strings"

// IsListA reports whether the record is a List A journal publication.
func (r Record) IsListA() bool {
	return strings.ToUpper(r.Category) == "A"
}

// IsCategoryB reports whether the category column is exactly "B".
func (r Record) IsCategoryB() bool {
	return strings.ToUpper(r.Category) == "B"
}

// IsBookChapter reports whether the record is a book chapter, either by
// record type or by a category mentioning "book chapter".
func (r Record) IsBookChapter() bool {
	return r.RecordType == TypeBookChapter ||
		strings.Contains(strings.ToLower(r.Category), "book chapter")
}

// IsListB reports whether the record counts toward the List B total.
// Book chapters are counted as List B.
func (r Record) IsListB() bool {
	return r.IsCategoryB() || r.IsBookChapter()
}

// IsConference reports whether the record is a conference contribution.
func (r Record) IsConference() bool {
	return r.RecordType == TypeConference ||
		strings.ToLower(r.Category) == "conference"
}

// IsOral reports whether the record is an oral conference presentation.
func (r Record) IsOral() bool {
	return r.IsConference() && strings.Contains(strings.ToLower(r.Subtype), "oral")
}

// IsPoster reports whether the record is a conference poster.
func (r Record) IsPoster() bool {
	return r.IsConference() && strings.Contains(strings.ToLower(r.Subtype), "poster")
}

// Filter returns the records matching pred, preserving order.
func Filter(records []Record, pred func(Record) bool) []Record {
	var out []Record
	for _, r := range records {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}

// Count returns the number of records matching pred.
func Count(records []Record, pred func(Record) bool) int {
	n := 0
	for _, r := range records {
		if pred(r) {
			n++
		}
	}
	return n
}
