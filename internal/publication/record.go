// Package publication defines the publication record read from the site CSV
// and the helpers that classify, sort and format it.
package publication

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Date formats. Parsing uses the unpadded layouts so that "1.2.2020" and
// "01.02.2020" are both accepted.
const (
	DateLayout    = "02.01.2006"
	ISODateLayout = "2006-01-02"

	parseDateLayout    = "2.1.2006"
	parseISODateLayout = "2006-1-2"
)

// Columns lists the user-facing CSV columns in export order.
var Columns = []string{
	"record_type",
	"year",
	"category",
	"subtype",
	"citation",
	"doi",
	"mnicsw_points",
	"impact_factor",
	"start_date",
	"end_date",
	"city",
	"country",
	"award",
}

// Record types recognised in the record_type column.
const (
	TypeBookChapter = "book_chapter"
	TypeConference  = "conference_contribution"
)

// Fields holds the raw string columns of a CSV row. The JSON field order
// matches Columns and is the export format of publications.json.
type Fields struct {
	RecordType   string `json:"record_type"`
	Year         string `json:"year"`
	Category     string `json:"category"`
	Subtype      string `json:"subtype"`
	Citation     string `json:"citation"`
	DOI          string `json:"doi"`
	Points       string `json:"mnicsw_points"`
	ImpactFactor string `json:"impact_factor"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	City         string `json:"city"`
	Country      string `json:"country"`
	Award        string `json:"award"`
}

// Record is a publication row with its numeric and date columns parsed.
// A nil parsed field means the raw value was empty or did not parse.
type Record struct {
	Fields

	YearValue   *int
	PointsValue *float64
	IFValue     *float64
	Start       *time.Time
	End         *time.Time
}

// New parses the typed columns of raw fields.
func New(f Fields) Record {
	return Record{
		Fields:      f,
		YearValue:   ParseInt(f.Year),
		PointsValue: ParseFloat(f.Points),
		IFValue:     ParseFloat(f.ImpactFactor),
		Start:       ParseDate(f.StartDate),
		End:         ParseDate(f.EndDate),
	}
}

// FromRow builds a record from a header-keyed row. Missing keys read as "".
func FromRow(row map[string]string) Record {
	return New(Fields{
		RecordType:   row["record_type"],
		Year:         row["year"],
		Category:     row["category"],
		Subtype:      row["subtype"],
		Citation:     row["citation"],
		DOI:          row["doi"],
		Points:       row["mnicsw_points"],
		ImpactFactor: row["impact_factor"],
		StartDate:    row["start_date"],
		EndDate:      row["end_date"],
		City:         row["city"],
		Country:      row["country"],
		Award:        row["award"],
	})
}

// ParseFloat parses a numeric cell. Empty, unparsable and non-finite values
// yield nil.
func ParseFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// ParseInt parses an integer cell, accepting float notation ("2021.0") and
// truncating toward zero.
func ParseInt(s string) *int {
	f := ParseFloat(s)
	if f == nil {
		return nil
	}
	if math.Abs(*f) > math.MaxInt32 {
		return nil
	}
	v := int(math.Trunc(*f))
	return &v
}

// ParseDate parses DD.MM.YYYY or YYYY-MM-DD. Anything else yields nil.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range []string{parseDateLayout, parseISODateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// FormatDateRange renders a conference date range. Unparsable dates are
// dropped; an unparsable start yields "".
func FormatDateRange(start, end string) string {
	s := ParseDate(start)
	e := ParseDate(end)
	switch {
	case s != nil && e != nil:
		if s.Equal(*e) {
			return s.Format(DateLayout)
		}
		return s.Format(DateLayout) + "–" + e.Format(DateLayout)
	case s != nil:
		return s.Format(DateLayout)
	default:
		return ""
	}
}

// Location joins city and country, skipping empty parts.
func (r Record) Location() string {
	return JoinNonEmpty(", ", r.City, r.Country)
}

// JoinNonEmpty joins the non-empty parts with sep.
func JoinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
