// Package summary computes the aggregate statistics written to
// data/summary.json and shown at the top of the CV.
package summary

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/dtobolski/sitecv/internal/publication"
	"github.com/dtobolski/sitecv/internal/scholar"
)

// Summary is the content of data/summary.json.
type Summary struct {
	ComputedFrom   string         `json:"computed_from"`
	GeneratedOn    string         `json:"generated_on"`
	Totals         Totals         `json:"totals"`
	ScholarMetrics ScholarMetrics `json:"scholar_metrics"`
	YearCounts     YearCounts     `json:"year_counts"`
}

// Totals holds the computed sums and category counts.
type Totals struct {
	MNiSWPoints                  Number  `json:"mnicsw_points"`
	SumImpactFactor              Rounded `json:"sum_impact_factor"`
	RecordsTotal                 int     `json:"records_total"`
	PublicationsListA            int     `json:"publications_list_a"`
	PublicationsListB            int     `json:"publications_list_b"`
	BookChapters                 int     `json:"book_chapters"`
	ConferenceContributionsTotal int     `json:"conference_contributions_total"`
	ConferenceOralPresentations  int     `json:"conference_oral_presentations"`
	ConferencePosters            int     `json:"conference_posters"`
	ConferenceTypeUnspecified    int     `json:"conference_type_unspecified"`
}

// ScholarMetrics is the subset of metrics.json surfaced on the site.
type ScholarMetrics struct {
	CitationsAll scholar.Stat `json:"citations_all"`
	HIndexAll    scholar.Stat `json:"h_index_all"`
	I10IndexAll  scholar.Stat `json:"i10_index_all"`
	LastUpdated  string       `json:"last_updated"`
	ProfileURL   string       `json:"profile_url"`
}

// Compute aggregates records. source is the CSV path recorded in
// computed_from; metrics may be nil.
func Compute(records []publication.Record, metrics *scholar.Metrics, source string, now time.Time) *Summary {
	var points, impact float64
	for _, r := range records {
		if r.PointsValue != nil {
			points += *r.PointsValue
		}
		if r.IFValue != nil {
			impact += *r.IFValue
		}
	}

	conferences := publication.Count(records, publication.Record.IsConference)
	oral := publication.Count(records, publication.Record.IsOral)
	poster := publication.Count(records, publication.Record.IsPoster)
	unspecified := publication.Count(records, func(r publication.Record) bool {
		return r.IsConference() && !r.IsOral() && !r.IsPoster()
	})

	s := &Summary{
		ComputedFrom: source,
		GeneratedOn:  now.Format(publication.DateLayout),
		Totals: Totals{
			MNiSWPoints:                  Number(points),
			SumImpactFactor:              Rounded(round3(impact)),
			RecordsTotal:                 len(records),
			PublicationsListA:            publication.Count(records, publication.Record.IsListA),
			PublicationsListB:            publication.Count(records, publication.Record.IsListB),
			BookChapters:                 publication.Count(records, publication.Record.IsBookChapter),
			ConferenceContributionsTotal: conferences,
			ConferenceOralPresentations:  oral,
			ConferencePosters:            poster,
			ConferenceTypeUnspecified:    unspecified,
		},
		YearCounts: CountByYear(records),
	}

	if metrics != nil {
		s.ScholarMetrics = ScholarMetrics{
			CitationsAll: metrics.CitationsAll,
			HIndexAll:    metrics.HIndexAll,
			I10IndexAll:  metrics.I10IndexAll,
			LastUpdated:  metrics.LastUpdated,
			ProfileURL:   metrics.ProfileURL,
		}
	}

	return s
}

// round3 rounds through the decimal text so halfway values that are not
// exactly representable (1.0005) land where their binary value does.
func round3(x float64) float64 {
	v, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 3, 64), 64)
	if err != nil {
		return x
	}
	return v
}

// YearCount is the number of records in one year.
type YearCount struct {
	Year  int
	Count int
}

// YearCounts is ordered by descending year and serializes as a JSON object
// keyed by the year string in that order.
type YearCounts []YearCount

// CountByYear counts records per parsed year. Records without a year are
// skipped.
func CountByYear(records []publication.Record) YearCounts {
	counts := make(map[int]int)
	for _, r := range records {
		if r.YearValue != nil {
			counts[*r.YearValue]++
		}
	}

	out := make(YearCounts, 0, len(counts))
	for y, n := range counts {
		out = append(out, YearCount{Year: y, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year > out[j].Year })
	return out
}

// MarshalJSON writes {"2024": 3, "2023": 5, ...}.
func (yc YearCounts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range yc {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(strconv.Itoa(c.Year)))
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(c.Count))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the object form back, ordering by descending year.
func (yc *YearCounts) UnmarshalJSON(data []byte) error {
	var m map[string]int
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	out := make(YearCounts, 0, len(m))
	for k, v := range m {
		y, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		out = append(out, YearCount{Year: y, Count: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year > out[j].Year })
	*yc = out
	return nil
}

// Number is a float total written as an integer when it has no fractional
// part.
type Number float64

// MarshalJSON writes integral values without a decimal point.
func (n Number) MarshalJSON() ([]byte, error) {
	return []byte(n.String()), nil
}

func (n Number) String() string {
	f := float64(n)
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Rounded is a float that always carries a decimal point ("12.0", "3.456").
type Rounded float64

// MarshalJSON writes the value with at least one decimal digit.
func (r Rounded) MarshalJSON() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r Rounded) String() string {
	s := strconv.FormatFloat(float64(r), 'f', -1, 64)
	if !bytes.ContainsAny([]byte(s), ".eE") {
		s += ".0"
	}
	return s
}
