package publication

import "sort"

// SortForExport returns a copy of records ordered for publications.json:
// descending by year (absent year as -1), then by conference start date
// (absent as the zero timestamp).
func SortForExport(records []Record) []Record {
	out := append([]Record(nil), records...)
	sort.SliceStable(out, func(i, j int) bool {
		yi, yj := yearOr(out[i], -1), yearOr(out[j], -1)
		if yi != yj {
			return yi > yj
		}
		return startOr0(out[i]) > startOr0(out[j])
	})
	return out
}

// SortByYear returns a copy of records in descending year order with records
// lacking a year last.
func SortByYear(records []Record) []Record {
	out := append([]Record(nil), records...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].YearValue, out[j].YearValue
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a > *b
		}
	})
	return out
}

// SortConferences returns a copy of records ordered for the CV conference
// section: descending by start date, then by year.
func SortConferences(records []Record) []Record {
	out := append([]Record(nil), records...)
	sort.SliceStable(out, func(i, j int) bool {
		si, sj := startOr0(out[i]), startOr0(out[j])
		if si != sj {
			return si > sj
		}
		return yearOr(out[i], 0) > yearOr(out[j], 0)
	})
	return out
}

func yearOr(r Record, def int) int {
	if r.YearValue == nil {
		return def
	}
	return *r.YearValue
}

func startOr0(r Record) int64 {
	if r.Start == nil {
		return 0
	}
	return r.Start.Unix()
}
