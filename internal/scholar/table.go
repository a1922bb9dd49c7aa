package scholar

import "encoding/json"

// CitedByTable holds the parsed cited_by.table rows of an author response.
type CitedByTable struct {
	CitationsAll   Stat
	CitationsSince Stat
	HIndexAll      Stat
	HIndexSince    Stat
	I10IndexAll    Stat
	I10IndexSince  Stat
}

// Row keys seen in the wild; Scholar localises some of them (French
// "indice_h" etc.) depending on the hl parameter.
var (
	hIndexKeys   = []string{"h_index", "indice_h"}
	i10IndexKeys = []string{"i10_index", "indice_i10"}
	sinceKeys    = []string{"since_2016", "depuis_2016", "since_2017", "since_2018"}
)

// ParseCitedByTable extracts the metric rows from a raw cited_by object.
// Malformed or missing parts leave the corresponding values empty.
func ParseCitedByTable(citedBy json.RawMessage) CitedByTable {
	var out CitedByTable
	if len(citedBy) == 0 {
		return out
	}

	var wrapper struct {
		Table []json.RawMessage `json:"table"`
	}
	if err := json.Unmarshal(citedBy, &wrapper); err != nil {
		return out
	}

	for _, rawRow := range wrapper.Table {
		var row map[string]json.RawMessage
		if err := json.Unmarshal(rawRow, &row); err != nil {
			continue
		}

		if cell, ok := objectAt(row, "citations"); ok {
			out.CitationsAll, out.CitationsSince = allAndSince(cell)
			continue
		}

		for _, key := range hIndexKeys {
			if cell, ok := objectAt(row, key); ok {
				out.HIndexAll, out.HIndexSince = allAndSince(cell)
				break
			}
		}

		for _, key := range i10IndexKeys {
			if cell, ok := objectAt(row, key); ok {
				out.I10IndexAll, out.I10IndexSince = allAndSince(cell)
				break
			}
		}
	}

	return out
}

// objectAt returns row[key] decoded as a JSON object.
func objectAt(row map[string]json.RawMessage, key string) (map[string]json.RawMessage, bool) {
	raw, ok := row[key]
	if !ok {
		return nil, false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// allAndSince reads the "all" value and the first available since-year value.
func allAndSince(cell map[string]json.RawMessage) (all, since Stat) {
	all = statAt(cell, "all")
	for _, key := range sinceKeys {
		if _, ok := cell[key]; ok {
			since = statAt(cell, key)
			break
		}
	}
	return all, since
}

func statAt(cell map[string]json.RawMessage, key string) Stat {
	raw, ok := cell[key]
	if !ok {
		return ""
	}
	var s Stat
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
