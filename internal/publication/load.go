package publication

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// ErrNotFound is returned when the publications CSV does not exist.
var ErrNotFound = errors.New("publications file not found")

// ErrMalformed is returned when the CSV cannot be decoded or parsed in any
// supported encoding.
var ErrMalformed = errors.New("malformed publications CSV")

// utf8BOM is stripped from the start of UTF-8 input.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Candidate delimiters in preference order when counts tie.
var delimiters = []rune{',', ';', '\t', '|'}

// textEncoding is one candidate encoding of the CSV bytes.
type textEncoding struct {
	name   string
	decode func([]byte) (string, bool)
}

// Encodings tried in order. Spreadsheet exports of Polish text arrive as
// UTF-8 (often with a BOM) or in one of the Central European code pages.
var textEncodings = []textEncoding{
	{"utf-8-sig", decodeUTF8SIG},
	{"utf-8", decodeUTF8},
	{"windows-1250", decodeCharmap(charmap.Windows1250, true)},
	{"iso-8859-2", decodeCharmap(charmap.ISO8859_2, false)},
	{"latin1", decodeCharmap(charmap.ISO8859_1, false)},
}

func decodeUTF8SIG(data []byte) (string, bool) {
	if !bytes.HasPrefix(data, utf8BOM) {
		return "", false
	}
	return decodeUTF8(data[len(utf8BOM):])
}

func decodeUTF8(data []byte) (string, bool) {
	if !utf8.Valid(data) {
		return "", false
	}
	return string(data), true
}

// decodeCharmap decodes single-byte text. When strict is set, bytes the code
// page leaves undefined make the decode fail instead of producing U+FFFD.
func decodeCharmap(cm *charmap.Charmap, strict bool) func([]byte) (string, bool) {
	return func(data []byte) (string, bool) {
		out, err := cm.NewDecoder().Bytes(data)
		if err != nil {
			return "", false
		}
		if strict && bytes.ContainsRune(out, utf8.RuneError) {
			return "", false
		}
		return string(out), true
	}
}

// LoadResult describes how a CSV file was read.
type LoadResult struct {
	Records   []Record
	Encoding  string
	Delimiter rune
	Header    []string
}

// Load reads publication records from a CSV file.
func Load(path string) ([]Record, error) {
	res, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return res.Records, nil
}

// LoadFile reads publication records from a CSV file and reports the
// detected encoding and delimiter.
func LoadFile(path string) (*LoadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading publications: %w", err)
	}
	return Parse(data)
}

// Parse decodes CSV bytes, trying each supported encoding in turn until one
// both decodes and parses.
func Parse(data []byte) (*LoadResult, error) {
	var lastErr error
	for _, enc := range textEncodings {
		text, ok := enc.decode(data)
		if !ok {
			lastErr = fmt.Errorf("decoding as %s failed", enc.name)
			continue
		}
		res, err := parseText(text)
		if err != nil {
			lastErr = fmt.Errorf("parsing as %s: %w", enc.name, err)
			continue
		}
		res.Encoding = enc.name
		return res, nil
	}
	return nil, fmt.Errorf("%w: %w", ErrMalformed, lastErr)
}

func parseText(text string) (*LoadResult, error) {
	delim := SniffDelimiter(text)

	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, errors.New("empty CSV file")
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	var records []Record
	line := 1
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		cells := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(row) {
				cells[name] = row[i]
			}
		}
		records = append(records, FromRow(cells))
	}

	return &LoadResult{
		Records:   records,
		Delimiter: delim,
		Header:    header,
	}, nil
}

// SniffDelimiter picks the delimiter that occurs most often outside quotes in
// the header line. Ties resolve in the order comma, semicolon, tab, pipe.
func SniffDelimiter(text string) rune {
	headerLine := text
	if i := strings.IndexAny(text, "\r\n"); i >= 0 {
		headerLine = text[:i]
	}

	counts := make(map[rune]int, len(delimiters))
	inQuotes := false
	for _, c := range headerLine {
		if c == '"' {
			inQuotes = !inQuotes
			continue
		}
		if !inQuotes {
			counts[c]++
		}
	}

	best := delimiters[0]
	for _, d := range delimiters[1:] {
		if counts[d] > counts[best] {
			best = d
		}
	}
	return best
}
