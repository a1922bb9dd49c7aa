// Package profile reads the site owner's profile (data/profile.json).
package profile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNotFound is returned when the profile file does not exist.
var ErrNotFound = errors.New("profile file not found")

// DefaultName is used when the profile has no name.
const DefaultName = "Name"

// Profile is the CV header information.
type Profile struct {
	Name        string `json:"name"`
	Role        string `json:"role"`
	Affiliation string `json:"affiliation"`
	Location    string `json:"location"`
	Email       string `json:"email"`
	Links       Links  `json:"links"`
}

// Link is one labelled URL from the profile.
type Link struct {
	Label string
	URL   string
}

// Links keeps profile links in file order.
type Links []Link

// UnmarshalJSON decodes a JSON object preserving key order. Non-string
// values are kept in their JSON text form.
func (l *Links) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		*l = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("links must be a JSON object")
	}

	var out Links
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("link %q: %w", key, err)
		}

		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			value = string(raw)
		}
		out = append(out, Link{Label: key, URL: value})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	*l = out
	return nil
}

// MarshalJSON writes links back as an object in the same order.
func (l Links) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, link := range l {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(link.Label)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(link.URL)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Load reads a profile from path.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading profile: %w", err)
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing profile %s: %w", path, err)
	}
	return &p, nil
}

// DisplayName returns the name or DefaultName when empty.
func (p *Profile) DisplayName() string {
	if p.Name == "" {
		return DefaultName
	}
	return p.Name
}

// HeaderLine joins role, affiliation, location and email with " · ".
func (p *Profile) HeaderLine() string {
	var parts []string
	for _, s := range []string{p.Role, p.Affiliation, p.Location, p.Email} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " · ")
}

// LinksLine renders links as "label: url" pairs joined with " · ".
func (p *Profile) LinksLine() string {
	parts := make([]string, len(p.Links))
	for i, l := range p.Links {
		parts[i] = l.Label + ": " + l.URL
	}
	return strings.Join(parts, " · ")
}
