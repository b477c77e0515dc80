package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/TFMV/cohortviz/models"
)

// Roster-level failures callers are expected to branch on.
var (
	ErrEmptyRoster       = errors.New("roster contains no records")
	ErrMissingName       = errors.New("roster record is missing the required name")
	ErrUnsupportedFormat = errors.New("unsupported roster format")
)

// YearLabel is an opaque graduation label. Rosters in the wild carry it both
// as a string ("2020", "Class of 2020") and as a bare number, so it accepts
// either and preserves the literal text.
type YearLabel string

// UnmarshalJSON accepts a JSON string, number, or null.
func (y *YearLabel) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*y = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*y = YearLabel(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("graduationYear must be a string or number: %w", err)
	}
	*y = YearLabel(n.String())
	return nil
}

// UnmarshalYAML accepts a YAML string or integer scalar.
func (y *YearLabel) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err == nil {
		*y = YearLabel(s)
		return nil
	}
	var n int
	if err := node.Decode(&n); err != nil {
		return fmt.Errorf("graduationYear must be a string or number: %w", err)
	}
	*y = YearLabel(strconv.Itoa(n))
	return nil
}

// PersonRecord is one raw roster entry. Only the name is required; absent
// optional fields stay as empty strings rather than being dropped.
type PersonRecord struct {
	Name           string    `json:"name" yaml:"name"`
	Website        string    `json:"website" yaml:"website"`
	LinkedIn       string    `json:"linkedIn" yaml:"linkedIn"`
	GitHub         string    `json:"gitHub" yaml:"gitHub"`
	GraduationYear YearLabel `json:"graduationYear" yaml:"graduationYear"`
	Email          string    `json:"professionalEmail" yaml:"professionalEmail"`
}

// Slugify derives a contributor identifier from a display name: lowercased,
// with whitespace runs collapsed to single hyphens.
func Slugify(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}

// Normalize turns raw records into contributors with unique slugs and stable
// ordinals. Records with colliding names get a numeric suffix in roster
// order: alice, alice-2, alice-3.
func Normalize(records []PersonRecord) ([]models.Contributor, error) {
	if len(records) == 0 {
		return nil, ErrEmptyRoster
	}

	out := make([]models.Contributor, 0, len(records))
	used := make(map[string]bool)
	for i, r := range records {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			return nil, fmt.Errorf("record %d: %w", i, ErrMissingName)
		}

		// Probe upward until the slug is free, so a literal "alice-2" in
		// the roster cannot collide with a disambiguated duplicate.
		base := Slugify(name)
		slug := base
		for n := 2; used[slug]; n++ {
			slug = fmt.Sprintf("%s-%d", base, n)
		}
		used[slug] = true

		c := models.NewContributor(slug, name, i)
		c.Website = r.Website
		c.LinkedIn = r.LinkedIn
		c.GitHub = r.GitHub
		c.Email = r.Email
		c.GraduationYear = string(r.GraduationYear)
		out = append(out, *c)
	}
	return out, nil
}

// rosterEnvelope is the wrapped document form: {"contributors": [...]}.
type rosterEnvelope struct {
	Contributors []PersonRecord `json:"contributors" yaml:"contributors"`
}

// DecodeJSON parses a roster document that is either a bare array of records
// or an envelope with a contributors key.
func DecodeJSON(data []byte) ([]PersonRecord, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var records []PersonRecord
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("error parsing JSON roster: %w", err)
		}
		return records, nil
	}

	var env rosterEnvelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("error parsing JSON roster: %w", err)
	}
	return env.Contributors, nil
}

// DecodeYAML parses a YAML roster in the same two shapes DecodeJSON accepts.
func DecodeYAML(data []byte) ([]PersonRecord, error) {
	var records []PersonRecord
	if err := yaml.Unmarshal(data, &records); err == nil {
		return records, nil
	}

	var env rosterEnvelope
	if err := yaml.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("error parsing YAML roster: %w", err)
	}
	return env.Contributors, nil
}
