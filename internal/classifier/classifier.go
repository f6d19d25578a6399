// Package classifier maps free-text change requests to domain tags.
// Matching is deterministic, case-insensitive phrase containment over an
// immutable table loaded once at startup. There is no hidden state and no
// randomness: identical text always produces the identical tag set.
package classifier

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/harrison/steward/internal/models"
)

// ErrTable indicates a malformed domain tag table.
var ErrTable = errors.New("classifier: invalid domain table")

// DomainTag is one classification label with its match phrases and the
// roles it maps to.
type DomainTag struct {
	Label     string   `yaml:"label"`
	Phrases   []string `yaml:"phrases"`
	Primary   []string `yaml:"primary"`
	Secondary []string `yaml:"secondary"`
}

// PatternOverride is a coarser-grained, whole-phrase rule: when the
// pattern appears in the request, the full role bundle is pulled in
// regardless of keyword matches.
type PatternOverride struct {
	Pattern string   `yaml:"pattern"`
	Roles   []string `yaml:"roles"`
}

// Table is the immutable classification table: domain tags plus task
// pattern overrides.
type Table struct {
	tags      []DomainTag
	overrides []PatternOverride
}

type tableFile struct {
	Tags      []DomainTag       `yaml:"tags"`
	Overrides []PatternOverride `yaml:"overrides"`
}

// LoadFile reads and validates a domain table from a YAML file.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read domain table: %w", err)
	}
	return Load(data)
}

// Load parses and validates a domain table from YAML bytes.
func Load(data []byte) (*Table, error) {
	var file tableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTable, err)
	}

	seen := make(map[string]bool)
	for _, tag := range file.Tags {
		if tag.Label == "" {
			return nil, fmt.Errorf("%w: tag with empty label", ErrTable)
		}
		if seen[tag.Label] {
			return nil, fmt.Errorf("%w: duplicate tag %s", ErrTable, tag.Label)
		}
		seen[tag.Label] = true
		if len(tag.Phrases) == 0 {
			return nil, fmt.Errorf("%w: tag %s has no match phrases", ErrTable, tag.Label)
		}
		if len(tag.Primary) == 0 {
			return nil, fmt.Errorf("%w: tag %s maps to no primary role", ErrTable, tag.Label)
		}
	}

	for _, ov := range file.Overrides {
		if ov.Pattern == "" || len(ov.Roles) == 0 {
			return nil, fmt.Errorf("%w: override needs a pattern and at least one role", ErrTable)
		}
	}

	return &Table{tags: file.Tags, overrides: file.Overrides}, nil
}

// Classify matches the request text against every tag's phrases.
// Overlapping phrases for the same tag never double-count: tag presence
// is boolean, strength counts distinct phrases and is advisory only.
// Zero matches is a valid outcome, not an error.
func (t *Table) Classify(text string) []models.TagMatch {
	lowered := strings.ToLower(text)

	var matches []models.TagMatch
	for _, tag := range t.tags {
		strength := 0
		for _, phrase := range tag.Phrases {
			if strings.Contains(lowered, strings.ToLower(phrase)) {
				strength++
			}
		}
		if strength > 0 {
			matches = append(matches, models.TagMatch{Tag: tag.Label, Strength: strength})
		}
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Tag < matches[j].Tag })
	return matches
}

// MatchOverrides returns every task-pattern override whose whole phrase
// appears in the request text.
func (t *Table) MatchOverrides(text string) []PatternOverride {
	lowered := strings.ToLower(text)

	var matched []PatternOverride
	for _, ov := range t.overrides {
		if strings.Contains(lowered, strings.ToLower(ov.Pattern)) {
			matched = append(matched, ov)
		}
	}
	return matched
}

// Tag returns the tag definition for a label.
func (t *Table) Tag(label string) (DomainTag, bool) {
	for _, tag := range t.tags {
		if tag.Label == label {
			return tag, true
		}
	}
	return DomainTag{}, false
}

// Tags returns all tag definitions.
func (t *Table) Tags() []DomainTag {
	return t.tags
}
