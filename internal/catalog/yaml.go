package catalog

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// typeSpec is the YAML form of a document type. Regexes are strings and
// compiled on load, so the whole extraction table stays a versionable
// data file that can grow new document types without code changes.
type typeSpec struct {
	Name         string         `yaml:"name"`
	Description  string         `yaml:"description,omitempty"`
	Boundary     BoundaryPolicy `yaml:"boundary"`
	Shape        Shape          `yaml:"shape"`
	Patterns     []patternSpec  `yaml:"patterns"`
	Corrections  []ruleSpec     `yaml:"corrections,omitempty"`
	Fingerprints []Fingerprint  `yaml:"fingerprints,omitempty"`
	Naming       NameOrder      `yaml:"naming,omitempty"`
}

type patternSpec struct {
	ID          string `yaml:"id"`
	Regex       string `yaml:"regex"`
	PageOffsets []int  `yaml:"page_offsets,omitempty"`
	Priority    int    `yaml:"priority"`
	MinLength   int    `yaml:"min_length,omitempty"`
	MaxLength   int    `yaml:"max_length,omitempty"`
}

type ruleSpec struct {
	ID       string `yaml:"id"`
	Position int    `yaml:"position"`
	Find     string `yaml:"find"`
	Rewrite  string `yaml:"rewrite"`
}

type catalogFile struct {
	Types []typeSpec `yaml:"types"`
}

// LoadFile reads a YAML catalog file and registers its types on top of c,
// replacing built-ins with the same name
func (c *Catalog) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read catalog: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse catalog: %w", err)
	}

	for _, spec := range file.Types {
		t, err := spec.compile()
		if err != nil {
			return fmt.Errorf("catalog type %q: %w", spec.Name, err)
		}
		c.Register(t)
	}
	return nil
}

// compile turns a YAML type spec into a runtime DocumentType
func (s typeSpec) compile() (*DocumentType, error) {
	if s.Name == "" {
		return nil, fmt.Errorf("missing name")
	}

	t := &DocumentType{
		Name:         s.Name,
		Description:  s.Description,
		Boundary:     s.Boundary,
		Shape:        s.Shape,
		Fingerprints: s.Fingerprints,
		Naming:       s.Naming,
	}
	if t.Naming == "" {
		t.Naming = TypeFirst
	}

	for _, ps := range s.Patterns {
		re, err := regexp.Compile(ps.Regex)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", ps.ID, err)
		}
		if re.NumSubexp() < 1 {
			return nil, fmt.Errorf("pattern %q: regex needs a capture group", ps.ID)
		}
		t.Patterns = append(t.Patterns, Pattern{
			ID:          ps.ID,
			Regex:       re,
			PageOffsets: ps.PageOffsets,
			Priority:    ps.Priority,
			MinLength:   ps.MinLength,
			MaxLength:   ps.MaxLength,
		})
	}

	for _, rs := range s.Corrections {
		re, err := regexp.Compile(rs.Find)
		if err != nil {
			return nil, fmt.Errorf("correction %q: %w", rs.ID, err)
		}
		t.Corrections = append(t.Corrections, CorrectionRule{
			ID:       rs.ID,
			Position: rs.Position,
			Find:     re,
			Rewrite:  rs.Rewrite,
		})
	}

	return t, nil
}
