// Package cases loads eval case descriptors from a case file. The canonical
// format is JSON (cases.json); YAML is accepted by extension for suites
// authored alongside other YAML config.
package cases

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Case describes a single eval scenario: a fixture presented to the agent
// and the expectations to grade its output against.
type Case struct {
	Fixture     string   `json:"fixture" yaml:"fixture"`
	ExpectClean bool     `json:"expect_clean" yaml:"expect_clean"`
	Severity    string   `json:"severity,omitempty" yaml:"severity,omitempty"`
	Keywords    []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

// Load reads an ordered list of cases from the file at path. JSON input is
// validated against the case schema before decoding; YAML input (.yaml/.yml)
// is decoded directly. Case order in the file is preserved.
func Load(path string) ([]Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading case file %s: %w", path, err)
	}

	var cs []Case
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cs); err != nil {
			return nil, fmt.Errorf("parsing case file %s: %w", path, err)
		}
	default:
		if err := ValidateSchema(data); err != nil {
			return nil, fmt.Errorf("case file %s: %w", path, err)
		}
		if err := json.Unmarshal(data, &cs); err != nil {
			return nil, fmt.Errorf("parsing case file %s: %w", path, err)
		}
	}

	for i, c := range cs {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("case file %s: case %d: %w", path, i, err)
		}
	}

	return cs, nil
}

// Validate checks the case's internal consistency. A finding case must name
// the severity and keywords to look for; a clean case needs neither.
func (c Case) Validate() error {
	var errs []error

	if c.Fixture == "" {
		errs = append(errs, errors.New("fixture is required"))
	}
	if !c.ExpectClean {
		if c.Severity == "" {
			errs = append(errs, fmt.Errorf("fixture %q: severity is required unless expect_clean is true", c.Fixture))
		}
		if c.Keywords == nil {
			errs = append(errs, fmt.Errorf("fixture %q: keywords are required unless expect_clean is true", c.Fixture))
		}
	}

	return errors.Join(errs...)
}

// Mode returns a short human label for the grading strategy the case selects.
func (c Case) Mode() string {
	if c.ExpectClean {
		return "clean"
	}
	return "finding"
}
