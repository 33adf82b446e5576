package jiratest

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

// Scenario describes what a fixture instance serves. Scenarios live as YAML
// files next to the JSON captures they reference.
type Scenario struct {
	DataDir string `yaml:"dataDir,omitempty"` // issue payload files, <KEY>.json; relative to the scenario file

	// Search is the result set of the search route, in ranking order, as
	// file names under DataDir. Generate appends synthetic issues cloned
	// from a base capture.
	Search   []string  `yaml:"search,omitempty"`
	Generate *Generate `yaml:"generate,omitempty"`

	DefaultLimit int  `yaml:"defaultLimit,omitempty"` // page size when maxResults is absent (default 50)
	Total        *int `yaml:"total,omitempty"`        // override the reported total; the real count otherwise

	// Credentials the instance insists on. Empty means anonymous is fine.
	Bearer        string `yaml:"bearer,omitempty"`
	BasicUser     string `yaml:"basicUser,omitempty"`
	BasicPassword string `yaml:"basicPassword,omitempty"`

	Failures []Failure `yaml:"failures,omitempty"`
}

// Generate clones a captured issue into a numbered series: keys GEN-1..GEN-n.
type Generate struct {
	From  string `yaml:"from"`
	Count int    `yaml:"count"`
}

// Failure makes the nth search request (1-based) answer with an HTTP status
// instead of a page.
type Failure struct {
	Request int `yaml:"request"`
	Status  int `yaml:"status"`
}

// LoadScenario reads a YAML scenario file. Unknown keys are a test bug and
// fail immediately.
func LoadScenario(t *testing.T, path string) Scenario {
	t.Helper()

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read scenario: %v", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	var sc Scenario
	if err := dec.Decode(&sc); err != nil {
		t.Fatalf("decode scenario %s: %v", path, err)
	}

	sc.applyDefaults(filepath.Dir(path))
	return sc
}

// applyDefaults fills the parts a scenario may omit. base anchors a relative
// DataDir; absolute stays absolute.
func (sc *Scenario) applyDefaults(base string) {
	if sc.DataDir == "" {
		sc.DataDir = "."
	}
	if !filepath.IsAbs(sc.DataDir) {
		sc.DataDir, _ = filepath.Abs(filepath.Join(base, sc.DataDir))
	}
	if sc.DefaultLimit <= 0 {
		sc.DefaultLimit = 50
	}
}
