// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/docpdf/internal/fsutil"
	"github.com/pdiddy/docpdf/pkg/types"
)

// Summary is the outcome of one batch.
type Summary struct {
	BatchID  string                   `json:"batch_id" yaml:"batch_id"`
	Started  time.Time                `json:"started" yaml:"started"`
	Finished time.Time                `json:"finished" yaml:"finished"`
	Results  []types.ConversionResult `json:"results" yaml:"results"`
}

// Succeeded returns the number of jobs that produced an output.
func (s Summary) Succeeded() int {
	n := 0
	for _, r := range s.Results {
		if r.Succeeded() {
			n++
		}
	}
	return n
}

// Failed returns the number of failed jobs.
func (s Summary) Failed() int {
	return len(s.Results) - s.Succeeded()
}

// HasFailures reports whether any job failed.
func (s Summary) HasFailures() bool {
	return s.Failed() > 0
}

// Failures returns the failed results in input order.
func (s Summary) Failures() []types.ConversionResult {
	var out []types.ConversionResult
	for _, r := range s.Results {
		if !r.Succeeded() {
			out = append(out, r)
		}
	}
	return out
}

// report is the on-disk layout written by WriteReport.
type report struct {
	Summary   `yaml:",inline"`
	Total     int `yaml:"total"`
	Succeeded int `yaml:"succeeded"`
	Failed    int `yaml:"failed"`
}

// WriteReport writes s as YAML to path, creating parent directories.
func WriteReport(path string, s Summary) error {
	data, err := yaml.Marshal(report{
		Summary:   s,
		Total:     len(s.Results),
		Succeeded: s.Succeeded(),
		Failed:    s.Failed(),
	})
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}
	if err := fsutil.WriteFile(path, data); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
