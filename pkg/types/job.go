// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strconv"
	"strings"
)

// PDFAProfile selects the archival conformance level of the output.
type PDFAProfile string

const (
	ProfileNone PDFAProfile = "Standard"
	ProfileA1b  PDFAProfile = "PDF/A-1b"
	ProfileA2b  PDFAProfile = "PDF/A-2b"
	ProfileA3b  PDFAProfile = "PDF/A-3b"
)

// Archival reports whether the profile requests PDF/A normalization.
func (p PDFAProfile) Archival() bool {
	return p != ProfileNone && p != ""
}

// ParseProfile maps a user-supplied selector to a PDFAProfile. It accepts the
// display names ("Standard", "PDF/A-2b"), the short forms ("a2b", "2") and
// "Standard-PDF", all case-insensitively. An empty string is ProfileNone.
func ParseProfile(s string) (PDFAProfile, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "standard", "standard-pdf":
		return ProfileNone, nil
	case "pdf/a-1b", "a1b", "1":
		return ProfileA1b, nil
	case "pdf/a-2b", "a2b", "2":
		return ProfileA2b, nil
	case "pdf/a-3b", "a3b", "3":
		return ProfileA3b, nil
	}
	return "", fmt.Errorf("unknown PDF/A profile %q (want standard, a1b, a2b or a3b)", s)
}

// Format identifies which converter strategy handles an input file.
type Format string

const (
	FormatDocument     Format = "document"
	FormatSpreadsheet  Format = "spreadsheet"
	FormatPresentation Format = "presentation"
	FormatCSV          Format = "csv"
	FormatText         Format = "text"
	FormatImage        Format = "image"
	FormatPDF          Format = "pdf"
)

// OCROptions controls the OCR stage for image and PDF inputs.
type OCROptions struct {
	// Enabled turns OCR on for image and PDF inputs.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Languages is a "+"-joined list of Tesseract language codes (e.g. "deu+eng").
	Languages string `json:"languages" yaml:"languages"`

	// DPI is the rasterization resolution.
	DPI int `json:"dpi" yaml:"dpi"`

	// Pages restricts PDF OCR to these zero-based page indices. Empty means all pages.
	Pages []int `json:"pages,omitempty" yaml:"pages,omitempty"`
}

// BatchOptions is what the front end supplies for one batch besides the
// input list. It is passed by value and never mutated during a batch.
type BatchOptions struct {
	TargetDir string      `json:"target_dir" yaml:"target_dir"`
	Profile   PDFAProfile `json:"profile" yaml:"profile"`
	OCR       OCROptions  `json:"ocr" yaml:"ocr"`
	Title     string      `json:"title,omitempty" yaml:"title,omitempty"`
	Author    string      `json:"author,omitempty" yaml:"author,omitempty"`
}

// ConversionJob is one requested conversion.
type ConversionJob struct {
	SourcePath string
	TargetDir  string
	Profile    PDFAProfile
	OCR        OCROptions
	Title      string
	Author     string
}

// NewJob builds the job for one input path from the batch options.
func NewJob(sourcePath string, opts BatchOptions) ConversionJob {
	return ConversionJob{
		SourcePath: sourcePath,
		TargetDir:  opts.TargetDir,
		Profile:    opts.Profile,
		OCR:        opts.OCR,
		Title:      opts.Title,
		Author:     opts.Author,
	}
}

// WantsMetadata reports whether the stamper should run for this job.
func (j ConversionJob) WantsMetadata() bool {
	return j.Title != "" || j.Author != ""
}

// JobState is the pipeline position of a job.
type JobState string

const (
	StatePending     JobState = "pending"
	StateConverting  JobState = "converting"
	StateOCRing      JobState = "ocr"
	StateNormalizing JobState = "normalizing"
	StateStamping    JobState = "stamping"
	StateFinalized   JobState = "finalized"
	StateFailed      JobState = "failed"
)

// ConversionResult is the terminal outcome of one job. Exactly one of
// OutputPath and Err is set.
type ConversionResult struct {
	Index      int       `json:"index" yaml:"index"`
	SourcePath string    `json:"source" yaml:"source"`
	OutputPath string    `json:"output,omitempty" yaml:"output,omitempty"`
	Err        *JobError `json:"error,omitempty" yaml:"error,omitempty"`
}

// Succeeded reports whether the job produced an output file.
func (r ConversionResult) Succeeded() bool {
	return r.Err == nil
}

// ProgressEvent is emitted once per terminated job, in input order.
type ProgressEvent struct {
	FileName  string
	Completed int
	Total     int
}

// ParsePages parses a comma-separated list of zero-based page indices such
// as "0, 2,5". An empty string yields nil. Duplicates are kept once, in
// first-seen order.
func ParsePages(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	seen := make(map[int]bool)
	var pages []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid page index %q: %w", part, err)
		}
		if n < 0 {
			return nil, fmt.Errorf("invalid page index %d: must be zero or greater", n)
		}
		if !seen[n] {
			seen[n] = true
			pages = append(pages, n)
		}
	}
	return pages, nil
}
