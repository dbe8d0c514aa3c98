// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

const (
	// DefaultOCRLanguages is the Tesseract language set used when none is given.
	DefaultOCRLanguages = "deu+eng"

	// DefaultDPI is the rasterization resolution used when none is given.
	DefaultDPI = 300

	// DefaultLogFile is the diagnostic log written during every run.
	DefaultLogFile = "converter.log"

	// DefaultHistoryFile is the SQLite database recording finished batches.
	DefaultHistoryFile = "docpdf-history.db"
)

// EngineConfig holds explicit paths to the external engines. An empty field
// means "discover on this machine". Resolved once at startup.
type EngineConfig struct {
	// Ghostscript is the PDF/A normalization engine (gs, gswin64c, gswin32c).
	Ghostscript string `json:"ghostscript" yaml:"ghostscript" mapstructure:"ghostscript"`

	// Tesseract is the OCR engine.
	Tesseract string `json:"tesseract" yaml:"tesseract" mapstructure:"tesseract"`

	// Soffice is the LibreOffice binary used for office formats.
	Soffice string `json:"soffice" yaml:"soffice" mapstructure:"soffice"`
}

// OCRConfig holds OCR defaults applied when the command line leaves them unset.
type OCRConfig struct {
	// Languages is a "+"-joined Tesseract language list (default "deu+eng").
	Languages string `json:"languages" yaml:"languages" mapstructure:"languages"`

	// DPI is the rasterization resolution (default 300).
	DPI int `json:"dpi" yaml:"dpi" mapstructure:"dpi"`
}

// OutputConfig holds defaults for the produced files.
type OutputConfig struct {
	// Profile is the default PDF/A selector (standard, a1b, a2b, a3b).
	Profile string `json:"profile" yaml:"profile" mapstructure:"profile"`
}

// LogConfig controls the diagnostic log.
type LogConfig struct {
	// File is the append-only log file (default "converter.log").
	File string `json:"file" yaml:"file" mapstructure:"file"`

	// Level is the minimum level written: debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Console also writes human-readable log lines to stderr.
	Console bool `json:"console" yaml:"console" mapstructure:"console"`
}

// HistoryConfig controls the SQLite conversion history.
type HistoryConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Path    string `json:"path" yaml:"path" mapstructure:"path"`
}

// WorkConfig controls where intermediate artifacts live.
type WorkConfig struct {
	// TempDir is the parent of per-batch work directories (default os.TempDir()).
	TempDir string `json:"temp_dir" yaml:"temp_dir" mapstructure:"temp_dir"`
}

// Config groups all settings read from the config file and environment.
type Config struct {
	Engines EngineConfig  `json:"engines" yaml:"engines" mapstructure:"engines"`
	OCR     OCRConfig     `json:"ocr" yaml:"ocr" mapstructure:"ocr"`
	Output  OutputConfig  `json:"output" yaml:"output" mapstructure:"output"`
	Log     LogConfig     `json:"log" yaml:"log" mapstructure:"log"`
	History HistoryConfig `json:"history" yaml:"history" mapstructure:"history"`
	Work    WorkConfig    `json:"work" yaml:"work" mapstructure:"work"`
}

// WithDefaults fills unset fields with their defaults.
func (c Config) WithDefaults() Config {
	if c.OCR.Languages == "" {
		c.OCR.Languages = DefaultOCRLanguages
	}
	if c.OCR.DPI <= 0 {
		c.OCR.DPI = DefaultDPI
	}
	if c.Log.File == "" {
		c.Log.File = DefaultLogFile
	}
	if c.Log.Level == "" {
		c.Log.Level = "debug"
	}
	if c.History.Path == "" {
		c.History.Path = DefaultHistoryFile
	}
	return c
}
