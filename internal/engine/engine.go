// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package engine discovers the external conversion engines (Ghostscript,
// Tesseract, LibreOffice) and runs them as subprocesses. Engine paths are
// resolved once at startup into an Engines value that is injected into the
// stages that need it.
package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/docpdf/pkg/types"
)

const (
	NameGhostscript = "ghostscript"
	NameTesseract   = "tesseract"
	NameSoffice     = "soffice"
)

// maxStderr caps the diagnostic text kept from a failed subprocess.
const maxStderr = 8 << 10

// Runner executes an external engine binary. Implementations return a
// *types.SubprocessError when the process exits non-zero.
type Runner interface {
	Run(ctx context.Context, bin string, args []string, stdin io.Reader, stdout io.Writer) error
}

// executor abstracts the operating system for testing.
type executor interface {
	LookPath(file string) (string, error)
	IsFile(path string) bool
	Run(ctx context.Context, name string, args []string, stdin io.Reader, stdout, stderr io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) IsFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (o *osExecutor) Run(ctx context.Context, name string, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

var defaultExec executor = &osExecutor{}

// candidate is one place an engine may live: either an absolute path that
// must exist, or a bare name looked up on PATH.
type candidate struct {
	path   string
	onPath bool
}

func abs(p string) candidate    { return candidate{path: p} }
func lookup(p string) candidate { return candidate{path: p, onPath: true} }

var ghostscriptCandidates = []candidate{
	abs(`C:\Program Files\gs\gs10.04.0\bin\gswin64c.exe`),
	abs(`C:\Program Files (x86)\gs\gs10.04.0\bin\gswin32c.exe`),
	lookup("gs"),
	lookup("gswin64c"),
	lookup("gswin32c"),
}

var tesseractCandidates = []candidate{
	abs(`C:\Program Files\Tesseract-OCR\tesseract.exe`),
	abs(`C:\Program Files (x86)\Tesseract-OCR\tesseract.exe`),
	lookup("tesseract"),
	abs("/usr/bin/tesseract"),
	abs("/usr/local/bin/tesseract"),
}

var sofficeCandidates = []candidate{
	abs("/opt/homebrew/bin/soffice"),
	abs("/Applications/LibreOffice.app/Contents/MacOS/soffice"),
	abs(`C:\Program Files\LibreOffice\program\soffice.exe`),
	abs("/usr/bin/libreoffice"),
	abs("/usr/bin/soffice"),
	lookup("soffice"),
	lookup("libreoffice"),
}

// Engines holds resolved engine paths. An empty path means the engine was
// not found.
type Engines struct {
	Ghostscript string
	Tesseract   string
	Soffice     string

	exec executor
	log  zerolog.Logger
}

// Detect resolves every engine once. Explicit paths in cfg win over
// discovery; an explicit path that does not exist is reported as missing
// rather than silently replaced.
func Detect(cfg types.EngineConfig, log zerolog.Logger) *Engines {
	return detect(cfg, defaultExec, log)
}

func detect(cfg types.EngineConfig, ex executor, log zerolog.Logger) *Engines {
	e := &Engines{exec: ex, log: log}
	e.Ghostscript = resolve(ex, cfg.Ghostscript, ghostscriptCandidates)
	e.Tesseract = resolve(ex, cfg.Tesseract, tesseractCandidates)
	e.Soffice = resolve(ex, cfg.Soffice, sofficeCandidates)
	log.Debug().
		Str(NameGhostscript, e.Ghostscript).
		Str(NameTesseract, e.Tesseract).
		Str(NameSoffice, e.Soffice).
		Msg("resolved engines")
	return e
}

func resolve(ex executor, explicit string, candidates []candidate) string {
	if explicit != "" {
		if ex.IsFile(explicit) {
			return explicit
		}
		if p, err := ex.LookPath(explicit); err == nil {
			return p
		}
		return ""
	}
	for _, c := range candidates {
		if c.onPath {
			if p, err := ex.LookPath(c.path); err == nil {
				return p
			}
			continue
		}
		if ex.IsFile(c.path) {
			return c.path
		}
	}
	return ""
}

// Require returns an error wrapping types.ErrEngineMissing that names every
// required engine that was not found. Ghostscript and Tesseract are required
// because every later job would otherwise fail identically.
func (e *Engines) Require() error {
	var missing []string
	if e.Ghostscript == "" {
		missing = append(missing, NameGhostscript)
	}
	if e.Tesseract == "" {
		missing = append(missing, NameTesseract)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s not installed or path is wrong", types.ErrEngineMissing, strings.Join(missing, ", "))
	}
	return nil
}

// Run executes bin with args. Standard error is captured and returned in a
// *types.SubprocessError when the process fails.
func (e *Engines) Run(ctx context.Context, bin string, args []string, stdin io.Reader, stdout io.Writer) error {
	if bin == "" {
		return fmt.Errorf("%w: no binary configured", types.ErrEngineMissing)
	}
	if stdout == nil {
		stdout = io.Discard
	}
	name := filepath.Base(bin)
	e.log.Debug().Str("engine", name).Strs("args", args).Msg("executing")

	var stderr bytes.Buffer
	err := e.exec.Run(ctx, bin, args, stdin, stdout, &limitedWriter{buf: &stderr, max: maxStderr})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("running %s: %w", name, ctxErr)
		}
		return &types.SubprocessError{
			Engine: name,
			Stderr: strings.TrimSpace(stderr.String()),
			Err:    err,
		}
	}
	return nil
}

// limitedWriter keeps the first max bytes and discards the rest.
type limitedWriter struct {
	buf *bytes.Buffer
	max int
}

func (w *limitedWriter) Write(p []byte) (int, error) {
	if room := w.max - w.buf.Len(); room > 0 {
		if len(p) > room {
			w.buf.Write(p[:room])
		} else {
			w.buf.Write(p)
		}
	}
	return len(p), nil
}
