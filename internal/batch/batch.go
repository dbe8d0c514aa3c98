// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch runs a list of input files through the conversion pipeline
// one job at a time. A failing job never stops the batch: it is logged,
// reported as a failure event, and the next job starts. Intermediate files
// live in a private work directory that is removed when the batch ends.
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pdiddy/docpdf/internal/convert"
	"github.com/pdiddy/docpdf/internal/fsutil"
	"github.com/pdiddy/docpdf/internal/naming"
	"github.com/pdiddy/docpdf/pkg/types"
)

// Normalizer rewrites a PDF to conform to an archival profile.
type Normalizer interface {
	Normalize(ctx context.Context, in, out string, profile types.PDFAProfile) error
}

// Stamper sets document title and author on a PDF in place.
type Stamper interface {
	Stamp(path, title, author string) error
}

// StampFunc adapts a function to the Stamper interface.
type StampFunc func(path, title, author string) error

// Stamp implements Stamper.
func (f StampFunc) Stamp(path, title, author string) error { return f(path, title, author) }

// EventKind identifies what an Event reports.
type EventKind string

const (
	EventProgress EventKind = "progress"
	EventFailure  EventKind = "failure"
	EventFinished EventKind = "finished"
)

// Event is sent from the batch worker to the goroutine that started it.
type Event struct {
	Kind     EventKind
	Progress types.ProgressEvent
	Failure  types.ConversionResult
	Summary  *Summary
}

// Orchestrator sequences jobs through conversion, normalization and
// stamping.
type Orchestrator struct {
	conv    convert.Converter
	norm    Normalizer
	stamp   Stamper
	log     zerolog.Logger
	tempDir string
	newID   func() string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the diagnostic logger.
func WithLogger(log zerolog.Logger) Option {
	return func(o *Orchestrator) { o.log = log }
}

// WithTempDir sets the parent of per-batch work directories. The default is
// os.TempDir().
func WithTempDir(dir string) Option {
	return func(o *Orchestrator) { o.tempDir = dir }
}

// New creates an Orchestrator.
func New(conv convert.Converter, norm Normalizer, stamp Stamper, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		conv:  conv,
		norm:  norm,
		stamp: stamp,
		log:   zerolog.Nop(),
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Start runs the batch on a new goroutine and returns the channel its events
// arrive on. The caller must drain the channel; it is closed after the
// EventFinished event.
func (o *Orchestrator) Start(ctx context.Context, paths []string, opts types.BatchOptions) <-chan Event {
	events := make(chan Event, 8)
	go func() {
		defer close(events)
		o.Run(ctx, paths, opts, events)
	}()
	return events
}

// Run processes paths in order on the calling goroutine and returns the
// summary. Every path yields exactly one result and one progress event. When
// ctx is canceled, the job in flight stops at its next blocking call and
// every job not yet started fails as canceled. events may be nil.
func (o *Orchestrator) Run(ctx context.Context, paths []string, opts types.BatchOptions, events chan<- Event) Summary {
	sum := Summary{
		BatchID: o.newID(),
		Started: time.Now(),
		Results: make([]types.ConversionResult, 0, len(paths)),
	}
	log := o.log.With().Str("batch", sum.BatchID).Logger()
	log.Info().
		Int("files", len(paths)).
		Str("target", opts.TargetDir).
		Str("profile", string(opts.Profile)).
		Bool("ocr", opts.OCR.Enabled).
		Msg("batch started")

	work, workErr := o.makeWorkDir(sum.BatchID)
	for i, src := range paths {
		var res types.ConversionResult
		switch {
		case ctx.Err() != nil:
			res = o.failed(log, i, src, types.KindCanceled, "start", ctx.Err())
		case workErr != nil:
			res = o.failed(log, i, src, types.KindIOFailure, "prepare", workErr)
		default:
			res = o.runJob(ctx, log, work, i, src, opts)
		}
		sum.Results = append(sum.Results, res)

		if !res.Succeeded() {
			send(events, Event{Kind: EventFailure, Failure: res})
		}
		send(events, Event{Kind: EventProgress, Progress: types.ProgressEvent{
			FileName:  filepath.Base(src),
			Completed: i + 1,
			Total:     len(paths),
		}})
	}

	if work != "" {
		if err := os.RemoveAll(work); err != nil {
			log.Warn().Err(err).Str("dir", work).Msg("removing work directory")
		}
	}
	sum.Finished = time.Now()
	log.Info().
		Int("succeeded", sum.Succeeded()).
		Int("failed", sum.Failed()).
		Dur("elapsed", sum.Finished.Sub(sum.Started)).
		Msg("batch finished")

	send(events, Event{Kind: EventFinished, Summary: &sum})
	return sum
}

func send(events chan<- Event, ev Event) {
	if events != nil {
		events <- ev
	}
}

func (o *Orchestrator) makeWorkDir(id string) (string, error) {
	parent := o.tempDir
	if parent == "" {
		parent = os.TempDir()
	}
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return "", fmt.Errorf("creating temp directory %s: %w", parent, err)
	}
	dir := filepath.Join(parent, "docpdf-"+id)
	if err := os.Mkdir(dir, 0o700); err != nil {
		return "", fmt.Errorf("creating work directory: %w", err)
	}
	return dir, nil
}

// runJob takes one input from Pending to Finalized or Failed. Its temp files
// are removed before it returns.
func (o *Orchestrator) runJob(ctx context.Context, log zerolog.Logger, work string, index int, src string, opts types.BatchOptions) types.ConversionResult {
	job := types.NewJob(src, opts)
	jlog := log.With().Int("index", index).Str("source", src).Logger()
	jlog.Debug().Str("state", string(types.StatePending)).Msg("job queued")

	format, err := convert.Route(src)
	if err != nil {
		return o.failed(jlog, index, src, types.KindUnsupportedFormat, "route", err)
	}
	if _, err := os.Stat(src); err != nil {
		return o.failed(jlog, index, src, types.KindIOFailure, "open", err)
	}

	tmp := filepath.Join(work, fmt.Sprintf("%d_%s.pdf", index, naming.Sanitize(filepath.Base(src))))
	normalized := filepath.Join(work, fmt.Sprintf("%d_pdfa.pdf", index))
	defer removeTemps(jlog, tmp, normalized)

	transition(jlog, convert.Stage(format, job))
	if err := o.conv.Convert(ctx, src, tmp, job); err != nil {
		return o.failed(jlog, index, src, convertKind(err), "convert", err)
	}
	if err := checkArtifact(tmp); err != nil {
		return o.failed(jlog, index, src, types.KindEmptyArtifact, "convert", err)
	}

	ready := tmp
	if job.Profile.Archival() {
		transition(jlog, types.StateNormalizing)
		if err := o.norm.Normalize(ctx, tmp, normalized, job.Profile); err != nil {
			return o.failed(jlog, index, src, normalizeKind(err), "normalize", err)
		}
		if err := checkArtifact(normalized); err != nil {
			return o.failed(jlog, index, src, types.KindEmptyArtifact, "normalize", err)
		}
		ready = normalized
	}

	if err := os.MkdirAll(job.TargetDir, 0o755); err != nil {
		return o.failed(jlog, index, src, types.KindIOFailure, "finalize", err)
	}
	final := naming.Uniquify(filepath.Join(job.TargetDir, naming.OutputName(src, job.Profile)))
	if err := fsutil.MoveFile(ready, final); err != nil {
		return o.failed(jlog, index, src, types.KindIOFailure, "finalize", err)
	}

	if job.WantsMetadata() {
		transition(jlog, types.StateStamping)
		if err := o.stamp.Stamp(final, job.Title, job.Author); err != nil {
			jlog.Warn().Str("output", final).Msg("output kept without requested metadata")
			return o.failed(jlog, index, src, types.KindConverterFailure, "stamp", err)
		}
	}

	jlog.Info().Str("state", string(types.StateFinalized)).Str("output", final).Msg("conversion finished")
	return types.ConversionResult{Index: index, SourcePath: src, OutputPath: final}
}

func (o *Orchestrator) failed(log zerolog.Logger, index int, src string, kind types.ErrorKind, op string, err error) types.ConversionResult {
	jerr := types.NewJobError(kind, op, src, err)
	log.Error().
		Err(err).
		Str("source", src).
		Str("kind", string(kind)).
		Str("op", op).
		Str("state", string(types.StateFailed)).
		Msg("conversion failed")
	return types.ConversionResult{Index: index, SourcePath: src, Err: jerr}
}

func transition(log zerolog.Logger, state types.JobState) {
	log.Debug().Str("state", string(state)).Msg("job state")
}

// checkArtifact fails when a stage left no file or an empty one at path.
func checkArtifact(path string) error {
	n, err := fsutil.Size(path)
	if err != nil {
		return fmt.Errorf("%w: %s was not written", types.ErrEmptyArtifact, filepath.Base(path))
	}
	if n == 0 {
		return fmt.Errorf("%w: %s is zero bytes", types.ErrEmptyArtifact, filepath.Base(path))
	}
	return nil
}

func removeTemps(log zerolog.Logger, paths ...string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("temp", p).Msg("removing temp file")
		}
	}
}

// convertKind classifies converter and OCR errors. A subprocess failing
// during conversion is a converter failure, not a normalizer one.
func convertKind(err error) types.ErrorKind {
	switch k := types.KindOf(err); k {
	case types.KindUnsupportedFormat, types.KindEmptyArtifact, types.KindCanceled:
		return k
	}
	return types.KindConverterFailure
}

func normalizeKind(err error) types.ErrorKind {
	switch k := types.KindOf(err); k {
	case types.KindEmptyArtifact, types.KindCanceled:
		return k
	}
	return types.KindSubprocessFailure
}
