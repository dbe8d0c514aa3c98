// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docpdf/pkg/types"
)

func onePagePDF(t *testing.T) []byte {
	t.Helper()
	doc := fpdf.New("P", "pt", "Letter", "")
	doc.SetFont("Helvetica", "", 12)
	doc.AddPage()
	doc.Text(50, 50, "page")
	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	return buf.Bytes()
}

func multiPagePDF(t *testing.T, n int) []byte {
	t.Helper()
	doc := fpdf.New("P", "pt", "Letter", "")
	doc.SetFont("Helvetica", "", 12)
	for i := 0; i < n; i++ {
		doc.AddPage()
		doc.Text(50, 50, "slide")
	}
	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	return buf.Bytes()
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 200, A: 255})
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

func pages(t *testing.T, path string) int {
	t.Helper()
	n, err := api.PageCountFile(path)
	require.NoError(t, err)
	return n
}

// fakeSoffice stands in for LibreOffice. It writes a PDF named after the
// input into the --outdir directory.
type fakeSoffice struct {
	t        *testing.T
	pdf      []byte
	err      error
	noOutput bool
	calls    [][]string
}

func (f *fakeSoffice) Run(_ context.Context, _ string, args []string, _ io.Reader, _ io.Writer) error {
	f.calls = append(f.calls, args)
	if f.err != nil {
		return f.err
	}
	if f.noOutput {
		return nil
	}
	var outdir string
	for i, a := range args {
		if a == "--outdir" && i+1 < len(args) {
			outdir = args[i+1]
		}
	}
	in := args[len(args)-1]
	base := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
	data := f.pdf
	if data == nil {
		data = onePagePDF(f.t)
	}
	return os.WriteFile(filepath.Join(outdir, base+".pdf"), data, 0o644)
}

// fakeRasterizer writes slides real PNG images into dir.
type fakeRasterizer struct {
	t      *testing.T
	slides int
	dpi    int
}

func (f *fakeRasterizer) Rasterize(_ context.Context, _ string, dpi int, _ []int, dir string) ([]string, error) {
	f.dpi = dpi
	var paths []string
	for i := 0; i < f.slides; i++ {
		p := filepath.Join(dir, "slide_"+string(rune('a'+i))+".png")
		writePNG(f.t, p, 64, 48)
		paths = append(paths, p)
	}
	return paths, nil
}

// fakeRecognizer returns a canned PDF and records what it was asked.
type fakeRecognizer struct {
	out       []byte
	err       error
	languages string
	dpi       int
	pages     []int
	calls     int
}

func (f *fakeRecognizer) RecognizeImage(_ context.Context, _ string, languages string, dpi int) ([]byte, error) {
	f.calls++
	f.languages, f.dpi = languages, dpi
	return f.out, f.err
}

func (f *fakeRecognizer) RecognizePDF(_ context.Context, _ string, languages string, dpi int, pages []int) ([]byte, error) {
	f.calls++
	f.languages, f.dpi, f.pages = languages, dpi, pages
	return f.out, f.err
}

func TestRoute(t *testing.T) {
	tests := []struct {
		path    string
		want    types.Format
		wantErr bool
	}{
		{"/in/report.docx", types.FormatDocument, false},
		{"/in/budget.xlsx", types.FormatSpreadsheet, false},
		{"/in/deck.pptx", types.FormatPresentation, false},
		{"/in/data.csv", types.FormatCSV, false},
		{"/in/notes.txt", types.FormatText, false},
		{"/in/photo.jpg", types.FormatImage, false},
		{"/in/photo.jpeg", types.FormatImage, false},
		{"/in/scan.png", types.FormatImage, false},
		{"/in/paper.pdf", types.FormatPDF, false},
		{"/in/archive.zip", "", true},
		{"/in/legacy.doc", "", true},
		{"/in/SCAN.PNG", "", true},
		{"/in/README", "", true},
	}
	for _, tt := range tests {
		t.Run(filepath.Base(tt.path), func(t *testing.T) {
			got, err := Route(tt.path)
			if tt.wantErr {
				assert.ErrorIs(t, err, types.ErrUnsupportedFormat)
				assert.False(t, Supported(tt.path))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, Supported(tt.path))
		})
	}
}

func TestExtensions(t *testing.T) {
	assert.ElementsMatch(t,
		[]string{".docx", ".xlsx", ".pptx", ".csv", ".txt", ".jpg", ".jpeg", ".png", ".pdf"},
		Extensions())
}

func TestStage(t *testing.T) {
	ocrJob := types.ConversionJob{OCR: types.OCROptions{Enabled: true}}
	assert.Equal(t, types.StateOCRing, Stage(types.FormatImage, ocrJob))
	assert.Equal(t, types.StateOCRing, Stage(types.FormatPDF, ocrJob))
	assert.Equal(t, types.StateConverting, Stage(types.FormatText, ocrJob))
	assert.Equal(t, types.StateConverting, Stage(types.FormatImage, types.ConversionJob{}))
}

type recordingConverter struct{ got string }

func (r *recordingConverter) Convert(_ context.Context, in, _ string, _ types.ConversionJob) error {
	r.got = in
	return nil
}

func TestRouter(t *testing.T) {
	rec := &recordingConverter{}
	r := NewRouter()
	r.Register(types.FormatText, rec)

	require.NoError(t, r.Convert(context.Background(), "/in/a.txt", "/tmp/a.pdf", types.ConversionJob{}))
	assert.Equal(t, "/in/a.txt", rec.got)

	err := r.Convert(context.Background(), "/in/a.csv", "/tmp/a.pdf", types.ConversionJob{})
	assert.ErrorIs(t, err, types.ErrUnsupportedFormat, "known format without a converter")

	err = r.Convert(context.Background(), "/in/a.bmp", "/tmp/a.pdf", types.ConversionJob{})
	assert.ErrorIs(t, err, types.ErrUnsupportedFormat)
}

func TestNewDefaultRouter_CoversEveryFormat(t *testing.T) {
	r := NewDefaultRouter(Deps{Log: zerolog.Nop()})
	for _, ext := range Extensions() {
		f, err := Route("x" + ext)
		require.NoError(t, err)
		assert.Contains(t, r.converters, f, ext)
	}
}

func TestOfficeConverter(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "report.docx")
	require.NoError(t, os.WriteFile(in, []byte("docx"), 0o644))
	out := filepath.Join(dir, "out.pdf")

	soffice := &fakeSoffice{t: t}
	c := NewDocumentConverter(soffice, "/usr/bin/soffice", zerolog.Nop())
	require.NoError(t, c.Convert(context.Background(), in, out, types.ConversionJob{}))

	assert.Equal(t, 1, pages(t, out))
	require.Len(t, soffice.calls, 1)
	args := soffice.calls[0]
	assert.Contains(t, args, "--headless")
	assert.Contains(t, args, "pdf:writer_pdf_Export")
	assert.Contains(t, args, "--outdir")
	assert.Equal(t, in, args[len(args)-1])
	assert.True(t, strings.HasPrefix(args[0], "-env:UserInstallation=file:///"), args[0])
}

func TestSpreadsheetConverter_Filter(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "budget.xlsx")
	require.NoError(t, os.WriteFile(in, []byte("xlsx"), 0o644))

	soffice := &fakeSoffice{t: t}
	c := NewSpreadsheetConverter(soffice, "soffice", zerolog.Nop())
	require.NoError(t, c.Convert(context.Background(), in, filepath.Join(dir, "out.pdf"), types.ConversionJob{}))
	assert.Contains(t, soffice.calls[0], "pdf:calc_pdf_Export")
}

func TestOfficeConverter_Failures(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "corrupt.xlsx")
	require.NoError(t, os.WriteFile(in, []byte("junk"), 0o644))
	out := filepath.Join(dir, "out.pdf")

	t.Run("soffice missing", func(t *testing.T) {
		c := NewSpreadsheetConverter(&fakeSoffice{t: t}, "", zerolog.Nop())
		err := c.Convert(context.Background(), in, out, types.ConversionJob{})
		assert.ErrorIs(t, err, types.ErrEngineMissing)
	})
	t.Run("soffice fails", func(t *testing.T) {
		fail := &types.SubprocessError{Engine: "soffice", Stderr: "general error", Err: errors.New("exit status 1")}
		c := NewSpreadsheetConverter(&fakeSoffice{t: t, err: fail}, "soffice", zerolog.Nop())
		err := c.Convert(context.Background(), in, out, types.ConversionJob{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "corrupt.xlsx")
		var se *types.SubprocessError
		assert.True(t, errors.As(err, &se))
	})
	t.Run("no output", func(t *testing.T) {
		c := NewSpreadsheetConverter(&fakeSoffice{t: t, noOutput: true}, "soffice", zerolog.Nop())
		err := c.Convert(context.Background(), in, out, types.ConversionJob{})
		assert.ErrorIs(t, err, types.ErrEmptyArtifact)
	})
	_, err := os.Stat(out)
	assert.True(t, os.IsNotExist(err))
}

func TestFileURL(t *testing.T) {
	assert.Equal(t, "file:///tmp/x/profile", fileURL("/tmp/x/profile"))
	assert.Equal(t, "file:///tmp/with%20space", fileURL("/tmp/with space"))
}

func TestPresentationConverter(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "deck.pptx")
	require.NoError(t, os.WriteFile(in, []byte("pptx"), 0o644))
	out := filepath.Join(dir, "deck.pdf")

	soffice := &fakeSoffice{t: t, pdf: multiPagePDF(t, 3)}
	raster := &fakeRasterizer{t: t, slides: 3}
	c := NewPresentationConverter(NewOfficeConverter(soffice, "soffice", filterImpress, zerolog.Nop()), raster)

	require.NoError(t, c.Convert(context.Background(), in, out, types.ConversionJob{}))
	assert.Equal(t, 3, pages(t, out))
	assert.Equal(t, types.DefaultDPI, raster.dpi)
	assert.Contains(t, soffice.calls[0], "pdf:impress_pdf_Export")

	dims, err := api.PageDimsFile(out)
	require.NoError(t, err)
	for _, d := range dims {
		assert.InDelta(t, 612.0, d.Width, 0.01)
		assert.InDelta(t, 792.0, d.Height, 0.01)
	}
}

func TestPresentationConverter_NoSlides(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "empty.pptx")
	require.NoError(t, os.WriteFile(in, []byte("pptx"), 0o644))

	c := NewPresentationConverter(
		NewOfficeConverter(&fakeSoffice{t: t}, "soffice", filterImpress, zerolog.Nop()),
		&fakeRasterizer{t: t})
	err := c.Convert(context.Background(), in, filepath.Join(dir, "out.pdf"), types.ConversionJob{})
	assert.ErrorIs(t, err, types.ErrEmptyArtifact)
}

func TestTextConverter_Pagination(t *testing.T) {
	tests := []struct {
		lines     int
		wantPages int
	}{
		{0, 1},
		{1, 1},
		{47, 1},
		{48, 2},
		{100, 3},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d lines", tt.lines), func(t *testing.T) {
			dir := t.TempDir()
			in := filepath.Join(dir, "notes.txt")
			var b strings.Builder
			for i := 0; i < tt.lines; i++ {
				b.WriteString("  line of text  \n")
			}
			require.NoError(t, os.WriteFile(in, []byte(b.String()), 0o644))
			out := filepath.Join(dir, "notes.pdf")

			require.NoError(t, TextConverter{}.Convert(context.Background(), in, out, types.ConversionJob{}))
			assert.Equal(t, tt.wantPages, pages(t, out))
		})
	}
}

func TestReadLines(t *testing.T) {
	lines, err := readLines(strings.NewReader("\ufeffhello  \n\t world\n\nÄrger über Öl\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"hello", "world", "", "Ärger über Öl"}, lines)

	_, err = readLines(bytes.NewReader([]byte{'o', 'k', '\n', 0xff, 0xfe, '\n'}))
	assert.Error(t, err)
}

func TestCSVConverter(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(in, []byte("name,qty\nwidget,3\ngear,12\n"), 0o644))
	out := filepath.Join(dir, "data.pdf")

	require.NoError(t, CSVConverter{}.Convert(context.Background(), in, out, types.ConversionJob{}))
	assert.Equal(t, 1, pages(t, out))
}

func TestCSVConverter_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"ragged rows", "a,b\n1,2,3\n"},
		{"bad quote", "a,b\n\"1,2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			in := filepath.Join(dir, "bad.csv")
			require.NoError(t, os.WriteFile(in, []byte(tt.data), 0o644))
			err := CSVConverter{}.Convert(context.Background(), in, filepath.Join(dir, "out.pdf"), types.ConversionJob{})
			assert.Error(t, err)
		})
	}
}

func TestTableLines(t *testing.T) {
	got := tableLines([][]string{
		{"name", "qty"},
		{"widget", "3"},
		{"gear", "12"},
	})
	assert.Equal(t, []string{
		"  name  qty",
		"widget    3",
		"  gear   12",
	}, got)
}

func TestImageConverter_Plain(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "photo.png")
	writePNG(t, in, 200, 100)
	out := filepath.Join(dir, "photo.pdf")

	rec := &fakeRecognizer{}
	c := NewImageConverter(rec)
	job := types.ConversionJob{OCR: types.OCROptions{DPI: 100}}
	require.NoError(t, c.Convert(context.Background(), in, out, job))

	assert.Zero(t, rec.calls)
	dims, err := api.PageDimsFile(out)
	require.NoError(t, err)
	require.Len(t, dims, 1)
	assert.InDelta(t, 144.0, dims[0].Width, 0.01)
	assert.InDelta(t, 72.0, dims[0].Height, 0.01)
}

func TestImageConverter_NotAnImage(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "fake.png")
	require.NoError(t, os.WriteFile(in, []byte("not an image"), 0o644))
	err := NewImageConverter(&fakeRecognizer{}).Convert(context.Background(), in, filepath.Join(dir, "out.pdf"), types.ConversionJob{})
	assert.Error(t, err)
}

func TestImageConverter_OCR(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "scan.png")
	writePNG(t, in, 10, 10)
	out := filepath.Join(dir, "scan.pdf")

	rec := &fakeRecognizer{out: onePagePDF(t)}
	job := types.ConversionJob{OCR: types.OCROptions{Enabled: true, Languages: "eng", DPI: 150}}
	require.NoError(t, NewImageConverter(rec).Convert(context.Background(), in, out, job))

	assert.Equal(t, 1, rec.calls)
	assert.Equal(t, "eng", rec.languages)
	assert.Equal(t, 150, rec.dpi)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, rec.out, data)
}

func TestPDFConverter(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "paper.pdf")
	original := onePagePDF(t)
	require.NoError(t, os.WriteFile(in, original, 0o644))

	t.Run("copy without OCR", func(t *testing.T) {
		out := filepath.Join(dir, "copy.pdf")
		rec := &fakeRecognizer{}
		require.NoError(t, NewPDFConverter(rec).Convert(context.Background(), in, out, types.ConversionJob{}))
		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Equal(t, original, data)
		assert.Zero(t, rec.calls)
	})
	t.Run("OCR with page filter", func(t *testing.T) {
		out := filepath.Join(dir, "ocr.pdf")
		rec := &fakeRecognizer{out: multiPagePDF(t, 2)}
		job := types.ConversionJob{OCR: types.OCROptions{Enabled: true, Languages: "deu", DPI: 300, Pages: []int{0, 2}}}
		require.NoError(t, NewPDFConverter(rec).Convert(context.Background(), in, out, job))
		assert.Equal(t, []int{0, 2}, rec.pages)
		assert.Equal(t, "deu", rec.languages)
		assert.Equal(t, 2, pages(t, out))
	})
	t.Run("OCR failure", func(t *testing.T) {
		out := filepath.Join(dir, "fail.pdf")
		rec := &fakeRecognizer{err: errors.New("no pages selected")}
		job := types.ConversionJob{OCR: types.OCROptions{Enabled: true}}
		assert.Error(t, NewPDFConverter(rec).Convert(context.Background(), in, out, job))
		_, err := os.Stat(out)
		assert.True(t, os.IsNotExist(err))
	})
}
