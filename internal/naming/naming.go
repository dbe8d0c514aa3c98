// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package naming derives safe, collision-free output file names.
package naming

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/docpdf/pkg/types"
)

// invalidChars are replaced with "-" by Sanitize.
const invalidChars = `<>:"/\|?*`

var replacer = func() *strings.Replacer {
	pairs := make([]string, 0, 2*len(invalidChars))
	for _, c := range invalidChars {
		pairs = append(pairs, string(c), "-")
	}
	return strings.NewReplacer(pairs...)
}()

// Sanitize replaces each of < > : " / \ | ? * in name with "-".
func Sanitize(name string) string {
	return replacer.Replace(name)
}

// Uniquify returns path unchanged when nothing exists there. Otherwise it
// appends _V1, _V2, ... before the extension and returns the first path
// that does not exist. It only performs existence checks.
func Uniquify(path string) string {
	if !exists(path) {
		return path
	}
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s_V%d%s", base, n, ext)
		if !exists(candidate) {
			return candidate
		}
	}
}

// OutputName builds the output file name for sourcePath: the sanitized base
// name, the sanitized profile tag when a PDF/A profile is requested, and a
// ".pdf" extension. "scan.png" with PDF/A-1b gives "scan_PDF-A-1b.pdf".
func OutputName(sourcePath string, profile types.PDFAProfile) string {
	file := filepath.Base(sourcePath)
	base := Sanitize(strings.TrimSuffix(file, filepath.Ext(file)))
	if profile.Archival() {
		base += "_" + Sanitize(string(profile))
	}
	return base + ".pdf"
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
