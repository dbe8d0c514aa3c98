// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ocr

import (
	"strings"

	"github.com/abadojack/whatlanggo"
)

// FallbackLanguage is returned when detection is not reliable.
const FallbackLanguage = "eng"

// DetectLanguage guesses the ISO 639-3 code of text, which matches the
// Tesseract code for most languages. It returns FallbackLanguage when the
// text is empty or the guess is unreliable.
func DetectLanguage(text string) string {
	if strings.TrimSpace(text) == "" {
		return FallbackLanguage
	}
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return FallbackLanguage
	}
	code := info.Lang.Iso6393()
	if code == "" {
		return FallbackLanguage
	}
	return code
}
