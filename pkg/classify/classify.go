// Package classify decides whether a cell's text needs translation.
//
// Every text sent to the inference service costs latency and money, so the
// classifier is the primary cost-control gate. It is a deterministic, total
// function over the input string: no state, no randomness, no I/O.
package classify

import (
	"regexp"
	"strings"
	"unicode"
)

// Verdict is the classification outcome for a single text.
type Verdict string

const (
	// VerdictTranslatable means the text should be sent for translation.
	VerdictTranslatable Verdict = "translatable"

	// VerdictSkip means the text is copied through untouched.
	VerdictSkip Verdict = "skip"
)

// Skip rules, applied in priority order. Each pattern mirrors a class of
// cell content that carries no translatable prose.
var (
	numericRe = regexp.MustCompile(`^-?[\d,\s]+\.?\d*%?$`)

	dateRes = []*regexp.Regexp{
		regexp.MustCompile(`^\d{4}[-/]\d{1,2}[-/]\d{1,2}$`),
		regexp.MustCompile(`^\d{1,2}[-/]\d{1,2}[-/]\d{4}$`),
		regexp.MustCompile(`^\d{1,2}[-/]\d{1,2}[-/]\d{2}$`),
		regexp.MustCompile(`^\d{4}年\d{1,2}月\d{1,2}日$`),
	}

	timeRe = regexp.MustCompile(`^\d{1,2}:\d{2}(:\d{2})?(\s*[APap][Mm])?$`)

	urlRe   = regexp.MustCompile(`(?i)^https?://`)
	emailRe = regexp.MustCompile(`^[\w.-]+@[\w.-]+\.\w+$`)

	phoneShapeRe = regexp.MustCompile(`^[\d\s\-+()]+$`)
	nonDigitRe   = regexp.MustCompile(`\D`)

	currencyPrefixRe = regexp.MustCompile(`^[$€£¥₩]\s*[\d,]+\.?\d*$`)
	currencySuffixRe = regexp.MustCompile(`^[\d,]+\.?\d*\s*[$€£¥₩円]$`)

	asciiOnlyRe = regexp.MustCompile("^[A-Za-z0-9\\s.,;:!?'\"()\\-_@#$%&*+=/<>\\\\|{}\\[\\]`~]+$")
	camelRe     = regexp.MustCompile(`^[A-Z][A-Za-z0-9_]+$`)
	snakeRe     = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

	windowsPathRe = regexp.MustCompile(`^[A-Za-z]:\\`)
)

// Classify returns the verdict for a single text value.
func Classify(text string) Verdict {
	if shouldSkip(text) {
		return VerdictSkip
	}
	return VerdictTranslatable
}

// Translatable reports whether text should be sent for translation.
func Translatable(text string) bool {
	return Classify(text) == VerdictTranslatable
}

func shouldSkip(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return true
	}

	if numericRe.MatchString(trimmed) {
		return true
	}

	for _, re := range dateRes {
		if re.MatchString(trimmed) {
			return true
		}
	}

	if timeRe.MatchString(trimmed) {
		return true
	}

	if urlRe.MatchString(trimmed) {
		return true
	}

	if emailRe.MatchString(trimmed) {
		return true
	}

	// Phone-like: only dial characters, with at least 7 digits once
	// separators are stripped.
	if phoneShapeRe.MatchString(trimmed) && len(nonDigitRe.ReplaceAllString(trimmed, "")) >= 7 {
		return true
	}

	if !containsLetter(trimmed) {
		return true
	}

	if currencyPrefixRe.MatchString(trimmed) || currencySuffixRe.MatchString(trimmed) {
		return true
	}

	if asciiOnlyRe.MatchString(trimmed) {
		// Short tokens and acronyms are left alone. This intentionally
		// over-filters two-word English phrases; spreadsheets are dominated
		// by codes and labels where translating them does more harm than good.
		if len(strings.Fields(trimmed)) <= 2 {
			return true
		}
		if camelRe.MatchString(trimmed) || snakeRe.MatchString(trimmed) {
			return true
		}
	}

	if windowsPathRe.MatchString(trimmed) || strings.HasPrefix(trimmed, "/") {
		return true
	}

	// Formulas are evaluated by the spreadsheet engine, not read by humans.
	if strings.HasPrefix(trimmed, "=") {
		return true
	}

	return false
}

func containsLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
