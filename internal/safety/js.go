package safety

import (
	"regexp"
	"strconv"
	"strings"
)

// jsDangerousPatterns match normalized in-page JS expressions that reach
// network, storage, navigation, or credential APIs.
var jsDangerousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bfetch\s*\(`),
	regexp.MustCompile(`(?i)\bxmlhttprequest\b`),
	regexp.MustCompile(`(?i)\bwebsocket\s*\(`),
	regexp.MustCompile(`(?i)\bnavigator\.sendbeacon\b`),
	regexp.MustCompile(`(?i)\bdocument\.cookie\b`),
	regexp.MustCompile(`(?i)\blocalstorage\b`),
	regexp.MustCompile(`(?i)\bsessionstorage\b`),
	regexp.MustCompile(`(?i)\bindexeddb\b`),
	regexp.MustCompile(`(?i)\bwindow\.location\b`),
	regexp.MustCompile(`(?i)\bdocument\.location\b`),
	regexp.MustCompile(`(?i)\.innerhtml\b`),
	regexp.MustCompile(`(?i)\bnavigator\.credentials\b`),
	regexp.MustCompile(`(?i)\bpasswordcredential\b`),
}

// NormalizeJS decodes common obfuscations (Unicode \uXXXX escapes, hex \xXX
// escapes, and full-width Unicode variants of ASCII letters) before pattern
// matching, so bracket-notation and lookalike-character evasions collapse to
// the same text a direct call would use.
func NormalizeJS(expr string) string {
	expr = decodeUnicodeEscapes(expr)
	expr = decodeHexEscapes(expr)
	expr = foldFullWidth(expr)
	return expr
}

var unicodeEscape = regexp.MustCompile(`\\u([0-9a-fA-F]{4})`)
var hexEscape = regexp.MustCompile(`\\x([0-9a-fA-F]{2})`)

func decodeUnicodeEscapes(s string) string {
	return unicodeEscape.ReplaceAllStringFunc(s, func(m string) string {
		code, err := strconv.ParseInt(m[2:], 16, 32)
		if err != nil {
			return m
		}
		return string(rune(code))
	})
}

func decodeHexEscapes(s string) string {
	return hexEscape.ReplaceAllStringFunc(s, func(m string) string {
		code, err := strconv.ParseInt(m[2:], 16, 32)
		if err != nil {
			return m
		}
		return string(rune(code))
	})
}

// foldFullWidth maps full-width Unicode letters (U+FF21-FF3A, U+FF41-FF5A)
// back onto their ASCII equivalents.
func foldFullWidth(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 0xFF21 && r <= 0xFF3A:
			b.WriteRune(r - 0xFF21 + 'A')
		case r >= 0xFF41 && r <= 0xFF5A:
			b.WriteRune(r - 0xFF41 + 'a')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CheckBrowserJS reports whether expr (after normalization) is safe to
// evaluate in-page. A non-empty reason explains the block.
func CheckBrowserJS(expr string) (safe bool, reason string) {
	normalized := NormalizeJS(expr)
	for _, p := range jsDangerousPatterns {
		if p.MatchString(normalized) {
			return false, "blocked: expression touches a gated API (" + p.String() + ")"
		}
	}
	return true, ""
}
