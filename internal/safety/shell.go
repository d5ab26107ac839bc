// Package safety implements the cross-cutting hard invariants that must hold
// before any tool is allowed to take effect: destructive shell command
// gating, path sandboxing, and outbound URL/SSRF validation.
package safety

import (
	"regexp"
	"strings"

	"github.com/conduitrun/conduit/internal/tools/security"
)

// Confirmer asks the operator to confirm a command that matched a
// destructive-intent pattern. A nil Confirmer means "no callback configured"
// and every match is blocked.
type Confirmer func(command string, reason string) bool

// destructivePattern is one named destructive-intent regex, matched against
// the normalized, quote-stripped form of a single command segment.
type destructivePattern struct {
	name string
	re   *regexp.Regexp
}

var destructivePatterns = []destructivePattern{
	{"rm -rf", regexp.MustCompile(`(?i)\brm\b[^|;&]*-[a-z]*r[a-z]*f|\brm\b[^|;&]*-[a-z]*f[a-z]*r`)},
	{"disk format", regexp.MustCompile(`(?i)\b(mkfs|fdisk|parted|diskpart)\b`)},
	{"dd", regexp.MustCompile(`(?i)\bdd\b\s+if=`)},
	{"git force push", regexp.MustCompile(`(?i)\bgit\s+push\b[^|;&]*--force\b|\bgit\s+push\b[^|;&]*-f\b`)},
	{"git reset hard", regexp.MustCompile(`(?i)\bgit\s+reset\b[^|;&]*--hard\b`)},
	{"git clean force", regexp.MustCompile(`(?i)\bgit\s+clean\b[^|;&]*-[a-z]*f`)},
	{"git branch delete", regexp.MustCompile(`(?i)\bgit\s+branch\b[^|;&]*-D\b`)},
	{"drop/truncate table", regexp.MustCompile(`(?i)\b(drop|truncate)\s+table\b`)},
	{"shutdown/reboot", regexp.MustCompile(`(?i)\b(shutdown|reboot|halt|poweroff)\b`)},
	{"kill -9", regexp.MustCompile(`(?i)\bkill\b[^|;&]*-9\b|\bkillall\b`)},
	{"world-writable chmod", regexp.MustCompile(`(?i)\bchmod\b[^|;&]*\b(777|a\+w|o\+w)\b`)},
	{"recursive chown", regexp.MustCompile(`(?i)\bchown\b[^|;&]*-[a-z]*R`)},
	{"inline interpreter", regexp.MustCompile(`(?i)\b(python3?|node|ruby|perl)\b[^|;&]*-[a-z]*[ce]\b|\bbash\b[^|;&]*-c\b|\bsh\b[^|;&]*-c\b|\bpowershell\b[^|;&]*-(c|enc|encodedcommand)\b`)},
	{"base64 decode stream", regexp.MustCompile(`(?i)\bbase64\b[^|;&]*-d\b`)},
	{"network listener", regexp.MustCompile(`(?i)\b(nc|ncat|netcat)\b[^|;&]*-l\b`)},
	{"ssh key file", regexp.MustCompile(`(?i)\.ssh/(id_rsa|id_ed25519|id_ecdsa|authorized_keys)\b`)},
	{"crontab edit", regexp.MustCompile(`(?i)\bcrontab\s+-[er]\b`)},
	{"pipe to shell", regexp.MustCompile(`(?i)\b(curl|wget)\b[^|;&]*\|\s*(sudo\s+)?(bash|sh|zsh)\b`)},
}

// splitSeparators divides a command into independently-checked segments on
// ;, &&, ||, &, and | — mirroring the sequencing operators a shell recognizes.
var splitSeparators = regexp.MustCompile(`;|&&|\|\||&|\|`)

// subshellDollar and subshellBacktick extract the body of $( ... ) and `...` subcommands so they
// are checked as their own segments too.
var subshellDollar = regexp.MustCompile(`\$\(([^()]*)\)`)
var subshellBacktick = regexp.MustCompile("`([^`]*)`")

// Normalize collapses common shell obfuscation so pattern matching sees the
// command a shell would actually execute: ${IFS} becomes a space, stray
// backslashes before alphanumerics are dropped (r\m -> rm), and quote
// characters placed mid-token are stripped (r"m" -> rm).
func Normalize(cmd string) string {
	out := strings.ReplaceAll(cmd, "${IFS}", " ")
	out = strings.ReplaceAll(out, "$IFS", " ")

	var b strings.Builder
	runes := []rune(out)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		if c == '\\' && i+1 < len(runes) && isWordChar(runes[i+1]) {
			// drop the escaping backslash, keep the escaped char
			continue
		}
		if c == '"' || c == '\'' {
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

func isWordChar(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// segments splits a command into every independently-dangerous piece: each
// ;/|/&&/||/& separated segment, plus the body of any $() or `` subshell.
func segments(cmd string) []string {
	segs := splitSeparators.Split(cmd, -1)
	for _, m := range subshellDollar.FindAllStringSubmatch(cmd, -1) {
		segs = append(segs, m[1])
	}
	for _, m := range subshellBacktick.FindAllStringSubmatch(cmd, -1) {
		segs = append(segs, m[1])
	}
	return segs
}

// MatchDestructive reports whether cmd (or any of its segments, after
// normalization) matches a destructive-intent pattern, and if so which one.
func MatchDestructive(cmd string) (matched bool, patternName string) {
	normalized := Normalize(cmd)
	for _, seg := range append(segments(normalized), normalized) {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		for _, p := range destructivePatterns {
			if p.re.MatchString(seg) {
				return true, p.name
			}
		}
	}
	return false, ""
}

// CheckCommand gates a shell command: if it matches no destructive pattern
// it is allowed unconditionally. If it matches, confirm must be non-nil and
// return true, or the command is blocked. CheckCommand never runs anything;
// it only decides.
func CheckCommand(cmd string, confirm Confirmer) (allowed bool, reason string) {
	matched, name := MatchDestructive(cmd)
	if !matched {
		return true, ""
	}
	reason = "blocked: matches destructive pattern (" + name + ")"
	if analysis := security.AnalyzeCommandQuoteAware(cmd); !analysis.IsSafe && analysis.Reason != "" {
		reason += " (" + analysis.Reason + ")"
	}
	if confirm == nil {
		return false, reason
	}
	if confirm(cmd, name) {
		return true, ""
	}
	return false, reason
}
