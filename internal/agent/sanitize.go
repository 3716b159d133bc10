package agent

import (
	"regexp"
	"strings"
	"unicode"
)

// Models that emit a visible reasoning trace wrap it in think tags; the
// whole block is commentary, not output.
var reasoningBlock = regexp.MustCompile(`(?is)<think>.*?</think>`)

// SanitizeCondition cleans a raw model response down to a bare WHERE-clause
// body. The steps run in a fixed order and each is idempotent, so the whole
// pipeline is too:
//
//  1. drop any reasoning block,
//  2. drop a leading WHERE keyword,
//  3. strip markdown code fences (and the language tag line),
//  4. keep the last non-empty line — models sometimes prepend explanation
//     despite instructions, and the final line is assumed to be the clause,
//  5. drop one trailing statement terminator.
//
// The result is either empty (no condition) or a boolean expression taken on
// trust; no further validation is applied.
func SanitizeCondition(raw string) string {
	s := strings.TrimSpace(raw)
	s = reasoningBlock.ReplaceAllString(s, "")
	s = stripLeadingWhere(strings.TrimSpace(s))
	s = stripCodeFences(s)
	s = lastNonEmptyLine(s)
	s = stripLeadingWhere(s)
	s = strings.TrimSpace(strings.TrimSuffix(s, ";"))
	return s
}

func stripLeadingWhere(s string) string {
	if len(s) > 5 && strings.EqualFold(s[:5], "where") && unicode.IsSpace(rune(s[5])) {
		return strings.TrimSpace(s[6:])
	}
	return s
}

func stripCodeFences(s string) string {
	if strings.HasPrefix(s, "```") {
		s = strings.TrimLeft(s, "`")
		// The rest of the fence line is the language tag.
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			s = s[i+1:]
		} else {
			s = ""
		}
	}
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSpace(strings.TrimRight(s, "`"))
	}
	return s
}

func lastNonEmptyLine(s string) string {
	lines := strings.Split(s, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
