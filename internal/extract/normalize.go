package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// leetMap is the fixed substitution table used to defeat simple character
// obfuscation ("0TP", "p1n"). It is applied only to the normalized copy used
// for request and tactic detection, never to entity extraction, which must
// report values exactly as written.
var leetMap = map[rune]rune{
	'0': 'o',
	'1': 'i',
	'3': 'e',
	'4': 'a',
	'5': 's',
	'7': 't',
	'8': 'b',
	'@': 'a',
}

// abbreviations expands the shorthand scammers lean on. Keys match whole
// words only.
var abbreviations = map[string]string{
	"acc":   "account",
	"acct":  "account",
	"no":    "number",
	"num":   "number",
	"pls":   "please",
	"plz":   "please",
	"u":     "you",
	"ur":    "your",
	"msg":   "message",
	"govt":  "government",
	"imp":   "important",
	"verif": "verification",
}

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	wordToken     = regexp.MustCompile(`[a-z0-9@]+`)

	writtenDigits = map[string]string{
		"zero": "0", "one": "1", "two": "2", "three": "3", "four": "4",
		"five": "5", "six": "6", "seven": "7", "eight": "8", "nine": "9",
	}
	writtenNumberRun = regexp.MustCompile(
		`(?i)\b(?:zero|one|two|three|four|five|six|seven|eight|nine)(?:\s+(?:zero|one|two|three|four|five|six|seven|eight|nine)){2,}\b`)
)

// Normalize lowercases, collapses whitespace, folds the leetspeak table and
// expands abbreviations. The result is for cue matching only.
func Normalize(text string) string {
	text = sanitize(text)
	text = strings.ToLower(text)

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if sub, ok := leetMap[r]; ok {
			b.WriteRune(sub)
		} else {
			b.WriteRune(r)
		}
	}
	text = whitespaceRun.ReplaceAllString(b.String(), " ")

	text = wordToken.ReplaceAllStringFunc(text, func(w string) string {
		if full, ok := abbreviations[w]; ok {
			return full
		}
		return w
	})
	return strings.TrimSpace(text)
}

// FoldWrittenNumbers rewrites spoken digit runs ("nine eight seven six five
// four three two one zero") into digit strings so the phone rule can see
// them. Runs shorter than three words are left alone.
func FoldWrittenNumbers(text string) string {
	return writtenNumberRun.ReplaceAllStringFunc(text, func(run string) string {
		words := strings.Fields(strings.ToLower(run))
		var digits strings.Builder
		for _, w := range words {
			digits.WriteString(writtenDigits[w])
		}
		return digits.String()
	})
}

// sanitize makes arbitrary input safe to scan. Malformed input degrades to
// something matchable or to the empty string; it never aborts the turn.
func sanitize(text string) string {
	if text == "" {
		return ""
	}
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, " ")
	}
	return text
}
