// Package pii implements the five-layer PII redaction pipeline the
// Relevance stage runs on subject/body text before it reaches the model or
// is persisted (spec §4.3, §4.4): a regex sweep for structured PII, a
// pluggable NER pass, a secret/entropy sweep, a money/number sweep, and a
// final mixed-alphanumeric token sweep. Every layer obeys one invariant:
// once a span has been replaced with a bracketed placeholder, no later
// layer re-scans it.
package pii

import (
	"math"
	"regexp"
	"strings"
)

// Counts accumulates per-category redaction counts across every layer.
type Counts map[string]int

func (c Counts) add(category string, n int) {
	c[category] += n
}

var placeholderSpan = regexp.MustCompile(`\[[A-Z_]+\]`)

// protectedRanges returns the [start,end) byte ranges of every existing
// bracketed placeholder in text, so later layers can skip over them.
func protectedRanges(text string) [][2]int {
	locs := placeholderSpan.FindAllStringIndex(text, -1)
	return locs
}

func overlaps(start, end int, ranges [][2]int) bool {
	for _, r := range ranges {
		if start < r[1] && end > r[0] {
			return true
		}
	}
	return false
}

// RedactLayerOne sweeps the fixed, ordered list of structured-PII regexes
// (email, URL, IP, MAC, SSN, credit card, UUID, date, ZIP, address,
// handle), replacing each match with its placeholder. Matches that fall
// inside a placeholder produced earlier in this same pass are skipped.
func RedactLayerOne(text string) (string, Counts) {
	counts := Counts{}
	result := text

	for _, p := range LayerOnePatterns {
		protected := protectedRanges(result)
		matches := p.re.FindAllStringIndex(result, -1)
		if len(matches) == 0 {
			continue
		}

		var b strings.Builder
		last := 0
		n := 0
		for _, m := range matches {
			if overlaps(m[0], m[1], protected) {
				continue
			}
			b.WriteString(result[last:m[0]])
			b.WriteString(string(p.placeholder))
			last = m[1]
			n++
		}
		b.WriteString(result[last:])
		result = b.String()
		counts.add(p.name, n)
	}

	return result, counts
}

var (
	jwtPattern     = regexp.MustCompile(`eyJ[a-zA-Z0-9_-]{10,}\.eyJ[a-zA-Z0-9_-]{10,}\.[a-zA-Z0-9_-]{10,}`)
	stripeKeyPat   = regexp.MustCompile(`(?:sk|pk)_(?:live|test)_[a-zA-Z0-9]{20,40}`)
	awsKeyIDPat    = regexp.MustCompile(`AKIA[0-9A-Z]{16}`)
	licenseKeyPat  = regexp.MustCompile(`(?:[A-Z0-9]{4,6}-){3,}[A-Z0-9]{4,6}`)
	apiKeyLinePat  = regexp.MustCompile(`(?i)\bapi[_-]?key\b\s*[:=]\s*['"]?([a-zA-Z0-9_\-]{20,})['"]?`)
	genericSecret  = regexp.MustCompile(`[A-Za-z0-9_\-+/=]{24,}`)

	// secretKeyLinePat matches a key-named LHS assignment ("password:",
	// "token=", etc.) together with its value, so the whole line collapses
	// to "[SECRET] = [SECRET]" per spec. api_key is handled separately
	// above (value only, key name kept), so it's excluded here.
	secretKeyLinePat = regexp.MustCompile(`(?i)\b(?:password|passwd|pwd|secret|token|client[_-]?secret|access[_-]?token|refresh[_-]?token|auth[_-]?token|private[_-]?key|session[_-]?id)\b\s*[:=]\s*['"]?([A-Za-z0-9_\-+/.]{3,})['"]?`)
)

type secretPattern struct {
	name        string
	placeholder Placeholder
	re          *regexp.Regexp
}

var secretPatterns = []secretPattern{
	{"JWT", PlaceholderJWT, jwtPattern},
	{"STRIPE_KEY", PlaceholderStripeKey, stripeKeyPat},
	{"AWS_KEY_ID", PlaceholderAWSKeyID, awsKeyIDPat},
	{"LICENSE_KEY", PlaceholderLicenseKey, licenseKeyPat},
}

// RedactSecrets is layer 3: known-format credential patterns (JWT, Stripe
// key, AWS access key id, license key, an explicit "api_key: ..." line),
// then a generic high-Shannon-entropy token sweep for anything
// credential-shaped the named patterns missed. Entropy is plain byte-
// histogram Shannon entropy computed with the standard library's math.Log2
// (documented in DESIGN.md — no pack dependency offers an entropy
// primitive worth taking on for this).
func RedactSecrets(text string) (string, Counts) {
	counts := Counts{}
	result := text

	for _, p := range secretPatterns {
		protected := protectedRanges(result)
		matches := p.re.FindAllStringIndex(result, -1)
		if len(matches) == 0 {
			continue
		}
		var b strings.Builder
		last, n := 0, 0
		for _, m := range matches {
			if overlaps(m[0], m[1], protected) {
				continue
			}
			b.WriteString(result[last:m[0]])
			b.WriteString(string(p.placeholder))
			last = m[1]
			n++
		}
		b.WriteString(result[last:])
		result = b.String()
		counts.add(p.name, n)
	}

	// Explicit "api_key: VALUE" lines collapse just the value.
	protected := protectedRanges(result)
	if locs := apiKeyLinePat.FindAllStringSubmatchIndex(result, -1); len(locs) > 0 {
		var b strings.Builder
		last, n := 0, 0
		for _, loc := range locs {
			vs, ve := loc[2], loc[3]
			if vs < 0 || overlaps(vs, ve, protected) {
				continue
			}
			b.WriteString(result[last:vs])
			b.WriteString(string(PlaceholderAPIKey))
			last = ve
			n++
		}
		b.WriteString(result[last:])
		result = b.String()
		counts.add("API_KEY", n)
	}

	// Key-named LHS lines ("password:", "token=", etc.) collapse both sides
	// to "[SECRET] = [SECRET]".
	protected = protectedRanges(result)
	matchesLHS := secretKeyLinePat.FindAllStringIndex(result, -1)
	if len(matchesLHS) > 0 {
		var b strings.Builder
		last, n := 0, 0
		for _, m := range matchesLHS {
			if overlaps(m[0], m[1], protected) {
				continue
			}
			b.WriteString(result[last:m[0]])
			b.WriteString(string(PlaceholderSecret) + " = " + string(PlaceholderSecret))
			last = m[1]
			n++
		}
		b.WriteString(result[last:])
		result = b.String()
		counts.add("SECRET", n)
	}

	// Generic high-entropy token sweep.
	protected = protectedRanges(result)
	matches := genericSecret.FindAllStringIndex(result, -1)
	if len(matches) > 0 {
		var b strings.Builder
		last, n := 0, 0
		for _, m := range matches {
			if overlaps(m[0], m[1], protected) {
				continue
			}
			token := result[m[0]:m[1]]
			if isAllDigits(token) || shannonEntropy(token) < 3.2 {
				continue
			}
			b.WriteString(result[last:m[0]])
			b.WriteString(string(PlaceholderSecret))
			last = m[1]
			n++
		}
		b.WriteString(result[last:])
		result = b.String()
		counts.add("SECRET", n)
	}

	return result, counts
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func shannonEntropy(s string) float64 {
	if s == "" {
		return 0
	}
	freq := make(map[rune]int)
	for _, r := range s {
		freq[r]++
	}
	n := float64(len(s))
	var entropy float64
	for _, c := range freq {
		p := float64(c) / n
		entropy -= p * math.Log2(p)
	}
	return entropy
}

var (
	moneyPattern = regexp.MustCompile(`(?i)(?:USD|EUR|GBP|\$|€|£)\s*\d[\d,]*(?:\.\d+)?(?:K|M|B)?`)
	qtyPattern   = regexp.MustCompile(`(?i)\b\d+(?:\.\d+)?(?:K|M|B)\b`)
	pctPattern   = regexp.MustCompile(`\b\d+(?:\.\d+)?%`)
	plainNumPat  = regexp.MustCompile(`\b\d+(?:\.\d+)?\b`)
	ordinalPat   = regexp.MustCompile(`(?i)^\d+(st|nd|rd|th)$`)
)

// RedactMoneyAndNumbers is layer 4: currency amounts first, then bare
// numbers (skipping ordinals like "3rd"; a percentage operand becomes [NUM]
// and its '%' sign is kept after it).
func RedactMoneyAndNumbers(text string) (string, Counts) {
	counts := Counts{}
	result := replaceNonOverlapping(text, moneyPattern, string(PlaceholderMoney), counts, "MONEY", nil)
	result = replaceNonOverlapping(result, qtyPattern, "", counts, "NUM", func(match string) string {
		return string(PlaceholderNum) + match[len(match)-1:]
	})
	result = replaceNonOverlapping(result, pctPattern, "", counts, "NUM", func(string) string {
		return string(PlaceholderNum) + "%"
	})
	result = replaceNonOverlappingFiltered(result, plainNumPat, string(PlaceholderNum), counts, "NUM", func(match string) bool {
		return !ordinalPat.MatchString(match)
	})
	return result, counts
}

var mixedTokenPattern = regexp.MustCompile(`\b(?:[A-Za-z0-9][A-Za-z0-9\-_./]*[A-Za-z0-9]|[A-Za-z0-9])\b`)

// RedactMixedTokens is layer 5: any remaining alphanumeric token that mixes
// letters and digits (build IDs, ticket numbers, version strings) becomes
// [TOKEN], excluding ordinals and anything already bracketed.
func RedactMixedTokens(text string) (string, Counts) {
	counts := Counts{}
	protected := protectedRanges(text)
	matches := mixedTokenPattern.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return text, counts
	}

	var b strings.Builder
	last, n := 0, 0
	for _, m := range matches {
		token := text[m[0]:m[1]]
		if !hasLetterAndDigit(token) {
			continue
		}
		if ordinalPat.MatchString(token) {
			continue
		}
		if overlaps(m[0], m[1], protected) {
			continue
		}
		b.WriteString(text[last:m[0]])
		b.WriteString(string(PlaceholderToken))
		last = m[1]
		n++
	}
	b.WriteString(text[last:])
	counts.add("TOKEN", n)
	return b.String(), counts
}

func hasLetterAndDigit(s string) bool {
	var letter, digit bool
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digit = true
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			letter = true
		}
	}
	return letter && digit
}

// replaceNonOverlapping substitutes every non-protected match of re with
// replacement (or the result of transform(match) if transform is set).
func replaceNonOverlapping(text string, re *regexp.Regexp, replacement string, counts Counts, category string, transform func(string) string) string {
	protected := protectedRanges(text)
	matches := re.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return text
	}
	var b strings.Builder
	last, n := 0, 0
	for _, m := range matches {
		if overlaps(m[0], m[1], protected) {
			continue
		}
		b.WriteString(text[last:m[0]])
		if transform != nil {
			b.WriteString(transform(text[m[0]:m[1]]))
		} else {
			b.WriteString(replacement)
		}
		last = m[1]
		n++
	}
	b.WriteString(text[last:])
	counts.add(category, n)
	return b.String()
}

func replaceNonOverlappingFiltered(text string, re *regexp.Regexp, replacement string, counts Counts, category string, keep func(string) bool) string {
	protected := protectedRanges(text)
	matches := re.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return text
	}
	var b strings.Builder
	last, n := 0, 0
	for _, m := range matches {
		token := text[m[0]:m[1]]
		if !keep(token) {
			continue
		}
		if overlaps(m[0], m[1], protected) {
			continue
		}
		b.WriteString(text[last:m[0]])
		b.WriteString(replacement)
		last = m[1]
		n++
	}
	b.WriteString(text[last:])
	counts.add(category, n)
	return b.String()
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeWhitespace is the redactor's own normalization pass: whitespace
// collapse and lowercasing only. NFKC and HTML stripping belong to
// internal/normalize's Classifier pipeline, not here.
func NormalizeWhitespace(text string) string {
	text = whitespaceRun.ReplaceAllString(text, " ")
	return strings.TrimSpace(strings.ToLower(text))
}
