// Package normalize prepares raw email text for the relevance and
// classification stages: HTML tag stripping via golang.org/x/net/html and
// Unicode normalization via golang.org/x/text/unicode/norm, the same two
// dependencies the platform pulls in for template rendering and feed
// parsing elsewhere in the stack, repurposed here for plain-text email
// bodies.
package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"

	"github.com/ignite/careertrack/internal/pii"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// StripHTML walks an HTML document and returns its visible text content,
// dropping script/style contents entirely.
func StripHTML(input string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(input))
	var b strings.Builder
	skipDepth := 0

	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			break
		}

		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := tokenizer.TagName()
			if tagName(name) == "script" || tagName(name) == "style" {
				skipDepth++
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if tagName(name) == "script" || tagName(name) == "style" {
				if skipDepth > 0 {
					skipDepth--
				}
			}
		case html.TextToken:
			if skipDepth == 0 {
				b.Write(tokenizer.Text())
				b.WriteByte(' ')
			}
		}
	}
	return b.String()
}

func tagName(b []byte) string {
	return strings.ToLower(string(b))
}

// ForClassifier applies the Classifier stage's fixed normalization
// pipeline (spec §4.5 op 3): HTML entity unescape + tag strip, URL and
// email substitution, NFKC normalization, whitespace collapse, lowercase,
// trim. The input is a decrypted stored field; the Relevance stage's PII
// redaction is not written back to staging, so this text has not been
// PII-redacted.
func ForClassifier(input string) string {
	text := StripHTML(input)
	text = pii.URLPattern.ReplaceAllString(text, " URL ")
	text = pii.EmailPattern.ReplaceAllString(text, " EMAIL_ADDRESS ")
	text = norm.NFKC.String(text)
	text = whitespaceRun.ReplaceAllString(text, " ")
	text = strings.ToLower(text)
	return strings.TrimSpace(text)
}
