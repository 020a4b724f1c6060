package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripHTML(t *testing.T) {
	in := `<div>Hello <b>World</b><script>evil()</script></div>`
	out := StripHTML(in)
	assert.Contains(t, out, "Hello")
	assert.Contains(t, out, "World")
	assert.NotContains(t, out, "evil()")
}

func TestForClassifier_CollapsesAndLowercases(t *testing.T) {
	in := "<p>Thank YOU for   Applying</p>"
	out := ForClassifier(in)
	assert.Equal(t, "thank you for applying", out)
}

func TestForClassifier_NFKC(t *testing.T) {
	in := "café"
	out := ForClassifier(in)
	assert.Equal(t, "café", out)
}

func TestForClassifier_SubstitutesURLsAndEmails(t *testing.T) {
	in := "See https://example.com/jobs or reply to recruiter@example.com"
	out := ForClassifier(in)
	assert.Contains(t, out, "url")
	assert.Contains(t, out, "email_address")
	assert.NotContains(t, out, "example.com")
}
