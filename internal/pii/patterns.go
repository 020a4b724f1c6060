package pii

import "regexp"

// Placeholder is the bracketed token substituted for one redacted category.
// The bracket form itself is the placeholder-preservation invariant's
// marker: once text contains "[CATEGORY]" no later layer re-scans it.
type Placeholder string

const (
	PlaceholderEmail      Placeholder = "[EMAIL]"
	PlaceholderURL        Placeholder = "[URL]"
	PlaceholderIPv4       Placeholder = "[IPV4]"
	PlaceholderIPv6       Placeholder = "[IPV6]"
	PlaceholderMAC        Placeholder = "[MAC]"
	PlaceholderSSN        Placeholder = "[SSN]"
	PlaceholderCreditCard Placeholder = "[CREDIT_CARD]"
	PlaceholderUUID       Placeholder = "[UUID]"
	PlaceholderDate       Placeholder = "[DATE]"
	PlaceholderZIP        Placeholder = "[ZIP]"
	PlaceholderAddress    Placeholder = "[ADDRESS]"
	PlaceholderHandle     Placeholder = "[HANDLE]"
	PlaceholderPerson     Placeholder = "[PERSON]"
	PlaceholderOrg        Placeholder = "[ORG]"
	PlaceholderLocation   Placeholder = "[LOCATION]"
	PlaceholderJWT        Placeholder = "[JWT]"
	PlaceholderStripeKey  Placeholder = "[STRIPE_KEY]"
	PlaceholderAWSKeyID   Placeholder = "[AWS_KEY_ID]"
	PlaceholderLicenseKey Placeholder = "[LICENSE_KEY]"
	PlaceholderAPIKey     Placeholder = "[API_KEY]"
	PlaceholderSecret     Placeholder = "[SECRET]"
	PlaceholderMoney      Placeholder = "[MONEY]"
	PlaceholderNum        Placeholder = "[NUM]"
	PlaceholderToken      Placeholder = "[TOKEN]"
)

const monthNames = `(?:January|February|March|April|May|June|July|August|September|October|November|December|Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Sept|Oct|Nov|Dec)`

// EmailPattern and URLPattern are exported so internal/normalize can reuse
// the exact same detection regexes for the Classifier's URL/email
// substitution step (spec §4.5 op 3), instead of maintaining a second,
// potentially divergent pair of patterns.
var (
	EmailPattern = regexp.MustCompile(`(?i)\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`)
	URLPattern   = regexp.MustCompile(`(?i)\b(?:https?://[^\s<>"']+|www\.[^\s<>"']+)`)
)

// layerOnePattern pairs a compiled regex with the placeholder it's
// substituted for. Order matters: this is the exact sequence applied by
// RedactLayerOne, matching the fixed-order invariant.
type layerOnePattern struct {
	name        string
	placeholder Placeholder
	re          *regexp.Regexp
}

// LayerOnePatterns is the ordered regex sweep for structured PII: email,
// URL, IPv4/IPv6, MAC, SSN, credit card, UUID, date, ZIP, street address,
// social handle. Shared with internal/normalize for URL/email substitution
// during classifier text prep.
var LayerOnePatterns = []layerOnePattern{
	{"EMAIL", PlaceholderEmail, EmailPattern},
	{"URL", PlaceholderURL, URLPattern},
	{"IPV4", PlaceholderIPv4, regexp.MustCompile(`\b(?:25[0-5]|2[0-4]\d|1?\d?\d)(?:\.(?:25[0-5]|2[0-4]\d|1?\d?\d)){3}\b`)},
	{"IPV6", PlaceholderIPv6, regexp.MustCompile(`\b(?:[A-Fa-f0-9]{1,4}:){2,7}[A-Fa-f0-9]{1,4}\b`)},
	{"MAC", PlaceholderMAC, regexp.MustCompile(`\b(?:[0-9A-Fa-f]{2}[:-]){5}[0-9A-Fa-f]{2}\b`)},
	{"SSN", PlaceholderSSN, regexp.MustCompile(`\b(?:000|666|9\d\d)?(?:\d{3})[- ]?\d{2}[- ]?\d{4}\b`)},
	{"CREDIT_CARD", PlaceholderCreditCard, regexp.MustCompile(`\b(?:\d[ -]?){13,19}\b`)},
	{"UUID", PlaceholderUUID, regexp.MustCompile(`\b[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}\b`)},
	{"DATE", PlaceholderDate, regexp.MustCompile(`(?i)\b(?:` + monthNames + `\s+\d{1,2}(?:st|nd|rd|th)?(?:,\s*\d{2,4})?|\d{1,2}(?:st|nd|rd|th)?\s+` + monthNames + `(?:,\s*\d{2,4})?|(?:0?[1-9]|1[0-2])[/\-](?:0?[1-9]|[12]\d|3[01])[/\-](?:19|20)\d{2}|(?:19|20)\d{2}[-/](?:0[1-9]|1[0-2])[-/](?:0[1-9]|[12]\d|3[01]))\b`)},
	{"ZIP", PlaceholderZIP, regexp.MustCompile(`\b\d{5}(?:-\d{4})?\b`)},
	{"ADDRESS", PlaceholderAddress, regexp.MustCompile(`(?i)\b\d{1,5}\s+(?:[A-Za-z0-9.#']+\s+){1,4}(?:Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Lane|Ln|Drive|Dr|Court|Ct|Parkway|Pkwy|Circle|Cir)\.?\b`)},
	{"HANDLE", PlaceholderHandle, regexp.MustCompile(`(?:^|[^\w])@[A-Za-z0-9_]{2,15}\b`)},
}

// AllPlaceholders lists every bracketed placeholder any layer can produce,
// used by the no-rescan invariant check.
var AllPlaceholders = []Placeholder{
	PlaceholderEmail, PlaceholderURL, PlaceholderIPv4, PlaceholderIPv6, PlaceholderMAC,
	PlaceholderSSN, PlaceholderCreditCard, PlaceholderUUID, PlaceholderDate, PlaceholderZIP,
	PlaceholderAddress, PlaceholderHandle, PlaceholderPerson, PlaceholderOrg, PlaceholderLocation,
	PlaceholderJWT, PlaceholderStripeKey, PlaceholderAWSKeyID, PlaceholderLicenseKey,
	PlaceholderAPIKey, PlaceholderSecret, PlaceholderMoney, PlaceholderNum, PlaceholderToken,
}
