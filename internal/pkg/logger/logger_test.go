package logger

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureStderr runs fn with os.Stderr swapped for a pipe and returns
// everything written to it.
func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	orig := os.Stderr
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stderr = w
	defer func() { os.Stderr = orig }()

	fn()

	require.NoError(t, w.Close())
	var buf bytes.Buffer
	_, err = io.Copy(&buf, r)
	require.NoError(t, err)
	return buf.String()
}

func TestLog_RedactsEmbeddedAddressInWarningField(t *testing.T) {
	SetRedactPII(true)
	defer SetRedactPII(true)

	out := captureStderr(t, func() {
		Warn("fetcher: skipping message",
			"provider_message_id", "msg-1",
			"warning", "message not found for jane.doe@example.com",
		)
	})

	assert.Contains(t, out, "ja***@example.com")
	assert.NotContains(t, out, "jane.doe@example.com")
}

func TestLog_NeverLogsRawRowIDsAsEmails(t *testing.T) {
	out := captureStderr(t, func() {
		Info("transfer: row has no classification, skipping", "row_id", "row-42")
	})
	assert.Contains(t, out, "row-42")
}

func TestLog_RedactPIIDisabledPassesThrough(t *testing.T) {
	SetRedactPII(false)
	defer SetRedactPII(true)

	out := captureStderr(t, func() {
		Warn("fetcher: skipping message", "warning", "bounced for jane.doe@example.com")
	})
	assert.True(t, strings.Contains(out, "jane.doe@example.com"))
}
