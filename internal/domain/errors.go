package domain

import "errors"

// Sentinel error kinds per the error handling design (spec §7). Stage code
// wraps underlying causes with fmt.Errorf("...: %w", ErrX) so callers can
// branch on errors.Is without losing the original cause.
var (
	// ErrTransientProvider marks a provider error expected to clear up on
	// retry (HTTP 429/5xx, network failures).
	ErrTransientProvider = errors.New("transient provider error")

	// ErrPermanentProvider marks a provider error for a single message that
	// will never succeed (HTTP 404/410, revoked auth for that message).
	ErrPermanentProvider = errors.New("permanent provider error")

	// ErrDecryptFailed marks a per-row decrypt failure; the row is skipped
	// from the stage's output but left in place for investigation.
	ErrDecryptFailed = errors.New("decrypt failed")

	// ErrModelInference marks a model call failure; the row enters the
	// stage's retry set.
	ErrModelInference = errors.New("model inference error")

	// ErrLockNotAcquired names per-user slot lock contention. Nothing
	// returns it: distlock.SlotLock reports contention as
	// distlock.ErrNoSlotAvailable, which the Fetcher treats as a signal to
	// reschedule without consuming retry budget.
	ErrLockNotAcquired = errors.New("no lock slot available")

	// ErrNoCredential names a user with no credential on file. Nothing
	// returns it: the Dispatcher detects that case through
	// CredentialRepository.HasCredential and returns nil (no error surfaced).
	ErrNoCredential = errors.New("no credential on file")
)
