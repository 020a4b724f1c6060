package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ignite/careertrack/internal/cryptox"
	"github.com/ignite/careertrack/internal/domain"
)

func newTestCipher(t *testing.T) *cryptox.Cipher {
	t.Helper()
	key := make([]byte, 32)
	c, err := cryptox.New(key)
	require.NoError(t, err)
	return c
}

func classifiedRow(t *testing.T, cipher *cryptox.Cipher, providerMessageID, userID string, stage domain.Stage, confidence int) domain.StagingRow {
	t.Helper()
	userEnc, err := cipher.Encrypt(userID)
	require.NoError(t, err)
	receivedEnc, err := cipher.Encrypt(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC).Format(time.RFC3339))
	require.NoError(t, err)
	appStage := string(stage)
	return domain.StagingRow{
		UserIDEnc:         userEnc,
		ReceivedAtEnc:     receivedEnc,
		Provider:          "google",
		ProviderMessageID: providerMessageID,
		Status:            domain.StatusAwaitTransfer,
		AppStage:          &appStage,
		ConfidenceScore:   &confidence,
		NeedsReview:       false,
	}
}

func TestTransfer_HappyPath(t *testing.T) {
	cipher := newTestCipher(t)
	staging := newFakeStagingRepo()
	applications := newFakeApplicationRepo()

	row := classifiedRow(t, cipher, "msg-1", "user-1", domain.StageApplied, 91)
	ids, err := staging.InsertBatch(context.Background(), []domain.StagingRow{row})
	require.NoError(t, err)
	require.Len(t, ids, 1)

	transfer := &Transfer{Staging: staging, Application: applications, Cipher: cipher}
	err = transfer.Run(context.Background(), domain.TaskEnvelope{TraceID: "t1", RowIDs: ids})
	require.NoError(t, err)

	appRow, ok := applications.byProviderMessageID("msg-1")
	require.True(t, ok)
	require.Equal(t, "user-1", appRow.UserUID)
	require.Equal(t, domain.StageApplied, appRow.AppStage)
	require.Equal(t, 91, appRow.StageConfidence)
	require.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), appRow.ReceivedAt)

	staged, ok := staging.get(ids[0])
	require.True(t, ok)
	require.Equal(t, domain.StatusPurge, staged.Status)
}

func TestTransfer_IdempotentOnReplay(t *testing.T) {
	cipher := newTestCipher(t)
	staging := newFakeStagingRepo()
	applications := newFakeApplicationRepo()

	row := classifiedRow(t, cipher, "msg-1", "user-1", domain.StageOffer, 77)
	ids, err := staging.InsertBatch(context.Background(), []domain.StagingRow{row})
	require.NoError(t, err)

	transfer := &Transfer{Staging: staging, Application: applications, Cipher: cipher}
	env := domain.TaskEnvelope{TraceID: "t1", RowIDs: ids}

	require.NoError(t, transfer.Run(context.Background(), env))
	require.NoError(t, transfer.Run(context.Background(), env))
	require.NoError(t, transfer.Run(context.Background(), env))

	require.Equal(t, 1, applications.count())
}

func TestTransfer_SkipsUnclassifiedRow(t *testing.T) {
	cipher := newTestCipher(t)
	staging := newFakeStagingRepo()
	applications := newFakeApplicationRepo()

	userEnc, err := cipher.Encrypt("user-1")
	require.NoError(t, err)
	ids, err := staging.InsertBatch(context.Background(), []domain.StagingRow{
		{UserIDEnc: userEnc, Provider: "google", ProviderMessageID: "msg-2", Status: domain.StatusAwaitTransfer},
	})
	require.NoError(t, err)

	transfer := &Transfer{Staging: staging, Application: applications, Cipher: cipher}
	err = transfer.Run(context.Background(), domain.TaskEnvelope{TraceID: "t1", RowIDs: ids})
	require.NoError(t, err)

	require.Equal(t, 0, applications.count())
	staged, ok := staging.get(ids[0])
	require.True(t, ok)
	require.Equal(t, domain.StatusAwaitTransfer, staged.Status)
}

func TestTransfer_DecryptFailureLeavesRowInPlace(t *testing.T) {
	cipherA := newTestCipher(t)
	cipherB := newTestCipher(t) // same all-zero key as cipherA; the scrambled ciphertext is what fails

	staging := newFakeStagingRepo()
	applications := newFakeApplicationRepo()

	row := classifiedRow(t, cipherA, "msg-3", "user-1", domain.StageApplied, 80)
	// force-scramble the ciphertext so the reader's cipher cannot open it
	row.UserIDEnc = append([]byte(nil), row.UserIDEnc...)
	row.UserIDEnc[0] ^= 0xFF

	ids, err := staging.InsertBatch(context.Background(), []domain.StagingRow{row})
	require.NoError(t, err)

	transfer := &Transfer{Staging: staging, Application: applications, Cipher: cipherB}
	err = transfer.Run(context.Background(), domain.TaskEnvelope{TraceID: "t1", RowIDs: ids})
	require.NoError(t, err)

	require.Equal(t, 0, applications.count())
	staged, ok := staging.get(ids[0])
	require.True(t, ok)
	require.Equal(t, domain.StatusAwaitTransfer, staged.Status)
}

func TestTransfer_EmptyBatchNoOp(t *testing.T) {
	cipher := newTestCipher(t)
	staging := newFakeStagingRepo()
	applications := newFakeApplicationRepo()

	transfer := &Transfer{Staging: staging, Application: applications, Cipher: cipher}
	err := transfer.Run(context.Background(), domain.TaskEnvelope{TraceID: "t1", RowIDs: nil})
	require.NoError(t, err)
	require.Equal(t, 0, applications.count())
}
