package domain

import "time"

// Status is the lifecycle state of a StagingRow.
type Status string

const (
	StatusAwaitRelevance      Status = "AWAIT_RELEVANCE"
	StatusAwaitClassification Status = "AWAIT_CLASSIFICATION"
	StatusAwaitTransfer       Status = "AWAIT_TRANSFER"
	StatusRetry               Status = "RETRY"
	StatusPurge               Status = "PURGE"
	StatusFailedPermanently   Status = "FAILED_PERMANENTLY"
)

// validNextStatus encodes the monotonic status DAG from spec §3: a row may
// only move from its current status to one of the listed successors.
var validNextStatus = map[Status][]Status{
	StatusAwaitRelevance:      {StatusAwaitClassification, StatusPurge, StatusRetry, StatusFailedPermanently},
	StatusAwaitClassification: {StatusAwaitTransfer, StatusRetry, StatusFailedPermanently},
	StatusAwaitTransfer:       {StatusPurge, StatusFailedPermanently},
	StatusRetry:               {StatusAwaitRelevance, StatusAwaitClassification, StatusFailedPermanently},
}

// CanTransition reports whether moving from "from" to "to" is allowed by the
// status DAG. RETRY's allowed successors depend on which stage re-admits the
// row, so callers that re-queue a RETRY row pass the stage's own awaiting
// status as "to"; this function only rejects transitions that are never
// valid from any stage.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	nexts, ok := validNextStatus[from]
	if !ok {
		return false
	}
	for _, n := range nexts {
		if n == to {
			return true
		}
	}
	return false
}

// StagingRow is one ingested message awaiting or undergoing pipeline
// processing. Sensitive fields are ciphertext at rest; plaintext exists
// only in a worker's memory during processing.
type StagingRow struct {
	ID                        string    `json:"id" db:"id"`
	UserIDEnc                 []byte    `json:"-" db:"user_id_enc"`
	SubjectEnc                []byte    `json:"-" db:"subject_enc"`
	SenderEnc                 []byte    `json:"-" db:"sender_enc"`
	BodyEnc                   []byte    `json:"-" db:"body_enc"`
	ReceivedAtEnc             []byte    `json:"-" db:"received_at_enc"`
	TraceID                   string    `json:"trace_id" db:"trace_id"`
	Provider                  string    `json:"provider" db:"provider"`
	ProviderMessageID         string    `json:"provider_message_id" db:"provider_message_id"`
	Status                    Status    `json:"status" db:"status"`
	AppStage                  *string   `json:"app_stage,omitempty" db:"app_stage"`
	AppStageSecondary         *string   `json:"app_stage_secondary,omitempty" db:"app_stage_secondary"`
	ConfidenceScore           *int      `json:"confidence_score,omitempty" db:"confidence_score"`
	ConfidenceScoreSecondary  *int      `json:"confidence_score_secondary,omitempty" db:"confidence_score_secondary"`
	NeedsReview               bool      `json:"needs_review" db:"needs_review"`
	CreatedAt                 time.Time `json:"created_at" db:"created_at"`
}

// DecryptedEmail is the plaintext view of a StagingRow used internally by a
// stage while it holds the row in memory. It is never persisted.
type DecryptedEmail struct {
	ID         string
	UserID     string
	Subject    string
	Sender     string
	Body       string
	ReceivedAt string
}

// Stage is one of the five canonical application stages.
type Stage string

const (
	StageApplied   Stage = "Applied"
	StageInterview Stage = "Interview"
	StageOffer     Stage = "Offer"
	StageAccepted  Stage = "Accepted"
	StageRejected  Stage = "Rejected"
)

// ApplicationRow is one classified message in the canonical application
// table, keyed by ProviderMessageID.
type ApplicationRow struct {
	ProviderMessageID        string    `json:"provider_message_id" db:"provider_message_id"`
	UserUID                  string    `json:"user_uid" db:"user_uid"`
	AppStage                 Stage     `json:"app_stage" db:"app_stage"`
	StageConfidence          int       `json:"stage_confidence" db:"stage_confidence"`
	AppStageSecondary        *Stage    `json:"app_stage_secondary,omitempty" db:"app_stage_secondary"`
	StageConfidenceSecondary *int      `json:"stage_confidence_secondary,omitempty" db:"stage_confidence_secondary"`
	NeedsReview              bool      `json:"needs_review" db:"needs_review"`
	ProviderSource           string    `json:"provider_source" db:"provider_source"`
	RelevanceModelConfidence *int      `json:"relevance_model_confidence,omitempty" db:"relevance_model_confidence"`
	ReceivedAt               time.Time `json:"received_at" db:"received_at"`
	UpdatedAt                time.Time `json:"updated_at" db:"updated_at"`
	IsArchived               bool      `json:"is_archived" db:"is_archived"`
	IsDeleted                bool      `json:"is_deleted" db:"is_deleted"`
}
