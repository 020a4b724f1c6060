package domain

// QueueName identifies one of the pipeline's durable task queues.
type QueueName string

const (
	QueueInitialSync      QueueName = "gmail_initial_sync_queue"
	QueueFetchContent     QueueName = "gmail_fetch_content_queue"
	QueueRelevanceModel   QueueName = "relevance_model_queue"
	QueueClassification   QueueName = "classification_model_queue"
	QueueNERModel         QueueName = "ner_model_queue"
	QueueStagingToJobApps QueueName = "staging_to_job_apps_queue"
)

// MaxRetries bounds the number of times a stage will re-enqueue a row to
// itself before giving up and marking it FAILED_PERMANENTLY.
const MaxRetries = 3

// TaskEnvelope is the JSON payload carried by every inter-stage message.
// Stage-specific arguments travel in Args; row ownership and retry
// bookkeeping live in the shared fields so every consumer can reason about
// them without knowing the stage's concrete payload shape.
type TaskEnvelope struct {
	TraceID   string `json:"trace_id"`
	RowIDs    []string `json:"row_ids,omitempty"`
	Attempt   int    `json:"attempt"`
	Countdown int    `json:"countdown,omitempty"`

	// Args carries stage-specific payload not expressible as row ids alone
	// (e.g. the Dispatcher's user id / start date, the Fetcher's message id
	// batch and credential ciphertext).
	Args map[string]any `json:"args,omitempty"`
}
