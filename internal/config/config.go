// Package config loads pipeline configuration from an optional YAML file
// plus environment variable overrides, following the same layered approach
// as the platform's other services: a .env file for local secrets, a YAML
// file for structural defaults, and env vars as the final override.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the mailbox ingestion pipeline.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Queue     QueueConfig     `yaml:"queue"`
	Crypto    CryptoConfig    `yaml:"crypto"`
	Google    GoogleConfig    `yaml:"google"`
	Model     ModelConfig     `yaml:"model"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
}

// DatabaseConfig configures the Postgres connection pool. Sizes and
// lifetimes mirror the worker pool settings in spec §5.
type DatabaseConfig struct {
	URL             string        `yaml:"url"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
}

// RedisConfig configures the coordination store used for per-user slot
// locks and rate limiting.
type RedisConfig struct {
	URL string `yaml:"url"`
}

// QueueConfig maps each logical queue name to its SQS queue URL.
type QueueConfig struct {
	Region                string `yaml:"region"`
	InitialSyncURL        string `yaml:"initial_sync_url"`
	FetchContentURL       string `yaml:"fetch_content_url"`
	RelevanceModelURL     string `yaml:"relevance_model_url"`
	ClassificationURL     string `yaml:"classification_url"`
	NERModelURL           string `yaml:"ner_model_url"`
	StagingToJobAppsURL   string `yaml:"staging_to_job_apps_url"`
}

// CryptoConfig carries the symmetric key used to encrypt/decrypt sensitive
// staging fields. Key management itself is out of scope (spec §1); this is
// the narrow interface the rest of the pipeline depends on.
type CryptoConfig struct {
	KeyBase64 string `yaml:"key_base64"`
}

// GoogleConfig carries OAuth client credentials for the Gmail provider.
type GoogleConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURI  string `yaml:"redirect_uri"`
}

// ModelConfig points at the inference backends for relevance scoring,
// zero-shot classification, and NER. Region/ModelID are used when the
// Bedrock-backed implementations are selected; Endpoint is used for the
// HTTP-bridge fallback implementations.
type ModelConfig struct {
	Backend             string `yaml:"backend"` // "bedrock" | "http" | "fake"
	Region              string `yaml:"region"`
	RelevanceModelID    string `yaml:"relevance_model_id"`
	ClassificationModelID string `yaml:"classification_model_id"`
	Endpoint            string `yaml:"endpoint"`
}

// PipelineConfig holds the operational tunables named in spec §6.
type PipelineConfig struct {
	EmailsPerBatch          int           `yaml:"emails_per_batch"`
	MaxRetries              int           `yaml:"max_retries"`
	RelevanceThreshold      float64       `yaml:"relevance_threshold"`
	ClassificationThreshold float64       `yaml:"classification_threshold"`
	MaxSlotsPerUser         int           `yaml:"max_slots_per_user"`
	SlotTTL                 time.Duration `yaml:"slot_ttl"`
	PostBatchSleep          time.Duration `yaml:"post_batch_sleep"`
}

// Load reads and parses the YAML configuration file at path, applying
// defaults for any field left unset. A missing path is not an error when
// path is empty: every field falls back to its default or an environment
// override applied by LoadFromEnv.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 15
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 1
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 5 * time.Minute
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 60 * time.Second
	}
	if cfg.Queue.Region == "" {
		cfg.Queue.Region = "us-east-1"
	}
	if cfg.Model.Backend == "" {
		cfg.Model.Backend = "fake"
	}
	if cfg.Model.Region == "" {
		cfg.Model.Region = "us-east-1"
	}
	if cfg.Pipeline.EmailsPerBatch == 0 {
		cfg.Pipeline.EmailsPerBatch = 10
	}
	if cfg.Pipeline.MaxRetries == 0 {
		cfg.Pipeline.MaxRetries = 3
	}
	if cfg.Pipeline.RelevanceThreshold == 0 {
		cfg.Pipeline.RelevanceThreshold = 0.1
	}
	if cfg.Pipeline.ClassificationThreshold == 0 {
		cfg.Pipeline.ClassificationThreshold = 0.6
	}
	if cfg.Pipeline.MaxSlotsPerUser == 0 {
		cfg.Pipeline.MaxSlotsPerUser = 2
	}
	if cfg.Pipeline.SlotTTL == 0 {
		cfg.Pipeline.SlotTTL = 6 * time.Second
	}
	if cfg.Pipeline.PostBatchSleep == 0 {
		cfg.Pipeline.PostBatchSleep = 500 * time.Millisecond
	}
}

// LoadFromEnv loads the YAML file at path (if non-empty) and then applies
// environment variable overrides, including loading a local .env file first
// so secrets can live there in development.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	overrideString(&cfg.Database.URL, "DATABASE_URL")
	overrideString(&cfg.Redis.URL, "REDIS_URL")
	overrideString(&cfg.Crypto.KeyBase64, "ENCRYPTION_KEY")
	overrideString(&cfg.Google.ClientID, "GOOGLE_CLIENT_ID")
	overrideString(&cfg.Google.ClientSecret, "GOOGLE_CLIENT_SECRET")
	overrideString(&cfg.Google.RedirectURI, "GOOGLE_REDIRECT_URI")
	overrideString(&cfg.Queue.Region, "AWS_REGION")
	overrideString(&cfg.Queue.InitialSyncURL, "QUEUE_INITIAL_SYNC_URL")
	overrideString(&cfg.Queue.FetchContentURL, "QUEUE_FETCH_CONTENT_URL")
	overrideString(&cfg.Queue.RelevanceModelURL, "QUEUE_RELEVANCE_MODEL_URL")
	overrideString(&cfg.Queue.ClassificationURL, "QUEUE_CLASSIFICATION_URL")
	overrideString(&cfg.Queue.NERModelURL, "QUEUE_NER_MODEL_URL")
	overrideString(&cfg.Queue.StagingToJobAppsURL, "QUEUE_STAGING_TO_JOB_APPS_URL")
	overrideString(&cfg.Model.Backend, "MODEL_BACKEND")
	overrideString(&cfg.Model.Endpoint, "MODEL_ENDPOINT")

	if v := os.Getenv("RELEVANCE_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Pipeline.RelevanceThreshold = f
		}
	}
	if v := os.Getenv("CLASSIFICATION_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Pipeline.ClassificationThreshold = f
		}
	}
	if v := os.Getenv("EMAILS_PER_BATCH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Pipeline.EmailsPerBatch = n
		}
	}
	if v := os.Getenv("MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Pipeline.MaxRetries = n
		}
	}
	if v := os.Getenv("MAX_SLOTS_PER_USER"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Pipeline.MaxSlotsPerUser = n
		}
	}

	return cfg, nil
}

func overrideString(dst *string, envVar string) {
	if v := os.Getenv(envVar); v != "" {
		*dst = v
	}
}
