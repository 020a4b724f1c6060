// Command worker runs the mailbox ingestion pipeline: it starts one poll
// loop per queue stage (dispatch, fetch, relevance, classify, transfer)
// and shuts them down together on SIGINT/SIGTERM.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/redis/go-redis/v9"

	"github.com/ignite/careertrack/internal/config"
	"github.com/ignite/careertrack/internal/cryptox"
	"github.com/ignite/careertrack/internal/dbpool"
	"github.com/ignite/careertrack/internal/domain"
	"github.com/ignite/careertrack/internal/model"
	applog "github.com/ignite/careertrack/internal/pkg/logger"
	"github.com/ignite/careertrack/internal/pii"
	"github.com/ignite/careertrack/internal/provider/google"
	"github.com/ignite/careertrack/internal/queue"
	"github.com/ignite/careertrack/internal/ratelimit"
	"github.com/ignite/careertrack/internal/repository/postgres"
	"github.com/ignite/careertrack/internal/worker"
)

func main() {
	cfg, err := config.LoadFromEnv(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	applog.Info("worker starting",
		"model_backend", cfg.Model.Backend,
		"emails_per_batch", cfg.Pipeline.EmailsPerBatch,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runners, err := buildRunners(ctx, cfg)
	if err != nil {
		log.Fatalf("wire pipeline: %v", err)
	}

	var wg sync.WaitGroup
	for _, r := range runners {
		r := r
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Run(ctx)
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	applog.Info("worker shutting down")
	cancel()
	wg.Wait()
	applog.Info("worker stopped")
}

// buildRunners wires every stage worker from configuration and returns one
// Runner per queue, in dispatch order (spec §2's stage table).
func buildRunners(ctx context.Context, cfg *config.Config) ([]*worker.Runner, error) {
	db, err := dbpool.Open(cfg.Database)
	if err != nil {
		return nil, err
	}

	cipher, err := cryptox.NewFromBase64Key(cfg.Crypto.KeyBase64)
	if err != nil {
		return nil, err
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.URL})

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(cfg.Queue.Region))
	if err != nil {
		return nil, err
	}
	sqsClient := sqs.NewFromConfig(awsCfg)

	broker := queue.NewSQSBroker(sqsClient, queue.URLsFromConfig(
		cfg.Queue.InitialSyncURL, cfg.Queue.FetchContentURL, cfg.Queue.RelevanceModelURL,
		cfg.Queue.ClassificationURL, cfg.Queue.NERModelURL, cfg.Queue.StagingToJobAppsURL,
	))

	registry, err := model.NewRegistry(ctx, cfg.Model)
	if err != nil {
		return nil, err
	}

	credentialRepo := postgres.NewCredentialRepo(db)
	stagingRepo := postgres.NewStagingRepo(db)
	applicationRepo := postgres.NewApplicationRepo(db)

	mailProvider := google.New(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURI)
	limiter := ratelimit.New(redisClient)
	redactor := pii.New(registry.NER())

	dispatcher := &worker.Dispatcher{
		Credentials:    credentialRepo,
		Cipher:         cipher,
		Provider:       mailProvider,
		Broker:         broker,
		EmailsPerBatch: cfg.Pipeline.EmailsPerBatch,
	}
	fetcher := &worker.Fetcher{
		Redis:          redisClient,
		MaxSlots:       cfg.Pipeline.MaxSlotsPerUser,
		SlotTTL:        cfg.Pipeline.SlotTTL,
		RateLimiter:    limiter,
		Provider:       mailProvider,
		Cipher:         cipher,
		Staging:        stagingRepo,
		Broker:         broker,
		PostBatchSleep: cfg.Pipeline.PostBatchSleep,
	}
	relevance := &worker.Relevance{
		Staging:   stagingRepo,
		Cipher:    cipher,
		Redactor:  redactor,
		Scorer:    registry.Relevance(),
		Broker:    broker,
		Threshold: cfg.Pipeline.RelevanceThreshold,
	}
	classifier := &worker.Classifier{
		Staging:    stagingRepo,
		Cipher:     cipher,
		Classifier: registry.Classifier(),
		Broker:     broker,
		Threshold:  cfg.Pipeline.ClassificationThreshold,
	}
	transfer := &worker.Transfer{
		Staging:     stagingRepo,
		Application: applicationRepo,
		Cipher:      cipher,
	}

	return []*worker.Runner{
		{Name: domain.QueueInitialSync, Broker: broker, Stage: dispatcher, PollInterval: time.Second},
		{Name: domain.QueueFetchContent, Broker: broker, Stage: fetcher, PollInterval: time.Second},
		{Name: domain.QueueRelevanceModel, Broker: broker, Stage: relevance, PollInterval: time.Second},
		{Name: domain.QueueClassification, Broker: broker, Stage: classifier, PollInterval: time.Second},
		{Name: domain.QueueStagingToJobApps, Broker: broker, Stage: transfer, PollInterval: time.Second},
	}, nil
}
