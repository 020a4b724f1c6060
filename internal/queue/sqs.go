package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/ignite/careertrack/internal/domain"
)

// maxNativeDelay is the SQS ceiling on DelaySeconds. Countdowns beyond it
// (the Relevance/Classifier stage's (2^(attempt-1))*60 backoff at higher
// attempt counts) are modeled as a chain of maxNativeDelay-second hops: the
// message is delivered, re-read by the same stage worker, and if its
// envelope still carries a future-due countdown it is re-enqueued with the
// remainder rather than processed (see Runner.process in
// internal/worker/runner.go).
const maxNativeDelay = 900 * time.Second

// queueURLs maps a logical queue name to its configured SQS URL.
type queueURLs map[domain.QueueName]string

// SQSBroker is the production Broker backed by AWS SQS, following the same
// SendMessage/ReceiveMessage/DeleteMessage polling shape the platform's
// tracking publisher/consumer pair uses.
type SQSBroker struct {
	client *sqs.Client
	urls   queueURLs
}

// NewSQSBroker builds a broker over the given client with the queue name
// to URL mapping resolved from configuration.
func NewSQSBroker(client *sqs.Client, urls map[domain.QueueName]string) *SQSBroker {
	return &SQSBroker{client: client, urls: urls}
}

// URLsFromConfig builds the queue-name-to-URL map from the pipeline's
// queue configuration block.
func URLsFromConfig(initialSync, fetchContent, relevance, classification, ner, transfer string) map[domain.QueueName]string {
	return map[domain.QueueName]string{
		domain.QueueInitialSync:      initialSync,
		domain.QueueFetchContent:     fetchContent,
		domain.QueueRelevanceModel:   relevance,
		domain.QueueClassification:   classification,
		domain.QueueNERModel:         ner,
		domain.QueueStagingToJobApps: transfer,
	}
}

func (b *SQSBroker) urlFor(queue domain.QueueName) (string, error) {
	url, ok := b.urls[queue]
	if !ok || url == "" {
		return "", fmt.Errorf("queue: no URL configured for %s", queue)
	}
	return url, nil
}

func (b *SQSBroker) Enqueue(ctx context.Context, queue domain.QueueName, env domain.TaskEnvelope) error {
	return b.EnqueueDelayed(ctx, queue, env, 0)
}

func (b *SQSBroker) EnqueueDelayed(ctx context.Context, queue domain.QueueName, env domain.TaskEnvelope, delay time.Duration) error {
	url, err := b.urlFor(queue)
	if err != nil {
		return err
	}

	body, err := marshalEnvelope(env)
	if err != nil {
		return fmt.Errorf("queue: marshal envelope: %w", err)
	}

	wait := delay
	if wait > maxNativeDelay {
		env.Countdown = int((delay - maxNativeDelay).Seconds())
		wait = maxNativeDelay
		body, err = marshalEnvelope(env)
		if err != nil {
			return fmt.Errorf("queue: marshal chained envelope: %w", err)
		}
	}

	_, err = b.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:     aws.String(url),
		MessageBody:  aws.String(body),
		DelaySeconds: int32(wait.Seconds()),
	})
	if err != nil {
		return fmt.Errorf("queue: send to %s: %w", queue, err)
	}
	return nil
}

func (b *SQSBroker) Receive(ctx context.Context, queue domain.QueueName, max int32) ([]Message, error) {
	url, err := b.urlFor(queue)
	if err != nil {
		return nil, err
	}

	out, err := b.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(url),
		MaxNumberOfMessages:  max,
		WaitTimeSeconds:      20,
		MessageSystemAttributeNames: []types.MessageSystemAttributeName{
			types.MessageSystemAttributeNameApproximateReceiveCount,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("queue: receive from %s: %w", queue, err)
	}

	messages := make([]Message, 0, len(out.Messages))
	for _, msg := range out.Messages {
		if msg.Body == nil || msg.ReceiptHandle == nil {
			continue
		}
		env, err := unmarshalEnvelope(*msg.Body)
		if err != nil {
			continue
		}
		messages = append(messages, Message{Envelope: env, Handle: *msg.ReceiptHandle})
	}
	return messages, nil
}

func (b *SQSBroker) Delete(ctx context.Context, queue domain.QueueName, handle string) error {
	url, err := b.urlFor(queue)
	if err != nil {
		return err
	}
	_, err = b.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(url),
		ReceiptHandle: aws.String(handle),
	})
	if err != nil {
		return fmt.Errorf("queue: delete from %s: %w", queue, err)
	}
	return nil
}
