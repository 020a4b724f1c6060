package worker

import (
	"context"
	"time"

	"github.com/ignite/careertrack/internal/domain"
	applog "github.com/ignite/careertrack/internal/pkg/logger"
	"github.com/ignite/careertrack/internal/queue"
)

// Stage is the common shape every pipeline stage worker implements: a
// single synchronous unit of work over one task envelope (spec §5,
// "Scheduling model"). Errors returned from Run leave the message
// undeleted so the broker redelivers it; nil means the task is done and
// the message is removed.
type Stage interface {
	Run(ctx context.Context, env domain.TaskEnvelope) error
}

// Runner long-polls one queue and hands each delivered envelope to a
// Stage, one at a time, following the same receive/process/delete loop as
// the teacher's tracking.Consumer. A task that returns an error is left in
// place for the broker's visibility timeout to redeliver (spec §5,
// "Cancellation and timeouts").
type Runner struct {
	Name    domain.QueueName
	Broker  queue.Broker
	Stage   Stage
	MaxMsgs int32

	// PollInterval bounds how often Receive is called when a broker
	// implementation does not itself long-poll (the fake broker in tests).
	// Production SQS brokers long-poll for up to 20s per Receive call, so
	// this only adds a small idle-loop delay.
	PollInterval time.Duration
}

// Run blocks, polling Name until ctx is canceled.
func (r *Runner) Run(ctx context.Context) {
	maxMsgs := r.MaxMsgs
	if maxMsgs <= 0 {
		maxMsgs = 10
	}
	interval := r.PollInterval
	if interval <= 0 {
		interval = time.Second
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		messages, err := r.Broker.Receive(ctx, r.Name, maxMsgs)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			applog.Error("runner: receive failed", "queue", r.Name, "error", err.Error())
			time.Sleep(interval)
			continue
		}

		if len(messages) == 0 {
			time.Sleep(interval)
			continue
		}

		for _, msg := range messages {
			r.process(ctx, msg)
		}
	}
}

func (r *Runner) process(ctx context.Context, msg queue.Message) {
	if remaining := msg.Envelope.Countdown; remaining > 0 {
		env := msg.Envelope
		env.Countdown = 0
		if err := r.Broker.EnqueueDelayed(ctx, r.Name, env, time.Duration(remaining)*time.Second); err != nil {
			applog.Trace(env.TraceID).Error("runner: re-enqueue of remaining countdown failed",
				"queue", r.Name, "error", err.Error())
			return
		}
		if err := r.Broker.Delete(ctx, r.Name, msg.Handle); err != nil {
			applog.Warn("runner: delete failed", "queue", r.Name, "error", err.Error())
		}
		return
	}
	if err := r.Stage.Run(ctx, msg.Envelope); err != nil {
		applog.Trace(msg.Envelope.TraceID).Error("runner: stage failed, leaving message for redelivery",
			"queue", r.Name, "error", err.Error())
		return
	}
	if err := r.Broker.Delete(ctx, r.Name, msg.Handle); err != nil {
		applog.Warn("runner: delete failed", "queue", r.Name, "error", err.Error())
	}
}
