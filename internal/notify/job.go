// Package notify delivers invitation and message notifications outside the request path.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/dimitrije/gather-api/internal/metrics"
	"github.com/google/uuid"
)

type Channel string

const (
	ChannelEmail   Channel = "email"
	ChannelMessage Channel = "message"
)

// Job is a single notification. Email jobs are addressed by To, message jobs by RecipientID.
// A batch job carries its deliveries in Items and is handled by one worker.
type Job struct {
	ID          string         `json:"id"`
	Kind        string         `json:"kind"`
	Channel     Channel        `json:"channel"`
	Template    string         `json:"template"`
	Subject     string         `json:"subject"`
	Data        map[string]any `json:"data"`
	To          []string       `json:"to,omitempty"`
	RecipientID uuid.UUID      `json:"recipient_id"`
	SenderID    *uuid.UUID     `json:"sender_id,omitempty"`
	Attempt     int            `json:"attempt"`
	Items       []Job          `json:"items,omitempty"`
}

// IsBatch reports whether the job wraps several deliveries.
func (j Job) IsBatch() bool {
	return len(j.Items) > 0
}

type Dispatcher interface {
	Dispatch(ctx context.Context, job Job) error
	DispatchBatch(ctx context.Context, jobs []Job) error
}

var ErrPermanent = errors.New("permanent delivery failure")

// Permanent marks err so the worker pool does not retry it.
func Permanent(err error) error {
	return fmt.Errorf("%w: %w", ErrPermanent, err)
}

type QueueDispatcher struct {
	queue Queue
}

func NewDispatcher(queue Queue) *QueueDispatcher {
	return &QueueDispatcher{queue: queue}
}

func (d *QueueDispatcher) Dispatch(ctx context.Context, job Job) error {
	return d.DispatchBatch(ctx, []Job{job})
}

// DispatchBatch enqueues jobs created together as one queue entry. A single
// job is enqueued as is.
func (d *QueueDispatcher) DispatchBatch(ctx context.Context, jobs []Job) error {
	if len(jobs) == 0 {
		return nil
	}
	for i := range jobs {
		if jobs[i].ID == "" {
			jobs[i].ID = uuid.NewString()
		}
	}
	entry := jobs[0]
	if len(jobs) > 1 {
		entry = Job{ID: uuid.NewString(), Kind: jobs[0].Kind, Items: jobs}
	}
	if err := d.queue.Push(ctx, entry); err != nil {
		return fmt.Errorf("failed to enqueue %d notifications: %w", len(jobs), err)
	}
	for _, j := range jobs {
		metrics.NotificationsQueued.WithLabelValues(string(j.Channel)).Inc()
	}
	return nil
}
