package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dimitrije/gather-api/internal/metrics"
	log "github.com/sirupsen/logrus"
)

type Handler interface {
	Deliver(ctx context.Context, job Job) error
}

// Pool drains a Queue with a fixed number of workers. Failed jobs are pushed
// back with an incremented attempt counter until maxAttempts is reached.
type Pool struct {
	queue       Queue
	handler     Handler
	workers     int
	maxAttempts int
	backoff     time.Duration
	wg          sync.WaitGroup
}

func NewPool(queue Queue, handler Handler, workers, maxAttempts int) *Pool {
	if workers < 1 {
		workers = 1
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Pool{
		queue:       queue,
		handler:     handler,
		workers:     workers,
		maxAttempts: maxAttempts,
		backoff:     time.Second,
	}
}

func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			p.work(ctx, id)
		}(i)
	}
	log.WithField("workers", p.workers).Info("Notification workers started")
}

// Wait blocks until every worker has returned.
func (p *Pool) Wait() {
	p.wg.Wait()
}

func (p *Pool) work(ctx context.Context, id int) {
	for {
		job, err := p.queue.Pop(ctx)
		if err != nil {
			if errors.Is(err, ErrQueueClosed) || ctx.Err() != nil {
				return
			}
			log.WithError(err).WithField("worker", id).Error("Failed to read notification queue")
			select {
			case <-ctx.Done():
				return
			case <-time.After(p.backoff):
			}
			continue
		}
		p.process(ctx, job)
	}
}

// process delivers a job, or every item of a batch job. Only the deliveries
// that failed with a retryable error are requeued.
func (p *Pool) process(ctx context.Context, job Job) {
	items := job.Items
	if !job.IsBatch() {
		items = []Job{job}
	}

	var retry []Job
	for _, item := range items {
		if !p.deliver(ctx, job, item) {
			retry = append(retry, item)
		}
	}
	if len(retry) == 0 {
		return
	}

	next := job
	next.Attempt++
	if job.IsBatch() {
		next.Items = retry
	}

	select {
	case <-ctx.Done():
		return
	case <-time.After(p.backoff * time.Duration(next.Attempt)):
	}
	if err := p.queue.Push(ctx, next); err != nil {
		log.WithError(err).WithField("job_id", job.ID).Error("Failed to requeue notification")
	}
}

// deliver reports false when the item should be retried.
func (p *Pool) deliver(ctx context.Context, job, item Job) bool {
	entry := log.WithFields(log.Fields{
		"job_id":   item.ID,
		"kind":     item.Kind,
		"channel":  item.Channel,
		"template": item.Template,
		"attempt":  job.Attempt + 1,
	})
	if job.IsBatch() {
		entry = entry.WithField("batch_id", job.ID)
	}

	err := p.handler.Deliver(ctx, item)
	if err == nil {
		metrics.NotificationsDelivered.WithLabelValues(string(item.Channel), "ok").Inc()
		entry.Debug("Notification delivered")
		return true
	}

	if errors.Is(err, ErrPermanent) || job.Attempt+1 >= p.maxAttempts {
		metrics.NotificationsDelivered.WithLabelValues(string(item.Channel), "failed").Inc()
		entry.WithError(err).Error("Notification dropped")
		return true
	}

	metrics.NotificationsDelivered.WithLabelValues(string(item.Channel), "retry").Inc()
	entry.WithError(err).Warn("Notification failed, retrying")
	return false
}
