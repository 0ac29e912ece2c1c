package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recordingHandler struct {
	mu       sync.Mutex
	attempts map[string]int
	failN    int
	err      error
	done     chan string
}

func newRecordingHandler(failN int, err error) *recordingHandler {
	return &recordingHandler{attempts: map[string]int{}, failN: failN, err: err, done: make(chan string, 16)}
}

func (h *recordingHandler) Deliver(_ context.Context, job Job) error {
	h.mu.Lock()
	h.attempts[job.ID]++
	n := h.attempts[job.ID]
	h.mu.Unlock()

	if n <= h.failN {
		h.done <- "fail"
		return h.err
	}
	h.done <- "ok"
	return nil
}

func (h *recordingHandler) count(id string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.attempts[id]
}

func waitFor(t *testing.T, ch chan string, want string) {
	t.Helper()
	for {
		select {
		case got := <-ch:
			if got == want {
				return
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %q", want)
		}
	}
}

func TestPool_DeliversJobs(t *testing.T) {
	q := NewMemoryQueue(8)
	h := newRecordingHandler(0, nil)
	p := NewPool(q, h, 2, 3)

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)

	_ = q.Push(ctx, Job{ID: "a"})
	waitFor(t, h.done, "ok")

	cancel()
	p.Wait()
	assert.Equal(t, 1, h.count("a"))
}

func TestPool_RetriesUntilSuccess(t *testing.T) {
	q := NewMemoryQueue(8)
	h := newRecordingHandler(2, errors.New("smtp down"))
	p := NewPool(q, h, 1, 3)
	p.backoff = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)

	_ = q.Push(ctx, Job{ID: "a"})
	waitFor(t, h.done, "ok")

	cancel()
	p.Wait()
	assert.Equal(t, 3, h.count("a"))
}

func TestPool_StopsAfterMaxAttempts(t *testing.T) {
	q := NewMemoryQueue(8)
	h := newRecordingHandler(10, errors.New("smtp down"))
	p := NewPool(q, h, 1, 2)
	p.backoff = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)

	_ = q.Push(ctx, Job{ID: "a"})
	waitFor(t, h.done, "fail")
	waitFor(t, h.done, "fail")
	time.Sleep(20 * time.Millisecond)

	cancel()
	p.Wait()
	assert.Equal(t, 2, h.count("a"))
}

func TestPool_PermanentErrorNotRetried(t *testing.T) {
	q := NewMemoryQueue(8)
	h := newRecordingHandler(10, Permanent(errors.New("bad address")))
	p := NewPool(q, h, 1, 5)
	p.backoff = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)

	_ = q.Push(ctx, Job{ID: "a"})
	waitFor(t, h.done, "fail")
	time.Sleep(20 * time.Millisecond)

	cancel()
	p.Wait()
	assert.Equal(t, 1, h.count("a"))
}

func TestPool_ExitsWhenQueueClosed(t *testing.T) {
	q := NewMemoryQueue(1)
	p := NewPool(q, newRecordingHandler(0, nil), 3, 1)
	p.Start(context.Background())

	_ = q.Close()

	finished := make(chan struct{})
	go func() {
		p.Wait()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("workers did not exit")
	}
}

func TestPool_DeliversBatchInOneTask(t *testing.T) {
	q := NewMemoryQueue(8)
	h := newRecordingHandler(0, nil)
	p := NewPool(q, h, 1, 3)

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)

	_ = q.Push(ctx, Job{ID: "batch", Items: []Job{{ID: "a"}, {ID: "b"}, {ID: "c"}}})
	waitFor(t, h.done, "ok")
	waitFor(t, h.done, "ok")
	waitFor(t, h.done, "ok")

	cancel()
	p.Wait()
	assert.Equal(t, 1, h.count("a"))
	assert.Equal(t, 1, h.count("b"))
	assert.Equal(t, 1, h.count("c"))
	assert.Equal(t, 0, h.count("batch"))
}

type selectiveHandler struct {
	*recordingHandler
	failing string
}

func (h *selectiveHandler) Deliver(ctx context.Context, job Job) error {
	if job.ID == h.failing {
		return h.recordingHandler.Deliver(ctx, job)
	}
	h.mu.Lock()
	h.attempts[job.ID]++
	h.mu.Unlock()
	h.done <- "ok"
	return nil
}

func TestPool_BatchRetriesOnlyFailedItems(t *testing.T) {
	q := NewMemoryQueue(8)
	h := &selectiveHandler{recordingHandler: newRecordingHandler(1, errors.New("smtp down")), failing: "b"}
	p := NewPool(q, h, 1, 3)
	p.backoff = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)

	_ = q.Push(ctx, Job{ID: "batch", Items: []Job{{ID: "a"}, {ID: "b"}}})
	waitFor(t, h.done, "fail")
	waitFor(t, h.done, "ok")
	time.Sleep(20 * time.Millisecond)

	cancel()
	p.Wait()
	assert.Equal(t, 1, h.count("a"))
	assert.Equal(t, 2, h.count("b"))
}
