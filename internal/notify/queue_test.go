package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryQueue_PushPop(t *testing.T) {
	q := NewMemoryQueue(4)
	ctx := context.Background()

	require.NoError(t, q.Push(ctx, Job{ID: "1"}, Job{ID: "2"}))
	assert.Equal(t, 2, q.Len())

	job, err := q.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1", job.ID)
}

func TestMemoryQueue_Full(t *testing.T) {
	q := NewMemoryQueue(1)
	ctx := context.Background()

	require.NoError(t, q.Push(ctx, Job{ID: "1"}))
	assert.ErrorIs(t, q.Push(ctx, Job{ID: "2"}), ErrQueueFull)
}

func TestMemoryQueue_PopHonoursContext(t *testing.T) {
	q := NewMemoryQueue(1)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := q.Pop(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMemoryQueue_Close(t *testing.T) {
	q := NewMemoryQueue(1)
	require.NoError(t, q.Close())
	require.NoError(t, q.Close())

	_, err := q.Pop(context.Background())
	assert.ErrorIs(t, err, ErrQueueClosed)
	assert.ErrorIs(t, q.Push(context.Background(), Job{}), ErrQueueClosed)
}

func TestQueueDispatcher_DispatchBatch(t *testing.T) {
	q := NewMemoryQueue(8)
	d := NewDispatcher(q)

	err := d.DispatchBatch(context.Background(), []Job{
		{Channel: ChannelEmail, Template: "group_invitation"},
		{Channel: ChannelMessage, Template: "friend_invitation"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, q.Len())

	job, _ := q.Pop(context.Background())
	assert.NotEmpty(t, job.ID)
	require.True(t, job.IsBatch())
	require.Len(t, job.Items, 2)
	assert.Equal(t, "group_invitation", job.Items[0].Template)
	assert.Equal(t, "friend_invitation", job.Items[1].Template)
	for _, item := range job.Items {
		assert.NotEmpty(t, item.ID)
	}
}

func TestQueueDispatcher_SingleJobNotWrapped(t *testing.T) {
	q := NewMemoryQueue(2)
	d := NewDispatcher(q)

	require.NoError(t, d.Dispatch(context.Background(), Job{ID: "only", Channel: ChannelEmail}))

	job, err := q.Pop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "only", job.ID)
	assert.False(t, job.IsBatch())
}

func TestMemoryQueue_PushIsAllOrNothing(t *testing.T) {
	q := NewMemoryQueue(2)
	ctx := context.Background()

	assert.ErrorIs(t, q.Push(ctx, Job{ID: "1"}, Job{ID: "2"}, Job{ID: "3"}), ErrQueueFull)
	assert.Equal(t, 0, q.Len())

	require.NoError(t, q.Push(ctx, Job{ID: "1"}))
	assert.ErrorIs(t, q.Push(ctx, Job{ID: "2"}, Job{ID: "3"}), ErrQueueFull)
	assert.Equal(t, 1, q.Len())
}

func TestQueueDispatcher_EmptyBatch(t *testing.T) {
	q := NewMemoryQueue(1)
	d := NewDispatcher(q)

	require.NoError(t, d.DispatchBatch(context.Background(), nil))
	assert.Equal(t, 0, q.Len())
}

func TestQueueDispatcher_QueueError(t *testing.T) {
	q := NewMemoryQueue(1)
	d := NewDispatcher(q)

	require.NoError(t, q.Push(context.Background(), Job{ID: "busy"}))

	err := d.DispatchBatch(context.Background(), []Job{{}, {}})
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.Equal(t, 1, q.Len())
}
