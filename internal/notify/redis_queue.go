package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// RedisQueue stores jobs in a Redis list so that several API processes share one worker backlog.
type RedisQueue struct {
	client     *redis.Client
	key        string
	popTimeout time.Duration
}

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

func NewRedisQueue(ctx context.Context, opts RedisOptions) (*RedisQueue, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	key := opts.Key
	if key == "" {
		key = "gather:notifications"
	}
	return &RedisQueue{client: client, key: key, popTimeout: 2 * time.Second}, nil
}

func (q *RedisQueue) Push(ctx context.Context, jobs ...Job) error {
	if len(jobs) == 0 {
		return nil
	}
	values := make([]interface{}, 0, len(jobs))
	for _, job := range jobs {
		data, err := json.Marshal(job)
		if err != nil {
			return fmt.Errorf("failed to encode job: %w", err)
		}
		values = append(values, data)
	}
	return q.client.LPush(ctx, q.key, values...).Err()
}

func (q *RedisQueue) Pop(ctx context.Context) (Job, error) {
	for {
		res, err := q.client.BRPop(ctx, q.popTimeout, q.key).Result()
		if errors.Is(err, redis.Nil) {
			if ctx.Err() != nil {
				return Job{}, ctx.Err()
			}
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return Job{}, ctx.Err()
			}
			return Job{}, err
		}

		var job Job
		if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
			log.WithError(err).WithField("queue", q.key).Warn("Dropping undecodable notification job")
			continue
		}
		return job, nil
	}
}

func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}

func (q *RedisQueue) Close() error {
	return q.client.Close()
}
