package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/dimitrije/gather-api/internal/database"
	"github.com/dimitrije/gather-api/internal/metrics"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

type StatusRecomputer interface {
	// RecomputeStatusIn recomputes the event's status through q and reports whether it changed.
	RecomputeStatusIn(ctx context.Context, q database.Querier, eventID uuid.UUID, now time.Time) (bool, error)
}

// Sweeper periodically claims due status checks and applies them. Claimed
// rows are locked with SKIP LOCKED so concurrent sweeps never share a check.
type Sweeper struct {
	db         *database.DB
	recomputer StatusRecomputer
	interval   time.Duration
	batchSize  int
	now        func() time.Time
	cron       *cron.Cron
}

func NewSweeper(db *database.DB, recomputer StatusRecomputer, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Sweeper{
		db:         db,
		recomputer: recomputer,
		interval:   interval,
		batchSize:  500,
		now:        time.Now,
	}
}

func (s *Sweeper) Start(ctx context.Context) error {
	s.cron = cron.New()
	_, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.interval), func() {
		if _, err := s.SweepOnce(ctx); err != nil {
			log.WithError(err).Error("Status sweep failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule status sweep: %w", err)
	}
	s.cron.Start()
	log.WithField("interval", s.interval.String()).Info("Status sweeper started")
	return nil
}

func (s *Sweeper) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// SweepOnce applies every check due at the current time and returns how many were applied.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	now := s.now()

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `
		SELECT id, event_id FROM event_status_checks
		WHERE fired_at IS NULL AND fire_at <= $1
		ORDER BY fire_at
		LIMIT $2
		FOR UPDATE SKIP LOCKED
	`, now, s.batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to claim status checks: %w", err)
	}

	var checkIDs []int64
	var eventIDs []uuid.UUID
	for rows.Next() {
		var id int64
		var eventID uuid.UUID
		if err := rows.Scan(&id, &eventID); err != nil {
			rows.Close()
			return 0, err
		}
		checkIDs = append(checkIDs, id)
		eventIDs = append(eventIDs, eventID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}
	metrics.StatusChecksPending.Set(float64(len(checkIDs)))
	if len(checkIDs) == 0 {
		return 0, nil
	}

	seen := make(map[uuid.UUID]bool, len(eventIDs))
	changed := 0
	for _, eventID := range eventIDs {
		if seen[eventID] {
			continue
		}
		seen[eventID] = true
		ok, err := s.recomputer.RecomputeStatusIn(ctx, tx, eventID, now)
		if err != nil {
			return 0, fmt.Errorf("failed to recompute status of event %s: %w", eventID, err)
		}
		if ok {
			changed++
		}
	}

	if _, err := tx.Exec(ctx, `UPDATE event_status_checks SET fired_at = $1 WHERE id = ANY($2)`, now, checkIDs); err != nil {
		return 0, fmt.Errorf("failed to mark status checks: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{"checks": len(checkIDs), "changed": changed}).Debug("Status sweep applied")
	return len(checkIDs), nil
}
