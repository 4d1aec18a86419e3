package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lingodesk/placement-backend/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	StatsBatchSize    = 50
	StatsBatchTimeout = 2 * time.Second
	StatsPollTimeout  = 1 * time.Second
)

// StatsWorker consumes persist_placements_queue after each submitted attempt
// and maintains the per-test level distribution counters. It also clears the
// attempt's Redis state, since nothing reads it after submission.
type StatsWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewStatsWorker creates a new StatsWorker.
func NewStatsWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *StatsWorker {
	return &StatsWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "stats_worker").Logger(),
	}
}

// PlacementPayload is one queued submission outcome.
type PlacementPayload struct {
	TestID       string `json:"test_id"`
	SessionToken string `json:"session_token"`
	Level        string `json:"level"`
	Skipped      bool   `json:"skipped"`
}

// Start begins the batching worker loop. Call in a goroutine.
func (w *StatsWorker) Start(ctx context.Context) {
	w.log.Info().Msg("StatsWorker started")

	batch := make([]*PlacementPayload, 0, StatsBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= StatsBatchSize || time.Since(lastFlush) >= StatsBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, StatsPollTimeout, config.WorkerKey.PersistPlacementsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var p PlacementPayload
			if err := json.Unmarshal([]byte(item[1]), &p); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &p)
		}
	}
}

func (w *StatsWorker) flushSafe(ctx context.Context, batch []*PlacementPayload) {
	if len(batch) == 0 {
		return
	}

	if err := w.bulkUpsertStats(ctx, batch); err != nil {
		w.log.Warn().Err(err).Msg("bulk stats upsert failed, using fallback")

		for _, p := range batch {
			if err := w.persistSingle(ctx, p); err != nil {
				w.log.Error().Err(err).Msg("persistSingle failed — requeueing")
				raw, _ := json.Marshal(p)
				w.rdb.RPush(ctx, config.WorkerKey.PersistPlacementsQueue, raw)
			}
		}
		return
	}

	// Counters are durable; the attempt's Redis state is no longer needed.
	w.bulkClearAttemptState(ctx, batch)
}

type statsKey struct {
	testID uuid.UUID
	level  string
}

// bulkUpsertStats aggregates the batch to one row per (test, level) first:
// Postgres rejects an INSERT ... ON CONFLICT whose source rows hit the same
// target row twice.
func (w *StatsWorker) bulkUpsertStats(ctx context.Context, batch []*PlacementPayload) error {
	counts := make(map[statsKey]int, len(batch))
	skips := make(map[statsKey]int, len(batch))
	for _, p := range batch {
		tID, err := uuid.Parse(p.TestID)
		if err != nil {
			return err
		}
		k := statsKey{testID: tID, level: p.Level}
		counts[k]++
		if p.Skipped {
			skips[k]++
		}
	}

	n := len(counts)
	testIDs := make([]uuid.UUID, 0, n)
	levels := make([]string, 0, n)
	taken := make([]int, 0, n)
	skipped := make([]int, 0, n)
	for k, c := range counts {
		testIDs = append(testIDs, k.testID)
		levels = append(levels, k.level)
		taken = append(taken, c)
		skipped = append(skipped, skips[k])
	}

	query := `
		INSERT INTO placement_stats (test_id, level, taken_count, skipped_count)
		SELECT u.test_id, u.level, u.taken, u.skipped
		FROM UNNEST(
			$1::uuid[],
			$2::text[],
			$3::int[],
			$4::int[]
		) AS u (test_id, level, taken, skipped)
		ON CONFLICT (test_id, level) DO UPDATE
		SET taken_count = placement_stats.taken_count + EXCLUDED.taken_count,
		    skipped_count = placement_stats.skipped_count + EXCLUDED.skipped_count,
		    updated_at = NOW()
	`

	_, err := w.pool.Exec(ctx, query, testIDs, levels, taken, skipped)
	return err
}

func (w *StatsWorker) bulkClearAttemptState(ctx context.Context, batch []*PlacementPayload) {
	pipe := w.rdb.Pipeline()

	for _, p := range batch {
		pipe.Del(ctx, config.CacheKey.AttemptMetaKey(p.SessionToken))
		pipe.Del(ctx, config.CacheKey.AttemptAnswersKey(p.SessionToken))
	}

	_, _ = pipe.Exec(ctx)
}

func (w *StatsWorker) persistSingle(ctx context.Context, p *PlacementPayload) error {
	tID, err := uuid.Parse(p.TestID)
	if err != nil {
		return err
	}

	skipped := 0
	if p.Skipped {
		skipped = 1
	}

	_, err = w.pool.Exec(ctx,
		`INSERT INTO placement_stats (test_id, level, taken_count, skipped_count)
		 VALUES ($1, $2, 1, $3)
		 ON CONFLICT (test_id, level) DO UPDATE
		 SET taken_count = placement_stats.taken_count + 1,
		     skipped_count = placement_stats.skipped_count + EXCLUDED.skipped_count,
		     updated_at = NOW()`,
		tID, p.Level, skipped,
	)
	return err
}
