package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const QueueBomRecompute = "jobs:bom_recompute"

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type recomputePayload struct {
	RootID string `json:"root_id"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueRecompute pushes a cache re-warm job for one tree root. Called
// after a committed write; failures are the caller's to log, never to retry.
func (d *Dispatcher) EnqueueRecompute(ctx context.Context, rootID uuid.UUID) error {
	data, err := json.Marshal(recomputePayload{RootID: rootID.String()})
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(Job{Type: "bom_recompute", Payload: data})
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, QueueBomRecompute, encoded).Err()
}

// BomRecomputer recomputes and re-warms the aggregated BOM for a root.
// Implemented by the BOM service; declared here so the pool does not depend
// on the service package.
type BomRecomputer interface {
	Recompute(ctx context.Context, rootID uuid.UUID) error
}

// StartWorkerPool launches numWorkers goroutines consuming the recompute
// queue. Each goroutine blocks on BRPOP — zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, rec BomRecomputer, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, rec, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, rec BomRecomputer, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, QueueBomRecompute).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			handleJob(ctx, rec, id, []byte(result[1]))
		}
	}
}

func handleJob(ctx context.Context, rec BomRecomputer, workerID int, raw []byte) {
	var job Job
	if err := json.Unmarshal(raw, &job); err != nil {
		log.Error().Err(err).Int("worker", workerID).Msg("malformed job envelope")
		return
	}
	if job.Type != "bom_recompute" {
		log.Warn().Str("type", job.Type).Int("worker", workerID).Msg("unknown job type")
		return
	}
	var payload recomputePayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		log.Error().Err(err).Int("worker", workerID).Msg("malformed recompute payload")
		return
	}
	rootID, err := uuid.Parse(payload.RootID)
	if err != nil {
		log.Error().Err(err).Int("worker", workerID).Msg("invalid root id in recompute job")
		return
	}

	jobCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := rec.Recompute(jobCtx, rootID); err != nil {
		// Best-effort: the cache re-warms on the next read anyway.
		log.Error().Err(err).Str("root_id", payload.RootID).Int("worker", workerID).Msg("bom recompute failed")
	}
}
