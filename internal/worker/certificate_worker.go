package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/acequiz-backend/internal/config"
	"github.com/stemsi/acequiz-backend/internal/model"
)

const (
	CertificateBatchSize    = 50
	CertificateBatchTimeout = 2 * time.Second
	CertificatePollTimeout  = 1 * time.Second
)

// CertificateStore is the persistence side the worker writes to.
type CertificateStore interface {
	BulkInsert(ctx context.Context, batch []*model.CertificateRecord) error
	Insert(ctx context.Context, c *model.CertificateRecord) error
}

// CertificateWorker drains the certificate queue into the archive table.
type CertificateWorker struct {
	store CertificateStore
	rdb   *redis.Client
	log   zerolog.Logger
}

func NewCertificateWorker(store CertificateStore, rdb *redis.Client, log zerolog.Logger) *CertificateWorker {
	return &CertificateWorker{
		store: store,
		rdb:   rdb,
		log:   log.With().Str("component", "certificate_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *CertificateWorker) Start(ctx context.Context) {
	w.log.Info().Msg("CertificateWorker started")

	batch := make([]*model.CertificateRecord, 0, CertificateBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= CertificateBatchSize || time.Since(lastFlush) >= CertificateBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Int("pending", len(batch)).Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, CertificatePollTimeout, config.WorkerKey.PersistCertificatesQueue).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			rec, err := decodeRecord(item[1])
			if err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, rec)
		}
	}
}

func decodeRecord(raw string) (*model.CertificateRecord, error) {
	var rec model.CertificateRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ----------------------------------------------------------------
// Batch insert with per-record fallback
// ----------------------------------------------------------------

func (w *CertificateWorker) flushSafe(ctx context.Context, batch []*model.CertificateRecord) {
	if len(batch) == 0 {
		return
	}

	if err := w.store.BulkInsert(ctx, batch); err != nil {
		w.log.Warn().Err(err).Msg("bulk certificate insert failed, using fallback")

		for _, rec := range batch {
			if err := w.store.Insert(ctx, rec); err != nil {
				w.log.Error().Err(err).Str("serial", rec.Serial.String()).Msg("Insert failed, requeueing")
				raw, _ := json.Marshal(rec)
				w.rdb.RPush(ctx, config.WorkerKey.PersistCertificatesQueue, raw)
			}
		}
		return
	}

	w.log.Debug().Int("count", len(batch)).Msg("Certificates archived")
}
