package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/acequiz-backend/internal/certificate"
	"github.com/stemsi/acequiz-backend/internal/config"
	"github.com/stemsi/acequiz-backend/internal/model"
	"github.com/stemsi/acequiz-backend/internal/repository"
)

// ErrArchiveUnavailable means the archive backends are not configured.
var ErrArchiveUnavailable = errors.New("certificate archive is not configured")

// CertificateService queues issued certificates for persistence and looks
// them up again, with Redis in front of Postgres.
type CertificateService struct {
	repo   *repository.CertificateRepository
	rdb    *redis.Client
	signer *certificate.Signer
	ttl    time.Duration
	log    zerolog.Logger
}

// NewCertificateService creates a new CertificateService. repo and rdb may
// be nil when the archive is disabled.
func NewCertificateService(
	repo *repository.CertificateRepository,
	rdb *redis.Client,
	signer *certificate.Signer,
	ttl time.Duration,
	log zerolog.Logger,
) *CertificateService {
	return &CertificateService{
		repo:   repo,
		rdb:    rdb,
		signer: signer,
		ttl:    ttl,
		log:    log.With().Str("component", "certificate_service").Logger(),
	}
}

// Archive caches the record and queues it for the persistence worker.
func (s *CertificateService) Archive(ctx context.Context, rec model.CertificateRecord) error {
	if s.rdb == nil {
		return ErrArchiveUnavailable
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal certificate: %w", err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, config.CacheKey.CertificateKey(rec.Serial.String()), raw, s.ttl)
	pipe.RPush(ctx, config.WorkerKey.PersistCertificatesQueue, raw)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("queue certificate: %w", err)
	}

	s.log.Debug().Str("serial", rec.Serial.String()).Msg("Certificate queued")
	return nil
}

// Lookup finds an archived certificate by serial.
func (s *CertificateService) Lookup(ctx context.Context, serial uuid.UUID) (*model.CertificateRecord, error) {
	if s.rdb == nil && s.repo == nil {
		return nil, ErrArchiveUnavailable
	}

	key := config.CacheKey.CertificateKey(serial.String())
	if s.rdb != nil {
		raw, err := s.rdb.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			var rec model.CertificateRecord
			if err := json.Unmarshal(raw, &rec); err == nil {
				return &rec, nil
			}
			s.log.Warn().Str("serial", serial.String()).Msg("Corrupt certificate cache entry")
		case !errors.Is(err, redis.Nil):
			s.log.Warn().Err(err).Msg("Certificate cache read failed")
		}
	}

	if s.repo == nil {
		return nil, repository.ErrCertificateNotFound
	}
	rec, err := s.repo.GetBySerial(ctx, serial)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if raw, err := json.Marshal(rec); err == nil {
			s.rdb.Set(ctx, key, raw, s.ttl)
		}
	}
	return rec, nil
}

// ListByCandidate returns a candidate's archived certificates, newest first.
func (s *CertificateService) ListByCandidate(ctx context.Context, candidateID string) ([]model.CertificateRecord, error) {
	if s.repo == nil {
		return nil, ErrArchiveUnavailable
	}
	recs, err := s.repo.ListByCandidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	if recs == nil {
		recs = []model.CertificateRecord{}
	}
	return recs, nil
}

// Verify checks a certificate verification token.
func (s *CertificateService) Verify(token string) (*certificate.Claims, error) {
	return s.signer.Verify(token)
}
