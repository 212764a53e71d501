package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/acequiz-backend/internal/model"
)

// ErrCertificateNotFound is returned when no archived certificate matches.
var ErrCertificateNotFound = errors.New("certificate not found")

const certificateColumns = `serial, attempt_id, candidate_name, candidate_id, question_set_id,
	question_set_title, total_questions, correct, wrong, unattempted, score, result, issued_at`

// CertificateRepository handles the issued certificate archive.
type CertificateRepository struct {
	pool *pgxpool.Pool
}

// NewCertificateRepository creates a new CertificateRepository.
func NewCertificateRepository(pool *pgxpool.Pool) *CertificateRepository {
	return &CertificateRepository{pool: pool}
}

// GetBySerial retrieves one certificate.
func (r *CertificateRepository) GetBySerial(ctx context.Context, serial uuid.UUID) (*model.CertificateRecord, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+certificateColumns+`
		 FROM issued_certificates
		 WHERE serial = $1`, serial,
	)
	rec, err := scanCertificate(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCertificateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get certificate: %w", err)
	}
	return rec, nil
}

// ListByCandidate retrieves a candidate's certificates, newest first.
func (r *CertificateRepository) ListByCandidate(ctx context.Context, candidateID string) ([]model.CertificateRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+certificateColumns+`
		 FROM issued_certificates
		 WHERE candidate_id = $1
		 ORDER BY issued_at DESC`, candidateID,
	)
	if err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}
	defer rows.Close()

	var out []model.CertificateRecord
	for rows.Next() {
		rec, err := scanCertificate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan certificate: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// Insert stores a single certificate. Re-inserting a serial is a no-op.
func (r *CertificateRepository) Insert(ctx context.Context, c *model.CertificateRecord) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO issued_certificates (`+certificateColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 ON CONFLICT (serial) DO NOTHING`,
		c.Serial, c.AttemptID, c.CandidateName, c.CandidateID, string(c.QuestionSetID),
		c.QuestionSetTitle, c.TotalQuestions, c.Correct, c.Wrong, c.Unattempted,
		c.Score, string(c.Result), c.IssuedAt,
	)
	return err
}

// BulkInsert stores a batch in one statement using UNNEST.
func (r *CertificateRepository) BulkInsert(ctx context.Context, batch []*model.CertificateRecord) error {
	n := len(batch)
	if n == 0 {
		return nil
	}

	serials := make([]uuid.UUID, n)
	attempts := make([]uuid.UUID, n)
	names := make([]string, n)
	candidateIDs := make([]string, n)
	setIDs := make([]string, n)
	titles := make([]string, n)
	totals := make([]int, n)
	corrects := make([]int, n)
	wrongs := make([]int, n)
	unattempted := make([]int, n)
	scores := make([]float64, n)
	results := make([]string, n)
	issuedAts := make([]time.Time, n)

	for i, c := range batch {
		serials[i] = c.Serial
		attempts[i] = c.AttemptID
		names[i] = c.CandidateName
		candidateIDs[i] = c.CandidateID
		setIDs[i] = string(c.QuestionSetID)
		titles[i] = c.QuestionSetTitle
		totals[i] = c.TotalQuestions
		corrects[i] = c.Correct
		wrongs[i] = c.Wrong
		unattempted[i] = c.Unattempted
		scores[i] = c.Score
		results[i] = string(c.Result)
		issuedAts[i] = c.IssuedAt
	}

	query := `
		INSERT INTO issued_certificates (` + certificateColumns + `)
		SELECT * FROM UNNEST(
			$1::uuid[],
			$2::uuid[],
			$3::text[],
			$4::varchar[],
			$5::text[],
			$6::text[],
			$7::int[],
			$8::int[],
			$9::int[],
			$10::int[],
			$11::float8[],
			$12::varchar[],
			$13::timestamptz[]
		)
		ON CONFLICT (serial) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query,
		serials, attempts, names, candidateIDs, setIDs, titles,
		totals, corrects, wrongs, unattempted, scores, results, issuedAts,
	)
	return err
}

func scanCertificate(row pgx.Row) (*model.CertificateRecord, error) {
	var (
		c      model.CertificateRecord
		setID  string
		result string
	)
	err := row.Scan(&c.Serial, &c.AttemptID, &c.CandidateName, &c.CandidateID, &setID,
		&c.QuestionSetTitle, &c.TotalQuestions, &c.Correct, &c.Wrong, &c.Unattempted,
		&c.Score, &result, &c.IssuedAt)
	if err != nil {
		return nil, err
	}
	c.QuestionSetID = model.SetID(setID)
	c.Result = model.ResultLabel(result)
	return &c, nil
}
