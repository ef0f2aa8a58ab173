package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/greenboard/eco-intake/internal/domain"
)

// SubmissionRepo persists submissions and applies eco-counter deltas.
type SubmissionRepo struct {
	Pool PgxPool
	TB   Beginner
}

// NewSubmissionRepo constructs a SubmissionRepo with the given pool and
// transaction beginner.
func NewSubmissionRepo(p PgxPool, tb Beginner) *SubmissionRepo {
	return &SubmissionRepo{Pool: p, TB: tb}
}

// CreateWithImpact inserts the submission and increments the student's eco
// counters by the submission's impact in one transaction. Either both writes
// commit or neither does; the counter update is a relative delta applied by
// the store, never a read-modify-write.
func (r *SubmissionRepo) CreateWithImpact(ctx context.Context, s domain.Submission) (domain.Submission, error) {
	tracer := otel.Tracer("repo.submissions")
	ctx, span := tracer.Start(ctx, "submissions.CreateWithImpact")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "submissions"),
	)

	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.Status == "" {
		s.Status = domain.StatusSubmitted
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}

	tx, err := r.TB.Begin(ctx)
	if err != nil {
		return domain.Submission{}, fmt.Errorf("op=submission.begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	q := `INSERT INTO submissions
		(id, student_id, assignment_id, file_locator, file_name, mime, size, page_count, water_saved, co2_prevented, integrity_score, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`
	_, err = tx.Exec(ctx, q,
		s.ID, s.StudentID, s.AssignmentID, s.FileLocator, s.FileName, s.MIME, s.Size,
		s.PageCount, s.Impact.WaterSavedL, s.Impact.CO2PreventedKg, s.IntegrityScore,
		s.Status, s.CreatedAt)
	if err != nil {
		return domain.Submission{}, fmt.Errorf("op=submission.create: %w", err)
	}

	inc := `UPDATE students SET
		total_pages_saved = total_pages_saved + $2,
		total_water_saved = total_water_saved + $3,
		total_co2_prevented = total_co2_prevented + $4
		WHERE id = $1`
	tag, err := tx.Exec(ctx, inc, s.StudentID, s.Impact.Pages, s.Impact.WaterSavedL, s.Impact.CO2PreventedKg)
	if err != nil {
		return domain.Submission{}, fmt.Errorf("op=submission.increment_eco: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Submission{}, fmt.Errorf("op=submission.increment_eco: student %s: %w", s.StudentID, domain.ErrNotFound)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Submission{}, fmt.Errorf("op=submission.commit: %w", err)
	}
	return s, nil
}

// Get loads a submission by id.
func (r *SubmissionRepo) Get(ctx context.Context, id string) (domain.Submission, error) {
	tracer := otel.Tracer("repo.submissions")
	ctx, span := tracer.Start(ctx, "submissions.Get")
	defer span.End()
	q := `SELECT id, student_id, assignment_id, file_locator, file_name, mime, size, page_count, water_saved, co2_prevented, integrity_score, status, created_at
		FROM submissions WHERE id=$1`
	row := r.Pool.QueryRow(ctx, q, id)
	s, err := scanSubmission(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Submission{}, fmt.Errorf("op=submission.get: %w", domain.ErrNotFound)
		}
		return domain.Submission{}, fmt.Errorf("op=submission.get: %w", err)
	}
	return s, nil
}

// ListByAssignment returns all submissions for an assignment, newest first.
func (r *SubmissionRepo) ListByAssignment(ctx context.Context, assignmentID string) ([]domain.Submission, error) {
	tracer := otel.Tracer("repo.submissions")
	ctx, span := tracer.Start(ctx, "submissions.ListByAssignment")
	defer span.End()
	q := `SELECT id, student_id, assignment_id, file_locator, file_name, mime, size, page_count, water_saved, co2_prevented, integrity_score, status, created_at
		FROM submissions WHERE assignment_id=$1 ORDER BY created_at DESC`
	rows, err := r.Pool.Query(ctx, q, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("op=submission.list: %w", err)
	}
	defer rows.Close()
	var out []domain.Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("op=submission.list: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=submission.list: %w", err)
	}
	return out, nil
}

// LocatorExists reports whether any submission references the locator.
// Used by the orphan sweeper.
func (r *SubmissionRepo) LocatorExists(ctx context.Context, locator string) (bool, error) {
	q := `SELECT EXISTS(SELECT 1 FROM submissions WHERE file_locator=$1)`
	row := r.Pool.QueryRow(ctx, q, locator)
	var ok bool
	if err := row.Scan(&ok); err != nil {
		return false, fmt.Errorf("op=submission.locator_exists: %w", err)
	}
	return ok, nil
}

type rowScanner interface{ Scan(dest ...any) error }

func scanSubmission(row rowScanner) (domain.Submission, error) {
	var s domain.Submission
	err := row.Scan(&s.ID, &s.StudentID, &s.AssignmentID, &s.FileLocator, &s.FileName,
		&s.MIME, &s.Size, &s.PageCount, &s.Impact.WaterSavedL, &s.Impact.CO2PreventedKg,
		&s.IntegrityScore, &s.Status, &s.CreatedAt)
	if err != nil {
		return domain.Submission{}, err
	}
	s.Impact.Pages = s.PageCount
	return s, nil
}
