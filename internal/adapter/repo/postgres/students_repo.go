package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"

	"github.com/greenboard/eco-intake/internal/domain"
)

// StudentRepo reads per-student eco counters.
type StudentRepo struct{ Pool PgxPool }

// NewStudentRepo constructs a StudentRepo with the given pool.
func NewStudentRepo(p PgxPool) *StudentRepo { return &StudentRepo{Pool: p} }

// EcoStats loads the cumulative eco counters for a student.
func (r *StudentRepo) EcoStats(ctx context.Context, studentID string) (domain.EcoStats, error) {
	tracer := otel.Tracer("repo.students")
	ctx, span := tracer.Start(ctx, "students.EcoStats")
	defer span.End()
	q := `SELECT id, total_pages_saved, total_water_saved, total_co2_prevented FROM students WHERE id=$1`
	row := r.Pool.QueryRow(ctx, q, studentID)
	var st domain.EcoStats
	if err := row.Scan(&st.StudentID, &st.TotalPagesSaved, &st.TotalWaterSavedL, &st.TotalCO2PreventedKg); err != nil {
		if err == pgx.ErrNoRows {
			return domain.EcoStats{}, fmt.Errorf("op=student.eco_stats: %w", domain.ErrNotFound)
		}
		return domain.EcoStats{}, fmt.Errorf("op=student.eco_stats: %w", err)
	}
	return st, nil
}
