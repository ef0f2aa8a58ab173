package usecase

import (
	"context"
	"fmt"

	"github.com/greenboard/eco-intake/internal/domain"
)

// StatsService is the read side of the pipeline: submission lookups for the
// grading workflow and cumulative eco counters for profile display.
type StatsService struct {
	Subs     domain.SubmissionRepository
	Students domain.StudentRepository
}

// NewStatsService constructs a StatsService.
func NewStatsService(subs domain.SubmissionRepository, students domain.StudentRepository) StatsService {
	return StatsService{Subs: subs, Students: students}
}

// Submission loads one submission by id.
func (s StatsService) Submission(ctx context.Context, id string) (domain.Submission, error) {
	if id == "" {
		return domain.Submission{}, fmt.Errorf("%w: id required", domain.ErrInvalidArgument)
	}
	return s.Subs.Get(ctx, id)
}

// AssignmentSubmissions lists all submissions for an assignment.
func (s StatsService) AssignmentSubmissions(ctx context.Context, assignmentID string) ([]domain.Submission, error) {
	if assignmentID == "" {
		return nil, fmt.Errorf("%w: assignment id required", domain.ErrInvalidArgument)
	}
	return s.Subs.ListByAssignment(ctx, assignmentID)
}

// StudentEcoStats returns a student's cumulative eco counters.
func (s StatsService) StudentEcoStats(ctx context.Context, studentID string) (domain.EcoStats, error) {
	if studentID == "" {
		return domain.EcoStats{}, fmt.Errorf("%w: student id required", domain.ErrInvalidArgument)
	}
	return s.Students.EcoStats(ctx, studentID)
}
