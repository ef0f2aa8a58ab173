// Package domain holds the core entities and ports of the submission
// intake pipeline. It has no dependencies on adapters or transports.
package domain

import (
	"context"
	"errors"
	"time"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrInternal        = errors.New("internal error")
)

// SubmissionStatus enumerates the lifecycle of a submission. Intake only
// ever creates submissions in StatusSubmitted; grading owns the transition.
type SubmissionStatus string

const (
	StatusSubmitted SubmissionStatus = "submitted"
	StatusGraded    SubmissionStatus = "graded"
)

// Submission is the record created by a successful intake.
// Invariants: Impact == ComputeImpact(PageCount); IntegrityScore in
// [0, MaxIntegrityScore]; all fields immutable after creation except Status.
type Submission struct {
	ID             string
	StudentID      string
	AssignmentID   string
	FileLocator    string
	FileName       string
	MIME           string
	Size           int64
	PageCount      int
	Impact         EcoImpact
	IntegrityScore int
	Status         SubmissionStatus
	CreatedAt      time.Time
}

// EcoStats are a student's cumulative eco counters. Each successful
// submission increments them by exactly one impact triple; they never
// decrease.
type EcoStats struct {
	StudentID           string
	TotalPagesSaved     int64
	TotalWaterSavedL    float64
	TotalCO2PreventedKg float64
}

// Inspection is the result of content inspection. Parsed is false when the
// page count is the fallback value rather than derived from the document
// structure; the pipeline treats both variants as success.
type Inspection struct {
	Pages  int
	Parsed bool
}

// SubmissionCreatedEvent is emitted after a submission is durably recorded.
// Delivery is best-effort and at most once.
type SubmissionCreatedEvent struct {
	SubmissionID string  `json:"submission_id"`
	StudentID    string  `json:"student_id"`
	AssignmentID string  `json:"assignment_id"`
	PageCount    int     `json:"page_count"`
	WaterSavedL  float64 `json:"water_saved"`
	CO2Prevented float64 `json:"co2_prevented"`
	Timestamp    int64   `json:"timestamp"`
}

// Repositories (ports)

// SubmissionRepository persists submissions. CreateWithImpact must perform
// the record insert and the student counter increment as one atomic unit:
// either both are committed or neither is.
type SubmissionRepository interface {
	CreateWithImpact(ctx context.Context, s Submission) (Submission, error)
	Get(ctx context.Context, id string) (Submission, error)
	ListByAssignment(ctx context.Context, assignmentID string) ([]Submission, error)
	LocatorExists(ctx context.Context, locator string) (bool, error)
}

// StudentRepository reads per-student eco counters.
type StudentRepository interface {
	EcoStats(ctx context.Context, studentID string) (EcoStats, error)
}

// FileStore persists raw upload bytes and returns a stable locator.
// Save must never overwrite an existing object and must not leave a
// locator-reachable artifact behind on failure.
type FileStore interface {
	Save(ctx context.Context, data []byte, suggestedName string) (string, error)
}

// ContentInspector derives a page count from raw bytes. It never fails:
// unparseable or unrecognized content yields the fallback variant.
type ContentInspector interface {
	Inspect(ctx context.Context, data []byte, declaredMIME string) Inspection
}

// IntegrityScorer produces a bounded similarity score for a submission.
// The current implementation is a random stand-in; a real engine would
// take the stored file as input.
type IntegrityScorer interface {
	Score() int
}

// Notifier delivers submission events to interested listeners.
// Implementations must be best-effort: a delivery failure is logged, never
// surfaced to the pipeline.
type Notifier interface {
	SubmissionCreated(ctx context.Context, ev SubmissionCreatedEvent)
}
