// Package usecase contains the application services of the intake pipeline.
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/greenboard/eco-intake/internal/domain"
	"github.com/greenboard/eco-intake/internal/observability"
)

// IntakeService orchestrates one submission from raw upload bytes to a
// durably recorded Submission with updated student counters.
type IntakeService struct {
	Subs      domain.SubmissionRepository
	Store     domain.FileStore
	Inspector domain.ContentInspector
	Scorer    domain.IntegrityScorer
	Notifier  domain.Notifier // optional, best-effort

	// MaxBytes caps one upload. Zero means no ceiling (the HTTP boundary
	// normally enforces its own first).
	MaxBytes int64

	// NotifyTimeout bounds the fire-and-forget event publish.
	NotifyTimeout time.Duration
}

// NewIntakeService wires the pipeline's collaborators.
func NewIntakeService(subs domain.SubmissionRepository, store domain.FileStore, insp domain.ContentInspector, scorer domain.IntegrityScorer, notifier domain.Notifier, maxBytes int64) IntakeService {
	return IntakeService{Subs: subs, Store: store, Inspector: insp, Scorer: scorer, Notifier: notifier, MaxBytes: maxBytes, NotifyTimeout: 5 * time.Second}
}

// SubmitInput is one upload plus its authenticated principal and target.
type SubmitInput struct {
	StudentID    string
	AssignmentID string
	FileName     string
	DeclaredMIME string
	Data         []byte
}

// SubmitResult is the full success triple; it is never partial.
type SubmitResult struct {
	Submission      domain.Submission
	EcoUpdate       domain.EcoImpact
	PlagiarismScore int
	PageCountParsed bool
}

// Submit runs the intake pipeline: validate, inspect, store, record, score.
//
// Inspection cannot fail the pipeline; a malformed document still produces a
// successful submission with the fallback page count. A storage or recording
// failure aborts with nothing committed (a storage write orphaned by a
// recording failure is reclaimed later by the sweeper). The integrity score
// has no data dependency on the stored file, so it is computed concurrently
// with the storage write and joined before the record insert.
func (s IntakeService) Submit(ctx context.Context, in SubmitInput) (SubmitResult, error) {
	if in.StudentID == "" || in.AssignmentID == "" {
		return SubmitResult{}, fmt.Errorf("%w: student and assignment required", domain.ErrInvalidArgument)
	}
	if len(in.Data) == 0 {
		return SubmitResult{}, fmt.Errorf("%w: file required", domain.ErrInvalidArgument)
	}
	if s.MaxBytes > 0 && int64(len(in.Data)) > s.MaxBytes {
		return SubmitResult{}, fmt.Errorf("%w: file exceeds %d bytes", domain.ErrInvalidArgument, s.MaxBytes)
	}

	insp := s.Inspector.Inspect(ctx, in.Data, in.DeclaredMIME)
	impact := domain.ComputeImpact(insp.Pages)

	scoreCh := make(chan int, 1)
	go func() { scoreCh <- s.Scorer.Score() }()

	locator, err := s.Store.Save(ctx, in.Data, in.FileName)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("store submission file: %w", err)
	}

	sub := domain.Submission{
		StudentID:      in.StudentID,
		AssignmentID:   in.AssignmentID,
		FileLocator:    locator,
		FileName:       in.FileName,
		MIME:           in.DeclaredMIME,
		Size:           int64(len(in.Data)),
		PageCount:      insp.Pages,
		Impact:         impact,
		IntegrityScore: <-scoreCh,
		Status:         domain.StatusSubmitted,
		CreatedAt:      time.Now().UTC(),
	}
	sub, err = s.Subs.CreateWithImpact(ctx, sub)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("record submission: %w", err)
	}

	s.notify(ctx, sub)

	return SubmitResult{
		Submission:      sub,
		EcoUpdate:       impact,
		PlagiarismScore: sub.IntegrityScore,
		PageCountParsed: insp.Parsed,
	}, nil
}

// notify emits the submission.created event without gating the response.
// The goroutine detaches from the request's cancellation but keeps its
// values so logs stay correlated.
func (s IntakeService) notify(ctx context.Context, sub domain.Submission) {
	if s.Notifier == nil {
		return
	}
	ev := domain.SubmissionCreatedEvent{
		SubmissionID: sub.ID,
		StudentID:    sub.StudentID,
		AssignmentID: sub.AssignmentID,
		PageCount:    sub.PageCount,
		WaterSavedL:  sub.Impact.WaterSavedL,
		CO2Prevented: sub.Impact.CO2PreventedKg,
		Timestamp:    sub.CreatedAt.Unix(),
	}
	bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.NotifyTimeout)
	go func() {
		defer cancel()
		defer func() {
			if rec := recover(); rec != nil {
				observability.LoggerFromContext(bg).Error("notifier panic", slog.Any("recover", rec))
			}
		}()
		s.Notifier.SubmissionCreated(bg, ev)
	}()
}
