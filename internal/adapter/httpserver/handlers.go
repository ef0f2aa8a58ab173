package httpserver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/greenboard/eco-intake/internal/adapter/observability"
	"github.com/greenboard/eco-intake/internal/config"
	"github.com/greenboard/eco-intake/internal/domain"
	"github.com/greenboard/eco-intake/internal/usecase"
)

// Server aggregates handler dependencies.
type Server struct {
	Cfg         config.Config
	Intake      usecase.IntakeService
	Stats       usecase.StatsService
	DBCheck     func(ctx context.Context) error
	BrokerCheck func(ctx context.Context) error
}

// NewServer constructs an HTTP server with all handlers and checks wired.
func NewServer(cfg config.Config, intake usecase.IntakeService, stats usecase.StatsService, dbCheck, brokerCheck func(context.Context) error) *Server {
	return &Server{Cfg: cfg, Intake: intake, Stats: stats, DBCheck: dbCheck, BrokerCheck: brokerCheck}
}

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() { vld = validator.New() })
	return vld
}

type submitForm struct {
	AssignmentID string `validate:"required,max=128"`
}

// SubmitHandler accepts one multipart submission: a `file` field and an
// `assignment_id` value, on behalf of the authenticated student.
func (s *Server) SubmitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := requireRole(r.Context(), RoleStudent)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		if !strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data") {
			writeError(w, r, fmt.Errorf("%w: content-type must be multipart/form-data", domain.ErrInvalidArgument), nil)
			return
		}

		maxBytes := s.Cfg.MaxUploadBytes()
		// Small headroom for the multipart framing around the capped file.
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1<<20)
		if err := r.ParseMultipartForm(maxBytes + 1<<20); err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "too large") {
				writeJSON(w, http.StatusRequestEntityTooLarge, errorEnvelope{
					Error:   "payload too large",
					Code:    "INVALID_ARGUMENT",
					Details: map[string]any{"max_mb": s.Cfg.MaxUploadMB},
				})
				return
			}
			writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err), nil)
			return
		}

		form := submitForm{AssignmentID: r.FormValue("assignment_id")}
		if err := getValidator().Struct(form); err != nil {
			writeError(w, r, fmt.Errorf("%w: assignment_id required", domain.ErrInvalidArgument), map[string]string{"field": "assignment_id"})
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: file required", domain.ErrInvalidArgument), map[string]string{"field": "file"})
			return
		}
		defer func() { _ = file.Close() }()

		data, err := io.ReadAll(file)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: file read: %v", domain.ErrInvalidArgument, err), nil)
			return
		}
		if int64(len(data)) > maxBytes {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorEnvelope{
				Error:   "payload too large",
				Code:    "INVALID_ARGUMENT",
				Details: map[string]any{"max_mb": s.Cfg.MaxUploadMB},
			})
			return
		}

		declared := header.Header.Get("Content-Type")
		if declared == "" {
			declared = mimetype.Detect(data).String()
		}

		res, err := s.Intake.Submit(r.Context(), usecase.SubmitInput{
			StudentID:    p.UserID,
			AssignmentID: form.AssignmentID,
			FileName:     header.Filename,
			DeclaredMIME: declared,
			Data:         data,
		})
		if err != nil {
			observability.RecordSubmissionFailure(stageFromError(err))
			writeError(w, r, err, nil)
			return
		}
		observability.RecordSubmission(res.Submission.PageCount, res.PageCountParsed)
		LoggerFrom(r).Info("submission recorded",
			slog.String("submission_id", res.Submission.ID),
			slog.String("assignment_id", res.Submission.AssignmentID),
			slog.Int("page_count", res.Submission.PageCount),
			slog.Bool("page_count_parsed", res.PageCountParsed),
		)

		writeJSON(w, http.StatusOK, map[string]any{
			"success":          true,
			"submission":       submissionPayload(res.Submission),
			"eco_update":       res.EcoUpdate,
			"plagiarism_score": res.PlagiarismScore,
		})
	}
}

func stageFromError(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "store submission file"):
		return "store"
	case strings.Contains(msg, "record submission"):
		return "record"
	default:
		return "validate"
	}
}

// SubmissionHandler returns one submission by id.
func (s *Server) SubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, err := s.Stats.Submission(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, submissionPayload(sub))
	}
}

// AssignmentSubmissionsHandler lists an assignment's submissions (faculty).
func (s *Server) AssignmentSubmissionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := requireRole(r.Context(), RoleFaculty); err != nil {
			writeError(w, r, err, nil)
			return
		}
		subs, err := s.Stats.AssignmentSubmissions(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		out := make([]map[string]any, 0, len(subs))
		for _, sub := range subs {
			out = append(out, submissionPayload(sub))
		}
		writeJSON(w, http.StatusOK, map[string]any{"submissions": out})
	}
}

// EcoStatsHandler returns a student's cumulative eco counters.
func (s *Server) EcoStatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := s.Stats.StudentEcoStats(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"student_id":          st.StudentID,
			"total_pages_saved":   st.TotalPagesSaved,
			"total_water_saved":   st.TotalWaterSavedL,
			"total_co2_prevented": st.TotalCO2PreventedKg,
		})
	}
}

// ReadyzHandler probes the database and the event broker.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	type check struct {
		Name    string `json:"name"`
		OK      bool   `json:"ok"`
		Details string `json:"details,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		checks := make([]check, 0, 2)
		if s.DBCheck != nil {
			if err := s.DBCheck(ctx); err != nil {
				checks = append(checks, check{Name: "db", OK: false, Details: err.Error()})
			} else {
				checks = append(checks, check{Name: "db", OK: true})
			}
		}
		if s.BrokerCheck != nil {
			if err := s.BrokerCheck(ctx); err != nil {
				checks = append(checks, check{Name: "broker", OK: false, Details: err.Error()})
			} else {
				checks = append(checks, check{Name: "broker", OK: true})
			}
		}
		ok := true
		for _, c := range checks {
			if !c.OK {
				ok = false
				break
			}
		}
		st := http.StatusOK
		if !ok {
			st = http.StatusServiceUnavailable
		}
		writeJSON(w, st, map[string]any{"checks": checks})
	}
}

func submissionPayload(s domain.Submission) map[string]any {
	return map[string]any{
		"id":              s.ID,
		"student_id":      s.StudentID,
		"assignment_id":   s.AssignmentID,
		"file_locator":    s.FileLocator,
		"file_name":       s.FileName,
		"mime":            s.MIME,
		"size":            s.Size,
		"page_count":      s.PageCount,
		"impact":          s.Impact,
		"integrity_score": s.IntegrityScore,
		"status":          string(s.Status),
		"created_at":      s.CreatedAt,
	}
}
