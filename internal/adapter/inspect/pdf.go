// Package inspect derives a best-effort page count from raw upload bytes.
//
// Inspection never fails: anything that is not a structurally valid document
// of a recognized type yields the fallback page count. The parse runs against
// untrusted input and is bounded by a timeout so a hostile file cannot hang
// the intake pipeline.
package inspect

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/greenboard/eco-intake/internal/domain"
	"github.com/greenboard/eco-intake/internal/observability"
)

// Inspector implements domain.ContentInspector for PDF documents.
type Inspector struct {
	Timeout time.Duration
	conf    *model.Configuration
}

// New constructs an Inspector. A non-positive timeout defaults to 5s.
func New(timeout time.Duration) *Inspector {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Inspector{Timeout: timeout, conf: conf}
}

// Inspect returns the parsed page count for PDF content, or the fallback
// variant for any other media type, parse failure, or timeout.
func (i *Inspector) Inspect(ctx context.Context, data []byte, declaredMIME string) domain.Inspection {
	fallback := domain.Inspection{Pages: domain.FallbackPageCount, Parsed: false}
	if !isPDF(declaredMIME) && !mimetype.Detect(data).Is("application/pdf") {
		return fallback
	}

	ctx, cancel := context.WithTimeout(ctx, i.Timeout)
	defer cancel()

	type outcome struct {
		pages int
		err   error
	}
	ch := make(chan outcome, 1)
	go func() {
		n, err := api.PageCount(bytes.NewReader(data), i.conf)
		ch <- outcome{pages: n, err: err}
	}()

	lg := observability.LoggerFromContext(ctx)
	select {
	case <-ctx.Done():
		lg.Warn("page count parse timed out", slog.Duration("timeout", i.Timeout))
		return fallback
	case out := <-ch:
		if out.err != nil {
			lg.Warn("page count parse failed, using fallback", slog.Any("error", out.err))
			return fallback
		}
		if out.pages < 1 {
			return fallback
		}
		return domain.Inspection{Pages: out.pages, Parsed: true}
	}
}

func isPDF(mime string) bool {
	mime = strings.ToLower(strings.TrimSpace(mime))
	// strip parameters such as charset
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	return mime == "application/pdf"
}
