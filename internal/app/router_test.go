package app_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/greenboard/eco-intake/internal/adapter/httpserver"
	"github.com/greenboard/eco-intake/internal/app"
	"github.com/greenboard/eco-intake/internal/config"
	"github.com/greenboard/eco-intake/internal/usecase"
)

func TestParseOrigins(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"*"}, app.ParseOrigins(""))
	assert.Equal(t, []string{"*"}, app.ParseOrigins("*"))
	assert.Equal(t, []string{"*"}, app.ParseOrigins(" , ,"))
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, app.ParseOrigins("https://a.example, https://b.example"))
}

func TestBuildRouter_HealthAndSecurityHeaders(t *testing.T) {
	t.Parallel()
	cfg := config.Config{MaxUploadMB: 25, RateLimitPerMin: 30}
	srv := httpserver.NewServer(cfg, usecase.IntakeService{}, usecase.StatsService{}, nil, nil)
	h := app.BuildRouter(cfg, srv)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestBuildRouter_SubmitRequiresIdentity(t *testing.T) {
	t.Parallel()
	cfg := config.Config{MaxUploadMB: 25, RateLimitPerMin: 30}
	srv := httpserver.NewServer(cfg, usecase.IntakeService{}, usecase.StatsService{}, nil, nil)
	h := app.BuildRouter(cfg, srv)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/submissions", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBuildReadinessChecks(t *testing.T) {
	t.Parallel()
	dbCheck, brokerCheck := app.BuildReadinessChecks(nil, nil)
	assert.Error(t, dbCheck(context.Background()))
	assert.NoError(t, brokerCheck(context.Background()))

	dbCheck, brokerCheck = app.BuildReadinessChecks(pingOK{}, pingErr{})
	assert.NoError(t, dbCheck(context.Background()))
	assert.Error(t, brokerCheck(context.Background()))
}

type pingOK struct{}

func (pingOK) Ping(context.Context) error { return nil }

type pingErr struct{}

func (pingErr) Ping(context.Context) error { return errors.New("unreachable") }
