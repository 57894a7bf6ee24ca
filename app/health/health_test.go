package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cosmossdk.io/log"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type HealthCheckTestSuite struct {
	suite.Suite
	checker *Checker
	router  *mux.Router
}

func TestHealthCheckTestSuite(t *testing.T) {
	suite.Run(t, new(HealthCheckTestSuite))
}

func (s *HealthCheckTestSuite) SetupTest() {
	cfg := DefaultConfig()
	cfg.CacheDuration = time.Hour
	s.checker = NewChecker(log.NewNopLogger(), cfg)
	s.router = mux.NewRouter()
	s.checker.RegisterRoutes(s.router)
}

func (s *HealthCheckTestSuite) get(path string) (*httptest.ResponseRecorder, HealthCheck) {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body HealthCheck
	if path != "/health" && path != "/metrics" {
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func (s *HealthCheckTestSuite) TestLiveness() {
	rec, _ := s.get("/health")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Require().Contains(rec.Body.String(), `"status":"ok"`)
}

func (s *HealthCheckTestSuite) TestReadyWithHealthyChecks() {
	s.checker.AddCheck("state", func(context.Context) error { return nil })
	s.checker.AddCheck("indexer", func(context.Context) error { return nil })

	rec, body := s.get("/health/ready")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Require().Equal(StatusHealthy, body.Status)
	s.Require().Len(body.Components, 2)
}

func (s *HealthCheckTestSuite) TestUnhealthyCheckFailsReadiness() {
	s.checker.AddCheck("state", func(context.Context) error { return errors.New("reserves not backed") })

	rec, body := s.get("/health/detailed")
	s.Require().Equal(http.StatusServiceUnavailable, rec.Code)
	s.Require().Equal(StatusUnhealthy, body.Status)
	s.Require().Equal("reserves not backed", body.Components["state"].Message)
}

func (s *HealthCheckTestSuite) TestReadyUsesCache() {
	calls := 0
	s.checker.AddCheck("state", func(context.Context) error {
		calls++
		return nil
	})

	s.get("/health/ready")
	s.get("/health/ready")
	s.Require().Equal(1, calls)

	s.get("/health/detailed")
	s.Require().Equal(2, calls)
}

func (s *HealthCheckTestSuite) TestMetricsEndpoint() {
	rec, _ := s.get("/metrics")
	s.Require().Equal(http.StatusOK, rec.Code)
}

func TestSlowCheckIsDegraded(t *testing.T) {
	c := NewChecker(log.NewNopLogger(), Config{
		MaxResponseTime: time.Millisecond,
		CheckTimeout:    time.Second,
	})
	c.AddCheck("slow", func(ctx context.Context) error {
		time.Sleep(10 * time.Millisecond)
		return nil
	})

	health := c.Check(context.Background(), true)
	require.Equal(t, StatusDegraded, health.Status)
}

func TestCheckTimeout(t *testing.T) {
	c := NewChecker(log.NewNopLogger(), Config{
		MaxResponseTime: time.Second,
		CheckTimeout:    5 * time.Millisecond,
	})
	c.AddCheck("stuck", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	health := c.Check(context.Background(), true)
	require.Equal(t, StatusUnhealthy, health.Status)
	require.Contains(t, health.Components["stuck"].Message, "deadline exceeded")
}

func TestOverallStatus(t *testing.T) {
	require.Equal(t, StatusHealthy, overallStatus(nil))
	require.Equal(t, StatusDegraded, overallStatus(map[string]ComponentHealth{
		"a": {Status: StatusHealthy}, "b": {Status: StatusDegraded},
	}))
	require.Equal(t, StatusUnhealthy, overallStatus(map[string]ComponentHealth{
		"a": {Status: StatusDegraded}, "b": {Status: StatusUnhealthy},
	}))
}
