package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/flexprice/donorsync/internal/api/dto"
	v1 "github.com/flexprice/donorsync/internal/api/v1"
	"github.com/flexprice/donorsync/internal/config"
	ierr "github.com/flexprice/donorsync/internal/errors"
	"github.com/flexprice/donorsync/internal/logger"
	"github.com/flexprice/donorsync/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
)

type fakeReconciliation struct {
	bodies    [][]byte
	requestID string
	result    *dto.ReconciliationResult
	err       error
}

func (f *fakeReconciliation) ProcessDonationWebhook(ctx context.Context, body []byte) (*dto.ReconciliationResult, error) {
	f.bodies = append(f.bodies, body)
	f.requestID = types.GetRequestID(ctx)
	return f.result, f.err
}

func (f *fakeReconciliation) ProcessRecurringStatusWebhook(ctx context.Context, body []byte) (*dto.ReconciliationResult, error) {
	return f.ProcessDonationWebhook(ctx, body)
}

type RouterSuite struct {
	suite.Suite
	service *fakeReconciliation
	router  *gin.Engine
}

func TestRouter(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	log := logger.NewNopLogger()
	s.service = &fakeReconciliation{
		result: &dto.ReconciliationResult{Outcome: types.EventDonationRecorded},
	}
	s.router = NewRouter(Handlers{
		Health:  v1.NewHealthHandler(log),
		Webhook: v1.NewWebhookHandler(s.service, log),
	}, config.GetDefaultConfig(), log, nil)
}

func (s *RouterSuite) post(path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *RouterSuite) TestDonationWebhookSuccessIsEmpty200() {
	rec := s.post("/v1/webhooks/cardcom/donation", "UserEmail=dana%40example.org&suminfull=180", nil)

	s.Equal(http.StatusOK, rec.Code)
	s.Empty(rec.Body.String())
	s.Require().Len(s.service.bodies, 1)
	s.Equal("UserEmail=dana%40example.org&suminfull=180", string(s.service.bodies[0]))
	s.NotEmpty(rec.Header().Get(types.HeaderRequestID))
}

func (s *RouterSuite) TestDuplicateIsIndistinguishableFromSuccess() {
	s.service.result = &dto.ReconciliationResult{Outcome: types.EventDonationDuplicate}

	rec := s.post("/v1/webhooks/cardcom/donation", "RecurringOrderID=R1", nil)

	s.Equal(http.StatusOK, rec.Code)
	s.Empty(rec.Body.String())
}

func (s *RouterSuite) TestFailureReturns500WithErrorText() {
	tests := []struct {
		name string
		err  error
	}{
		{
			name: "validation",
			err:  ierr.NewError("missing field UserEmail").Mark(ierr.ErrValidation),
		},
		{
			name: "crm",
			err:  ierr.NewError("crm unavailable").Mark(ierr.ErrHTTPClient),
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.service.err = tt.err

			rec := s.post("/v1/webhooks/cardcom/donation", "", nil)

			s.Equal(http.StatusInternalServerError, rec.Code)
			s.Equal(tt.err.Error(), rec.Body.String())
		})
	}
}

func (s *RouterSuite) TestRecurringStatusWebhook() {
	s.service.result = &dto.ReconciliationResult{Outcome: types.EventRecurringStatusIgnored}

	rec := s.post("/v1/webhooks/cardcom/recurring", "RecordType=Other", nil)

	s.Equal(http.StatusOK, rec.Code)
	s.Empty(rec.Body.String())
}

func (s *RouterSuite) TestRequestIDIsPropagated() {
	rec := s.post("/v1/webhooks/cardcom/donation", "", map[string]string{types.HeaderRequestID: "req-123"})

	s.Equal("req-123", rec.Header().Get(types.HeaderRequestID))
	s.Equal("req-123", s.service.requestID)
}

func (s *RouterSuite) TestHealth() {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"status":"ok"}`, rec.Body.String())
}
