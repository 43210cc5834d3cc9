package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"machsafe/internal/alerts/aggregator"
	"machsafe/internal/alerts/ports"
	"machsafe/internal/alerts/sources"
	alertsMemory "machsafe/internal/alerts/store/memory"
	"machsafe/internal/audit/query"
	"machsafe/internal/audit/recorder"
	auditMemory "machsafe/internal/audit/store/memory"
	"machsafe/internal/identity"
	"machsafe/internal/jwttoken"
	notifService "machsafe/internal/notification/service"
	notifMemory "machsafe/internal/notification/store/memory"
)

// =============================================================================
// Router Test Suite
// =============================================================================
// Justification for these tests: the routes run the full middleware chain, so
// they cover what unit tests cannot: bearer-token enforcement and actor
// attribution flowing from the JWT into the services.

type RouterSuite struct {
	suite.Suite
	router      http.Handler
	rec         *recorder.Recorder
	alertsStore *alertsMemory.Store
	tenantID    uuid.UUID
	userID      uuid.UUID
	token       string
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	resolver := identity.NewContextResolver()

	s.tenantID = uuid.New()
	s.userID = uuid.New()

	jwtService := jwttoken.NewJWTService("test-signing-key", "machsafe", "machsafe-api")
	token, err := jwtService.GenerateAccessToken(s.userID, "ana@x.com", s.tenantID, time.Hour)
	s.Require().NoError(err)
	s.token = token

	s.alertsStore = alertsMemory.New()
	alerts, err := aggregator.New(resolver, []sources.Source{
		sources.NewExpiringReports(s.alertsStore),
		sources.NewPendingActions(s.alertsStore),
		sources.NewExpiringTrainings(s.alertsStore),
		sources.NewCriticalRisks(s.alertsStore),
	}, aggregator.WithLogger(logger))
	s.Require().NoError(err)

	auditStore := auditMemory.New()
	s.rec, err = recorder.New(auditStore, resolver, recorder.WithLogger(logger))
	s.Require().NoError(err)
	auditQuery, err := query.New(auditStore, resolver, query.WithLogger(logger))
	s.Require().NoError(err)

	notifications, err := notifService.New(notifMemory.New(), resolver, notifService.WithLogger(logger))
	s.Require().NoError(err)

	s.router = NewRouter(NewHandler(alerts, auditQuery, s.rec, notifications, jwtService, logger))
}

func (s *RouterSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+s.token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RouterSuite) TestHealthzIsOpen() {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Equal(http.StatusOK, w.Code)
}

func (s *RouterSuite) TestAPIRequiresToken() {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/alerts", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *RouterSuite) TestGetAllAlerts() {
	validUntil := time.Now().Add(20 * 24 * time.Hour)
	s.alertsStore.SeedReport(s.tenantID, alertsMemory.ReportEntry{
		ReportRow: ports.ReportRow{
			ID:          uuid.New(),
			MachineName: "Prensa Hidraulica 400T",
			ClientName:  "Metalurgica Sul",
			ValidUntil:  validUntil,
		},
		Status: alertsMemory.ReportStatusSigned,
	})

	w := s.do(http.MethodGet, "/api/v1/alerts", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var feed struct {
		Alerts []struct {
			Type     string `json:"type"`
			Severity string `json:"severity"`
		} `json:"alerts"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &feed))
	s.Require().Len(feed.Alerts, 1)
	s.Equal("REPORT_EXPIRING", feed.Alerts[0].Type)
	s.Equal("CRITICAL", feed.Alerts[0].Severity)
}

func (s *RouterSuite) TestRecordActionAttributesActorFromToken() {
	w := s.do(http.MethodPost, "/api/v1/audit/events", map[string]any{
		"action":         "SIGN",
		"entityType":     "report",
		"entityId":       "r-1",
		"entityName":     "Laudo Prensa 400",
		"changesSummary": "report signed",
	})
	s.Require().Equal(http.StatusAccepted, w.Code)

	s.rec.Drain(context.Background())

	w = s.do(http.MethodGet, "/api/v1/audit/events", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var resp struct {
		Events []struct {
			Action      string `json:"action"`
			ActorUserID string `json:"actorUserId"`
			ActorEmail  string `json:"actorEmail"`
		} `json:"events"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Require().Len(resp.Events, 1)
	s.Equal("SIGN", resp.Events[0].Action)
	s.Equal(s.userID.String(), resp.Events[0].ActorUserID)
	s.Equal("ana@x.com", resp.Events[0].ActorEmail)
}

func (s *RouterSuite) TestRecordActionRejectsUnknownAction() {
	w := s.do(http.MethodPost, "/api/v1/audit/events", map[string]any{
		"action":     "SHRED",
		"entityType": "report",
	})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *RouterSuite) TestAuditListRejectsMalformedDate() {
	w := s.do(http.MethodGet, "/api/v1/audit/events?startDate=yesterday", nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *RouterSuite) TestNotificationLifecycle() {
	w := s.do(http.MethodPost, "/api/v1/notifications/", map[string]any{
		"userId":   s.userID.String(),
		"type":     "REPORT_SIGNED",
		"title":    "Laudo assinado",
		"priority": "HIGH",
	})
	s.Require().Equal(http.StatusCreated, w.Code)

	var created struct {
		ID string `json:"id"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &created))

	w = s.do(http.MethodGet, "/api/v1/notifications/unread/count", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"count":1}`, w.Body.String())

	w = s.do(http.MethodPost, "/api/v1/notifications/"+created.ID+"/read", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var read struct {
		IsRead bool    `json:"isRead"`
		ReadAt *string `json:"readAt"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &read))
	s.True(read.IsRead)
	s.NotNil(read.ReadAt)

	w = s.do(http.MethodDelete, "/api/v1/notifications/"+created.ID, nil)
	s.Equal(http.StatusNoContent, w.Code)

	w = s.do(http.MethodDelete, "/api/v1/notifications/"+uuid.NewString(), nil)
	s.Equal(http.StatusNotFound, w.Code)
}
