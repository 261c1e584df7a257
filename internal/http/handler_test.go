package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nurpe/logist-zp/internal/audit"
	"github.com/nurpe/logist-zp/internal/auth"
	"github.com/nurpe/logist-zp/internal/config"
	"github.com/nurpe/logist-zp/internal/excel"
	httphandler "github.com/nurpe/logist-zp/internal/http"
	"github.com/nurpe/logist-zp/internal/http/middleware"
	"github.com/nurpe/logist-zp/internal/metrics"
	"github.com/nurpe/logist-zp/internal/model"
	"github.com/nurpe/logist-zp/internal/pdf"
	"github.com/nurpe/logist-zp/internal/repository"
	"github.com/nurpe/logist-zp/internal/service"
	"github.com/nurpe/logist-zp/internal/testutil"
)

const testSecret = "test-secret"

type server struct {
	t      *testing.T
	router *gin.Engine
	db     *gorm.DB
	fleet  testutil.Fleet
	fx     *testutil.Fixtures
	tokens map[model.Role]string
}

func newServer(t *testing.T, ping func(context.Context) error) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	database := testutil.NewDB(t)
	log := zerolog.Nop()

	tripRepo := repository.NewTripRepository(database)
	sessionRepo := repository.NewSessionRepository(database)
	employeeRepo := repository.NewReferenceRepository[model.Employee](database)
	carrierRepo := repository.NewReferenceRepository[model.Carrier](database)
	buyerRepo := repository.NewReferenceRepository[model.Buyer](database)
	trail := audit.NewGormTrail(database)
	pdfGenerator, err := pdf.NewGenerator("")
	require.NoError(t, err)
	excelGenerator := excel.NewGenerator()
	m := metrics.New(prometheus.NewRegistry())

	settings := service.NewSettingsService(repository.NewSettingsRepository(database), log)
	services := httphandler.Services{
		Trips:     service.NewTripService(database, tripRepo, carrierRepo, trail, m),
		Sessions:  service.NewSessionService(database, sessionRepo, trail, m),
		Acts:      service.NewActService(database, repository.NewActRepository(database), tripRepo, buyerRepo, excelGenerator, pdfGenerator),
		Payroll:   service.NewPayrollService(database, repository.NewPayrollRepository(database), tripRepo, sessionRepo, settings, trail, excelGenerator, m, log),
		Advances:  service.NewAdvanceService(repository.NewAdvanceRepository(database), employeeRepo),
		Dashboard: service.NewDashboardService(repository.NewDashboardRepository(database), buyerRepo),
		Settings:  settings,
		References: httphandler.References{
			Employees: service.NewReferenceService("employee", employeeRepo),
			Buyers:    service.NewReferenceService("buyer", buyerRepo),
			Materials: service.NewReferenceService("material", repository.NewReferenceRepository[model.Material](database)),
		},
	}

	parser := auth.NewParser(testSecret)
	cfg := &config.Config{
		Environment: "test",
		HTTP:        config.HTTPConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}
	handler := httphandler.NewHandler(services, ping, log)
	router, err := httphandler.NewRouter(handler, middleware.Auth(parser), m, cfg)
	require.NoError(t, err)

	tokens := make(map[model.Role]string)
	for id, role := range []model.Role{model.RoleAdmin, model.RoleDispatcher, model.RoleAccountant} {
		token, err := parser.Issue(int64(id+1), role, time.Hour)
		require.NoError(t, err)
		tokens[role] = token
	}

	fx := testutil.NewFixtures(t, database)
	return &server{t: t, router: router, db: database, fleet: fx.Fleet(), fx: fx, tokens: tokens}
}

func (s *server) do(role model.Role, method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token, ok := s.tokens[role]; ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (s *server) tripBody(date, invoice string) map[string]any {
	return map[string]any{
		"trip_date":      date,
		"driver_id":      s.fleet.Driver.ID,
		"vehicle_id":     s.fleet.Vehicle.ID,
		"carrier_id":     s.fleet.Carrier.ID,
		"buyer_id":       s.fleet.Buyer.ID,
		"material_id":    s.fleet.Material.ID,
		"invoice_number": invoice,
		"volume_m3":      "12",
	}
}

func TestHealth(t *testing.T) {
	s := newServer(t, func(context.Context) error { return nil })
	rec := s.do("", http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))

	down := newServer(t, func(context.Context) error { return errors.New("db down") })
	rec = down.do("", http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	s := newServer(t, nil)
	rec := s.do("", http.MethodGet, "/trip-invoices", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTripLifecycleOverHTTP(t *testing.T) {
	s := newServer(t, nil)

	rec := s.do(model.RoleDispatcher, http.MethodPost, "/trip-invoices", s.tripBody("2024-03-05", "INV-1"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	trip := decode[model.TripInvoice](t, rec)
	assert.Equal(t, model.TripStatusDraft, trip.Status)
	assert.Equal(t, "15000", trip.TripPriceFixed.String())

	rec = s.do(model.RoleDispatcher, http.MethodPost, "/trip-invoices", s.tripBody("2024-03-05", "INV-1"))
	assert.Equal(t, http.StatusConflict, rec.Code)

	missingDate := s.tripBody("", "INV-2")
	delete(missingDate, "trip_date")
	rec = s.do(model.RoleDispatcher, http.MethodPost, "/trip-invoices", missingDate)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(model.RoleAccountant, http.MethodPost, "/trip-invoices", s.tripBody("2024-03-06", "INV-3"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	path := fmt.Sprintf("/trip-invoices/%d", trip.ID)
	rec = s.do(model.RoleDispatcher, http.MethodPost, path+"/confirm", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = s.do(model.RoleDispatcher, http.MethodPost, path+"/confirm", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(model.RoleDispatcher, http.MethodGet, "/trip-invoices?status=confirmed&date_from=2024-03-01&date_to=2024-03-31", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[model.Page[model.TripInvoiceView]](t, rec)
	require.Len(t, page.Items, 1)
	assert.Equal(t, s.fleet.Driver.FullName, page.Items[0].DriverName)

	rec = s.do(model.RoleDispatcher, http.MethodGet, "/trip-invoices?status=lost", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(model.RoleDispatcher, http.MethodGet, "/trip-invoices?date_from=March", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(model.RoleDispatcher, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do(model.RoleAdmin, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(model.RoleAdmin, http.MethodPost, path+"/void", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(model.RoleAdmin, http.MethodPost, "/trip-invoices/abc/void", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionsOverHTTP(t *testing.T) {
	s := newServer(t, nil)

	body := map[string]any{
		"operator_id":  s.fleet.Operator.ID,
		"machinery_id": s.fleet.Machinery.ID,
		"start_at":     "2024-03-05T08:00:00Z",
	}
	rec := s.do(model.RoleDispatcher, http.MethodPost, "/machinery-sessions", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	session := decode[model.MachinerySession](t, rec)

	rec = s.do(model.RoleDispatcher, http.MethodPost, "/machinery-sessions", body)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(model.RoleDispatcher, http.MethodGet, "/machinery-sessions/open", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	open := decode[model.Page[model.MachinerySessionView]](t, rec)
	require.Len(t, open.Items, 1)

	path := fmt.Sprintf("/machinery-sessions/%d/close", session.ID)
	rec = s.do(model.RoleDispatcher, http.MethodPost, path, map[string]any{"end_at": "2024-03-05T07:00:00Z"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(model.RoleDispatcher, http.MethodPost, path, map[string]any{"end_at": "2024-03-05T10:30:00Z", "fuel_liters": "25"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(model.RoleDispatcher, http.MethodGet, "/machinery-sessions?date_from=2024-03-01&date_to=2024-03-31", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	all := decode[model.Page[model.MachinerySessionView]](t, rec)
	require.Len(t, all.Items, 1)
	assert.Equal(t, "2.5", all.Items[0].PayHours.String())
}

func TestActsOverHTTP(t *testing.T) {
	s := newServer(t, nil)
	s.fx.TripWithVolume(s.fleet, model.NewDate(2024, time.March, 3), model.TripStatusConfirmed, 10)

	body := map[string]any{"buyer_id": s.fleet.Buyer.ID, "start_date": "2024-03-01", "end_date": "2024-03-31"}
	rec := s.do(model.RoleDispatcher, http.MethodPost, "/delivery-acts", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	act := decode[model.DeliveryAct](t, rec)
	assert.Equal(t, 1, act.TotalTrips)

	rec = s.do(model.RoleDispatcher, http.MethodPost, "/delivery-acts", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(model.RoleAccountant, http.MethodGet, fmt.Sprintf("/delivery-acts/%d", act.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	doc := decode[model.ActDocument](t, rec)
	assert.Len(t, doc.Trips, 1)

	rec = s.do(model.RoleAccountant, http.MethodGet, fmt.Sprintf("/delivery-acts/%d/export/pdf", act.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".pdf")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))

	rec = s.do(model.RoleAccountant, http.MethodGet, fmt.Sprintf("/delivery-acts/%d/export/excel", act.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")

	rec = s.do(model.RoleDispatcher, http.MethodGet, "/dashboard/buyers/"+fmt.Sprint(s.fleet.Buyer.ID)+"/pending", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	pending := decode[model.BuyerPending](t, rec)
	assert.Zero(t, pending.TripsCount)
}

func TestPayrollOverHTTP(t *testing.T) {
	s := newServer(t, nil)
	s.fx.Setting(model.SettingMachineryHourRate, "5000")
	s.fx.Trip(s.fleet, model.NewDate(2024, time.March, 3), model.TripStatusConfirmed)

	rec := s.do(model.RoleDispatcher, http.MethodPost, "/payroll/periods", map[string]any{"month": "2024/03"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(model.RoleDispatcher, http.MethodPost, "/payroll/periods", map[string]any{"month": "2024-03"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decode[service.GenerateResult](t, rec)
	require.Len(t, result.Lines, 1)
	periodPath := fmt.Sprintf("/payroll/periods/%d", result.Period.ID)

	rec = s.do(model.RoleDispatcher, http.MethodPatch, fmt.Sprintf("/payroll/lines/%d", result.Lines[0].ID),
		map[string]any{"manual_correction": "2000"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(model.RoleAccountant, http.MethodGet, periodPath+"/lines", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	lines := decode[[]model.PayrollLineView](t, rec)
	require.Len(t, lines, 1)
	assert.Equal(t, "17000", lines[0].PayableAmount.String())

	rec = s.do(model.RoleDispatcher, http.MethodPost, periodPath+"/close", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(model.RoleDispatcher, http.MethodPost, "/payroll/periods", map[string]any{"month": "2024-03"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	rec = s.do(model.RoleAccountant, http.MethodPost, periodPath+"/mark-paid", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(model.RoleAccountant, http.MethodGet, periodPath+"/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "payroll-2024-03.xlsx")

	rec = s.do(model.RoleAccountant, http.MethodGet, "/payroll/periods", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	periods := decode[[]model.PayrollPeriod](t, rec)
	require.Len(t, periods, 1)
	assert.Equal(t, model.PeriodStatusPaid, periods[0].Status)

	rec = s.do(model.RoleDispatcher, http.MethodDelete, periodPath, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestReferencesAndSettingsOverHTTP(t *testing.T) {
	s := newServer(t, nil)

	rec := s.do(model.RoleDispatcher, http.MethodPost, "/materials", map[string]any{"name": "Gravel", "is_active": true})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(model.RoleAdmin, http.MethodPost, "/materials", map[string]any{"name": "Gravel", "is_active": true})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	material := decode[model.Material](t, rec)

	rec = s.do(model.RoleAdmin, http.MethodPost, "/materials", map[string]any{"is_active": true})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(model.RoleAdmin, http.MethodDelete, fmt.Sprintf("/materials/%d", material.ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(model.RoleDispatcher, http.MethodGet, "/materials?active=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	active := decode[[]model.Material](t, rec)
	require.Len(t, active, 1)
	assert.Equal(t, s.fleet.Material.Name, active[0].Name)

	rec = s.do(model.RoleDispatcher, http.MethodGet, "/materials?active=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(model.RoleDispatcher, http.MethodPut, "/settings/"+model.SettingMachineryHourRate, map[string]any{"value": "6000"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do(model.RoleAdmin, http.MethodPut, "/settings/"+model.SettingMachineryHourRate, map[string]any{"value": "abc"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(model.RoleAdmin, http.MethodPut, "/settings/"+model.SettingMachineryHourRate, map[string]any{"value": "6000"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(model.RoleAdmin, http.MethodGet, "/settings/"+model.SettingMachineryHourRate, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "6000", decode[model.Setting](t, rec).Value)

	rec = s.do(model.RoleAdmin, http.MethodGet, "/carriers", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "unconfigured references are not mounted")
}

func TestMetricsEndpoint(t *testing.T) {
	s := newServer(t, nil)
	s.do(model.RoleDispatcher, http.MethodGet, "/trip-invoices", nil)

	rec := s.do("", http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "http_requests_total"))
}
