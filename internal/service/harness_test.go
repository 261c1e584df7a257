package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nurpe/logist-zp/internal/audit"
	"github.com/nurpe/logist-zp/internal/excel"
	"github.com/nurpe/logist-zp/internal/model"
	"github.com/nurpe/logist-zp/internal/pdf"
	"github.com/nurpe/logist-zp/internal/repository"
	"github.com/nurpe/logist-zp/internal/testutil"
)

type harness struct {
	ctx   context.Context
	db    *gorm.DB
	fx    *testutil.Fixtures
	fleet testutil.Fleet

	trips     *TripService
	sessions  *SessionService
	acts      *ActService
	payroll   *PayrollService
	advances  *AdvanceService
	dashboard *DashboardService
	settings  *SettingsService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	database := testutil.NewDB(t)
	return newHarnessWithTrail(t, database, audit.NewGormTrail(database))
}

func newHarnessWithTrail(t *testing.T, database *gorm.DB, trail audit.Trail) *harness {
	t.Helper()

	log := zerolog.Nop()
	tripRepo := repository.NewTripRepository(database)
	sessionRepo := repository.NewSessionRepository(database)
	employees := repository.NewReferenceRepository[model.Employee](database)
	carriers := repository.NewReferenceRepository[model.Carrier](database)
	buyers := repository.NewReferenceRepository[model.Buyer](database)
	settings := NewSettingsService(repository.NewSettingsRepository(database), log)

	pdfGenerator, err := pdf.NewGenerator("")
	require.NoError(t, err)
	excelGenerator := excel.NewGenerator()

	fx := testutil.NewFixtures(t, database)
	return &harness{
		ctx:       context.Background(),
		db:        database,
		fx:        fx,
		fleet:     fx.Fleet(),
		trips:     NewTripService(database, tripRepo, carriers, trail, nil),
		sessions:  NewSessionService(database, sessionRepo, trail, nil),
		acts:      NewActService(database, repository.NewActRepository(database), tripRepo, buyers, excelGenerator, pdfGenerator),
		payroll:   NewPayrollService(database, repository.NewPayrollRepository(database), tripRepo, sessionRepo, settings, trail, excelGenerator, nil, log),
		advances:  NewAdvanceService(repository.NewAdvanceRepository(database), employees),
		dashboard: NewDashboardService(repository.NewDashboardRepository(database), buyers),
		settings:  settings,
	}
}

func (h *harness) trip(t *testing.T, id int64) model.TripInvoice {
	return testutil.Reload[model.TripInvoice](t, h.db, id)
}

func (h *harness) session(t *testing.T, id int64) model.MachinerySession {
	return testutil.Reload[model.MachinerySession](t, h.db, id)
}

func (h *harness) auditLog(t *testing.T, entityType string, entityID int64) []model.AuditLog {
	t.Helper()
	rows, err := audit.NewGormTrail(h.db).List(h.ctx, entityType, entityID)
	require.NoError(t, err)
	return rows
}

func (h *harness) tripInput(date model.Date, invoice string) CreateTripInput {
	input := CreateTripInput{
		TripDate:   date,
		DriverID:   h.fleet.Driver.ID,
		VehicleID:  h.fleet.Vehicle.ID,
		CarrierID:  h.fleet.Carrier.ID,
		BuyerID:    h.fleet.Buyer.ID,
		MaterialID: h.fleet.Material.ID,
	}
	if invoice != "" {
		input.InvoiceNumber = &invoice
	}
	return input
}

func march(day int) model.Date {
	return model.NewDate(2024, time.March, day)
}

func marchAt(day, hour int) time.Time {
	return time.Date(2024, time.March, day, hour, 0, 0, 0, time.UTC)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}
