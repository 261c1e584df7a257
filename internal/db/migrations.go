package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/nurpe/logist-zp/internal/model"
)

var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS employees (
		id BIGSERIAL PRIMARY KEY,
		full_name VARCHAR(255) NOT NULL,
		employee_type VARCHAR(16) NOT NULL CHECK (employee_type IN ('driver', 'operator')),
		phone VARCHAR(32),
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS carriers (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL UNIQUE,
		price_per_trip NUMERIC(12,2) NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS buyers (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL UNIQUE,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS materials (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL UNIQUE,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS vehicles (
		id BIGSERIAL PRIMARY KEY,
		plate_number VARCHAR(32) NOT NULL UNIQUE,
		vehicle_type VARCHAR(32) NOT NULL DEFAULT 'truck',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS machinery (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL UNIQUE,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS object_places (
		id BIGSERIAL PRIMARY KEY,
		buyer_id BIGINT REFERENCES buyers(id),
		name VARCHAR(255) NOT NULL,
		comment TEXT,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS system_settings (
		key VARCHAR(64) PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS delivery_acts (
		id BIGSERIAL PRIMARY KEY,
		buyer_id BIGINT NOT NULL REFERENCES buyers(id),
		start_date DATE NOT NULL,
		end_date DATE NOT NULL,
		total_trips INTEGER NOT NULL DEFAULT 0,
		total_volume NUMERIC(14,2) NOT NULL DEFAULT 0,
		status VARCHAR(16) NOT NULL DEFAULT 'open',
		created_by BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_delivery_acts_buyer_id ON delivery_acts (buyer_id);`,
	`CREATE TABLE IF NOT EXISTS trip_invoices (
		id BIGSERIAL PRIMARY KEY,
		trip_date DATE NOT NULL,
		driver_id BIGINT NOT NULL REFERENCES employees(id),
		vehicle_id BIGINT NOT NULL REFERENCES vehicles(id),
		carrier_id BIGINT NOT NULL REFERENCES carriers(id),
		buyer_id BIGINT NOT NULL REFERENCES buyers(id),
		material_id BIGINT NOT NULL REFERENCES materials(id),
		place_id BIGINT REFERENCES object_places(id),
		invoice_number VARCHAR(64),
		trip_price_fixed NUMERIC(12,2) NOT NULL DEFAULT 0,
		fuel_liters NUMERIC(10,2),
		volume_m3 NUMERIC(10,2),
		status VARCHAR(16) NOT NULL DEFAULT 'draft'
			CHECK (status IN ('draft', 'confirmed', 'void', 'locked')),
		delivery_act_id BIGINT REFERENCES delivery_acts(id),
		created_by BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_trip_invoices_trip_date ON trip_invoices (trip_date);`,
	`CREATE INDEX IF NOT EXISTS idx_trip_invoices_driver_id ON trip_invoices (driver_id);`,
	`CREATE INDEX IF NOT EXISTS idx_trip_invoices_buyer_id ON trip_invoices (buyer_id);`,
	`CREATE INDEX IF NOT EXISTS idx_trip_invoices_status ON trip_invoices (status);`,
	`CREATE INDEX IF NOT EXISTS idx_trip_invoices_delivery_act_id ON trip_invoices (delivery_act_id) WHERE delivery_act_id IS NOT NULL;`,
	`CREATE TABLE IF NOT EXISTS machinery_sessions (
		id BIGSERIAL PRIMARY KEY,
		work_date DATE NOT NULL,
		operator_id BIGINT NOT NULL REFERENCES employees(id),
		machinery_id BIGINT NOT NULL REFERENCES machinery(id),
		buyer_id BIGINT REFERENCES buyers(id),
		start_at TIMESTAMPTZ NOT NULL,
		end_at TIMESTAMPTZ,
		hourly_rate NUMERIC(12,2),
		status VARCHAR(16) NOT NULL DEFAULT 'open'
			CHECK (status IN ('open', 'closed', 'locked')),
		notes TEXT,
		fuel_liters NUMERIC(10,2),
		created_by BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_machinery_sessions_work_date ON machinery_sessions (work_date);`,
	`CREATE INDEX IF NOT EXISTS idx_machinery_sessions_status ON machinery_sessions (status);`,
	`CREATE TABLE IF NOT EXISTS payroll_periods (
		id BIGSERIAL PRIMARY KEY,
		month VARCHAR(7) NOT NULL UNIQUE,
		status VARCHAR(16) NOT NULL DEFAULT 'open'
			CHECK (status IN ('open', 'closed', 'paid')),
		closed_at TIMESTAMPTZ,
		closed_by BIGINT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS payroll_lines (
		id BIGSERIAL PRIMARY KEY,
		period_id BIGINT NOT NULL REFERENCES payroll_periods(id) ON DELETE CASCADE,
		employee_id BIGINT NOT NULL REFERENCES employees(id),
		employee_type VARCHAR(16) NOT NULL,
		trips_count INTEGER NOT NULL DEFAULT 0,
		trips_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
		hours_total NUMERIC(10,2) NOT NULL DEFAULT 0,
		hours_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
		total_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
		manual_correction NUMERIC(14,2) NOT NULL DEFAULT 0,
		is_paid BOOLEAN NOT NULL DEFAULT FALSE
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_payroll_lines_employee ON payroll_lines (period_id, employee_id, employee_type);`,
	`CREATE TABLE IF NOT EXISTS salary_advances (
		id BIGSERIAL PRIMARY KEY,
		employee_id BIGINT NOT NULL REFERENCES employees(id),
		amount NUMERIC(12,2) NOT NULL CHECK (amount > 0),
		date DATE NOT NULL,
		comment TEXT,
		created_by BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_salary_advances_employee_date ON salary_advances (employee_id, date);`,
	`CREATE TABLE IF NOT EXISTS audit_log (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL,
		action VARCHAR(32) NOT NULL,
		entity_type VARCHAR(32) NOT NULL,
		entity_id BIGINT NOT NULL,
		old_data JSONB,
		new_data JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_audit_entity ON audit_log (entity_type, entity_id);`,
}

// invariantIndexes back the write-time uniqueness rules and are valid on both
// postgres and sqlite.
var invariantIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_trip_invoices_active_key
		ON trip_invoices (invoice_number, trip_date, vehicle_id)
		WHERE status <> 'void' AND invoice_number IS NOT NULL AND invoice_number <> '';`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_machinery_sessions_open_operator
		ON machinery_sessions (operator_id) WHERE status = 'open';`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_machinery_sessions_open_machinery
		ON machinery_sessions (machinery_id) WHERE status = 'open';`,
}

// Models lists every table owned by the service in dependency order.
func Models() []any {
	return []any{
		&model.Employee{},
		&model.Carrier{},
		&model.Buyer{},
		&model.Material{},
		&model.Vehicle{},
		&model.Machinery{},
		&model.ObjectPlace{},
		&model.Setting{},
		&model.DeliveryAct{},
		&model.TripInvoice{},
		&model.MachinerySession{},
		&model.PayrollPeriod{},
		&model.PayrollLine{},
		&model.SalaryAdvance{},
		&model.AuditLog{},
	}
}

// Migrate applies the schema. Postgres runs the ordered SQL list; other
// dialects are created from the models. Both get the invariant indexes.
func Migrate(database *gorm.DB) error {
	if IsPostgres(database) {
		if err := runMigrations(database, migrationStatements); err != nil {
			return err
		}
	} else if err := database.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return runMigrations(database, invariantIndexes)
}

func runMigrations(database *gorm.DB, statements []string) error {
	for i, stmt := range statements {
		if err := database.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
