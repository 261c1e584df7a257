package testutil

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nurpe/logist-zp/internal/model"
)

var (
	Admin      = model.Principal{UserID: 1, Role: model.RoleAdmin}
	Dispatcher = model.Principal{UserID: 2, Role: model.RoleDispatcher}
	Accountant = model.Principal{UserID: 3, Role: model.RoleAccountant}
)

// Fixtures inserts reference rows and lifecycle records directly, bypassing services.
type Fixtures struct {
	t  testing.TB
	db *gorm.DB
}

func NewFixtures(t testing.TB, db *gorm.DB) *Fixtures {
	return &Fixtures{t: t, db: db}
}

func (f *Fixtures) create(value any) {
	f.t.Helper()
	require.NoError(f.t, f.db.Create(value).Error)
}

func (f *Fixtures) Driver(name string) model.Employee {
	e := model.Employee{FullName: name, EmployeeType: model.EmployeeTypeDriver, IsActive: true}
	f.create(&e)
	return e
}

func (f *Fixtures) Operator(name string) model.Employee {
	e := model.Employee{FullName: name, EmployeeType: model.EmployeeTypeOperator, IsActive: true}
	f.create(&e)
	return e
}

func (f *Fixtures) Carrier(name string, pricePerTrip int64) model.Carrier {
	c := model.Carrier{Name: name, PricePerTrip: decimal.NewFromInt(pricePerTrip), IsActive: true}
	f.create(&c)
	return c
}

func (f *Fixtures) Buyer(name string) model.Buyer {
	b := model.Buyer{Name: name, IsActive: true}
	f.create(&b)
	return b
}

func (f *Fixtures) Material(name string) model.Material {
	m := model.Material{Name: name, IsActive: true}
	f.create(&m)
	return m
}

func (f *Fixtures) Vehicle(plate string) model.Vehicle {
	v := model.Vehicle{PlateNumber: plate, VehicleType: "truck", IsActive: true}
	f.create(&v)
	return v
}

func (f *Fixtures) Machinery(name string) model.Machinery {
	m := model.Machinery{Name: name, IsActive: true}
	f.create(&m)
	return m
}

func (f *Fixtures) Setting(key, value string) {
	f.create(&model.Setting{Key: key, Value: value})
}

// Fleet is one set of references sufficient to create trips and sessions.
type Fleet struct {
	Driver    model.Employee
	Operator  model.Employee
	Carrier   model.Carrier
	Buyer     model.Buyer
	Material  model.Material
	Vehicle   model.Vehicle
	Machinery model.Machinery
}

func (f *Fixtures) Fleet() Fleet {
	return Fleet{
		Driver:    f.Driver("Ivanov Ivan"),
		Operator:  f.Operator("Petrov Petr"),
		Carrier:   f.Carrier("North Cargo", 15000),
		Buyer:     f.Buyer("Stroy LLP"),
		Material:  f.Material("Sand"),
		Vehicle:   f.Vehicle("123ABC01"),
		Machinery: f.Machinery("Excavator 1"),
	}
}

// Trip inserts a trip in the given status on date.
func (f *Fixtures) Trip(fleet Fleet, date model.Date, status model.TripStatus) model.TripInvoice {
	trip := model.TripInvoice{
		TripDate:       date,
		DriverID:       fleet.Driver.ID,
		VehicleID:      fleet.Vehicle.ID,
		CarrierID:      fleet.Carrier.ID,
		BuyerID:        fleet.Buyer.ID,
		MaterialID:     fleet.Material.ID,
		TripPriceFixed: fleet.Carrier.PricePerTrip,
		Status:         status,
	}
	f.create(&trip)
	return trip
}

// TripWithVolume is Trip with a volume_m3 reading.
func (f *Fixtures) TripWithVolume(fleet Fleet, date model.Date, status model.TripStatus, volume int64) model.TripInvoice {
	trip := model.TripInvoice{
		TripDate:       date,
		DriverID:       fleet.Driver.ID,
		VehicleID:      fleet.Vehicle.ID,
		CarrierID:      fleet.Carrier.ID,
		BuyerID:        fleet.Buyer.ID,
		MaterialID:     fleet.Material.ID,
		TripPriceFixed: fleet.Carrier.PricePerTrip,
		VolumeM3:       decimal.NewNullDecimal(decimal.NewFromInt(volume)),
		Status:         status,
	}
	f.create(&trip)
	return trip
}

// ClosedSession inserts a closed session lasting the given duration.
func (f *Fixtures) ClosedSession(fleet Fleet, start time.Time, duration time.Duration, rate int64) model.MachinerySession {
	end := start.Add(duration)
	session := model.MachinerySession{
		WorkDate:    model.DateOf(start),
		OperatorID:  fleet.Operator.ID,
		MachineryID: fleet.Machinery.ID,
		StartAt:     start,
		EndAt:       &end,
		Status:      model.SessionStatusClosed,
	}
	if rate > 0 {
		session.HourlyRate = decimal.NewNullDecimal(decimal.NewFromInt(rate))
	}
	f.create(&session)
	return session
}

// Reload reads a row back by primary key.
func Reload[T any](t testing.TB, db *gorm.DB, id int64) T {
	t.Helper()
	var out T
	require.NoError(t, db.First(&out, id).Error)
	return out
}
