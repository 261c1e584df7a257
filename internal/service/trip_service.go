package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/logist-zp/internal/audit"
	"github.com/nurpe/logist-zp/internal/model"
	"github.com/nurpe/logist-zp/internal/repository"
)

type TripService struct {
	db       *gorm.DB
	trips    *repository.TripRepository
	carriers *repository.ReferenceRepository[model.Carrier]
	audit    audit.Trail
	recorder Recorder
}

func NewTripService(
	db *gorm.DB,
	trips *repository.TripRepository,
	carriers *repository.ReferenceRepository[model.Carrier],
	trail audit.Trail,
	recorder Recorder,
) *TripService {
	return &TripService{
		db:       db,
		trips:    trips,
		carriers: carriers,
		audit:    trail,
		recorder: recorderOrNop(recorder),
	}
}

type CreateTripInput struct {
	TripDate      model.Date
	DriverID      int64
	VehicleID     int64
	CarrierID     int64
	BuyerID       int64
	MaterialID    int64
	PlaceID       *int64
	InvoiceNumber *string
	FuelLiters    decimal.NullDecimal
	VolumeM3      decimal.NullDecimal
}

// TripPatch carries the fields to change; nil means untouched.
type TripPatch struct {
	TripDate      *model.Date
	DriverID      *int64
	VehicleID     *int64
	CarrierID     *int64
	BuyerID       *int64
	MaterialID    *int64
	PlaceID       *int64
	InvoiceNumber *string
	FuelLiters    *decimal.Decimal
	VolumeM3      *decimal.Decimal
}

func (s *TripService) Create(ctx context.Context, input CreateTripInput, actor model.Principal) (*model.TripInvoice, error) {
	if err := requireRole(actor, "create trip invoices", elevatedRoles...); err != nil {
		return nil, err
	}
	if input.TripDate.IsZero() {
		return nil, fmt.Errorf("%w: trip_date is required", ErrInvalidInput)
	}
	if input.DriverID == 0 || input.VehicleID == 0 || input.CarrierID == 0 || input.BuyerID == 0 || input.MaterialID == 0 {
		return nil, fmt.Errorf("%w: driver, vehicle, carrier, buyer and material are required", ErrInvalidInput)
	}

	trip := &model.TripInvoice{
		TripDate:      input.TripDate,
		DriverID:      input.DriverID,
		VehicleID:     input.VehicleID,
		CarrierID:     input.CarrierID,
		BuyerID:       input.BuyerID,
		MaterialID:    input.MaterialID,
		PlaceID:       input.PlaceID,
		InvoiceNumber: normalizeInvoiceNumber(input.InvoiceNumber),
		FuelLiters:    input.FuelLiters,
		VolumeM3:      input.VolumeM3,
		Status:        model.TripStatusDraft,
		CreatedBy:     actor.UserID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		carrier, err := s.carriers.WithTx(tx).Get(ctx, input.CarrierID)
		if err != nil {
			return notFound(err, "carrier", input.CarrierID)
		}
		trip.TripPriceFixed = carrier.PricePerTrip

		trips := s.trips.WithTx(tx)
		if err := ensureUniqueInvoiceKey(ctx, trips, trip); err != nil {
			return err
		}
		if err := trips.Create(ctx, trip); err != nil {
			return storeError(err, "invoice %s already registered", invoiceKey(trip))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return trip, nil
}

func (s *TripService) Update(ctx context.Context, id int64, patch TripPatch, actor model.Principal) (*model.TripInvoice, error) {
	if err := requireRole(actor, "update trip invoices", elevatedRoles...); err != nil {
		return nil, err
	}

	var trip *model.TripInvoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		trips := s.trips.WithTx(tx)
		current, err := trips.GetForUpdate(ctx, id)
		if err != nil {
			return notFound(err, "trip invoice", id)
		}
		if current.Status == model.TripStatusLocked && !actor.IsAdmin() {
			return fmt.Errorf("%w: trip invoice %d is locked", ErrPermissionDenied, id)
		}
		before := tripSnapshot(current)

		if patch.CarrierID != nil {
			carrier, err := s.carriers.WithTx(tx).Get(ctx, *patch.CarrierID)
			if err != nil {
				return notFound(err, "carrier", *patch.CarrierID)
			}
			current.CarrierID = carrier.ID
			current.TripPriceFixed = carrier.PricePerTrip
		}
		applyTripPatch(current, patch)

		if current.Status != model.TripStatusVoid {
			if err := ensureUniqueInvoiceKey(ctx, trips, current); err != nil {
				return err
			}
		}
		if err := trips.Save(ctx, current); err != nil {
			return storeError(err, "invoice %s already registered", invoiceKey(current))
		}

		if current.Status == model.TripStatusLocked {
			if err := s.audit.WithTx(tx).Append(ctx, audit.Entry{
				ActorID:    actor.UserID,
				Action:     model.AuditActionUpdateLocked,
				EntityType: model.EntityTripInvoice,
				EntityID:   current.ID,
				OldData:    before,
				NewData:    tripSnapshot(current),
			}); err != nil {
				return err
			}
		}
		trip = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return trip, nil
}

func (s *TripService) Confirm(ctx context.Context, id int64, actor model.Principal) (*model.TripInvoice, error) {
	return s.move(ctx, id, model.TripStatusConfirmed, actor, "")
}

func (s *TripService) Void(ctx context.Context, id int64, actor model.Principal) (*model.TripInvoice, error) {
	return s.move(ctx, id, model.TripStatusVoid, actor, model.AuditActionVoid)
}

// move applies a user-requested transition, auditing it when auditAction is set.
func (s *TripService) move(
	ctx context.Context,
	id int64,
	to model.TripStatus,
	actor model.Principal,
	auditAction string,
) (*model.TripInvoice, error) {
	if err := requireRole(actor, "change trip invoice status", elevatedRoles...); err != nil {
		return nil, err
	}

	var (
		trip *model.TripInvoice
		from model.TripStatus
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		trips := s.trips.WithTx(tx)
		current, err := trips.GetForUpdate(ctx, id)
		if err != nil {
			return notFound(err, "trip invoice", id)
		}
		from = current.Status
		if err := transition(model.TripTransitions, "trip invoice", id, from, to, actor); err != nil {
			return err
		}
		if err := trips.UpdateStatus(ctx, id, to); err != nil {
			return err
		}
		current.Status = to

		if auditAction != "" {
			if err := s.audit.WithTx(tx).Append(ctx, audit.Entry{
				ActorID:    actor.UserID,
				Action:     auditAction,
				EntityType: model.EntityTripInvoice,
				EntityID:   id,
				OldData:    model.Snapshot{"status": string(from)},
				NewData:    model.Snapshot{"status": string(to)},
			}); err != nil {
				return err
			}
		}
		trip = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.recorder.RecordTransition(model.EntityTripInvoice, string(from), string(to))
	return trip, nil
}

// Delete removes the invoice whatever its status.
func (s *TripService) Delete(ctx context.Context, id int64, actor model.Principal) error {
	if err := requireRole(actor, "delete trip invoices", model.RoleAdmin); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		trips := s.trips.WithTx(tx)
		current, err := trips.GetForUpdate(ctx, id)
		if err != nil {
			return notFound(err, "trip invoice", id)
		}
		if err := trips.Delete(ctx, id); err != nil {
			return err
		}
		return s.audit.WithTx(tx).Append(ctx, audit.Entry{
			ActorID:    actor.UserID,
			Action:     model.AuditActionDelete,
			EntityType: model.EntityTripInvoice,
			EntityID:   id,
			OldData:    tripSnapshot(current),
		})
	})
}

func (s *TripService) List(
	ctx context.Context,
	filter model.TripFilter,
	page model.PageRequest,
) (*model.Page[model.TripInvoiceView], error) {
	page = page.Normalize()
	rows, total, err := s.trips.List(ctx, filter, page)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []model.TripInvoiceView{}
	}
	return &model.Page[model.TripInvoiceView]{Items: rows, Total: total, Page: page.Page, Size: page.Size}, nil
}

func ensureUniqueInvoiceKey(ctx context.Context, trips *repository.TripRepository, trip *model.TripInvoice) error {
	if !trip.HasInvoiceNumber() {
		return nil
	}
	exists, err := trips.ActiveKeyExists(ctx, *trip.InvoiceNumber, trip.TripDate, trip.VehicleID, trip.ID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: invoice %s already registered", ErrConflict, invoiceKey(trip))
	}
	return nil
}

func applyTripPatch(trip *model.TripInvoice, patch TripPatch) {
	if patch.TripDate != nil {
		trip.TripDate = *patch.TripDate
	}
	if patch.DriverID != nil {
		trip.DriverID = *patch.DriverID
	}
	if patch.VehicleID != nil {
		trip.VehicleID = *patch.VehicleID
	}
	if patch.BuyerID != nil {
		trip.BuyerID = *patch.BuyerID
	}
	if patch.MaterialID != nil {
		trip.MaterialID = *patch.MaterialID
	}
	if patch.PlaceID != nil {
		trip.PlaceID = patch.PlaceID
	}
	if patch.InvoiceNumber != nil {
		trip.InvoiceNumber = normalizeInvoiceNumber(patch.InvoiceNumber)
	}
	if patch.FuelLiters != nil {
		trip.FuelLiters = decimal.NewNullDecimal(*patch.FuelLiters)
	}
	if patch.VolumeM3 != nil {
		trip.VolumeM3 = decimal.NewNullDecimal(*patch.VolumeM3)
	}
}

func normalizeInvoiceNumber(raw *string) *string {
	if raw == nil {
		return nil
	}
	value := strings.TrimSpace(*raw)
	if value == "" {
		return nil
	}
	return &value
}

func invoiceKey(trip *model.TripInvoice) string {
	number := ""
	if trip.InvoiceNumber != nil {
		number = *trip.InvoiceNumber
	}
	return fmt.Sprintf("%q on %s for vehicle %d", number, trip.TripDate, trip.VehicleID)
}

func tripSnapshot(trip *model.TripInvoice) model.Snapshot {
	return model.Snapshot{
		"trip_date":        trip.TripDate.String(),
		"driver_id":        trip.DriverID,
		"vehicle_id":       trip.VehicleID,
		"carrier_id":       trip.CarrierID,
		"buyer_id":         trip.BuyerID,
		"material_id":      trip.MaterialID,
		"place_id":         trip.PlaceID,
		"invoice_number":   trip.InvoiceNumber,
		"trip_price_fixed": trip.TripPriceFixed.StringFixed(2),
		"fuel_liters":      nullDecimalString(trip.FuelLiters),
		"volume_m3":        nullDecimalString(trip.VolumeM3),
		"status":           string(trip.Status),
	}
}

func nullDecimalString(value decimal.NullDecimal) *string {
	if !value.Valid {
		return nil
	}
	s := value.Decimal.String()
	return &s
}
