package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/logist-zp/internal/model"
	"github.com/nurpe/logist-zp/internal/repository"
)

type ActExcelGenerator interface {
	GenerateAct(doc model.ActDocument) ([]byte, error)
}

type ActPDFGenerator interface {
	Generate(doc model.ActDocument) ([]byte, error)
}

type ActService struct {
	db     *gorm.DB
	acts   *repository.ActRepository
	trips  *repository.TripRepository
	buyers *repository.ReferenceRepository[model.Buyer]
	excel  ActExcelGenerator
	pdf    ActPDFGenerator
}

type CreateActInput struct {
	BuyerID   int64
	StartDate model.Date
	EndDate   model.Date
	Principal model.Principal
}

// ExportResult is a generated document ready to be sent as an attachment.
type ExportResult struct {
	FileName string
	Content  []byte
}

func NewActService(
	db *gorm.DB,
	acts *repository.ActRepository,
	trips *repository.TripRepository,
	buyers *repository.ReferenceRepository[model.Buyer],
	excel ActExcelGenerator,
	pdf ActPDFGenerator,
) *ActService {
	return &ActService{
		db:     db,
		acts:   acts,
		trips:  trips,
		buyers: buyers,
		excel:  excel,
		pdf:    pdf,
	}
}

// Create claims every confirmed, unclaimed trip of the buyer in the date range.
// Selection, totals and linking run in one transaction with the candidate rows
// locked, and linking must touch exactly the counted trips.
func (s *ActService) Create(ctx context.Context, input CreateActInput) (*model.DeliveryAct, error) {
	if err := requireRole(input.Principal, "create delivery acts", elevatedRoles...); err != nil {
		return nil, err
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() {
		return nil, fmt.Errorf("%w: start_date and end_date are required", ErrInvalidInput)
	}

	var act *model.DeliveryAct
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.buyers.WithTx(tx).Get(ctx, input.BuyerID); err != nil {
			return notFound(err, "buyer", input.BuyerID)
		}
		if input.StartDate.After(input.EndDate) {
			return fmt.Errorf("%w: start_date must be before or equal to end_date", ErrInvalidInput)
		}

		trips := s.trips.WithTx(tx)
		candidates, err := trips.ListClaimable(ctx, input.BuyerID, input.StartDate, input.EndDate)
		if err != nil {
			return err
		}
		if len(candidates) == 0 {
			return fmt.Errorf("%w: no confirmed unclaimed trips for buyer %d between %s and %s",
				ErrInvalidInput, input.BuyerID, input.StartDate, input.EndDate)
		}

		totalVolume := decimal.Zero
		tripIDs := make([]int64, 0, len(candidates))
		for _, trip := range candidates {
			if trip.VolumeM3.Valid {
				totalVolume = totalVolume.Add(trip.VolumeM3.Decimal)
			}
			tripIDs = append(tripIDs, trip.ID)
		}

		created := &model.DeliveryAct{
			BuyerID:     input.BuyerID,
			StartDate:   input.StartDate,
			EndDate:     input.EndDate,
			TotalTrips:  len(candidates),
			TotalVolume: totalVolume,
			Status:      model.ActStatusOpen,
			CreatedBy:   input.Principal.UserID,
		}
		if err := s.acts.WithTx(tx).CreateAct(ctx, created); err != nil {
			return err
		}

		linked, err := trips.AssignAct(ctx, created.ID, tripIDs)
		if err != nil {
			return err
		}
		if linked != int64(len(tripIDs)) {
			return fmt.Errorf("%w: %d of %d trips were claimed concurrently", ErrConflict, int64(len(tripIDs))-linked, len(tripIDs))
		}
		act = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return act, nil
}

// Delete releases the act's trips so another act can claim them, then removes the act.
func (s *ActService) Delete(ctx context.Context, id int64, principal model.Principal) error {
	if err := requireRole(principal, "delete delivery acts", elevatedRoles...); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		acts := s.acts.WithTx(tx)
		if _, err := acts.GetActByID(ctx, id); err != nil {
			return notFound(err, "delivery act", id)
		}
		if _, err := s.trips.WithTx(tx).UnassignAct(ctx, id); err != nil {
			return err
		}
		_, err := acts.DeleteAct(ctx, id)
		return err
	})
}

func (s *ActService) List(
	ctx context.Context,
	buyerID *int64,
	page model.PageRequest,
) (*model.Page[model.DeliveryActView], error) {
	page = page.Normalize()
	acts, total, err := s.acts.ListActs(ctx, buyerID, page)
	if err != nil {
		return nil, err
	}
	if acts == nil {
		acts = []model.DeliveryActView{}
	}
	return &model.Page[model.DeliveryActView]{Items: acts, Total: total, Page: page.Page, Size: page.Size}, nil
}

func (s *ActService) Get(ctx context.Context, id int64) (*model.ActDocument, error) {
	act, err := s.acts.GetActByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "delivery act", id)
	}
	trips, err := s.trips.ListByAct(ctx, id)
	if err != nil {
		return nil, err
	}
	if trips == nil {
		trips = []model.TripInvoiceView{}
	}
	return &model.ActDocument{Act: *act, Trips: trips}, nil
}

func (s *ActService) ExportExcel(ctx context.Context, id int64) (*ExportResult, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	content, err := s.excel.GenerateAct(*doc)
	if err != nil {
		return nil, err
	}
	return &ExportResult{FileName: s.buildFileName(doc.Act, "xlsx"), Content: content}, nil
}

func (s *ActService) ExportPDF(ctx context.Context, id int64) (*ExportResult, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	content, err := s.pdf.Generate(*doc)
	if err != nil {
		return nil, err
	}
	return &ExportResult{FileName: s.buildFileName(doc.Act, "pdf"), Content: content}, nil
}

func (s *ActService) buildFileName(act model.DeliveryActView, ext string) string {
	buyer := sanitizeFileName(act.BuyerName)
	if buyer == "" {
		buyer = fmt.Sprintf("buyer-%d", act.BuyerID)
	}
	period := fmt.Sprintf("%s-%s", act.StartDate.Time().Format("20060102"), act.EndDate.Time().Format("20060102"))
	return fmt.Sprintf("act-%d-%s-%s.%s", act.ID, buyer, period, ext)
}

func sanitizeFileName(input string) string {
	result := make([]rune, 0, len(input))
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z':
			result = append(result, r)
		case r >= 'A' && r <= 'Z':
			result = append(result, r)
		case r >= '0' && r <= '9':
			result = append(result, r)
		case r == '-', r == '_':
			result = append(result, r)
		default:
			result = append(result, '-')
		}
	}
	return strings.Trim(string(result), "-")
}
