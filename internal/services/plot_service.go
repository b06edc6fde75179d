package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Saurabhrajput1234/subhsankalpCRM-sub000/internal/models"
	"github.com/Saurabhrajput1234/subhsankalpCRM-sub000/internal/pricing"
	"github.com/Saurabhrajput1234/subhsankalpCRM-sub000/internal/repository"
	"gorm.io/gorm"
)

// PlotService handles plot inventory management
type PlotService struct {
	db         *gorm.DB
	reconciler *ReconcileService
	audits     *AuditService
}

// NewPlotService creates a new plot service
func NewPlotService(db *gorm.DB, reconciler *ReconcileService, audits *AuditService) *PlotService {
	return &PlotService{db: db, reconciler: reconciler, audits: audits}
}

// CreatePlotInput carries the fields accepted when registering a plot
type CreatePlotInput struct {
	SiteName    string
	PlotNo      string
	SizeText    string
	UnitRate    float64
	TotalPrice  float64
	Description *string
	CreatedByID uint
}

func (in *CreatePlotInput) toModel() *models.Plot {
	var createdBy *uint
	if in.CreatedByID != 0 {
		id := in.CreatedByID
		createdBy = &id
	}
	plot := &models.Plot{
		SiteName:    strings.TrimSpace(in.SiteName),
		PlotNo:      strings.TrimSpace(in.PlotNo),
		SizeText:    in.SizeText,
		Size:        pricing.ParseSize(in.SizeText),
		UnitRate:    in.UnitRate,
		TotalPrice:  in.TotalPrice,
		Status:      models.PlotStatusAvailable,
		Description: in.Description,
		CreatedByID: createdBy,
	}
	plot.EnsureTotalPrice()
	return plot
}

// Create registers a single plot
func (s *PlotService) Create(ctx context.Context, input CreatePlotInput) (*models.Plot, error) {
	if input.SiteName == "" || input.PlotNo == "" {
		return nil, fmt.Errorf("site name and plot number are required")
	}

	plot := input.toModel()
	if err := repository.NewPlotRepository(s.db).Create(ctx, plot); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicate
		}
		return nil, err
	}

	s.audits.Log(ctx, input.CreatedByID, AuditActionCreate, "Plot", plot.ID,
		fmt.Sprintf("Plot %s / %s registered", plot.SiteName, plot.PlotNo), "", "")

	return plot, nil
}

// CreateBatch registers many plots at once, used by the spreadsheet import.
// Returns the created plots and the row errors keyed by input index.
func (s *PlotService) CreateBatch(ctx context.Context, inputs []CreatePlotInput) ([]models.Plot, map[int]error, error) {
	plots := make([]models.Plot, 0, len(inputs))
	rowErrors := make(map[int]error)

	for i, input := range inputs {
		if input.SiteName == "" || input.PlotNo == "" {
			rowErrors[i] = fmt.Errorf("site name and plot number are required")
			continue
		}
		plots = append(plots, *input.toModel())
	}

	if len(plots) == 0 {
		return nil, rowErrors, nil
	}

	if err := repository.NewPlotRepository(s.db).CreateBatch(ctx, plots); err != nil {
		return nil, rowErrors, err
	}
	return plots, rowErrors, nil
}

// UpdatePlotInput carries the mutable plot fields. Status and received amount
// are derived by reconciliation and cannot be set directly.
type UpdatePlotInput struct {
	SizeText    *string
	UnitRate    *float64
	TotalPrice  *float64
	Description *string
	UpdatedByID uint
}

// Update edits a plot's descriptive and pricing fields, then reconciles so
// the status reflects the new price.
func (s *PlotService) Update(ctx context.Context, id uint, input UpdatePlotInput) (*models.Plot, error) {
	var result *models.Plot
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		plots := repository.NewPlotRepository(tx)

		plot, err := plots.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if input.SizeText != nil {
			plot.SizeText = *input.SizeText
			plot.Size = pricing.ParseSize(*input.SizeText)
		}
		if input.UnitRate != nil {
			plot.UnitRate = *input.UnitRate
			plot.TotalPrice = pricing.TotalPrice(plot.EffectiveSize(), *input.UnitRate)
		}
		if input.TotalPrice != nil {
			plot.TotalPrice = *input.TotalPrice
		}
		if input.Description != nil {
			plot.Description = input.Description
		}

		if err := plots.Update(ctx, plot); err != nil {
			return err
		}

		result, err = s.reconciler.ReconcileKey(ctx, tx, repository.PlotKey{SiteName: plot.SiteName, PlotNo: plot.PlotNo})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.audits.Log(ctx, input.UpdatedByID, AuditActionUpdate, "Plot", result.ID,
		fmt.Sprintf("Plot %s / %s updated", result.SiteName, result.PlotNo), "", "")

	return result, nil
}

// Delete removes a plot. Plots with any receipt on record cannot be deleted,
// the financial trail must stay intact.
func (s *PlotService) Delete(ctx context.Context, id uint, deletedByID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		plots := repository.NewPlotRepository(tx)
		receipts := repository.NewReceiptRepository(tx)

		plot, err := plots.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		count, err := receipts.CountForKey(ctx, repository.PlotKey{SiteName: plot.SiteName, PlotNo: plot.PlotNo})
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrPlotHasReceipts
		}

		if err := plots.Delete(ctx, id); err != nil {
			return err
		}

		s.audits.Log(ctx, deletedByID, AuditActionDelete, "Plot", id,
			fmt.Sprintf("Plot %s / %s deleted", plot.SiteName, plot.PlotNo), "", "")
		return nil
	})
}

// GetByID returns a single plot
func (s *PlotService) GetByID(ctx context.Context, id uint) (*models.Plot, error) {
	plot, err := repository.NewPlotRepository(s.db).FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return plot, nil
}

// GetByKey returns a single plot by site name and plot number
func (s *PlotService) GetByKey(ctx context.Context, siteName, plotNo string) (*models.Plot, error) {
	plot, err := repository.NewPlotRepository(s.db).FindByKey(ctx, repository.PlotKey{SiteName: siteName, PlotNo: plotNo})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return plot, nil
}

// List returns plots matching the query
func (s *PlotService) List(ctx context.Context, query *repository.ListQuery) ([]models.Plot, int64, error) {
	return repository.NewPlotRepository(s.db).List(ctx, query)
}

// SiteSummaries returns the per site inventory dashboard figures
func (s *PlotService) SiteSummaries(ctx context.Context) ([]repository.SiteSummary, error) {
	return repository.NewPlotRepository(s.db).SiteSummaries(ctx)
}
