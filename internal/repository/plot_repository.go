package repository

import (
	"context"
	"strings"

	"github.com/Saurabhrajput1234/subhsankalpCRM-sub000/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PlotKey is the business identity of a plot: receipts are matched to plots
// by this tuple, not by the numeric id.
type PlotKey struct {
	SiteName string
	PlotNo   string
}

// SiteSummary aggregates plot counts and money received per site
type SiteSummary struct {
	SiteName      string  `json:"site_name"`
	TotalPlots    int64   `json:"total_plots"`
	Available     int64   `json:"available"`
	Tokened       int64   `json:"tokened"`
	Booked        int64   `json:"booked"`
	Sold          int64   `json:"sold"`
	TotalReceived float64 `json:"total_received"`
}

// PlotRepository defines the interface for plot data access
type PlotRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Plot, error)
	FindByKey(ctx context.Context, key PlotKey) (*models.Plot, error)
	// FindByKeyForUpdate locks the plot row for the duration of the enclosing
	// transaction, serializing concurrent reconciliations of the same plot.
	FindByKeyForUpdate(ctx context.Context, key PlotKey) (*models.Plot, error)
	Create(ctx context.Context, plot *models.Plot) error
	CreateBatch(ctx context.Context, plots []models.Plot) error
	Update(ctx context.Context, plot *models.Plot) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, query *ListQuery) ([]models.Plot, int64, error)
	AllKeys(ctx context.Context) ([]PlotKey, error)
	SiteSummaries(ctx context.Context) ([]SiteSummary, error)
}

type plotRepository struct {
	db *gorm.DB
}

// NewPlotRepository creates a new plot repository
func NewPlotRepository(db *gorm.DB) PlotRepository {
	return &plotRepository{db: db}
}

func (r *plotRepository) FindByID(ctx context.Context, id uint) (*models.Plot, error) {
	var plot models.Plot
	err := r.db.WithContext(ctx).First(&plot, id).Error
	if err != nil {
		return nil, err
	}
	return &plot, nil
}

func (r *plotRepository) FindByKey(ctx context.Context, key PlotKey) (*models.Plot, error) {
	var plot models.Plot
	err := r.db.WithContext(ctx).
		Where("site_name = ? AND plot_no = ?", key.SiteName, key.PlotNo).
		First(&plot).Error
	if err != nil {
		return nil, err
	}
	return &plot, nil
}

func (r *plotRepository) FindByKeyForUpdate(ctx context.Context, key PlotKey) (*models.Plot, error) {
	var plot models.Plot
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("site_name = ? AND plot_no = ?", key.SiteName, key.PlotNo).
		First(&plot).Error
	if err != nil {
		return nil, err
	}
	return &plot, nil
}

func (r *plotRepository) Create(ctx context.Context, plot *models.Plot) error {
	return r.db.WithContext(ctx).Create(plot).Error
}

func (r *plotRepository) CreateBatch(ctx context.Context, plots []models.Plot) error {
	if len(plots) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(plots, 100).Error
}

func (r *plotRepository) Update(ctx context.Context, plot *models.Plot) error {
	return r.db.WithContext(ctx).Save(plot).Error
}

func (r *plotRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Plot{}, id).Error
}

func (r *plotRepository) List(ctx context.Context, query *ListQuery) ([]models.Plot, int64, error) {
	var plots []models.Plot
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Plot{})

	if query.Filters["site_name"] != "" {
		db = db.Where("site_name = ?", query.Filters["site_name"])
	}
	if query.Filters["status"] != "" {
		statuses := strings.Split(query.Filters["status"], ",")
		for i, s := range statuses {
			statuses[i] = strings.TrimSpace(s)
		}
		db = db.Where("status IN ?", statuses)
	}

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("site_name ILIKE ? OR plot_no ILIKE ? OR description ILIKE ?",
			search, search, search)
	}

	// Count total using a separate session so the main query is not altered by Count()
	countDB := db.Session(&gorm.Session{})
	if err := countDB.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if query.SortBy != "" {
		order := query.SortBy
		if query.SortDir == "desc" {
			order += " DESC"
		}
		db = db.Order(order)
	} else {
		db = db.Order("site_name ASC, plot_no ASC")
	}

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Find(&plots).Error
	return plots, total, err
}

func (r *plotRepository) AllKeys(ctx context.Context) ([]PlotKey, error) {
	var keys []PlotKey
	err := r.db.WithContext(ctx).
		Model(&models.Plot{}).
		Select("site_name, plot_no").
		Order("site_name ASC, plot_no ASC").
		Scan(&keys).Error
	return keys, err
}

func (r *plotRepository) SiteSummaries(ctx context.Context) ([]SiteSummary, error) {
	var summaries []SiteSummary
	err := r.db.WithContext(ctx).
		Model(&models.Plot{}).
		Select(`site_name,
			COUNT(*) as total_plots,
			COUNT(*) FILTER (WHERE status = 'available') as available,
			COUNT(*) FILTER (WHERE status = 'tokened') as tokened,
			COUNT(*) FILTER (WHERE status = 'booked') as booked,
			COUNT(*) FILTER (WHERE status = 'sold') as sold,
			COALESCE(SUM(received_amount), 0) as total_received`).
		Group("site_name").
		Order("site_name ASC").
		Scan(&summaries).Error
	return summaries, err
}
