package repository

import (
	"context"
	"time"

	"github.com/Saurabhrajput1234/subhsankalpCRM-sub000/internal/models"
	"gorm.io/gorm"
)

// ReceiptRepository defines the interface for receipt data access
type ReceiptRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Receipt, error)
	FindByKey(ctx context.Context, key PlotKey) ([]models.Receipt, error)
	Create(ctx context.Context, receipt *models.Receipt) error
	Update(ctx context.Context, receipt *models.Receipt) error
	List(ctx context.Context, query *ListQuery) ([]models.Receipt, int64, error)
	NextReceiptNo(ctx context.Context) (int, error)
	// FindExpiredTokens returns approved token receipts whose expiry date has
	// passed as of the given instant.
	FindExpiredTokens(ctx context.Context, now time.Time) ([]models.Receipt, error)
	CountForKey(ctx context.Context, key PlotKey) (int64, error)
}

type receiptRepository struct {
	db *gorm.DB
}

// NewReceiptRepository creates a new receipt repository
func NewReceiptRepository(db *gorm.DB) ReceiptRepository {
	return &receiptRepository{db: db}
}

func (r *receiptRepository) FindByID(ctx context.Context, id uint) (*models.Receipt, error) {
	var receipt models.Receipt
	err := r.db.WithContext(ctx).
		Preload("CreatedBy").
		Preload("ApprovedBy").
		First(&receipt, id).Error
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (r *receiptRepository) FindByKey(ctx context.Context, key PlotKey) ([]models.Receipt, error) {
	var receipts []models.Receipt
	err := r.db.WithContext(ctx).
		Where("site_name = ? AND plot_no = ?", key.SiteName, key.PlotNo).
		Order("receipt_no ASC").
		Find(&receipts).Error
	return receipts, err
}

func (r *receiptRepository) Create(ctx context.Context, receipt *models.Receipt) error {
	return r.db.WithContext(ctx).Create(receipt).Error
}

func (r *receiptRepository) Update(ctx context.Context, receipt *models.Receipt) error {
	return r.db.WithContext(ctx).Save(receipt).Error
}

func (r *receiptRepository) List(ctx context.Context, query *ListQuery) ([]models.Receipt, int64, error) {
	var receipts []models.Receipt
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Receipt{})

	if query.Filters["site_name"] != "" {
		db = db.Where("site_name = ?", query.Filters["site_name"])
	}
	if query.Filters["plot_no"] != "" {
		db = db.Where("plot_no = ?", query.Filters["plot_no"])
	}
	if query.Filters["status"] != "" {
		db = db.Where("status = ?", query.Filters["status"])
	}
	if query.Filters["type"] != "" {
		db = db.Where("type = ?", query.Filters["type"])
	}
	if query.Filters["from_date"] != "" {
		db = db.Where("created_at >= ?", query.Filters["from_date"])
	}
	if query.Filters["to_date"] != "" {
		db = db.Where("created_at < ?", query.Filters["to_date"])
	}

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("site_name ILIKE ? OR plot_no ILIKE ? OR remarks ILIKE ?",
			search, search, search)
	}

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
		db = db.Order("receipt_no DESC")
	}

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Preload("CreatedBy").Preload("ApprovedBy").Find(&receipts).Error
	return receipts, total, err
}

func (r *receiptRepository) NextReceiptNo(ctx context.Context) (int, error) {
	var max int
	err := r.db.WithContext(ctx).
		Model(&models.Receipt{}).
		Select("COALESCE(MAX(receipt_no), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

func (r *receiptRepository) FindExpiredTokens(ctx context.Context, now time.Time) ([]models.Receipt, error) {
	var receipts []models.Receipt
	err := r.db.WithContext(ctx).
		Where("type = ? AND status = ? AND expiry_date IS NOT NULL AND expiry_date < ?",
			models.ReceiptTypeToken, models.ReceiptStatusApproved, now).
		Order("expiry_date ASC").
		Find(&receipts).Error
	return receipts, err
}

func (r *receiptRepository) CountForKey(ctx context.Context, key PlotKey) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Receipt{}).
		Where("site_name = ? AND plot_no = ?", key.SiteName, key.PlotNo).
		Count(&count).Error
	return count, err
}
