package models

import (
	"time"

	"github.com/Saurabhrajput1234/subhsankalpCRM-sub000/internal/pricing"
)

// Plot represents a sellable unit of land within a site.
//
// The business key is (site_name, plot_no); receipts are matched to plots by
// that tuple, never by the numeric id, because historical imports created
// receipts before the corresponding plot row existed.
type Plot struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	SiteName       string    `gorm:"not null;uniqueIndex:idx_plots_business_key" json:"site_name"`
	PlotNo         string    `gorm:"not null;uniqueIndex:idx_plots_business_key" json:"plot_no"`
	SizeText       string    `gorm:"column:size_text" json:"size_text"`
	Size           float64   `gorm:"type:decimal(12,2)" json:"size"`
	UnitRate       float64   `gorm:"type:decimal(15,2)" json:"unit_rate"`
	TotalPrice     float64   `gorm:"type:decimal(15,2)" json:"total_price"`
	ReceivedAmount float64   `gorm:"type:decimal(15,2);default:0" json:"received_amount"`
	Status         string    `gorm:"default:available;index" json:"status"`
	Description    *string   `gorm:"type:text" json:"description"`
	CreatedByID    *uint     `gorm:"index" json:"created_by_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Associations
	CreatedBy *User     `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	Receipts  []Receipt `gorm:"foreignKey:PlotID" json:"receipts,omitempty"`
}

// TableName specifies the table name for Plot
func (Plot) TableName() string {
	return "plots"
}

// Plot status constants
const (
	PlotStatusAvailable = "available"
	PlotStatusTokened   = "tokened"
	PlotStatusBooked    = "booked"
	PlotStatusSold      = "sold"
)

// EffectiveSize returns the cached parsed size, falling back to the free-text
// size string when the cache has not been populated yet.
func (p *Plot) EffectiveSize() float64 {
	if p.Size > 0 {
		return p.Size
	}
	return pricing.ParseSize(p.SizeText)
}

// EnsureTotalPrice derives total price from size and rate only when it has
// never been set. A non-zero total is left alone: it may carry an applied
// discount, and recomputing from size x rate would silently erase it.
func (p *Plot) EnsureTotalPrice() {
	if p.TotalPrice != 0 {
		return
	}
	p.TotalPrice = pricing.TotalPrice(p.EffectiveSize(), p.UnitRate)
}

// Balance returns the amount still outstanding against the plot.
func (p *Plot) Balance() float64 {
	return p.TotalPrice - p.ReceivedAmount
}

// IsSold returns true if the plot has been fully paid for.
func (p *Plot) IsSold() bool {
	return p.Status == PlotStatusSold
}

// PlotResponse is the JSON response format for plots
type PlotResponse struct {
	ID             uint      `json:"id"`
	SiteName       string    `json:"site_name"`
	PlotNo         string    `json:"plot_no"`
	SizeText       string    `json:"size_text"`
	Size           float64   `json:"size"`
	UnitRate       float64   `json:"unit_rate"`
	TotalPrice     float64   `json:"total_price"`
	ReceivedAmount float64   `json:"received_amount"`
	Balance        float64   `json:"balance"`
	Status         string    `json:"status"`
	Description    *string   `json:"description"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ToResponse converts Plot to PlotResponse
func (p *Plot) ToResponse() PlotResponse {
	return PlotResponse{
		ID:             p.ID,
		SiteName:       p.SiteName,
		PlotNo:         p.PlotNo,
		SizeText:       p.SizeText,
		Size:           p.EffectiveSize(),
		UnitRate:       p.UnitRate,
		TotalPrice:     p.TotalPrice,
		ReceivedAmount: p.ReceivedAmount,
		Balance:        p.Balance(),
		Status:         p.Status,
		Description:    p.Description,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}
