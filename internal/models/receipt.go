package models

import (
	"time"
)

// Receipt represents money promised or received against a plot. The monetary
// fields are immutable ground truth once approved; only the approval envelope
// (status, approver, timestamps) mutates. Discounts granted at approval time
// never touch the receipt's own amounts - they adjust the owning plot's unit
// rate and total price instead.
type Receipt struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	ReceiptNo    int        `gorm:"uniqueIndex;not null" json:"receipt_no"`
	GUID         string     `gorm:"uniqueIndex" json:"guid"`
	SiteName     string     `gorm:"not null;index:idx_receipts_business_key" json:"site_name"`
	PlotNo       string     `gorm:"not null;index:idx_receipts_business_key" json:"plot_no"`
	PlotID       *uint      `gorm:"index" json:"plot_id"`
	Type         string     `gorm:"not null;index" json:"type"`
	Status       string     `gorm:"default:pending;not null;index" json:"status"`
	Amount       float64    `gorm:"type:decimal(15,2);not null" json:"amount"`
	OtherCharges *string    `gorm:"type:text" json:"other_charges"`
	TotalAmount  float64    `gorm:"type:decimal(15,2);default:0" json:"total_amount"`
	Discount     float64    `gorm:"type:decimal(15,2);default:0" json:"discount"`
	ExpiryDate   *time.Time `gorm:"index" json:"expiry_date"`
	Remarks      *string    `gorm:"type:text" json:"remarks"`
	CreatedByID  uint       `gorm:"not null;index" json:"created_by_id"`
	ApprovedByID *uint      `gorm:"index" json:"approved_by_id"`
	ApprovedAt   *time.Time `gorm:"index" json:"approved_at"`
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	// Associations
	Plot       *Plot `gorm:"foreignKey:PlotID" json:"plot,omitempty"`
	CreatedBy  User  `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	ApprovedBy *User `gorm:"foreignKey:ApprovedByID" json:"approved_by,omitempty"`
}

// TableName specifies the table name for Receipt
func (Receipt) TableName() string {
	return "receipts"
}

// Receipt type constants
const (
	ReceiptTypeToken   = "token"
	ReceiptTypeBooking = "booking"
)

// Receipt status constants
const (
	ReceiptStatusPending  = "pending"
	ReceiptStatusApproved = "approved"
	ReceiptStatusRejected = "rejected"
	ReceiptStatusExpired  = "expired"
)

// MayApprove returns true if the receipt can be approved
func (r *Receipt) MayApprove() bool {
	return r.Status == ReceiptStatusPending
}

// MayReject returns true if the receipt can be rejected
func (r *Receipt) MayReject() bool {
	return r.Status == ReceiptStatusPending
}

// MayExpire returns true if the receipt can be marked expired
func (r *Receipt) MayExpire() bool {
	return r.Status == ReceiptStatusApproved && r.Type == ReceiptTypeToken
}

// IsTerminal returns true once the receipt has left the pending state
func (r *Receipt) IsTerminal() bool {
	return r.Status != ReceiptStatusPending
}

// IsExpiredAt returns true for an approved token receipt whose expiry date
// has passed as of now.
func (r *Receipt) IsExpiredAt(now time.Time) bool {
	if !r.MayExpire() || r.ExpiryDate == nil {
		return false
	}
	return r.ExpiryDate.Before(now)
}

// HoldsPlotAt reports whether this receipt is a live token hold on its plot:
// an approved or still pending token whose expiry date has not passed as of
// now. Pending tokens hold the plot while the decision is open, the same way
// their money already counts toward the received amount.
func (r *Receipt) HoldsPlotAt(now time.Time) bool {
	if r.Type != ReceiptTypeToken {
		return false
	}
	if r.Status != ReceiptStatusApproved && r.Status != ReceiptStatusPending {
		return false
	}
	return r.ExpiryDate == nil || !r.ExpiryDate.Before(now)
}

// CountsTowardReceived reports whether the receipt's money counts toward the
// plot's received amount: approved receipts always, pending token receipts
// provisionally. Pending bookings are promised money only; rejected and
// expired receipts never count.
func (r *Receipt) CountsTowardReceived() bool {
	if r.Status == ReceiptStatusApproved {
		return true
	}
	return r.Status == ReceiptStatusPending && r.Type == ReceiptTypeToken
}

// Contribution returns the money this receipt adds to the received amount:
// the final total when populated, otherwise the base amount entered at
// creation (the provisional figure for unapproved token receipts).
func (r *Receipt) Contribution() float64 {
	if r.TotalAmount > 0 {
		return r.TotalAmount
	}
	return r.Amount
}

// ReceiptResponse is the JSON response format for receipts
type ReceiptResponse struct {
	ID            uint       `json:"id"`
	ReceiptNo     int        `json:"receipt_no"`
	GUID          string     `json:"guid"`
	SiteName      string     `json:"site_name"`
	PlotNo        string     `json:"plot_no"`
	PlotID        *uint      `json:"plot_id"`
	Type          string     `json:"type"`
	Status        string     `json:"status"`
	Amount        float64    `json:"amount"`
	OtherCharges  *string    `json:"other_charges"`
	TotalAmount   float64    `json:"total_amount"`
	Discount      float64    `json:"discount"`
	ExpiryDate    *time.Time `json:"expiry_date"`
	Remarks       *string    `json:"remarks"`
	CreatedByName string     `json:"created_by_name,omitempty"`
	ApproverName  string     `json:"approver_name,omitempty"`
	ApprovedAt    *time.Time `json:"approved_at"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ToResponse converts Receipt to ReceiptResponse
func (r *Receipt) ToResponse() ReceiptResponse {
	resp := ReceiptResponse{
		ID:           r.ID,
		ReceiptNo:    r.ReceiptNo,
		GUID:         r.GUID,
		SiteName:     r.SiteName,
		PlotNo:       r.PlotNo,
		PlotID:       r.PlotID,
		Type:         r.Type,
		Status:       r.Status,
		Amount:       r.Amount,
		OtherCharges: r.OtherCharges,
		TotalAmount:  r.TotalAmount,
		Discount:     r.Discount,
		ExpiryDate:   r.ExpiryDate,
		Remarks:      r.Remarks,
		ApprovedAt:   r.ApprovedAt,
		CreatedAt:    r.CreatedAt,
	}

	if r.CreatedBy.ID != 0 {
		resp.CreatedByName = r.CreatedBy.FullName
	}
	if r.ApprovedBy != nil && r.ApprovedBy.ID != 0 {
		resp.ApproverName = r.ApprovedBy.FullName
	}

	return resp
}
