package services

import (
	"testing"
	"time"

	"github.com/Saurabhrajput1234/subhsankalpCRM-sub000/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestResolveStatus(t *testing.T) {
	tests := []struct {
		name     string
		input    StatusInput
		expected string
	}{
		{
			name:     "no money no token",
			input:    StatusInput{TotalPrice: 1900000},
			expected: models.PlotStatusAvailable,
		},
		{
			name:     "fully paid",
			input:    StatusInput{TotalPrice: 1900000, ReceivedAmount: 1900000},
			expected: models.PlotStatusSold,
		},
		{
			name:     "overpaid",
			input:    StatusInput{TotalPrice: 1900000, ReceivedAmount: 2000000},
			expected: models.PlotStatusSold,
		},
		{
			name:     "one unit short of the price",
			input:    StatusInput{TotalPrice: 1900000, ReceivedAmount: 1899999, BookingReceived: 1899999},
			expected: models.PlotStatusBooked,
		},
		{
			name:     "booking money only",
			input:    StatusInput{TotalPrice: 1900000, ReceivedAmount: 500000, BookingReceived: 500000},
			expected: models.PlotStatusBooked,
		},
		{
			name:     "booking money wins over a live token",
			input:    StatusInput{TotalPrice: 1900000, ReceivedAmount: 550000, BookingReceived: 500000, ActiveToken: true},
			expected: models.PlotStatusBooked,
		},
		{
			name:     "live token only",
			input:    StatusInput{TotalPrice: 1900000, ReceivedAmount: 50000, ActiveToken: true},
			expected: models.PlotStatusTokened,
		},
		{
			name:     "token money but token expired",
			input:    StatusInput{TotalPrice: 1900000, ReceivedAmount: 0},
			expected: models.PlotStatusAvailable,
		},
		{
			name:     "unpriced plot with money is booked not sold",
			input:    StatusInput{TotalPrice: 0, ReceivedAmount: 50000},
			expected: models.PlotStatusBooked,
		},
		{
			name:     "unpriced plot with no money",
			input:    StatusInput{TotalPrice: 0, ReceivedAmount: 0},
			expected: models.PlotStatusAvailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ResolveStatus(tt.input))
		})
	}
}

func TestComputeFigures_InclusionRules(t *testing.T) {
	now := time.Now()
	future := now.Add(48 * time.Hour)
	past := now.Add(-48 * time.Hour)

	receipts := []models.Receipt{
		// approved booking, counts
		{Type: models.ReceiptTypeBooking, Status: models.ReceiptStatusApproved, Amount: 500000, TotalAmount: 500000},
		// pending token, counts while the decision is open
		{Type: models.ReceiptTypeToken, Status: models.ReceiptStatusPending, Amount: 50000},
		// pending booking, does not count until approved
		{Type: models.ReceiptTypeBooking, Status: models.ReceiptStatusPending, Amount: 200000},
		// rejected booking, never counts
		{Type: models.ReceiptTypeBooking, Status: models.ReceiptStatusRejected, Amount: 100000},
		// expired token, never counts
		{Type: models.ReceiptTypeToken, Status: models.ReceiptStatusExpired, Amount: 25000, ExpiryDate: &past},
		// approved live token, counts and keeps the plot tokened
		{Type: models.ReceiptTypeToken, Status: models.ReceiptStatusApproved, Amount: 50000, TotalAmount: 50000, ExpiryDate: &future},
	}

	received, bookingReceived, activeToken := ComputeFigures(receipts, now)

	assert.Equal(t, 600000.0, received)
	assert.Equal(t, 500000.0, bookingReceived)
	assert.True(t, activeToken)
}

func TestComputeFigures_TotalAmountPreferredOverAmount(t *testing.T) {
	receipts := []models.Receipt{
		// other charges folded into the total amount
		{Type: models.ReceiptTypeBooking, Status: models.ReceiptStatusApproved, Amount: 500000, TotalAmount: 505000},
		// no total recorded, the base amount stands in
		{Type: models.ReceiptTypeBooking, Status: models.ReceiptStatusApproved, Amount: 200000},
	}

	received, bookingReceived, _ := ComputeFigures(receipts, time.Now())

	assert.Equal(t, 705000.0, received)
	assert.Equal(t, 705000.0, bookingReceived)
}

func TestComputeFigures_ApprovedTokenPastExpiryIsNotActive(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)

	receipts := []models.Receipt{
		// swept state is eventually consistent, an approved token past its
		// expiry still counts as money but no longer holds the plot
		{Type: models.ReceiptTypeToken, Status: models.ReceiptStatusApproved, Amount: 50000, ExpiryDate: &past},
	}

	received, _, activeToken := ComputeFigures(receipts, now)

	assert.Equal(t, 50000.0, received)
	assert.False(t, activeToken)
}

// A pending token already holds the plot while the decision is open, the
// same way its money already counts toward the received amount.
func TestComputeFigures_PendingTokenHoldsThePlot(t *testing.T) {
	receipts := []models.Receipt{
		{Type: models.ReceiptTypeToken, Status: models.ReceiptStatusPending, Amount: 50000},
	}

	received, _, activeToken := ComputeFigures(receipts, time.Now())
	status := ResolveStatus(StatusInput{
		TotalPrice:     1900000,
		ReceivedAmount: received,
		ActiveToken:    activeToken,
	})

	assert.Equal(t, 50000.0, received)
	assert.True(t, activeToken)
	assert.Equal(t, models.PlotStatusTokened, status)
}

func TestComputeFigures_PendingTokenPastExpiryDoesNotHold(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)

	receipts := []models.Receipt{
		{Type: models.ReceiptTypeToken, Status: models.ReceiptStatusPending, Amount: 50000, ExpiryDate: &past},
	}

	_, _, activeToken := ComputeFigures(receipts, now)
	assert.False(t, activeToken)
}

// A pending receipt contributes its base amount only, the surcharge in the
// other charges text is folded in when approval fixes the final amount.
func TestComputeFigures_PendingContributesBaseAmountOnly(t *testing.T) {
	charges := "Development charges 5000"
	receipts := []models.Receipt{
		{Type: models.ReceiptTypeToken, Status: models.ReceiptStatusPending, Amount: 50000, OtherCharges: &charges},
	}

	received, _, _ := ComputeFigures(receipts, time.Now())
	assert.Equal(t, 50000.0, received)
}

func TestComputeFigures_NoExpiryTokenStaysActive(t *testing.T) {
	receipts := []models.Receipt{
		{Type: models.ReceiptTypeToken, Status: models.ReceiptStatusApproved, Amount: 50000},
	}

	_, _, activeToken := ComputeFigures(receipts, time.Now())
	assert.True(t, activeToken)
}

func TestComputeFigures_Idempotent(t *testing.T) {
	now := time.Now()
	receipts := []models.Receipt{
		{Type: models.ReceiptTypeBooking, Status: models.ReceiptStatusApproved, Amount: 500000},
		{Type: models.ReceiptTypeToken, Status: models.ReceiptStatusPending, Amount: 50000},
	}

	r1, b1, a1 := ComputeFigures(receipts, now)
	r2, b2, a2 := ComputeFigures(receipts, now)

	assert.Equal(t, r1, r2)
	assert.Equal(t, b1, b2)
	assert.Equal(t, a1, a2)
}

// Recomputing from the same receipt set after a discount changed the plot
// price must leave the received amount untouched, discounts only ever move
// the price side of the ledger.
func TestDiscountDoesNotChangeReceived(t *testing.T) {
	receipts := []models.Receipt{
		{Type: models.ReceiptTypeBooking, Status: models.ReceiptStatusApproved, Amount: 500000, Discount: 100},
	}

	received, _, _ := ComputeFigures(receipts, time.Now())
	assert.Equal(t, 500000.0, received)

	before := ResolveStatus(StatusInput{TotalPrice: 2000000, ReceivedAmount: received, BookingReceived: received})
	after := ResolveStatus(StatusInput{TotalPrice: 1900000, ReceivedAmount: received, BookingReceived: received})

	assert.Equal(t, models.PlotStatusBooked, before)
	assert.Equal(t, models.PlotStatusBooked, after)
}

// A plot that reached sold stays sold as long as the receipts backing the
// payment remain approved, regardless of later token expiries.
func TestSoldIsStableAcrossTokenExpiry(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)

	receipts := []models.Receipt{
		{Type: models.ReceiptTypeBooking, Status: models.ReceiptStatusApproved, Amount: 1900000},
		{Type: models.ReceiptTypeToken, Status: models.ReceiptStatusExpired, Amount: 50000, ExpiryDate: &past},
	}

	received, bookingReceived, activeToken := ComputeFigures(receipts, now)
	status := ResolveStatus(StatusInput{
		TotalPrice:      1900000,
		ReceivedAmount:  received,
		BookingReceived: bookingReceived,
		ActiveToken:     activeToken,
	})

	assert.Equal(t, models.PlotStatusSold, status)
}
