package services

import (
	"testing"
	"time"

	"github.com/Saurabhrajput1234/subhsankalpCRM-sub000/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinalAmount(t *testing.T) {
	charges := "Development charges 5000"
	assert.Equal(t, 55000.0, finalAmount(50000, &charges))
	assert.Equal(t, 50000.0, finalAmount(50000, nil))

	blank := "N/A"
	assert.Equal(t, 50000.0, finalAmount(50000, &blank))
}

func TestApplyApproval_FixesFinalAmount(t *testing.T) {
	charges := "Development charges 5000"
	receipt := &models.Receipt{Amount: 50000, OtherCharges: &charges}
	plot := &models.Plot{Size: 1000, UnitRate: 2000, TotalPrice: 2000000}

	applyApproval(receipt, plot, 7, nil, time.Now())

	assert.Equal(t, 55000.0, receipt.TotalAmount)
	require.NotNil(t, receipt.ApprovedByID)
	assert.Equal(t, uint(7), *receipt.ApprovedByID)
	assert.NotNil(t, receipt.ApprovedAt)
}

func TestApplyApproval_DiscountOverridesProposal(t *testing.T) {
	receipt := &models.Receipt{Amount: 50000, Discount: 100}
	plot := &models.Plot{Size: 1000, UnitRate: 2000, TotalPrice: 2000000}

	override := 50.0
	applyApproval(receipt, plot, 7, &override, time.Now())

	assert.Equal(t, 50.0, receipt.Discount)
	assert.Equal(t, 1950.0, plot.UnitRate)
	assert.Equal(t, 1950000.0, plot.TotalPrice)
}

func TestApplyApproval_FallsBackToProposedDiscount(t *testing.T) {
	receipt := &models.Receipt{Amount: 50000, Discount: 100}
	plot := &models.Plot{Size: 1000, UnitRate: 2000, TotalPrice: 2000000}

	applyApproval(receipt, plot, 7, nil, time.Now())

	assert.Equal(t, 100.0, receipt.Discount)
	assert.Equal(t, 1900.0, plot.UnitRate)
	assert.Equal(t, 1900000.0, plot.TotalPrice)
}

func TestApplyApproval_OversizedDiscountClampedToRate(t *testing.T) {
	receipt := &models.Receipt{Amount: 50000}
	plot := &models.Plot{Size: 500, UnitRate: 150, TotalPrice: 75000}

	override := 900.0
	applyApproval(receipt, plot, 7, &override, time.Now())

	// The receipt keeps the discount actually granted, not the one asked for
	assert.Equal(t, 150.0, receipt.Discount)
	assert.Equal(t, 0.0, plot.UnitRate)
	assert.Equal(t, 0.0, plot.TotalPrice)
}

func TestApplyApproval_NoPlotLeavesPricingAlone(t *testing.T) {
	receipt := &models.Receipt{Amount: 50000}

	override := 50.0
	applyApproval(receipt, nil, 7, &override, time.Now())

	assert.Equal(t, 50000.0, receipt.TotalAmount)
	require.NotNil(t, receipt.ApprovedByID)
	assert.Equal(t, uint(7), *receipt.ApprovedByID)
}
