package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyDiscount(t *testing.T) {
	rate, total := ApplyDiscount(1000, 2000, 100)
	assert.Equal(t, 1900.0, rate)
	assert.Equal(t, 1900000.0, total)
}

func TestApplyDiscount_ClampsToRate(t *testing.T) {
	rate, total := ApplyDiscount(500, 150, 900)
	assert.Equal(t, 0.0, rate)
	assert.Equal(t, 0.0, total)
}

func TestApplyDiscount_NegativeTreatedAsZero(t *testing.T) {
	rate, total := ApplyDiscount(500, 150, -50)
	assert.Equal(t, 150.0, rate)
	assert.Equal(t, 75000.0, total)
}

func TestApplyDiscount_TwoHalvesEqualOneWhole(t *testing.T) {
	r1, _ := ApplyDiscount(1000, 2000, 50)
	r2, t2 := ApplyDiscount(1000, r1, 50)

	rSingle, tSingle := ApplyDiscount(1000, 2000, 100)
	assert.Equal(t, rSingle, r2)
	assert.Equal(t, tSingle, t2)
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1000 sq ft", 1000},
		{"1,250 sqft", 1250},
		{"850.5 sq. ft.", 850.5},
		{"Plot of 600", 600},
		{"", 0},
		{"   ", 0},
		{"size pending", 0},
		{"sq ft", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseSize(tt.in), "input %q", tt.in)
	}
}

func TestParseCharges(t *testing.T) {
	assert.Equal(t, 5000.0, ParseCharges("Development charges 5000"))
	assert.Equal(t, 1200.5, ParseCharges("1200.50 maintenance"))
	assert.Equal(t, 0.0, ParseCharges("N/A"))
	assert.Equal(t, 0.0, ParseCharges(""))
}

func TestTotalPrice(t *testing.T) {
	assert.Equal(t, 2000000.0, TotalPrice(1000, 2000))
	assert.Equal(t, 0.0, TotalPrice(0, 2000))
}
