package statemachine

import (
	"context"
	"testing"
	"time"

	"github.com/Saurabhrajput1234/subhsankalpCRM-sub000/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReceiptFSM_ApproveFromPending(t *testing.T) {
	receipt := &models.Receipt{Status: models.ReceiptStatusPending, Type: models.ReceiptTypeToken}
	rfsm := NewReceiptFSM(receipt)

	err := rfsm.Approve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.ReceiptStatusApproved, receipt.Status)
}

func TestReceiptFSM_RejectFromPending(t *testing.T) {
	receipt := &models.Receipt{Status: models.ReceiptStatusPending, Type: models.ReceiptTypeBooking}
	rfsm := NewReceiptFSM(receipt)

	err := rfsm.Reject(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.ReceiptStatusRejected, receipt.Status)
}

func TestReceiptFSM_ApproveTwiceFails(t *testing.T) {
	receipt := &models.Receipt{Status: models.ReceiptStatusPending, Type: models.ReceiptTypeToken}
	rfsm := NewReceiptFSM(receipt)

	require.NoError(t, rfsm.Approve(context.Background()))

	// the receipt is now terminal for approval, a second attempt must fail
	rfsm = NewReceiptFSM(receipt)
	err := rfsm.Approve(context.Background())
	assert.Error(t, err)
	assert.Equal(t, models.ReceiptStatusApproved, receipt.Status)
}

func TestReceiptFSM_RejectApprovedFails(t *testing.T) {
	receipt := &models.Receipt{Status: models.ReceiptStatusApproved, Type: models.ReceiptTypeBooking}
	rfsm := NewReceiptFSM(receipt)

	err := rfsm.Reject(context.Background())
	assert.Error(t, err)
	assert.Equal(t, models.ReceiptStatusApproved, receipt.Status)
}

func TestReceiptFSM_ExpireApprovedToken(t *testing.T) {
	expiry := time.Now().Add(-24 * time.Hour)
	receipt := &models.Receipt{
		Status:     models.ReceiptStatusApproved,
		Type:       models.ReceiptTypeToken,
		ExpiryDate: &expiry,
	}
	rfsm := NewReceiptFSM(receipt)

	err := rfsm.Expire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.ReceiptStatusExpired, receipt.Status)
}

func TestReceiptFSM_ExpireBookingFails(t *testing.T) {
	receipt := &models.Receipt{Status: models.ReceiptStatusApproved, Type: models.ReceiptTypeBooking}
	rfsm := NewReceiptFSM(receipt)

	err := rfsm.Expire(context.Background())
	assert.Error(t, err)
	assert.Equal(t, models.ReceiptStatusApproved, receipt.Status)
}

func TestReceiptFSM_ExpirePendingFails(t *testing.T) {
	receipt := &models.Receipt{Status: models.ReceiptStatusPending, Type: models.ReceiptTypeToken}
	rfsm := NewReceiptFSM(receipt)

	err := rfsm.Expire(context.Background())
	assert.Error(t, err)
	assert.Equal(t, models.ReceiptStatusPending, receipt.Status)
}

func TestReceiptFSM_Can(t *testing.T) {
	receipt := &models.Receipt{Status: models.ReceiptStatusPending, Type: models.ReceiptTypeToken}
	rfsm := NewReceiptFSM(receipt)

	assert.True(t, rfsm.Can("approve"))
	assert.True(t, rfsm.Can("reject"))
	assert.False(t, rfsm.Can("expire"))
	assert.Equal(t, models.ReceiptStatusPending, rfsm.Current())
}
