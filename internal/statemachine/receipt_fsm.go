package statemachine

import (
	"context"
	"fmt"

	"github.com/Saurabhrajput1234/subhsankalpCRM-sub000/internal/models"
	"github.com/looplab/fsm"
)

// ReceiptFSM wraps a receipt with its state machine
type ReceiptFSM struct {
	receipt *models.Receipt
	fsm     *fsm.FSM
}

// NewReceiptFSM creates a new receipt state machine
func NewReceiptFSM(receipt *models.Receipt) *ReceiptFSM {
	rfsm := &ReceiptFSM{
		receipt: receipt,
	}

	rfsm.fsm = fsm.NewFSM(
		receipt.Status,
		fsm.Events{
			// pending → approved
			{Name: "approve", Src: []string{models.ReceiptStatusPending}, Dst: models.ReceiptStatusApproved},

			// pending → rejected
			{Name: "reject", Src: []string{models.ReceiptStatusPending}, Dst: models.ReceiptStatusRejected},

			// approved → expired (token receipts past their expiry date)
			{Name: "expire", Src: []string{models.ReceiptStatusApproved}, Dst: models.ReceiptStatusExpired},
		},
		fsm.Callbacks{},
	)

	return rfsm
}

// Approve transitions receipt to approved state
func (r *ReceiptFSM) Approve(ctx context.Context) error {
	if !r.receipt.MayApprove() {
		return fmt.Errorf("receipt cannot be approved in current state: %s", r.receipt.Status)
	}

	if err := r.fsm.Event(ctx, "approve"); err != nil {
		return fmt.Errorf("failed to approve receipt: %w", err)
	}

	r.receipt.Status = r.fsm.Current()
	return nil
}

// Reject transitions receipt to rejected state
func (r *ReceiptFSM) Reject(ctx context.Context) error {
	if !r.receipt.MayReject() {
		return fmt.Errorf("receipt cannot be rejected in current state: %s", r.receipt.Status)
	}

	if err := r.fsm.Event(ctx, "reject"); err != nil {
		return fmt.Errorf("failed to reject receipt: %w", err)
	}

	r.receipt.Status = r.fsm.Current()
	return nil
}

// Expire transitions an approved token receipt to expired state
func (r *ReceiptFSM) Expire(ctx context.Context) error {
	if !r.receipt.MayExpire() {
		return fmt.Errorf("receipt cannot expire in current state: %s", r.receipt.Status)
	}

	if err := r.fsm.Event(ctx, "expire"); err != nil {
		return fmt.Errorf("failed to expire receipt: %w", err)
	}

	r.receipt.Status = r.fsm.Current()
	return nil
}

// Current returns the current state
func (r *ReceiptFSM) Current() string {
	return r.fsm.Current()
}

// Can checks if a transition is possible
func (r *ReceiptFSM) Can(event string) bool {
	return r.fsm.Can(event)
}
