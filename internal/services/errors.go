package services

import "errors"

// Common service errors
var (
	ErrNotFound         = errors.New("record not found")
	ErrUnauthorized     = errors.New("not authorized")
	ErrConflictingState = errors.New("conflicting receipt state")
	ErrDuplicate        = errors.New("duplicate record")
	ErrUnlinkedPlot     = errors.New("no plot matches the receipt site and plot number")
	ErrPlotHasReceipts  = errors.New("plot has receipts and cannot be deleted")
)
