package errors

import "errors"

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRole        = errors.New("invalid role")
	ErrForbidden          = errors.New("forbidden")
	ErrNotApproved        = errors.New("caregiver is not approved")
	ErrInvalidApproval    = errors.New("invalid approval status")
	ErrEmptyUpdate        = errors.New("nothing to update")
)

// Order lifecycle.
var (
	ErrOrderClosed   = errors.New("order is not ongoing")
	ErrRatingMissing = errors.New("wait until the patient submits a rating")
	ErrAlreadyRated  = errors.New("order already rated")
	ErrInvalidRate   = errors.New("rate must be between 1 and 5")
	ErrNoAppointment = errors.New("appointment is required")
)

// Fulfillment.
var (
	ErrEvidenceRequired = errors.New("proof of service image is required")
	ErrInvalidEvidence  = errors.New("proof of service must be an image")
	ErrEvidenceUpload   = errors.New("failed to upload proof of service")
	ErrInvalidMedicine  = errors.New("invalid medicine")
	ErrInvalidQuantity  = errors.New("quantity must be between 1 and 1000")
	ErrAmountTooLarge   = errors.New("medicine order amount is too large")
	ErrLinkageConflict  = errors.New("order already has a medicine order")
	ErrIncompleteLines  = errors.New("not all medicine order lines were stored")
)

// Additional-medicine payment.
var (
	ErrEmptySelection      = errors.New("no medicine selected")
	ErrInvalidSelection    = errors.New("selection contains unknown lines")
	ErrPaymentNotConfirmed = errors.New("payment is not confirmed yet")
	ErrPaymentFinalized    = errors.New("payment already finalized")
	ErrAlreadyPaid         = errors.New("medicine order already settled")
	ErrInvalidSignature    = errors.New("invalid webhook signature")
	ErrPaymentMismatch     = errors.New("payment notification does not match session")
)

var ErrEmptyMessage = errors.New("message body is empty")
