package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"already exists", ErrAlreadyExists},
		{"not found", ErrNotFound},
		{"invalid credentials", ErrInvalidCredentials},
		{"forbidden", ErrForbidden},
		{"order closed", ErrOrderClosed},
		{"rating missing", ErrRatingMissing},
		{"evidence required", ErrEvidenceRequired},
		{"linkage conflict", ErrLinkageConflict},
		{"payment not confirmed", ErrPaymentNotConfirmed},
		{"already paid", ErrAlreadyPaid},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if !stdErrors.Is(tc.err, tc.err) {
				t.Fatalf("expected error to match itself: %v", tc.err)
			}
		})
	}
}

func TestWrappedDetailKeepsSentinel(t *testing.T) {
	err := fmt.Errorf("%w: name is required", ErrInvalidMedicine)
	if !stdErrors.Is(err, ErrInvalidMedicine) {
		t.Fatalf("expected wrapped error to match sentinel, got %v", err)
	}
	if err.Error() != "invalid medicine: name is required" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
