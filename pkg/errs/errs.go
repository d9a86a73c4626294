// Package errs holds the failure taxonomy shared by the onboarding leaves.
// Leaves wrap their concrete failures with one of these sentinels so the
// orchestrator and its callers can classify an error with errors.Is.
package errs

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest         = errors.New("invalid_request")
	ErrNotFound               = errors.New("not_found")
	ErrNotOwner               = errors.New("not_owner")
	ErrPaymentAccountNotReady = errors.New("payment_account_not_ready")
	ErrPersistence            = errors.New("persistence_error")
	ErrPaymentProvider        = errors.New("payment_provider_error")
	ErrOnboardingFailed       = errors.New("onboarding_failed")
)

// Persistence wraps a storage failure. A nil err stays nil.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}

// PaymentProvider wraps a payment processor failure. A nil err stays nil.
func PaymentProvider(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrPaymentProvider, op, err)
}

// Retryable reports whether the caller may retry the failed operation.
// Ownership, readiness and validation failures are not retryable.
func Retryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrNotOwner), errors.Is(err, ErrPaymentAccountNotReady), errors.Is(err, ErrInvalidRequest), errors.Is(err, ErrNotFound):
		return false
	case errors.Is(err, ErrPersistence), errors.Is(err, ErrPaymentProvider), errors.Is(err, context.DeadlineExceeded):
		return true
	default:
		return false
	}
}
