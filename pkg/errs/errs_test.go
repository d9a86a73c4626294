package errs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrappersKeepBothSentinelAndCause(t *testing.T) {
	cause := errors.New("connection reset")

	err := Persistence("insert lease", cause)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "insert lease")

	err = PaymentProvider("create customer", cause)
	assert.ErrorIs(t, err, ErrPaymentProvider)
	assert.ErrorIs(t, err, cause)
}

func TestWrappersPassNilThrough(t *testing.T) {
	assert.NoError(t, Persistence("noop", nil))
	assert.NoError(t, PaymentProvider("noop", nil))
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(Persistence("x", errors.New("boom"))))
	assert.True(t, Retryable(PaymentProvider("x", errors.New("boom"))))
	assert.True(t, Retryable(context.DeadlineExceeded))
	assert.False(t, Retryable(ErrNotOwner))
	assert.False(t, Retryable(ErrPaymentAccountNotReady))
	assert.False(t, Retryable(ErrInvalidRequest))
	assert.False(t, Retryable(nil))
}
