package domain

import (
	"github.com/smallbiznis/tenantflow/pkg/errs"
)

// FailedError is returned for every unsuccessful onboarding run. Step is 0
// when the request was rejected before any step ran. The message is kept
// generic; the cause is reachable through errors.Is and errors.As.
type FailedError struct {
	RunID string
	Step  int
	Cause error
}

func (e *FailedError) Error() string {
	return "tenant onboarding failed"
}

func (e *FailedError) Unwrap() []error {
	return []error{errs.ErrOnboardingFailed, e.Cause}
}
