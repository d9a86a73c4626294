package domain

import (
	"context"
)

// InviteTenantRequest is the onboarding input. Identifiers and dates arrive
// as strings; dates use the YYYY-MM-DD layout.
type InviteTenantRequest struct {
	Email           string `json:"email"`
	FirstName       string `json:"first_name,omitempty"`
	LastName        string `json:"last_name,omitempty"`
	Phone           string `json:"phone,omitempty"`
	PropertyID      string `json:"property_id,omitempty"`
	UnitID          string `json:"unit_id"`
	LeaseStartDate  string `json:"lease_start_date"`
	LeaseEndDate    string `json:"lease_end_date,omitempty"`
	RentAmount      int64  `json:"rent_amount"`
	SecurityDeposit *int64 `json:"security_deposit,omitempty"`
}

type Result struct {
	Success  bool   `json:"success"`
	TenantID string `json:"tenant_id,omitempty"`
	LeaseID  string `json:"lease_id,omitempty"`
	Message  string `json:"message"`
}

const (
	MessageSuccess = "Tenant invited successfully"
	MessageFailure = "Failed to onboard tenant. Please try again."
	MessageInvalid = "Invalid onboarding request"
)

type Service interface {
	// InviteTenantWithLease creates the tenant, lease, billing customer,
	// subscription and invitation, or none of them. The Result is always
	// filled; on failure the error is a *FailedError.
	InviteTenantWithLease(ctx context.Context, ownerID string, req InviteTenantRequest) (Result, error)
	// PendingCleanup lists runs that may have left resources behind.
	PendingCleanup(ctx context.Context, limit int) ([]OnboardingRun, error)
	GetRun(ctx context.Context, runID string) (OnboardingRun, error)
}
