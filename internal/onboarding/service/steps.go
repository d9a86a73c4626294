package service

import (
	"context"

	billingdomain "github.com/smallbiznis/tenantflow/internal/billing/domain"
	invitationdomain "github.com/smallbiznis/tenantflow/internal/invitation/domain"
	leasedomain "github.com/smallbiznis/tenantflow/internal/lease/domain"
	"github.com/smallbiznis/tenantflow/internal/onboarding/domain"
	"github.com/smallbiznis/tenantflow/internal/onboarding/saga"
	tenantdomain "github.com/smallbiznis/tenantflow/internal/tenant/domain"
)

// runState collects what each step produced so later steps and the
// compensations can reference it. Steps run sequentially.
type runState struct {
	runID    string
	progress domain.Progress
}

func (st *runState) idempotencyKey(step string) string {
	return st.runID + ":" + step
}

func (st *runState) metadata() map[string]string {
	return map[string]string{
		"onboarding_run_id": st.runID,
		"tenant_id":         st.progress.TenantID.String(),
		"lease_id":          st.progress.LeaseID.String(),
	}
}

func (s *Service) steps(in validated, st *runState) []saga.Step {
	return []saga.Step{
		{
			Name: domain.StepCreateTenant,
			Execute: func(ctx context.Context) error {
				tenant, err := s.tenants.Create(ctx, tenantdomain.CreateTenantRequest{
					OwnerID:   in.ownerID,
					Email:     in.email,
					FirstName: in.firstName,
					LastName:  in.lastName,
					Phone:     in.phone,
				})
				if err != nil {
					return err
				}
				st.progress.TenantID = tenant.ID
				return nil
			},
			Compensate: func(ctx context.Context) error {
				return s.tenants.Delete(ctx, st.progress.TenantID)
			},
		},
		{
			Name: domain.StepCreateLease,
			Execute: func(ctx context.Context) error {
				lease, err := s.leases.CreateLease(ctx, in.ownerID, st.progress.TenantID, leasedomain.CreateLeaseRequest{
					UnitID:          in.unitID,
					PropertyID:      in.propertyID,
					StartDate:       in.startDate,
					EndDate:         in.endDate,
					RentAmount:      in.rentAmount,
					SecurityDeposit: in.securityDeposit,
				})
				if err != nil {
					return err
				}
				st.progress.LeaseID = lease.ID
				return nil
			},
			Compensate: func(ctx context.Context) error {
				return s.leases.DeleteLease(ctx, st.progress.LeaseID)
			},
		},
		{
			Name: domain.StepVerifyAccount,
			Execute: func(ctx context.Context) error {
				accountID, err := s.accounts.VerifyOwnerAccount(ctx, in.ownerID)
				if err != nil {
					return err
				}
				st.progress.ConnectedAccount = accountID
				return nil
			},
		},
		{
			Name: domain.StepCreateCustomer,
			Execute: func(ctx context.Context) error {
				var phone *string
				if in.phone != "" {
					phone = &in.phone
				}
				customerID, err := s.billing.CreateCustomer(ctx, billingdomain.CreateCustomerRequest{
					Name:               in.displayName(),
					Email:              in.email,
					Phone:              phone,
					ConnectedAccountID: st.progress.ConnectedAccount,
					IdempotencyKey:     st.idempotencyKey(domain.StepCreateCustomer),
					Metadata:           st.metadata(),
				})
				if err != nil {
					return err
				}
				st.progress.CustomerID = customerID
				return nil
			},
			Compensate: func(ctx context.Context) error {
				return s.billing.DeleteCustomer(ctx, st.progress.CustomerID, st.progress.ConnectedAccount)
			},
		},
		{
			Name: domain.StepCreateSubscription,
			Execute: func(ctx context.Context) error {
				subscriptionID, err := s.billing.CreateSubscription(ctx, billingdomain.CreateSubscriptionRequest{
					CustomerID:         st.progress.CustomerID,
					RentAmount:         in.rentAmount,
					ConnectedAccountID: st.progress.ConnectedAccount,
					IdempotencyKey:     st.idempotencyKey(domain.StepCreateSubscription),
					Metadata:           st.metadata(),
				})
				if err != nil {
					return err
				}
				st.progress.SubscriptionID = subscriptionID
				return nil
			},
			Compensate: func(ctx context.Context) error {
				return s.billing.CancelSubscription(ctx, st.progress.SubscriptionID, st.progress.ConnectedAccount)
			},
		},
		{
			Name: domain.StepSendInvitation,
			Execute: func(ctx context.Context) error {
				code, err := s.invitations.SendInvitation(ctx, invitationdomain.SendInvitationRequest{
					Email:    in.email,
					TenantID: st.progress.TenantID,
					UnitID:   in.unitID,
					OwnerID:  in.ownerID,
				})
				if err != nil {
					return err
				}
				st.progress.InvitationCode = code
				return nil
			},
			Compensate: func(ctx context.Context) error {
				return s.invitations.Cancel(ctx, st.progress.InvitationCode)
			},
		},
	}
}
