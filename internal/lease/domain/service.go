package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tenantflow/pkg/errs"
)

type CreateLeaseRequest struct {
	UnitID snowflake.ID
	// PropertyID is optional. When set the unit must belong to it.
	PropertyID      snowflake.ID
	StartDate       time.Time
	EndDate         *time.Time
	RentAmount      int64
	SecurityDeposit *int64
}

type Service interface {
	CreateLease(ctx context.Context, ownerID, tenantID snowflake.ID, req CreateLeaseRequest) (Lease, error)
	GetByID(ctx context.Context, id snowflake.ID) (Lease, error)
	// DeleteLease removes the lease. A lease that is already gone is not an error.
	DeleteLease(ctx context.Context, id snowflake.ID) error
}

var (
	ErrInvalidOwner      = fmt.Errorf("%w: invalid_owner", errs.ErrInvalidRequest)
	ErrInvalidTenant     = fmt.Errorf("%w: invalid_tenant", errs.ErrInvalidRequest)
	ErrInvalidUnit       = fmt.Errorf("%w: invalid_unit", errs.ErrInvalidRequest)
	ErrInvalidStartDate  = fmt.Errorf("%w: invalid_start_date", errs.ErrInvalidRequest)
	ErrInvalidEndDate    = fmt.Errorf("%w: invalid_end_date", errs.ErrInvalidRequest)
	ErrInvalidRentAmount = fmt.Errorf("%w: invalid_rent_amount", errs.ErrInvalidRequest)
	ErrInvalidDeposit    = fmt.Errorf("%w: invalid_security_deposit", errs.ErrInvalidRequest)
	ErrInvalidID         = fmt.Errorf("%w: invalid_id", errs.ErrInvalidRequest)

	ErrUnitNotFound     = fmt.Errorf("%w: unit", errs.ErrNotFound)
	ErrPropertyNotFound = fmt.Errorf("%w: property", errs.ErrNotFound)
	ErrLeaseNotFound    = fmt.Errorf("%w: lease", errs.ErrNotFound)
)

// DefaultEndDate is one calendar year after start.
func DefaultEndDate(start time.Time) time.Time {
	return start.AddDate(1, 0, 0)
}

// PaymentDay derives the monthly due day from the lease start.
func PaymentDay(start time.Time) int {
	day := start.Day()
	if day > MaxPaymentDay {
		return MaxPaymentDay
	}
	return day
}
