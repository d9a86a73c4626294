package domain

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tenantflow/pkg/errs"
)

type CreateTenantRequest struct {
	OwnerID                      snowflake.ID
	Email                        string
	FirstName                    string
	LastName                     string
	Phone                        string
	EmergencyContactName         string
	EmergencyContactPhone        string
	EmergencyContactRelationship string
}

type Service interface {
	Create(ctx context.Context, req CreateTenantRequest) (Tenant, error)
	GetByID(ctx context.Context, id snowflake.ID) (Tenant, error)
	// Delete removes the tenant. A tenant that is already gone is not an error.
	Delete(ctx context.Context, id snowflake.ID) error
}

var (
	ErrInvalidOwner = fmt.Errorf("%w: invalid_owner", errs.ErrInvalidRequest)
	ErrInvalidEmail = fmt.Errorf("%w: invalid_email", errs.ErrInvalidRequest)
	ErrInvalidID    = fmt.Errorf("%w: invalid_id", errs.ErrInvalidRequest)
)
