package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tenantflow/internal/onboarding/domain"
	"github.com/smallbiznis/tenantflow/pkg/errs"
	"github.com/smallbiznis/tenantflow/pkg/mailaddr"
)

func invalid(field string) error {
	return fmt.Errorf("%w: %s", errs.ErrInvalidRequest, field)
}

func parseRequest(ownerID string, req domain.InviteTenantRequest) (validated, error) {
	var out validated

	owner, err := snowflake.ParseString(strings.TrimSpace(ownerID))
	if err != nil || owner == 0 {
		return out, invalid("owner_id")
	}
	out.ownerID = owner

	email, err := mailaddr.Normalize(req.Email)
	if err != nil {
		return out, invalid("email")
	}
	out.email = email

	unitID, err := snowflake.ParseString(strings.TrimSpace(req.UnitID))
	if err != nil || unitID == 0 {
		return out, invalid("unit_id")
	}
	out.unitID = unitID

	if raw := strings.TrimSpace(req.PropertyID); raw != "" {
		propertyID, err := snowflake.ParseString(raw)
		if err != nil || propertyID == 0 {
			return out, invalid("property_id")
		}
		out.propertyID = propertyID
	}

	start, err := time.Parse(dateLayout, strings.TrimSpace(req.LeaseStartDate))
	if err != nil {
		return out, invalid("lease_start_date")
	}
	out.startDate = start

	if raw := strings.TrimSpace(req.LeaseEndDate); raw != "" {
		end, err := time.Parse(dateLayout, raw)
		if err != nil || !end.After(start) {
			return out, invalid("lease_end_date")
		}
		out.endDate = &end
	}

	if req.RentAmount <= 0 {
		return out, invalid("rent_amount")
	}
	out.rentAmount = req.RentAmount

	if req.SecurityDeposit != nil {
		if *req.SecurityDeposit < 0 {
			return out, invalid("security_deposit")
		}
		deposit := *req.SecurityDeposit
		out.securityDeposit = &deposit
	}

	out.firstName = strings.TrimSpace(req.FirstName)
	out.lastName = strings.TrimSpace(req.LastName)
	out.phone = strings.TrimSpace(req.Phone)
	return out, nil
}

func (v validated) displayName() string {
	name := strings.TrimSpace(v.firstName + " " + v.lastName)
	if name != "" {
		return name
	}
	return mailaddr.LocalPart(v.email)
}
