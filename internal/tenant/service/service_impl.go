package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tenantflow/internal/clock"
	"github.com/smallbiznis/tenantflow/internal/tenant/domain"
	"github.com/smallbiznis/tenantflow/pkg/errs"
	"github.com/smallbiznis/tenantflow/pkg/mailaddr"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
	clock clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("tenant.service"),
		genID: p.GenID,
		repo:  p.Repo,
		clock: p.Clock,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateTenantRequest) (domain.Tenant, error) {
	if req.OwnerID == 0 {
		return domain.Tenant{}, domain.ErrInvalidOwner
	}

	email, err := mailaddr.Normalize(req.Email)
	if err != nil {
		return domain.Tenant{}, domain.ErrInvalidEmail
	}

	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)

	now := s.clock.Now().UTC()
	tenant := domain.Tenant{
		ID:                           s.genID.Generate(),
		OwnerID:                      req.OwnerID,
		FirstName:                    firstName,
		LastName:                     lastName,
		Name:                         displayName(firstName, lastName, email),
		Email:                        email,
		Phone:                        optional(req.Phone),
		EmergencyContactName:         optional(req.EmergencyContactName),
		EmergencyContactPhone:        optional(req.EmergencyContactPhone),
		EmergencyContactRelationship: optional(req.EmergencyContactRelationship),
		CreatedAt:                    now,
		UpdatedAt:                    now,
	}

	if err := s.repo.Insert(ctx, s.db, &tenant); err != nil {
		return domain.Tenant{}, errs.Persistence("insert tenant", err)
	}

	return tenant, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.Tenant, error) {
	if id == 0 {
		return domain.Tenant{}, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Tenant{}, errs.Persistence("find tenant", err)
	}
	if item == nil {
		return domain.Tenant{}, errs.ErrNotFound
	}

	return *item, nil
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	if id == 0 {
		return domain.ErrInvalidID
	}

	affected, err := s.repo.Delete(ctx, s.db, id)
	if err != nil {
		return errs.Persistence("delete tenant", err)
	}
	if affected == 0 {
		s.log.Debug("tenant already absent", zap.String("tenant_id", id.String()))
	}

	return nil
}

// displayName falls back to the local part of the email when no name was given.
func displayName(firstName, lastName, email string) string {
	name := strings.TrimSpace(firstName + " " + lastName)
	if name != "" {
		return name
	}
	return mailaddr.LocalPart(email)
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
