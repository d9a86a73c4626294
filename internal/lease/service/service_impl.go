package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tenantflow/internal/clock"
	"github.com/smallbiznis/tenantflow/internal/lease/domain"
	propertydomain "github.com/smallbiznis/tenantflow/internal/property/domain"
	"github.com/smallbiznis/tenantflow/pkg/errs"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Repo         domain.Repository
	PropertyRepo propertydomain.Repository
	Clock        clock.Clock
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	repo         domain.Repository
	propertyRepo propertydomain.Repository
	clock        clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("lease.service"),
		genID:        p.GenID,
		repo:         p.Repo,
		propertyRepo: p.PropertyRepo,
		clock:        p.Clock,
	}
}

func (s *Service) CreateLease(ctx context.Context, ownerID, tenantID snowflake.ID, req domain.CreateLeaseRequest) (domain.Lease, error) {
	if err := validateCreateLease(ownerID, tenantID, req); err != nil {
		return domain.Lease{}, err
	}

	unit, err := s.propertyRepo.FindUnit(ctx, s.db, req.UnitID)
	if err != nil {
		return domain.Lease{}, errs.Persistence("find unit", err)
	}
	if unit == nil {
		return domain.Lease{}, domain.ErrUnitNotFound
	}
	if req.PropertyID != 0 && unit.PropertyID != req.PropertyID {
		return domain.Lease{}, domain.ErrUnitNotFound
	}

	property, err := s.propertyRepo.FindProperty(ctx, s.db, unit.PropertyID)
	if err != nil {
		return domain.Lease{}, errs.Persistence("find property", err)
	}
	if property == nil {
		return domain.Lease{}, domain.ErrPropertyNotFound
	}
	if property.OwnerID != ownerID {
		s.log.Warn("lease rejected, unit belongs to another owner",
			zap.String("owner_id", ownerID.String()),
			zap.String("unit_id", unit.ID.String()),
		)
		return domain.Lease{}, errs.ErrNotOwner
	}

	start := truncateDate(req.StartDate)
	end := domain.DefaultEndDate(start)
	if req.EndDate != nil {
		end = truncateDate(*req.EndDate)
	}
	if !end.After(start) {
		return domain.Lease{}, domain.ErrInvalidEndDate
	}

	now := s.clock.Now().UTC()
	lease := domain.Lease{
		ID:              s.genID.Generate(),
		TenantID:        tenantID,
		UnitID:          unit.ID,
		StartDate:       start,
		EndDate:         end,
		RentAmount:      req.RentAmount,
		SecurityDeposit: req.SecurityDeposit,
		Status:          domain.LeaseStatusActive,
		PaymentDay:      domain.PaymentDay(start),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Insert(ctx, s.db, &lease); err != nil {
		return domain.Lease{}, errs.Persistence("insert lease", err)
	}

	return lease, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.Lease, error) {
	if id == 0 {
		return domain.Lease{}, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Lease{}, errs.Persistence("find lease", err)
	}
	if item == nil {
		return domain.Lease{}, domain.ErrLeaseNotFound
	}

	return *item, nil
}

func (s *Service) DeleteLease(ctx context.Context, id snowflake.ID) error {
	if id == 0 {
		return domain.ErrInvalidID
	}

	affected, err := s.repo.Delete(ctx, s.db, id)
	if err != nil {
		return errs.Persistence("delete lease", err)
	}
	if affected == 0 {
		s.log.Debug("lease already absent", zap.String("lease_id", id.String()))
	}

	return nil
}

func validateCreateLease(ownerID, tenantID snowflake.ID, req domain.CreateLeaseRequest) error {
	switch {
	case ownerID == 0:
		return domain.ErrInvalidOwner
	case tenantID == 0:
		return domain.ErrInvalidTenant
	case req.UnitID == 0:
		return domain.ErrInvalidUnit
	case req.StartDate.IsZero():
		return domain.ErrInvalidStartDate
	case req.RentAmount <= 0:
		return domain.ErrInvalidRentAmount
	case req.SecurityDeposit != nil && *req.SecurityDeposit < 0:
		return domain.ErrInvalidDeposit
	}
	return nil
}

func truncateDate(value time.Time) time.Time {
	y, m, d := value.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
