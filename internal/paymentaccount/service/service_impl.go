package service

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tenantflow/internal/paymentaccount/domain"
	"github.com/smallbiznis/tenantflow/pkg/errs"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("paymentaccount.service"),
		repo: p.Repo,
	}
}

func (s *Service) VerifyOwnerAccount(ctx context.Context, ownerID snowflake.ID) (string, error) {
	if ownerID == 0 {
		return "", fmt.Errorf("%w: invalid_owner", errs.ErrInvalidRequest)
	}

	account, err := s.repo.FindByOwner(ctx, s.db, ownerID)
	if err != nil {
		return "", errs.Persistence("find connected account", err)
	}
	if account == nil {
		return "", fmt.Errorf("%w: no connected account", errs.ErrPaymentAccountNotReady)
	}
	if !account.Ready() {
		s.log.Info("connected account not ready",
			zap.String("owner_id", ownerID.String()),
			zap.Bool("charges_enabled", account.ChargesEnabled),
			zap.Bool("payouts_enabled", account.PayoutsEnabled),
		)
		return "", fmt.Errorf("%w: charges or payouts disabled", errs.ErrPaymentAccountNotReady)
	}

	return account.AccountID, nil
}
