package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/smallbiznis/tenantflow/internal/billing/domain"
	"github.com/smallbiznis/tenantflow/internal/config"
	"github.com/smallbiznis/tenantflow/pkg/errs"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log    *zap.Logger
	Cfg    config.Config
	Client domain.Client
}

type Service struct {
	log      *zap.Logger
	client   domain.Client
	currency string
}

func New(p Params) domain.Service {
	currency := strings.ToLower(strings.TrimSpace(p.Cfg.Payment.Currency))
	if currency == "" {
		currency = "usd"
	}
	return &Service{
		log:      p.Log.Named("billing.service"),
		client:   p.Client,
		currency: currency,
	}
}

func (s *Service) CreateCustomer(ctx context.Context, req domain.CreateCustomerRequest) (string, error) {
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.ConnectedAccountID) == "" {
		return "", fmt.Errorf("%w: customer email and connected account are required", errs.ErrInvalidRequest)
	}

	customerID, err := s.client.CreateCustomer(ctx, domain.CustomerParams{
		Name:               req.Name,
		Email:              req.Email,
		Phone:              req.Phone,
		ConnectedAccountID: req.ConnectedAccountID,
		IdempotencyKey:     req.IdempotencyKey,
		Metadata:           req.Metadata,
	})
	if err != nil {
		return "", errs.PaymentProvider("create customer", err)
	}
	return customerID, nil
}

func (s *Service) CreateSubscription(ctx context.Context, req domain.CreateSubscriptionRequest) (string, error) {
	if strings.TrimSpace(req.CustomerID) == "" || strings.TrimSpace(req.ConnectedAccountID) == "" {
		return "", fmt.Errorf("%w: customer and connected account are required", errs.ErrInvalidRequest)
	}
	if req.RentAmount <= 0 {
		return "", fmt.Errorf("%w: rent amount must be positive", errs.ErrInvalidRequest)
	}

	subscriptionID, err := s.client.CreateSubscription(ctx, domain.SubscriptionParams{
		CustomerID:         req.CustomerID,
		RentAmount:         req.RentAmount,
		Currency:           s.currency,
		ConnectedAccountID: req.ConnectedAccountID,
		IdempotencyKey:     req.IdempotencyKey,
		Metadata:           req.Metadata,
	})
	if err != nil {
		return "", errs.PaymentProvider("create subscription", err)
	}
	return subscriptionID, nil
}

func (s *Service) DeleteCustomer(ctx context.Context, customerID, connectedAccountID string) error {
	err := s.client.DeleteCustomer(ctx, customerID, connectedAccountID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrResourceMissing):
		s.log.Debug("billing customer already absent", zap.String("customer_id", customerID))
		return nil
	default:
		return errs.PaymentProvider("delete customer", err)
	}
}

func (s *Service) CancelSubscription(ctx context.Context, subscriptionID, connectedAccountID string) error {
	err := s.client.CancelSubscription(ctx, subscriptionID, connectedAccountID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrResourceMissing):
		s.log.Debug("billing subscription already absent", zap.String("subscription_id", subscriptionID))
		return nil
	default:
		return errs.PaymentProvider("cancel subscription", err)
	}
}
