package stripe

import (
	"context"
	"errors"
	"strings"

	billingdomain "github.com/smallbiznis/tenantflow/internal/billing/domain"
	stripego "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"go.uber.org/zap"
)

type Factory struct {
	log *zap.Logger
}

func NewFactory(log *zap.Logger) *Factory {
	if log == nil {
		log = zap.NewNop()
	}
	return &Factory{log: log.Named("billing.stripe")}
}

func (f *Factory) Provider() string {
	return "stripe"
}

func (f *Factory) NewClient(cfg billingdomain.ClientConfig) (billingdomain.Client, error) {
	secret := strings.TrimSpace(cfg.SecretKey)
	productID := strings.TrimSpace(cfg.RentProductID)
	if secret == "" || productID == "" {
		return nil, billingdomain.ErrInvalidConfig
	}

	// The caller owns retries; the SDK must not replay creation calls.
	backendCfg := &stripego.BackendConfig{
		LeveledLogger:     f.log.Sugar(),
		MaxNetworkRetries: stripego.Int64(0),
	}
	if base := strings.TrimSpace(cfg.APIBaseURL); base != "" {
		backendCfg.URL = stripego.String(base)
	}

	api := &client.API{}
	api.Init(secret, &stripego.Backends{
		API:     stripego.GetBackendWithConfig(stripego.APIBackend, backendCfg),
		Connect: stripego.GetBackendWithConfig(stripego.ConnectBackend, backendCfg),
		Uploads: stripego.GetBackendWithConfig(stripego.UploadsBackend, backendCfg),
	})

	return &Client{api: api, rentProductID: productID}, nil
}

type Client struct {
	api           *client.API
	rentProductID string
}

func (c *Client) CreateCustomer(ctx context.Context, params billingdomain.CustomerParams) (string, error) {
	req := &stripego.CustomerParams{
		Name:  stripego.String(params.Name),
		Email: stripego.String(params.Email),
	}
	if params.Phone != nil && *params.Phone != "" {
		req.Phone = stripego.String(*params.Phone)
	}
	applyParams(&req.Params, ctx, params.ConnectedAccountID, params.IdempotencyKey, params.Metadata)

	customer, err := c.api.Customers.New(req)
	if err != nil {
		return "", translateError(err)
	}
	return customer.ID, nil
}

func (c *Client) DeleteCustomer(ctx context.Context, customerID, connectedAccountID string) error {
	req := &stripego.CustomerParams{}
	applyParams(&req.Params, ctx, connectedAccountID, "", nil)

	if _, err := c.api.Customers.Del(customerID, req); err != nil {
		return translateError(err)
	}
	return nil
}

func (c *Client) CreateSubscription(ctx context.Context, params billingdomain.SubscriptionParams) (string, error) {
	req := &stripego.SubscriptionParams{
		Customer: stripego.String(params.CustomerID),
		Items: []*stripego.SubscriptionItemsParams{
			{
				PriceData: &stripego.SubscriptionItemPriceDataParams{
					Currency:   stripego.String(params.Currency),
					Product:    stripego.String(c.rentProductID),
					UnitAmount: stripego.Int64(params.RentAmount),
					Recurring: &stripego.SubscriptionItemPriceDataRecurringParams{
						Interval: stripego.String(string(stripego.PriceRecurringIntervalMonth)),
					},
				},
			},
		},
	}
	applyParams(&req.Params, ctx, params.ConnectedAccountID, params.IdempotencyKey, params.Metadata)

	subscription, err := c.api.Subscriptions.New(req)
	if err != nil {
		return "", translateError(err)
	}
	return subscription.ID, nil
}

func (c *Client) CancelSubscription(ctx context.Context, subscriptionID, connectedAccountID string) error {
	req := &stripego.SubscriptionCancelParams{}
	applyParams(&req.Params, ctx, connectedAccountID, "", nil)

	_, err := c.api.Subscriptions.Cancel(subscriptionID, req)
	if err == nil {
		return nil
	}

	translated := translateError(err)
	if errors.Is(translated, billingdomain.ErrResourceMissing) {
		return translated
	}

	// Cancelling twice is rejected by the API; treat a canceled subscription as done.
	getReq := &stripego.SubscriptionParams{}
	applyParams(&getReq.Params, ctx, connectedAccountID, "", nil)
	current, getErr := c.api.Subscriptions.Get(subscriptionID, getReq)
	if getErr == nil && current.Status == stripego.SubscriptionStatusCanceled {
		return nil
	}
	return translated
}

func applyParams(p *stripego.Params, ctx context.Context, connectedAccountID, idempotencyKey string, metadata map[string]string) {
	p.Context = ctx
	if connectedAccountID != "" {
		p.SetStripeAccount(connectedAccountID)
	}
	if idempotencyKey != "" {
		p.SetIdempotencyKey(idempotencyKey)
	}
	for key, value := range metadata {
		p.AddExtra("metadata["+key+"]", value)
	}
}

func translateError(err error) error {
	var stripeErr *stripego.Error
	if errors.As(err, &stripeErr) && stripeErr.Code == stripego.ErrorCodeResourceMissing {
		return errors.Join(billingdomain.ErrResourceMissing, err)
	}
	return err
}
