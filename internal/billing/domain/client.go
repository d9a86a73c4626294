package domain

import (
	"context"
	"errors"
)

var (
	ErrProviderNotFound = errors.New("payment_provider_not_found")
	ErrInvalidConfig    = errors.New("invalid_payment_provider_config")
	// ErrResourceMissing is returned by a Client when the processor has no
	// record of the customer or subscription.
	ErrResourceMissing = errors.New("resource_missing")
)

type CustomerParams struct {
	Name               string
	Email              string
	Phone              *string
	ConnectedAccountID string
	IdempotencyKey     string
	Metadata           map[string]string
}

type SubscriptionParams struct {
	CustomerID         string
	RentAmount         int64
	Currency           string
	ConnectedAccountID string
	IdempotencyKey     string
	Metadata           map[string]string
}

// Client is the payment processor surface used for tenant billing. Every
// call acts on behalf of the owner's connected account.
type Client interface {
	CreateCustomer(ctx context.Context, params CustomerParams) (string, error)
	DeleteCustomer(ctx context.Context, customerID, connectedAccountID string) error
	CreateSubscription(ctx context.Context, params SubscriptionParams) (string, error)
	CancelSubscription(ctx context.Context, subscriptionID, connectedAccountID string) error
}

type ClientConfig struct {
	SecretKey     string
	RentProductID string
	APIBaseURL    string
}

type ClientFactory interface {
	Provider() string
	NewClient(cfg ClientConfig) (Client, error)
}
