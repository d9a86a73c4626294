package domain

import "context"

type CreateCustomerRequest struct {
	Name               string
	Email              string
	Phone              *string
	ConnectedAccountID string
	IdempotencyKey     string
	Metadata           map[string]string
}

type CreateSubscriptionRequest struct {
	CustomerID         string
	RentAmount         int64
	ConnectedAccountID string
	IdempotencyKey     string
	Metadata           map[string]string
}

// Service provisions and removes tenant billing resources. Creation failures
// are returned as payment provider errors without retrying. Removal of a
// resource the processor no longer has counts as success.
type Service interface {
	CreateCustomer(ctx context.Context, req CreateCustomerRequest) (string, error)
	CreateSubscription(ctx context.Context, req CreateSubscriptionRequest) (string, error)
	DeleteCustomer(ctx context.Context, customerID, connectedAccountID string) error
	CancelSubscription(ctx context.Context, subscriptionID, connectedAccountID string) error
}
