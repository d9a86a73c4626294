// Package fake is an in-memory payment processor for local runs and tests.
package fake

import (
	"context"
	"fmt"
	"sync"

	billingdomain "github.com/smallbiznis/tenantflow/internal/billing/domain"
)

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Provider() string {
	return "fake"
}

func (f *Factory) NewClient(cfg billingdomain.ClientConfig) (billingdomain.Client, error) {
	return NewClient(), nil
}

type Customer struct {
	ID                 string
	Name               string
	Email              string
	ConnectedAccountID string
	Metadata           map[string]string
}

type Subscription struct {
	ID                 string
	CustomerID         string
	RentAmount         int64
	Currency           string
	ConnectedAccountID string
	Canceled           bool
}

// Client keeps customers and subscriptions in memory. The Fail* fields make
// the matching call return that error without side effects.
type Client struct {
	mu            sync.Mutex
	seq           int
	customers     map[string]Customer
	subscriptions map[string]Subscription
	idempotency   map[string]string
	calls         []string

	FailCreateCustomer     error
	FailCreateSubscription error
	FailDeleteCustomer     error
	FailCancelSubscription error
}

func NewClient() *Client {
	return &Client{
		customers:     map[string]Customer{},
		subscriptions: map[string]Subscription{},
		idempotency:   map[string]string{},
	}
}

func (c *Client) CreateCustomer(ctx context.Context, params billingdomain.CustomerParams) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, "create_customer")

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if c.FailCreateCustomer != nil {
		return "", c.FailCreateCustomer
	}
	if id, ok := c.replay("customer", params.IdempotencyKey); ok {
		return id, nil
	}

	id := c.nextID("cus")
	c.customers[id] = Customer{
		ID:                 id,
		Name:               params.Name,
		Email:              params.Email,
		ConnectedAccountID: params.ConnectedAccountID,
		Metadata:           params.Metadata,
	}
	c.remember("customer", params.IdempotencyKey, id)
	return id, nil
}

func (c *Client) DeleteCustomer(ctx context.Context, customerID, connectedAccountID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, "delete_customer")

	if c.FailDeleteCustomer != nil {
		return c.FailDeleteCustomer
	}
	if _, ok := c.customers[customerID]; !ok {
		return fmt.Errorf("%w: customer %s", billingdomain.ErrResourceMissing, customerID)
	}
	delete(c.customers, customerID)
	return nil
}

func (c *Client) CreateSubscription(ctx context.Context, params billingdomain.SubscriptionParams) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, "create_subscription")

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if c.FailCreateSubscription != nil {
		return "", c.FailCreateSubscription
	}
	if _, ok := c.customers[params.CustomerID]; !ok {
		return "", fmt.Errorf("%w: customer %s", billingdomain.ErrResourceMissing, params.CustomerID)
	}
	if id, ok := c.replay("subscription", params.IdempotencyKey); ok {
		return id, nil
	}

	id := c.nextID("sub")
	c.subscriptions[id] = Subscription{
		ID:                 id,
		CustomerID:         params.CustomerID,
		RentAmount:         params.RentAmount,
		Currency:           params.Currency,
		ConnectedAccountID: params.ConnectedAccountID,
	}
	c.remember("subscription", params.IdempotencyKey, id)
	return id, nil
}

func (c *Client) CancelSubscription(ctx context.Context, subscriptionID, connectedAccountID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, "cancel_subscription")

	if c.FailCancelSubscription != nil {
		return c.FailCancelSubscription
	}
	sub, ok := c.subscriptions[subscriptionID]
	if !ok {
		return fmt.Errorf("%w: subscription %s", billingdomain.ErrResourceMissing, subscriptionID)
	}
	sub.Canceled = true
	c.subscriptions[subscriptionID] = sub
	return nil
}

// Customers returns a snapshot of live customers.
func (c *Client) Customers() []Customer {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Customer, 0, len(c.customers))
	for _, customer := range c.customers {
		out = append(out, customer)
	}
	return out
}

// ActiveSubscriptions returns subscriptions that were not canceled.
func (c *Client) ActiveSubscriptions() []Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Subscription, 0, len(c.subscriptions))
	for _, sub := range c.subscriptions {
		if !sub.Canceled {
			out = append(out, sub)
		}
	}
	return out
}

// Calls lists the operations invoked, in order.
func (c *Client) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

func (c *Client) nextID(prefix string) string {
	c.seq++
	return fmt.Sprintf("%s_fake_%d", prefix, c.seq)
}

func (c *Client) replay(kind, key string) (string, bool) {
	if key == "" {
		return "", false
	}
	id, ok := c.idempotency[kind+"/"+key]
	return id, ok
}

func (c *Client) remember(kind, key, id string) {
	if key == "" {
		return
	}
	c.idempotency[kind+"/"+key] = id
}
