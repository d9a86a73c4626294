package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tenantflow/internal/clock"
	"github.com/smallbiznis/tenantflow/internal/tenant/domain"
	"github.com/smallbiznis/tenantflow/internal/tenant/repository"
	"github.com/smallbiznis/tenantflow/internal/tenant/service"
	"github.com/smallbiznis/tenantflow/pkg/db"
	"github.com/smallbiznis/tenantflow/pkg/errs"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var createdAt = time.Date(2025, time.March, 3, 9, 30, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := db.NewTest()
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&domain.Tenant{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func newService(t *testing.T, conn *gorm.DB) (domain.Service, *snowflake.Node) {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	return service.New(service.Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
		Clock: clock.NewFakeClock(createdAt),
	}), node
}

func TestCreateTenantNormalizesEmailAndName(t *testing.T) {
	ctx := context.Background()
	conn := setupTestDB(t)
	svc, node := newService(t, conn)

	ownerID := node.Generate()
	created, err := svc.Create(ctx, domain.CreateTenantRequest{
		OwnerID:   ownerID,
		Email:     "  Renter@Example.COM ",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Phone:     "+15550100",
	})
	if err != nil {
		t.Fatalf("create tenant: %v", err)
	}
	if created.Email != "renter@example.com" {
		t.Fatalf("expected lowercased email, got %q", created.Email)
	}
	if created.Name != "Ada Lovelace" {
		t.Fatalf("unexpected name %q", created.Name)
	}

	stored, err := svc.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get tenant: %v", err)
	}
	if stored.OwnerID != ownerID {
		t.Fatalf("expected owner %s, got %s", ownerID, stored.OwnerID)
	}
	if stored.Phone == nil || *stored.Phone != "+15550100" {
		t.Fatalf("expected phone to be stored, got %v", stored.Phone)
	}
	if stored.BillingCustomerID != nil {
		t.Fatalf("expected no billing customer on a new tenant")
	}
}

func TestCreateTenantStampsClockTime(t *testing.T) {
	conn := setupTestDB(t)
	svc, node := newService(t, conn)

	created, err := svc.Create(context.Background(), domain.CreateTenantRequest{
		OwnerID: node.Generate(),
		Email:   "clock@example.com",
	})
	if err != nil {
		t.Fatalf("create tenant: %v", err)
	}
	if !created.CreatedAt.Equal(createdAt) || !created.UpdatedAt.Equal(createdAt) {
		t.Fatalf("expected timestamps %s, got %s / %s", createdAt, created.CreatedAt, created.UpdatedAt)
	}
}

func TestCreateTenantDefaultsNameToEmailLocalPart(t *testing.T) {
	conn := setupTestDB(t)
	svc, node := newService(t, conn)

	created, err := svc.Create(context.Background(), domain.CreateTenantRequest{
		OwnerID: node.Generate(),
		Email:   "jane.doe@example.com",
	})
	if err != nil {
		t.Fatalf("create tenant: %v", err)
	}
	if created.Name != "jane.doe" {
		t.Fatalf("expected name from email, got %q", created.Name)
	}
}

func TestCreateTenantRejectsInvalidInput(t *testing.T) {
	conn := setupTestDB(t)
	svc, node := newService(t, conn)

	cases := []struct {
		name string
		req  domain.CreateTenantRequest
		want error
	}{
		{name: "missing owner", req: domain.CreateTenantRequest{Email: "a@example.com"}, want: domain.ErrInvalidOwner},
		{name: "missing email", req: domain.CreateTenantRequest{OwnerID: node.Generate()}, want: domain.ErrInvalidEmail},
		{name: "malformed email", req: domain.CreateTenantRequest{OwnerID: node.Generate(), Email: "nope"}, want: domain.ErrInvalidEmail},
		{name: "empty domain label", req: domain.CreateTenantRequest{OwnerID: node.Generate(), Email: "a@.com"}, want: domain.ErrInvalidEmail},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.req)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if !errors.Is(err, errs.ErrInvalidRequest) {
				t.Fatalf("expected invalid request classification, got %v", err)
			}
		})
	}
}

func TestDeleteTenantIsIdempotent(t *testing.T) {
	ctx := context.Background()
	conn := setupTestDB(t)
	svc, node := newService(t, conn)

	created, err := svc.Create(ctx, domain.CreateTenantRequest{
		OwnerID: node.Generate(),
		Email:   "gone@example.com",
	})
	if err != nil {
		t.Fatalf("create tenant: %v", err)
	}

	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("second delete: %v", err)
	}

	if _, err := svc.GetByID(ctx, created.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}
