package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	// VerifyOwnerAccount returns the connected account id when the owner's
	// account exists with charges and payouts enabled.
	VerifyOwnerAccount(ctx context.Context, ownerID snowflake.ID) (string, error)
}
