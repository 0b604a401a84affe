package service

import (
	"context"
	"testing"

	"github.com/dushixiang/propdesk/internal/models"
	"github.com/dushixiang/propdesk/internal/xe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountService_Create(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	challenge := f.syncedChallenge(t)

	account := f.account(t, challenge.ID, "meta-1", 0)
	assert.Equal(t, models.PlatformMT5, account.Platform)
	assert.Equal(t, models.AccountStatusActive, account.Status)

	tests := []struct {
		name string
		req  CreateAccountRequest
		want error
	}{
		{"bad platform", CreateAccountRequest{Login: "1", Platform: "ctrader", MetaApiID: "m-x", ChallengeID: challenge.ID}, xe.ErrInvalidPlatform},
		{"unknown challenge", CreateAccountRequest{Login: "1", Platform: "mt4", MetaApiID: "m-y", ChallengeID: "missing"}, xe.ErrChallengeNotFound},
		{"duplicate metaapi id", CreateAccountRequest{Login: "1", Platform: "mt4", MetaApiID: "meta-1", ChallengeID: challenge.ID}, xe.ErrMetaApiIDExists},
		{"bad email", CreateAccountRequest{Login: "1", Platform: "mt4", MetaApiID: "m-z", ChallengeID: challenge.ID, TraderEmail: "nope"}, xe.ErrInvalidParams},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.accounts.Create(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAccountService_UpdateAndDisable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	challenge := f.syncedChallenge(t)
	account := f.account(t, challenge.ID, "meta-1", 0)

	balance := 25000.0
	name := "Grace Hopper"
	updated, err := f.accounts.Update(ctx, account.ID, UpdateAccountRequest{InitialBalance: &balance, TraderName: &name})
	require.NoError(t, err)
	assert.Equal(t, 25000.0, updated.InitialBalance)
	assert.Equal(t, "Grace Hopper", updated.TraderName)
	assert.Equal(t, "trader@example.com", updated.TraderEmail)

	missing := "missing"
	_, err = f.accounts.Update(ctx, account.ID, UpdateAccountRequest{ChallengeID: &missing})
	assert.ErrorIs(t, err, xe.ErrChallengeNotFound)

	require.NoError(t, f.accounts.Disable(ctx, account.ID))
	require.NoError(t, f.accounts.Disable(ctx, account.ID))

	got, err := f.accounts.Get(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AccountStatusDisabled, got.Status)

	active, err := f.accounts.List(ctx, models.AccountStatusActive)
	require.NoError(t, err)
	assert.Empty(t, active)

	assert.ErrorIs(t, f.accounts.Disable(ctx, "missing"), xe.ErrAccountNotFound)
}
