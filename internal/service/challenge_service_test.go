package service

import (
	"context"
	"errors"
	"testing"

	"github.com/dushixiang/propdesk/internal/xe"
	"github.com/dushixiang/propdesk/pkg/strapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChallengeService_Sync(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.strapi.challenges = []strapi.Challenge{standardChallenge(1, 10000), standardChallenge(2, 50000)}

	result, err := f.challenges.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, &SyncResult{Created: 2}, result)

	changed := standardChallenge(2, 50000)
	changed.Name = "Pro 50K"
	changed.Rules.MaxDrawdownPercent = 12
	f.strapi.challenges = []strapi.Challenge{standardChallenge(1, 10000), changed}

	result, err = f.challenges.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, &SyncResult{Updated: 2}, result)

	list, err := f.challenges.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Pro 50K", list[1].Name)

	rules, err := f.challenges.Rules(ctx, list[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 12.0, rules.MaxDrawdownPercent)
	assert.Equal(t, 2, rules.MinimumTradingDays)
}

func TestChallengeService_SyncFailure(t *testing.T) {
	f := newFixture(t)
	f.strapi.err = errors.New("cms down")

	_, err := f.challenges.Sync(context.Background())
	assert.ErrorContains(t, err, "cms down")
}

func TestChallengeService_GetMissing(t *testing.T) {
	f := newFixture(t)
	_, err := f.challenges.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, xe.ErrChallengeNotFound)
	assert.True(t, xe.IsNotFound(err))
}
