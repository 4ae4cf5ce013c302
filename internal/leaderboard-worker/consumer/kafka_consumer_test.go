package consumer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/campus-bet-ledger/pkg/rank"
)

type fakeRepo struct {
	entrants []rank.Entrant
	err      error
}

func (r *fakeRepo) ListBettors(ctx context.Context) ([]rank.Entrant, error) {
	return r.entrants, r.err
}

type fakeCache struct {
	standings []rank.Standing
	err       error
}

func (c *fakeCache) SetStandings(ctx context.Context, s []rank.Standing) error {
	c.standings = s
	return c.err
}

func TestRefresh_WritesRankedStandings(t *testing.T) {
	repo := &fakeRepo{entrants: []rank.Entrant{
		{UserID: "u-1", Name: "Alice", Balance: 300},
		{UserID: "u-2", Name: "Bob", Balance: 300},
		{UserID: "u-3", Name: "Carol", Balance: 120},
	}}
	cache := &fakeCache{}
	p := &Processor{Repo: repo, Cache: cache}

	require.NoError(t, p.Refresh(context.Background()))

	require.Len(t, cache.standings, 3)
	assert.Equal(t, 1, cache.standings[0].Rank)
	assert.Equal(t, 1, cache.standings[1].Rank)
	assert.Equal(t, 3, cache.standings[2].Rank)
	assert.Equal(t, "Carol", cache.standings[2].Name)
}

func TestRefresh_EmptyWritesEmptySnapshot(t *testing.T) {
	cache := &fakeCache{}
	p := &Processor{Repo: &fakeRepo{}, Cache: cache}

	require.NoError(t, p.Refresh(context.Background()))
	require.NotNil(t, cache.standings)
	assert.Empty(t, cache.standings)
}

func TestRefresh_RepoErrorSkipsCache(t *testing.T) {
	cache := &fakeCache{}
	p := &Processor{Repo: &fakeRepo{err: errors.New("db down")}, Cache: cache}

	err := p.Refresh(context.Background())
	require.Error(t, err)
	assert.Nil(t, cache.standings)
}

func TestRefresh_PropagatesCacheError(t *testing.T) {
	cache := &fakeCache{err: errors.New("redis down")}
	p := &Processor{
		Repo:  &fakeRepo{entrants: []rank.Entrant{{UserID: "u-1", Balance: 200}}},
		Cache: cache,
	}

	assert.Error(t, p.Refresh(context.Background()))
}
