package chain_test

import (
	"context"
	"testing"

	"directMail/business"
	"directMail/business/chain"
	"directMail/domain"
	"directMail/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingCache struct {
	edges map[uint64][]domain.OfferSequence
	hits  int
	sets  int
}

func (c *countingCache) Get(ctx context.Context, chainID uint64) ([]domain.OfferSequence, bool, error) {
	edges, ok := c.edges[chainID]
	if ok {
		c.hits++
	}
	return edges, ok, nil
}

func (c *countingCache) Set(ctx context.Context, chainID uint64, edges []domain.OfferSequence) error {
	c.sets++
	c.edges[chainID] = edges
	return nil
}

func TestCreateChain(t *testing.T) {
	w := testkit.NewWorld(t)
	ctx := context.Background()

	details, err := w.Engine.Chains.GetChain(ctx, w.Chain.ID)
	require.NoError(t, err)

	// A->B, A->C, B->Product, then a terminal edge for C and for Product.
	require.Len(t, details.Edges, 5)
	entry := details.Edges[0]
	assert.Equal(t, entry.ID, *details.Chain.OfferSequenceID)
	assert.Equal(t, w.OfferA.ID, entry.CurrentOfferID)
	assert.Equal(t, w.OfferB.ID, *entry.NextOfferID)
	assert.Equal(t, 3, entry.DaysToAdd)

	terminal := 0
	for _, e := range details.Edges {
		if e.Terminal() {
			terminal++
		}
	}
	assert.Equal(t, 2, terminal)

	assert.Equal(t, []domain.ChainLevel{
		{OfferID: w.OfferA.ID, Level: 0},
		{OfferID: w.OfferB.ID, Level: 1},
		{OfferID: w.OfferC.ID, Level: 1},
		{OfferID: w.Product.ID, Level: 2},
	}, details.Levels)
}

func TestCreateChainErrors(t *testing.T) {
	w := testkit.NewWorld(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   chain.ChainInput
		want error
	}{
		{
			name: "missing title",
			in:   chain.ChainInput{FirstOfferID: w.OfferA.ID},
			want: domain.ErrMissingRequiredData,
		},
		{
			name: "unknown offer",
			in: chain.ChainInput{
				Title:        "Ghost",
				FirstOfferID: w.OfferA.ID,
				Edges:        map[uint64][]chain.EdgeInput{w.OfferA.ID: {{NextOfferID: 999}}},
			},
			want: domain.ErrOfferNotFound,
		},
		{
			name: "negative delay",
			in: chain.ChainInput{
				Title:        "Late",
				FirstOfferID: w.OfferA.ID,
				Edges:        map[uint64][]chain.EdgeInput{w.OfferA.ID: {{NextOfferID: w.OfferB.ID, DaysToAdd: -1}}},
			},
			want: domain.ErrInvalidDataType,
		},
		{
			name: "title taken for the brand",
			in:   chain.ChainInput{Title: " Spring ", BrandID: business.Ptr(testkit.BrandID), FirstOfferID: w.OfferC.ID},
			want: domain.ErrDuplicateTitle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := w.Engine.Chains.CreateChain(ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	chains, err := w.Engine.Chains.ListChains(ctx)
	require.NoError(t, err)
	assert.Len(t, chains, 1)

	other, err := w.Engine.Chains.CreateChain(ctx, chain.ChainInput{Title: "Spring", FirstOfferID: w.OfferC.ID})
	require.NoError(t, err, "titles are unique per brand only")
	assert.NotZero(t, other.ID)
}

func TestGraphUsesCache(t *testing.T) {
	w := testkit.NewWorld(t)
	ctx := context.Background()

	cache := &countingCache{edges: map[uint64][]domain.OfferSequence{}}
	svc := chain.NewChainService(w.Store, cache)

	first, err := svc.Graph(ctx, w.Store.Repos(), w.Chain.ID)
	require.NoError(t, err)
	second, err := svc.Graph(ctx, w.Store.Repos(), w.Chain.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, first.Edges(), second.Edges())

	_, err = svc.Graph(ctx, w.Store.Repos(), 404)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets, "empty edge lists are not cached")
}
