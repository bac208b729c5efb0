// Package testkit seeds a store with a small campaign for engine and handler
// tests. The store is an in-memory sqlite database, or the postgres database
// named by the environment when built with the integration tag.
package testkit

import (
	"context"
	"testing"
	"time"

	"directMail/business"
	"directMail/business/chain"
	"directMail/domain"
	"directMail/internal/bootstrap"
	psqlRepo "directMail/internal/repository/postgres"

	"github.com/stretchr/testify/require"
)

var (
	Today    = time.Date(2026, 10, 10, 9, 30, 0, 0, time.UTC)
	MailDate = time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	BrandID  = uint64(7)
)

// World is the seeded data. The chain is
//
//	A --3d--> B --0d--> Product
//	A --5d--> C
//
// and Letter is an offer outside of any chain.
type World struct {
	Store    *psqlRepo.Store
	Engine   bootstrap.Engine
	OfferA   domain.Offer
	OfferB   domain.Offer
	OfferC   domain.Offer
	Product  domain.Offer
	Letter   domain.Offer
	Chain    domain.Chain
	Campaign domain.Campaign
	// Clients are Ana (FR, 2 past orders), Ben (FR) and Chloe (DE).
	Clients []domain.Client
}

func NewWorld(t *testing.T) *World {
	t.Helper()
	ctx := context.Background()

	store := psqlRepo.NewStore(openDB(t))
	w := &World{
		Store:  store,
		Engine: bootstrap.NewEngine(store, nil, func() time.Time { return Today }),
	}
	repos := store.Repos()

	newOffer := func(title, kind string) domain.Offer {
		o := domain.Offer{Title: title, Type: kind, BrandID: business.Ptr(BrandID)}
		require.NoError(t, repos.Offers().Create(ctx, &o))
		return o
	}
	w.OfferA = newOffer("Spring A", domain.OfferTypeOffer)
	w.OfferB = newOffer("Spring B", domain.OfferTypeOffer)
	w.OfferC = newOffer("Spring C", domain.OfferTypeOffer)
	w.Product = newOffer("Seeds box", domain.OfferTypeProduct)
	w.Letter = newOffer("Thank you letter", domain.OfferTypeOffer)

	c, err := w.Engine.Chains.CreateChain(ctx, chain.ChainInput{
		Title:        "Spring",
		BrandID:      business.Ptr(BrandID),
		FirstOfferID: w.OfferA.ID,
		Edges: map[uint64][]chain.EdgeInput{
			w.OfferA.ID: {{NextOfferID: w.OfferB.ID, DaysToAdd: 3}, {NextOfferID: w.OfferC.ID, DaysToAdd: 5}},
			w.OfferB.ID: {{NextOfferID: w.Product.ID, DaysToAdd: 0}},
		},
	})
	require.NoError(t, err)
	w.Chain = c

	w.Campaign = domain.Campaign{
		Code:     "SPR26",
		Country:  "FR",
		MailDate: MailDate,
		ChainID:  business.Ptr(c.ID),
		BrandID:  business.Ptr(BrandID),
	}
	require.NoError(t, repos.Campaigns().Create(ctx, &w.Campaign))
	require.NoError(t, repos.Campaigns().UpsertOffer(ctx, &domain.CampaignOffer{
		CampaignID:      w.Campaign.ID,
		OfferID:         w.OfferA.ID,
		ReturnAddressID: business.Ptr(uint64(40)),
		Printer:         "north",
	}))

	for _, cl := range []domain.Client{
		{FirstName: "Ana", LastName: "Durand", Country: "FR", TotalOrders: 2},
		{FirstName: "Ben", LastName: "Martin", Country: "FR"},
		{FirstName: "Chloe", LastName: "Weber", Country: "DE"},
	} {
		cl.BrandID = business.Ptr(BrandID)
		require.NoError(t, repos.Clients().Create(ctx, &cl))
		w.Clients = append(w.Clients, cl)
	}

	return w
}

// Extracted creates a key code over every French client and extracts it,
// returning the client offers created on offer A keyed by client id.
func (w *World) Extracted(t *testing.T) map[uint64]domain.ClientOffer {
	t.Helper()
	ctx := context.Background()

	_, err := w.Engine.Segments.CreateKeyCode(ctx, FrenchKeyCode(w.Campaign.ID))
	require.NoError(t, err)
	_, err = w.Engine.Segments.ExtractSegmentedClients(ctx, w.Campaign.ID)
	require.NoError(t, err)

	out := map[uint64]domain.ClientOffer{}
	for _, cl := range w.Clients {
		prints, err := w.Store.Repos().Prints().ListByClient(ctx, cl.ID)
		require.NoError(t, err)
		for _, p := range prints {
			if p.OfferID != w.OfferA.ID {
				continue
			}
			co, err := w.Store.Repos().ClientOffers().FindByCode(ctx, p.OfferCode)
			require.NoError(t, err)
			out[cl.ID] = co
		}
	}
	return out
}

// Sequence returns the entry edge of offerID in the world's chain.
func (w *World) Sequence(t *testing.T, offerID uint64) domain.OfferSequence {
	t.Helper()
	g, err := w.Engine.Chains.Graph(context.Background(), w.Store.Repos(), w.Chain.ID)
	require.NoError(t, err)
	seq, ok := g.Entry(offerID)
	require.True(t, ok)
	return seq
}
