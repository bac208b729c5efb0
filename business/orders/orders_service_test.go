package orders_test

import (
	"context"
	"testing"
	"time"

	"directMail/business"
	"directMail/business/orders"
	"directMail/business/progression"
	"directMail/domain"
	"directMail/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceOrder(t *testing.T) {
	w := testkit.NewWorld(t)
	ctx := context.Background()
	ana := w.Extracted(t)[w.Clients[0].ID]

	placed, err := w.Engine.Orders.PlaceOrder(ctx, orders.OrderInput{
		ClientOfferID: ana.ID,
		Amounts:       domain.Amounts{Cash: 10, Check: 5, Currency: "EUR"},
	})
	require.NoError(t, err)

	o := placed.Order
	assert.Equal(t, ana.ID, *o.ClientOfferID)
	assert.Equal(t, w.OfferA.ID, o.OfferID)
	assert.Equal(t, 15.0, o.Amount)
	assert.Equal(t, "SPR26", o.CampaignCode)
	assert.Equal(t, "Spring", o.ChainTitle)
	assert.Equal(t, "Spring A", o.OfferTitle)
	assert.Equal(t, "Ana", o.FirstName)
	assert.Equal(t, *ana.KeyCodeID, *o.KeyCodeID)
	assert.Equal(t, progression.MsgGenerated, placed.Message)
	assert.Len(t, placed.Advance.ClientOffers, 2)
	assert.Nil(t, placed.SubstitutePrint)

	client, err := w.Store.Repos().Clients().FindByID(ctx, ana.ClientID)
	require.NoError(t, err)
	require.NotNil(t, client.LastPurchaseDate)
	assert.True(t, client.LastPurchaseDate.Equal(testkit.Today))

	totals, err := w.Store.Repos().Clients().LiveTotals(ctx, ana.ClientID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), totals.Orders)
	assert.Equal(t, 15.0, totals.Amount)

	again, err := w.Engine.Orders.PlaceOrder(ctx, orders.OrderInput{ClientOfferID: ana.ID, Amounts: domain.Amounts{Amount: 20}})
	require.NoError(t, err)
	assert.Equal(t, progression.MsgAlreadyGenerated, again.Message)
	assert.Len(t, again.Advance.Prints, 2)

	list, err := w.Engine.Orders.ListOrders(ctx, ana.ClientID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	none, err := w.Engine.Orders.ListOrders(ctx, w.Clients[2].ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPlaceOrderErrors(t *testing.T) {
	w := testkit.NewWorld(t)
	ctx := context.Background()
	ana := w.Extracted(t)[w.Clients[0].ID]

	product, err := w.Engine.Progression.CreateClientOffer(ctx, progression.ClientOfferInput{
		ClientID:   ana.ClientID,
		ChainID:    business.Ptr(w.Chain.ID),
		CampaignID: business.Ptr(w.Campaign.ID),
		OfferID:    w.Product.ID,
	})
	require.NoError(t, err)

	tests := []struct {
		name string
		in   orders.OrderInput
		want error
	}{
		{name: "missing client offer", in: orders.OrderInput{}, want: domain.ErrMissingRequiredData},
		{name: "negative amount", in: orders.OrderInput{ClientOfferID: ana.ID, Amounts: domain.Amounts{Cash: -1}}, want: domain.ErrInvalidDataType},
		{name: "unknown client offer", in: orders.OrderInput{ClientOfferID: 404}, want: domain.ErrClientOfferNotFound},
		{name: "product offer", in: orders.OrderInput{ClientOfferID: product.ID, Amounts: domain.Amounts{Amount: 9}}, want: domain.ErrProductOffer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := w.Engine.Orders.PlaceOrder(ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	all, err := w.Engine.Orders.ListOrders(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestPlaceOrderRollsBackWhenAdvancementFails(t *testing.T) {
	w := testkit.NewWorld(t)
	ctx := context.Background()
	ana := w.Extracted(t)[w.Clients[0].ID]
	repos := w.Store.Repos()

	// Without a brand the next step cannot be segmented, which fails after
	// the order row is written.
	w.Campaign.BrandID = nil
	require.NoError(t, repos.Campaigns().Update(ctx, &w.Campaign))

	_, err := w.Engine.Orders.PlaceOrder(ctx, orders.OrderInput{ClientOfferID: ana.ID, Amounts: domain.Amounts{Amount: 12}})
	require.ErrorIs(t, err, domain.ErrCampaignOrBrandNotFound)

	all, err := w.Engine.Orders.ListOrders(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, all)

	client, err := repos.Clients().FindByID(ctx, ana.ClientID)
	require.NoError(t, err)
	assert.Nil(t, client.LastPurchaseDate)

	co, err := repos.ClientOffers().FindByID(ctx, ana.ID)
	require.NoError(t, err)
	assert.False(t, co.IsActivated)

	next, err := repos.ClientOffers().FindForSequences(ctx, ana.ClientID, ana.ChainID, ana.CampaignID,
		[]uint64{w.Sequence(t, w.OfferB.ID).ID, w.Sequence(t, w.OfferC.ID).ID})
	require.NoError(t, err)
	assert.Empty(t, next)

	prints, err := repos.Prints().ListByClient(ctx, ana.ClientID)
	require.NoError(t, err)
	assert.Len(t, prints, 1)
}

func TestPlaceOrderOnSubstitute(t *testing.T) {
	w := testkit.NewWorld(t)
	ctx := context.Background()
	ana := w.Extracted(t)[w.Clients[0].ID]

	letter, err := w.Engine.Progression.AddOfferLetter(ctx, progression.OfferLetterInput{
		OfferLetterID: w.Letter.ID,
		ClientOfferID: business.Ptr(ana.ID),
	})
	require.NoError(t, err)

	placed, err := w.Engine.Orders.PlaceOrder(ctx, orders.OrderInput{ClientOfferID: letter.ClientOffer.ID, Amounts: domain.Amounts{Amount: 30}})
	require.NoError(t, err)

	assert.Equal(t, ana.ID, *placed.Order.ClientOfferID, "orders on a substitute are attributed to the original")
	assert.Equal(t, w.OfferA.ID, placed.Order.OfferID)
	assert.True(t, placed.Advance.Activated)
	require.NotNil(t, placed.SubstitutePrint)
	assert.Equal(t, w.Letter.ID, placed.SubstitutePrint.OfferID)
	assert.Equal(t, letter.ClientOffer.Code, placed.SubstitutePrint.OfferCode)
}

func TestPlaceOrderNotSelected(t *testing.T) {
	w := testkit.NewWorld(t)
	ctx := context.Background()
	chloe := w.Clients[2]

	later := domain.Campaign{
		Code:     "WIN26",
		MailDate: time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC),
		ChainID:  business.Ptr(w.Chain.ID),
		BrandID:  business.Ptr(testkit.BrandID),
	}
	require.NoError(t, w.Store.Repos().Campaigns().Create(ctx, &later))

	placed, err := w.Engine.Orders.PlaceOrderNotSelected(ctx, orders.NotSelectedInput{
		ClientID: chloe.ID,
		OfferID:  w.OfferA.ID,
		Amounts:  domain.Amounts{Amount: 12},
	})
	require.NoError(t, err)

	o := placed.Order
	assert.Equal(t, w.Chain.ID, *o.ChainID)
	assert.Equal(t, w.Campaign.ID, *o.CampaignID, "campaigns mailing more than ten days ahead are not inferred")
	assert.Equal(t, "SPR26", o.CampaignCode)
	assert.True(t, placed.Advance.Activated)
	require.Len(t, placed.Advance.ClientOffers, 2)

	key, err := w.Store.Repos().Segments().FindByID(ctx, *o.KeyCodeID)
	require.NoError(t, err)
	assert.True(t, key.IsUnknown)
	assert.Equal(t, "SPR26$unknown#-1", key.Key)

	next, err := w.Store.Repos().Segments().FindByID(ctx, *placed.Advance.ClientOffers[0].KeyCodeID)
	require.NoError(t, err)
	assert.True(t, next.IsUnknown, "unattributed clients stay in the unknown pool downstream")
}

func TestPlaceOrderNotSelectedStandalone(t *testing.T) {
	w := testkit.NewWorld(t)
	ctx := context.Background()

	placed, err := w.Engine.Orders.PlaceOrderNotSelected(ctx, orders.NotSelectedInput{
		ClientID: w.Clients[1].ID,
		OfferID:  w.Letter.ID,
		Amounts:  domain.Amounts{Amount: 5},
	})
	require.NoError(t, err)

	assert.Nil(t, placed.Order.ChainID)
	assert.Nil(t, placed.Order.CampaignID)
	assert.Nil(t, placed.Order.KeyCodeID)
	assert.Equal(t, progression.MsgEndOfChain, placed.Message)

	_, err = w.Engine.Orders.PlaceOrderNotSelected(ctx, orders.NotSelectedInput{OfferID: w.Letter.ID})
	assert.ErrorIs(t, err, domain.ErrMissingRequiredData)

	_, err = w.Engine.Orders.PlaceOrderNotSelected(ctx, orders.NotSelectedInput{ClientID: w.Clients[1].ID, OfferID: w.Product.ID})
	assert.ErrorIs(t, err, domain.ErrProductOffer)
}

func TestGetOrder(t *testing.T) {
	w := testkit.NewWorld(t)

	_, err := w.Engine.Orders.GetOrder(context.Background(), 404)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}
