package orders_test

import (
	"context"
	"testing"

	"directMail/business/orders"
	"directMail/business/progression"
	"directMail/domain"
	"directMail/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteOrder(t *testing.T) {
	w := testkit.NewWorld(t)
	ctx := context.Background()
	ana := w.Extracted(t)[w.Clients[0].ID]

	placed, err := w.Engine.Orders.PlaceOrder(ctx, orders.OrderInput{ClientOfferID: ana.ID, Amounts: domain.Amounts{Amount: 10}})
	require.NoError(t, err)
	b, c := placed.Advance.ClientOffers[0], placed.Advance.ClientOffers[1]

	report, err := w.Engine.Orders.DeleteOrder(ctx, placed.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, orders.DeletionReport{
		OrderID:      placed.Order.ID,
		Memberships:  3,
		Prints:       3,
		ClientOffers: 2,
		Deactivated:  true,
	}, report)

	repos := w.Store.Repos()
	_, err = repos.Orders().FindByID(ctx, placed.Order.ID)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	_, err = repos.ClientOffers().FindByID(ctx, b.ID)
	assert.ErrorIs(t, err, domain.ErrClientOfferNotFound)
	_, err = repos.ClientOffers().FindByID(ctx, c.ID)
	assert.ErrorIs(t, err, domain.ErrClientOfferNotFound)

	kept, err := repos.ClientOffers().FindByID(ctx, ana.ID)
	require.NoError(t, err)
	assert.False(t, kept.IsActivated)

	prints, err := repos.Prints().ListByClient(ctx, ana.ClientID)
	require.NoError(t, err)
	assert.Empty(t, prints)

	segments, err := repos.Segments().ListByCampaign(ctx, w.Campaign.ID)
	require.NoError(t, err)
	assert.Len(t, segments, 3, "segments are never deleted")

	t.Run("the step advances again", func(t *testing.T) {
		replaced, err := w.Engine.Orders.PlaceOrder(ctx, orders.OrderInput{ClientOfferID: ana.ID, Amounts: domain.Amounts{Amount: 10}})
		require.NoError(t, err)
		assert.True(t, replaced.Advance.Activated)
		assert.Len(t, replaced.Advance.ClientOffers, 2)
	})
}

func TestDeleteOrderKeepsSharedRecords(t *testing.T) {
	w := testkit.NewWorld(t)
	ctx := context.Background()
	ana := w.Extracted(t)[w.Clients[0].ID]

	first, err := w.Engine.Orders.PlaceOrder(ctx, orders.OrderInput{ClientOfferID: ana.ID, Amounts: domain.Amounts{Amount: 10}})
	require.NoError(t, err)
	second, err := w.Engine.Orders.PlaceOrder(ctx, orders.OrderInput{ClientOfferID: ana.ID, Amounts: domain.Amounts{Amount: 10}})
	require.NoError(t, err)
	require.Equal(t, progression.MsgAlreadyGenerated, second.Message)

	report, err := w.Engine.Orders.DeleteOrder(ctx, first.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, orders.DeletionReport{OrderID: first.Order.ID}, report)

	repos := w.Store.Repos()
	for _, co := range first.Advance.ClientOffers {
		_, err := repos.ClientOffers().FindByID(ctx, co.ID)
		assert.NoError(t, err)
	}
	kept, err := repos.ClientOffers().FindByID(ctx, ana.ID)
	require.NoError(t, err)
	assert.True(t, kept.IsActivated)

	prints, err := repos.Prints().ListByClient(ctx, ana.ClientID)
	require.NoError(t, err)
	assert.Len(t, prints, 5)

	_, err = repos.Orders().FindByID(ctx, second.Order.ID)
	assert.NoError(t, err)
}

func TestDeleteOrderProductStep(t *testing.T) {
	w := testkit.NewWorld(t)
	ctx := context.Background()
	ana := w.Extracted(t)[w.Clients[0].ID]

	placed, err := w.Engine.Orders.PlaceOrder(ctx, orders.OrderInput{ClientOfferID: ana.ID, Amounts: domain.Amounts{Amount: 10}})
	require.NoError(t, err)
	b := placed.Advance.ClientOffers[0]

	onB, err := w.Engine.Orders.PlaceOrder(ctx, orders.OrderInput{ClientOfferID: b.ID, Amounts: domain.Amounts{Amount: 4}})
	require.NoError(t, err)
	require.Len(t, onB.Advance.ClientOffers, 1)
	product := onB.Advance.ClientOffers[0]

	report, err := w.Engine.Orders.DeleteOrder(ctx, onB.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.Memberships)
	assert.Equal(t, 2, report.Prints)
	assert.Equal(t, int64(1), report.ClientOffers)
	assert.True(t, report.Deactivated)

	_, err = w.Store.Repos().ClientOffers().FindByID(ctx, product.ID)
	assert.ErrorIs(t, err, domain.ErrClientOfferNotFound)
	_, err = w.Store.Repos().ClientOffers().FindByID(ctx, b.ID)
	assert.NoError(t, err)
}

func TestDeleteOrderErrors(t *testing.T) {
	w := testkit.NewWorld(t)
	ctx := context.Background()

	_, err := w.Engine.Orders.DeleteOrder(ctx, 0)
	assert.ErrorIs(t, err, domain.ErrMissingRequiredData)
	_, err = w.Engine.Orders.DeleteOrder(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}
