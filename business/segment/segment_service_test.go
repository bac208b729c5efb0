package segment_test

import (
	"context"
	"encoding/json"
	"testing"

	"directMail/business"
	"directMail/business/segment"
	"directMail/domain"
	"directMail/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateKeyCode(t *testing.T) {
	w := testkit.NewWorld(t)
	ctx := context.Background()

	fr, err := w.Engine.Segments.CreateKeyCode(ctx, segment.KeyCodeInput{
		CampaignID: w.Campaign.ID,
		Filters:    json.RawMessage(testkit.FrenchFilter),
		ListName:   "fr",
	})
	require.NoError(t, err)
	assert.Equal(t, "SPR26#1", fr.Segment.Key)
	assert.Equal(t, w.OfferA.ID, fr.Segment.OfferID)
	assert.Equal(t, int64(2), fr.Enrolled)

	rest, err := w.Engine.Segments.CreateKeyCode(ctx, segment.KeyCodeInput{CampaignID: w.Campaign.ID})
	require.NoError(t, err)
	assert.Equal(t, "SPR26#2", rest.Segment.Key)
	assert.Equal(t, int64(1), rest.Enrolled, "clients already in a segment on the offer are skipped")

	repeat, err := w.Engine.Segments.CreateKeyCode(ctx, segment.KeyCodeInput{CampaignID: w.Campaign.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(0), repeat.Enrolled)
}

func TestCreateKeyCodeSameCodeAcrossBrands(t *testing.T) {
	w := testkit.NewWorld(t)
	ctx := context.Background()

	other := domain.Campaign{
		Code:     w.Campaign.Code,
		Country:  "FR",
		MailDate: testkit.MailDate,
		ChainID:  business.Ptr(w.Chain.ID),
		BrandID:  business.Ptr(uint64(8)),
	}
	require.NoError(t, w.Store.Repos().Campaigns().Create(ctx, &other))
	require.NoError(t, w.Store.Repos().Campaigns().UpsertOffer(ctx, &domain.CampaignOffer{
		CampaignID: other.ID,
		OfferID:    w.OfferA.ID,
		Printer:    "south",
	}))

	first, err := w.Engine.Segments.CreateKeyCode(ctx, testkit.FrenchKeyCode(w.Campaign.ID))
	require.NoError(t, err)
	second, err := w.Engine.Segments.CreateKeyCode(ctx, testkit.FrenchKeyCode(other.ID))
	require.NoError(t, err)

	assert.Equal(t, "SPR26#1", first.Segment.Key)
	assert.Equal(t, "SPR26#1", second.Segment.Key)
	assert.NotEqual(t, first.Segment.ID, second.Segment.ID)
	assert.Equal(t, int64(2), second.Enrolled, "membership is per campaign")
}

func TestCreateKeyCodeMetricFilter(t *testing.T) {
	w := testkit.NewWorld(t)

	res, err := w.Engine.Segments.CreateKeyCode(context.Background(), segment.KeyCodeInput{
		CampaignID: w.Campaign.ID,
		Filters:    json.RawMessage(`{"totalOrders":[{"gte":2}]}`),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Enrolled)
}

func TestCreateKeyCodeErrors(t *testing.T) {
	w := testkit.NewWorld(t)
	ctx := context.Background()

	_, err := w.Engine.Segments.CreateKeyCode(ctx, segment.KeyCodeInput{})
	assert.ErrorIs(t, err, domain.ErrMissingCampaignID)

	_, err = w.Engine.Segments.CreateKeyCode(ctx, segment.KeyCodeInput{
		CampaignID: w.Campaign.ID,
		Filters:    json.RawMessage(`{"password":[{"eq":"x"}]}`),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDataType)

	_, err = w.Engine.Segments.CreateKeyCode(ctx, segment.KeyCodeInput{CampaignID: 404})
	assert.ErrorIs(t, err, domain.ErrCampaignNotFound)

	orphan := domain.Campaign{Code: "NOCHAIN", MailDate: testkit.MailDate}
	require.NoError(t, w.Store.Repos().Campaigns().Create(ctx, &orphan))
	_, err = w.Engine.Segments.CreateKeyCode(ctx, segment.KeyCodeInput{CampaignID: orphan.ID})
	assert.ErrorIs(t, err, domain.ErrNoChainAssociated)

	keys, err := w.Store.Repos().Segments().ListKeys(ctx, w.Campaign.ID, false)
	require.NoError(t, err)
	assert.Empty(t, keys, "failed key codes leave nothing behind")
}

func TestExtractSegmentedClients(t *testing.T) {
	w := testkit.NewWorld(t)
	ctx := context.Background()

	_, err := w.Engine.Segments.CreateKeyCode(ctx, segment.KeyCodeInput{
		CampaignID: w.Campaign.ID,
		Filters:    json.RawMessage(testkit.FrenchFilter),
	})
	require.NoError(t, err)

	n, err := w.Engine.Segments.ExtractSegmentedClients(ctx, w.Campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = w.Engine.Segments.ExtractSegmentedClients(ctx, w.Campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n, "extraction is idempotent")

	campaign, err := w.Store.Repos().Campaigns().FindByID(ctx, w.Campaign.ID)
	require.NoError(t, err)
	assert.True(t, campaign.IsExtracted)

	prints, err := w.Store.Repos().Prints().ListByClient(ctx, w.Clients[0].ID)
	require.NoError(t, err)
	require.Len(t, prints, 1)
	p := prints[0]
	assert.Equal(t, w.OfferA.ID, p.OfferID)
	assert.Equal(t, testkit.MailDate, p.AvailableAt)
	assert.Equal(t, uint64(40), *p.ReturnAddressID)

	co, err := w.Store.Repos().ClientOffers().FindByCode(ctx, p.OfferCode)
	require.NoError(t, err)
	assert.Equal(t, w.Sequence(t, w.OfferA.ID).ID, *co.CurrentSequenceID)
	assert.Equal(t, *p.KeyCodeID, *co.KeyCodeID)
	assert.False(t, co.IsActivated)

	none, err := w.Store.Repos().Prints().ListByClient(ctx, w.Clients[2].ID)
	require.NoError(t, err)
	assert.Empty(t, none)

	stats, err := w.Engine.Segments.CampaignKeyCodes(ctx, w.Campaign.ID)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, int64(2), stats[0].Clients)
	assert.Equal(t, int64(2), stats[0].NotSent)
	assert.Equal(t, int64(0), stats[0].Printed)
}

func TestUpsertSegment(t *testing.T) {
	w := testkit.NewWorld(t)
	ctx := context.Background()
	ana, ben := w.Clients[0].ID, w.Clients[1].ID

	fr, err := w.Engine.Segments.CreateKeyCode(ctx, segment.KeyCodeInput{
		CampaignID: w.Campaign.ID,
		Filters:    json.RawMessage(testkit.FrenchFilter),
	})
	require.NoError(t, err)

	upsert := func(t *testing.T, offerID, clientID uint64, from *uint64) domain.KeyCodeDetails {
		t.Helper()
		var got domain.KeyCodeDetails
		err := w.Store.Transaction(ctx, func(tx business.Repos) error {
			id, err := w.Engine.Segments.UpsertSegment(ctx, tx, w.Campaign, offerID, clientID, from)
			if err != nil {
				return err
			}
			got, err = tx.Segments().FindByID(ctx, id)
			return err
		})
		require.NoError(t, err)
		return got
	}

	t.Run("unknown segments pool clients per offer", func(t *testing.T) {
		b := upsert(t, w.OfferB.ID, ana, nil)
		assert.Equal(t, "SPR26$unknown#-1", b.Key)
		assert.True(t, b.IsUnknown)

		assert.Equal(t, b.ID, upsert(t, w.OfferB.ID, ben, nil).ID)
		assert.Equal(t, b.ID, upsert(t, w.OfferB.ID, ana, business.Ptr(b.ID)).ID, "an unknown upstream stays unknown")

		c := upsert(t, w.OfferC.ID, ana, nil)
		assert.Equal(t, "SPR26$unknown#-2", c.Key)
	})

	t.Run("known upstream derives one segment per offer", func(t *testing.T) {
		from := business.Ptr(fr.Segment.ID)
		b := upsert(t, w.OfferB.ID, ana, from)
		assert.Equal(t, "SPR26#2", b.Key)
		assert.False(t, b.IsUnknown)
		assert.Equal(t, fr.Segment.ID, *b.FromSegmentID)

		assert.Equal(t, b.ID, upsert(t, w.OfferB.ID, ben, from).ID)
		assert.Equal(t, "SPR26#3", upsert(t, w.OfferC.ID, ana, from).Key)
	})

	t.Run("memberships are upserted", func(t *testing.T) {
		upsert(t, w.OfferB.ID, ana, business.Ptr(fr.Segment.ID))

		memberships, err := w.Store.Repos().Segments().ListMemberships(ctx, w.Campaign.ID, ana, []uint64{w.OfferB.ID})
		require.NoError(t, err)
		// one in the unknown pool, one in the derived segment
		require.Len(t, memberships, 2)
		for _, m := range memberships {
			assert.True(t, m.IsExtracted)
		}
	})

	t.Run("campaign without brand", func(t *testing.T) {
		err := w.Store.Transaction(ctx, func(tx business.Repos) error {
			campaign := w.Campaign
			campaign.BrandID = nil
			_, err := w.Engine.Segments.UpsertSegment(ctx, tx, campaign, w.OfferB.ID, ana, nil)
			return err
		})
		assert.ErrorIs(t, err, domain.ErrCampaignOrBrandNotFound)
	})
}
