package prints_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"directMail/business"
	"directMail/business/prints"
	"directMail/domain"
	"directMail/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func offerA(w *testkit.World) prints.ExportInput {
	return prints.ExportInput{
		OfferID:         w.OfferA.ID,
		ReturnAddressID: business.Ptr(uint64(40)),
		Printer:         "north",
		Date:            testkit.MailDate,
	}
}

func TestExportPrints(t *testing.T) {
	w := testkit.NewWorld(t)
	ctx := context.Background()
	w.Extracted(t)
	ana, ben := w.Clients[0], w.Clients[1]

	before, err := w.Store.Repos().Clients().LiveTotals(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), before.Mails)

	export, err := w.Engine.Prints.ExportPrints(ctx, offerA(w))
	require.NoError(t, err)
	assert.Equal(t, "Spring A_2026-10-01.csv", export.FileName)
	assert.Zero(t, export.Skipped)
	require.Len(t, export.Rows, 2)
	assert.Equal(t, ana.ID, export.Rows[0].ClientID)
	assert.Equal(t, ben.ID, export.Rows[1].ClientID)
	assert.Equal(t, "SPR26", export.Rows[0].CampaignCode)
	assert.Len(t, export.Rows[0].OfferCode, 7)
	assert.True(t, export.Rows[0].MailDate.Equal(testkit.MailDate))

	after, err := w.Store.Repos().Clients().LiveTotals(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), after.Mails, "exported prints count as mails")

	stats, err := w.Engine.Segments.CampaignKeyCodes(ctx, w.Campaign.ID)
	require.NoError(t, err)
	require.NotEmpty(t, stats)
	assert.Equal(t, int64(2), stats[0].Printed)
	assert.Equal(t, int64(0), stats[0].NotSent)

	_, err = w.Engine.Prints.ExportPrints(ctx, offerA(w))
	assert.ErrorIs(t, err, domain.ErrNoPrintsToExport, "a print is exported once")
}

func TestExportPrintsSkipsBlacklisted(t *testing.T) {
	w := testkit.NewWorld(t)
	ctx := context.Background()
	w.Extracted(t)

	ben := w.Clients[1]
	ben.IsBlacklisted = true
	require.NoError(t, w.Store.Repos().Clients().Update(ctx, &ben))

	export, err := w.Engine.Prints.ExportPrints(ctx, offerA(w))
	require.NoError(t, err)
	require.Len(t, export.Rows, 1)
	assert.Equal(t, w.Clients[0].ID, export.Rows[0].ClientID)
	assert.Equal(t, 1, export.Skipped)

	left, err := w.Store.Repos().Prints().ListByClient(ctx, ben.ID)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.True(t, left[0].IsExported, "skipped prints are retired")
}

func TestExportPrintsClientServicesKeepsBlacklisted(t *testing.T) {
	w := testkit.NewWorld(t)
	ctx := context.Background()
	w.Extracted(t)

	ben := w.Clients[1]
	ben.IsBlacklisted = true
	require.NoError(t, w.Store.Repos().Clients().Update(ctx, &ben))
	offer := w.OfferA
	offer.Type = domain.OfferTypeClientServices
	require.NoError(t, w.Store.Repos().Offers().Update(ctx, &offer))

	export, err := w.Engine.Prints.ExportPrints(ctx, offerA(w))
	require.NoError(t, err)
	assert.Len(t, export.Rows, 2)
	assert.Zero(t, export.Skipped)
}

func TestExportPrintsSelection(t *testing.T) {
	tests := []struct {
		name string
		edit func(in *prints.ExportInput)
		want int
	}{
		{name: "other printer", edit: func(in *prints.ExportInput) { in.Printer = "south" }},
		{name: "no return address", edit: func(in *prints.ExportInput) { in.ReturnAddressID = nil }},
		{name: "other brand", edit: func(in *prints.ExportInput) { in.BrandID = business.Ptr(uint64(8)) }},
		{name: "other day", edit: func(in *prints.ExportInput) { in.Date = testkit.Today }},
		{name: "past of mail day", edit: func(in *prints.ExportInput) { in.Past = true }},
		{name: "past of today", edit: func(in *prints.ExportInput) { in.Date, in.Past = testkit.Today, true }, want: 2},
		{name: "own brand", edit: func(in *prints.ExportInput) { in.BrandID = business.Ptr(testkit.BrandID) }, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := testkit.NewWorld(t)
			w.Extracted(t)

			in := offerA(w)
			tt.edit(&in)
			export, err := w.Engine.Prints.ExportPrints(context.Background(), in)
			if tt.want == 0 {
				assert.ErrorIs(t, err, domain.ErrNoPrintsToExport)
				return
			}
			require.NoError(t, err)
			assert.Len(t, export.Rows, tt.want)
		})
	}
}

func TestExportPrintsErrors(t *testing.T) {
	w := testkit.NewWorld(t)
	ctx := context.Background()

	_, err := w.Engine.Prints.ExportPrints(ctx, prints.ExportInput{})
	assert.ErrorIs(t, err, domain.ErrMissingRequiredData)

	_, err = w.Engine.Prints.ExportPrints(ctx, prints.ExportInput{OfferID: 404})
	assert.ErrorIs(t, err, domain.ErrOfferNotFound)

	_, err = w.Engine.Prints.ExportPrints(ctx, offerA(w))
	assert.ErrorIs(t, err, domain.ErrNoPrintsToExport, "nothing extracted yet")
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := prints.WriteCSV(&buf, []domain.PrintExport{{
		OfferCode:    "aB3dE5f",
		CampaignCode: "SPR26",
		MailDate:     testkit.MailDate,
		ClientID:     12,
		FirstName:    "Ana",
		LastName:     "Durand, Jr",
		Country:      "FR",
	}})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "data_entry_code,campaign_code,mail_date,client_id,gender,first_name,last_name,phone,city,state,zip_code,country", lines[0])
	assert.Equal(t, `aB3dE5f,SPR26,2026-10-01,12,,Ana,"Durand, Jr",,,,,FR`, lines[1])
}
