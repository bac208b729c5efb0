package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"directMail/business"
	"directMail/internal/testkit"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*echo.Echo, *testkit.World) {
	t.Helper()
	w := testkit.NewWorld(t)
	e := New(Options{
		Store:          w.Store,
		Clock:          business.Clock(func() time.Time { return testkit.Today }),
		RequestTimeout: 5 * time.Second,
	})
	return e, w
}

func do(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRoutes(t *testing.T) {
	e, w := newTestServer(t)

	campaign := fmt.Sprintf("/api/v1/campaigns/%d", w.Campaign.ID)
	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"health", http.MethodGet, "/healthz", "", http.StatusOK},
		{"list offers", http.MethodGet, "/api/v1/offers", "", http.StatusOK},
		{"create offer", http.MethodPost, "/api/v1/offers", `{"title":"Autumn","type":"offer"}`, http.StatusCreated},
		{"create offer without title", http.MethodPost, "/api/v1/offers", `{"type":"offer"}`, http.StatusBadRequest},
		{"create offer with unknown type", http.MethodPost, "/api/v1/offers", `{"title":"X","type":"coupon"}`, http.StatusBadRequest},
		{"unknown offer", http.MethodGet, "/api/v1/offers/404", "", http.StatusNotFound},
		{"bad offer id", http.MethodGet, "/api/v1/offers/abc", "", http.StatusBadRequest},
		{"get chain", http.MethodGet, fmt.Sprintf("/api/v1/chains/%d", w.Chain.ID), "", http.StatusOK},
		{"unknown chain", http.MethodGet, "/api/v1/chains/404", "", http.StatusNotFound},
		{
			"create chain", http.MethodPost, "/api/v1/chains",
			fmt.Sprintf(`{"title":"Autumn","first_offer_id":%d,"edges":{"%d":[{"next_offer_id":%d,"days_to_add":2}]}}`,
				w.OfferC.ID, w.OfferC.ID, w.OfferB.ID),
			http.StatusCreated,
		},
		{"duplicate chain title", http.MethodPost, "/api/v1/chains",
			fmt.Sprintf(`{"title":"Spring","brand_id":%d,"first_offer_id":%d}`, testkit.BrandID, w.OfferA.ID), http.StatusConflict},
		{"get campaign", http.MethodGet, campaign, "", http.StatusOK},
		{"create campaign with bad date", http.MethodPost, "/api/v1/campaigns", `{"code":"X1","mail_date":"01/10/2026"}`, http.StatusBadRequest},
		{"key codes", http.MethodPost, campaign + "/key-codes", `{"filters":{"country":[{"eq":"FR"}]}}`, http.StatusCreated},
		{"invalid key code filter", http.MethodPost, campaign + "/key-codes", `{"filters":{"secret":[{"eq":1}]}}`, http.StatusBadRequest},
		{"key code stats", http.MethodGet, campaign + "/key-codes", "", http.StatusOK},
		{"extract", http.MethodPost, campaign + "/extract", "", http.StatusOK},
		{"list clients", http.MethodGet, "/api/v1/clients", "", http.StatusOK},
		{"unknown client", http.MethodGet, "/api/v1/clients/404", "", http.StatusNotFound},
		{"unknown code", http.MethodGet, "/api/v1/client-offers/code/nope", "", http.StatusNotFound},
		{"order without client offer", http.MethodPost, "/api/v1/orders", `{"amount":5}`, http.StatusBadRequest},
		{"order on unknown client offer", http.MethodPost, "/api/v1/orders", `{"client_offer_id":404}`, http.StatusNotFound},
		{"list orders by bad client", http.MethodGet, "/api/v1/orders?client_id=x", "", http.StatusBadRequest},
		{"delete unknown order", http.MethodDelete, "/api/v1/orders/404", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(e, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestOrderFlow(t *testing.T) {
	e, w := newTestServer(t)
	ana := w.Extracted(t)[w.Clients[0].ID]

	rec := do(e, http.MethodGet, "/api/v1/client-offers/code/"+ana.Code, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(e, http.MethodPost, "/api/v1/orders", fmt.Sprintf(`{"client_offer_id":%d,"amount":25,"currency":"EUR"}`, ana.ID))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	orders, err := w.Engine.Orders.ListOrders(t.Context(), ana.ClientID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, 25.0, orders[0].Amount)

	rec = do(e, http.MethodGet, fmt.Sprintf("/api/v1/orders?client_id=%d", ana.ClientID), "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodPost, "/api/v1/client-offers/letters",
		fmt.Sprintf(`{"offer_letter_id":%d,"client_offer_id":%d}`, w.Letter.ID, ana.ID))
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(e, http.MethodPost, "/api/v1/orders/not-selected",
		fmt.Sprintf(`{"client_id":%d,"offer_id":%d,"amount":3}`, w.Clients[2].ID, w.Product.ID))
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())

	rec = do(e, http.MethodDelete, fmt.Sprintf("/api/v1/orders/%d", orders[0].ID), "")
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(e, http.MethodGet, fmt.Sprintf("/api/v1/orders/%d", orders[0].ID), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportPrints(t *testing.T) {
	e, w := newTestServer(t)
	w.Extracted(t)

	body := fmt.Sprintf(`{"offer_id":%d,"return_address_id":40,"printer":"north","date":"2026-10-01"}`, w.OfferA.ID)
	rec := do(e, http.MethodPost, "/api/v1/prints/export", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/csv", rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "Spring A_2026-10-01.csv")
	assert.Equal(t, "0", rec.Header().Get("X-Skipped-Count"))

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "data_entry_code,campaign_code,mail_date"))
	assert.Contains(t, lines[1], ",SPR26,2026-10-01,")

	rec = do(e, http.MethodPost, "/api/v1/prints/export", body)
	assert.Equal(t, http.StatusNotFound, rec.Code, "prints are exported once")

	rec = do(e, http.MethodPost, "/api/v1/prints/export", `{"printer":"north"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(e, http.MethodPost, "/api/v1/prints/export", fmt.Sprintf(`{"offer_id":%d,"date_type":"soon"}`, w.OfferA.ID))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestIDHeader(t *testing.T) {
	e, _ := newTestServer(t)

	rec := do(e, http.MethodGet, "/healthz", "")
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}
