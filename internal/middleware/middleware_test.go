package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"directMail/domain"
	"directMail/pkg/logger"
	jsonres "directMail/pkg/response"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"domain error", domain.ErrCampaignNotFound, http.StatusNotFound, "CAMPAIGN_NOT_FOUND"},
		{"wrapped domain error", errors.Join(errors.New("ctx"), domain.ErrProductOffer), http.StatusConflict, "PRODUCT_OFFER_NOT_FOUND"},
		{"custom message keeps code", domain.ErrMissingRequiredData.WithMessage("title is required"), http.StatusBadRequest, "MISSING_REQUIRED_DATA"},
		{"echo error", echo.NewHTTPError(http.StatusMethodNotAllowed, "nope"), http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED"},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	e := echo.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			ErrorHandler(tt.err, c)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body jsonres.ErrorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Code)
		})
	}
}

func TestRequestID(t *testing.T) {
	e := echo.New()

	var seen string
	handler := RequestID()(func(c echo.Context) error {
		seen = logger.TraceIDFromContext(c.Request().Context())
		return c.NoContent(http.StatusNoContent)
	})

	t.Run("keeps incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderXRequestID, "req-1")
		rec := httptest.NewRecorder()

		require.NoError(t, handler(e.NewContext(req, rec)))
		assert.Equal(t, "req-1", seen)
		assert.Equal(t, "req-1", rec.Header().Get(echo.HeaderXRequestID))
	})

	t.Run("generates an id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		require.NoError(t, handler(e.NewContext(req, rec)))
		assert.Len(t, seen, 36)
		assert.Equal(t, seen, rec.Header().Get(echo.HeaderXRequestID))
	})
}
