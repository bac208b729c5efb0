package rest

import (
	"context"
	"mime"
	"net/http"
	"strconv"
	"time"

	"directMail/business/prints"
	"directMail/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type PrintsService interface {
	ExportPrints(ctx context.Context, in prints.ExportInput) (prints.Export, error)
}

type PrintsHandler struct {
	printsService PrintsService
	validator     *validator.Validate
	timeout       time.Duration
}

func NewPrintsHandler(printsService PrintsService, timeout time.Duration) *PrintsHandler {
	return &PrintsHandler{
		printsService: printsService,
		validator:     validator.New(),
		timeout:       timeout,
	}
}

type ExportPrintsRequest struct {
	OfferID         uint64  `json:"offer_id" validate:"required"`
	BrandID         *uint64 `json:"brand_id"`
	ReturnAddressID *uint64 `json:"return_address_id"`
	PayeeNameID     *uint64 `json:"payee_name_id"`
	Printer         string  `json:"printer"`
	Date            string  `json:"date" validate:"omitempty,datetime=2006-01-02"`
	DateType        string  `json:"date_type" validate:"omitempty,oneof=past future"`
}

// ExportPrints answers with the printer file as a CSV attachment. The
// exported prints are committed before the body is written.
func (h *PrintsHandler) ExportPrints(c echo.Context) error {
	var req ExportPrintsRequest

	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate export request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	in := prints.ExportInput{
		OfferID:         req.OfferID,
		BrandID:         req.BrandID,
		ReturnAddressID: req.ReturnAddressID,
		PayeeNameID:     req.PayeeNameID,
		Printer:         req.Printer,
		Past:            req.DateType == "past",
	}
	if req.Date != "" {
		in.Date, _ = time.Parse(time.DateOnly, req.Date)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	export, err := h.printsService.ExportPrints(ctx, in)
	if err != nil {
		return err
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/csv")
	res.Header().Set(echo.HeaderContentDisposition, mime.FormatMediaType("attachment", map[string]string{"filename": export.FileName}))
	res.Header().Set("X-Skipped-Count", strconv.Itoa(export.Skipped))
	res.WriteHeader(http.StatusOK)
	return prints.WriteCSV(res, export.Rows)
}
