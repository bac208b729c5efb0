package rest

import (
	"context"
	"net/http"
	"time"

	"directMail/domain"
	"directMail/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type OfferService interface {
	GetAllOffers(ctx context.Context) ([]domain.Offer, error)
	GetOfferByID(ctx context.Context, id uint64) (*domain.Offer, error)
	CreateOffer(ctx context.Context, offer *domain.Offer) (*domain.Offer, error)
	UpdateOffer(ctx context.Context, offer *domain.Offer) (*domain.Offer, error)
	DeleteOffer(ctx context.Context, id uint64) error
}

type OfferHandler struct {
	offerService OfferService
	validator    *validator.Validate
	timeout      time.Duration
}

func NewOfferHandler(offerService OfferService, timeout time.Duration) *OfferHandler {
	return &OfferHandler{
		offerService: offerService,
		validator:    validator.New(),
		timeout:      timeout,
	}
}

type OfferRequest struct {
	Title       string  `json:"title" validate:"required"`
	Type        string  `json:"type" validate:"omitempty,oneof=offer product client-services payment-reminder"`
	Description string  `json:"description"`
	Porter      string  `json:"porter"`
	Owner       string  `json:"owner"`
	Theme       string  `json:"theme"`
	Grade       string  `json:"grade"`
	Language    string  `json:"language"`
	Origin      string  `json:"origin"`
	Country     string  `json:"country"`
	BrandID     *uint64 `json:"brand_id"`
}

func (r OfferRequest) toDomain() *domain.Offer {
	return &domain.Offer{
		Title:       r.Title,
		Type:        r.Type,
		Description: r.Description,
		Porter:      r.Porter,
		Owner:       r.Owner,
		Theme:       r.Theme,
		Grade:       r.Grade,
		Language:    r.Language,
		Origin:      r.Origin,
		Country:     r.Country,
		BrandID:     r.BrandID,
	}
}

func (h *OfferHandler) GetAllOffers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	offers, err := h.offerService.GetAllOffers(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(offers))
}

func (h *OfferHandler) GetOfferByID(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	offer, err := h.offerService.GetOfferByID(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(offer))
}

func (h *OfferHandler) CreateOffer(c echo.Context) error {
	var req OfferRequest

	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate offer request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	offer, err := h.offerService.CreateOffer(ctx, req.toDomain())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(offer))
}

func (h *OfferHandler) UpdateOffer(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req OfferRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate offer request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	offer := req.toDomain()
	offer.ID = id
	updated, err := h.offerService.UpdateOffer(ctx, offer)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(updated))
}

func (h *OfferHandler) DeleteOffer(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.offerService.DeleteOffer(ctx, id); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("Offer deleted successfully"))
}
