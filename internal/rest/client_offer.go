package rest

import (
	"context"
	"net/http"
	"time"

	"directMail/business/progression"
	"directMail/domain"
	"directMail/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type ProgressionService interface {
	CreateClientOffer(ctx context.Context, in progression.ClientOfferInput) (domain.ClientOffer, error)
	AddOfferLetter(ctx context.Context, in progression.OfferLetterInput) (progression.OfferLetter, error)
	FindByCode(ctx context.Context, code string) (domain.ClientOffer, error)
}

type ClientOfferHandler struct {
	progressionService ProgressionService
	validator          *validator.Validate
	timeout            time.Duration
}

func NewClientOfferHandler(progressionService ProgressionService, timeout time.Duration) *ClientOfferHandler {
	return &ClientOfferHandler{
		progressionService: progressionService,
		validator:          validator.New(),
		timeout:            timeout,
	}
}

type ClientOfferAtRequest struct {
	ClientID      uint64  `json:"client_id" validate:"required"`
	OfferID       uint64  `json:"offer_id" validate:"required"`
	ChainID       *uint64 `json:"chain_id"`
	CampaignID    *uint64 `json:"campaign_id"`
	FromSegmentID *uint64 `json:"from_segment_id"`
	AvailableAt   string  `json:"available_at" validate:"omitempty,datetime=2006-01-02"`
}

type OfferLetterRequest struct {
	OfferLetterID uint64  `json:"offer_letter_id" validate:"required"`
	ClientOfferID *uint64 `json:"client_offer_id"`
	ClientID      uint64  `json:"client_id" validate:"required_without=ClientOfferID"`
	OfferID       uint64  `json:"offer_id" validate:"required_without=ClientOfferID"`
	ChainID       *uint64 `json:"chain_id"`
	CampaignID    *uint64 `json:"campaign_id"`
}

// CreateClientOfferAt places a client at an offer of a chain, or on the
// offer's standalone edge when no chain is given.
func (h *ClientOfferHandler) CreateClientOfferAt(c echo.Context) error {
	var req ClientOfferAtRequest

	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate client offer request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	in := progression.ClientOfferInput{
		ClientID:      req.ClientID,
		OfferID:       req.OfferID,
		ChainID:       req.ChainID,
		CampaignID:    req.CampaignID,
		FromSegmentID: req.FromSegmentID,
	}
	if req.AvailableAt != "" {
		in.AvailableAt, _ = time.Parse(time.DateOnly, req.AvailableAt)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	co, err := h.progressionService.CreateClientOffer(ctx, in)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(co))
}

func (h *ClientOfferHandler) AddOfferLetter(c echo.Context) error {
	var req OfferLetterRequest

	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate offer letter request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	letter, err := h.progressionService.AddOfferLetter(ctx, progression.OfferLetterInput{
		OfferLetterID: req.OfferLetterID,
		ClientOfferID: req.ClientOfferID,
		ClientID:      req.ClientID,
		OfferID:       req.OfferID,
		ChainID:       req.ChainID,
		CampaignID:    req.CampaignID,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(letter))
}

func (h *ClientOfferHandler) GetByCode(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	co, err := h.progressionService.FindByCode(ctx, c.Param("code"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(co))
}
