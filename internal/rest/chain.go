package rest

import (
	"context"
	"net/http"
	"time"

	"directMail/business/chain"
	"directMail/domain"
	"directMail/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type ChainService interface {
	CreateChain(ctx context.Context, in chain.ChainInput) (domain.Chain, error)
	GetChain(ctx context.Context, id uint64) (chain.ChainDetails, error)
	ListChains(ctx context.Context) ([]domain.Chain, error)
}

type ChainHandler struct {
	chainService ChainService
	validator    *validator.Validate
	timeout      time.Duration
}

func NewChainHandler(chainService ChainService, timeout time.Duration) *ChainHandler {
	return &ChainHandler{
		chainService: chainService,
		validator:    validator.New(),
		timeout:      timeout,
	}
}

type CreateChainRequest struct {
	Title        string                           `json:"title" validate:"required"`
	BrandID      *uint64                          `json:"brand_id"`
	FirstOfferID uint64                           `json:"first_offer_id" validate:"required"`
	Edges        map[uint64][]chain.EdgeInput     `json:"edges" validate:"dive,dive"`
}

func (h *ChainHandler) CreateChain(c echo.Context) error {
	var req CreateChainRequest

	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate chain request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	created, err := h.chainService.CreateChain(ctx, chain.ChainInput{
		Title:        req.Title,
		BrandID:      req.BrandID,
		FirstOfferID: req.FirstOfferID,
		Edges:        req.Edges,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(created))
}

func (h *ChainHandler) GetChain(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	details, err := h.chainService.GetChain(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(details))
}

func (h *ChainHandler) ListChains(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	chains, err := h.chainService.ListChains(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(chains))
}
