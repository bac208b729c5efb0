package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"directMail/business/segment"
	"directMail/domain"
	"directMail/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type CampaignService interface {
	GetAllCampaigns(ctx context.Context) ([]domain.Campaign, error)
	GetCampaignByID(ctx context.Context, id uint64) (*domain.Campaign, error)
	CreateCampaign(ctx context.Context, campaign *domain.Campaign) (*domain.Campaign, error)
	UpdateCampaign(ctx context.Context, campaign *domain.Campaign) (*domain.Campaign, error)
	SetCampaignOffer(ctx context.Context, co *domain.CampaignOffer) (*domain.CampaignOffer, error)
}

type SegmentService interface {
	CreateKeyCode(ctx context.Context, in segment.KeyCodeInput) (segment.KeyCodeResult, error)
	ExtractSegmentedClients(ctx context.Context, campaignID uint64) (int64, error)
	CampaignKeyCodes(ctx context.Context, campaignID uint64) ([]domain.SegmentStats, error)
}

type CampaignHandler struct {
	campaignService CampaignService
	segmentService  SegmentService
	validator       *validator.Validate
	timeout         time.Duration
}

func NewCampaignHandler(campaignService CampaignService, segmentService SegmentService, timeout time.Duration) *CampaignHandler {
	return &CampaignHandler{
		campaignService: campaignService,
		segmentService:  segmentService,
		validator:       validator.New(),
		timeout:         timeout,
	}
}

type CampaignRequest struct {
	Code         string  `json:"code" validate:"required,excludesall=#$"`
	Country      string  `json:"country"`
	MailDate     string  `json:"mail_date" validate:"required,datetime=2006-01-02"`
	MailQuantity int     `json:"mail_quantity" validate:"gte=0"`
	ChainID      *uint64 `json:"chain_id"`
	BrandID      *uint64 `json:"brand_id"`
}

func (r CampaignRequest) toDomain() (*domain.Campaign, error) {
	mailDate, err := time.Parse(time.DateOnly, r.MailDate)
	if err != nil {
		return nil, domain.ErrInvalidDataType.WithMessage("mail_date must be YYYY-MM-DD")
	}
	return &domain.Campaign{
		Code:         r.Code,
		Country:      r.Country,
		MailDate:     mailDate,
		MailQuantity: r.MailQuantity,
		ChainID:      r.ChainID,
		BrandID:      r.BrandID,
	}, nil
}

type CampaignOfferRequest struct {
	OfferID         uint64  `json:"offer_id" validate:"required"`
	ReturnAddressID *uint64 `json:"return_address_id"`
	PayeeNameID     *uint64 `json:"payee_name_id"`
	Printer         string  `json:"printer"`
	Price           float64 `json:"price" validate:"gte=0"`
	Currency        string  `json:"currency" validate:"omitempty,len=3"`
}

type KeyCodeRequest struct {
	OfferID     *uint64         `json:"offer_id"`
	Filters     json.RawMessage `json:"filters"`
	OrFields    []string        `json:"or_fields"`
	Description string          `json:"description"`
	ListName    string          `json:"list_name"`
}

func (h *CampaignHandler) GetAllCampaigns(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	campaigns, err := h.campaignService.GetAllCampaigns(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(campaigns))
}

func (h *CampaignHandler) GetCampaignByID(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	campaign, err := h.campaignService.GetCampaignByID(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(campaign))
}

func (h *CampaignHandler) bindCampaign(c echo.Context) (*domain.Campaign, error) {
	var req CampaignRequest

	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind request", err)
		return nil, c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate campaign request", err)
		return nil, c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	return req.toDomain()
}

func (h *CampaignHandler) CreateCampaign(c echo.Context) error {
	campaign, err := h.bindCampaign(c)
	if campaign == nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	created, err := h.campaignService.CreateCampaign(ctx, campaign)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(created))
}

func (h *CampaignHandler) UpdateCampaign(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	campaign, err := h.bindCampaign(c)
	if campaign == nil {
		return err
	}
	campaign.ID = id

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	updated, err := h.campaignService.UpdateCampaign(ctx, campaign)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(updated))
}

func (h *CampaignHandler) SetCampaignOffer(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req CampaignOfferRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate campaign offer request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	co, err := h.campaignService.SetCampaignOffer(ctx, &domain.CampaignOffer{
		CampaignID:      id,
		OfferID:         req.OfferID,
		ReturnAddressID: req.ReturnAddressID,
		PayeeNameID:     req.PayeeNameID,
		Printer:         req.Printer,
		Price:           req.Price,
		Currency:        req.Currency,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(co))
}

func (h *CampaignHandler) CreateKeyCode(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req KeyCodeRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	result, err := h.segmentService.CreateKeyCode(ctx, segment.KeyCodeInput{
		CampaignID:  id,
		OfferID:     req.OfferID,
		Filters:     req.Filters,
		OrFields:    req.OrFields,
		Description: req.Description,
		ListName:    req.ListName,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(result))
}

func (h *CampaignHandler) GetKeyCodes(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	stats, err := h.segmentService.CampaignKeyCodes(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(stats))
}

func (h *CampaignHandler) ExtractCampaign(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	extracted, err := h.segmentService.ExtractSegmentedClients(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(map[string]interface{}{
		"campaign_id": id,
		"extracted":   extracted,
	}))
}
