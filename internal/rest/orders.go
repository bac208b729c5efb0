package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"directMail/business/orders"
	"directMail/domain"
	"directMail/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	OrdersHandler struct {
		validate      *validator.Validate
		ordersService OrdersService
		timeout       time.Duration
	}

	OrdersService interface {
		PlaceOrder(ctx context.Context, in orders.OrderInput) (orders.PlacedOrder, error)
		PlaceOrderNotSelected(ctx context.Context, in orders.NotSelectedInput) (orders.PlacedOrder, error)
		GetOrder(ctx context.Context, id uint64) (domain.Order, error)
		ListOrders(ctx context.Context, clientID uint64) ([]domain.Order, error)
		DeleteOrder(ctx context.Context, orderID uint64) (orders.DeletionReport, error)
	}

	AmountsInput struct {
		Amount         float64 `json:"amount" validate:"gte=0"`
		CashAmount     float64 `json:"cash_amount" validate:"gte=0"`
		CheckAmount    float64 `json:"check_amount" validate:"gte=0"`
		PostalAmount   float64 `json:"postal_amount" validate:"gte=0"`
		DiscountAmount float64 `json:"discount_amount" validate:"gte=0"`
		Payee          string  `json:"payee"`
		Currency       string  `json:"currency" validate:"omitempty,len=3"`
	}

	OrdersInput struct {
		ClientOfferID uint64 `json:"client_offer_id" validate:"required"`
		AmountsInput
	}

	NotSelectedOrderInput struct {
		ClientID   uint64  `json:"client_id" validate:"required"`
		OfferID    uint64  `json:"offer_id" validate:"required"`
		ChainID    *uint64 `json:"chain_id"`
		CampaignID *uint64 `json:"campaign_id"`
		AmountsInput
	}
)

func NewOrdersHandler(ordersService OrdersService, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		validate:      validator.New(),
		ordersService: ordersService,
		timeout:       timeout,
	}
}

func (a AmountsInput) toDomain() domain.Amounts {
	return domain.Amounts{
		Amount:   a.Amount,
		Cash:     a.CashAmount,
		Check:    a.CheckAmount,
		Postal:   a.PostalAmount,
		Discount: a.DiscountAmount,
		Payee:    a.Payee,
		Currency: a.Currency,
	}
}

func (h *OrdersHandler) PlaceOrder(c echo.Context) error {
	var request OrdersInput

	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validate.Struct(&request); err != nil {
		logger.Error("Failed to validate order", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	placed, err := h.ordersService.PlaceOrder(ctx, orders.OrderInput{
		ClientOfferID: request.ClientOfferID,
		Amounts:       request.toDomain(),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(placed))
}

func (h *OrdersHandler) PlaceOrderNotSelected(c echo.Context) error {
	var request NotSelectedOrderInput

	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validate.Struct(&request); err != nil {
		logger.Error("Failed to validate not selected order", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	placed, err := h.ordersService.PlaceOrderNotSelected(ctx, orders.NotSelectedInput{
		ClientID:   request.ClientID,
		OfferID:    request.OfferID,
		ChainID:    request.ChainID,
		CampaignID: request.CampaignID,
		Amounts:    request.toDomain(),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(placed))
}

func (h *OrdersHandler) GetAllOrders(c echo.Context) error {
	var clientID uint64
	if raw := c.QueryParam("client_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return domain.ErrInvalidDataType.WithMessage("invalid client_id")
		}
		clientID = id
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	list, err := h.ordersService.ListOrders(ctx, clientID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(list))
}

func (h *OrdersHandler) GetOrderByID(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	order, err := h.ordersService.GetOrder(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(order))
}

func (h *OrdersHandler) DeleteOrder(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	report, err := h.ordersService.DeleteOrder(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(report))
}
