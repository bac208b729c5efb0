package rest

import (
	"context"
	"net/http"
	"time"

	"directMail/business/client"
	"directMail/domain"
	"directMail/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type ClientService interface {
	GetAllClients(ctx context.Context) ([]domain.Client, error)
	GetClientByID(ctx context.Context, id uint64) (*client.ClientView, error)
	CreateClient(ctx context.Context, c *domain.Client) (*domain.Client, error)
	UpdateClient(ctx context.Context, c *domain.Client) (*domain.Client, error)
}

type ClientHandler struct {
	clientService ClientService
	validator     *validator.Validate
	timeout       time.Duration
}

func NewClientHandler(clientService ClientService, timeout time.Duration) *ClientHandler {
	return &ClientHandler{
		clientService: clientService,
		validator:     validator.New(),
		timeout:       timeout,
	}
}

type ClientRequest struct {
	Gender        string  `json:"gender"`
	FirstName     string  `json:"first_name"`
	LastName      string  `json:"last_name" validate:"required"`
	Country       string  `json:"country"`
	City          string  `json:"city"`
	State         string  `json:"state"`
	ZipCode       string  `json:"zip_code"`
	BirthDate     string  `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	Phone         string  `json:"phone"`
	IsBlacklisted bool    `json:"is_blacklisted"`
	ImportedFrom  string  `json:"imported_from"`
	ListOwner     string  `json:"list_owner"`
	TotalAmount   float64 `json:"total_amount" validate:"gte=0"`
	TotalOrders   int64   `json:"total_orders" validate:"gte=0"`
	TotalMails    int64   `json:"total_mails" validate:"gte=0"`
	BrandID       *uint64 `json:"brand_id"`
}

func (r ClientRequest) toDomain() *domain.Client {
	c := &domain.Client{
		Gender:        r.Gender,
		FirstName:     r.FirstName,
		LastName:      r.LastName,
		Country:       r.Country,
		City:          r.City,
		State:         r.State,
		ZipCode:       r.ZipCode,
		Phone:         r.Phone,
		IsBlacklisted: r.IsBlacklisted,
		ImportedFrom:  r.ImportedFrom,
		ListOwner:     r.ListOwner,
		TotalAmount:   r.TotalAmount,
		TotalOrders:   r.TotalOrders,
		TotalMails:    r.TotalMails,
		BrandID:       r.BrandID,
	}
	if birth, err := time.Parse(time.DateOnly, r.BirthDate); err == nil {
		c.BirthDate = &birth
	}
	return c
}

func (h *ClientHandler) GetAllClients(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	clients, err := h.clientService.GetAllClients(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(clients))
}

// GetClientByID returns the client with its lifetime order, mail and amount totals.
func (h *ClientHandler) GetClientByID(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	view, err := h.clientService.GetClientByID(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(view))
}

func (h *ClientHandler) CreateClient(c echo.Context) error {
	var req ClientRequest

	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate client request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	created, err := h.clientService.CreateClient(ctx, req.toDomain())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(created))
}

func (h *ClientHandler) UpdateClient(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req ClientRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate client request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	cl := req.toDomain()
	cl.ID = id
	updated, err := h.clientService.UpdateClient(ctx, cl)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(updated))
}
