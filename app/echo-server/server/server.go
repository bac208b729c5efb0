// Package server assembles the echo instance: middleware, metrics endpoint
// and the /api/v1 routes over one store.
package server

import (
	"net/http"
	"time"

	"directMail/app/echo-server/metrics"
	"directMail/app/echo-server/router"
	"directMail/business"
	"directMail/business/campaign"
	"directMail/business/chain"
	"directMail/business/client"
	"directMail/business/offer"
	"directMail/internal/bootstrap"
	"directMail/internal/middleware"
	"directMail/internal/rest"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Options struct {
	Store          business.Store
	Cache          chain.GraphCache
	Clock          business.Clock
	RequestTimeout time.Duration
	AllowOrigins   []string
}

func New(opts Options) *echo.Echo {
	validate := validator.New()

	// Init repo
	repos := opts.Store.Repos()

	// Init service
	engine := bootstrap.NewEngine(opts.Store, opts.Cache, opts.Clock)
	offerService := offer.NewOfferService(repos.Offers())
	campaignService := campaign.NewCampaignService(repos.Campaigns(), repos.Chains(), repos.Offers())
	clientService := client.NewClientService(repos.Clients(), validate)

	// Init handler
	handlers := router.Handlers{
		Offers:       rest.NewOfferHandler(offerService, opts.RequestTimeout),
		Chains:       rest.NewChainHandler(engine.Chains, opts.RequestTimeout),
		Campaigns:    rest.NewCampaignHandler(campaignService, engine.Segments, opts.RequestTimeout),
		Clients:      rest.NewClientHandler(clientService, opts.RequestTimeout),
		ClientOffers: rest.NewClientOfferHandler(engine.Progression, opts.RequestTimeout),
		Orders:       rest.NewOrdersHandler(engine.Orders, opts.RequestTimeout),
		Prints:       rest.NewPrintsHandler(engine.Prints, opts.RequestTimeout),
	}

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	if len(opts.AllowOrigins) > 0 {
		e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
			AllowOrigins: opts.AllowOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderXRequestID},
		}))
	}
	e.Use(middleware.RequestID())
	e.Use(metrics.Middleware())

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/healthz", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	// Setup routes
	api := e.Group("/api/v1")
	router.Register(api, handlers)

	return e
}
