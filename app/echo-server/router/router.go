package router

import (
	"directMail/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetupOfferRoutes(api *echo.Group, handler *rest.OfferHandler) {
	offers := api.Group("/offers")

	offers.GET("", handler.GetAllOffers)
	offers.GET("/:id", handler.GetOfferByID)
	offers.POST("", handler.CreateOffer)
	offers.PUT("/:id", handler.UpdateOffer)
	offers.DELETE("/:id", handler.DeleteOffer)
}

func SetupChainRoutes(api *echo.Group, handler *rest.ChainHandler) {
	chains := api.Group("/chains")

	chains.GET("", handler.ListChains)
	chains.GET("/:id", handler.GetChain)
	chains.POST("", handler.CreateChain)
}

func SetupCampaignRoutes(api *echo.Group, handler *rest.CampaignHandler) {
	campaigns := api.Group("/campaigns")

	campaigns.GET("", handler.GetAllCampaigns)
	campaigns.GET("/:id", handler.GetCampaignByID)
	campaigns.POST("", handler.CreateCampaign)
	campaigns.PUT("/:id", handler.UpdateCampaign)
	campaigns.PUT("/:id/offers", handler.SetCampaignOffer)
	campaigns.GET("/:id/key-codes", handler.GetKeyCodes)
	campaigns.POST("/:id/key-codes", handler.CreateKeyCode)
	campaigns.POST("/:id/extract", handler.ExtractCampaign)
}

func SetupClientRoutes(api *echo.Group, handler *rest.ClientHandler) {
	clients := api.Group("/clients")

	clients.GET("", handler.GetAllClients)
	clients.GET("/:id", handler.GetClientByID)
	clients.POST("", handler.CreateClient)
	clients.PUT("/:id", handler.UpdateClient)
}

func SetupClientOfferRoutes(api *echo.Group, handler *rest.ClientOfferHandler) {
	clientOffers := api.Group("/client-offers")

	clientOffers.POST("/at", handler.CreateClientOfferAt)
	clientOffers.POST("/letters", handler.AddOfferLetter)
	clientOffers.GET("/code/:code", handler.GetByCode)
}

func SetOrdersRoutes(api *echo.Group, ordersHandler *rest.OrdersHandler) {
	orders := api.Group("/orders")
	orders.POST("", ordersHandler.PlaceOrder)
	orders.POST("/not-selected", ordersHandler.PlaceOrderNotSelected)
	orders.GET("", ordersHandler.GetAllOrders)
	orders.GET("/:id", ordersHandler.GetOrderByID)
	orders.DELETE("/:id", ordersHandler.DeleteOrder)
}

func SetupPrintRoutes(api *echo.Group, handler *rest.PrintsHandler) {
	prints := api.Group("/prints")

	prints.POST("/export", handler.ExportPrints)
}

type Handlers struct {
	Offers       *rest.OfferHandler
	Chains       *rest.ChainHandler
	Campaigns    *rest.CampaignHandler
	Clients      *rest.ClientHandler
	ClientOffers *rest.ClientOfferHandler
	Orders       *rest.OrdersHandler
	Prints       *rest.PrintsHandler
}

func Register(api *echo.Group, h Handlers) {
	SetupOfferRoutes(api, h.Offers)
	SetupChainRoutes(api, h.Chains)
	SetupCampaignRoutes(api, h.Campaigns)
	SetupClientRoutes(api, h.Clients)
	SetupClientOfferRoutes(api, h.ClientOffers)
	SetOrdersRoutes(api, h.Orders)
	SetupPrintRoutes(api, h.Prints)
}
