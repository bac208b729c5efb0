package orders

import (
	"context"
	"fmt"

	"directMail/business"
	"directMail/business/chain"
	"directMail/business/progression"
	"directMail/domain"
	"directMail/pkg/logger"
)

// campaignLookaheadDays bounds how far ahead a campaign's mail date may be when it
// is inferred for an order placed without one.
const campaignLookaheadDays = 10

type OrdersService struct {
	store       business.Store
	chains      *chain.ChainService
	progression *progression.ProgressionService
	clock       business.Clock
}

func NewOrdersService(store business.Store, chains *chain.ChainService, progression *progression.ProgressionService, clock business.Clock) *OrdersService {
	return &OrdersService{
		store:       store,
		chains:      chains,
		progression: progression,
		clock:       clock,
	}
}

type OrderInput struct {
	ClientOfferID uint64
	Amounts       domain.Amounts
}

type PlacedOrder struct {
	Order   domain.Order        `json:"order"`
	Message string              `json:"message"`
	Advance progression.Advance `json:"advance"`
	// SubstitutePrint is set when the order came in on a substitute mailing.
	SubstitutePrint *domain.OfferPrint `json:"substitute_print,omitempty"`
}

func validAmounts(a domain.Amounts) bool {
	return a.Amount >= 0 && a.Cash >= 0 && a.Check >= 0 && a.Postal >= 0 && a.Discount >= 0
}

// PlaceOrder records an order on a client offer and advances the chain, all in one transaction.
func (s *OrdersService) PlaceOrder(ctx context.Context, in OrderInput) (PlacedOrder, error) {
	if err := ctx.Err(); err != nil {
		return PlacedOrder{}, fmt.Errorf("context error: %w", err)
	}

	var placed PlacedOrder
	err := s.store.Transaction(ctx, func(tx business.Repos) error {
		var err error
		placed, err = s.PlaceOrderTx(ctx, tx, in)
		return err
	})
	if err != nil {
		logger.Error("failed to place order", "client_offer_id", in.ClientOfferID, err)
		return PlacedOrder{}, err
	}

	OrdersPlacedTotal.WithLabelValues("selected").Inc()
	logger.Info("order placed", "order_id", placed.Order.ID, "message", placed.Message)
	return placed, nil
}

// PlaceOrderTx is PlaceOrder inside the caller's transaction.
func (s *OrdersService) PlaceOrderTx(ctx context.Context, tx business.Repos, in OrderInput) (PlacedOrder, error) {
	if in.ClientOfferID == 0 {
		return PlacedOrder{}, domain.ErrMissingRequiredData.WithMessage("client offer id is required")
	}
	if !validAmounts(in.Amounts) {
		return PlacedOrder{}, domain.ErrInvalidDataType.WithMessage("amounts cannot be negative")
	}

	initial, err := tx.ClientOffers().FindByID(ctx, in.ClientOfferID)
	if err != nil {
		return PlacedOrder{}, err
	}

	resolved := initial
	if initial.OriginalOfferID != nil {
		resolved, err = tx.ClientOffers().FindByID(ctx, *initial.OriginalOfferID)
		if err != nil {
			return PlacedOrder{}, err
		}
	}

	if resolved.CurrentSequenceID == nil {
		return PlacedOrder{}, domain.ErrOfferSequenceNotFound
	}
	seq, err := tx.Chains().FindSequence(ctx, *resolved.CurrentSequenceID)
	if err != nil {
		return PlacedOrder{}, err
	}

	offer, err := tx.Offers().FindByID(ctx, seq.CurrentOfferID)
	if err != nil {
		return PlacedOrder{}, err
	}
	if offer.Type == domain.OfferTypeProduct {
		return PlacedOrder{}, domain.ErrProductOffer
	}

	client, err := tx.Clients().FindByID(ctx, resolved.ClientID)
	if err != nil {
		return PlacedOrder{}, err
	}

	now := s.clock.Now()
	order := domain.Order{
		ClientID:       client.ID,
		ClientOfferID:  business.Ptr(resolved.ID),
		CampaignID:     resolved.CampaignID,
		OfferID:        offer.ID,
		ChainID:        resolved.ChainID,
		KeyCodeID:      resolved.KeyCodeID,
		BrandID:        resolved.BrandID,
		OfferTitle:     offer.Title,
		Amount:         in.Amounts.Total(),
		CashAmount:     in.Amounts.Cash,
		CheckAmount:    in.Amounts.Check,
		PostalAmount:   in.Amounts.Postal,
		DiscountAmount: in.Amounts.Discount,
		Payee:          in.Amounts.Payee,
		Currency:       in.Amounts.Currency,
		Gender:         client.Gender,
		FirstName:      client.FirstName,
		LastName:       client.LastName,
		Country:        client.Country,
		City:           client.City,
		State:          client.State,
		ZipCode:        client.ZipCode,
		Phone:          client.Phone,
		CreatedAt:      now,
	}
	if resolved.CampaignID != nil {
		campaign, err := tx.Campaigns().FindByID(ctx, *resolved.CampaignID)
		if err != nil {
			return PlacedOrder{}, err
		}
		order.CampaignCode = campaign.Code
	}
	if resolved.ChainID != nil {
		c, err := tx.Chains().FindByID(ctx, *resolved.ChainID)
		if err != nil {
			return PlacedOrder{}, err
		}
		order.ChainTitle = c.Title
	}

	if err := tx.Orders().Create(ctx, &order); err != nil {
		return PlacedOrder{}, err
	}
	if err := tx.Clients().TouchLastPurchase(ctx, client.ID, now); err != nil {
		return PlacedOrder{}, err
	}

	adv, err := s.progression.GenerateNextOffer(ctx, tx, seq, resolved)
	if err != nil {
		return PlacedOrder{}, err
	}
	placed := PlacedOrder{Order: order, Message: adv.Message, Advance: adv}

	if initial.ID != resolved.ID {
		print, err := s.progression.IssuePrint(ctx, tx, initial, now)
		if err != nil {
			return PlacedOrder{}, err
		}
		placed.SubstitutePrint = &print
	}

	return placed, nil
}

type NotSelectedInput struct {
	ClientID   uint64
	OfferID    uint64
	ChainID    *uint64
	CampaignID *uint64
	Amounts    domain.Amounts
}

// PlaceOrderNotSelected places an order for a client that was never mailed a
// client offer. Missing chain and campaign are inferred from the latest edge
// of the offer and the latest campaign on that chain mailing within ten days;
// an offer on no chain is ordered on its standalone edge.
func (s *OrdersService) PlaceOrderNotSelected(ctx context.Context, in NotSelectedInput) (PlacedOrder, error) {
	if err := ctx.Err(); err != nil {
		return PlacedOrder{}, fmt.Errorf("context error: %w", err)
	}
	if in.ClientID == 0 || in.OfferID == 0 {
		return PlacedOrder{}, domain.ErrMissingRequiredData
	}

	var placed PlacedOrder
	err := s.store.Transaction(ctx, func(tx business.Repos) error {
		chainID := in.ChainID
		if chainID == nil {
			seq, ok, err := tx.Chains().LatestSequenceForOffer(ctx, in.OfferID)
			if err != nil {
				return err
			}
			if ok {
				chainID = seq.ChainID
			}
		}

		campaignID := in.CampaignID
		if campaignID == nil && chainID != nil {
			limit := domain.AddDays(s.clock.Now(), campaignLookaheadDays)
			campaign, ok, err := tx.Campaigns().LatestForChain(ctx, *chainID, limit)
			if err != nil {
				return err
			}
			if ok {
				campaignID = business.Ptr(campaign.ID)
			}
		}

		co, err := s.progression.CreateClientOfferAt(ctx, tx, progression.ClientOfferInput{
			ClientID:   in.ClientID,
			ChainID:    chainID,
			CampaignID: campaignID,
			OfferID:    in.OfferID,
		})
		if err != nil {
			return err
		}

		placed, err = s.PlaceOrderTx(ctx, tx, OrderInput{ClientOfferID: co.ID, Amounts: in.Amounts})
		return err
	})
	if err != nil {
		logger.Error("failed to place not selected order", "client_id", in.ClientID, "offer_id", in.OfferID, err)
		return PlacedOrder{}, err
	}

	OrdersPlacedTotal.WithLabelValues("not_selected").Inc()
	logger.Info("not selected order placed", "order_id", placed.Order.ID)
	return placed, nil
}

func (s *OrdersService) GetOrder(ctx context.Context, id uint64) (domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return domain.Order{}, fmt.Errorf("context error: %w", err)
	}
	return s.store.Repos().Orders().FindByID(ctx, id)
}

func (s *OrdersService) ListOrders(ctx context.Context, clientID uint64) ([]domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if clientID != 0 {
		return s.store.Repos().Orders().FindByClient(ctx, clientID)
	}
	return s.store.Repos().Orders().FindAll(ctx)
}
