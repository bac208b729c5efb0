package orders

import (
	"context"
	"errors"
	"fmt"

	"directMail/business"
	"directMail/domain"
	"directMail/pkg/logger"
)

type DeletionReport struct {
	OrderID      uint64 `json:"order_id"`
	Memberships  int64  `json:"memberships"`
	Prints       int    `json:"prints"`
	ClientOffers int64  `json:"client_offers"`
	Deactivated  bool   `json:"deactivated"`
}

// DeleteOrder removes an order and the records only it kept alive: segment
// memberships, prints and client offers on the ordered offer and the offers
// one edge downstream. Reference counts are read before anything is deleted
// and a record with two or more references is always kept. Segments are never
// deleted.
func (s *OrdersService) DeleteOrder(ctx context.Context, orderID uint64) (DeletionReport, error) {
	if err := ctx.Err(); err != nil {
		return DeletionReport{}, fmt.Errorf("context error: %w", err)
	}
	if orderID == 0 {
		return DeletionReport{}, domain.ErrMissingRequiredData.WithMessage("order id is required")
	}

	var report DeletionReport
	err := s.store.Transaction(ctx, func(tx business.Repos) error {
		var err error
		report, err = s.deleteOrder(ctx, tx, orderID)
		return err
	})
	if err != nil {
		logger.Error("failed to delete order", "order_id", orderID, err)
		return DeletionReport{}, err
	}

	OrdersDeletedTotal.Inc()
	logger.Info("order deleted", "order_id", orderID, "memberships", report.Memberships,
		"prints", report.Prints, "client_offers", report.ClientOffers)
	return report, nil
}

func (s *OrdersService) deleteOrder(ctx context.Context, tx business.Repos, orderID uint64) (DeletionReport, error) {
	order, err := tx.Orders().FindByID(ctx, orderID)
	if err != nil {
		return DeletionReport{}, err
	}
	report := DeletionReport{OrderID: order.ID}

	var own *domain.ClientOffer
	if order.ClientOfferID != nil {
		co, err := tx.ClientOffers().FindByID(ctx, *order.ClientOfferID)
		if err == nil {
			own = &co
		} else if !errors.Is(err, domain.ErrClientOfferNotFound) {
			return DeletionReport{}, err
		}
	}

	offerIDs, sequences, err := s.implicatedOffers(ctx, tx, order, own)
	if err != nil {
		return DeletionReport{}, err
	}

	offers, err := tx.Offers().FindByIDs(ctx, offerIDs)
	if err != nil {
		return DeletionReport{}, err
	}
	var products []uint64
	for _, o := range offers {
		if !o.Chainable() {
			products = append(products, o.ID)
		}
	}

	// Snapshot every reference count before the first delete.
	var memberships []domain.KeyCode
	if order.CampaignID != nil {
		memberships, err = tx.Segments().ListMemberships(ctx, *order.CampaignID, order.ClientID, offerIDs)
		if err != nil {
			return DeletionReport{}, err
		}
	}
	membershipRefs, err := tx.Segments().CountMembershipRefs(ctx, memberships)
	if err != nil {
		return DeletionReport{}, err
	}

	var matches []business.ClientOfferMatch
	for _, m := range memberships {
		for _, seqID := range sequences[m.OfferID] {
			matches = append(matches, business.ClientOfferMatch{
				CampaignID: order.CampaignID,
				ClientID:   order.ClientID,
				KeyCodeID:  business.Ptr(m.KeyID),
				SequenceID: seqID,
			})
		}
	}
	for _, p := range products {
		for _, seqID := range sequences[p] {
			matches = append(matches, business.ClientOfferMatch{
				CampaignID: order.CampaignID,
				ClientID:   order.ClientID,
				SequenceID: seqID,
			})
		}
	}

	candidates, err := tx.ClientOffers().FindMatching(ctx, matches)
	if err != nil {
		return DeletionReport{}, err
	}
	counted := candidates
	if own != nil {
		counted = append(counted, *own)
	}
	offerRefs, err := tx.ClientOffers().CountRefs(ctx, counted)
	if err != nil {
		return DeletionReport{}, err
	}

	var removable []domain.KeyCode
	for _, m := range memberships {
		refs := membershipRefs[m.ID]
		if refs.Orders <= 1 && refs.Prints <= 1 {
			removable = append(removable, m)
		}
	}

	ids := make([]uint64, 0, len(removable))
	for _, m := range removable {
		ids = append(ids, m.ID)
	}
	if report.Memberships, err = tx.Segments().DeleteMemberships(ctx, ids); err != nil {
		return DeletionReport{}, err
	}

	printMatches := make([]business.PrintMatch, 0, len(removable)+len(products))
	for _, m := range removable {
		printMatches = append(printMatches, business.PrintMatch{
			CampaignID: order.CampaignID,
			ClientID:   order.ClientID,
			KeyCodeID:  business.Ptr(m.KeyID),
			OfferID:    m.OfferID,
		})
	}
	for _, p := range products {
		printMatches = append(printMatches, business.PrintMatch{
			CampaignID: order.CampaignID,
			ClientID:   order.ClientID,
			OfferID:    p,
		})
	}
	for _, pm := range printMatches {
		deleted, err := tx.Prints().DeleteOne(ctx, pm)
		if err != nil {
			return DeletionReport{}, err
		}
		if deleted {
			report.Prints++
		} else {
			logger.Debug("no print to delete", "offer_id", pm.OfferID, "client_id", pm.ClientID)
		}
	}

	if err := tx.Orders().Delete(ctx, order.ID); err != nil {
		return DeletionReport{}, err
	}

	deleted := make(map[uint64]bool)
	var doomed []uint64
	for _, co := range candidates {
		refs := offerRefs[co.ID]
		if refs.Orders+refs.Prints <= 1 && !deleted[co.ID] {
			deleted[co.ID] = true
			doomed = append(doomed, co.ID)
		}
	}
	if report.ClientOffers, err = tx.ClientOffers().Delete(ctx, doomed); err != nil {
		return DeletionReport{}, err
	}

	// The ordered step may advance again once its downstream records are gone.
	if own != nil && own.IsActivated && !deleted[own.ID] && offerRefs[own.ID].Orders <= 1 {
		downstreamGone := false
		for id := range deleted {
			if id != own.ID {
				downstreamGone = true
				break
			}
		}
		if downstreamGone {
			if err := tx.ClientOffers().Deactivate(ctx, own.ID); err != nil {
				return DeletionReport{}, err
			}
			report.Deactivated = true
		}
	}

	return report, nil
}

// implicatedOffers returns the ordered offer followed by the offers one edge
// downstream of it, and the chain edges identifying each of them.
func (s *OrdersService) implicatedOffers(ctx context.Context, tx business.Repos, order domain.Order, own *domain.ClientOffer) ([]uint64, map[uint64][]uint64, error) {
	sequences := make(map[uint64][]uint64)

	if order.ChainID == nil {
		if own != nil && own.CurrentSequenceID != nil {
			sequences[order.OfferID] = []uint64{*own.CurrentSequenceID}
		}
		return []uint64{order.OfferID}, sequences, nil
	}

	g, err := s.chains.Graph(ctx, tx, *order.ChainID)
	if err != nil {
		return nil, nil, err
	}
	offerIDs := g.Reachable(order.OfferID, 1)
	for _, id := range offerIDs {
		sequences[id] = g.SequenceIDs(id)
	}
	return offerIDs, sequences, nil
}
