package progression

import (
	"context"
	"fmt"
	"time"

	"directMail/business"
	"directMail/business/chain"
	"directMail/business/segment"
	"directMail/domain"
	"directMail/pkg/logger"
)

const (
	MsgNotChainable     = "offer type does not chain"
	MsgEndOfChain       = "end of chain"
	MsgAlreadyGenerated = "next offers already generated"
	MsgGenerated        = "next offers generated"
)

type ProgressionService struct {
	store    business.Store
	chains   *chain.ChainService
	segments *segment.SegmentService
	clock    business.Clock
}

func NewProgressionService(store business.Store, chains *chain.ChainService, segments *segment.SegmentService, clock business.Clock) *ProgressionService {
	return &ProgressionService{
		store:    store,
		chains:   chains,
		segments: segments,
		clock:    clock,
	}
}

type ClientOfferInput struct {
	ClientID   uint64
	ChainID    *uint64
	CampaignID *uint64
	OfferID    uint64
	// OriginalOfferID marks the new record as a substitute of another client offer.
	OriginalOfferID *uint64
	// FromSegmentID is the upstream segment used for attribution, nil for unattributed.
	FromSegmentID *uint64
	// AvailableAt defaults to today.
	AvailableAt time.Time
}

// CreateClientOffer runs CreateClientOfferAt in its own transaction.
func (s *ProgressionService) CreateClientOffer(ctx context.Context, in ClientOfferInput) (domain.ClientOffer, error) {
	if err := ctx.Err(); err != nil {
		return domain.ClientOffer{}, fmt.Errorf("context error: %w", err)
	}

	var co domain.ClientOffer
	err := s.store.Transaction(ctx, func(tx business.Repos) error {
		var err error
		co, err = s.CreateClientOfferAt(ctx, tx, in)
		return err
	})
	if err != nil {
		logger.Error("failed to create client offer", "client_id", in.ClientID, "offer_id", in.OfferID, err)
		return domain.ClientOffer{}, err
	}
	return co, nil
}

// CreateClientOfferAt places a client on the edge of offerID in the chain, or
// on the standalone edge of the offer when no chain is given.
func (s *ProgressionService) CreateClientOfferAt(ctx context.Context, tx business.Repos, in ClientOfferInput) (domain.ClientOffer, error) {
	if in.ClientID == 0 || in.OfferID == 0 {
		return domain.ClientOffer{}, domain.ErrMissingRequiredData
	}

	client, err := tx.Clients().FindByID(ctx, in.ClientID)
	if err != nil {
		return domain.ClientOffer{}, err
	}

	seq, err := s.sequenceFor(ctx, tx, in.ChainID, in.OfferID)
	if err != nil {
		return domain.ClientOffer{}, err
	}

	if in.OriginalOfferID != nil {
		existing, ok, err := tx.ClientOffers().FindSubstitute(ctx, in.ClientID, in.ChainID, in.CampaignID, seq.ID)
		if err != nil {
			return domain.ClientOffer{}, err
		}
		if ok {
			return existing, nil
		}
	}

	var campaign *domain.Campaign
	if in.CampaignID != nil {
		c, err := tx.Campaigns().FindByID(ctx, *in.CampaignID)
		if err != nil {
			return domain.ClientOffer{}, err
		}
		campaign = &c
	}

	availableAt := in.AvailableAt
	if availableAt.IsZero() {
		availableAt = s.clock.Now()
	}

	co := domain.ClientOffer{
		CurrentSequenceID: business.Ptr(seq.ID),
		ChainID:           in.ChainID,
		CampaignID:        in.CampaignID,
		ClientID:          in.ClientID,
		OriginalOfferID:   in.OriginalOfferID,
		AvailableAt:       domain.Today(availableAt),
		BrandID:           client.BrandID,
	}
	if campaign != nil && campaign.BrandID != nil {
		co.BrandID = campaign.BrandID
	}
	if err := tx.ClientOffers().Create(ctx, &co); err != nil {
		return domain.ClientOffer{}, err
	}

	if campaign != nil {
		segmentID, err := s.segments.UpsertSegment(ctx, tx, *campaign, in.OfferID, in.ClientID, in.FromSegmentID)
		if err != nil {
			return domain.ClientOffer{}, err
		}
		if err := tx.ClientOffers().SetKeyCode(ctx, co.ID, segmentID); err != nil {
			return domain.ClientOffer{}, err
		}
		co.KeyCodeID = business.Ptr(segmentID)
	}

	return co, nil
}

func (s *ProgressionService) sequenceFor(ctx context.Context, tx business.Repos, chainID *uint64, offerID uint64) (domain.OfferSequence, error) {
	if chainID != nil {
		g, err := s.chains.Graph(ctx, tx, *chainID)
		if err != nil {
			return domain.OfferSequence{}, err
		}
		seq, ok := g.Entry(offerID)
		if !ok {
			return domain.OfferSequence{}, domain.ErrOfferSequenceNotFound
		}
		return seq, nil
	}

	seq, ok, err := tx.Chains().FindStandaloneSequence(ctx, offerID)
	if err != nil || ok {
		return seq, err
	}

	if _, err := tx.Offers().FindByID(ctx, offerID); err != nil {
		return domain.OfferSequence{}, err
	}
	created := &domain.OfferSequence{CurrentOfferID: offerID}
	if err := tx.Chains().CreateSequences(ctx, []*domain.OfferSequence{created}); err != nil {
		return domain.OfferSequence{}, err
	}
	return *created, nil
}

// Advance reports what GenerateNextOffer did.
type Advance struct {
	Message      string               `json:"message"`
	Activated    bool                 `json:"activated"`
	ClientOffers []domain.ClientOffer `json:"client_offers"`
	Prints       []domain.OfferPrint  `json:"prints"`
}

// GenerateNextOffer advances co along every outgoing edge of seq's offer.
// The first call flips is_activated and creates one client offer and one
// print per next offer; later calls only reissue prints for the client
// offers created by the first one.
func (s *ProgressionService) GenerateNextOffer(ctx context.Context, tx business.Repos, seq domain.OfferSequence, co domain.ClientOffer) (Advance, error) {
	offer, err := tx.Offers().FindByID(ctx, seq.CurrentOfferID)
	if err != nil {
		return Advance{}, err
	}
	if !offer.Chainable() {
		return Advance{Message: MsgNotChainable}, nil
	}
	if seq.Terminal() || seq.ChainID == nil {
		return Advance{Message: MsgEndOfChain}, nil
	}

	g, err := s.chains.Graph(ctx, tx, *seq.ChainID)
	if err != nil {
		return Advance{}, err
	}
	edges := g.Outgoing(seq.CurrentOfferID)

	var campaign *domain.Campaign
	if co.CampaignID != nil {
		c, err := tx.Campaigns().FindByID(ctx, *co.CampaignID)
		if err != nil {
			return Advance{}, err
		}
		campaign = &c
	}

	activated, err := tx.ClientOffers().Activate(ctx, co.ID)
	if err != nil {
		return Advance{}, err
	}

	today := s.clock.Now()
	if !activated {
		return s.reissue(ctx, tx, g, edges, co, today)
	}

	adv := Advance{Message: MsgGenerated, Activated: true}
	for _, e := range edges {
		nextID := *e.NextOfferID
		entry, ok := g.Entry(nextID)
		if !ok {
			return Advance{}, domain.ErrOfferSequenceNotFound
		}
		next, err := tx.Offers().FindByID(ctx, nextID)
		if err != nil {
			return Advance{}, err
		}

		created := domain.ClientOffer{
			CurrentSequenceID: business.Ptr(entry.ID),
			ChainID:           seq.ChainID,
			CampaignID:        co.CampaignID,
			ClientID:          co.ClientID,
			AvailableAt:       domain.AddDays(today, e.DaysToAdd),
			BrandID:           co.BrandID,
		}
		if err := tx.ClientOffers().Create(ctx, &created); err != nil {
			return Advance{}, err
		}

		if next.Chainable() && campaign != nil {
			segmentID, err := s.segments.UpsertSegment(ctx, tx, *campaign, nextID, co.ClientID, co.KeyCodeID)
			if err != nil {
				return Advance{}, err
			}
			if err := tx.ClientOffers().SetKeyCode(ctx, created.ID, segmentID); err != nil {
				return Advance{}, err
			}
			created.KeyCodeID = business.Ptr(segmentID)
		}

		print, err := s.issuePrint(ctx, tx, created, nextID, created.AvailableAt)
		if err != nil {
			return Advance{}, err
		}

		adv.ClientOffers = append(adv.ClientOffers, created)
		adv.Prints = append(adv.Prints, print)
	}

	ActivationsTotal.WithLabelValues("activated").Inc()
	logger.Debug("client offer activated", "client_offer_id", co.ID, "next_offers", len(adv.ClientOffers))
	return adv, nil
}

func (s *ProgressionService) reissue(ctx context.Context, tx business.Repos, g *chain.Graph, edges []domain.OfferSequence, co domain.ClientOffer, today time.Time) (Advance, error) {
	byEntry := make(map[uint64]domain.OfferSequence, len(edges))
	entryIDs := make([]uint64, 0, len(edges))
	for _, e := range edges {
		entry, ok := g.Entry(*e.NextOfferID)
		if !ok {
			continue
		}
		byEntry[entry.ID] = e
		entryIDs = append(entryIDs, entry.ID)
	}

	adv := Advance{Message: MsgAlreadyGenerated}
	if len(entryIDs) == 0 {
		return adv, nil
	}

	existing, err := tx.ClientOffers().FindForSequences(ctx, co.ClientID, business.Ptr(g.ChainID), co.CampaignID, entryIDs)
	if err != nil {
		return Advance{}, err
	}

	for _, x := range existing {
		if x.Substitute() || x.CurrentSequenceID == nil {
			continue
		}
		e := byEntry[*x.CurrentSequenceID]
		print, err := s.issuePrint(ctx, tx, x, *e.NextOfferID, domain.AddDays(today, e.DaysToAdd))
		if err != nil {
			return Advance{}, err
		}
		adv.ClientOffers = append(adv.ClientOffers, x)
		adv.Prints = append(adv.Prints, print)
	}

	ActivationsTotal.WithLabelValues("reissued").Inc()
	return adv, nil
}

// issuePrint records the mailing of offerID for co, routed through the
// campaign's settings for that offer when there is a campaign.
func (s *ProgressionService) issuePrint(ctx context.Context, tx business.Repos, co domain.ClientOffer, offerID uint64, availableAt time.Time) (domain.OfferPrint, error) {
	print := domain.OfferPrint{
		ClientID:    co.ClientID,
		OfferID:     offerID,
		CampaignID:  co.CampaignID,
		KeyCodeID:   co.KeyCodeID,
		OfferCode:   co.Code,
		AvailableAt: domain.Today(availableAt),
		BrandID:     co.BrandID,
	}
	if co.CampaignID != nil {
		routing, ok, err := tx.Campaigns().FindOffer(ctx, *co.CampaignID, offerID)
		if err != nil {
			return domain.OfferPrint{}, err
		}
		if ok {
			print.ReturnAddressID = routing.ReturnAddressID
		}
	}

	if err := tx.Prints().Create(ctx, &print); err != nil {
		return domain.OfferPrint{}, err
	}
	PrintsIssuedTotal.Inc()
	return print, nil
}

// IssuePrint records a mailing of the offer behind co dated on availableAt.
func (s *ProgressionService) IssuePrint(ctx context.Context, tx business.Repos, co domain.ClientOffer, availableAt time.Time) (domain.OfferPrint, error) {
	if co.CurrentSequenceID == nil {
		return domain.OfferPrint{}, domain.ErrOfferSequenceNotFound
	}
	seq, err := tx.Chains().FindSequence(ctx, *co.CurrentSequenceID)
	if err != nil {
		return domain.OfferPrint{}, err
	}
	return s.issuePrint(ctx, tx, co, seq.CurrentOfferID, availableAt)
}

type OfferLetterInput struct {
	OfferLetterID uint64
	ClientOfferID *uint64
	ClientID      uint64
	OfferID       uint64
	ChainID       *uint64
	CampaignID    *uint64
}

type OfferLetter struct {
	Base        domain.ClientOffer `json:"base"`
	ClientOffer domain.ClientOffer `json:"client_offer"`
	Print       domain.OfferPrint  `json:"print"`
}

// AddOfferLetter attaches a substitute mailing of an offer letter to an
// existing client offer, or to one created for the given client and offer,
// and issues its print today. It never advances the chain.
func (s *ProgressionService) AddOfferLetter(ctx context.Context, in OfferLetterInput) (OfferLetter, error) {
	if err := ctx.Err(); err != nil {
		return OfferLetter{}, fmt.Errorf("context error: %w", err)
	}
	if in.OfferLetterID == 0 || (in.ClientOfferID == nil && (in.ClientID == 0 || in.OfferID == 0)) {
		return OfferLetter{}, domain.ErrMissingRequiredData
	}

	var out OfferLetter
	err := s.store.Transaction(ctx, func(tx business.Repos) error {
		var (
			base domain.ClientOffer
			err  error
		)
		if in.ClientOfferID != nil {
			base, err = tx.ClientOffers().FindByID(ctx, *in.ClientOfferID)
		} else {
			base, err = s.CreateClientOfferAt(ctx, tx, ClientOfferInput{
				ClientID:   in.ClientID,
				ChainID:    in.ChainID,
				CampaignID: in.CampaignID,
				OfferID:    in.OfferID,
			})
		}
		if err != nil {
			return err
		}

		if _, err := tx.Offers().FindByID(ctx, in.OfferLetterID); err != nil {
			return err
		}

		routing, ok, err := tx.Campaigns().RouteOfferLetter(ctx, in.OfferLetterID)
		if err != nil {
			return err
		}
		if !ok {
			routing = domain.OfferRouting{CampaignID: base.CampaignID}
		}

		today := s.clock.Now()
		letter, err := s.CreateClientOfferAt(ctx, tx, ClientOfferInput{
			ClientID:        base.ClientID,
			ChainID:         routing.ChainID,
			CampaignID:      routing.CampaignID,
			OfferID:         in.OfferLetterID,
			OriginalOfferID: business.Ptr(base.ID),
			AvailableAt:     today,
		})
		if err != nil {
			return err
		}

		print := domain.OfferPrint{
			ClientID:        letter.ClientID,
			OfferID:         in.OfferLetterID,
			CampaignID:      letter.CampaignID,
			KeyCodeID:       letter.KeyCodeID,
			OfferCode:       letter.Code,
			AvailableAt:     domain.Today(today),
			ReturnAddressID: routing.ReturnAddressID,
			BrandID:         letter.BrandID,
		}
		if err := tx.Prints().Create(ctx, &print); err != nil {
			return err
		}
		PrintsIssuedTotal.Inc()

		out = OfferLetter{Base: base, ClientOffer: letter, Print: print}
		return nil
	})
	if err != nil {
		logger.Error("failed to add offer letter", "offer_letter_id", in.OfferLetterID, err)
		return OfferLetter{}, err
	}

	logger.Info("offer letter added", "client_offer_id", out.ClientOffer.ID, "base_id", out.Base.ID)
	return out, nil
}

func (s *ProgressionService) FindByCode(ctx context.Context, code string) (domain.ClientOffer, error) {
	if err := ctx.Err(); err != nil {
		return domain.ClientOffer{}, fmt.Errorf("context error: %w", err)
	}
	if code == "" {
		return domain.ClientOffer{}, domain.ErrMissingRequiredData
	}
	return s.store.Repos().ClientOffers().FindByCode(ctx, code)
}
