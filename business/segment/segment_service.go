package segment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"directMail/business"
	"directMail/domain"
	"directMail/pkg/filter"
	"directMail/pkg/logger"

	"gorm.io/datatypes"
)

type SegmentService struct {
	store business.Store
}

func NewSegmentService(store business.Store) *SegmentService {
	return &SegmentService{store: store}
}

// UpsertSegment attributes clientID on offerID to a segment of campaign and
// returns the segment id. A known upstream segment yields (or reuses) one
// derived known segment per (campaign, offer, upstream); no upstream or an
// unknown upstream pools the client into the single unknown segment of
// (campaign, offer). The membership is upserted as extracted.
func (s *SegmentService) UpsertSegment(ctx context.Context, tx business.Repos, campaign domain.Campaign, offerID, clientID uint64, fromSegmentID *uint64) (uint64, error) {
	if campaign.ID == 0 || campaign.BrandID == nil {
		return 0, domain.ErrCampaignOrBrandNotFound
	}

	var upstream *domain.KeyCodeDetails
	if fromSegmentID != nil {
		from, err := tx.Segments().FindByID(ctx, *fromSegmentID)
		if err != nil {
			return 0, err
		}
		if !from.IsUnknown {
			upstream = &from
		}
	}

	var (
		segment domain.KeyCodeDetails
		err     error
	)
	if upstream != nil {
		segment, err = s.derivedSegment(ctx, tx, campaign, offerID, *upstream)
	} else {
		segment, err = s.unknownSegment(ctx, tx, campaign, offerID)
	}
	if err != nil {
		return 0, err
	}

	membership := &domain.KeyCode{
		KeyID:       segment.ID,
		OfferID:     offerID,
		CampaignID:  campaign.ID,
		ClientID:    clientID,
		IsExtracted: true,
	}
	if err := tx.Segments().UpsertMembership(ctx, membership); err != nil {
		return 0, err
	}

	return segment.ID, nil
}

func (s *SegmentService) derivedSegment(ctx context.Context, tx business.Repos, campaign domain.Campaign, offerID uint64, upstream domain.KeyCodeDetails) (domain.KeyCodeDetails, error) {
	found, ok, err := tx.Segments().FindDerived(ctx, campaign.ID, offerID, upstream.ID)
	if err != nil || ok {
		return found, err
	}

	keys, err := tx.Segments().ListKeys(ctx, campaign.ID, false)
	if err != nil {
		return domain.KeyCodeDetails{}, err
	}

	segment := domain.KeyCodeDetails{
		Key:           KnownKey(campaign.Code, nextKnownSuffix(keys)),
		CampaignID:    campaign.ID,
		OfferID:       offerID,
		ListName:      upstream.ListName,
		Description:   upstream.Description,
		Filters:       datatypes.JSON("{}"),
		FromSegmentID: business.Ptr(upstream.ID),
		BrandID:       campaign.BrandID,
	}
	if err := tx.Segments().Create(ctx, &segment); err != nil {
		return domain.KeyCodeDetails{}, err
	}

	SegmentsCreatedTotal.WithLabelValues("known").Inc()
	logger.Debug("derived segment created", "key", segment.Key, "from_segment_id", upstream.ID)
	return segment, nil
}

func (s *SegmentService) unknownSegment(ctx context.Context, tx business.Repos, campaign domain.Campaign, offerID uint64) (domain.KeyCodeDetails, error) {
	found, ok, err := tx.Segments().FindUnknown(ctx, campaign.ID, offerID)
	if err != nil || ok {
		return found, err
	}

	keys, err := tx.Segments().ListKeys(ctx, campaign.ID, true)
	if err != nil {
		return domain.KeyCodeDetails{}, err
	}

	segment := domain.KeyCodeDetails{
		Key:        UnknownKey(campaign.Code, nextUnknownSuffix(keys)),
		CampaignID: campaign.ID,
		OfferID:    offerID,
		Filters:    datatypes.JSON("{}"),
		IsUnknown:  true,
		BrandID:    campaign.BrandID,
	}
	if err := tx.Segments().Create(ctx, &segment); err != nil {
		return domain.KeyCodeDetails{}, err
	}

	SegmentsCreatedTotal.WithLabelValues("unknown").Inc()
	logger.Debug("unknown segment created", "key", segment.Key)
	return segment, nil
}

type KeyCodeInput struct {
	CampaignID uint64
	// OfferID is informational; enrollment always targets the chain's first offer.
	OfferID     *uint64
	Filters     json.RawMessage
	OrFields    []string
	Description string
	ListName    string
}

type KeyCodeResult struct {
	Segment  domain.KeyCodeDetails `json:"segment"`
	Enrolled int64                 `json:"enrolled"`
}

// CreateKeyCode creates a filter segment on the campaign's first offer and
// enrolls every matching client not yet in a segment there.
func (s *SegmentService) CreateKeyCode(ctx context.Context, in KeyCodeInput) (KeyCodeResult, error) {
	if err := ctx.Err(); err != nil {
		return KeyCodeResult{}, fmt.Errorf("context error: %w", err)
	}
	if in.CampaignID == 0 {
		return KeyCodeResult{}, domain.ErrMissingCampaignID
	}

	where, err := filter.Parse(in.Filters, domain.ClientFilterFields, in.OrFields...)
	if err != nil {
		if errors.Is(err, filter.ErrInvalidFilter) {
			return KeyCodeResult{}, domain.ErrInvalidDataType.WithMessage(err.Error())
		}
		return KeyCodeResult{}, err
	}

	filters := datatypes.JSON("{}")
	if len(in.Filters) > 0 && string(in.Filters) != "null" {
		filters = datatypes.JSON(in.Filters)
	}

	var result KeyCodeResult
	err = s.store.Transaction(ctx, func(tx business.Repos) error {
		campaign, first, err := FirstStep(ctx, tx, in.CampaignID)
		if err != nil {
			return err
		}

		keys, err := tx.Segments().ListKeys(ctx, campaign.ID, false)
		if err != nil {
			return err
		}

		segment := domain.KeyCodeDetails{
			Key:         KnownKey(campaign.Code, nextKnownSuffix(keys)),
			CampaignID:  campaign.ID,
			OfferID:     first.CurrentOfferID,
			ListName:    in.ListName,
			Description: in.Description,
			Filters:     filters,
			BrandID:     campaign.BrandID,
		}
		if err := tx.Segments().Create(ctx, &segment); err != nil {
			return err
		}

		enrolled, err := tx.Segments().EnrollClients(ctx, segment, where)
		if err != nil {
			return err
		}

		result = KeyCodeResult{Segment: segment, Enrolled: enrolled}
		return nil
	})
	if err != nil {
		logger.Error("failed to create key code", "campaign_id", in.CampaignID, err)
		return KeyCodeResult{}, err
	}

	SegmentsCreatedTotal.WithLabelValues("filter").Inc()
	ClientsEnrolledTotal.Add(float64(result.Enrolled))
	logger.Info("key code created", "key", result.Segment.Key, "enrolled", result.Enrolled)
	return result, nil
}

// ExtractSegmentedClients materializes every unextracted membership on the
// campaign's first offer as a client offer plus a print dated on the mail date.
func (s *SegmentService) ExtractSegmentedClients(ctx context.Context, campaignID uint64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context error: %w", err)
	}
	if campaignID == 0 {
		return 0, domain.ErrMissingCampaignID
	}

	var extracted int64
	err := s.store.Transaction(ctx, func(tx business.Repos) error {
		campaign, first, err := FirstStep(ctx, tx, campaignID)
		if err != nil {
			return err
		}

		routing, _, err := tx.Campaigns().FindOffer(ctx, campaign.ID, first.CurrentOfferID)
		if err != nil {
			return err
		}

		extracted, err = tx.Segments().ExtractMemberships(ctx, business.ExtractParams{
			CampaignID:      campaign.ID,
			ChainID:         *campaign.ChainID,
			SequenceID:      first.ID,
			OfferID:         first.CurrentOfferID,
			BrandID:         campaign.BrandID,
			ReturnAddressID: routing.ReturnAddressID,
			MailDate:        domain.Today(campaign.MailDate),
		})
		if err != nil {
			return err
		}

		return tx.Campaigns().MarkExtracted(ctx, campaign.ID)
	})
	if err != nil {
		logger.Error("failed to extract segmented clients", "campaign_id", campaignID, err)
		return 0, err
	}

	ClientsExtractedTotal.Add(float64(extracted))
	logger.Info("segmented clients extracted", "campaign_id", campaignID, "count", extracted)
	return extracted, nil
}

func (s *SegmentService) CampaignKeyCodes(ctx context.Context, campaignID uint64) ([]domain.SegmentStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	repos := s.store.Repos()
	if _, err := repos.Campaigns().FindByID(ctx, campaignID); err != nil {
		return nil, err
	}
	return repos.Segments().Stats(ctx, campaignID)
}

// FirstStep resolves a campaign together with the entry edge of its chain.
func FirstStep(ctx context.Context, tx business.Repos, campaignID uint64) (domain.Campaign, domain.OfferSequence, error) {
	campaign, err := tx.Campaigns().FindByID(ctx, campaignID)
	if err != nil {
		return domain.Campaign{}, domain.OfferSequence{}, err
	}
	if campaign.ChainID == nil {
		return domain.Campaign{}, domain.OfferSequence{}, domain.ErrNoChainAssociated
	}

	c, err := tx.Chains().FindByID(ctx, *campaign.ChainID)
	if err != nil {
		return domain.Campaign{}, domain.OfferSequence{}, err
	}
	if c.OfferSequenceID == nil {
		return domain.Campaign{}, domain.OfferSequence{}, domain.ErrNoFirstSequence
	}

	first, err := tx.Chains().FindSequence(ctx, *c.OfferSequenceID)
	if err != nil {
		if errors.Is(err, domain.ErrOfferSequenceNotFound) {
			return domain.Campaign{}, domain.OfferSequence{}, domain.ErrNoFirstSequence
		}
		return domain.Campaign{}, domain.OfferSequence{}, err
	}
	return campaign, first, nil
}
