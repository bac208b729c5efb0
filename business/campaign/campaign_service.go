package campaign

import (
	"context"
	"fmt"
	"strings"

	"directMail/business"
	"directMail/domain"
	"directMail/pkg/logger"
)

type campaignService struct {
	campaignRepo business.CampaignRepository
	chainRepo    business.ChainRepository
	offerRepo    business.OfferRepository
}

func NewCampaignService(campaignRepo business.CampaignRepository, chainRepo business.ChainRepository, offerRepo business.OfferRepository) *campaignService {
	return &campaignService{
		campaignRepo: campaignRepo,
		chainRepo:    chainRepo,
		offerRepo:    offerRepo,
	}
}

func (s *campaignService) GetAllCampaigns(ctx context.Context) ([]domain.Campaign, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	campaigns, err := s.campaignRepo.FindAll(ctx)
	if err != nil {
		logger.Error("failed to find all campaigns", err)
		return nil, err
	}

	return campaigns, nil
}

func (s *campaignService) GetCampaignByID(ctx context.Context, id uint64) (*domain.Campaign, error) {
	if id == 0 {
		return nil, domain.ErrMissingCampaignID
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	campaign, err := s.campaignRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return &campaign, nil
}

func (s *campaignService) CreateCampaign(ctx context.Context, campaign *domain.Campaign) (*domain.Campaign, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	if err := s.validate(ctx, campaign, 0); err != nil {
		logger.Error("invalid campaign data", err)
		return nil, err
	}

	if err := s.campaignRepo.Create(ctx, campaign); err != nil {
		logger.Error("failed to create campaign", err)
		return nil, fmt.Errorf("failed to create campaign: %w", err)
	}

	logger.Info("campaign created", "campaign_id", campaign.ID, "code", campaign.Code)

	return campaign, nil
}

func (s *campaignService) UpdateCampaign(ctx context.Context, campaign *domain.Campaign) (*domain.Campaign, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	if campaign.ID == 0 {
		return nil, domain.ErrMissingCampaignID
	}

	if _, err := s.campaignRepo.FindByID(ctx, campaign.ID); err != nil {
		return nil, err
	}

	if err := s.validate(ctx, campaign, campaign.ID); err != nil {
		logger.Error("invalid campaign data", err)
		return nil, err
	}

	if err := s.campaignRepo.Update(ctx, campaign); err != nil {
		logger.Error("failed to update campaign", err)
		return nil, fmt.Errorf("failed to update campaign: %w", err)
	}

	updated, err := s.campaignRepo.FindByID(ctx, campaign.ID)
	if err != nil {
		return nil, err
	}

	logger.Info("campaign updated", "campaign_id", campaign.ID)

	return &updated, nil
}

// SetCampaignOffer stores the routing (return address, payee, printer) of one
// offer within a campaign.
func (s *campaignService) SetCampaignOffer(ctx context.Context, co *domain.CampaignOffer) (*domain.CampaignOffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	if co.CampaignID == 0 {
		return nil, domain.ErrMissingCampaignID
	}
	if co.OfferID == 0 {
		return nil, domain.ErrMissingRequiredData.WithMessage("offer id is required")
	}

	if _, err := s.campaignRepo.FindByID(ctx, co.CampaignID); err != nil {
		return nil, err
	}
	if _, err := s.offerRepo.FindByID(ctx, co.OfferID); err != nil {
		return nil, err
	}

	if err := s.campaignRepo.UpsertOffer(ctx, co); err != nil {
		logger.Error("failed to save campaign offer", err)
		return nil, err
	}

	return co, nil
}

func (s *campaignService) validate(ctx context.Context, campaign *domain.Campaign, excludeID uint64) error {
	campaign.Code = strings.TrimSpace(campaign.Code)
	if campaign.Code == "" || campaign.MailDate.IsZero() {
		return domain.ErrMissingRequiredData.WithMessage("campaign code and mail date are required")
	}
	if strings.ContainsAny(campaign.Code, "#$") {
		return domain.ErrInvalidDataType.WithMessage("campaign code cannot contain '#' or '$'")
	}
	campaign.MailDate = domain.Today(campaign.MailDate)

	if campaign.ChainID != nil {
		if _, err := s.chainRepo.FindByID(ctx, *campaign.ChainID); err != nil {
			return err
		}
	}

	exists, err := s.campaignRepo.CodeExists(ctx, campaign.BrandID, campaign.Code, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return domain.ErrDuplicateCampaignCode
	}
	return nil
}
