package offer

import (
	"context"
	"fmt"
	"strings"

	"directMail/business"
	"directMail/domain"
	"directMail/pkg/logger"
)

type offerService struct {
	offerRepo business.OfferRepository
}

func NewOfferService(offerRepo business.OfferRepository) *offerService {
	return &offerService{
		offerRepo: offerRepo,
	}
}

func (s *offerService) GetAllOffers(ctx context.Context) ([]domain.Offer, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when get all offers")
		return nil, fmt.Errorf("context error: %w", err)
	}

	offers, err := s.offerRepo.FindAll(ctx)
	if err != nil {
		logger.Error("failed to find all offers", err)
		return nil, err
	}

	return offers, nil
}

func (s *offerService) GetOfferByID(ctx context.Context, id uint64) (*domain.Offer, error) {
	if id == 0 {
		logger.Error("invalid offer id")
		return nil, domain.ErrInvalidDataType.WithMessage("invalid offer id")
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	offer, err := s.offerRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("failed to find offer by id", err)
		return nil, err
	}

	return &offer, nil
}

func (s *offerService) CreateOffer(ctx context.Context, offer *domain.Offer) (*domain.Offer, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when create offer")
		return nil, fmt.Errorf("context error: %w", err)
	}

	if err := validateOffer(offer); err != nil {
		logger.Error("invalid offer data", err)
		return nil, err
	}

	exists, err := s.offerRepo.TitleExists(ctx, offer.BrandID, offer.Title, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrDuplicateTitle
	}

	if err := s.offerRepo.Create(ctx, offer); err != nil {
		logger.Error("failed to create new offer", err)
		return nil, fmt.Errorf("failed to create offer: %w", err)
	}

	logger.Info("offer created successfully", "offer_id", offer.ID)

	return offer, nil
}

func (s *offerService) UpdateOffer(ctx context.Context, offer *domain.Offer) (*domain.Offer, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	if offer.ID == 0 {
		return nil, domain.ErrMissingRequiredData.WithMessage("offer ID is required")
	}

	if err := validateOffer(offer); err != nil {
		logger.Error("invalid offer data", err)
		return nil, err
	}

	if _, err := s.offerRepo.FindByID(ctx, offer.ID); err != nil {
		logger.Error("offer not found", err)
		return nil, err
	}

	exists, err := s.offerRepo.TitleExists(ctx, offer.BrandID, offer.Title, offer.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrDuplicateTitle
	}

	if err := s.offerRepo.Update(ctx, offer); err != nil {
		logger.Error("failed to update offer", err)
		return nil, fmt.Errorf("failed to update offer: %w", err)
	}

	updated, err := s.offerRepo.FindByID(ctx, offer.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch updated offer: %w", err)
	}

	logger.Info("offer updated", "offer_id", offer.ID)

	return &updated, nil
}

func (s *offerService) DeleteOffer(ctx context.Context, id uint64) error {
	if id == 0 {
		return domain.ErrInvalidDataType.WithMessage("invalid offer id")
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if _, err := s.offerRepo.FindByID(ctx, id); err != nil {
		logger.Error("offer not found", err)
		return err
	}

	if err := s.offerRepo.Delete(ctx, id); err != nil {
		logger.Error("failed to delete offer", err)
		return fmt.Errorf("failed to delete offer: %w", err)
	}

	logger.Info("offer deleted", "offer_id", id)

	return nil
}

func validateOffer(offer *domain.Offer) error {
	offer.Title = strings.TrimSpace(offer.Title)
	if offer.Title == "" {
		return domain.ErrMissingRequiredData.WithMessage("offer title is required")
	}
	if offer.Type == "" {
		offer.Type = domain.OfferTypeOffer
	}
	if !domain.ValidOfferType(offer.Type) {
		return domain.ErrInvalidDataType.WithMessage("unknown offer type " + offer.Type)
	}
	return nil
}
