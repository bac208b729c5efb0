package postgres

import (
	"context"
	"fmt"

	"directMail/domain"

	"gorm.io/gorm"
)

type OfferRepository struct {
	DB *gorm.DB
}

func NewOfferRepository(db *gorm.DB) *OfferRepository {
	return &OfferRepository{
		DB: db,
	}
}

func (r *OfferRepository) Create(ctx context.Context, offer *domain.Offer) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(offer).Error; err != nil {
		return fmt.Errorf("failed to create offer: %w", err)
	}

	return nil
}

func (r *OfferRepository) FindByID(ctx context.Context, id uint64) (domain.Offer, error) {
	if err := ctx.Err(); err != nil {
		return domain.Offer{}, fmt.Errorf("context error: %w", err)
	}

	var offer domain.Offer
	if err := r.DB.WithContext(ctx).First(&offer, id).Error; err != nil {
		return domain.Offer{}, findErr(err, domain.ErrOfferNotFound, "offer")
	}

	return offer, nil
}

func (r *OfferRepository) FindByIDs(ctx context.Context, ids []uint64) ([]domain.Offer, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	var offers []domain.Offer
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&offers).Error; err != nil {
		return nil, fmt.Errorf("failed to find offers: %w", err)
	}

	return offers, nil
}

func (r *OfferRepository) FindAll(ctx context.Context) ([]domain.Offer, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var offers []domain.Offer
	if err := r.DB.WithContext(ctx).Order("id").Find(&offers).Error; err != nil {
		return nil, fmt.Errorf("failed to find offers: %w", err)
	}

	return offers, nil
}

func (r *OfferRepository) Update(ctx context.Context, offer *domain.Offer) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	updateData := map[string]interface{}{
		"title":       offer.Title,
		"type":        offer.Type,
		"description": offer.Description,
		"porter":      offer.Porter,
		"owner":       offer.Owner,
		"theme":       offer.Theme,
		"grade":       offer.Grade,
		"language":    offer.Language,
		"origin":      offer.Origin,
		"country":     offer.Country,
		"brand_id":    offer.BrandID,
	}

	result := r.DB.WithContext(ctx).Model(&domain.Offer{}).Where("id = ?", offer.ID).Updates(updateData)
	if result.Error != nil {
		return fmt.Errorf("failed to update offer: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrOfferNotFound
	}

	return nil
}

func (r *OfferRepository) Delete(ctx context.Context, id uint64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).Delete(&domain.Offer{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete offer: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrOfferNotFound
	}

	return nil
}

func (r *OfferRepository) TitleExists(ctx context.Context, brandID *uint64, title string, excludeID uint64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("context error: %w", err)
	}

	var count int64
	q := r.DB.WithContext(ctx).Model(&domain.Offer{}).Where("title = ? AND id <> ?", title, excludeID)
	if err := whereID(q, "brand_id", brandID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to count offers: %w", err)
	}

	return count > 0, nil
}
