package postgres

import (
	"context"
	"fmt"
	"time"

	"directMail/domain"

	"gorm.io/gorm"
)

type ChainRepository struct {
	DB *gorm.DB
}

func NewChainRepository(db *gorm.DB) *ChainRepository {
	return &ChainRepository{
		DB: db,
	}
}

func (r *ChainRepository) Create(ctx context.Context, chain *domain.Chain) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(chain).Error; err != nil {
		return fmt.Errorf("failed to create chain: %w", err)
	}

	return nil
}

func (r *ChainRepository) FindByID(ctx context.Context, id uint64) (domain.Chain, error) {
	if err := ctx.Err(); err != nil {
		return domain.Chain{}, fmt.Errorf("context error: %w", err)
	}

	var chain domain.Chain
	if err := r.DB.WithContext(ctx).First(&chain, id).Error; err != nil {
		return domain.Chain{}, findErr(err, domain.ErrChainNotFound, "chain")
	}

	return chain, nil
}

func (r *ChainRepository) FindAll(ctx context.Context) ([]domain.Chain, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var chains []domain.Chain
	if err := r.DB.WithContext(ctx).Order("id").Find(&chains).Error; err != nil {
		return nil, fmt.Errorf("failed to find chains: %w", err)
	}

	return chains, nil
}

func (r *ChainRepository) TitleExists(ctx context.Context, brandID *uint64, title string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("context error: %w", err)
	}

	var count int64
	q := r.DB.WithContext(ctx).Model(&domain.Chain{}).Where("title = ?", title)
	if err := whereID(q, "brand_id", brandID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to count chains: %w", err)
	}

	return count > 0, nil
}

func (r *ChainRepository) SetFirstSequence(ctx context.Context, chainID, sequenceID uint64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).Model(&domain.Chain{}).Where("id = ?", chainID).
		Updates(map[string]interface{}{"offer_sequence_id": sequenceID, "updated_at": time.Now()})
	if result.Error != nil {
		return fmt.Errorf("failed to set first sequence: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrChainNotFound
	}

	return nil
}

func (r *ChainRepository) CreateSequences(ctx context.Context, seqs []*domain.OfferSequence) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}
	if len(seqs) == 0 {
		return nil
	}

	if err := r.DB.WithContext(ctx).Create(&seqs).Error; err != nil {
		return fmt.Errorf("failed to create offer sequences: %w", err)
	}

	return nil
}

func (r *ChainRepository) FindSequence(ctx context.Context, id uint64) (domain.OfferSequence, error) {
	if err := ctx.Err(); err != nil {
		return domain.OfferSequence{}, fmt.Errorf("context error: %w", err)
	}

	var seq domain.OfferSequence
	if err := r.DB.WithContext(ctx).First(&seq, id).Error; err != nil {
		return domain.OfferSequence{}, findErr(err, domain.ErrOfferSequenceNotFound, "offer sequence")
	}

	return seq, nil
}

func (r *ChainRepository) ListSequences(ctx context.Context, chainID uint64) ([]domain.OfferSequence, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var seqs []domain.OfferSequence
	if err := r.DB.WithContext(ctx).Where("chain_id = ?", chainID).Order("id").Find(&seqs).Error; err != nil {
		return nil, fmt.Errorf("failed to list offer sequences: %w", err)
	}

	return seqs, nil
}

func (r *ChainRepository) findOneSequence(ctx context.Context, q *gorm.DB) (domain.OfferSequence, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.OfferSequence{}, false, fmt.Errorf("context error: %w", err)
	}

	var seqs []domain.OfferSequence
	if err := q.Limit(1).Find(&seqs).Error; err != nil {
		return domain.OfferSequence{}, false, fmt.Errorf("failed to find offer sequence: %w", err)
	}
	if len(seqs) == 0 {
		return domain.OfferSequence{}, false, nil
	}

	return seqs[0], true, nil
}

func (r *ChainRepository) FindStandaloneSequence(ctx context.Context, offerID uint64) (domain.OfferSequence, bool, error) {
	q := r.DB.WithContext(ctx).
		Where("chain_id IS NULL AND next_offer_id IS NULL AND current_offer_id = ?", offerID).
		Order("id")
	return r.findOneSequence(ctx, q)
}

func (r *ChainRepository) LatestSequenceForOffer(ctx context.Context, offerID uint64) (domain.OfferSequence, bool, error) {
	q := r.DB.WithContext(ctx).
		Where("chain_id IS NOT NULL AND current_offer_id = ?", offerID).
		Order("id DESC")
	return r.findOneSequence(ctx, q)
}
