package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"directMail/business"
	"directMail/domain"

	"gorm.io/gorm"
)

type ClientOfferRepository struct {
	DB *gorm.DB
}

func NewClientOfferRepository(db *gorm.DB) *ClientOfferRepository {
	return &ClientOfferRepository{
		DB: db,
	}
}

// Create stores co; the BeforeCreate hook fills in the offer code.
func (r *ClientOfferRepository) Create(ctx context.Context, co *domain.ClientOffer) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(co).Error; err != nil {
		return fmt.Errorf("failed to create client offer: %w", err)
	}

	return nil
}

func (r *ClientOfferRepository) FindByID(ctx context.Context, id uint64) (domain.ClientOffer, error) {
	if err := ctx.Err(); err != nil {
		return domain.ClientOffer{}, fmt.Errorf("context error: %w", err)
	}

	var co domain.ClientOffer
	if err := r.DB.WithContext(ctx).First(&co, id).Error; err != nil {
		return domain.ClientOffer{}, findErr(err, domain.ErrClientOfferNotFound, "client offer")
	}

	return co, nil
}

func (r *ClientOfferRepository) FindByCode(ctx context.Context, code string) (domain.ClientOffer, error) {
	if err := ctx.Err(); err != nil {
		return domain.ClientOffer{}, fmt.Errorf("context error: %w", err)
	}

	var co domain.ClientOffer
	if err := r.DB.WithContext(ctx).Where("code = ?", code).First(&co).Error; err != nil {
		return domain.ClientOffer{}, findErr(err, domain.ErrClientOfferNotFound, "client offer")
	}

	return co, nil
}

func (r *ClientOfferRepository) scoped(ctx context.Context, clientID uint64, chainID, campaignID *uint64) *gorm.DB {
	q := r.DB.WithContext(ctx).Where("client_id = ?", clientID)
	q = whereID(q, "chain_id", chainID)
	return whereID(q, "campaign_id", campaignID)
}

func (r *ClientOfferRepository) FindSubstitute(ctx context.Context, clientID uint64, chainID, campaignID *uint64, sequenceID uint64) (domain.ClientOffer, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.ClientOffer{}, false, fmt.Errorf("context error: %w", err)
	}

	var rows []domain.ClientOffer
	err := r.scoped(ctx, clientID, chainID, campaignID).
		Where("original_offer_id IS NOT NULL AND current_sequence_id = ?", sequenceID).
		Order("id").
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return domain.ClientOffer{}, false, fmt.Errorf("failed to find substitute client offer: %w", err)
	}
	if len(rows) == 0 {
		return domain.ClientOffer{}, false, nil
	}

	return rows[0], true, nil
}

func (r *ClientOfferRepository) FindForSequences(ctx context.Context, clientID uint64, chainID, campaignID *uint64, sequenceIDs []uint64) ([]domain.ClientOffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if len(sequenceIDs) == 0 {
		return nil, nil
	}

	var offers []domain.ClientOffer
	err := r.scoped(ctx, clientID, chainID, campaignID).
		Where("current_sequence_id IN ?", sequenceIDs).
		Order("id").
		Find(&offers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find client offers: %w", err)
	}

	return offers, nil
}

func (r *ClientOfferRepository) FindMatching(ctx context.Context, matches []business.ClientOfferMatch) ([]domain.ClientOffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if len(matches) == 0 {
		return nil, nil
	}

	var (
		groups []string
		args   []interface{}
	)
	for _, m := range matches {
		campaign, campaignArgs := eqOrNull("campaign_id", m.CampaignID)
		keyCode, keyCodeArgs := eqOrNull("key_code_id", m.KeyCodeID)
		groups = append(groups, "(client_id = ? AND current_sequence_id = ? AND "+campaign+" AND "+keyCode+")")
		args = append(args, m.ClientID, m.SequenceID)
		args = append(args, campaignArgs...)
		args = append(args, keyCodeArgs...)
	}

	var offers []domain.ClientOffer
	err := r.DB.WithContext(ctx).Where(strings.Join(groups, " OR "), args...).Order("id").Find(&offers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find client offers: %w", err)
	}

	return offers, nil
}

func (r *ClientOfferRepository) update(ctx context.Context, id uint64, values map[string]interface{}) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	values["updated_at"] = time.Now()
	result := r.DB.WithContext(ctx).Model(&domain.ClientOffer{}).Where("id = ?", id).Updates(values)
	if result.Error != nil {
		return fmt.Errorf("failed to update client offer: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrClientOfferNotFound
	}

	return nil
}

func (r *ClientOfferRepository) SetKeyCode(ctx context.Context, id, keyCodeID uint64) error {
	return r.update(ctx, id, map[string]interface{}{"key_code_id": keyCodeID})
}

// Activate is a compare-and-set: only the caller that sees is_activated
// false gets a row back.
func (r *ClientOfferRepository) Activate(ctx context.Context, id uint64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).Model(&domain.ClientOffer{}).
		Where("id = ? AND is_activated = false", id).
		Updates(map[string]interface{}{"is_activated": true, "updated_at": time.Now()})
	if result.Error != nil {
		return false, fmt.Errorf("failed to activate client offer: %w", result.Error)
	}
	if result.RowsAffected == 1 {
		return true, nil
	}

	if _, err := r.FindByID(ctx, id); err != nil {
		return false, err
	}

	return false, nil
}

func (r *ClientOfferRepository) Deactivate(ctx context.Context, id uint64) error {
	return r.update(ctx, id, map[string]interface{}{"is_activated": false})
}

func (r *ClientOfferRepository) CountRefs(ctx context.Context, offers []domain.ClientOffer) (map[uint64]domain.Refs, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	refs := make(map[uint64]domain.Refs, len(offers))
	for _, co := range offers {
		var ref domain.Refs
		if err := r.DB.WithContext(ctx).Model(&domain.Order{}).
			Where("client_offer_id = ?", co.ID).Count(&ref.Orders).Error; err != nil {
			return nil, fmt.Errorf("failed to count client offer orders: %w", err)
		}
		if err := r.DB.WithContext(ctx).Model(&domain.OfferPrint{}).
			Where("offer_code = ?", co.Code).Count(&ref.Prints).Error; err != nil {
			return nil, fmt.Errorf("failed to count client offer prints: %w", err)
		}
		refs[co.ID] = ref
	}

	return refs, nil
}

func (r *ClientOfferRepository) Delete(ctx context.Context, ids []uint64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context error: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	var deleted int64
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Same as ON DELETE SET NULL, which a schema built from the models lacks.
		if err := tx.Model(&domain.ClientOffer{}).Where("original_offer_id IN ?", ids).
			Update("original_offer_id", nil).Error; err != nil {
			return fmt.Errorf("failed to detach substitute client offers: %w", err)
		}
		if err := tx.Model(&domain.Order{}).Where("client_offer_id IN ?", ids).
			Update("client_offer_id", nil).Error; err != nil {
			return fmt.Errorf("failed to detach orders: %w", err)
		}

		result := tx.Where("id IN ?", ids).Delete(&domain.ClientOffer{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete client offers: %w", result.Error)
		}
		deleted = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}

	return deleted, nil
}
