package postgres

import (
	"context"
	"fmt"
	"time"

	"directMail/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CampaignRepository struct {
	DB *gorm.DB
}

func NewCampaignRepository(db *gorm.DB) *CampaignRepository {
	return &CampaignRepository{
		DB: db,
	}
}

func (r *CampaignRepository) Create(ctx context.Context, campaign *domain.Campaign) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(campaign).Error; err != nil {
		return fmt.Errorf("failed to create campaign: %w", err)
	}

	return nil
}

func (r *CampaignRepository) FindByID(ctx context.Context, id uint64) (domain.Campaign, error) {
	if err := ctx.Err(); err != nil {
		return domain.Campaign{}, fmt.Errorf("context error: %w", err)
	}

	var campaign domain.Campaign
	if err := r.DB.WithContext(ctx).First(&campaign, id).Error; err != nil {
		return domain.Campaign{}, findErr(err, domain.ErrCampaignNotFound, "campaign")
	}

	return campaign, nil
}

func (r *CampaignRepository) FindAll(ctx context.Context) ([]domain.Campaign, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var campaigns []domain.Campaign
	if err := r.DB.WithContext(ctx).Order("id").Find(&campaigns).Error; err != nil {
		return nil, fmt.Errorf("failed to find campaigns: %w", err)
	}

	return campaigns, nil
}

func (r *CampaignRepository) Update(ctx context.Context, campaign *domain.Campaign) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	updateData := map[string]interface{}{
		"code":          campaign.Code,
		"country":       campaign.Country,
		"mail_date":     campaign.MailDate,
		"mail_quantity": campaign.MailQuantity,
		"chain_id":      campaign.ChainID,
		"brand_id":      campaign.BrandID,
		"updated_at":    time.Now(),
	}

	result := r.DB.WithContext(ctx).Model(&domain.Campaign{}).Where("id = ?", campaign.ID).Updates(updateData)
	if result.Error != nil {
		return fmt.Errorf("failed to update campaign: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrCampaignNotFound
	}

	return nil
}

func (r *CampaignRepository) CodeExists(ctx context.Context, brandID *uint64, code string, excludeID uint64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("context error: %w", err)
	}

	var count int64
	q := r.DB.WithContext(ctx).Model(&domain.Campaign{}).Where("code = ? AND id <> ?", code, excludeID)
	if err := whereID(q, "brand_id", brandID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to count campaigns: %w", err)
	}

	return count > 0, nil
}

func (r *CampaignRepository) MarkExtracted(ctx context.Context, id uint64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).Model(&domain.Campaign{}).Where("id = ?", id).
		Updates(map[string]interface{}{"is_extracted": true, "updated_at": time.Now()})
	if result.Error != nil {
		return fmt.Errorf("failed to mark campaign extracted: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrCampaignNotFound
	}

	return nil
}

func (r *CampaignRepository) LatestForChain(ctx context.Context, chainID uint64, mailedBefore time.Time) (domain.Campaign, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Campaign{}, false, fmt.Errorf("context error: %w", err)
	}

	var campaigns []domain.Campaign
	err := r.DB.WithContext(ctx).
		Where("chain_id = ? AND mail_date <= ?", chainID, mailedBefore).
		Order("mail_date DESC, id DESC").
		Limit(1).
		Find(&campaigns).Error
	if err != nil {
		return domain.Campaign{}, false, fmt.Errorf("failed to find campaign for chain: %w", err)
	}
	if len(campaigns) == 0 {
		return domain.Campaign{}, false, nil
	}

	return campaigns[0], true, nil
}

func (r *CampaignRepository) UpsertOffer(ctx context.Context, co *domain.CampaignOffer) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "campaign_id"}, {Name: "offer_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"return_address_id", "payee_name_id", "printer", "price", "currency", "updated_at",
			}),
		}).
		Create(co).Error
	if err != nil {
		return fmt.Errorf("failed to upsert campaign offer: %w", err)
	}

	return nil
}

func (r *CampaignRepository) FindOffer(ctx context.Context, campaignID, offerID uint64) (domain.CampaignOffer, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.CampaignOffer{}, false, fmt.Errorf("context error: %w", err)
	}

	var rows []domain.CampaignOffer
	err := r.DB.WithContext(ctx).
		Where("campaign_id = ? AND offer_id = ?", campaignID, offerID).
		Order("id").
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return domain.CampaignOffer{}, false, fmt.Errorf("failed to find campaign offer: %w", err)
	}
	if len(rows) == 0 {
		return domain.CampaignOffer{}, false, nil
	}

	return rows[0], true, nil
}

// A campaign whose chain carries the letter wins; otherwise the latest
// campaign that mailed it routes it outside of any chain.
const (
	routeByChainSQL = `
SELECT c.chain_id, c.id AS campaign_id, co.return_address_id, co.payee_name_id, COALESCE(co.printer, '') AS printer
FROM campaigns c
JOIN offer_sequences s ON s.chain_id = c.chain_id AND s.current_offer_id = @offer
LEFT JOIN campaign_offers co ON co.campaign_id = c.id AND co.offer_id = @offer
ORDER BY c.mail_date DESC, c.id DESC
LIMIT 1`

	routeByMailingSQL = `
SELECT CAST(NULL AS BIGINT) AS chain_id, c.id AS campaign_id, co.return_address_id, co.payee_name_id, COALESCE(co.printer, '') AS printer
FROM campaign_offers co
JOIN campaigns c ON c.id = co.campaign_id
WHERE co.offer_id = @offer
ORDER BY c.mail_date DESC, c.id DESC
LIMIT 1`
)

func (r *CampaignRepository) RouteOfferLetter(ctx context.Context, offerID uint64) (domain.OfferRouting, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.OfferRouting{}, false, fmt.Errorf("context error: %w", err)
	}

	args := map[string]interface{}{"offer": offerID}
	for _, query := range []string{routeByChainSQL, routeByMailingSQL} {
		var rows []domain.OfferRouting
		if err := r.DB.WithContext(ctx).Raw(query, args).Scan(&rows).Error; err != nil {
			return domain.OfferRouting{}, false, fmt.Errorf("failed to route offer letter: %w", err)
		}
		if len(rows) > 0 {
			return rows[0], true, nil
		}
	}

	return domain.OfferRouting{}, false, nil
}
