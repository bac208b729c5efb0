package postgres

import (
	"context"
	"fmt"
	"time"

	"directMail/business"
	"directMail/domain"
	"directMail/pkg/filter"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SegmentRepository struct {
	DB *gorm.DB
}

func NewSegmentRepository(db *gorm.DB) *SegmentRepository {
	return &SegmentRepository{
		DB: db,
	}
}

// clientColumns maps filter fields onto the clients table aliased as c. The
// lifetime counters add the live aggregates to the stored baseline.
var clientColumns = map[string]string{
	"id":                    "c.id",
	"gender":                "c.gender",
	"firstName":             "c.first_name",
	"lastName":              "c.last_name",
	"country":               "c.country",
	"city":                  "c.city",
	"state":                 "c.state",
	"zipCode":               "c.zip_code",
	"birthDate":             "c.birth_date",
	"isBlacklisted":         "c.is_blacklisted",
	"importedFrom":          "c.imported_from",
	"listOwner":             "c.list_owner",
	"lastPurchaseDate":      "c.last_purchase_date",
	"brandId":               "c.brand_id",
	domain.FieldTotalOrders: "(c.total_orders + (SELECT COUNT(*) FROM orders o WHERE o.client_id = c.id))",
	domain.FieldTotalMails:  "(c.total_mails + (SELECT COUNT(*) FROM offer_prints p WHERE p.client_id = c.id AND p.is_exported))",
	domain.FieldTotalAmount: "(c.total_amount + (SELECT COALESCE(SUM(o.amount), 0) FROM orders o WHERE o.client_id = c.id))",
}

func (r *SegmentRepository) Create(ctx context.Context, segment *domain.KeyCodeDetails) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(segment).Error; err != nil {
		return fmt.Errorf("failed to create key code: %w", err)
	}

	return nil
}

func (r *SegmentRepository) FindByID(ctx context.Context, id uint64) (domain.KeyCodeDetails, error) {
	if err := ctx.Err(); err != nil {
		return domain.KeyCodeDetails{}, fmt.Errorf("context error: %w", err)
	}

	var segment domain.KeyCodeDetails
	if err := r.DB.WithContext(ctx).First(&segment, id).Error; err != nil {
		return domain.KeyCodeDetails{}, findErr(err, domain.ErrKeyCodeNotFound, "key code")
	}

	return segment, nil
}

func (r *SegmentRepository) findOne(ctx context.Context, query string, args ...interface{}) (domain.KeyCodeDetails, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.KeyCodeDetails{}, false, fmt.Errorf("context error: %w", err)
	}

	var rows []domain.KeyCodeDetails
	if err := r.DB.WithContext(ctx).Where(query, args...).Order("id").Limit(1).Find(&rows).Error; err != nil {
		return domain.KeyCodeDetails{}, false, fmt.Errorf("failed to find key code: %w", err)
	}
	if len(rows) == 0 {
		return domain.KeyCodeDetails{}, false, nil
	}

	return rows[0], true, nil
}

func (r *SegmentRepository) FindUnknown(ctx context.Context, campaignID, offerID uint64) (domain.KeyCodeDetails, bool, error) {
	return r.findOne(ctx, "is_unknown AND campaign_id = ? AND offer_id = ?", campaignID, offerID)
}

func (r *SegmentRepository) FindDerived(ctx context.Context, campaignID, offerID, fromSegmentID uint64) (domain.KeyCodeDetails, bool, error) {
	return r.findOne(ctx, "NOT is_unknown AND campaign_id = ? AND offer_id = ? AND from_segment_id = ?",
		campaignID, offerID, fromSegmentID)
}

func (r *SegmentRepository) ListKeys(ctx context.Context, campaignID uint64, unknown bool) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var keys []string
	err := r.DB.WithContext(ctx).Model(&domain.KeyCodeDetails{}).
		Where("campaign_id = ? AND is_unknown = ?", campaignID, unknown).
		Order("id").
		Pluck("key", &keys).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}

	return keys, nil
}

func (r *SegmentRepository) ListByCampaign(ctx context.Context, campaignID uint64) ([]domain.KeyCodeDetails, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var segments []domain.KeyCodeDetails
	if err := r.DB.WithContext(ctx).Where("campaign_id = ?", campaignID).Order("id").Find(&segments).Error; err != nil {
		return nil, fmt.Errorf("failed to list key codes: %w", err)
	}

	return segments, nil
}

const segmentStatsSQL = `
SELECT k.id AS segment_id, k.key, k.offer_id, k.is_unknown,
    (SELECT COUNT(*) FROM key_codes m WHERE m.key_id = k.id) AS clients,
    (SELECT COUNT(*) FROM offer_prints p WHERE p.key_code_id = k.id AND p.is_exported) AS printed,
    (SELECT COUNT(*) FROM offer_prints p WHERE p.key_code_id = k.id AND NOT p.is_exported) AS not_sent,
    (SELECT COUNT(*) FROM orders o WHERE o.key_code_id = k.id) AS total_orders,
    (SELECT COALESCE(SUM(o.amount), 0) FROM orders o WHERE o.key_code_id = k.id) AS total_money
FROM key_code_details k
WHERE k.campaign_id = ?
ORDER BY k.id`

func (r *SegmentRepository) Stats(ctx context.Context, campaignID uint64) ([]domain.SegmentStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var stats []domain.SegmentStats
	if err := r.DB.WithContext(ctx).Raw(segmentStatsSQL, campaignID).Scan(&stats).Error; err != nil {
		return nil, fmt.Errorf("failed to compute key code stats: %w", err)
	}

	return stats, nil
}

func (r *SegmentRepository) UpsertMembership(ctx context.Context, m *domain.KeyCode) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "key_id"}, {Name: "offer_id"}, {Name: "campaign_id"}, {Name: "client_id"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"is_extracted", "updated_at"}),
		}).
		Create(m).Error
	if err != nil {
		return fmt.Errorf("failed to upsert key code membership: %w", err)
	}

	return nil
}

const enrollSQL = `
INSERT INTO key_codes (key_id, offer_id, campaign_id, client_id, is_extracted, created_at, updated_at)
SELECT ?, ?, ?, c.id, false, ?, ?
FROM clients c
WHERE NOT EXISTS (
    SELECT 1 FROM key_codes m
    WHERE m.campaign_id = ? AND m.offer_id = ? AND m.client_id = c.id
) AND %s
ON CONFLICT DO NOTHING`

func (r *SegmentRepository) EnrollClients(ctx context.Context, segment domain.KeyCodeDetails, where filter.Expr) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context error: %w", err)
	}

	cond, condArgs, err := filter.Compile(where, clientColumns)
	if err != nil {
		return 0, fmt.Errorf("failed to compile client filter: %w", err)
	}

	now := time.Now()
	args := []interface{}{segment.ID, segment.OfferID, segment.CampaignID, now, now, segment.CampaignID, segment.OfferID}
	args = append(args, condArgs...)

	result := r.DB.WithContext(ctx).Exec(fmt.Sprintf(enrollSQL, cond), args...)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to enroll clients: %w", result.Error)
	}

	return result.RowsAffected, nil
}

// ExtractMemberships issues a client offer and a print for every pending
// membership and marks them extracted. The pending rows stay locked until
// commit so a concurrent extraction cannot issue them twice.
func (r *SegmentRepository) ExtractMemberships(ctx context.Context, p business.ExtractParams) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context error: %w", err)
	}

	var extracted int64
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pending []domain.KeyCode
		err := tx.Table("key_codes AS m").
			Select("m.*").
			Joins("JOIN key_code_details k ON k.id = m.key_id AND k.offer_id = ?", p.OfferID).
			Where("m.campaign_id = ? AND m.offer_id = ? AND NOT m.is_extracted", p.CampaignID, p.OfferID).
			Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "m"}}).
			Order("m.id").
			Find(&pending).Error
		if err != nil {
			return fmt.Errorf("failed to find pending memberships: %w", err)
		}
		if len(pending) == 0 {
			return nil
		}

		offers := make([]domain.ClientOffer, len(pending))
		ids := make([]uint64, len(pending))
		for i, m := range pending {
			offers[i] = domain.ClientOffer{
				CurrentSequenceID: business.Ptr(p.SequenceID),
				ChainID:           business.Ptr(p.ChainID),
				CampaignID:        business.Ptr(p.CampaignID),
				ClientID:          m.ClientID,
				KeyCodeID:         business.Ptr(m.KeyID),
				AvailableAt:       p.MailDate,
				BrandID:           p.BrandID,
			}
			ids[i] = m.ID
		}
		if err := tx.Create(&offers).Error; err != nil {
			return fmt.Errorf("failed to create client offers: %w", err)
		}

		prints := make([]domain.OfferPrint, len(offers))
		for i, co := range offers {
			prints[i] = domain.OfferPrint{
				ClientID:        co.ClientID,
				OfferID:         p.OfferID,
				CampaignID:      business.Ptr(p.CampaignID),
				KeyCodeID:       co.KeyCodeID,
				OfferCode:       co.Code,
				AvailableAt:     p.MailDate,
				ReturnAddressID: p.ReturnAddressID,
				BrandID:         p.BrandID,
			}
		}
		if err := tx.Create(&prints).Error; err != nil {
			return fmt.Errorf("failed to create offer prints: %w", err)
		}

		result := tx.Model(&domain.KeyCode{}).
			Where("id IN ?", ids).
			Updates(map[string]interface{}{"is_extracted": true, "updated_at": time.Now()})
		if result.Error != nil {
			return fmt.Errorf("failed to mark memberships extracted: %w", result.Error)
		}
		extracted = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to extract key code memberships: %w", err)
	}

	return extracted, nil
}

func (r *SegmentRepository) ListMemberships(ctx context.Context, campaignID, clientID uint64, offerIDs []uint64) ([]domain.KeyCode, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if len(offerIDs) == 0 {
		return nil, nil
	}

	var memberships []domain.KeyCode
	err := r.DB.WithContext(ctx).
		Where("campaign_id = ? AND client_id = ? AND offer_id IN ?", campaignID, clientID, offerIDs).
		Order("id").
		Find(&memberships).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list key code memberships: %w", err)
	}

	return memberships, nil
}

func (r *SegmentRepository) CountMembershipRefs(ctx context.Context, memberships []domain.KeyCode) (map[uint64]domain.Refs, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	refs := make(map[uint64]domain.Refs, len(memberships))
	for _, m := range memberships {
		const match = "key_code_id = ? AND client_id = ? AND offer_id = ? AND campaign_id = ?"
		var ref domain.Refs
		if err := r.DB.WithContext(ctx).Model(&domain.Order{}).
			Where(match, m.KeyID, m.ClientID, m.OfferID, m.CampaignID).Count(&ref.Orders).Error; err != nil {
			return nil, fmt.Errorf("failed to count membership orders: %w", err)
		}
		if err := r.DB.WithContext(ctx).Model(&domain.OfferPrint{}).
			Where(match, m.KeyID, m.ClientID, m.OfferID, m.CampaignID).Count(&ref.Prints).Error; err != nil {
			return nil, fmt.Errorf("failed to count membership prints: %w", err)
		}
		refs[m.ID] = ref
	}

	return refs, nil
}

func (r *SegmentRepository) DeleteMemberships(ctx context.Context, ids []uint64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context error: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	result := r.DB.WithContext(ctx).Where("id IN ?", ids).Delete(&domain.KeyCode{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete key code memberships: %w", result.Error)
	}

	return result.RowsAffected, nil
}

