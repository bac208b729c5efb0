package postgres

import (
	"context"
	"fmt"

	"directMail/business"
	"directMail/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OfferPrintRepository struct {
	DB *gorm.DB
}

func NewOfferPrintRepository(db *gorm.DB) *OfferPrintRepository {
	return &OfferPrintRepository{
		DB: db,
	}
}

func (r *OfferPrintRepository) Create(ctx context.Context, print *domain.OfferPrint) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(print).Error; err != nil {
		return fmt.Errorf("failed to create offer print: %w", err)
	}

	return nil
}

func (r *OfferPrintRepository) DeleteOne(ctx context.Context, m business.PrintMatch) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("context error: %w", err)
	}

	q := r.DB.WithContext(ctx).Model(&domain.OfferPrint{}).Where("client_id = ? AND offer_id = ?", m.ClientID, m.OfferID)
	q = whereID(q, "campaign_id", m.CampaignID)
	q = whereID(q, "key_code_id", m.KeyCodeID)

	var ids []uint64
	if err := q.Order("is_exported, id").Limit(1).Pluck("id", &ids).Error; err != nil {
		return false, fmt.Errorf("failed to find offer print: %w", err)
	}
	if len(ids) == 0 {
		return false, nil
	}

	result := r.DB.WithContext(ctx).Delete(&domain.OfferPrint{}, ids[0])
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete offer print: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

func (r *OfferPrintRepository) ListByClient(ctx context.Context, clientID uint64) ([]domain.OfferPrint, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var prints []domain.OfferPrint
	if err := r.DB.WithContext(ctx).Where("client_id = ?", clientID).Order("id").Find(&prints).Error; err != nil {
		return nil, fmt.Errorf("failed to list offer prints: %w", err)
	}

	return prints, nil
}

const printExportColumns = `p.id AS print_id, COALESCE(p.offer_code, '') AS offer_code,
    COALESCE(cp.code, '') AS campaign_code, p.available_at AS mail_date, c.id AS client_id,
    COALESCE(c.gender, '') AS gender, COALESCE(c.first_name, '') AS first_name,
    COALESCE(c.last_name, '') AS last_name, COALESCE(c.phone, '') AS phone,
    COALESCE(c.city, '') AS city, COALESCE(c.state, '') AS state,
    COALESCE(c.zip_code, '') AS zip_code, COALESCE(c.country, '') AS country,
    c.is_blacklisted`

// ExportPending locks the matching prints, flips them to exported and returns
// them. Only rows still unexported are flipped, so two exports never share one.
func (r *OfferPrintRepository) ExportPending(ctx context.Context, f business.ExportFilter) ([]domain.PrintExport, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rows []domain.PrintExport
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Table("offer_prints AS p").
			Select(printExportColumns).
			Joins("JOIN clients c ON c.id = p.client_id").
			Joins("JOIN campaign_offers co ON co.campaign_id = p.campaign_id AND co.offer_id = p.offer_id").
			Joins("JOIN campaigns cp ON cp.id = p.campaign_id").
			Where("p.offer_id = ? AND p.is_exported = false", f.OfferID).
			Where("COALESCE(co.printer, '') = ?", f.Printer)
		q = whereID(q, "co.return_address_id", f.ReturnAddressID)
		q = whereID(q, "co.payee_name_id", f.PayeeNameID)
		if f.BrandID != nil {
			q = q.Where("p.brand_id = ?", *f.BrandID)
		}

		day := domain.Today(f.Date)
		if f.Past {
			q = q.Where("p.available_at < ?", day)
		} else {
			q = q.Where("p.available_at >= ? AND p.available_at < ?", day, domain.AddDays(day, 1))
		}

		err := q.Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "p"}}).
			Order("p.id").
			Scan(&rows).Error
		if err != nil {
			return fmt.Errorf("failed to find pending prints: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}

		ids := make([]uint64, len(rows))
		for i, row := range rows {
			ids[i] = row.PrintID
		}
		result := tx.Model(&domain.OfferPrint{}).
			Where("id IN ? AND is_exported = false", ids).
			Update("is_exported", true)
		if result.Error != nil {
			return fmt.Errorf("failed to mark prints exported: %w", result.Error)
		}
		if result.RowsAffected != int64(len(ids)) {
			return fmt.Errorf("failed to mark prints exported: %d of %d already taken", int64(len(ids))-result.RowsAffected, len(ids))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return rows, nil
}
