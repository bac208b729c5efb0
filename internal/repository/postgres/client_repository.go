package postgres

import (
	"context"
	"fmt"
	"time"

	"directMail/domain"

	"gorm.io/gorm"
)

type ClientRepository struct {
	DB *gorm.DB
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{
		DB: db,
	}
}

func (r *ClientRepository) Create(ctx context.Context, client *domain.Client) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(client).Error; err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	return nil
}

func (r *ClientRepository) FindByID(ctx context.Context, id uint64) (domain.Client, error) {
	if err := ctx.Err(); err != nil {
		return domain.Client{}, fmt.Errorf("context error: %w", err)
	}

	var client domain.Client
	if err := r.DB.WithContext(ctx).First(&client, id).Error; err != nil {
		return domain.Client{}, findErr(err, domain.ErrClientNotFound, "client")
	}

	return client, nil
}

func (r *ClientRepository) FindAll(ctx context.Context) ([]domain.Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var clients []domain.Client
	if err := r.DB.WithContext(ctx).Order("id").Find(&clients).Error; err != nil {
		return nil, fmt.Errorf("failed to find clients: %w", err)
	}

	return clients, nil
}

func (r *ClientRepository) Update(ctx context.Context, client *domain.Client) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	updateData := map[string]interface{}{
		"gender":         client.Gender,
		"first_name":     client.FirstName,
		"last_name":      client.LastName,
		"country":        client.Country,
		"city":           client.City,
		"state":          client.State,
		"zip_code":       client.ZipCode,
		"birth_date":     client.BirthDate,
		"phone":          client.Phone,
		"is_blacklisted": client.IsBlacklisted,
		"imported_from":  client.ImportedFrom,
		"list_owner":     client.ListOwner,
		"total_amount":   client.TotalAmount,
		"total_orders":   client.TotalOrders,
		"total_mails":    client.TotalMails,
		"brand_id":       client.BrandID,
		"updated_at":     time.Now(),
	}

	result := r.DB.WithContext(ctx).Model(&domain.Client{}).Where("id = ?", client.ID).Updates(updateData)
	if result.Error != nil {
		return fmt.Errorf("failed to update client: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrClientNotFound
	}

	return nil
}

func (r *ClientRepository) TouchLastPurchase(ctx context.Context, id uint64, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).Model(&domain.Client{}).Where("id = ?", id).
		Updates(map[string]interface{}{"last_purchase_date": at, "updated_at": time.Now()})
	if result.Error != nil {
		return fmt.Errorf("failed to update last purchase date: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrClientNotFound
	}

	return nil
}

const liveTotalsSQL = `
SELECT
    (SELECT COUNT(*) FROM orders WHERE client_id = @client) AS orders,
    (SELECT COUNT(*) FROM offer_prints WHERE client_id = @client AND is_exported) AS mails,
    (SELECT COALESCE(SUM(amount), 0) FROM orders WHERE client_id = @client) AS amount`

func (r *ClientRepository) LiveTotals(ctx context.Context, id uint64) (domain.LiveTotals, error) {
	if err := ctx.Err(); err != nil {
		return domain.LiveTotals{}, fmt.Errorf("context error: %w", err)
	}

	var live domain.LiveTotals
	if err := r.DB.WithContext(ctx).Raw(liveTotalsSQL, map[string]interface{}{"client": id}).Scan(&live).Error; err != nil {
		return domain.LiveTotals{}, fmt.Errorf("failed to compute client totals: %w", err)
	}

	return live, nil
}
