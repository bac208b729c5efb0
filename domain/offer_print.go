package domain

import "time"

type OfferPrint struct {
	ID              uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ClientID        uint64    `gorm:"column:client_id;not null" json:"client_id"`
	OfferID         uint64    `gorm:"column:offer_id;not null" json:"offer_id"`
	CampaignID      *uint64   `gorm:"column:campaign_id" json:"campaign_id"`
	KeyCodeID       *uint64   `gorm:"column:key_code_id" json:"key_code_id"`
	OfferCode       string    `gorm:"column:offer_code;type:text" json:"offer_code"`
	AvailableAt     time.Time `gorm:"column:available_at;type:date" json:"available_at"`
	ReturnAddressID *uint64   `gorm:"column:return_address_id" json:"return_address_id"`
	IsExported      bool      `gorm:"column:is_exported;default:false" json:"is_exported"`
	BrandID         *uint64   `gorm:"column:brand_id" json:"brand_id"`
	CreatedAt       time.Time `gorm:"column:created_at" json:"created_at"`
}

func (OfferPrint) TableName() string {
	return "offer_prints"
}

// PrintExport is one row of a printer file: a pending print joined with the
// client it is mailed to and the campaign it belongs to.
type PrintExport struct {
	PrintID       uint64    `json:"print_id"`
	OfferCode     string    `json:"offer_code"`
	CampaignCode  string    `json:"campaign_code"`
	MailDate      time.Time `json:"mail_date"`
	ClientID      uint64    `json:"client_id"`
	Gender        string    `json:"gender"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Phone         string    `json:"phone"`
	City          string    `json:"city"`
	State         string    `json:"state"`
	ZipCode       string    `json:"zip_code"`
	Country       string    `json:"country"`
	IsBlacklisted bool      `json:"is_blacklisted"`
}
