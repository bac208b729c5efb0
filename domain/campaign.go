package domain

import "time"

// CREATE TABLE public.campaigns (
//     id             BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     code           TEXT NOT NULL,
//     country        TEXT,
//     mail_date      DATE NOT NULL,
//     mail_quantity  INTEGER DEFAULT 0,
//     chain_id       BIGINT REFERENCES chains(id),
//     brand_id       BIGINT,
//     is_extracted   BOOLEAN DEFAULT FALSE,
//     UNIQUE (code, brand_id)
// );

type Campaign struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Code         string    `gorm:"column:code;type:text;not null" json:"code"`
	Country      string    `gorm:"column:country;type:text" json:"country"`
	MailDate     time.Time `gorm:"column:mail_date;type:date;not null" json:"mail_date"`
	MailQuantity int       `gorm:"column:mail_quantity;default:0" json:"mail_quantity"`
	ChainID      *uint64   `gorm:"column:chain_id" json:"chain_id"`
	BrandID      *uint64   `gorm:"column:brand_id" json:"brand_id"`
	IsExtracted  bool      `gorm:"column:is_extracted;default:false" json:"is_extracted"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Campaign) TableName() string {
	return "campaigns"
}

// CampaignOffer carries the mailing routing of one offer inside a campaign.
type CampaignOffer struct {
	ID              uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	CampaignID      uint64    `gorm:"column:campaign_id;not null;uniqueIndex:campaign_offers_unique" json:"campaign_id"`
	OfferID         uint64    `gorm:"column:offer_id;not null;uniqueIndex:campaign_offers_unique" json:"offer_id"`
	ReturnAddressID *uint64   `gorm:"column:return_address_id" json:"return_address_id"`
	PayeeNameID     *uint64   `gorm:"column:payee_name_id" json:"payee_name_id"`
	Printer         string    `gorm:"column:printer;type:text" json:"printer"`
	Price           float64   `gorm:"column:price;type:numeric" json:"price"`
	Currency        string    `gorm:"column:currency;type:text" json:"currency"`
	CreatedAt       time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (CampaignOffer) TableName() string {
	return "campaign_offers"
}

// OfferRouting is where an offer letter is mailed from.
type OfferRouting struct {
	ChainID         *uint64 `json:"chain_id"`
	CampaignID      *uint64 `json:"campaign_id"`
	ReturnAddressID *uint64 `json:"return_address_id"`
	PayeeNameID     *uint64 `json:"payee_name_id"`
	Printer         string  `json:"printer"`
}
