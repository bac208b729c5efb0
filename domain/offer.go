package domain

import "time"

const (
	OfferTypeOffer           = "offer"
	OfferTypeProduct         = "product"
	OfferTypeClientServices  = "client-services"
	OfferTypePaymentReminder = "payment-reminder"
)

// CREATE TABLE public.offers (
//     id          BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     title       TEXT NOT NULL,
//     type        TEXT NOT NULL DEFAULT 'offer',
//     ...
//     brand_id    BIGINT,
//     UNIQUE (title, brand_id)
// );

type Offer struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string    `gorm:"column:title;type:text;not null" json:"title"`
	Type        string    `gorm:"column:type;type:text;not null;default:offer" json:"type"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	Porter      string    `gorm:"column:porter;type:text" json:"porter"`
	Owner       string    `gorm:"column:owner;type:text" json:"owner"`
	Theme       string    `gorm:"column:theme;type:text" json:"theme"`
	Grade       string    `gorm:"column:grade;type:text" json:"grade"`
	Language    string    `gorm:"column:language;type:text" json:"language"`
	Origin      string    `gorm:"column:origin;type:text" json:"origin"`
	Country     string    `gorm:"column:country;type:text" json:"country"`
	BrandID     *uint64   `gorm:"column:brand_id" json:"brand_id"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Offer) TableName() string {
	return "offers"
}

// Chains only advance through offers of type "offer".
func (o Offer) Chainable() bool {
	return o.Type == OfferTypeOffer
}

func ValidOfferType(t string) bool {
	switch t {
	case OfferTypeOffer, OfferTypeProduct, OfferTypeClientServices, OfferTypePaymentReminder:
		return true
	}
	return false
}
