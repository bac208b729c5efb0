package domain

import "time"

// CREATE TABLE public.chains (
//     id                 BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     title              TEXT NOT NULL,
//     offer_sequence_id  BIGINT,
//     brand_id           BIGINT,
//     UNIQUE (title, brand_id)
// );

type Chain struct {
	ID              uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Title           string    `gorm:"column:title;type:text;not null" json:"title"`
	OfferSequenceID *uint64   `gorm:"column:offer_sequence_id" json:"offer_sequence_id"`
	BrandID         *uint64   `gorm:"column:brand_id" json:"brand_id"`
	CreatedAt       time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Chain) TableName() string {
	return "chains"
}

// OfferSequence is one edge of a chain. A leaf offer keeps a row with a nil
// NextOfferID. Edges with a nil ChainID are standalone entries used by orders
// placed outside any chain.
type OfferSequence struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ChainID        *uint64   `gorm:"column:chain_id" json:"chain_id"`
	CurrentOfferID uint64    `gorm:"column:current_offer_id;not null" json:"current_offer_id"`
	NextOfferID    *uint64   `gorm:"column:next_offer_id" json:"next_offer_id"`
	DaysToAdd      int       `gorm:"column:days_to_add;not null;default:0" json:"days_to_add"`
	CreatedAt      time.Time `gorm:"column:created_at" json:"created_at"`
}

func (OfferSequence) TableName() string {
	return "offer_sequences"
}

func (s OfferSequence) Terminal() bool {
	return s.NextOfferID == nil
}

// ChainLevel is the breadth-first depth of an offer from the chain entry.
type ChainLevel struct {
	OfferID uint64 `json:"offer_id"`
	Level   int    `json:"level"`
}
