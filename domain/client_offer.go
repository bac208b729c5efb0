package domain

import (
	"crypto/rand"
	"math/big"
	"time"

	"gorm.io/gorm"
)

const (
	offerCodeLength   = 7
	offerCodeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
)

// ClientOffer records that a client may receive an offer through a chain edge.
// When OriginalOfferID is set the record is a substitute mailing and orders are
// attributed to the referenced record.
type ClientOffer struct {
	ID                uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Code              string    `gorm:"column:code;type:text;uniqueIndex" json:"code"`
	CurrentSequenceID *uint64   `gorm:"column:current_sequence_id" json:"current_sequence_id"`
	ChainID           *uint64   `gorm:"column:chain_id" json:"chain_id"`
	CampaignID        *uint64   `gorm:"column:campaign_id" json:"campaign_id"`
	ClientID          uint64    `gorm:"column:client_id;not null" json:"client_id"`
	KeyCodeID         *uint64   `gorm:"column:key_code_id" json:"key_code_id"`
	OriginalOfferID   *uint64   `gorm:"column:original_offer_id" json:"original_offer_id"`
	AvailableAt       time.Time `gorm:"column:available_at;type:date" json:"available_at"`
	IsActivated       bool      `gorm:"column:is_activated;default:false" json:"is_activated"`
	BrandID           *uint64   `gorm:"column:brand_id" json:"brand_id"`
	CreatedAt         time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (ClientOffer) TableName() string {
	return "client_offers"
}

func (c *ClientOffer) BeforeCreate(tx *gorm.DB) error {
	if c.Code != "" {
		return nil
	}
	code, err := NewOfferCode()
	if err != nil {
		return err
	}
	c.Code = code
	return nil
}

func (c ClientOffer) Substitute() bool {
	return c.OriginalOfferID != nil
}

// NewOfferCode returns a random base62 token printed on the mailing.
func NewOfferCode() (string, error) {
	max := big.NewInt(int64(len(offerCodeAlphabet)))
	buf := make([]byte, offerCodeLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = offerCodeAlphabet[n.Int64()]
	}
	return string(buf), nil
}
