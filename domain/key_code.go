package domain

import (
	"time"

	"gorm.io/datatypes"
)

// KeyCodeDetails is a segment scoped to (campaign, offer). Keys are unique
// within a campaign. Rows are never deleted.
type KeyCodeDetails struct {
	ID            uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	Key           string         `gorm:"column:key;type:text;not null;uniqueIndex:key_code_details_campaign_key,priority:2" json:"key"`
	CampaignID    uint64         `gorm:"column:campaign_id;not null;uniqueIndex:key_code_details_campaign_key,priority:1" json:"campaign_id"`
	OfferID       uint64         `gorm:"column:offer_id;not null" json:"offer_id"`
	ListName      string         `gorm:"column:list_name;type:text" json:"list_name"`
	Description   string         `gorm:"column:description;type:text" json:"description"`
	Filters       datatypes.JSON `gorm:"column:filters;type:jsonb" json:"filters"`
	IsUnknown     bool           `gorm:"column:is_unknown;default:false" json:"is_unknown"`
	FromSegmentID *uint64        `gorm:"column:from_segment_id" json:"from_segment_id"`
	BrandID       *uint64        `gorm:"column:brand_id" json:"brand_id"`
	CreatedAt     time.Time      `gorm:"column:created_at" json:"created_at"`
}

func (KeyCodeDetails) TableName() string {
	return "key_code_details"
}

// KeyCode is the membership of a client in a segment for one offer of a campaign.
type KeyCode struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	KeyID       uint64    `gorm:"column:key_id;not null;uniqueIndex:key_codes_unique_member" json:"key_id"`
	OfferID     uint64    `gorm:"column:offer_id;not null;uniqueIndex:key_codes_unique_member" json:"offer_id"`
	CampaignID  uint64    `gorm:"column:campaign_id;not null;uniqueIndex:key_codes_unique_member" json:"campaign_id"`
	ClientID    uint64    `gorm:"column:client_id;not null;uniqueIndex:key_codes_unique_member" json:"client_id"`
	IsExtracted bool      `gorm:"column:is_extracted;default:false" json:"is_extracted"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (KeyCode) TableName() string {
	return "key_codes"
}

type SegmentStats struct {
	SegmentID   uint64  `json:"segment_id"`
	Key         string  `json:"key"`
	OfferID     uint64  `json:"offer_id"`
	IsUnknown   bool    `json:"is_unknown"`
	Clients     int64   `json:"clients"`
	Printed     int64   `json:"printed"`
	NotSent     int64   `json:"not_sent"`
	TotalOrders int64   `json:"total_orders"`
	TotalMoney  float64 `json:"total_money"`
}

// Refs counts the orders and mail prints that keep a record alive.
type Refs struct {
	Orders int64
	Prints int64
}
