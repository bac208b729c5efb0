package domain

import "time"

// Order snapshots the client, campaign, chain and offer at the time it was placed.
type Order struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ClientID       uint64    `gorm:"column:client_id;not null" json:"client_id"`
	ClientOfferID  *uint64   `gorm:"column:client_offer_id" json:"client_offer_id"`
	CampaignID     *uint64   `gorm:"column:campaign_id" json:"campaign_id"`
	OfferID        uint64    `gorm:"column:offer_id;not null" json:"offer_id"`
	ChainID        *uint64   `gorm:"column:chain_id" json:"chain_id"`
	KeyCodeID      *uint64   `gorm:"column:key_code_id" json:"key_code_id"`
	BrandID        *uint64   `gorm:"column:brand_id" json:"brand_id"`
	CampaignCode   string    `gorm:"column:campaign_code;type:text" json:"campaign_code"`
	ChainTitle     string    `gorm:"column:chain_title;type:text" json:"chain_title"`
	OfferTitle     string    `gorm:"column:offer_title;type:text" json:"offer_title"`
	Amount         float64   `gorm:"column:amount;type:numeric" json:"amount"`
	CashAmount     float64   `gorm:"column:cash_amount;type:numeric" json:"cash_amount"`
	CheckAmount    float64   `gorm:"column:check_amount;type:numeric" json:"check_amount"`
	PostalAmount   float64   `gorm:"column:postal_amount;type:numeric" json:"postal_amount"`
	DiscountAmount float64   `gorm:"column:discount_amount;type:numeric" json:"discount_amount"`
	Payee          string    `gorm:"column:payee;type:text" json:"payee"`
	Currency       string    `gorm:"column:currency;type:text" json:"currency"`
	Gender         string    `gorm:"column:gender;type:text" json:"gender"`
	FirstName      string    `gorm:"column:first_name;type:text" json:"first_name"`
	LastName       string    `gorm:"column:last_name;type:text" json:"last_name"`
	Country        string    `gorm:"column:country;type:text" json:"country"`
	City           string    `gorm:"column:city;type:text" json:"city"`
	State          string    `gorm:"column:state;type:text" json:"state"`
	ZipCode        string    `gorm:"column:zip_code;type:text" json:"zip_code"`
	Phone          string    `gorm:"column:phone;type:text" json:"phone"`
	CreatedAt      time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Order) TableName() string {
	return "orders"
}

// Amounts is the payment breakdown of an order.
type Amounts struct {
	Amount   float64
	Cash     float64
	Check    float64
	Postal   float64
	Discount float64
	Payee    string
	Currency string
}

// Total falls back to the sum of the payment channels when Amount is unset.
func (a Amounts) Total() float64 {
	if a.Amount != 0 {
		return a.Amount
	}
	return a.Cash + a.Check + a.Postal
}

// Today truncates t to a UTC calendar date.
func Today(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func AddDays(t time.Time, days int) time.Time {
	return Today(t).AddDate(0, 0, days)
}
