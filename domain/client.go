package domain

import "time"

// CREATE TABLE public.clients (
//     id                  BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     gender              TEXT,
//     first_name          TEXT,
//     last_name           TEXT,
//     ...
//     total_amount        NUMERIC DEFAULT 0,
//     total_orders        INTEGER DEFAULT 0,
//     total_mails         INTEGER DEFAULT 0,
//     brand_id            BIGINT
// );

type Client struct {
	ID               uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Gender           string     `gorm:"column:gender;type:text" json:"gender"`
	FirstName        string     `gorm:"column:first_name;type:text" json:"first_name"`
	LastName         string     `gorm:"column:last_name;type:text" json:"last_name"`
	Country          string     `gorm:"column:country;type:text" json:"country"`
	City             string     `gorm:"column:city;type:text" json:"city"`
	State            string     `gorm:"column:state;type:text" json:"state"`
	ZipCode          string     `gorm:"column:zip_code;type:text" json:"zip_code"`
	BirthDate        *time.Time `gorm:"column:birth_date;type:date" json:"birth_date"`
	Phone            string     `gorm:"column:phone;type:text" json:"phone"`
	IsBlacklisted    bool       `gorm:"column:is_blacklisted;default:false" json:"is_blacklisted"`
	ImportedFrom     string     `gorm:"column:imported_from;type:text" json:"imported_from"`
	ListOwner        string     `gorm:"column:list_owner;type:text" json:"list_owner"`
	LastPurchaseDate *time.Time `gorm:"column:last_purchase_date" json:"last_purchase_date"`
	TotalAmount      float64    `gorm:"column:total_amount;type:numeric;default:0" json:"total_amount"`
	TotalOrders      int64      `gorm:"column:total_orders;default:0" json:"total_orders"`
	TotalMails       int64      `gorm:"column:total_mails;default:0" json:"total_mails"`
	BrandID          *uint64    `gorm:"column:brand_id" json:"brand_id"`
	CreatedAt        time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

func (Client) TableName() string {
	return "clients"
}

// Filter field names accepted by segment enrollment rules.
const (
	FieldTotalOrders = "totalOrders"
	FieldTotalMails  = "totalMails"
	FieldTotalAmount = "totalAmount"
)

var ClientFilterFields = []string{
	"id", "gender", "firstName", "lastName", "country", "city", "state", "zipCode",
	"birthDate", "isBlacklisted", "importedFrom", "listOwner", "lastPurchaseDate", "brandId",
	FieldTotalOrders, FieldTotalMails, FieldTotalAmount,
}

// LiveTotals are the aggregates computed over the orders and prints tables.
type LiveTotals struct {
	Orders int64   `json:"orders"`
	Mails  int64   `json:"mails"`
	Amount float64 `json:"amount"`
}

// ClientTotals are the lifetime counters of a client: stored baseline plus live sums.
type ClientTotals struct {
	TotalOrders int64   `json:"total_orders"`
	TotalMails  int64   `json:"total_mails"`
	TotalAmount float64 `json:"total_amount"`
}

func ComputeTotals(c Client, live LiveTotals) ClientTotals {
	return ClientTotals{
		TotalOrders: c.TotalOrders + live.Orders,
		TotalMails:  c.TotalMails + live.Mails,
		TotalAmount: c.TotalAmount + live.Amount,
	}
}
