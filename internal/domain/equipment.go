package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Equipment is an item owned by exactly one user.
type Equipment struct {
	ID               int64               `gorm:"primaryKey"`
	UserID           int64               `gorm:"column:user_id;not null;index"`
	Name             string              `gorm:"size:255;not null"`
	Category         string              `gorm:"size:100;not null;index"`
	Price            decimal.NullDecimal `gorm:"type:decimal(10,2)"`
	Description      *string             `gorm:"type:text"`
	Image            *string             `gorm:"size:200"`
	PurchaseDate     *time.Time          `gorm:"type:date"`
	PurchaseLocation *string             `gorm:"size:255"`
	Link             *string             `gorm:"size:200"`
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Owner     *User          `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Retailers []RetailerLink `gorm:"foreignKey:EquipmentID;constraint:OnDelete:CASCADE"`
}

func (Equipment) TableName() string { return "equipment" }

// RetailerLink is a price quote from a retailer for one Equipment.
type RetailerLink struct {
	ID            int64           `gorm:"primaryKey"`
	EquipmentID   int64           `gorm:"not null;index"`
	RetailerID    string          `gorm:"size:100;not null;index"`
	Price         decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	URL           string          `gorm:"column:url;size:200;not null"`
	AffiliateCode *string         `gorm:"size:50"`
}

func (RetailerLink) TableName() string { return "retailer_links" }

// EquipmentCategories lists the categories offered by the client UI.
// Category is free text; the list only seeds suggestions.
var EquipmentCategories = []string{
	"Espresso Machine",
	"Grinder",
	"Scale",
	"Tamper",
	"Accessory",
}
