package models

import (
	"time"
)

// Invoice is the persisted form of a ledger invoice. The invoice number
// is unique per owning user; the customer and each line item's stock
// item are referenced by id within the same user's collections.
type Invoice struct {
	Id            string            `json:"id" gorm:"primaryKey"`
	UserId        string            `json:"-" gorm:"not null;uniqueIndex:idx_invoices_user_number,priority:1"`
	InvoiceNumber string            `json:"invoice_number" gorm:"not null;uniqueIndex:idx_invoices_user_number,priority:2"`
	CustomerId    string            `json:"customer_id" gorm:"not null;index"`
	Items         []InvoiceLineItem `json:"items" gorm:"foreignKey:InvoiceId;constraint:OnDelete:CASCADE"`
	TotalAmount   float64           `json:"total_amount" gorm:"type:numeric(12,2)"`
	Status        string            `json:"status" gorm:"type:varchar(20);not null;default:pending"`
	CreatedAt     time.Time         `json:"created_at"`
}

// InvoiceLineItem snapshots the item name and price at invoice time.
type InvoiceLineItem struct {
	Id        uint    `json:"-" gorm:"primaryKey"`
	InvoiceId string  `json:"-" gorm:"not null;index"`
	Position  int     `json:"-" gorm:"not null"` // preserves line order
	ItemId    string  `json:"item_id" gorm:"not null;index"`
	Name      string  `json:"name" gorm:"not null"`
	Quantity  int     `json:"quantity" gorm:"not null"`
	Price     float64 `json:"price" gorm:"type:numeric(12,2)"`
}
