package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockItem belongs to one user. Sku is optional; when present it is
// unique within that user's items (NULLs don't collide on the index).
type StockItem struct {
	Id          string    `json:"id" gorm:"primaryKey"`
	UserId      string    `json:"-" gorm:"not null;index;uniqueIndex:idx_stock_items_user_sku,priority:1"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	Price       float64   `json:"price" gorm:"type:numeric(12,2)"`
	Quantity    int       `json:"quantity" gorm:"not null;default:0;check:quantity >= 0"`
	Category    string    `json:"category"`
	Sku         *string   `json:"sku" gorm:"uniqueIndex:idx_stock_items_user_sku,priority:2"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (item *StockItem) BeforeCreate(tx *gorm.DB) (err error) {
	// UUID version 4
	if item.Id == "" {
		item.Id = uuid.NewString()
	}
	return
}
