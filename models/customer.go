package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer belongs to one user; the phone number is unique within that
// user's customers only.
type Customer struct {
	Id          string    `json:"id" gorm:"primaryKey"`
	UserId      string    `json:"-" gorm:"not null;uniqueIndex:idx_customers_user_phone,priority:1"`
	FullName    string    `json:"full_name" gorm:"not null"`
	PhoneNumber string    `json:"phone_number" gorm:"not null;uniqueIndex:idx_customers_user_phone,priority:2"`
	Balance     float64   `json:"balance" gorm:"type:numeric(12,2);default:0"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (customer *Customer) BeforeCreate(tx *gorm.DB) (err error) {
	// UUID version 4
	if customer.Id == "" {
		customer.Id = uuid.NewString()
	}
	return
}
