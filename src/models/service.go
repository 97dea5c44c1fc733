package models

import "kiteops/src/types"

type Service struct {
	ID          uint    `gorm:"primarykey" json:"id"`
	Name        string  `json:"name,omitempty"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category,omitempty"`
	BasePrice   float64 `json:"base_price,omitempty"`
	Currency    string  `gorm:"default:'EUR'" json:"currency,omitempty"`
	Active      bool    `gorm:"default:true" json:"active,omitempty"`

	types.Timestamps
}
