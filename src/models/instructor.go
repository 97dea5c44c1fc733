package models

import "kiteops/src/types"

type Instructor struct {
	ID     uint   `gorm:"primarykey" json:"id"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	Phone  string `json:"phone,omitempty"`
	Active bool   `gorm:"default:true" json:"active,omitempty"`

	types.Timestamps
}
