package models

import (
	"kiteops/src/types"
	"time"
)

type User struct {
	ID            uint            `gorm:"primarykey" json:"id"`
	Name          string          `json:"name,omitempty"`
	Email         string          `gorm:"uniqueIndex" json:"email,omitempty"`
	Phone         string          `json:"phone,omitempty"`
	Role          string          `gorm:"default:'student'" json:"role,omitempty"`
	EmailVerified bool            `json:"email_verified,omitempty"`
	VerifiedAt    time.Time       `json:"verified_at,omitempty"`
	Metadata      *types.Metadata `gorm:"type:jsonb"`

	Participations []Participant   `gorm:"foreignKey:user_id" json:"participations,omitempty"`
	Wallets        []WalletAccount `gorm:"foreignKey:user_id" json:"wallets,omitempty"`

	types.Timestamps
}
