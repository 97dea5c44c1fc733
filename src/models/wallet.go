package models

import (
	"kiteops/src/types"

	"github.com/google/uuid"
)

type WalletAccount struct {
	ID       uint    `gorm:"primarykey" json:"id"`
	UserID   uint    `gorm:"uniqueIndex:idx_wallet_user_currency" json:"user_id,omitempty"`
	Currency string  `gorm:"uniqueIndex:idx_wallet_user_currency;default:'EUR'" json:"currency,omitempty"`
	Balance  float64 `json:"balance"`

	User *User `gorm:"foreignKey:user_id" json:"user,omitempty"`

	types.Timestamps
}

// WalletTransaction rows are append-only; balance corrections are made by
// writing an opposite-direction row, never by editing history.
type WalletTransaction struct {
	ID uuid.UUID `gorm:"primarykey;type:uuid" json:"id"`

	WalletAccountID uint                  `gorm:"index" json:"wallet_account_id,omitempty"`
	UserID          uint                  `json:"user_id,omitempty"`
	Currency        string                `json:"currency,omitempty"`
	Amount          float64               `json:"amount"`
	Direction       types.WalletDirection `json:"direction,omitempty"`
	Description     string                `json:"description,omitempty"`
	Metadata        types.JSONB           `gorm:"type:jsonb" json:"metadata,omitempty"`

	WalletAccount *WalletAccount `gorm:"foreignKey:wallet_account_id" json:"-"`

	types.Timestamps
}
