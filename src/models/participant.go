package models

import (
	"kiteops/src/types"
	"time"
)

type Participant struct {
	ID             uint   `gorm:"primarykey" json:"id"`
	GroupBookingID uint   `gorm:"index" json:"group_booking_id,omitempty"`
	UserID         *uint  `json:"user_id,omitempty"`
	Email          string `json:"email,omitempty"`
	FullName       string `json:"full_name,omitempty"`
	Phone          string `json:"phone,omitempty"`
	IsOrganizer    bool   `json:"is_organizer"`

	Status        types.ParticipantStatus `gorm:"default:'invited'" json:"status,omitempty"`
	PaymentStatus types.PaymentStatus     `gorm:"default:'pending'" json:"payment_status,omitempty"`

	AmountPaid       float64 `json:"amount_paid"`
	PaymentMethod    string  `json:"payment_method,omitempty"`
	PaymentReference string  `json:"payment_reference,omitempty"`

	InvitationToken *string    `gorm:"uniqueIndex" json:"-"`
	TokenExpiresAt  *time.Time `json:"-"`
	InvitedAt       time.Time  `json:"invited_at,omitempty"`
	RespondedAt     *time.Time `json:"responded_at,omitempty"`
	DeclineReason   string     `json:"decline_reason,omitempty"`

	GroupBooking *GroupBooking `gorm:"foreignKey:group_booking_id" json:"group_booking,omitempty"`
	User         *User         `gorm:"foreignKey:user_id" json:"user,omitempty"`

	types.Timestamps
}
