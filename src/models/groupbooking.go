package models

import (
	"kiteops/src/types"
	"time"
)

type GroupBooking struct {
	ID           uint  `gorm:"primarykey" json:"id"`
	OrganizerID  uint  `json:"organizer_id,omitempty"`
	ServiceID    uint  `json:"service_id,omitempty"`
	InstructorID *uint `json:"instructor_id,omitempty"`

	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Notes       string `json:"notes,omitempty"`
	ShareCode   string `gorm:"index" json:"share_code,omitempty"`

	MaxParticipants uint    `gorm:"default:6" json:"max_participants,omitempty"`
	MinParticipants uint    `gorm:"default:2" json:"min_participants,omitempty"`
	PricePerPerson  float64 `json:"price_per_person"`
	Currency        string  `gorm:"default:'EUR'" json:"currency,omitempty"`

	ScheduledDate        time.Time  `json:"scheduled_date,omitempty"`
	StartTime            string     `json:"start_time,omitempty"`
	EndTime              string     `json:"end_time,omitempty"`
	DurationHours        float64    `json:"duration_hours,omitempty"`
	RegistrationDeadline *time.Time `json:"registration_deadline,omitempty"`
	PaymentDeadline      *time.Time `json:"payment_deadline,omitempty"`

	PaymentModel  types.PaymentModel       `gorm:"default:'individual'" json:"payment_model,omitempty"`
	Status        types.GroupBookingStatus `gorm:"default:'pending'" json:"status,omitempty"`
	OrganizerPaid bool                     `json:"organizer_paid"`

	// Bumped inside every roster-mutating transaction so the row write
	// serializes concurrent capacity checks on the same booking.
	LockVersion uint `json:"-"`

	Organizer    *User          `gorm:"foreignKey:organizer_id" json:"organizer,omitempty"`
	Service      *Service       `gorm:"foreignKey:service_id" json:"service,omitempty"`
	Instructor   *Instructor    `gorm:"foreignKey:instructor_id" json:"instructor,omitempty"`
	Participants []*Participant `gorm:"foreignKey:group_booking_id" json:"participants,omitempty"`

	types.Timestamps
}
