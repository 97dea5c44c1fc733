package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, &a)
	case string:
		return json.Unmarshal([]byte(v), &a)
	default:
		return errors.New("unsupported source type for JSONB")
	}
}

type Metadata map[string]any

type Env string

const (
	Local      Env = "local"
	Test       Env = "test"
	Production Env = "production"
)

type GroupBookingStatus string

const (
	GROUP_BOOKING_PENDING   GroupBookingStatus = "pending"
	GROUP_BOOKING_CONFIRMED GroupBookingStatus = "confirmed"
	GROUP_BOOKING_CANCELLED GroupBookingStatus = "cancelled"
	GROUP_BOOKING_COMPLETED GroupBookingStatus = "completed"
)

type PaymentModel string

const (
	PAYMENT_MODEL_INDIVIDUAL     PaymentModel = "individual"
	PAYMENT_MODEL_ORGANIZER_PAYS PaymentModel = "organizer_pays"
)

type ParticipantStatus string

const (
	PARTICIPANT_INVITED   ParticipantStatus = "invited"
	PARTICIPANT_ACCEPTED  ParticipantStatus = "accepted"
	PARTICIPANT_DECLINED  ParticipantStatus = "declined"
	PARTICIPANT_CANCELLED ParticipantStatus = "cancelled"
)

type PaymentStatus string

const (
	PAYMENT_PENDING  PaymentStatus = "pending"
	PAYMENT_PAID     PaymentStatus = "paid"
	PAYMENT_REFUNDED PaymentStatus = "refunded"
)

type PaymentMethod string

const (
	PAYMENT_METHOD_WALLET  PaymentMethod = "wallet"
	PAYMENT_METHOD_CARD    PaymentMethod = "card"
	PAYMENT_METHOD_PACKAGE PaymentMethod = "package"
)

type WalletDirection string

const (
	WALLET_DEBIT  WalletDirection = "debit"
	WALLET_CREDIT WalletDirection = "credit"
)

const (
	ROLE_ADMIN      = "admin"
	ROLE_MANAGER    = "manager"
	ROLE_INSTRUCTOR = "instructor"
	ROLE_STUDENT    = "student"
	ROLE_OUTSIDER   = "outsider"
)

type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type ParticipantURIParams struct {
	ID            uint `uri:"id" binding:"required"`
	ParticipantID uint `uri:"pid" binding:"required"`
}

type InvitationTokenURIParams struct {
	Token string `uri:"token" binding:"required,uuid"`
}

type InviteeSpec struct {
	Email    string `json:"email" binding:"required,email"`
	FullName string `json:"full_name,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

type CreateGroupBookingRequestBody struct {
	ServiceID            uint          `json:"service" binding:"required"`
	InstructorID         *uint         `json:"instructor,omitempty"`
	Title                string        `json:"title,omitempty"`
	Description          string        `json:"description,omitempty"`
	Notes                string        `json:"notes,omitempty"`
	PricePerPerson       *float64      `json:"price_per_person" binding:"required"`
	Currency             string        `json:"currency,omitempty"`
	ScheduledDate        string        `json:"scheduled_date" binding:"required,bookabledate" time_format:"2006-01-02 15:04:05 -07:00"`
	StartTime            string        `json:"start_time" binding:"required"`
	EndTime              string        `json:"end_time,omitempty"`
	DurationHours        float64       `json:"duration_hours,omitempty"`
	RegistrationDeadline *string       `json:"registration_deadline,omitempty" binding:"omitempty,bookabledate,ltdate=ScheduledDate" time_format:"2006-01-02 15:04:05 -07:00"`
	PaymentDeadline      *string       `json:"payment_deadline,omitempty" binding:"omitempty,bookabledate" time_format:"2006-01-02 15:04:05 -07:00"`
	MaxParticipants      uint          `json:"max_participants,omitempty"`
	MinParticipants      uint          `json:"min_participants,omitempty"`
	PaymentModel         string        `json:"payment_model,omitempty" binding:"omitempty,oneof=individual organizer_pays"`
	Invitees             []InviteeSpec `json:"invitees,omitempty" binding:"omitempty,dive"`
	ParticipantIDs       []uint        `json:"participant_ids,omitempty"`
}

type InviteParticipantsRequestBody struct {
	Invitees []InviteeSpec `json:"invitees" binding:"required,min=1,dive"`
}

type AddParticipantsRequestBody struct {
	UserIDs []uint `json:"user_ids" binding:"required,min=1"`
}

type RespondInvitationRequestBody struct {
	UserID *uint  `json:"user_id,omitempty"`
	Reason string `json:"reason,omitempty"`
}

type ParticipantPaymentRequestBody struct {
	PaymentMethod    string  `json:"payment_method" binding:"required,oneof=wallet card package"`
	PackageReference *string `json:"package_reference,omitempty"`
}

type OrganizerPaymentRequestBody struct {
	PaymentMethod string `json:"payment_method" binding:"required,oneof=wallet card"`
}

type CancelGroupBookingRequestBody struct {
	Reason string `json:"reason,omitempty"`
}

type WalletQueryFilters struct {
	Currency string `form:"currency,omitempty"`
}
