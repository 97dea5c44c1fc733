package common

import (
	"errors"
	"fmt"

	"kiteops/src/db"
	"kiteops/src/lib"
	"kiteops/src/models"
	"kiteops/src/types"

	"gorm.io/gorm"
)

type ParticipantPaymentInput struct {
	GroupBookingID   uint
	ParticipantID    uint
	UserID           uint
	PaymentMethod    types.PaymentMethod
	PackageReference *string
}

type ParticipantPaymentResult struct {
	ParticipantID uint    `json:"participant_id"`
	AmountPaid    float64 `json:"amount_paid"`
	Currency      string  `json:"currency"`
	Reference     string  `json:"reference,omitempty"`
}

type OrganizerPaymentResult struct {
	TotalAmount      float64 `json:"total_amount"`
	ParticipantCount int     `json:"participant_count"`
	Currency         string  `json:"currency"`
}

// ProcessParticipantPayment settles one roster entry under the individual
// payment model. The wallet debit and the status flip commit as one unit.
func ProcessParticipantPayment(input ParticipantPaymentInput) (*ParticipantPaymentResult, error) {
	var result ParticipantPaymentResult
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		booking, err := loadBooking(tx, input.GroupBookingID)
		if err != nil {
			return err
		}
		if err := requireOpenBooking(booking); err != nil {
			return err
		}
		if booking.PaymentModel != types.PAYMENT_MODEL_INDIVIDUAL {
			return types.ErrWrongPaymentModel
		}

		var participant models.Participant
		err = tx.
			Where(&models.Participant{ID: input.ParticipantID, GroupBookingID: booking.ID}).
			First(&participant).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.ErrParticipantMissing
			}
			return err
		}
		if participant.UserID == nil || *participant.UserID != input.UserID {
			return types.NewAuthorizationError("you may only pay for your own participation")
		}
		if participant.Status != types.PARTICIPANT_ACCEPTED {
			return types.NewConflictError("participant has not accepted the invitation")
		}
		if participant.PaymentStatus != types.PAYMENT_PENDING {
			return types.ErrAlreadyPaid
		}

		amount := booking.PricePerPerson
		reference := ""
		if amount > 0 {
			switch input.PaymentMethod {
			case types.PAYMENT_METHOD_WALLET:
				wtxn, err := RecordTransaction(tx, RecordTransactionInput{
					UserID:      input.UserID,
					Amount:      amount,
					Currency:    booking.Currency,
					Direction:   types.WALLET_DEBIT,
					Description: fmt.Sprintf("Group booking %s", booking.ShareCode),
					Metadata: types.JSONB{
						"group_booking_id": booking.ID,
						"participant_id":   participant.ID,
					},
				})
				if err != nil {
					return err
				}
				reference = wtxn.ID.String()
			case types.PAYMENT_METHOD_CARD:
				intent, err := lib.CreatePaymentIntent(amount, booking.Currency, map[string]string{
					"group_booking_id": fmt.Sprint(booking.ID),
					"participant_id":   fmt.Sprint(participant.ID),
				})
				if err != nil {
					return err
				}
				reference = intent.ID
			case types.PAYMENT_METHOD_PACKAGE:
				if input.PackageReference == nil || *input.PackageReference == "" {
					return types.NewValidationError("package reference is required for package payments")
				}
				reference = *input.PackageReference
			default:
				return types.NewValidationError("unsupported payment method")
			}
		}

		// Conditional on the pending status so a racing writer that passed
		// the in-memory check loses here and rolls back its debit.
		res := tx.
			Model(&models.Participant{}).
			Where("id = ? AND payment_status = ?", participant.ID, types.PAYMENT_PENDING).
			Updates(map[string]any{
				"payment_status":    types.PAYMENT_PAID,
				"amount_paid":       amount,
				"payment_method":    string(input.PaymentMethod),
				"payment_reference": reference,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return types.ErrAlreadyPaid
		}

		result = ParticipantPaymentResult{
			ParticipantID: participant.ID,
			AmountPaid:    amount,
			Currency:      booking.Currency,
			Reference:     reference,
		}
		return EnqueueEvent(tx, "participant.paid", types.JSONB{
			"group_booking_id": booking.ID,
			"participant_id":   participant.ID,
			"amount":           amount,
			"method":           string(input.PaymentMethod),
		})
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ProcessOrganizerPayment charges the organizer once for every accepted
// participant and flips the whole roster to paid atomically. A failed debit
// leaves no participant touched.
func ProcessOrganizerPayment(bookingId, actorId uint, method types.PaymentMethod) (*OrganizerPaymentResult, error) {
	var result OrganizerPaymentResult
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		booking, err := loadBooking(tx, bookingId)
		if err != nil {
			return err
		}
		if err := requireOpenBooking(booking); err != nil {
			return err
		}
		if booking.OrganizerID != actorId {
			return types.ErrNotOrganizer
		}
		if booking.PaymentModel != types.PAYMENT_MODEL_ORGANIZER_PAYS {
			return types.ErrWrongPaymentModel
		}
		if booking.OrganizerPaid {
			return types.ErrAlreadyPaid
		}
		if err := lockBooking(tx, bookingId); err != nil {
			return err
		}
		// The flip doubles as the double-charge guard: two requests that both
		// read organizer_paid=false serialize on the row, and the loser sees
		// zero affected rows and rolls back before any debit.
		res := tx.
			Model(&models.GroupBooking{}).
			Where("id = ? AND organizer_paid = ?", bookingId, false).
			Update("organizer_paid", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return types.ErrAlreadyPaid
		}

		var accepted []models.Participant
		err = tx.
			Where("group_booking_id = ? AND status = ?", bookingId, types.PARTICIPANT_ACCEPTED).
			Find(&accepted).
			Error
		if err != nil {
			return err
		}
		if len(accepted) == 0 {
			return types.NewConflictError("no accepted participants to pay for")
		}

		totalAmount := booking.PricePerPerson * float64(len(accepted))
		reference := ""
		if totalAmount > 0 {
			switch method {
			case types.PAYMENT_METHOD_WALLET:
				wtxn, err := RecordTransaction(tx, RecordTransactionInput{
					UserID:      actorId,
					Amount:      totalAmount,
					Currency:    booking.Currency,
					Direction:   types.WALLET_DEBIT,
					Description: fmt.Sprintf("Group booking %s (%d participants)", booking.ShareCode, len(accepted)),
					Metadata: types.JSONB{
						"group_booking_id":  booking.ID,
						"participant_count": len(accepted),
					},
				})
				if err != nil {
					return err
				}
				reference = wtxn.ID.String()
			case types.PAYMENT_METHOD_CARD:
				intent, err := lib.CreatePaymentIntent(totalAmount, booking.Currency, map[string]string{
					"group_booking_id": fmt.Sprint(booking.ID),
					"organizer_id":     fmt.Sprint(actorId),
				})
				if err != nil {
					return err
				}
				reference = intent.ID
			default:
				return types.NewValidationError("unsupported payment method")
			}
		}

		res = tx.
			Model(&models.Participant{}).
			Where("group_booking_id = ? AND status = ? AND payment_status = ?",
				bookingId, types.PARTICIPANT_ACCEPTED, types.PAYMENT_PENDING).
			Updates(map[string]any{
				"payment_status":    types.PAYMENT_PAID,
				"amount_paid":       booking.PricePerPerson,
				"payment_method":    string(method),
				"payment_reference": reference,
			})
		if res.Error != nil {
			return res.Error
		}
		// A charged settlement must flip at least one row; a roster already
		// settled elsewhere means this debit is a duplicate. Zero-price
		// rosters settle at acceptance, so nothing pending is fine there.
		if res.RowsAffected == 0 && totalAmount > 0 {
			return types.ErrAlreadyPaid
		}

		result = OrganizerPaymentResult{
			TotalAmount:      totalAmount,
			ParticipantCount: len(accepted),
			Currency:         booking.Currency,
		}
		return EnqueueEvent(tx, "group_booking.organizer_paid", types.JSONB{
			"group_booking_id":  booking.ID,
			"total_amount":      totalAmount,
			"participant_count": len(accepted),
		})
	})
	if err != nil {
		return nil, err
	}

	// Publish promptly instead of waiting for the outbox sweep interval.
	go PublishPendingEvents()
	return &result, nil
}
