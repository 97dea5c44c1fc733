package common

import (
	"fmt"
	"log"

	"kiteops/src/db"
	"kiteops/src/models"
	"kiteops/src/types"

	"gorm.io/gorm"
)

type CancellationResult struct {
	GroupBookingID uint   `json:"group_booking_id"`
	RefundedCount  int    `json:"refunded_count"`
	FailedRefunds  []uint `json:"failed_refunds,omitempty"`
}

// CancelGroupBooking cancels the aggregate and reverses completed wallet
// payments. Refunds are per-participant transactions: one failure is logged
// and reported, the rest still go through. This is deliberately the opposite
// of the settlement engine's all-or-nothing contract.
func CancelGroupBooking(bookingId, actorId uint, role, reason string) (*CancellationResult, error) {
	db := db.GetDb()
	booking, err := loadBooking(db, bookingId)
	if err != nil {
		return nil, err
	}
	if err := requireOrganizerOrStaff(booking, actorId, role); err != nil {
		return nil, err
	}
	if err := requireOpenBooking(booking); err != nil {
		return nil, err
	}

	var paid []models.Participant
	err = db.
		Where("group_booking_id = ? AND payment_status = ? AND payment_method = ?",
			bookingId, types.PAYMENT_PAID, string(types.PAYMENT_METHOD_WALLET)).
		Find(&paid).
		Error
	if err != nil {
		return nil, err
	}

	result := CancellationResult{GroupBookingID: bookingId}
	for _, participant := range paid {
		if participant.UserID == nil {
			continue
		}
		p := participant
		err := db.Transaction(func(tx *gorm.DB) error {
			_, err := RecordTransaction(tx, RecordTransactionInput{
				UserID:      *p.UserID,
				Amount:      p.AmountPaid,
				Currency:    booking.Currency,
				Direction:   types.WALLET_CREDIT,
				Description: fmt.Sprintf("Refund for cancelled group booking %s", booking.ShareCode),
				Metadata: types.JSONB{
					"group_booking_id": booking.ID,
					"participant_id":   p.ID,
					"reason":           "group_booking_cancelled",
				},
			})
			if err != nil {
				return err
			}
			// Conditional so a concurrent refund of the same row cannot
			// credit the wallet twice.
			res := tx.
				Model(&models.Participant{}).
				Where("id = ? AND payment_status = ?", p.ID, types.PAYMENT_PAID).
				Update("payment_status", types.PAYMENT_REFUNDED)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return types.NewConflictError("participant has already been refunded")
			}
			return nil
		})
		if err != nil {
			log.Printf("Could not refund participant %d for booking %d: %s\n", p.ID, bookingId, err.Error())
			result.FailedRefunds = append(result.FailedRefunds, p.ID)
			continue
		}
		result.RefundedCount++
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		err := tx.
			Model(&models.GroupBooking{}).
			Where("id = ?", bookingId).
			Update("status", types.GROUP_BOOKING_CANCELLED).
			Error
		if err != nil {
			return err
		}
		err = tx.
			Model(&models.Participant{}).
			Where("group_booking_id = ? AND status = ?", bookingId, types.PARTICIPANT_INVITED).
			Updates(map[string]any{
				"status":           types.PARTICIPANT_DECLINED,
				"decline_reason":   "group booking cancelled",
				"invitation_token": nil,
				"token_expires_at": nil,
			}).
			Error
		if err != nil {
			return err
		}
		return EnqueueEvent(tx, "group_booking.cancelled", types.JSONB{
			"group_booking_id": bookingId,
			"cancelled_by":     actorId,
			"reason":           reason,
			"refunded_count":   result.RefundedCount,
		})
	})
	if err != nil {
		return nil, err
	}

	go PublishPendingEvents()
	return &result, nil
}
