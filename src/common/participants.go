package common

import (
	"errors"
	"fmt"
	"log"
	"time"

	"kiteops/src/db"
	"kiteops/src/models"
	"kiteops/src/types"
	"kiteops/src/utils"

	"gorm.io/gorm"
)

type RespondResult struct {
	GroupBookingID uint `json:"group_booking_id"`
	AllAccepted    bool `json:"all_accepted"`
}

// lockBooking bumps the aggregate row inside the transaction so concurrent
// roster mutations on the same booking serialize on the row write.
func lockBooking(tx *gorm.DB, bookingId uint) error {
	return tx.
		Model(&models.GroupBooking{}).
		Where("id = ?", bookingId).
		Update("lock_version", gorm.Expr("lock_version + 1")).
		Error
}

func loadBooking(tx *gorm.DB, bookingId uint) (*models.GroupBooking, error) {
	var booking models.GroupBooking
	err := tx.
		Where(&models.GroupBooking{ID: bookingId}).
		First(&booking).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func requireOrganizerOrStaff(booking *models.GroupBooking, actorId uint, role string) error {
	if booking.OrganizerID == actorId || utils.IsStaffRole(role) {
		return nil
	}
	return types.ErrNotAuthorized
}

func requireOpenBooking(booking *models.GroupBooking) error {
	switch booking.Status {
	case types.GROUP_BOOKING_CANCELLED:
		return types.ErrAlreadyCancelled
	case types.GROUP_BOOKING_COMPLETED:
		return types.ErrAlreadyCompleted
	}
	return nil
}

func activeRosterCount(tx *gorm.DB, bookingId uint) (int64, error) {
	var count int64
	err := tx.
		Model(&models.Participant{}).
		Where("group_booking_id = ? AND status IN (?)", bookingId, []types.ParticipantStatus{
			types.PARTICIPANT_INVITED,
			types.PARTICIPANT_ACCEPTED,
		}).
		Count(&count).
		Error
	return count, err
}

func acceptedCount(tx *gorm.DB, bookingId uint) (int64, error) {
	var count int64
	err := tx.
		Model(&models.Participant{}).
		Where("group_booking_id = ? AND status = ?", bookingId, types.PARTICIPANT_ACCEPTED).
		Count(&count).
		Error
	return count, err
}

// InviteParticipants creates invited roster entries with fresh tokens.
// Re-inviting an email that is already invited or accepted returns the
// existing row instead of creating a duplicate.
func InviteParticipants(bookingId, actorId uint, role string, invitees []types.InviteeSpec) ([]models.Participant, error) {
	var results []models.Participant
	var fresh []models.Participant
	var booking *models.GroupBooking
	var organizer models.User

	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		booking, err = loadBooking(tx, bookingId)
		if err != nil {
			return err
		}
		if err := requireOrganizerOrStaff(booking, actorId, role); err != nil {
			return err
		}
		if err := requireOpenBooking(booking); err != nil {
			return err
		}
		if err := lockBooking(tx, bookingId); err != nil {
			return err
		}
		if err := tx.
			Where(&models.User{ID: booking.OrganizerID}).
			First(&organizer).
			Error; err != nil {
			return err
		}

		for _, invitee := range invitees {
			var existing models.Participant
			err := tx.
				Where("group_booking_id = ? AND email = ? AND status IN (?)", bookingId, invitee.Email, []types.ParticipantStatus{
					types.PARTICIPANT_INVITED,
					types.PARTICIPANT_ACCEPTED,
				}).
				First(&existing).
				Error
			if err == nil {
				results = append(results, existing)
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			count, err := activeRosterCount(tx, bookingId)
			if err != nil {
				return err
			}
			if count+1 > int64(booking.MaxParticipants) {
				return types.ErrCapacityExceeded
			}

			row, err := createInvitedParticipant(tx, booking, invitee)
			if err != nil {
				return err
			}
			results = append(results, *row)
			fresh = append(fresh, *row)

			err = EnqueueEvent(tx, "participant.invited", types.JSONB{
				"group_booking_id": bookingId,
				"participant_id":   row.ID,
				"email":            row.Email,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	go sendInvitationEmails(*booking, organizer.Name, fresh)
	return results, nil
}

// AddParticipantsByUserIDs attaches pre-registered users without the token
// email flow. They still enter as invited: payment consent is explicit, so
// acceptance always comes from the participant themselves.
func AddParticipantsByUserIDs(bookingId, actorId uint, role string, userIds []uint) ([]models.Participant, error) {
	var results []models.Participant
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		booking, err := loadBooking(tx, bookingId)
		if err != nil {
			return err
		}
		if err := requireOrganizerOrStaff(booking, actorId, role); err != nil {
			return err
		}
		if err := requireOpenBooking(booking); err != nil {
			return err
		}
		if err := lockBooking(tx, bookingId); err != nil {
			return err
		}

		for _, userId := range userIds {
			var user models.User
			if err := tx.
				Where(&models.User{ID: userId}).
				First(&user).
				Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return types.NewNotFoundError(fmt.Sprintf("user %d not found", userId))
				}
				return err
			}

			var existing models.Participant
			err := tx.
				Where("group_booking_id = ? AND user_id = ? AND status IN (?)", bookingId, userId, []types.ParticipantStatus{
					types.PARTICIPANT_INVITED,
					types.PARTICIPANT_ACCEPTED,
				}).
				First(&existing).
				Error
			if err == nil {
				results = append(results, existing)
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			count, err := activeRosterCount(tx, bookingId)
			if err != nil {
				return err
			}
			if count+1 > int64(booking.MaxParticipants) {
				return types.ErrCapacityExceeded
			}

			row := models.Participant{
				GroupBookingID: bookingId,
				UserID:         &user.ID,
				Email:          user.Email,
				FullName:       user.Name,
				Status:         types.PARTICIPANT_INVITED,
				InvitedAt:      time.Now(),
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
			results = append(results, row)

			err = EnqueueEvent(tx, "participant.added", types.JSONB{
				"group_booking_id": bookingId,
				"participant_id":   row.ID,
				"user_id":          userId,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func findParticipantByToken(tx *gorm.DB, token string) (*models.Participant, error) {
	var participant models.Participant
	err := tx.
		Where("invitation_token = ?", token).
		First(&participant).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.ErrInvitationNotFound
		}
		return nil, err
	}
	return &participant, nil
}

func validateInvitation(participant *models.Participant) error {
	if participant.Status != types.PARTICIPANT_INVITED {
		return types.ErrAlreadyResponded
	}
	if participant.TokenExpiresAt != nil && participant.TokenExpiresAt.Before(time.Now()) {
		return types.ErrInvitationExpired
	}
	return nil
}

// GetInvitation resolves a token for the public invite landing page.
func GetInvitation(token string) (*models.Participant, error) {
	db := db.GetDb()
	participant, err := findParticipantByToken(db, token)
	if err != nil {
		return nil, err
	}
	if err := validateInvitation(participant); err != nil {
		return nil, err
	}
	var booking models.GroupBooking
	err = db.
		Where(&models.GroupBooking{ID: participant.GroupBookingID}).
		Preload("Service").
		Preload("Organizer").
		First(&booking).
		Error
	if err != nil {
		return nil, err
	}
	participant.GroupBooking = &booking
	return participant, nil
}

// AcceptInvitation consumes the token and marks the participant accepted.
// The all-accepted signal is computed after the transaction commits.
func AcceptInvitation(token string, userId *uint) (*RespondResult, error) {
	var bookingId uint
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		participant, err := findParticipantByToken(tx, token)
		if err != nil {
			return err
		}
		if err := validateInvitation(participant); err != nil {
			return err
		}
		booking, err := loadBooking(tx, participant.GroupBookingID)
		if err != nil {
			return err
		}
		if err := requireOpenBooking(booking); err != nil {
			return err
		}
		if err := lockBooking(tx, booking.ID); err != nil {
			return err
		}
		count, err := acceptedCount(tx, booking.ID)
		if err != nil {
			return err
		}
		if count >= int64(booking.MaxParticipants) {
			return types.ErrCapacityExceeded
		}

		bookingId = booking.ID
		return acceptParticipant(tx, participant, booking, userId)
	})
	if err != nil {
		return nil, err
	}
	return respondResult(bookingId)
}

// DeclineInvitation consumes the token and frees the capacity slot.
func DeclineInvitation(token, reason string) (*RespondResult, error) {
	var bookingId uint
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		participant, err := findParticipantByToken(tx, token)
		if err != nil {
			return err
		}
		if err := validateInvitation(participant); err != nil {
			return err
		}
		bookingId = participant.GroupBookingID
		return declineParticipant(tx, participant, reason)
	})
	if err != nil {
		return nil, err
	}
	return respondResult(bookingId)
}

// RespondByParticipant covers pre-registered users attached without a token:
// they accept or decline their own roster entry directly.
func RespondByParticipant(bookingId, userId uint, accept bool, reason string) (*RespondResult, error) {
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		booking, err := loadBooking(tx, bookingId)
		if err != nil {
			return err
		}
		if err := requireOpenBooking(booking); err != nil {
			return err
		}
		// Only the open invited entry answers; earlier cancelled or declined
		// rows for the same user are history, not the invitation.
		var participant models.Participant
		err = tx.
			Where("group_booking_id = ? AND user_id = ? AND status = ?", bookingId, userId, types.PARTICIPANT_INVITED).
			Order("id desc").
			First(&participant).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				var count int64
				if err := tx.
					Model(&models.Participant{}).
					Where("group_booking_id = ? AND user_id = ?", bookingId, userId).
					Count(&count).
					Error; err != nil {
					return err
				}
				if count > 0 {
					return types.ErrAlreadyResponded
				}
				return types.ErrParticipantMissing
			}
			return err
		}
		if !accept {
			return declineParticipant(tx, &participant, reason)
		}
		if err := lockBooking(tx, bookingId); err != nil {
			return err
		}
		count, err := acceptedCount(tx, bookingId)
		if err != nil {
			return err
		}
		if count >= int64(booking.MaxParticipants) {
			return types.ErrCapacityExceeded
		}
		return acceptParticipant(tx, &participant, booking, &userId)
	})
	if err != nil {
		return nil, err
	}
	return respondResult(bookingId)
}

func acceptParticipant(tx *gorm.DB, participant *models.Participant, booking *models.GroupBooking, userId *uint) error {
	now := time.Now()
	updates := map[string]any{
		"status":           types.PARTICIPANT_ACCEPTED,
		"responded_at":     now,
		"invitation_token": nil,
		"token_expires_at": nil,
	}
	if participant.UserID == nil && userId != nil {
		updates["user_id"] = *userId
	}
	// Free services settle at acceptance; there is nothing to charge.
	if booking.PricePerPerson == 0 {
		updates["payment_status"] = types.PAYMENT_PAID
	}
	err := tx.
		Model(&models.Participant{}).
		Where("id = ?", participant.ID).
		Updates(updates).
		Error
	if err != nil {
		return err
	}
	return EnqueueEvent(tx, "participant.accepted", types.JSONB{
		"group_booking_id": booking.ID,
		"participant_id":   participant.ID,
	})
}

func declineParticipant(tx *gorm.DB, participant *models.Participant, reason string) error {
	now := time.Now()
	err := tx.
		Model(&models.Participant{}).
		Where("id = ?", participant.ID).
		Updates(map[string]any{
			"status":           types.PARTICIPANT_DECLINED,
			"responded_at":     now,
			"decline_reason":   reason,
			"invitation_token": nil,
			"token_expires_at": nil,
		}).
		Error
	if err != nil {
		return err
	}
	return EnqueueEvent(tx, "participant.declined", types.JSONB{
		"group_booking_id": participant.GroupBookingID,
		"participant_id":   participant.ID,
	})
}

// respondResult reads the roster after commit so the all-accepted flag never
// reports state the transaction could still have rolled back.
func respondResult(bookingId uint) (*RespondResult, error) {
	db := db.GetDb()
	var booking models.GroupBooking
	if err := db.
		Where(&models.GroupBooking{ID: bookingId}).
		First(&booking).
		Error; err != nil {
		return nil, err
	}
	count, err := acceptedCount(db, bookingId)
	if err != nil {
		return nil, err
	}
	return &RespondResult{
		GroupBookingID: bookingId,
		AllAccepted:    count == int64(booking.MaxParticipants),
	}, nil
}

// RemoveParticipant soft-cancels a roster entry, refunding wallet payments
// first. The organizer's own record can never be removed.
func RemoveParticipant(bookingId, actorId uint, role string, participantId uint) error {
	db := db.GetDb()
	return db.Transaction(func(tx *gorm.DB) error {
		booking, err := loadBooking(tx, bookingId)
		if err != nil {
			return err
		}
		if err := requireOrganizerOrStaff(booking, actorId, role); err != nil {
			return err
		}
		var participant models.Participant
		err = tx.
			Where(&models.Participant{ID: participantId, GroupBookingID: bookingId}).
			First(&participant).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.ErrParticipantMissing
			}
			return err
		}
		if participant.IsOrganizer {
			return types.NewConflictError("the organizer cannot be removed from the group booking")
		}
		if participant.Status == types.PARTICIPANT_CANCELLED {
			return types.NewConflictError("participant has already been removed")
		}

		updates := map[string]any{
			"status":           types.PARTICIPANT_CANCELLED,
			"invitation_token": nil,
			"token_expires_at": nil,
		}
		if participant.PaymentStatus == types.PAYMENT_PAID &&
			participant.PaymentMethod == string(types.PAYMENT_METHOD_WALLET) &&
			participant.UserID != nil {
			_, err := RecordTransaction(tx, RecordTransactionInput{
				UserID:      *participant.UserID,
				Amount:      participant.AmountPaid,
				Currency:    booking.Currency,
				Direction:   types.WALLET_CREDIT,
				Description: fmt.Sprintf("Refund for group booking %s", booking.ShareCode),
				Metadata: types.JSONB{
					"group_booking_id": booking.ID,
					"participant_id":   participant.ID,
					"reason":           "participant_removed",
				},
			})
			if err != nil {
				return err
			}
			updates["payment_status"] = types.PAYMENT_REFUNDED
		}
		// Conditional on the status we read so a concurrent removal cannot
		// refund the same entry twice.
		res := tx.
			Model(&models.Participant{}).
			Where("id = ? AND status = ?", participant.ID, participant.Status).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return types.NewConflictError("participant has already been removed")
		}
		return EnqueueEvent(tx, "participant.removed", types.JSONB{
			"group_booking_id": bookingId,
			"participant_id":   participantId,
			"removed_by":       actorId,
		})
	})
}

// ExpireStaleInvitations is the periodic sweep for tokens past their expiry.
// Expired entries flip to declined, freeing their capacity slot.
func ExpireStaleInvitations() {
	db := db.GetDb()
	res := db.
		Model(&models.Participant{}).
		Where("status = ? AND token_expires_at < ?", types.PARTICIPANT_INVITED, time.Now()).
		Updates(map[string]any{
			"status":           types.PARTICIPANT_DECLINED,
			"decline_reason":   "invitation expired",
			"invitation_token": nil,
			"token_expires_at": nil,
		})
	if res.Error != nil {
		log.Printf("Error expiring stale invitations: %s\n", res.Error.Error())
		return
	}
	if res.RowsAffected > 0 {
		log.Printf("Expired %d stale invitations\n", res.RowsAffected)
	}
}
