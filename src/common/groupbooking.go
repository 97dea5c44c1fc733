package common

import (
	"errors"
	"log"
	"time"

	"kiteops/src/config"
	"kiteops/src/db"
	"kiteops/src/lib/mailer"
	"kiteops/src/models"
	"kiteops/src/types"
	"kiteops/src/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateGroupBooking inserts the aggregate with the organizer as its first,
// auto-accepted participant, plus any invitees or pre-registered users named
// at creation time, all in one transaction.
func CreateGroupBooking(organizerId uint, role string, params *types.CreateGroupBookingRequestBody) (*models.GroupBooking, error) {
	price := *params.PricePerPerson
	if price < 0 {
		return nil, types.NewValidationError("price per person cannot be negative")
	}
	scheduledDate, err := time.Parse(config.TIME_PARSE_FORMAT, params.ScheduledDate)
	if err != nil {
		return nil, types.NewValidationError("scheduled date is not a valid timestamp")
	}
	if _, err := time.Parse(config.CLOCK_TIME_FORMAT, params.StartTime); err != nil {
		return nil, types.NewValidationError("start time must be in HH:MM format")
	}
	if params.EndTime != "" {
		if _, err := time.Parse(config.CLOCK_TIME_FORMAT, params.EndTime); err != nil {
			return nil, types.NewValidationError("end time must be in HH:MM format")
		}
	}

	db := db.GetDb()
	var organizer models.User
	if err := db.
		Where(&models.User{ID: organizerId}).
		First(&organizer).
		Error; err != nil {
		return nil, err
	}

	// The organizer never counts twice: self references and repeated entries
	// are dropped before the roster size check.
	seenEmails := map[string]bool{organizer.Email: true}
	invitees := make([]types.InviteeSpec, 0, len(params.Invitees))
	for _, invitee := range params.Invitees {
		if seenEmails[invitee.Email] {
			continue
		}
		seenEmails[invitee.Email] = true
		invitees = append(invitees, invitee)
	}
	seenIds := map[uint]bool{organizerId: true}
	participantIds := make([]uint, 0, len(params.ParticipantIDs))
	for _, userId := range params.ParticipantIDs {
		if seenIds[userId] {
			continue
		}
		seenIds[userId] = true
		participantIds = append(participantIds, userId)
	}

	initialCount := 1 + len(invitees) + len(participantIds)
	if !utils.IsStaffRole(role) && initialCount < 2 {
		return nil, types.NewValidationError("Group lessons require at least 2 people. Invite at least one more participant.")
	}

	minParticipants := params.MinParticipants
	if minParticipants == 0 {
		minParticipants = config.DEFAULT_MIN_PARTICIPANTS
	}
	if minParticipants < 2 {
		return nil, types.NewValidationError("group bookings require at least 2 participants")
	}
	maxParticipants := params.MaxParticipants
	if maxParticipants == 0 {
		maxParticipants = config.DEFAULT_MAX_PARTICIPANTS
	}
	if uint(initialCount) > maxParticipants {
		maxParticipants = uint(initialCount)
	}
	if maxParticipants < minParticipants {
		return nil, types.NewValidationError("maximum participants cannot be below the minimum")
	}

	currency := params.Currency
	if currency == "" {
		currency = config.DEFAULT_CURRENCY
	}
	paymentModel := types.PaymentModel(params.PaymentModel)
	if paymentModel == "" {
		paymentModel = types.PAYMENT_MODEL_INDIVIDUAL
	}

	booking := models.GroupBooking{
		OrganizerID:     organizerId,
		ServiceID:       params.ServiceID,
		InstructorID:    params.InstructorID,
		Title:           params.Title,
		Description:     params.Description,
		Notes:           params.Notes,
		MaxParticipants: maxParticipants,
		MinParticipants: minParticipants,
		PricePerPerson:  price,
		Currency:        currency,
		ScheduledDate:   scheduledDate,
		StartTime:       params.StartTime,
		EndTime:         params.EndTime,
		DurationHours:   params.DurationHours,
		PaymentModel:    paymentModel,
		Status:          types.GROUP_BOOKING_PENDING,
	}
	if params.RegistrationDeadline != nil {
		deadline, err := time.Parse(config.TIME_PARSE_FORMAT, *params.RegistrationDeadline)
		if err != nil {
			return nil, types.NewValidationError("registration deadline is not a valid timestamp")
		}
		booking.RegistrationDeadline = &deadline
	}
	if params.PaymentDeadline != nil {
		deadline, err := time.Parse(config.TIME_PARSE_FORMAT, *params.PaymentDeadline)
		if err != nil {
			return nil, types.NewValidationError("payment deadline is not a valid timestamp")
		}
		booking.PaymentDeadline = &deadline
	}

	var invited []models.Participant
	err = db.Transaction(func(tx *gorm.DB) error {
		var service models.Service
		if err := tx.
			Where(&models.Service{ID: params.ServiceID}).
			First(&service).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.NewNotFoundError("service not found")
			}
			return err
		}
		if booking.Title == "" {
			booking.Title = service.Name
		}

		if err := tx.Create(&booking).Error; err != nil {
			return err
		}
		booking.ShareCode = utils.ShareCode(booking.Title, booking.ID)
		if err := tx.
			Model(&models.GroupBooking{}).
			Where("id = ?", booking.ID).
			Update("share_code", booking.ShareCode).
			Error; err != nil {
			return err
		}

		organizerRow := models.Participant{
			GroupBookingID: booking.ID,
			UserID:         &organizerId,
			Email:          organizer.Email,
			FullName:       organizer.Name,
			IsOrganizer:    true,
			Status:         types.PARTICIPANT_ACCEPTED,
			PaymentStatus:  types.PAYMENT_PENDING,
			InvitedAt:      time.Now(),
		}
		if price == 0 {
			organizerRow.PaymentStatus = types.PAYMENT_PAID
		}
		if err := tx.Create(&organizerRow).Error; err != nil {
			return err
		}

		for _, invitee := range invitees {
			row, err := createInvitedParticipant(tx, &booking, invitee)
			if err != nil {
				return err
			}
			invited = append(invited, *row)
		}

		for _, userId := range participantIds {
			var user models.User
			if err := tx.
				Where(&models.User{ID: userId}).
				First(&user).
				Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return types.NewNotFoundError("participant user not found")
				}
				return err
			}
			row := models.Participant{
				GroupBookingID: booking.ID,
				UserID:         &user.ID,
				Email:          user.Email,
				FullName:       user.Name,
				Status:         types.PARTICIPANT_INVITED,
				InvitedAt:      time.Now(),
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}

		return EnqueueEvent(tx, "group_booking.created", types.JSONB{
			"group_booking_id": booking.ID,
			"organizer_id":     organizerId,
			"payment_model":    string(paymentModel),
			"max_participants": maxParticipants,
		})
	})
	if err != nil {
		return nil, err
	}

	go sendInvitationEmails(booking, organizer.Name, invited)

	var created models.GroupBooking
	if err := db.
		Where(&models.GroupBooking{ID: booking.ID}).
		Preload("Participants").
		First(&created).
		Error; err != nil {
		return nil, err
	}
	return &created, nil
}

func createInvitedParticipant(tx *gorm.DB, booking *models.GroupBooking, invitee types.InviteeSpec) (*models.Participant, error) {
	token := uuid.NewString()
	expiry := time.Now().Add(config.INVITATION_TTL)
	row := models.Participant{
		GroupBookingID:  booking.ID,
		Email:           invitee.Email,
		FullName:        invitee.FullName,
		Phone:           invitee.Phone,
		Status:          types.PARTICIPANT_INVITED,
		InvitationToken: &token,
		TokenExpiresAt:  &expiry,
		InvitedAt:       time.Now(),
	}
	var user models.User
	err := tx.Where(&models.User{Email: invitee.Email}).First(&user).Error
	if err == nil {
		row.UserID = &user.ID
		if row.FullName == "" {
			row.FullName = user.Name
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err := tx.Create(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func sendInvitationEmails(booking models.GroupBooking, organizerName string, invited []models.Participant) {
	for _, row := range invited {
		if row.InvitationToken == nil {
			continue
		}
		err := mailer.SendInvitationEmail(row.Email, row.FullName, booking.Title, organizerName, *row.InvitationToken)
		if err != nil {
			log.Printf("Error sending invitation to %s: %s\n", row.Email, err.Error())
		}
	}
}

func GetGroupBooking(id uint) (*models.GroupBooking, error) {
	db := db.GetDb()
	var booking models.GroupBooking
	err := db.
		Model(&models.GroupBooking{}).
		Where(&models.GroupBooking{ID: id}).
		Preload("Service").
		Preload("Instructor").
		Preload("Participants").
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

// ListGroupBookings returns bookings the user organizes or participates in.
func ListGroupBookings(userId uint) ([]models.GroupBooking, error) {
	db := db.GetDb()
	var ids []uint
	err := db.
		Model(&models.Participant{}).
		Where("user_id = ? AND status NOT IN (?)", userId, []types.ParticipantStatus{
			types.PARTICIPANT_DECLINED,
			types.PARTICIPANT_CANCELLED,
		}).
		Distinct("group_booking_id").
		Pluck("group_booking_id", &ids).
		Error
	if err != nil {
		return nil, err
	}
	var bookings []models.GroupBooking
	err = db.
		Model(&models.GroupBooking{}).
		Where("organizer_id = ? OR id IN (?)", userId, ids).
		Preload("Participants").
		Order("scheduled_date asc").
		Find(&bookings).
		Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}
