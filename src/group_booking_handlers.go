package main

import (
	"log"
	"net/http"

	"kiteops/src/common"
	"kiteops/src/types"

	"github.com/gin-gonic/gin"
)

func errorResponse(ctx *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch types.KindOf(err) {
	case types.ERROR_VALIDATION:
		status = http.StatusBadRequest
	case types.ERROR_AUTHORIZATION:
		status = http.StatusForbidden
	case types.ERROR_CONFLICT:
		status = http.StatusConflict
	case types.ERROR_INSUFFICIENT_FUNDS:
		status = http.StatusPaymentRequired
	case types.ERROR_NOT_FOUND:
		status = http.StatusNotFound
	default:
		log.Printf("Could not complete request: %s\n", err.Error())
		ctx.JSON(status, gin.H{"error": "Error while processing request"})
		return
	}
	ctx.JSON(status, gin.H{"error": err.Error()})
}

func groupBookingHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/group-bookings", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			bookings, err := common.ListGroupBookings(userId)
			if err != nil {
				errorResponse(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": bookings, "count": len(bookings)})
		}).
		GET("/group-bookings/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			booking, err := common.GetGroupBooking(params.ID)
			if err != nil {
				errorResponse(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": booking})
		}).
		POST("/group-bookings", func(ctx *gin.Context) {
			var body types.CreateGroupBookingRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			role := ctx.GetString("role")
			booking, err := common.CreateGroupBooking(userId, role, &body)
			if err != nil {
				errorResponse(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": booking})
		}).
		POST("/group-bookings/:id/invitations", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.InviteParticipantsRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			role := ctx.GetString("role")
			participants, err := common.InviteParticipants(params.ID, userId, role, body.Invitees)
			if err != nil {
				errorResponse(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": participants, "count": len(participants)})
		}).
		POST("/group-bookings/:id/participants", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.AddParticipantsRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			role := ctx.GetString("role")
			participants, err := common.AddParticipantsByUserIDs(params.ID, userId, role, body.UserIDs)
			if err != nil {
				errorResponse(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": participants, "count": len(participants)})
		}).
		PUT("/group-bookings/:id/accept", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			userId := ctx.GetUint("id")
			result, err := common.RespondByParticipant(params.ID, userId, true, "")
			if err != nil {
				errorResponse(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": result})
		}).
		PUT("/group-bookings/:id/decline", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.RespondInvitationRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil && err.Error() != "EOF" {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			result, err := common.RespondByParticipant(params.ID, userId, false, body.Reason)
			if err != nil {
				errorResponse(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": result})
		}).
		POST("/group-bookings/:id/participants/:pid/payments", func(ctx *gin.Context) {
			var params types.ParticipantURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.ParticipantPaymentRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			result, err := common.ProcessParticipantPayment(common.ParticipantPaymentInput{
				GroupBookingID:   params.ID,
				ParticipantID:    params.ParticipantID,
				UserID:           userId,
				PaymentMethod:    types.PaymentMethod(body.PaymentMethod),
				PackageReference: body.PackageReference,
			})
			if err != nil {
				errorResponse(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": result})
		}).
		POST("/group-bookings/:id/payments/organizer", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.OrganizerPaymentRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			result, err := common.ProcessOrganizerPayment(params.ID, userId, types.PaymentMethod(body.PaymentMethod))
			if err != nil {
				errorResponse(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": result})
		}).
		PUT("/group-bookings/:id/cancel", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.CancelGroupBookingRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil && err.Error() != "EOF" {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			role := ctx.GetString("role")
			result, err := common.CancelGroupBooking(params.ID, userId, role, body.Reason)
			if err != nil {
				errorResponse(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": result})
		}).
		DELETE("/group-bookings/:id/participants/:pid", func(ctx *gin.Context) {
			var params types.ParticipantURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			userId := ctx.GetUint("id")
			role := ctx.GetString("role")
			err := common.RemoveParticipant(params.ID, userId, role, params.ParticipantID)
			if err != nil {
				errorResponse(ctx, err)
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}
