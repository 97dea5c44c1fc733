package main

import (
	"net/http"

	"kiteops/src/common"
	"kiteops/src/types"

	"github.com/gin-gonic/gin"
)

// invitationHandlers are public: the token itself is the credential.
func invitationHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/invitations/:token", func(ctx *gin.Context) {
			var params types.InvitationTokenURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			participant, err := common.GetInvitation(params.Token)
			if err != nil {
				errorResponse(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": participant})
		}).
		POST("/invitations/:token/accept", func(ctx *gin.Context) {
			var params types.InvitationTokenURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.RespondInvitationRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil && err.Error() != "EOF" {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			result, err := common.AcceptInvitation(params.Token, body.UserID)
			if err != nil {
				errorResponse(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": result})
		}).
		POST("/invitations/:token/decline", func(ctx *gin.Context) {
			var params types.InvitationTokenURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.RespondInvitationRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil && err.Error() != "EOF" {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			result, err := common.DeclineInvitation(params.Token, body.Reason)
			if err != nil {
				errorResponse(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": result})
		})
	return g
}
