package main

import (
	"net/http"

	"kiteops/src/common"
	"kiteops/src/config"
	"kiteops/src/types"

	"github.com/gin-gonic/gin"
)

func walletHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/wallet", func(ctx *gin.Context) {
			var filters types.WalletQueryFilters
			if err := ctx.ShouldBindQuery(&filters); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			currency := filters.Currency
			if currency == "" {
				currency = config.DEFAULT_CURRENCY
			}
			userId := ctx.GetUint("id")
			balance, err := common.GetWalletBalance(userId, currency)
			if err != nil {
				errorResponse(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": gin.H{"available": balance, "currency": currency}})
		}).
		GET("/wallet/transactions", func(ctx *gin.Context) {
			var filters types.WalletQueryFilters
			if err := ctx.ShouldBindQuery(&filters); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			txns, err := common.GetWalletTransactions(userId, filters.Currency)
			if err != nil {
				errorResponse(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": txns, "count": len(txns)})
		})
	return g
}
