package main

import (
	"errors"
	"net/http"

	"rsv/src/codes"
	"rsv/src/db"
	"rsv/src/models"
	"rsv/src/types"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func codeHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/tickets/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			conn := db.GetDb()
			var ticket models.Ticket
			if err := conn.Where("id = ?", params.ID).First(&ticket).Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "ticket not found"})
				return
			}
			var reserved int64
			if err := conn.Model(&models.InventoryItem{}).Where("ticket_id = ?", ticket.ID).Count(&reserved).Error; err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			free := uint(0)
			if uint(reserved) < ticket.Limit {
				free = ticket.Limit - uint(reserved)
			}
			ticket.Stats = &models.TicketStats{
				TicketID: ticket.ID,
				Free:     free,
				Reserved: uint(reserved),
			}
			ctx.JSON(http.StatusOK, gin.H{"data": ticket})
		}).
		POST("/tickets/:id/codes", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body struct {
				Count uint    `json:"count" binding:"required,min=1,max=1000"`
				Price float64 `json:"price"`
			}
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			conn := db.GetDb()
			var ticket models.Ticket
			if err := conn.Where("id = ?", params.ID).First(&ticket).Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "ticket not found"})
				return
			}
			slots := make([]models.SpecialPriceCode, 0, body.Count)
			for i := uint(0); i < body.Count; i++ {
				slots = append(slots, models.SpecialPriceCode{
					TicketID: ticket.ID,
					Status:   types.CODE_WAITING,
					Price:    body.Price,
				})
			}
			if err := conn.Create(&slots).Error; err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			// Codes arrive with the next allocator sweep.
			ctx.JSON(http.StatusAccepted, gin.H{"count": len(slots)})
		}).
		POST("/tickets/:id/codes/redeem", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body struct {
				Code string `json:"code" binding:"required"`
			}
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			slot, err := codes.Redeem(db.GetDb(), params.ID, body.Code)
			if err != nil {
				switch {
				case errors.Is(err, codes.ErrCodeNotRedeemable):
					ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				case errors.Is(err, gorm.ErrRecordNotFound):
					ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				default:
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				}
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": slot})
		})
	return g
}
