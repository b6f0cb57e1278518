package main

import (
	"errors"
	"net/http"

	"rsv/src/db"
	"rsv/src/types"
	"rsv/src/waitinglist"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func waitingListHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/waitinglist", func(ctx *gin.Context) {
			var body types.JoinWaitingListRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			entry, err := waitinglist.Join(db.GetDb(), apiDispatcher, body)
			if err != nil {
				switch {
				case errors.Is(err, waitinglist.ErrAlreadyQueued):
					ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				case errors.Is(err, gorm.ErrRecordNotFound):
					ctx.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
				default:
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				}
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": entry})
		}).
		GET("/waitinglist/:id/next", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			entry, err := waitinglist.FirstWaiting(db.GetDb(), params.ID)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if entry == nil {
				ctx.Status(http.StatusNoContent)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": entry})
		})
	return g
}
