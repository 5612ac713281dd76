package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Version is reported by the home route. It is set at build time with -ldflags.
var Version = "dev"

// getHome godoc
// @Summary Show the status of server.
// @Description get the status of server.
// @Tags root
// @Accept */*
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func getHome(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"message": "Crypto Bookkeeper API v1", "version": Version})
}

// registerHomeRoutes registers the API root.
func registerHomeRoutes(group *gin.RouterGroup) {
	group.GET("", getHome)
}
