package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	portssvc "github.com/SscSPs/crypto_bookkeeper/internal/core/ports/services"
	"github.com/SscSPs/crypto_bookkeeper/internal/middleware"
	"github.com/gin-gonic/gin"
)

type balanceHandler struct {
	balanceService portssvc.BalanceSvcFacade
	priceService   portssvc.PriceSvcFacade
}

// registerBalanceRoutes registers holdings and price routes. limit guards the routes that
// call out to the balance proxy or the price feed.
func registerBalanceRoutes(rg *gin.RouterGroup, bs portssvc.BalanceSvcFacade, ps portssvc.PriceSvcFacade, limit gin.HandlerFunc) {
	h := &balanceHandler{balanceService: bs, priceService: ps}

	balances := rg.Group("/balances")
	{
		balances.GET("", h.getBalances)
		balances.GET("/summary", h.getSummary)
		balances.POST("/refresh", limit, h.refresh)
	}
	rg.GET("/prices", limit, h.getPrices)
}

// refresh godoc
// @Summary Refresh exchange and wallet balances
// @Description Fetches every enabled exchange account and wallet through the balance proxy. One source failing does not stop the others.
// @Tags balances
// @Produce  json
// @Success 200 {object} domain.RefreshReport
// @Failure 429 {object} map[string]string "Too many requests"
// @Router /balances/refresh [post]
func (h *balanceHandler) refresh(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	report, err := h.balanceService.RefreshAll(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Failed to refresh balances")
		return
	}
	logger.Info("Balances refreshed",
		slog.Int("succeeded", len(report.Succeeded)),
		slog.Int("failed", len(report.Failed)))
	c.JSON(http.StatusOK, report)
}

// getBalances godoc
// @Summary Last balance snapshot per source
// @Tags balances
// @Produce  json
// @Success 200 {object} map[string]domain.SourceBalance
// @Router /balances [get]
func (h *balanceHandler) getBalances(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	balances, err := h.balanceService.GetBalances(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Failed to load balances")
		return
	}
	c.JSON(http.StatusOK, balances)
}

// getSummary godoc
// @Summary Portfolio value by asset
// @Description Merges source snapshots and manual assets into holdings sorted by value.
// @Tags balances
// @Produce  json
// @Success 200 {object} domain.PortfolioSummary
// @Router /balances/summary [get]
func (h *balanceHandler) getSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	summary, err := h.balanceService.GetSummary(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Failed to summarize holdings")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// getPrices godoc
// @Summary USD prices
// @Description Unknown symbols are left out of the result.
// @Tags balances
// @Produce  json
// @Param   symbols query string true "Comma separated symbols, e.g. BTC,ETH"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string "No symbols given"
// @Failure 502 {object} map[string]string "Price feed unavailable"
// @Router /prices [get]
func (h *balanceHandler) getPrices(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	var symbols []string
	for _, s := range strings.Split(c.Query("symbols"), ",") {
		if s = strings.TrimSpace(s); s != "" {
			symbols = append(symbols, s)
		}
	}
	if len(symbols) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbols query parameter is required"})
		return
	}

	prices, err := h.priceService.GetPrices(c.Request.Context(), symbols)
	if err != nil {
		respondError(c, logger, err, "Failed to fetch prices")
		return
	}
	c.JSON(http.StatusOK, prices)
}
