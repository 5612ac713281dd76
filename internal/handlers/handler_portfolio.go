package handlers

import (
	"log/slog"
	"net/http"
	"time"

	portssvc "github.com/SscSPs/crypto_bookkeeper/internal/core/ports/services"
	"github.com/SscSPs/crypto_bookkeeper/internal/dto"
	"github.com/SscSPs/crypto_bookkeeper/internal/middleware"
	"github.com/gin-gonic/gin"
)

// portfolioHandler serves the derived views: pairs, statistics and fill previews.
type portfolioHandler struct {
	transactionService portssvc.TransactionSvcFacade
	loc                *time.Location
}

func registerPortfolioRoutes(rg *gin.RouterGroup, ts portssvc.TransactionSvcFacade, loc *time.Location) {
	if loc == nil {
		loc = time.Local
	}
	h := &portfolioHandler{transactionService: ts, loc: loc}

	rg.GET("/pairs", h.listPairs)
	rg.GET("/statistics", h.getStatistics)
	rg.POST("/fills/aggregate", h.aggregateFills)
}

// listPairs godoc
// @Summary List display rows
// @Description Pairs buys with their sells and applies the filters. Rows are newest first.
// @Tags portfolio
// @Produce  json
// @Param   coin query string false "Base asset"
// @Param   platform query string false "Platform name"
// @Param   pnl query string false "all, profit or loss"
// @Param   aprMin query number false "Minimum APR (percent)"
// @Param   aprMax query number false "Maximum APR (percent)"
// @Param   range query string false "all, year, month, week or custom"
// @Param   start query string false "Custom range start"
// @Param   end query string false "Custom range end"
// @Success 200 {array} dto.PairResponse
// @Failure 400 {object} map[string]string "Invalid filter"
// @Router /pairs [get]
func (h *portfolioHandler) listPairs(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	var q dto.PairQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, logger, "query parameters", err)
		return
	}
	filter, err := q.ToFilter(h.loc)
	if err != nil {
		respondError(c, logger, err, "Invalid filter")
		return
	}

	pairs, err := h.transactionService.ListPairs(c.Request.Context(), filter)
	if err != nil {
		respondError(c, logger, err, "Failed to list pairs")
		return
	}
	logger.Debug("Pairs listed", slog.Int("count", len(pairs)))
	c.JSON(http.StatusOK, dto.ToPairResponses(pairs))
}

// getStatistics godoc
// @Summary Aggregate statistics over active records
// @Tags portfolio
// @Produce  json
// @Success 200 {object} domain.Statistics
// @Router /statistics [get]
func (h *portfolioHandler) getStatistics(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	stats, err := h.transactionService.GetStatistics(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Failed to compute statistics")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// aggregateFills godoc
// @Summary Preview a fill list
// @Description Weighted average price, total amount and total value. Entries that do not parse count as zero.
// @Tags portfolio
// @Accept  json
// @Produce  json
// @Param   fills body dto.AggregateFillsRequest true "Draft fills"
// @Success 200 {object} dto.FillSummaryResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Router /fills/aggregate [post]
func (h *portfolioHandler) aggregateFills(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	var req dto.AggregateFillsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, "request format", err)
		return
	}
	summary := h.transactionService.AggregateFills(c.Request.Context(), req.ToDomainFills())
	c.JSON(http.StatusOK, dto.ToFillSummaryResponse(summary))
}
