package handlers

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/SscSPs/crypto_bookkeeper/internal/core/domain"
	portssvc "github.com/SscSPs/crypto_bookkeeper/internal/core/ports/services"
	"github.com/SscSPs/crypto_bookkeeper/internal/dto"
	"github.com/SscSPs/crypto_bookkeeper/internal/middleware"
	"github.com/gin-gonic/gin"
)

const maxImportSize = 10 << 20

// transactionHandler handles HTTP requests for trade records.
type transactionHandler struct {
	transactionService portssvc.TransactionSvcFacade
}

func newTransactionHandler(ts portssvc.TransactionSvcFacade) *transactionHandler {
	return &transactionHandler{transactionService: ts}
}

// registerTransactionRoutes registers the trade record routes.
func registerTransactionRoutes(rg *gin.RouterGroup, ts portssvc.TransactionSvcFacade) {
	h := newTransactionHandler(ts)

	txs := rg.Group("/transactions")
	{
		txs.GET("", h.listTransactions)
		txs.POST("", h.createTrade)
		txs.GET("/deleted", h.listDeleted)
		txs.GET("/export", h.exportCSV)
		txs.POST("/import", h.importCSV)
		txs.POST("/bulk/delete", h.bulkSoftDelete)
		txs.POST("/bulk/restore", h.bulkRestore)
		txs.POST("/bulk/purge", h.bulkHardDelete)
		txs.GET("/:id", h.getTransaction)
		txs.PATCH("/:id", h.updateTransaction)
		txs.PUT("/:id", h.replaceTrade)
		txs.DELETE("/:id", h.softDelete)
		txs.POST("/:id/restore", h.restore)
		txs.DELETE("/:id/permanent", h.hardDelete)
	}
}

// createTrade godoc
// @Summary Record a trade
// @Description Stores a buy leg, a sell leg or both. A sell-only trade may reference a stored buy through existingBuyId.
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   trade body dto.CreateTradeRequest true "Trade legs"
// @Success 201 {array} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid input or validation error"
// @Failure 404 {object} map[string]string "Referenced buy not found"
// @Failure 500 {object} map[string]string "Failed to record trade"
// @Router /transactions [post]
func (h *transactionHandler) createTrade(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	var req dto.CreateTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, "request format", err)
		return
	}

	logger.Info("Received request to record trade",
		slog.Bool("has_buy", req.Buy != nil),
		slog.Bool("has_sell", req.Sell != nil),
		slog.String("existing_buy_id", req.ExistingBuyID))

	saved, err := h.transactionService.CreateTrade(c.Request.Context(), req)
	if err != nil {
		respondError(c, logger, err, "Failed to record trade")
		return
	}

	logger.Info("Trade recorded", slog.Int("legs", len(saved)))
	c.JSON(http.StatusCreated, dto.ToTransactionResponses(saved))
}

// replaceTrade godoc
// @Summary Edit a trade
// @Description Re-enters the trade the record belongs to. Ids are kept, links and pnl/apr are re-derived.
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   id path string true "Record ID (either leg)"
// @Param   trade body dto.CreateTradeRequest true "Trade legs"
// @Success 200 {array} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid input or validation error"
// @Failure 404 {object} map[string]string "Record not found"
// @Failure 500 {object} map[string]string "Failed to update trade"
// @Router /transactions/{id} [put]
func (h *transactionHandler) replaceTrade(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	id := c.Param("id")
	var req dto.CreateTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, "request format", err)
		return
	}

	logger = logger.With(slog.String("transaction_id", id))
	saved, err := h.transactionService.ReplaceTrade(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, logger, err, "Failed to update trade")
		return
	}

	logger.Info("Trade replaced", slog.Int("legs", len(saved)))
	c.JSON(http.StatusOK, dto.ToTransactionResponses(saved))
}

// getTransaction godoc
// @Summary Get a record by ID
// @Tags transactions
// @Produce  json
// @Param   id path string true "Record ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 404 {object} map[string]string "Record not found"
// @Router /transactions/{id} [get]
func (h *transactionHandler) getTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	tx, err := h.transactionService.GetTransaction(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve record")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(tx))
}

// listTransactions godoc
// @Summary List records
// @Description Newest first, paginated with an opaque token.
// @Tags transactions
// @Produce  json
// @Param   includeDeleted query bool false "Include soft-deleted records"
// @Param   limit query int false "Page size" default(50)
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Router /transactions [get]
func (h *transactionHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, logger, "query parameters", err)
		return
	}

	resp, err := h.transactionService.ListTransactions(c.Request.Context(), params)
	if err != nil {
		respondError(c, logger, err, "Failed to list records")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// listDeleted godoc
// @Summary List the recycle bin
// @Tags transactions
// @Produce  json
// @Success 200 {array} dto.TransactionResponse
// @Router /transactions/deleted [get]
func (h *transactionHandler) listDeleted(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	txs, err := h.transactionService.ListDeleted(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Failed to list deleted records")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponses(txs))
}

// updateTransaction godoc
// @Summary Patch a record
// @Description Applies the given fields. PnL and APR are not recomputed.
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   id path string true "Record ID"
// @Param   patch body dto.UpdateTransactionRequest true "Fields to change"
// @Success 200 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid input or validation error"
// @Failure 404 {object} map[string]string "Record not found"
// @Router /transactions/{id} [patch]
func (h *transactionHandler) updateTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	id := c.Param("id")
	var req dto.UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, "request format", err)
		return
	}

	tx, err := h.transactionService.UpdateTransaction(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, logger.With(slog.String("transaction_id", id)), err, "Failed to update record")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(tx))
}

// softDelete godoc
// @Summary Move a record to the recycle bin
// @Tags transactions
// @Param   id path string true "Record ID"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string "Record not found"
// @Router /transactions/{id} [delete]
func (h *transactionHandler) softDelete(c *gin.Context) {
	h.lifecycle(c, h.transactionService.SoftDelete, "Failed to delete record")
}

// restore godoc
// @Summary Restore a record from the recycle bin
// @Tags transactions
// @Param   id path string true "Record ID"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string "Record not found"
// @Router /transactions/{id}/restore [post]
func (h *transactionHandler) restore(c *gin.Context) {
	h.lifecycle(c, h.transactionService.Restore, "Failed to restore record")
}

// hardDelete godoc
// @Summary Delete a record permanently
// @Tags transactions
// @Param   id path string true "Record ID"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string "Record not found"
// @Router /transactions/{id}/permanent [delete]
func (h *transactionHandler) hardDelete(c *gin.Context) {
	h.lifecycle(c, h.transactionService.HardDelete, "Failed to purge record")
}

func (h *transactionHandler) lifecycle(c *gin.Context, op func(context.Context, string) error, failMsg string) {
	logger := middleware.GetLoggerFromContext(c)
	id := c.Param("id")
	if err := op(c.Request.Context(), id); err != nil {
		respondError(c, logger.With(slog.String("transaction_id", id)), err, failMsg)
		return
	}
	c.Status(http.StatusNoContent)
}

// bulkSoftDelete godoc
// @Summary Move several records to the recycle bin
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   ids body dto.BulkRequest true "Record IDs"
// @Success 200 {object} dto.BulkResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Router /transactions/bulk/delete [post]
func (h *transactionHandler) bulkSoftDelete(c *gin.Context) {
	h.bulk(c, h.transactionService.BulkSoftDelete)
}

// bulkRestore godoc
// @Summary Restore several records
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   ids body dto.BulkRequest true "Record IDs"
// @Success 200 {object} dto.BulkResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Router /transactions/bulk/restore [post]
func (h *transactionHandler) bulkRestore(c *gin.Context) {
	h.bulk(c, h.transactionService.BulkRestore)
}

// bulkHardDelete godoc
// @Summary Delete several records permanently
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   ids body dto.BulkRequest true "Record IDs"
// @Success 200 {object} dto.BulkResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Router /transactions/bulk/purge [post]
func (h *transactionHandler) bulkHardDelete(c *gin.Context) {
	h.bulk(c, h.transactionService.BulkHardDelete)
}

func (h *transactionHandler) bulk(c *gin.Context, op func(context.Context, []string) domain.BulkResult) {
	logger := middleware.GetLoggerFromContext(c)
	var req dto.BulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, "request format", err)
		return
	}

	result := op(c.Request.Context(), req.IDs)
	logger.Info("Bulk operation finished",
		slog.Int("succeeded", len(result.Succeeded)),
		slog.Int("failed", len(result.Failed)))
	c.JSON(http.StatusOK, dto.ToBulkResponse(result))
}

// exportCSV godoc
// @Summary Export active records as CSV
// @Tags transactions
// @Produce  text/csv
// @Success 200 {string} string "CSV file"
// @Failure 500 {object} map[string]string "Failed to export"
// @Router /transactions/export [get]
func (h *transactionHandler) exportCSV(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	var buf bytes.Buffer
	if err := h.transactionService.ExportCSV(c.Request.Context(), &buf); err != nil {
		respondError(c, logger, err, "Failed to export records")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="transactions.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// importCSV godoc
// @Summary Import records from CSV
// @Description Accepts a text/csv body or a multipart upload in the "file" field. Any bad row rejects the whole file.
// @Tags transactions
// @Accept  text/csv
// @Accept  multipart/form-data
// @Produce  json
// @Success 201 {object} dto.ImportResponse
// @Failure 400 {object} map[string]string "Malformed file, with the offending line"
// @Router /transactions/import [post]
func (h *transactionHandler) importCSV(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)

	var body io.Reader = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportSize)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			bindError(c, logger, "upload", err)
			return
		}
		f, err := fh.Open()
		if err != nil {
			bindError(c, logger, "upload", err)
			return
		}
		defer f.Close()
		body = f
	}

	n, err := h.transactionService.ImportCSV(c.Request.Context(), body)
	if err != nil {
		respondError(c, logger, err, "Failed to import records")
		return
	}

	logger.Info("CSV imported", slog.Int("rows", n))
	c.JSON(http.StatusCreated, dto.ImportResponse{Imported: n})
}
