package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/SscSPs/crypto_bookkeeper/internal/core/domain"
	portssvc "github.com/SscSPs/crypto_bookkeeper/internal/core/ports/services"
	"github.com/SscSPs/crypto_bookkeeper/internal/dto"
	"github.com/SscSPs/crypto_bookkeeper/internal/middleware"
	"github.com/gin-gonic/gin"
)

type backupHandler struct {
	backupService portssvc.BackupSvcFacade
}

func registerBackupRoutes(rg *gin.RouterGroup, bs portssvc.BackupSvcFacade) {
	h := &backupHandler{backupService: bs}

	rg.GET("/backup", h.exportBackup)
	rg.POST("/backup", h.importBackup)
}

// exportBackup godoc
// @Summary Download a backup file
// @Tags backup
// @Produce  json
// @Success 200 {object} domain.Backup
// @Failure 500 {object} map[string]string "Failed to export backup"
// @Router /backup [get]
func (h *backupHandler) exportBackup(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	backup, err := h.backupService.ExportBackup(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Failed to export backup")
		return
	}
	name := fmt.Sprintf("crypto-backup-%s.json", backup.ExportDate.Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.JSON(http.StatusOK, backup)
}

// importBackup godoc
// @Summary Restore a backup file
// @Description Replaces transactions, settings and wallets wholesale. Files without a version or data section are rejected and nothing changes.
// @Tags backup
// @Accept  json
// @Produce  json
// @Param   backup body domain.Backup true "Backup file"
// @Success 200 {object} dto.ImportBackupResponse
// @Failure 400 {object} map[string]string "Invalid backup file"
// @Router /backup [post]
func (h *backupHandler) importBackup(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	var backup domain.Backup
	if err := c.ShouldBindJSON(&backup); err != nil {
		bindError(c, logger, "backup file", err)
		return
	}

	imported, err := h.backupService.ImportBackup(c.Request.Context(), backup)
	if err != nil {
		respondError(c, logger, err, "Failed to import backup")
		return
	}
	if !imported {
		logger.Warn("Rejected backup file without version or data")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid backup file: missing version or data"})
		return
	}

	logger.Info("Backup imported", slog.String("version", backup.Version))
	c.JSON(http.StatusOK, dto.ImportBackupResponse{Imported: true})
}
