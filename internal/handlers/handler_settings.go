package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/crypto_bookkeeper/internal/core/ports/services"
	"github.com/SscSPs/crypto_bookkeeper/internal/dto"
	"github.com/SscSPs/crypto_bookkeeper/internal/middleware"
	"github.com/gin-gonic/gin"
)

// settingsHandler manages exchange accounts, wallets, manual assets and preferences.
type settingsHandler struct {
	settingsService portssvc.SettingsSvcFacade
}

func registerSettingsRoutes(rg *gin.RouterGroup, ss portssvc.SettingsSvcFacade) {
	h := &settingsHandler{settingsService: ss}

	settings := rg.Group("/settings")
	{
		cex := settings.Group("/cex-configs")
		cex.GET("", h.listCexConfigs)
		cex.POST("", h.saveCexConfig)
		cex.PUT("/:id", h.saveCexConfig)
		cex.DELETE("/:id", h.deleteCexConfig)

		wallets := settings.Group("/wallets")
		wallets.GET("", h.listWallets)
		wallets.POST("", h.saveWallet)
		wallets.PUT("/:id", h.saveWallet)
		wallets.DELETE("/:id", h.deleteWallet)

		assets := settings.Group("/manual-assets")
		assets.GET("", h.listManualAssets)
		assets.POST("", h.saveManualAsset)
		assets.PUT("/:id", h.saveManualAsset)
		assets.DELETE("/:id", h.deleteManualAsset)

		settings.GET("/preferences", h.getPreferences)
		settings.PATCH("/preferences", h.updatePreferences)
	}
}

// listCexConfigs godoc
// @Summary List exchange accounts
// @Description Secrets are never returned; the API key is masked.
// @Tags settings
// @Produce  json
// @Success 200 {array} dto.CexConfigResponse
// @Router /settings/cex-configs [get]
func (h *settingsHandler) listCexConfigs(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	cfgs, err := h.settingsService.ListCexConfigs(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Failed to list exchange accounts")
		return
	}
	c.JSON(http.StatusOK, dto.ToCexConfigResponses(cfgs))
}

// saveCexConfig godoc
// @Summary Create or replace an exchange account
// @Tags settings
// @Accept  json
// @Produce  json
// @Param   id path string false "Account ID (PUT only)"
// @Param   config body dto.SaveCexConfigRequest true "Exchange credentials"
// @Success 200 {object} dto.CexConfigResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Account not found"
// @Router /settings/cex-configs [post]
func (h *settingsHandler) saveCexConfig(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	var req dto.SaveCexConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, "request format", err)
		return
	}
	if id := c.Param("id"); id != "" {
		req.ID = id
	}

	cfg, err := h.settingsService.SaveCexConfig(c.Request.Context(), req)
	if err != nil {
		respondError(c, logger, err, "Failed to save exchange account")
		return
	}
	logger.Info("Exchange account saved", slog.String("cex_id", cfg.ID), slog.String("platform", cfg.PlatformID))
	c.JSON(savedStatus(req.ID), dto.ToCexConfigResponse(*cfg))
}

// deleteCexConfig godoc
// @Summary Remove an exchange account
// @Tags settings
// @Param   id path string true "Account ID"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string "Account not found"
// @Router /settings/cex-configs/{id} [delete]
func (h *settingsHandler) deleteCexConfig(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	if err := h.settingsService.DeleteCexConfig(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, logger, err, "Failed to delete exchange account")
		return
	}
	c.Status(http.StatusNoContent)
}

// listWallets godoc
// @Summary List watched wallets
// @Tags settings
// @Produce  json
// @Success 200 {array} domain.Wallet
// @Router /settings/wallets [get]
func (h *settingsHandler) listWallets(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	wallets, err := h.settingsService.ListWallets(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Failed to list wallets")
		return
	}
	c.JSON(http.StatusOK, wallets)
}

// saveWallet godoc
// @Summary Create or replace a wallet
// @Tags settings
// @Accept  json
// @Produce  json
// @Param   wallet body dto.SaveWalletRequest true "Wallet"
// @Success 200 {object} domain.Wallet
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Wallet not found"
// @Router /settings/wallets [post]
func (h *settingsHandler) saveWallet(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	var req dto.SaveWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, "request format", err)
		return
	}
	if id := c.Param("id"); id != "" {
		req.ID = id
	}

	wallet, err := h.settingsService.SaveWallet(c.Request.Context(), req)
	if err != nil {
		respondError(c, logger, err, "Failed to save wallet")
		return
	}
	c.JSON(savedStatus(req.ID), wallet)
}

// deleteWallet godoc
// @Summary Remove a wallet
// @Tags settings
// @Param   id path string true "Wallet ID"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string "Wallet not found"
// @Router /settings/wallets/{id} [delete]
func (h *settingsHandler) deleteWallet(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	if err := h.settingsService.DeleteWallet(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, logger, err, "Failed to delete wallet")
		return
	}
	c.Status(http.StatusNoContent)
}

// listManualAssets godoc
// @Summary List manual holdings
// @Tags settings
// @Produce  json
// @Success 200 {array} domain.ManualAsset
// @Router /settings/manual-assets [get]
func (h *settingsHandler) listManualAssets(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	assets, err := h.settingsService.ListManualAssets(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Failed to list manual assets")
		return
	}
	c.JSON(http.StatusOK, assets)
}

// saveManualAsset godoc
// @Summary Create or replace a manual holding
// @Tags settings
// @Accept  json
// @Produce  json
// @Param   asset body dto.SaveManualAssetRequest true "Manual asset"
// @Success 200 {object} domain.ManualAsset
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Asset not found"
// @Router /settings/manual-assets [post]
func (h *settingsHandler) saveManualAsset(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	var req dto.SaveManualAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, "request format", err)
		return
	}
	if id := c.Param("id"); id != "" {
		req.ID = id
	}

	asset, err := h.settingsService.SaveManualAsset(c.Request.Context(), req)
	if err != nil {
		respondError(c, logger, err, "Failed to save manual asset")
		return
	}
	c.JSON(savedStatus(req.ID), asset)
}

// deleteManualAsset godoc
// @Summary Remove a manual holding
// @Tags settings
// @Param   id path string true "Asset ID"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string "Asset not found"
// @Router /settings/manual-assets/{id} [delete]
func (h *settingsHandler) deleteManualAsset(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	if err := h.settingsService.DeleteManualAsset(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, logger, err, "Failed to delete manual asset")
		return
	}
	c.Status(http.StatusNoContent)
}

// getPreferences godoc
// @Summary Display and watch-list preferences
// @Tags settings
// @Produce  json
// @Success 200 {object} dto.PreferencesResponse
// @Router /settings/preferences [get]
func (h *settingsHandler) getPreferences(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	prefs, err := h.settingsService.GetPreferences(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Failed to load preferences")
		return
	}
	c.JSON(http.StatusOK, prefs)
}

// updatePreferences godoc
// @Summary Change preferences
// @Tags settings
// @Accept  json
// @Produce  json
// @Param   prefs body dto.UpdatePreferencesRequest true "Fields to change"
// @Success 200 {object} dto.PreferencesResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Router /settings/preferences [patch]
func (h *settingsHandler) updatePreferences(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	var req dto.UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, "request format", err)
		return
	}
	prefs, err := h.settingsService.UpdatePreferences(c.Request.Context(), req)
	if err != nil {
		respondError(c, logger, err, "Failed to update preferences")
		return
	}
	c.JSON(http.StatusOK, prefs)
}

// savedStatus is 201 for a create and 200 for a replace.
func savedStatus(id string) int {
	if id == "" {
		return http.StatusCreated
	}
	return http.StatusOK
}
