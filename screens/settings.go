package screens

import (
	"errors"
	"net/http"

	"lunaserver/middlewares"
	"lunaserver/models"
	"lunaserver/state"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GetSettingsHandler は保存済みのユーザー設定を返すハンドラです。
// 保存が無ければ既定の設定を返します。
func GetSettingsHandler(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	userID, err := middlewares.GetUserIDFromToken(c, logger)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "認証に失敗しました"})
		return
	}

	var record models.SettingsRecord
	if err := db.Where("guest_user_id = ?", userID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, state.DefaultSettings())
			return
		}
		logger.Error("設定の取得に失敗しました", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "設定の取得に失敗しました"})
		return
	}

	// 壊れた保存データは既定の設定で応答する
	settings := state.LoadSettings([]byte(record.SettingsJSON))
	if settings == nil {
		logger.Warn("壊れた設定を無視", zap.Uint("userID", userID))
		c.JSON(http.StatusOK, state.DefaultSettings())
		return
	}

	c.JSON(http.StatusOK, settings)
}

// PutSettingsHandler はユーザー設定を保存するハンドラです。
func PutSettingsHandler(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	userID, err := middlewares.GetUserIDFromToken(c, logger)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "認証に失敗しました"})
		return
	}

	var settings models.Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		logger.Error("Request binding error", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request binding error"})
		return
	}
	if !settings.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "設定が不正です"})
		return
	}

	settingsJSON, err := state.SaveSettings(settings)
	if err != nil {
		logger.Error("設定のエンコードに失敗しました", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "設定の保存に失敗しました"})
		return
	}

	// ユーザーごとに1レコード。既存があれば上書きする
	var record models.SettingsRecord
	err = db.Where("guest_user_id = ?", userID).First(&record).Error
	switch {
	case err == nil:
		record.SettingsJSON = string(settingsJSON)
		err = db.Save(&record).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		record = models.SettingsRecord{GuestUserID: userID, SettingsJSON: string(settingsJSON)}
		err = db.Create(&record).Error
	}
	if err != nil {
		logger.Error("設定の保存に失敗しました", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "設定の保存に失敗しました"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "保存しました"})
}
