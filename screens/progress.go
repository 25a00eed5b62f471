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

// GetProgressHandler は保存済みのゲーム進行状態を返すハンドラです。
func GetProgressHandler(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	userID, err := middlewares.GetUserIDFromToken(c, logger)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "認証に失敗しました"})
		return
	}

	var record models.ProgressRecord
	if err := db.Where("guest_user_id = ?", userID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "保存データがありません"})
			return
		}
		logger.Error("進行状態の取得に失敗しました", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "進行状態の取得に失敗しました"})
		return
	}

	// 壊れた保存データは404として扱う（クライアントは最初からやり直す）
	appState := state.LoadProgress([]byte(record.StateJSON))
	if appState == nil {
		logger.Warn("壊れた進行状態を無視", zap.Uint("userID", userID))
		c.JSON(http.StatusNotFound, gin.H{"error": "保存データがありません"})
		return
	}

	c.JSON(http.StatusOK, appState)
}

// PutProgressHandler はゲーム進行状態を保存するハンドラです。
func PutProgressHandler(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	userID, err := middlewares.GetUserIDFromToken(c, logger)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "認証に失敗しました"})
		return
	}

	var appState models.AppState
	if err := c.ShouldBindJSON(&appState); err != nil {
		logger.Error("Request binding error", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request binding error"})
		return
	}
	if !appState.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "進行状態が不正です"})
		return
	}

	stateJSON, err := state.SaveProgress(appState)
	if err != nil {
		logger.Error("進行状態のエンコードに失敗しました", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "進行状態の保存に失敗しました"})
		return
	}

	// ユーザーごとに1レコード。既存があれば上書きする
	var record models.ProgressRecord
	err = db.Where("guest_user_id = ?", userID).First(&record).Error
	switch {
	case err == nil:
		record.StateJSON = string(stateJSON)
		err = db.Save(&record).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		record = models.ProgressRecord{GuestUserID: userID, StateJSON: string(stateJSON)}
		err = db.Create(&record).Error
	}
	if err != nil {
		logger.Error("進行状態の保存に失敗しました", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "進行状態の保存に失敗しました"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "保存しました"})
}

// DeleteProgressHandler は保存済みの進行状態を削除するハンドラです。
func DeleteProgressHandler(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	userID, err := middlewares.GetUserIDFromToken(c, logger)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "認証に失敗しました"})
		return
	}

	if err := db.Where("guest_user_id = ?", userID).Delete(&models.ProgressRecord{}).Error; err != nil {
		logger.Error("進行状態の削除に失敗しました", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "進行状態の削除に失敗しました"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "削除しました"})
}
