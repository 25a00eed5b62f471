package screens

import (
	"net/http"

	"lunaserver/live"
	"lunaserver/middlewares"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GuestAuthRequest はゲスト登録リクエストのボディを表す構造体です。
type GuestAuthRequest struct {
	DisplayName string `json:"displayName"` // ゲストの表示名
}

// GuestAuthHandler はゲストユーザーを登録し、JWTトークンを発行するハンドラです。
func GuestAuthHandler(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	var request GuestAuthRequest
	// ボディ無しも許容する（その場合は既定の表示名）
	c.ShouldBindJSON(&request)

	displayName := live.NormalizeName(request.DisplayName)
	if displayName == "" {
		displayName = "Guest"
	}

	token, userID, err := middlewares.GenerateToken(db, displayName, logger)
	if err != nil {
		logger.Error("Failed to generate guest token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "トークンの発行に失敗しました"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token":       token,
		"userId":      userID,
		"displayName": displayName,
	})
}
