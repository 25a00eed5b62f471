package screens

import (
	"net/http"
	"strconv"

	"lunaserver/middlewares"
	"lunaserver/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ランキングの件数制限
const (
	defaultTopScores = 10
	maxTopScores     = 50
)

// PostScoreHandler はリズムゲームの結果を記録するハンドラです。
// トークンは任意です。提示された場合のみゲストユーザーに紐付けます。
func PostScoreHandler(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	var userID uint
	if c.GetHeader("Authorization") != "" {
		var err error
		userID, err = middlewares.GetUserIDFromToken(c, logger)
		if err != nil {
			// 提示されたトークンが無効な場合は拒否する
			c.JSON(http.StatusUnauthorized, gin.H{"error": "認証に失敗しました"})
			return
		}
	}

	var summary models.ScoreSummary
	if err := c.ShouldBindJSON(&summary); err != nil {
		logger.Error("Request binding error", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request binding error"})
		return
	}
	if !validScoreSummary(summary) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "スコアが不正です"})
		return
	}

	record := models.ScoreRecord{
		GuestUserID: userID,
		Perfect:     summary.Perfect,
		Good:        summary.Good,
		Miss:        summary.Miss,
		Score:       summary.Score,
		MaxScore:    summary.MaxScore,
		Accuracy:    summary.Accuracy,
	}
	if err := db.Create(&record).Error; err != nil {
		logger.Error("スコアの保存に失敗しました", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "スコアの保存に失敗しました"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "スコアを記録しました",
		"scoreId": record.ID,
	})
}

// validScoreSummary はスコア集計の整合性を確認します。
func validScoreSummary(summary models.ScoreSummary) bool {
	if summary.Perfect < 0 || summary.Good < 0 || summary.Miss < 0 {
		return false
	}
	if summary.Score < 0 || summary.MaxScore < 0 || summary.Score > summary.MaxScore {
		return false
	}
	if summary.Accuracy < 0 || summary.Accuracy > 1 {
		return false
	}
	return true
}

// topScoreEntry はランキング1件分の応答です。
type topScoreEntry struct {
	DisplayName string  `json:"displayName"`
	Score       int     `json:"score"`
	MaxScore    int     `json:"maxScore"`
	Accuracy    float64 `json:"accuracy"`
}

// TopScoresHandler はスコアランキングを返すハンドラです。
func TopScoresHandler(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	limit := defaultTopScores
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limitが不正です"})
			return
		}
		limit = parsed
		if limit > maxTopScores {
			limit = maxTopScores
		}
	}

	entries := []topScoreEntry{}
	err := db.Model(&models.ScoreRecord{}).
		Select("COALESCE(guest_users.display_name, 'Guest') AS display_name, score_records.score, score_records.max_score, score_records.accuracy").
		Joins("LEFT JOIN guest_users ON guest_users.id = score_records.guest_user_id").
		Order("score_records.score DESC, score_records.accuracy DESC, score_records.created_at ASC").
		Limit(limit).
		Scan(&entries).Error
	if err != nil {
		logger.Error("ランキングの取得に失敗しました", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ランキングの取得に失敗しました"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"scores": entries})
}
