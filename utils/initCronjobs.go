package utils

import (
	"time"

	"lunaserver/models"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 保持期間
const (
	scoreRetention = 90 * 24 * time.Hour
	guestRetention = 30 * 24 * time.Hour
)

func CronCleaner(db *gorm.DB, logger *zap.Logger) {
	c := cron.New()

	// 古いスコアを削除するジョブ（毎日実行）
	c.AddFunc("@daily", func() {
		logger.Info("古いスコアを削除する処理を開始")
		result := db.Where("created_at <= ?", time.Now().Add(-scoreRetention)).
			Delete(&models.ScoreRecord{})
		if result.Error != nil {
			logger.Error("古いスコアの削除に失敗しました", zap.Error(result.Error))
		} else {
			logger.Info("古いスコアの削除完了", zap.Int("scores_deleted", int(result.RowsAffected)))
		}
	})

	// 何も残していない古いゲストを削除するジョブ（"分 時 日 月 曜日"）
	c.AddFunc("0 3 * * *", func() {
		logger.Info("放置されたゲストを削除する処理を開始")

		// スコアも進行データも設定も持たない古いゲストのIDを取得
		staleGuestIDs := []uint{}
		db.Model(&models.GuestUser{}).
			Where("updated_at <= ?", time.Now().Add(-guestRetention)).
			Where("id NOT IN (?)", db.Model(&models.ScoreRecord{}).Select("guest_user_id")).
			Where("id NOT IN (?)", db.Model(&models.ProgressRecord{}).Select("guest_user_id")).
			Where("id NOT IN (?)", db.Model(&models.SettingsRecord{}).Select("guest_user_id")).
			Pluck("id", &staleGuestIDs)

		if len(staleGuestIDs) == 0 {
			return
		}
		result := db.Where("id IN ?", staleGuestIDs).Delete(&models.GuestUser{})
		if result.Error != nil {
			logger.Error("ゲストの削除に失敗しました", zap.Error(result.Error))
		} else {
			logger.Info("ゲストの削除完了", zap.Int("guests_deleted", int(result.RowsAffected)))
		}
	})

	c.Start()
}
