package screens

import (
	"net/http"
	"os"

	"lunaserver/rhythm"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 譜面ファイルのパス。無ければ内蔵の既定譜面を配信します。
const beatmapFile = "beatmap.json"

// BeatmapHandler は楽曲の譜面を返すハンドラです。
func BeatmapHandler(c *gin.Context, logger *zap.Logger) {
	file, err := os.Open(beatmapFile)
	if err != nil {
		c.JSON(http.StatusOK, rhythm.DefaultBeatmap())
		return
	}
	defer file.Close()

	beatmap, err := rhythm.LoadBeatmap(file)
	if err != nil {
		logger.Error("譜面ファイルの読み込みに失敗しました", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "譜面の読み込みに失敗しました"})
		return
	}

	c.JSON(http.StatusOK, beatmap)
}
