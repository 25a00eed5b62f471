package rhythm

import (
	"math"

	"lunaserver/models"
)

// 判定ウィンドウの既定値（ms）。PerfectMs < GoodMs を前提とします。
const (
	DefaultPerfectWindowMs = 50
	DefaultGoodWindowMs    = 120
)

// Windows は判定ウィンドウの設定です。
type Windows struct {
	PerfectMs float64
	GoodMs    float64
}

// DefaultWindows は既定の判定ウィンドウを返します。
func DefaultWindows() Windows {
	return Windows{PerfectMs: DefaultPerfectWindowMs, GoodMs: DefaultGoodWindowMs}
}

// Evaluate は入力時刻とノーツの目標時刻から判定結果を生成します。純粋関数で失敗しません。
func Evaluate(w Windows, inputMs, noteMs float64) models.HitResult {
	deltaMs := inputMs - noteMs
	absDelta := math.Abs(deltaMs)

	grade := models.GradeMiss
	if absDelta <= w.PerfectMs {
		grade = models.GradePerfect
	} else if absDelta <= w.GoodMs {
		grade = models.GradeGood
	}

	return models.HitResult{
		Grade:    grade,
		TimingMs: inputMs,
		NoteMs:   noteMs,
		DeltaMs:  deltaMs,
	}
}
