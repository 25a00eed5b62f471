package rhythm

import (
	"lunaserver/models"
)

// ScoreFromGrade は等級ごとの固定配点です。perfect→2、good→1、miss→0。
func ScoreFromGrade(grade models.HitGrade) int {
	switch grade {
	case models.GradePerfect:
		return 2
	case models.GradeGood:
		return 1
	default:
		return 0
	}
}

// Summarize はHitResult列だけから集計値を再計算します。隠れた状態は持ちません。
func Summarize(results []models.HitResult) models.ScoreSummary {
	summary := models.ScoreSummary{
		MaxScore: len(results) * 2,
	}

	for _, result := range results {
		switch result.Grade {
		case models.GradePerfect:
			summary.Perfect++
		case models.GradeGood:
			summary.Good++
		default:
			summary.Miss++
		}
		summary.Score += ScoreFromGrade(result.Grade)
	}

	// MaxScoreが0のときAccuracyは0（ゼロ除算回避）
	if summary.MaxScore > 0 {
		summary.Accuracy = float64(summary.Score) / float64(summary.MaxScore)
	}
	return summary
}
