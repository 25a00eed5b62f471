package models

import (
	"gorm.io/gorm"
)

// GuestUser モデルの定義。トークン発行時に作成されるゲストユーザーです。
type GuestUser struct {
	gorm.Model
	DisplayName string `gorm:"not null"`
}

// ScoreRecord はリズムセッションの最終スコアの保存行です。
type ScoreRecord struct {
	gorm.Model
	GuestUserID uint    // 0の場合は匿名投稿
	Perfect     int     `gorm:"not null"`
	Good        int     `gorm:"not null"`
	Miss        int     `gorm:"not null"`
	Score       int     `gorm:"not null"`
	MaxScore    int     `gorm:"not null"`
	Accuracy    float64 `gorm:"not null"`
}

// ProgressRecord はゲストユーザーごとの保存された進行状態（JSONエンコード済み）です。
type ProgressRecord struct {
	gorm.Model
	GuestUserID uint   `gorm:"uniqueIndex;not null"`
	StateJSON   string `gorm:"not null"`
}

// SettingsRecord はゲストユーザーごとの設定（JSONエンコード済み）です。
type SettingsRecord struct {
	gorm.Model
	GuestUserID  uint   `gorm:"uniqueIndex;not null"`
	SettingsJSON string `gorm:"not null"`
}
