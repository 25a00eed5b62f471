package models

// HitGrade は1回の入力に対するタイミング判定の等級です。
type HitGrade string

const (
	GradePerfect HitGrade = "perfect"
	GradeGood    HitGrade = "good"
	GradeMiss    HitGrade = "miss"
)

// HitResult は入力タイムスタンプとノーツの目標時刻の組に対する判定結果。生成後は不変。
type HitResult struct {
	Grade    HitGrade `json:"grade"`
	TimingMs float64  `json:"timingMs"` // 入力時刻（セッション開始からのms）
	NoteMs   float64  `json:"noteMs"`   // ノーツの目標時刻
	DeltaMs  float64  `json:"deltaMs"`  // TimingMs - NoteMs
}

// ScoreSummary はHitResult列から再計算される集計値です。
type ScoreSummary struct {
	Perfect  int     `json:"perfect"`
	Good     int     `json:"good"`
	Miss     int     `json:"miss"`
	Score    int     `json:"score"`
	MaxScore int     `json:"maxScore"`
	Accuracy float64 `json:"accuracy"` // MaxScoreが0のとき0
}

// Beatmap は譜面データ。Notesはセッション開始からのmsオフセットで昇順。
type Beatmap struct {
	BPM      int       `json:"bpm"`
	OffsetMs float64   `json:"offsetMs"` // 最初のノーツまでの無音時間
	Notes    []float64 `json:"notes"`
}
