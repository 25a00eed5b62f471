package models

// テキスト表示速度の設定値
const (
	TextSpeedSlow   = "slow"
	TextSpeedNormal = "normal"
	TextSpeedFast   = "fast"
)

// Settings はプレゼンテーション層の設定。コアはTextSpeedとSoundEnabledのみ参照します。
type Settings struct {
	AutoAdvance  bool   `json:"autoAdvance"`
	SoundEnabled bool   `json:"soundEnabled"`
	TextSpeed    string `json:"textSpeed"`
}

// Valid は永続化されたJSONの形が正しいかを検証します。不正な形は読み捨てます。
func (s Settings) Valid() bool {
	switch s.TextSpeed {
	case TextSpeedSlow, TextSpeedNormal, TextSpeedFast:
		return true
	}
	return false
}

// AppState はゲーム全体の進行状態。リズムセッションは完了時にScoreを書き込みます。
type AppState struct {
	StoryNodeID     string        `json:"storyNodeId"`
	ChoiceID        string        `json:"choiceId,omitempty"`
	HasPlayedRhythm bool          `json:"hasPlayedRhythm"`
	Score           *ScoreSummary `json:"score"`
}

// Valid は永続化されたAppStateの形を検証します。
func (a AppState) Valid() bool {
	return a.StoryNodeID != ""
}

// Clone はスナップショットを返します。外部からの変更が内部状態を壊さないようにするためです。
func (a AppState) Clone() AppState {
	next := a
	if a.Score != nil {
		score := *a.Score
		next.Score = &score
	}
	return next
}
