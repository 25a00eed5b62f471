package state

import (
	"encoding/json"

	"lunaserver/models"
)

// Store はAppStateの保持者です。読み書きとも常にスナップショットを渡し、
// 外部からの変更が内部状態を壊さないことを保証します。
type Store struct {
	initial models.AppState
	current models.AppState
}

// NewStore は初期状態を指定してストアを生成します。
func NewStore(initial models.AppState) *Store {
	return &Store{
		initial: initial.Clone(),
		current: initial.Clone(),
	}
}

// Get は現在状態のコピーを返します。
func (s *Store) Get() models.AppState {
	return s.current.Clone()
}

// Set は部分更新を適用して更新後のコピーを返します。
func (s *Store) Set(update func(state *models.AppState)) models.AppState {
	next := s.current.Clone()
	if update != nil {
		update(&next)
	}
	s.current = next.Clone()
	return s.Get()
}

// Reset は初期状態に戻します。
func (s *Store) Reset() models.AppState {
	s.current = s.initial.Clone()
	return s.Get()
}

// RhythmFinished はリズムセッション完了時の最終スコアを受け取ります。
// rhythm.Sinkの実装です。
func (s *Store) RhythmFinished(summary models.ScoreSummary) {
	s.Set(func(state *models.AppState) {
		state.HasPlayedRhythm = true
		score := summary
		state.Score = &score
	})
}

// LoadProgress は永続化されたJSONからAppStateを復元します。
// 形が不正な場合はnilを返し、呼び出し側は前の有効な状態を維持します。
func LoadProgress(raw []byte) *models.AppState {
	if len(raw) == 0 {
		return nil
	}
	var parsed models.AppState
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil
	}
	if !parsed.Valid() {
		return nil
	}
	clone := parsed.Clone()
	return &clone
}

// SaveProgress はAppStateをJSONに直列化します。
func SaveProgress(state models.AppState) ([]byte, error) {
	return json.Marshal(state)
}
