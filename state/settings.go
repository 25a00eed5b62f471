package state

import (
	"encoding/json"

	"lunaserver/models"
)

// DefaultSettings は設定の既定値です。
func DefaultSettings() models.Settings {
	return models.Settings{
		AutoAdvance:  false,
		SoundEnabled: true,
		TextSpeed:    models.TextSpeedNormal,
	}
}

// SettingsStore は設定の保持者。Storeと同じくコピーで受け渡します。
type SettingsStore struct {
	current models.Settings
}

// NewSettingsStore は既定値で初期化したストアを返します。
func NewSettingsStore() *SettingsStore {
	return &SettingsStore{current: DefaultSettings()}
}

// Get は現在の設定のコピーを返します。
func (s *SettingsStore) Get() models.Settings {
	return s.current
}

// Set は部分更新を適用します。
func (s *SettingsStore) Set(update func(settings *models.Settings)) models.Settings {
	next := s.current
	if update != nil {
		update(&next)
	}
	s.current = next
	return s.current
}

// Reset は既定値に戻します。
func (s *SettingsStore) Reset() models.Settings {
	s.current = DefaultSettings()
	return s.current
}

// LoadSettings は永続化されたJSONから設定を復元します。不正な形はnilです。
func LoadSettings(raw []byte) *models.Settings {
	if len(raw) == 0 {
		return nil
	}
	var parsed models.Settings
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil
	}
	if !parsed.Valid() {
		return nil
	}
	return &parsed
}

// SaveSettings は設定をJSONに直列化します。
func SaveSettings(settings models.Settings) ([]byte, error) {
	return json.Marshal(settings)
}
