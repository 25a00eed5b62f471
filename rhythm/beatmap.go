package rhythm

import (
	"encoding/json"
	"fmt"
	"io"

	"lunaserver/models"
)

// LoadBeatmap はJSONから譜面を読み込み、前提条件を検証します。
// ノーツは昇順・非負である必要があり、違反は読み込み時にエラーとして弾きます。
func LoadBeatmap(r io.Reader) (models.Beatmap, error) {
	var beatmap models.Beatmap
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&beatmap); err != nil {
		return models.Beatmap{}, err
	}
	if err := ValidateBeatmap(beatmap); err != nil {
		return models.Beatmap{}, err
	}
	return beatmap, nil
}

// ValidateBeatmap は譜面の不変条件を検証します。
func ValidateBeatmap(beatmap models.Beatmap) error {
	if beatmap.BPM <= 0 {
		return fmt.Errorf("譜面のBPMが不正です: %d", beatmap.BPM)
	}
	if beatmap.OffsetMs < 0 {
		return fmt.Errorf("譜面のオフセットが負です: %v", beatmap.OffsetMs)
	}
	prev := -1.0
	for i, note := range beatmap.Notes {
		if note < 0 {
			return fmt.Errorf("ノーツ%dのオフセットが負です: %v", i, note)
		}
		if note < prev {
			return fmt.Errorf("ノーツが昇順に並んでいません: index %d", i)
		}
		prev = note
	}
	return nil
}

// DefaultBeatmap は組み込みの譜面（120BPM、800msオフセット、12ノーツ）を返します。
func DefaultBeatmap() models.Beatmap {
	return models.Beatmap{
		BPM:      120,
		OffsetMs: 800,
		Notes: []float64{
			800, 1200, 1600, 2000, 2400, 2800,
			3200, 3600, 4000, 4400, 4800, 5200,
		},
	}
}
