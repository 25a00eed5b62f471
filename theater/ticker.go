package theater

import (
	"strings"

	"lunaserver/chat"
)

// ティッカーの既定値
const (
	defaultTickerMaxLines = 5
	defaultTickerMaxChars = 80
)

// Ticker はチャットメッセージの流れる表示板です。自分の内部リソースを所有し、
// Releaseで自分の分だけを解放します。
type Ticker struct {
	geometry *TrackedResource
	material *TrackedResource
	texture  *Texture

	maxLines int
	maxChars int
	lines    []string
	released bool
}

// NewTicker はティッカーを生成します。maxLines/maxCharsが0以下なら既定値を使います。
func NewTicker(maxLines, maxChars int) *Ticker {
	if maxLines <= 0 {
		maxLines = defaultTickerMaxLines
	}
	if maxChars <= 0 {
		maxChars = defaultTickerMaxChars
	}
	return &Ticker{
		geometry: NewTrackedResource("ticker-geometry"),
		material: NewTrackedResource("ticker-material"),
		texture:  NewTexture("ticker-texture"),
		maxLines: maxLines,
		maxChars: maxChars,
	}
}

// AddMessage は1行追加します。空白だけのメッセージは無視し、
// 行数が上限を超えたら古い行から捨てます。
func (t *Ticker) AddMessage(message string) {
	normalized := normalizeTickerText(message, t.maxChars)
	if normalized == "" {
		return
	}
	t.lines = chat.AppendHistory(t.lines, normalized, t.maxLines)
	t.texture.MarkDirty()
}

// Clear は全行を消去します。
func (t *Ticker) Clear() {
	t.lines = nil
	t.texture.MarkDirty()
}

// Lines は表示中の行のコピーを返します。
func (t *Ticker) Lines() []string {
	lines := make([]string, len(t.lines))
	copy(lines, t.lines)
	return lines
}

// Release は内部リソースを解放します。2回目以降は何もしません。
func (t *Ticker) Release() {
	if t.released {
		return
	}
	t.released = true
	t.texture.Release()
	t.material.Release()
	t.geometry.Release()
}

// Released は解放済みかを返します。
func (t *Ticker) Released() bool { return t.released }

// normalizeTickerText は前後の空白を除き、連続する空白を1つに畳み、上限で切り詰めます。
func normalizeTickerText(raw string, maxChars int) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	collapsed := strings.Join(strings.Fields(trimmed), " ")
	if maxChars <= 0 {
		return collapsed
	}
	runes := []rune(collapsed)
	if len(runes) <= maxChars {
		return collapsed
	}
	return string(runes[:maxChars])
}
