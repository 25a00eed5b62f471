package live

import "strings"

// 表示名とメッセージの制限
const (
	MaxNameRunes    = 24
	MaxMessageRunes = 280
)

// NormalizeName は表示名を整形します。前後の空白を除き、連続する空白を1つに畳み、
// 上限を超えた分は切り詰めます。整形後に空なら空文字列を返します。
func NormalizeName(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	collapsed := strings.Join(strings.Fields(trimmed), " ")
	runes := []rune(collapsed)
	if len(runes) > MaxNameRunes {
		return string(runes[:MaxNameRunes])
	}
	return collapsed
}

// NormalizeMessage はチャット本文を整形します。前後の空白を除き、上限で切り詰めます。
// 整形後に空なら空文字列を返します（送信しない）。
func NormalizeMessage(raw string) string {
	trimmed := strings.TrimSpace(raw)
	runes := []rune(trimmed)
	if len(runes) > MaxMessageRunes {
		return string(runes[:MaxMessageRunes])
	}
	return trimmed
}

// FallbackName は名前未指定の接続に付ける既定の表示名です。
func FallbackName(id string) string {
	short := id
	if len(short) > 4 {
		short = short[:4]
	}
	return "Guest-" + short
}
