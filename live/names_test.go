package live

import (
	"strings"
	"testing"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"そのまま", "Luna", "Luna"},
		{"前後の空白を除去", "  Luna  ", "Luna"},
		{"連続空白を畳む", "Luna   Loop", "Luna Loop"},
		{"空白だけは空", "   ", ""},
		{"空は空", "", ""},
		{"上限で切り詰め", strings.Repeat("a", 30), strings.Repeat("a", MaxNameRunes)},
		{"ルーン単位で切り詰め", strings.Repeat("あ", 30), strings.Repeat("あ", MaxNameRunes)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeName(tt.input); got != tt.expected {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeMessage(t *testing.T) {
	long := strings.Repeat("x", MaxMessageRunes+50)

	if got := NormalizeMessage("  hello  "); got != "hello" {
		t.Errorf("前後の空白を除去: %q", got)
	}
	if got := NormalizeMessage("a  b"); got != "a  b" {
		t.Errorf("本文内の空白は保持: %q", got)
	}
	if got := NormalizeMessage(long); len([]rune(got)) != MaxMessageRunes {
		t.Errorf("上限で切り詰め: %d runes", len([]rune(got)))
	}
	if got := NormalizeMessage("   "); got != "" {
		t.Errorf("空白だけは空: %q", got)
	}
}

func TestFallbackName(t *testing.T) {
	if got := FallbackName("abcdef-123"); got != "Guest-abcd" {
		t.Errorf("FallbackName = %q, want %q", got, "Guest-abcd")
	}
	if got := FallbackName("ab"); got != "Guest-ab" {
		t.Errorf("短いIDはそのまま: %q", got)
	}
}
