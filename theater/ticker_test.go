package theater

import (
	"strings"
	"testing"
)

func TestTickerAddMessage(t *testing.T) {
	ticker := NewTicker(3, 20)

	ticker.AddMessage("hello")
	ticker.AddMessage("  spaced   out  ")
	ticker.AddMessage("   ")

	lines := ticker.Lines()
	if len(lines) != 2 {
		t.Fatalf("空白だけの行は追加しない: %v", lines)
	}
	if lines[1] != "spaced out" {
		t.Errorf("連続空白は畳む: %q", lines[1])
	}
}

func TestTickerTrimsOldLines(t *testing.T) {
	ticker := NewTicker(2, 80)

	ticker.AddMessage("one")
	ticker.AddMessage("two")
	ticker.AddMessage("three")

	lines := ticker.Lines()
	if len(lines) != 2 || lines[0] != "two" || lines[1] != "three" {
		t.Errorf("古い行から捨てる: %v", lines)
	}
}

func TestTickerTruncatesLongLines(t *testing.T) {
	ticker := NewTicker(5, 10)

	ticker.AddMessage(strings.Repeat("あ", 30))

	lines := ticker.Lines()
	if len([]rune(lines[0])) != 10 {
		t.Errorf("上限文字数で切り詰める(ルーン単位): %q", lines[0])
	}
}

func TestTickerMarksTextureDirty(t *testing.T) {
	ticker := NewTicker(5, 80)
	ticker.texture.ConsumeDirty()

	ticker.AddMessage("update")
	if !ticker.texture.ConsumeDirty() {
		t.Error("行の追加でテクスチャはdirtyになる")
	}

	ticker.AddMessage("   ")
	if ticker.texture.ConsumeDirty() {
		t.Error("無視された行ではdirtyにしない")
	}
}

func TestTickerReleaseIdempotent(t *testing.T) {
	ticker := NewTicker(5, 80)

	ticker.Release()
	ticker.Release()

	if !ticker.Released() {
		t.Error("解放済みのはず")
	}
	if ticker.texture.ReleaseCount() != 1 || ticker.material.ReleaseCount() != 1 || ticker.geometry.ReleaseCount() != 1 {
		t.Errorf("各リソースの解放はちょうど1回: texture=%d material=%d geometry=%d",
			ticker.texture.ReleaseCount(), ticker.material.ReleaseCount(), ticker.geometry.ReleaseCount())
	}
}
