package chat

import (
	"reflect"
	"testing"
)

func TestAppendHistory(t *testing.T) {
	tests := []struct {
		name     string
		history  []string
		line     string
		maxLines int
		want     []string
	}{
		{"上限内で追加", []string{"a"}, "b", 5, []string{"a", "b"}},
		{"上限超過で古い行を捨てる", []string{"a", "b", "c"}, "d", 3, []string{"b", "c", "d"}},
		{"空白だけの行は無視", []string{"a"}, "   ", 5, []string{"a"}},
		{"上限0は無視", []string{"a"}, "x", 0, []string{"a"}},
		{"負の上限も無視", []string{"a"}, "x", -1, []string{"a"}},
		{"空の履歴に追加", nil, "x", 2, []string{"x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AppendHistory(tt.history, tt.line, tt.maxLines)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("AppendHistory(%v, %q, %d) = %v, want %v",
					tt.history, tt.line, tt.maxLines, got, tt.want)
			}
		})
	}
}

func TestAppendHistoryDoesNotMutateInput(t *testing.T) {
	history := []string{"a", "b", "c"}
	AppendHistory(history, "d", 3)
	if !reflect.DeepEqual(history, []string{"a", "b", "c"}) {
		t.Errorf("input history mutated: %v", history)
	}
}
