package rhythm

import (
	"fmt"
	"math"
)

// CountdownLabel はオフセット中（経過時間が負）のカウントダウン表示文字列を返します。
// 開始後は空文字列です。
func CountdownLabel(currentMs float64) string {
	if currentMs >= 0 {
		return ""
	}
	seconds := int(math.Ceil(math.Abs(currentMs) / 1000))
	return fmt.Sprintf("Starts in %d", seconds)
}
