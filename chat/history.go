package chat

import "strings"

// AppendHistory は履歴に1行追加し、上限を超えた分は古い側から捨てます。
// 空白だけの行と0以下の上限では元の履歴をそのまま返します。
func AppendHistory(history []string, line string, maxLines int) []string {
	if strings.TrimSpace(line) == "" || maxLines <= 0 {
		return history
	}

	next := make([]string, 0, len(history)+1)
	next = append(next, history...)
	next = append(next, line)
	if len(next) <= maxLines {
		return next
	}
	return next[len(next)-maxLines:]
}
