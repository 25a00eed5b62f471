package chat

import (
	"net/url"
	"strings"

	"lunaserver/models"
)

// 名前変更コマンドのプレフィックス
const nameCommandPrefix = "/name "

// ParseInput は入力欄の生テキスト1行をメッセージに解釈します。
// 空行はnil、「/name 新しい名前」はrenameコマンド、それ以外はチャット本文です。
func ParseInput(input string) *models.ClientMessage {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil
	}

	if strings.HasPrefix(trimmed, nameCommandPrefix) {
		name := strings.TrimSpace(strings.TrimPrefix(trimmed, nameCommandPrefix))
		if name == "" {
			return nil
		}
		return &models.ClientMessage{Type: models.ClientMessageName, Body: name}
	}

	return &models.ClientMessage{Type: models.ClientMessageChat, Body: trimmed}
}

// BuildWebSocketURL はホストページのURLから接続先を導出します。
// スキームはページに追従（https→wss）、ホストは同一、パスは固定で/ws。
// nameは明示指定を優先し、無ければ保存済みの名前を使います。
func BuildWebSocketURL(location *url.URL, name, storedName string) string {
	scheme := "ws"
	if location.Scheme == "https" {
		scheme = "wss"
	}

	wsURL := url.URL{Scheme: scheme, Host: location.Host, Path: "/ws"}

	resolved := name
	if resolved == "" {
		resolved = storedName
	}
	if resolved != "" {
		query := wsURL.Query()
		query.Set("name", resolved)
		wsURL.RawQuery = query.Encode()
	}

	return wsURL.String()
}
