package models

// チャットのワイヤープロトコル定義。サーバーとクライアントの両方が使用します。

// イベント種別
const (
	ChatEventWelcome  = "welcome"
	ChatEventPresence = "presence"
	ChatEventChat     = "chat"
)

// presenceイベントのアクション
const (
	PresenceJoin   = "join"
	PresenceLeave  = "leave"
	PresenceRename = "rename"
)

// クライアント送信メッセージの種別
const (
	ClientMessageChat = "chat"
	ClientMessageName = "name"
)

// Presence はチャット参加者の識別情報。IDは接続中は不変です。
type Presence struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// ChatEvent はサーバーからクライアントへ届くイベントフレームです。
// renameの場合、Bodyには変更前の表示名が入ります（表示専用、照合には使わない）。
type ChatEvent struct {
	Type   string     `json:"type,omitempty"`
	Action string     `json:"action,omitempty"`
	From   *Presence  `json:"from,omitempty"`
	Body   string     `json:"body,omitempty"`
	Users  []Presence `json:"users,omitempty"`
	At     string     `json:"at,omitempty"`
}

// ClientMessage はクライアントからサーバーへの送信フレームです。
type ClientMessage struct {
	Type string `json:"type,omitempty"`
	Body string `json:"body,omitempty"`
}
