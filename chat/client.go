package chat

import (
	"encoding/json"
	"sort"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"lunaserver/models"
)

// Conn はメッセージ指向の双方向接続の抽象です。gorillaの*websocket.Connが
// そのまま実装になります。到着順序どおりの配送を前提とします。
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Status は接続ライフサイクルの状態です。接続側のシグナルで遷移し、ポーリングしません。
type Status int

const (
	StatusConnecting Status = iota
	StatusOpen
	StatusClosed
)

// Subscription はイベント購読の解除ハンドルです。
type Subscription interface {
	Unsubscribe()
}

type subscription struct {
	client *Client
	id     int
}

func (s *subscription) Unsubscribe() {
	delete(s.client.subscribers, s.id)
}

// Client はチャットプロトコルのクライアントです。受信イベント列から名簿と
// 自分の識別情報を導出し、処理済みイベントをローカル購読者に再配信します。
// ホスト側の単一イベントループから呼ばれる前提で、内部ロックは持ちません。
type Client struct {
	conn   Conn
	logger *zap.Logger

	status      Status
	disposed    bool
	self        *models.Presence
	roster      map[string]models.Presence
	subscribers map[int]func(models.ChatEvent)
	nextSubID   int
}

// NewClient はクライアントを生成します。connはnil不可です。
func NewClient(conn Conn, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		conn:        conn,
		logger:      logger,
		status:      StatusConnecting,
		roster:      make(map[string]models.Presence),
		subscribers: make(map[int]func(models.ChatEvent)),
	}
}

// Status は現在の接続状態を返します。
func (c *Client) Status() Status { return c.status }

// Self は自分の識別情報のコピーを返します。welcome受信前はnilです。
func (c *Client) Self() *models.Presence {
	if c.self == nil {
		return nil
	}
	self := *c.self
	return &self
}

// Roster は名簿のスナップショットをID昇順で返します。
func (c *Client) Roster() []models.Presence {
	users := make([]models.Presence, 0, len(c.roster))
	for _, user := range c.roster {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}

// Subscribe は処理済みイベントの購読を登録します。購読者は名簿更新後の状態を観測します。
func (c *Client) Subscribe(fn func(models.ChatEvent)) Subscription {
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn
	return &subscription{client: c, id: id}
}

// Send はメッセージを直列化して送信します。破棄済みの場合は黙って捨てます。
// 送信失敗もエラーとして伝播させません。
func (c *Client) Send(message models.ClientMessage) {
	if c.disposed || c.status == StatusClosed {
		return
	}
	payload, err := json.Marshal(message)
	if err != nil {
		c.logger.Warn("チャット送信メッセージのエンコードに失敗", zap.Error(err))
		return
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		c.logger.Warn("チャットメッセージの送信に失敗", zap.Error(err))
	}
}

// Listen は接続の読み取りループです。フレームを到着順に処理し、
// 読み取りエラーで接続をClosedに遷移させて戻ります。
func (c *Client) Listen() {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.handleClose()
			return
		}
		c.HandleFrame(data)
	}
}

// HandleFrame は受信ペイロード1件を処理します。パース失敗は黙って捨て、
// 前の有効な状態を保ちます。1件の処理は次の1件の処理開始前に完結します。
func (c *Client) HandleFrame(data []byte) {
	if c.disposed {
		return
	}

	var event models.ChatEvent
	if err := json.Unmarshal(data, &event); err != nil {
		// 壊れたフレームでセッションを落とさない
		return
	}

	switch event.Type {
	case models.ChatEventWelcome:
		// 名簿はマージではなく全置換
		c.roster = make(map[string]models.Presence, len(event.Users))
		for _, user := range event.Users {
			c.roster[user.ID] = user
		}
		if event.From != nil {
			self := *event.From
			c.self = &self
		}
		c.status = StatusOpen
		c.broadcast(event)

	case models.ChatEventPresence:
		if event.From == nil {
			return
		}
		switch event.Action {
		case models.PresenceJoin, models.PresenceRename:
			// 再joinは同IDの上書き（冪等）。renameの照合もID、Bodyは表示用。
			c.roster[event.From.ID] = *event.From
		case models.PresenceLeave:
			// 不在メンバーのleaveはno-op
			delete(c.roster, event.From.ID)
		default:
			return
		}
		c.broadcast(event)

	case models.ChatEventChat:
		// 送信者と本文が揃わないチャットは破棄
		if event.From == nil || event.Body == "" {
			return
		}
		c.broadcast(event)
	}
}

// handleClose は接続側のクローズシグナルを反映します。
func (c *Client) handleClose() {
	if c.status != StatusClosed {
		c.status = StatusClosed
	}
}

// Dispose は購読を解除し接続を閉じます。複数回呼んでも安全で、
// 完了後は送信・名簿更新・再配信のいずれも起きません。
func (c *Client) Dispose() {
	if c.disposed {
		return
	}
	c.disposed = true
	c.status = StatusClosed
	c.subscribers = make(map[int]func(models.ChatEvent))
	if err := c.conn.Close(); err != nil {
		c.logger.Debug("チャット接続のクローズに失敗", zap.Error(err))
	}
}

// broadcast は名簿更新が完了した後に、処理済みイベントを購読者へ1回ずつ再配信します。
func (c *Client) broadcast(event models.ChatEvent) {
	for _, fn := range c.subscribers {
		fn(event)
	}
}
