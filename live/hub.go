package live

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"lunaserver/models"
)

// 送信チャネルのバッファ。溢れたクライアントへのフレームは捨てます。
const sendBuffer = 32

// Client は接続中の観客1人です。書き込みは全てsendチャネル経由で行い、
// WebSocketへの書き込みゴルーチンを1本に絞ります。
// ハブによる置き換えとハンドラーの送信が並行するため、キューのクローズは
// closedフラグと同じロックで直列化します。
type Client struct {
	Presence models.Presence
	conn     wsConn

	mu     sync.Mutex
	closed bool
	send   chan []byte
}

// wsConn はgorillaの*websocket.Connのうちハブが使う操作です。テストで差し替えます。
type wsConn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(string) error)
	Close() error
}

// NewClient は観客クライアントを生成します。
func NewClient(presence models.Presence, conn wsConn) *Client {
	return &Client{
		Presence: presence,
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
	}
}

// enqueue はフレームを送信キューに積みます。クローズ済みまたは満杯なら
// 捨ててfalseを返します。
func (c *Client) enqueue(frame []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// closeSend は送信キューを閉じます。以降のenqueueはno-opになります。冪等です。
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// Hub は観客の名簿とブロードキャストを管理します。
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	logger  *zap.Logger
}

// NewHub はハブを生成します。
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		logger:  logger,
	}
}

// Add はクライアントを名簿に登録します。同一IDの既存接続は閉じて置き換えます。
func (h *Hub) Add(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if existing, ok := h.clients[client.Presence.ID]; ok {
		existing.closeSend()
		h.logger.Info("同一IDの旧接続を置き換え", zap.String("id", client.Presence.ID))
	}
	h.clients[client.Presence.ID] = client
}

// Remove はクライアントを名簿から外します。登録されていたクライアントを返します。
// 既に別の接続に置き換わっている場合は何もしません。
func (h *Hub) Remove(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	current, ok := h.clients[client.Presence.ID]
	if !ok || current != client {
		return false
	}
	delete(h.clients, client.Presence.ID)
	client.closeSend()
	return true
}

// Rename は表示名を更新し、変更前の名前を返します。不在IDはok=falseです。
func (h *Hub) Rename(id, newName string) (previous string, updated models.Presence, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	client, found := h.clients[id]
	if !found {
		return "", models.Presence{}, false
	}
	previous = client.Presence.Name
	client.Presence.Name = newName
	return previous, client.Presence, true
}

// Roster は現在の名簿をID昇順で返します。
func (h *Hub) Roster() []models.Presence {
	h.mu.RLock()
	defer h.mu.RUnlock()
	roster := make([]models.Presence, 0, len(h.clients))
	for _, client := range h.clients {
		roster = append(roster, client.Presence)
	}
	sort.Slice(roster, func(i, j int) bool { return roster[i].ID < roster[j].ID })
	return roster
}

// Count は接続数を返します。
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast はイベントを全クライアントに配信します。
// 送信キューが溢れたクライアントの分は落とします。
func (h *Hub) Broadcast(event models.ChatEvent) {
	frame, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("イベントのエンコードに失敗", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		if !client.enqueue(frame) {
			h.logger.Warn("送信キューが満杯のためフレームを破棄",
				zap.String("id", client.Presence.ID), zap.String("type", event.Type))
		}
	}
}

// SendTo は指定クライアントだけにイベントを送ります。
func (h *Hub) SendTo(client *Client, event models.ChatEvent) {
	frame, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("イベントのエンコードに失敗", zap.Error(err))
		return
	}
	if !client.enqueue(frame) {
		h.logger.Warn("送信キューが満杯のためフレームを破棄", zap.String("id", client.Presence.ID))
	}
}

// EventTime はイベントのAtフィールドに入れる時刻表現です。
func EventTime(now time.Time) string {
	return now.UTC().Format(time.RFC3339)
}
