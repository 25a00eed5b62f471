package live

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"lunaserver/models"
)

// Ping/Pongと書き込みのタイミング設定
const (
	pingPeriod = 10 * time.Second // 10秒ごとにPingを送信
	pongWait   = 60 * time.Second // 60秒の読み取りデッドライン
	writeWait  = 10 * time.Second
)

// HandleConnections はWebSocket接続へのアップグレードとチャット参加を行います。
// SessionIDヘッダーがあればRedisから本人情報を復元し、新しいセッションIDを発行して
// 送り返します。ヘッダーのセッションIDが無効な場合は接続を拒否します。
func HandleConnections(ctx context.Context, w http.ResponseWriter, r *http.Request, rdb *redis.Client, hub *Hub, logger *zap.Logger, upgrader websocket.Upgrader) {
	// セッションIDの検証と復元
	var restored *StoredSession
	if sessionID := r.Header.Get("SessionID"); sessionID != "" {
		restored = RestoreSession(ctx, rdb, sessionID, logger)
		if restored == nil {
			// セッションIDが無効または期限切れの場合
			http.Error(w, "Invalid or expired session ID", http.StatusUnauthorized)
			return
		}
	}

	// WebSocket接続へのアップグレードと確立
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// WebSocket接続のアップグレードに失敗
		logger.Error("Error upgrading WebSocket", zap.Error(err))
		return
	}

	// 本人情報の決定。クエリの名前指定が保存済みの名前より優先されます。
	id := uuid.New().String()
	name := NormalizeName(r.URL.Query().Get("name"))
	if restored != nil {
		id = restored.ID
		if name == "" {
			name = NormalizeName(restored.Name)
		}
	}
	if name == "" {
		name = FallbackName(id)
	}

	client := NewClient(models.Presence{ID: id, Name: name}, conn)
	hub.Add(client)
	logger.Info("New client added", zap.String("id", id), zap.String("name", name))

	// 書き込みゴルーチンを起動
	go writePump(client, logger)

	// 新しいセッションIDの発行と保存
	if _, err := IssueSession(ctx, rdb, client, logger); err != nil {
		logger.Error("Failed to generate or store session ID", zap.Error(err))
	}

	now := time.Now()
	// welcomeは本人だけに送り、joinは全員に配信する
	hub.SendTo(client, models.ChatEvent{
		Type:  models.ChatEventWelcome,
		From:  &client.Presence,
		Users: hub.Roster(),
		At:    EventTime(now),
	})
	from := client.Presence
	hub.Broadcast(models.ChatEvent{
		Type:   models.ChatEventPresence,
		Action: models.PresenceJoin,
		From:   &from,
		At:     EventTime(now),
	})

	// クライアントごとにメッセージ読み取りゴルーチンを起動
	go readPump(client, hub, logger)
}

// readPump はクライアントからのフレームを読み続けます。終了時に名簿から外し、
// 退場を全員に通知します。
func readPump(client *Client, hub *Hub, logger *zap.Logger) {
	defer func() {
		client.conn.Close()
		if hub.Remove(client) {
			from := client.Presence
			hub.Broadcast(models.ChatEvent{
				Type:   models.ChatEventPresence,
				Action: models.PresenceLeave,
				From:   &from,
				At:     EventTime(time.Now()),
			})
		}
		logger.Info("Client removed", zap.String("id", client.Presence.ID))
	}()

	// Pongハンドラの設定: Pongメッセージを受信したら読み取りデッドラインを更新
	client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		client.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, frame, err := client.conn.ReadMessage()
		if err != nil {
			return
		}
		handleClientFrame(client, hub, frame, logger)
	}
}

// handleClientFrame はクライアント送信フレームを1件処理します。
// 解釈できないフレームは捨てて接続は維持します。
func handleClientFrame(client *Client, hub *Hub, frame []byte, logger *zap.Logger) {
	var message models.ClientMessage
	if err := json.Unmarshal(frame, &message); err != nil {
		logger.Warn("不正なフレームを無視", zap.String("id", client.Presence.ID), zap.Error(err))
		return
	}

	switch message.Type {
	case models.ClientMessageChat:
		body := NormalizeMessage(message.Body)
		if body == "" {
			return
		}
		from := client.Presence
		hub.Broadcast(models.ChatEvent{
			Type: models.ChatEventChat,
			From: &from,
			Body: body,
			At:   EventTime(time.Now()),
		})

	case models.ClientMessageName:
		newName := NormalizeName(message.Body)
		if newName == "" || newName == client.Presence.Name {
			return
		}
		previous, updated, ok := hub.Rename(client.Presence.ID, newName)
		if !ok {
			return
		}
		// Bodyには変更前の表示名を入れる（表示専用）
		hub.Broadcast(models.ChatEvent{
			Type:   models.ChatEventPresence,
			Action: models.PresenceRename,
			From:   &updated,
			Body:   previous,
			At:     EventTime(time.Now()),
		})

	default:
		logger.Warn("未知のメッセージ種別を無視",
			zap.String("id", client.Presence.ID), zap.String("type", message.Type))
	}
}

// writePump は送信キューのフレームを書き込み、定期的にPingを送ります。
// キューが閉じられるか書き込みに失敗したら接続を閉じて終了します。
func writePump(client *Client, logger *zap.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-client.send:
			if !ok {
				return
			}
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				logger.Warn("フレームの書き込みに失敗", zap.String("id", client.Presence.ID), zap.Error(err))
				return
			}
		case <-ticker.C:
			// Pingを送信
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger.Error("Error sending ping", zap.Error(err))
				return
			}
		}
	}
}
