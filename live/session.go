package live

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// セッションの有効期限
const sessionTTL = 24 * time.Hour

// StoredSession はRedisに保存する再接続用のセッション情報です。
type StoredSession struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RestoreSession はセッションIDからクライアント情報を復元します。
// セッションIDは使い捨てで、GETDELにより取得と削除を不可分に行います。
// 同じIDで並行に再接続しても復元に成功するのは1接続だけです。
// 無効または期限切れの場合はnilを返します。
func RestoreSession(ctx context.Context, rdb *redis.Client, sessionID string, logger *zap.Logger) *StoredSession {
	if sessionID == "" {
		return nil
	}

	sessionInfoJSON, err := rdb.GetDel(ctx, "session:"+sessionID).Result()
	if err != nil {
		logger.Warn("セッション情報の取得に失敗", zap.Error(err))
		return nil
	}

	var session StoredSession
	if err := json.Unmarshal([]byte(sessionInfoJSON), &session); err != nil {
		logger.Error("セッション情報のデコードに失敗", zap.Error(err))
		return nil
	}
	if session.ID == "" {
		logger.Error("セッション情報にIDが無い")
		return nil
	}

	return &session
}

// IssueSession は新しいセッションIDを発行してRedisに保存し、
// クライアントに送り返します。
func IssueSession(ctx context.Context, rdb *redis.Client, client *Client, logger *zap.Logger) (string, error) {
	sessionID := uuid.New().String()

	sessionInfoJSON, err := json.Marshal(StoredSession{
		ID:   client.Presence.ID,
		Name: client.Presence.Name,
	})
	if err != nil {
		logger.Error("セッション情報のエンコードに失敗", zap.Error(err))
		return "", err
	}

	if err := rdb.Set(ctx, "session:"+sessionID, sessionInfoJSON, sessionTTL).Err(); err != nil {
		logger.Error("セッション情報の保存に失敗", zap.Error(err))
		return "", err
	}

	// セッションIDをクライアントに送り返す
	responseJSON, err := json.Marshal(map[string]string{"sessionID": sessionID})
	if err != nil {
		logger.Error("セッションID応答のエンコードに失敗", zap.Error(err))
		return "", err
	}
	if !client.enqueue(responseJSON) {
		logger.Warn("送信キューが満杯のためセッションIDを送れない", zap.String("id", client.Presence.ID))
	}

	logger.Info("セッションIDを発行", zap.String("sessionID", sessionID), zap.String("id", client.Presence.ID))
	return sessionID, nil
}
