package middlewares

import (
	"time"

	"lunaserver/auth"
	"lunaserver/models"

	"gorm.io/gorm"

	jwt "github.com/dgrijalva/jwt-go"
	"go.uber.org/zap"
)

// ゲストトークンの有効期限
const guestTokenTTL = 72 * time.Hour

// GenerateToken はゲストユーザーを登録し、JWTトークンを発行します。
func GenerateToken(db *gorm.DB, displayName string, logger *zap.Logger) (string, uint, error) {
	userID, err := GenerateUserID(db, displayName, logger)
	if err != nil {
		logger.Error("トークン生成中にエラー発生", zap.Error(err))
		return "", 0, err
	}

	expirationTime := time.Now().Add(guestTokenTTL)

	// JWTトークン生成時に内包するデータ
	claims := &models.MyClaims{
		UserID:      userID,
		DisplayName: displayName,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: expirationTime.Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(auth.JwtKey)

	return tokenString, userID, err
}

// GORMによるオートインクリメントユーザーIDを生成する関数
func GenerateUserID(db *gorm.DB, displayName string, logger *zap.Logger) (uint, error) {
	user := models.GuestUser{
		DisplayName: displayName,
	}
	if err := db.Create(&user).Error; err != nil {
		logger.Error("ユーザーID生成中にエラー発生", zap.Error(err))
		return 0, err
	}
	return user.ID, nil
}
