package auth

import (
	"os"

	"lunaserver/models"

	jwt "github.com/dgrijalva/jwt-go"
)

// JwtKey はトークン署名鍵です。本番環境では必ずJWT_SECRETで上書きします。
var JwtKey = loadJwtKey()

func loadJwtKey() []byte {
	if key := os.Getenv("JWT_SECRET"); key != "" {
		return []byte(key)
	}
	return []byte("luna-dev-secret") // 開発用の既定値
}

func IsValidToken(tokenString string) (bool, error) {
	claims := &models.MyClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return JwtKey, nil
	})

	if err != nil {
		return false, err
	}

	return token.Valid, nil
}

// ParseClaims はトークンを検証してクレームを返します。
func ParseClaims(tokenString string) (*models.MyClaims, error) {
	claims := &models.MyClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return JwtKey, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.NewValidationError("token is not valid", jwt.ValidationErrorClaimsInvalid)
	}

	return claims, nil
}
