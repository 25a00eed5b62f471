package auth

import (
	"testing"
	"time"

	"lunaserver/models"

	jwt "github.com/dgrijalva/jwt-go"
)

func signToken(t *testing.T, claims *models.MyClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(JwtKey)
	if err != nil {
		t.Fatalf("トークンの署名に失敗: %v", err)
	}
	return signed
}

func TestIsValidToken(t *testing.T) {
	valid := signToken(t, &models.MyClaims{
		UserID:      42,
		DisplayName: "Luna",
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
		},
	})

	ok, err := IsValidToken(valid)
	if err != nil || !ok {
		t.Errorf("有効なトークンのはず: ok=%v err=%v", ok, err)
	}

	if ok, _ := IsValidToken("not-a-token"); ok {
		t.Error("壊れたトークンは無効")
	}
}

func TestIsValidTokenExpired(t *testing.T) {
	expired := signToken(t, &models.MyClaims{
		UserID: 42,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(-time.Hour).Unix(),
		},
	})

	if ok, _ := IsValidToken(expired); ok {
		t.Error("期限切れトークンは無効")
	}
}

func TestParseClaims(t *testing.T) {
	signed := signToken(t, &models.MyClaims{
		UserID:      7,
		DisplayName: "Guest",
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
		},
	})

	claims, err := ParseClaims(signed)
	if err != nil {
		t.Fatalf("解析に失敗: %v", err)
	}
	if claims.UserID != 7 || claims.DisplayName != "Guest" {
		t.Errorf("クレームが不正: %+v", claims)
	}

	if _, err := ParseClaims("garbage"); err == nil {
		t.Error("壊れたトークンはエラー")
	}
}
