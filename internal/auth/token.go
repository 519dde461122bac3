package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hitoshi/taskman/internal/model"
)

// トークン検証の失敗種別。
// 署名不一致と構造不正はどちらもErrTokenInvalidにまとめる。
var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// Claims はトークンに埋め込むクレーム。
// subにユーザーID、expに有効期限、token_typeに種別を持つ。
type Claims struct {
	jwt.RegisteredClaims
	TokenType model.TokenType `json:"token_type"`
}

// TokenCodec はHS256で署名されたトークンの発行と検証を行う。
// 種別の検査は行わず、呼び出し側で期待する種別を確認する。
type TokenCodec struct {
	secret []byte
	now    func() time.Time
}

// NewTokenCodec はTokenCodecを生成する。
func NewTokenCodec(secret []byte) *TokenCodec {
	return &TokenCodec{secret: secret, now: time.Now}
}

// Issue はsubjectと種別を持ち、now+ttlで失効するトークンを発行する。
func (c *TokenCodec) Issue(subject string, tokenType model.TokenType, ttl time.Duration) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(c.now().Add(ttl)),
		},
		TokenType: tokenType,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify は署名と有効期限を検証し、クレームを返す。
// 期限切れはErrTokenExpired、それ以外の失敗はErrTokenInvalidを返す。
// 現在時刻が失効時刻と等しい時点で既に期限切れとして扱う。
func (c *TokenCodec) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		// v5は署名検証の後にクレームを検証するため、期限切れの判定時点で署名は正しい
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
