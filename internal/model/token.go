package model

// TokenType はトークンの種別を表す。
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// TokenPair はサインイン成功時に発行されるトークンの組。
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
