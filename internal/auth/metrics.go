package auth

import "github.com/hitoshi/taskman/internal/model"

// サインイン結果のラベル値。
const (
	SignInSuccess            = "success"
	SignInUserNotFound       = "user_not_found"
	SignInInvalidCredentials = "invalid_credentials"
)

// MetricsRecorder は認証イベントを記録するインターフェース。
// metrics.Collectorが実装する。
type MetricsRecorder interface {
	RecordSignIn(outcome string)
	RecordTokenIssued(tokenType model.TokenType)
	RecordTokenRejection(reason string)
}

type noopRecorder struct{}

func (noopRecorder) RecordSignIn(string) {}
func (noopRecorder) RecordTokenIssued(model.TokenType) {}
func (noopRecorder) RecordTokenRejection(string) {}
