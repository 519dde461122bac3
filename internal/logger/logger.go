package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// level はプロセス全体で共有するログレベル。
// 設定読み込み前にロガーを作るため、後からSetLevelで変更できるようにする。
var level = new(slog.LevelVar)

// redactedKeys は値をマスクする属性キー。
var redactedKeys = map[string]struct{}{
	"password":        {},
	"hashed_password": {},
	"access_token":    {},
	"refresh_token":   {},
	"token":           {},
	"authorization":   {},
}

// Setup はJSON構造化ログ出力のslog.Loggerを生成して返す。
// writerが指定された場合はそのwriterに出力する。
// パスワードやトークンを表すキーの値は常にマスクされる。
func Setup(w io.Writer) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: redact,
	})
	return slog.New(handler)
}

// SetupDefault はJSON構造化ログ出力をグローバルロガーとして設定する。
// writerが指定された場合はそのwriterに出力する。
// 本番ではos.Stdoutを渡すことを想定している。
func SetupDefault(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	logger := Setup(w)
	slog.SetDefault(logger)
}

// SetLevel はSetupで生成した全ロガーのレベルを変更する。
func SetLevel(l slog.Level) {
	level.Set(l)
}

func redact(_ []string, a slog.Attr) slog.Attr {
	if _, ok := redactedKeys[strings.ToLower(a.Key)]; ok {
		return slog.String(a.Key, "[REDACTED]")
	}
	return a
}
