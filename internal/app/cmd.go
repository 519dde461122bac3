package app

import (
	"fmt"
	"strings"
)

// Command はtaskmanの起動モード。
type Command string

const (
	CommandServe   Command = "serve"
	CommandMigrate Command = "migrate"
	// CommandHealthcheck はdistrolessコンテナのHEALTHCHECKから起動される。
	CommandHealthcheck Command = "healthcheck"
)

var knownCommands = []Command{CommandServe, CommandMigrate, CommandHealthcheck}

// ParseCommand はos.Args[1:]の先頭からサブコマンドを決める。
// 引数なしはserve扱い。未知のサブコマンドは誤ってサーバーを起動しないようエラーにする。
func ParseCommand(args []string) (Command, error) {
	if len(args) == 0 || args[0] == "" {
		return CommandServe, nil
	}

	for _, c := range knownCommands {
		if args[0] == string(c) {
			return c, nil
		}
	}

	names := make([]string, len(knownCommands))
	for i, c := range knownCommands {
		names[i] = string(c)
	}
	return "", fmt.Errorf("unknown command %q (available: %s)", args[0], strings.Join(names, ", "))
}

// NeedsConfig は環境変数の設定一式を読み込む必要があるかを返す。
// healthcheckはSERVER_PORTだけで動く。
func (c Command) NeedsConfig() bool {
	return c != CommandHealthcheck
}
