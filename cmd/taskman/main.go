// Command taskman はマルチテナント対応のタスク管理APIサーバーを起動する。
//
// 使い方:
//
//	taskman [serve|migrate|healthcheck]
package main

import (
	"fmt"
	"os"

	"github.com/hitoshi/taskman/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "taskman: %v\n", err)
		os.Exit(1)
	}
}
