package handler

import (
	"log/slog"
	"net/http"

	"github.com/hitoshi/taskman/internal/database"
)

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// NewHealthHandler はDB接続を確認するヘルスチェックハンドラーを返す。
// GET /health
func NewHealthHandler(db database.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := database.Ping(r.Context(), db); err != nil {
			slog.Warn("health check failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Database: "down"})
			return
		}
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Database: "up"})
	}
}
