// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/hitoshi/taskman/internal/middleware"
	"github.com/hitoshi/taskman/internal/model"
)

// ページネーションの既定値
const (
	defaultPageLimit = 100
	maxPageLimit     = 100
	maxBodyBytes     = 1 << 20
)

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// decodeJSON はリクエストボディをdstにデコードする。
// 未知のフィールドと複数のJSON値は拒否する。
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		reason := "リクエストボディの解析に失敗しました"
		if errors.Is(err, io.EOF) {
			reason = "リクエストボディが空です"
		}
		middleware.WriteServiceError(w, model.NewInvalidRequestError(reason))
		return false
	}
	if dec.More() {
		middleware.WriteServiceError(w, model.NewInvalidRequestError("JSON値が複数含まれています"))
		return false
	}
	return true
}

// currentUser は認証ミドルウェアが解決したユーザーを返す。
// 見つからない場合は401を書き込みfalseを返す。
func currentUser(w http.ResponseWriter, r *http.Request) (*model.User, bool) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		middleware.WriteServiceError(w, model.NewMissingBearerTokenError())
		return nil, false
	}
	return user, true
}

// parsePage はoffset・limitクエリパラメータを解析する。
// limitは1..maxPageLimitに丸める。
func parsePage(w http.ResponseWriter, r *http.Request) (model.Page, bool) {
	page := model.Page{Offset: 0, Limit: defaultPageLimit}
	q := r.URL.Query()

	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			middleware.WriteServiceError(w, model.NewInvalidRequestError("offsetは0以上の整数で指定してください"))
			return page, false
		}
		page.Offset = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			middleware.WriteServiceError(w, model.NewInvalidRequestError("limitは1以上の整数で指定してください"))
			return page, false
		}
		page.Limit = min(n, maxPageLimit)
	}
	return page, true
}
