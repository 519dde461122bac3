package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/taskman/internal/model"
)

// ErrorResponseBody はAPIエラーレスポンスの統一フォーマット。
// 原因カテゴリと対処方法を含む。
type ErrorResponseBody struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// StatusForCode はエラーコードに対応するHTTPステータスコードを返す。
// 未知のコードは500として扱う。
func StatusForCode(code string) int {
	switch code {
	case model.ErrCodeTokenExpired,
		model.ErrCodeInvalidToken,
		model.ErrCodeWrongTokenType,
		model.ErrCodeMissingRefreshToken,
		model.ErrCodeMissingSubject,
		model.ErrCodeMissingBearerToken,
		model.ErrCodeInvalidCredentials:
		return http.StatusUnauthorized
	case model.ErrCodeUserNotFound,
		model.ErrCodeCategoryNotFound,
		model.ErrCodeStatusNotFound,
		model.ErrCodeItemNotFound:
		return http.StatusNotFound
	case model.ErrCodeInsufficientPrivileges,
		model.ErrCodeSelfDeleteForbidden:
		return http.StatusForbidden
	case model.ErrCodeDuplicateEmail,
		model.ErrCodeDuplicateTitle:
		return http.StatusConflict
	case model.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case model.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// WriteErrorResponse は統一エラーフォーマットでHTTPエラーレスポンスを書き込む。
// すべてのAPIエンドポイントで一貫したエラーレスポンスを提供する。
func WriteErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	if statusCode == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponseBody{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// WriteServiceError はサービス層のエラーをレスポンスに変換する。
// APIErrorはコードに応じたステータスで返し、それ以外はログに記録して500を返す。
func WriteServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		WriteErrorResponse(w, StatusForCode(apiErr.Code), apiErr)
		return
	}

	slog.Error("internal error", slog.String("error", err.Error()))
	WriteInternalServerError(w)
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteErrorResponse(w, http.StatusInternalServerError, model.NewInternalError())
}
