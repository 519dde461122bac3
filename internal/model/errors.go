// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, resource, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeTokenExpired           = "TOKEN_EXPIRED"
	ErrCodeInvalidToken           = "INVALID_TOKEN"
	ErrCodeWrongTokenType         = "WRONG_TOKEN_TYPE"
	ErrCodeMissingRefreshToken    = "MISSING_REFRESH_TOKEN"
	ErrCodeMissingSubject         = "MISSING_SUBJECT"
	ErrCodeMissingBearerToken     = "MISSING_BEARER_TOKEN"
	ErrCodeUserNotFound           = "USER_NOT_FOUND"
	ErrCodeInvalidCredentials     = "INVALID_CREDENTIALS"
	ErrCodeInsufficientPrivileges = "INSUFFICIENT_PRIVILEGES"
	ErrCodeSelfDeleteForbidden    = "SELF_DELETE_FORBIDDEN"
	ErrCodeDuplicateEmail         = "DUPLICATE_EMAIL"
	ErrCodeDuplicateTitle         = "DUPLICATE_TITLE"
	ErrCodeCategoryNotFound       = "CATEGORY_NOT_FOUND"
	ErrCodeStatusNotFound         = "STATUS_NOT_FOUND"
	ErrCodeItemNotFound           = "ITEM_NOT_FOUND"
	ErrCodeInvalidRequest         = "INVALID_REQUEST"
	ErrCodeRateLimited            = "RATE_LIMITED"
	ErrCodeInternal               = "INTERNAL_ERROR"
)

// NewTokenExpiredError はトークン期限切れエラーを生成する。
func NewTokenExpiredError() *APIError {
	return &APIError{
		Code:     ErrCodeTokenExpired,
		Message:  "トークンの有効期限が切れています。",
		Category: "auth",
		Action:   "トークンを更新するか、再度サインインしてください。",
	}
}

// NewInvalidTokenError は不正なトークンのエラーを生成する。
// 署名不一致と構造不正は区別しない。
func NewInvalidTokenError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidToken,
		Message:  "トークンが無効です。",
		Category: "auth",
		Action:   "再度サインインしてください。",
	}
}

// NewWrongTokenTypeError はトークン種別が期待と異なる場合のエラーを生成する。
func NewWrongTokenTypeError(expected TokenType) *APIError {
	return &APIError{
		Code:     ErrCodeWrongTokenType,
		Message:  fmt.Sprintf("トークン種別が不正です。%s トークンが必要です。", expected),
		Category: "auth",
		Action:   "正しい種別のトークンを使用してください。",
	}
}

// NewMissingRefreshTokenError はリフレッシュCookieがない場合のエラーを生成する。
func NewMissingRefreshTokenError() *APIError {
	return &APIError{
		Code:     ErrCodeMissingRefreshToken,
		Message:  "リフレッシュトークンがありません。",
		Category: "auth",
		Action:   "再度サインインしてください。",
	}
}

// NewMissingSubjectError はトークンにsubjectが含まれない場合のエラーを生成する。
func NewMissingSubjectError() *APIError {
	return &APIError{
		Code:     ErrCodeMissingSubject,
		Message:  "トークンにユーザー情報が含まれていません。",
		Category: "auth",
		Action:   "再度サインインしてください。",
	}
}

// NewMissingBearerTokenError はAuthorizationヘッダーがない、または形式不正の場合のエラーを生成する。
func NewMissingBearerTokenError() *APIError {
	return &APIError{
		Code:     ErrCodeMissingBearerToken,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "Authorization: Bearer ヘッダーにアクセストークンを指定してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "メールアドレスまたはユーザーIDを確認してください。",
	}
}

// NewInvalidCredentialsError はパスワード不一致のエラーを生成する。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "パスワードが正しくありません。",
		Category: "auth",
		Action:   "パスワードを確認して再度お試しください。",
	}
}

// NewInsufficientPrivilegesError は権限不足のエラーを生成する。
func NewInsufficientPrivilegesError() *APIError {
	return &APIError{
		Code:     ErrCodeInsufficientPrivileges,
		Message:  "この操作を行う権限がありません。",
		Category: "auth",
		Action:   "管理者に問い合わせてください。",
	}
}

// NewSelfDeleteForbiddenError は管理者が自分自身を削除しようとした場合のエラーを生成する。
func NewSelfDeleteForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeSelfDeleteForbidden,
		Message:  "自分自身のアカウントは削除できません。",
		Category: "auth",
		Action:   "別の管理者に削除を依頼してください。",
	}
}

// NewDuplicateEmailError はメールアドレス重複のエラーを生成する。
func NewDuplicateEmailError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateEmail,
		Message:  "このメールアドレスは既に登録されています。",
		Category: "validation",
		Action:   "別のメールアドレスを使用してください。",
	}
}

// NewDuplicateTitleError はタイトル重複のエラーを生成する。
func NewDuplicateTitleError(title string) *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateTitle,
		Message:  fmt.Sprintf("このタイトルは既に登録されています: %s", title),
		Category: "validation",
		Action:   "別のタイトルを指定してください。",
	}
}

// NewCategoryNotFoundError はカテゴリ未検出エラーを生成する。
func NewCategoryNotFoundError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeCategoryNotFound,
		Message:  fmt.Sprintf("指定されたカテゴリが見つかりません: %s", id),
		Category: "resource",
		Action:   "カテゴリIDを確認してください。",
	}
}

// NewStatusNotFoundError はステータス未検出エラーを生成する。
func NewStatusNotFoundError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeStatusNotFound,
		Message:  fmt.Sprintf("指定されたステータスが見つかりません: %s", id),
		Category: "resource",
		Action:   "ステータスIDを確認してください。",
	}
}

// NewItemNotFoundError はアイテム未検出エラーを生成する。
func NewItemNotFoundError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeItemNotFound,
		Message:  fmt.Sprintf("指定されたアイテムが見つかりません: %s", id),
		Category: "resource",
		Action:   "アイテムIDを確認してください。",
	}
}

// NewInvalidRequestError はリクエスト内容の検証エラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("リクエストが不正です: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認してください。",
	}
}

// NewRateLimitedError はレート制限超過のエラーを生成する。
func NewRateLimitedError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimited,
		Message:  "リクエストが多すぎます。",
		Category: "system",
		Action:   "Retry-Afterヘッダーの秒数だけ待ってから再度お試しください。",
	}
}

// NewInternalError は内部エラーの汎用レスポンスを生成する。
// 詳細はログにのみ記録する。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
