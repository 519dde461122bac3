package model

// LookupKind はタイトルのみを持つ参照テーブルの種別を表す。
type LookupKind string

const (
	LookupCategory LookupKind = "category"
	LookupStatus   LookupKind = "status"
)

// Lookup はカテゴリまたはステータスを表す。
// タイトルは小文字・前後空白除去で正規化され、種別内で一意。
type Lookup struct {
	ID    string
	Kind  LookupKind
	Title string
}

// NotFoundError は種別に応じた未検出エラーを返す。
func (k LookupKind) NotFoundError(id string) *APIError {
	if k == LookupStatus {
		return NewStatusNotFoundError(id)
	}
	return NewCategoryNotFoundError(id)
}
