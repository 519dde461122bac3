// Package security はユーザー入力テキストのサニタイズ機能を提供する。
//
// TextSanitizer はタイトルや説明文からHTMLを除去し、
// 保存するテキストにマークアップが残らないようにする。
// bluemondayのStrictPolicyを使用し、すべてのタグを除去する。
package security

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer はプレーンテキスト化のインターフェースを定義する。
// サービス層で保存前の入力に対して使用される。
type TextSanitizer interface {
	// SanitizeText はHTMLタグを除去したプレーンテキストを返す。
	// script, styleタグは中身ごと除去される。
	// エンティティはデコードして返すため、"&"などの記号はそのまま保存される。
	SanitizeText(raw string) string

	// NormalizeTitle はSanitizeTextの結果を前後空白除去・小文字化する。
	NormalizeTitle(raw string) string
}

// textSanitizer はTextSanitizerの実装。
// bluemonday.Policyは生成後はスレッドセーフに使用できる。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerの新しいインスタンスを生成する。
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// SanitizeText はHTMLタグを除去したプレーンテキストを返す。
func (s *textSanitizer) SanitizeText(raw string) string {
	if raw == "" {
		return ""
	}
	return html.UnescapeString(s.policy.Sanitize(raw))
}

// NormalizeTitle はタイトル用にテキストを正規化する。
func (s *textSanitizer) NormalizeTitle(raw string) string {
	return strings.ToLower(strings.TrimSpace(s.SanitizeText(raw)))
}

// LengthBetween は文字数（rune数）がmin以上max以下かを返す。
func LengthBetween(s string, min, max int) bool {
	n := utf8.RuneCountInString(s)
	return n >= min && n <= max
}
