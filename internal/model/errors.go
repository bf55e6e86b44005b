package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, user, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeEmailConflict = "EMAIL_CONFLICT"
	ErrCodeUserNotFound  = "USER_NOT_FOUND"
)

// NewValidationError は入力バリデーションエラーを生成する。
func NewValidationError(detail string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  fmt.Sprintf("入力内容に誤りがあります: %s", detail),
		Category: "validation",
		Action:   "リクエスト内容を確認して再度お試しください。",
	}
}

// NewUnauthorizedError は認証エラーを生成する。
// トークン不正・期限切れ・資格情報不一致のいずれであっても同一のエラーを返し、
// 失敗理由をクライアントに漏らさない。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証に失敗しました。",
		Category: "auth",
		Action:   "有効な認証情報でログインし直してください。",
	}
}

// NewEmailConflictError はメールアドレス重複エラーを生成する。
func NewEmailConflictError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailConflict,
		Message:  "このメールアドレスは既に登録されています。",
		Category: "user",
		Action:   "別のメールアドレスを指定してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError(userID int64) *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  fmt.Sprintf("指定されたユーザーが見つかりません: %d", userID),
		Category: "user",
		Action:   "ユーザーIDを確認してください。",
	}
}
