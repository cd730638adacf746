// Package api はフィーチャー間で共有するHTTPレスポンスの形を定義します。
package api

// ErrorResponse はエラー時の共通レスポンスです。
type ErrorResponse struct {
	Detail     string              `json:"detail"`
	StatusCode int                 `json:"status_code"`
	Errors     map[string][]string `json:"errors,omitempty"`
	Traceback  string              `json:"traceback,omitempty"`
}

// SuccessResponse は処理結果のみを返すエンドポイント用です。
type SuccessResponse struct {
	Success bool `json:"success"`
}

// StatusResponse はヘルスチェック用です。
type StatusResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Page はオフセットページネーションの共通エンベロープです。
type Page[T any] struct {
	Items      []T   `json:"items"`
	TotalItems int64 `json:"total_items"`
	Offset     int   `json:"offset"`
	Limit      int   `json:"limit"`
}
