// Package dto はoauth2エンドポイントのリクエスト・レスポンス型を定義します。
package dto

// ClientAuth はリクエストボディで渡されるクライアント認証情報です。
// HTTP Basic認証が指定された場合はそちらが優先されます。
type ClientAuth struct {
	ClientID     string `form:"client_id" json:"client_id"`
	ClientSecret string `form:"client_secret" json:"client_secret"`
}

// TokenReq は /o/token/ のリクエストです。フォームとJSONの両方を受け付けます。
type TokenReq struct {
	ClientAuth
	GrantType    string `form:"grant_type" json:"grant_type"`
	Username     string `form:"username" json:"username"`
	Password     string `form:"password" json:"password"`
	RefreshToken string `form:"refresh_token" json:"refresh_token"`
	Scope        string `form:"scope" json:"scope"`
}

// RevokeReq は /o/revoke_token/ のリクエストです（RFC 7009）。
type RevokeReq struct {
	ClientAuth
	Token         string `form:"token" json:"token"`
	TokenTypeHint string `form:"token_type_hint" json:"token_type_hint"`
}

// IntrospectReq は /o/introspect/ のリクエストです（RFC 7662）。
type IntrospectReq struct {
	ClientAuth
	Token string `form:"token" json:"token"`
}

// TokenRes はアクセストークンレスポンスです。
type TokenRes struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// IntrospectRes はイントロスペクション結果です。非アクティブな場合はactiveのみを返します。
type IntrospectRes struct {
	Active    bool   `json:"active"`
	Scope     string `json:"scope,omitempty"`
	ClientID  string `json:"client_id,omitempty"`
	Username  string `json:"username,omitempty"`
	TokenType string `json:"token_type,omitempty"`
	Exp       int64  `json:"exp,omitempty"`
}

// ErrorRes はRFC 6749 5.2節のエラーレスポンスです。
type ErrorRes struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}
