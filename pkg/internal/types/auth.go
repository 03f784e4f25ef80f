package types

// Identity 认证交换后得到的外部身份.
// Metadata 来自身份提供方的用户元数据，键名随提供方版本漂移
// （full_name/name、avatar_url/picture），由对账流程按候选顺序解析.
type Identity struct {
	ID       string            `json:"id"`
	Email    string            `json:"email"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// RegisterRequest 注册请求.
type RegisterRequest struct {
	Email    string `binding:"required,email" json:"email"    rule:"required,email"`
	Password string `binding:"required,min=8" json:"password" rule:"required,min=8"`
	Name     string `json:"name,omitempty"`
}

// LoginRequest 登录请求.
type LoginRequest struct {
	Email    string `binding:"required,email" json:"email"    rule:"required,email"`
	Password string `binding:"required"       json:"password" rule:"required"`
}

// VerifyRequest 令牌校验请求.
type VerifyRequest struct {
	Token string `binding:"required" json:"token" rule:"required"`
}

// AuthResponse 认证成功响应.
type AuthResponse struct {
	UserID  string           `json:"user_id"`
	Email   string           `json:"email"`
	Profile *ProfileResponse `json:"profile,omitempty"`
}
