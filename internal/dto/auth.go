package dto

// ── 运营登录 ──

// AdminLoginRequest 运营登录请求
type AdminLoginRequest struct {
	Operator string `json:"operator" binding:"required,min=1,max=64"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse 登录成功响应
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"` // 秒
}
