package types

import "time"

// ProfileResponse 档案响应，AvatarURL 为签名后的访问地址（签名失败时为原始引用）.
type ProfileResponse struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	Contact     string    `json:"contact,omitempty"`
	Bio         string    `json:"bio,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UpdateProfileRequest 档案更新请求，零值字段不更新.
type UpdateProfileRequest struct {
	DisplayName string `json:"display_name,omitempty" rule:"omitempty,max=100"`
	Contact     string `json:"contact,omitempty"      rule:"omitempty,max=200"`
	Bio         string `json:"bio,omitempty"          rule:"omitempty,max=2000"`
	// AvatarDataURL data URL 形式的新头像（data:image/png;base64,...），
	// 上传到头像桶后档案里只存对象引用.
	AvatarDataURL string `json:"avatar_data_url,omitempty"`
}
