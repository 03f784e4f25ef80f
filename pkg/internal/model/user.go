package model

import (
	"time"
)

// User 身份提供方的镜像行，键为提供方下发的用户 ID.
type User struct {
	ID          string `gorm:"primaryKey;size:255" json:"id"`
	Email       string `gorm:"size:320;index"      json:"email"`
	DisplayName string `gorm:"size:255"            json:"display_name"`
	AvatarURL   string `gorm:"size:1024"           json:"avatar_url"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Profile 用户可编辑的档案，规范键为 user_id.
// 历史部署中该表曾以 id 为键、且头像列名存在漂移（avatar_url/avatarurl/avater_url），
// 写入路径通过列回退处理，模型只声明规范列.
type Profile struct {
	UserID      string `gorm:"primaryKey;size:255;column:user_id" json:"user_id"`
	DisplayName string `gorm:"size:255"                           json:"display_name"`
	AvatarURL   string `gorm:"size:1024;column:avatar_url"        json:"avatar_url"`
	Contact     string `gorm:"size:512"                           json:"contact"`
	Bio         string `gorm:"type:text"                          json:"bio"`

	UpdatedAt time.Time `json:"updated_at"`
}
