package models

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// 用户角色常量
const (
	RoleModerator = "moderator" // 管理员，可编辑公共目录数据
	RoleUser      = "user"      // 普通用户
)

// User 用户模型（数据库模型）
type User struct {
	gorm.Model        // 这会自动包含 ID、CreatedAt、UpdatedAt、DeletedAt
	Name       string `json:"name" gorm:"type:varchar(255);not null"`
	Password   string `json:"-" gorm:"type:varchar(255);not null"`
	Email      string `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Role       string `json:"role" gorm:"type:varchar(20);default:'user'"`
	Avatar     string `json:"avatar" gorm:"type:varchar(255)"`
}

func (u *User) HashPassword() error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

func (u *User) ComparePassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
}

// IsModerator 检查用户是否为管理员
func (u *User) IsModerator() bool {
	return u.Role == RoleModerator
}

// RegisterRequest 注册请求（multipart 表单）
type RegisterRequest struct {
	Name     string `form:"name" binding:"required" example:"user123"`
	Email    string `form:"email" binding:"required,email" example:"user@example.com"`
	Password string `form:"password" binding:"required,min=8" example:"password123"`
}

// LoginRequest 登录请求结构体
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"user@example.com"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// ProfileUpdateRequest 更新个人资料请求（multipart 表单，字段均可选）
type ProfileUpdateRequest struct {
	Name     string `form:"name"`
	Email    string `form:"email"`
	Password string `form:"password"`
}
