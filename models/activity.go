package models

import (
	"time"

	"gorm.io/gorm"
)

// 活动类型常量
const (
	ActivityUser   = "user"   // 注册、资料变更
	ActivitySerial = "serial" // 评分、请求添加剧集
	ActivityGenre  = "genre"  // 流派编辑
	ActivitySystem = "system" // 后台任务
)

// Activity 活动记录模型
// @Description 系统活动记录，UserID 为空表示系统自身产生的活动
type Activity struct {
	ID        uint           `json:"id" gorm:"primarykey" example:"1"`
	Type      string         `json:"type" gorm:"type:varchar(50);not null;index" example:"user"`
	UserID    *uint          `json:"user_id,omitempty" gorm:"index"`
	Content   string         `json:"content" gorm:"type:text;not null" example:"新用户 \"user123\" 注册成功"`
	CreatedAt time.Time      `json:"created_at" example:"2026-01-20T15:04:05Z"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Activity) TableName() string {
	return "activities"
}
