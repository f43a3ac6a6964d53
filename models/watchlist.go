package models

import (
	"time"
)

// SerialWatching 用户的追剧记录，(user_id, serial_id) 唯一
// 只表示"正在追"这一布尔事实，不是有序列表；不使用软删除
type SerialWatching struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UserID    uint      `gorm:"index:serial_watching_user_serial_IDX,unique;not null" json:"user_id"`
	SerialID  uint      `gorm:"index:serial_watching_user_serial_IDX,unique;not null" json:"serial_id"`
}

func (SerialWatching) TableName() string {
	return "serial_watching"
}

// WatchStatusWatching 追剧状态标记值
const WatchStatusWatching = "watching"
